package app

import (
	applogger "github.com/artist-analytics/logger"
	"github.com/sirupsen/logrus"
)

func sourceLog(source string, name string) *logrus.Entry {
	return applogger.WithArtistSource(name, source)
}
