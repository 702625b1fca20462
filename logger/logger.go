package logger

import (
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.StandardLogger()

func init() {
	Logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: false,
		FullTimestamp: true,
	})
	Logger.SetOutput(os.Stdout)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetReportCaller(false)
}

// Configure switches to json output in prod, where logs are shipped, and applies the level if it parses
func Configure(prod bool, level string) {
	if prod {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if level == "" {
		return
	}

	parsed, err := logrus.ParseLevel(level)

	if err != nil {
		Logger.Warningf("Unknown log level %s, keeping %s", level, Logger.GetLevel())
		return
	}

	Logger.SetLevel(parsed)
}

func WithArtist(name string) *logrus.Entry {
	return Logger.WithField("artist", name)
}

func WithSource(source string) *logrus.Entry {
	return Logger.WithField("source", source)
}

func WithArtistSource(name string, source string) *logrus.Entry {
	return Logger.WithFields(logrus.Fields{"artist": name, "source": source})
}

func WithRequest(r *http.Request) *logrus.Entry {
	return Logger.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path})
}
