package api

import (
	"net/http"

	"github.com/artist-analytics/httputils"
)

func Health(w http.ResponseWriter, r *http.Request) {
	// Add healthchecks here
	httputils.SendOk(w)
}
