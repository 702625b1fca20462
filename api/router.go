package api

import (
	"net/http"

	"github.com/artist-analytics/logger"
	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	muxtrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gorilla/mux"
)

const serviceName = "artist-analytics"

type RouterConfig struct {
	AllowedOrigins []string
}

func NewRouter(service Service, config RouterConfig) http.Handler {
	h := NewHandlers(service)
	r := muxtrace.NewRouter(muxtrace.WithServiceName(serviceName))

	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	r.HandleFunc("/artist-info", h.ArtistInfo).Methods(http.MethodGet)
	r.HandleFunc("/similar-artists", h.SimilarArtists).Methods(http.MethodGet)
	r.HandleFunc("/artist-tracks", h.ArtistTracks).Methods(http.MethodGet)
	r.HandleFunc("/artist-videos", h.ArtistVideos).Methods(http.MethodGet)
	r.HandleFunc("/scrape-viberate", h.ScrapeViberate).Methods(http.MethodGet)

	r.HandleFunc("/add-artist", h.AddArtist).Methods(http.MethodPost)
	r.HandleFunc("/update-artist/{id}", h.UpdateArtist).Methods(http.MethodPut)
	r.HandleFunc("/update-artist/{id}/youtube", h.UpdateArtistYoutube).Methods(http.MethodPut)

	r.HandleFunc("/artists", h.ListArtists).Methods(http.MethodGet)
	r.HandleFunc("/artists/{id}", h.GetArtist).Methods(http.MethodGet)
	r.HandleFunc("/artists/{id}", h.DeleteArtist).Methods(http.MethodDelete)

	r.HandleFunc("/cache/invalidate", h.InvalidateCache).Methods(http.MethodPost)

	// Setup cors policies
	handler := cors.New(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowCredentials: true,
	}).Handler(r)

	handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.Logger),
		handlers.PrintRecoveryStack(true),
	)(handler)

	return handlers.LoggingHandler(logger.Logger.Writer(), handler)
}
