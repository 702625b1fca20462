package api

import (
	"net/http"

	"github.com/artist-analytics/app"
	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/httputils"
	"github.com/artist-analytics/logger"
)

type Handlers struct {
	service Service
}

func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// ArtistInfo runs a full ingestion for ?name=, the depth defaults to the configured maximum
func (h *Handlers) ArtistInfo(w http.ResponseWriter, r *http.Request) {
	depth, err := httputils.QueryInt(r, "depth", h.service.MaxDepth())

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	request := artistInfoRequest{
		Name:     r.URL.Query().Get("name"),
		Depth:    depth,
		Refresh:  httputils.QueryBool(r, "refresh", false),
		Viberate: httputils.QueryBool(r, "viberate", false),
	}

	if err := check(request); err != nil {
		httputils.SendError(w, r, err)
		return
	}

	logger.WithRequest(r).Infof("Ingestion requested for %s with depth %d", request.Name, request.Depth)

	aggregate, err := h.service.IngestArtist(r.Context(), request.Name, app.IngestOptions{
		Depth:           request.Depth,
		Refresh:         request.Refresh,
		IncludeViberate: request.Viberate,
	})

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, aggregate)
}

func (h *Handlers) SimilarArtists(w http.ResponseWriter, r *http.Request) {
	request := nameRequest{Name: r.URL.Query().Get("name")}

	if err := check(request); err != nil {
		httputils.SendError(w, r, err)
		return
	}

	edges, err := h.service.SimilarArtists(r.Context(), request.Name)

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	if edges == nil {
		edges = make([]*appmodels.SimilarArtistEdge, 0)
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, edges)
}

func (h *Handlers) ArtistTracks(w http.ResponseWriter, r *http.Request) {
	request := tracksRequest{
		SpotifyId:  r.URL.Query().Get("spotifyId"),
		SpotifyIds: queryList(r, "spotifyIds"),
	}

	if err := check(request); err != nil {
		httputils.SendError(w, r, err)
		return
	}

	tracks, err := h.service.GetArtistTracks(r.Context(), request.SpotifyId, request.SpotifyIds)

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	if tracks == nil {
		tracks = make([]*appmodels.TrackRecord, 0)
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, tracks)
}

// ArtistVideos answers with an empty list rather than an error when YouTube is unavailable
func (h *Handlers) ArtistVideos(w http.ResponseWriter, r *http.Request) {
	request := videosRequest{VideoIds: queryList(r, "videoIds")}

	if err := check(request); err != nil {
		httputils.SendError(w, r, err)
		return
	}

	videos, err := h.service.GetVideos(r.Context(), request.VideoIds)

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	if videos == nil {
		videos = make([]*appmodels.VideoRecord, 0)
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, videos)
}

func (h *Handlers) ScrapeViberate(w http.ResponseWriter, r *http.Request) {
	request := nameRequest{Name: r.URL.Query().Get("artistName")}

	if err := check(request); err != nil {
		httputils.SendError(w, r, err)
		return
	}

	clearCache := httputils.QueryBool(r, "clearCache", false)

	logger.WithRequest(r).Infof("Scrape requested for %s, clear cache: %t", request.Name, clearCache)

	result, err := h.service.ScrapeViberate(r.Context(), request.Name, clearCache)

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, result)
}
