package api

import (
	"net/http"

	"github.com/artist-analytics/app"
	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/httputils"
	"github.com/artist-analytics/logger"
	"github.com/gorilla/mux"
)

type invalidationResponse struct {
	Tag         string `json:"tag"`
	Invalidated int    `json:"invalidated"`
}

func (h *Handlers) AddArtist(w http.ResponseWriter, r *http.Request) {
	var request addArtistRequest

	if err := decode(r, &request); err != nil {
		httputils.SendError(w, r, err)
		return
	}

	aggregate, err := h.service.AddArtist(r.Context(), request.aggregate())

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusCreated, aggregate)
}

func (h *Handlers) UpdateArtist(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var request updateArtistRequest

	if err := decode(r, &request); err != nil {
		httputils.SendError(w, r, err)
		return
	}

	profile, err := h.service.UpdateArtist(r.Context(), id, request.patch())

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, profile)
}

func (h *Handlers) UpdateArtistYoutube(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var request updateYoutubeRequest

	if err := decode(r, &request); err != nil {
		httputils.SendError(w, r, err)
		return
	}

	aggregate, err := h.service.UpdateArtistYoutube(r.Context(), id, app.YoutubePatch{
		ChannelId: request.ChannelId,
		VideoIds:  request.VideoIds,
	})

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, aggregate)
}

func (h *Handlers) ListArtists(w http.ResponseWriter, r *http.Request) {
	limit, err := httputils.QueryInt(r, "limit", defaultListCap)

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	artists, err := h.service.ListArtists(r.Context(), limit)

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	if artists == nil {
		artists = make([]*appmodels.ArtistProfile, 0)
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, artists)
}

func (h *Handlers) GetArtist(w http.ResponseWriter, r *http.Request) {
	aggregate, err := h.service.GetArtist(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, aggregate)
}

func (h *Handlers) DeleteArtist(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.PurgeArtist(r.Context(), id); err != nil {
		httputils.SendError(w, r, err)
		return
	}

	logger.WithRequest(r).Infof("Artist %s purged", id)

	httputils.SendNoContent(w)
}

func (h *Handlers) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")

	if tag == "" {
		httputils.SendError(w, r, apperrors.Validation("tag", "is required"))
		return
	}

	count, err := h.service.InvalidateCache(r.Context(), tag)

	if err != nil {
		httputils.SendError(w, r, err)
		return
	}

	httputils.SendJsonWithCtx(r.Context(), w, http.StatusOK, invalidationResponse{Tag: tag, Invalidated: count})
}
