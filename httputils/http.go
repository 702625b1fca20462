package httputils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/logger"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Do not forget v needs to be a reference to the object for the serialisation to work
func DeserialiseBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	err := decoder.Decode(v)

	if err != nil {
		logger.WithRequest(r).Error("Failed to deserialise body ", err)
		return apperrors.Validation("body", "malformed json")
	}

	return nil
}

func SendJsonWithCtx(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	span, _ := tracer.StartSpanFromContext(ctx, "json.serialise")
	defer span.Finish()

	jsonValue, err := json.Marshal(v)

	if err != nil {
		span.Finish(tracer.WithError(err))
		http.Error(w, "Failed to serialise struct", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(jsonValue)

	if err != nil {
		span.Finish(tracer.WithError(err))
		logger.Logger.Error("Failed to write json response ", err)
	}
}

func SendOk(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func SendNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// SendError maps the error taxonomy to a status code and writes it as {"error": "..."}
func SendError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	entry := logger.WithRequest(r).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed ", err)
	} else {
		entry.Warning("Request rejected ", err)
	}

	SendJsonWithCtx(r.Context(), w, status, errorResponse{Error: err.Error()})
}

func StatusFor(err error) int {
	var validation *apperrors.ValidationError
	var artistNotFound *apperrors.ArtistNotFoundError
	var auth *apperrors.AuthError
	var upstream *apperrors.UpstreamError
	var scrape *apperrors.ScrapeError
	var persistence *apperrors.PersistenceError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &artistNotFound), apperrors.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &auth), errors.As(err, &upstream), errors.As(err, &scrape):
		return http.StatusBadGateway
	case errors.As(err, &persistence):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// QueryBool reads a "true"/"false" query parameter, anything else is the fallback
func QueryBool(r *http.Request, key string, fallback bool) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(key))

	if err != nil {
		return fallback
	}

	return value
}

func QueryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)

	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)

	if err != nil || value < 0 {
		return 0, apperrors.Validation(key, "must be a non negative integer")
	}

	return value, nil
}
