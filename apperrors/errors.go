package apperrors

import (
	"errors"
	"fmt"
)

// AuthError is a credential or token failure for one platform client
type AuthError struct {
	Source string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.Source, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError means a search or lookup on one source yielded no match
type NotFoundError struct {
	Source string
	Query  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: nothing found for %q", e.Source, e.Query)
}

// UpstreamError is a transport failure, non-2xx or undecodable answer from a third party
type UpstreamError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s upstream error (status %d): %v", e.Source, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s upstream error: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type ScrapeError struct {
	Slug string
	Err  error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape of %q failed: %v", e.Slug, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// ArtistNotFoundError is terminal for an ingestion: no platform resolved the name
type ArtistNotFoundError struct {
	Name string
}

func (e *ArtistNotFoundError) Error() string {
	return fmt.Sprintf("artist %q could not be resolved on any platform", e.Name)
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}

	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

type PersistenceError struct {
	Operation string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ErrNotFound is returned by stores when a row does not exist
var ErrNotFound = errors.New("not found")

func Upstream(source string, status int, err error) error {
	return &UpstreamError{Source: source, StatusCode: status, Err: err}
}

func Auth(source string, err error) error {
	return &AuthError{Source: source, Err: err}
}

func NotFound(source string, query string) error {
	return &NotFoundError{Source: source, Query: query}
}

func Validation(field string, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func Persistence(operation string, err error) error {
	return &PersistenceError{Operation: operation, Err: err}
}

func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound) || errors.Is(err, ErrNotFound)
}

func IsAuth(err error) bool {
	var auth *AuthError
	return errors.As(err, &auth)
}
