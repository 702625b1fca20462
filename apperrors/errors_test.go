package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsUnwrapThroughWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("fetching channel: %w", Upstream("youtube", 503, cause))

	var upstream *UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Equal(t, 503, upstream.StatusCode)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "status 503")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("spotify", "nobody")))
	assert.True(t, IsNotFound(fmt.Errorf("store: %w", ErrNotFound)))
	assert.False(t, IsNotFound(Upstream("lastfm", 500, errors.New("boom"))))
}

func TestIsAuth(t *testing.T) {
	assert.True(t, IsAuth(fmt.Errorf("search: %w", Auth("spotify", errors.New("invalid_client")))))
	assert.False(t, IsAuth(NotFound("spotify", "x")))
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "validation error on field name: is required", Validation("name", "is required").Error())
	assert.Equal(t, "validation error: bad body", Validation("", "bad body").Error())
}

func TestWarn(t *testing.T) {
	warning := Warn("youtube", Upstream("youtube", 403, errors.New("quota")))
	assert.Equal(t, "youtube", warning.Source)
	assert.Contains(t, warning.Message, "quota")
}
