package musicbrainz

import (
	"errors"

	"github.com/artist-analytics/apperrors"
)

func asStatus(err error, target **apperrors.UpstreamError, status int) bool {
	return errors.As(err, target) && (*target).StatusCode == status
}
