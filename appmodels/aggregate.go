package appmodels

import "github.com/artist-analytics/apperrors"

// ArtistAggregate is the canonical profile with everything attached to it, as returned to callers
type ArtistAggregate struct {
	Profile   *ArtistProfile                 `json:"profile"`
	Analytics *AnalyticsSnapshot             `json:"analytics"`
	Tracks    []*TrackRecord                 `json:"tracks"`
	Videos    []*VideoRecord                 `json:"videos"`
	Similar   []*SimilarArtistEdge           `json:"similar"`
	Warnings  []apperrors.PartialDataWarning `json:"warnings,omitempty"`

	// SimilarFetched is false when Similar could not be obtained, stored edges are then left untouched
	SimilarFetched bool `json:"-"`
}

func (aggregate *ArtistAggregate) AddWarning(source string, err error) {
	aggregate.Warnings = append(aggregate.Warnings, apperrors.Warn(source, err))
}
