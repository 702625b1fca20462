package appmodels

import (
	"sort"
	"strings"
	"time"

	"github.com/artist-analytics/apperrors"
	"github.com/thoas/go-funk"
)

type ActiveYears struct {
	Begin *string `json:"begin" bson:"begin"`
	End   *string `json:"end" bson:"end"`
}

type ArtistProfile struct {
	Id               string      `json:"id" bson:"_id"`
	Name             string      `json:"name" bson:"name"`
	SpotifyId        string      `json:"spotifyId,omitempty" bson:"spotify_id,omitempty"`
	MusicbrainzId    string      `json:"musicbrainzId,omitempty" bson:"musicbrainz_id,omitempty"`
	YoutubeChannelId string      `json:"youtubeChannelId,omitempty" bson:"youtube_channel_id,omitempty"`
	LastFmId         string      `json:"lastFmId,omitempty" bson:"lastfm_id,omitempty"`
	ViberateSlug     string      `json:"viberateSlug,omitempty" bson:"viberate_slug,omitempty"`
	Biography        *string     `json:"biography" bson:"biography"`
	Genres           []string    `json:"genres" bson:"genres"`
	Country          string      `json:"country,omitempty" bson:"country,omitempty"`
	Gender           string      `json:"gender,omitempty" bson:"gender,omitempty"`
	ActiveYears      ActiveYears `json:"activeYears" bson:"active_years"`
	ImageUrl         string      `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	Disambiguation   string      `json:"disambiguation,omitempty" bson:"disambiguation,omitempty"`
	CreatedAt        time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" bson:"updated_at"`
}

// IsResolvable is true when at least one external identifier is known
func (artist *ArtistProfile) IsResolvable() bool {
	return artist.SpotifyId != "" ||
		artist.MusicbrainzId != "" ||
		artist.YoutubeChannelId != "" ||
		artist.LastFmId != ""
}

func (artist *ArtistProfile) Validate() error {
	if strings.TrimSpace(artist.Name) == "" {
		return apperrors.Validation("name", "is required")
	}

	if !artist.IsResolvable() {
		return apperrors.Validation("ids", "at least one of spotifyId, musicbrainzId, youtubeChannelId, lastFmId is required")
	}

	return nil
}

// NormaliseGenres treats genres as a set: trimmed, lower cased, unique and sorted
func NormaliseGenres(genres []string) []string {
	cleaned := make([]string, 0, len(genres))

	for _, genre := range genres {
		genre = strings.ToLower(strings.TrimSpace(genre))

		if genre != "" {
			cleaned = append(cleaned, genre)
		}
	}

	unique := funk.UniqString(cleaned)
	sort.Strings(unique)

	return unique
}
