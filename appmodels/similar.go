package appmodels

import "math"

// SimilarArtistEdge is directed and informational, the reverse edge is not implied
type SimilarArtistEdge struct {
	FromArtistId string   `json:"fromArtistId" bson:"from_artist_id"`
	ToArtistName string   `json:"toArtistName" bson:"to_artist_name"`
	ToArtistId   string   `json:"toArtistId,omitempty" bson:"to_artist_id,omitempty"`
	SpotifyId    string   `json:"spotifyId,omitempty" bson:"spotify_id,omitempty"`
	MatchScore   float64  `json:"matchScore" bson:"match_score"`
	Genres       []string `json:"genres" bson:"genres"`
	ImageUrl     string   `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	Followers    *int64   `json:"followers,omitempty" bson:"followers,omitempty"`
	Popularity   *int64   `json:"popularity,omitempty" bson:"popularity,omitempty"`
	Selected     bool     `json:"selected" bson:"selected"`
}

// ClampScore forces a match score into [0,1], NaN counts as no similarity
func ClampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}

	if score > 1 {
		return 1
	}

	return score
}
