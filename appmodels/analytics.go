package appmodels

import (
	"fmt"
	"time"

	"github.com/artist-analytics/apperrors"
)

// AnalyticsSnapshot is one append-only row per artist per ingestion run. A nil metric is unknown.
type AnalyticsSnapshot struct {
	Id                      string    `json:"id" bson:"_id"`
	ArtistId                string    `json:"artistId" bson:"artist_id"`
	TakenAt                 time.Time `json:"takenAt" bson:"taken_at"`
	SpotifyFollowers        *int64    `json:"spotifyFollowers" bson:"spotify_followers"`
	SpotifyPopularity       *int64    `json:"spotifyPopularity" bson:"spotify_popularity"`
	SpotifyMonthlyListeners *int64    `json:"spotifyMonthlyListeners" bson:"spotify_monthly_listeners"`
	YoutubeSubscribers      *int64    `json:"youtubeSubscribers" bson:"youtube_subscribers"`
	YoutubeTotalViews       *int64    `json:"youtubeTotalViews" bson:"youtube_total_views"`
	YoutubeVideoCount       *int64    `json:"youtubeVideoCount" bson:"youtube_video_count"`
	LastfmListeners         *int64    `json:"lastfmListeners" bson:"lastfm_listeners"`
	LastfmPlayCount         *int64    `json:"lastfmPlayCount" bson:"lastfm_play_count"`
	InstagramFollowers      *int64    `json:"instagramFollowers" bson:"instagram_followers"`
	FacebookFollowers       *int64    `json:"facebookFollowers" bson:"facebook_followers"`
	TiktokFollowers         *int64    `json:"tiktokFollowers" bson:"tiktok_followers"`
	SoundcloudFollowers     *int64    `json:"soundcloudFollowers" bson:"soundcloud_followers"`
}

func (snapshot *AnalyticsSnapshot) metrics() map[string]*int64 {
	return map[string]*int64{
		"spotifyFollowers":        snapshot.SpotifyFollowers,
		"spotifyPopularity":       snapshot.SpotifyPopularity,
		"spotifyMonthlyListeners": snapshot.SpotifyMonthlyListeners,
		"youtubeSubscribers":      snapshot.YoutubeSubscribers,
		"youtubeTotalViews":       snapshot.YoutubeTotalViews,
		"youtubeVideoCount":       snapshot.YoutubeVideoCount,
		"lastfmListeners":         snapshot.LastfmListeners,
		"lastfmPlayCount":         snapshot.LastfmPlayCount,
		"instagramFollowers":      snapshot.InstagramFollowers,
		"facebookFollowers":       snapshot.FacebookFollowers,
		"tiktokFollowers":         snapshot.TiktokFollowers,
		"soundcloudFollowers":     snapshot.SoundcloudFollowers,
	}
}

func (snapshot *AnalyticsSnapshot) Validate() error {
	for name, value := range snapshot.metrics() {
		if value != nil && *value < 0 {
			return apperrors.Validation(name, fmt.Sprintf("must be >= 0, found %d", *value))
		}
	}

	if p := snapshot.SpotifyPopularity; p != nil && *p > 100 {
		return apperrors.Validation("spotifyPopularity", fmt.Sprintf("must be within [0,100], found %d", *p))
	}

	return nil
}

// Sanitise nils out the values that break the invariants
func (snapshot *AnalyticsSnapshot) Sanitise() {
	fields := []**int64{
		&snapshot.SpotifyFollowers, &snapshot.SpotifyPopularity, &snapshot.SpotifyMonthlyListeners,
		&snapshot.YoutubeSubscribers, &snapshot.YoutubeTotalViews, &snapshot.YoutubeVideoCount,
		&snapshot.LastfmListeners, &snapshot.LastfmPlayCount, &snapshot.InstagramFollowers,
		&snapshot.FacebookFollowers, &snapshot.TiktokFollowers, &snapshot.SoundcloudFollowers,
	}

	for _, field := range fields {
		if *field != nil && **field < 0 {
			*field = nil
		}
	}

	if p := snapshot.SpotifyPopularity; p != nil && *p > 100 {
		snapshot.SpotifyPopularity = nil
	}
}

// IsEmpty is true when no source contributed any metric
func (snapshot *AnalyticsSnapshot) IsEmpty() bool {
	for _, value := range snapshot.metrics() {
		if value != nil {
			return false
		}
	}

	return true
}

// FillGaps copies every metric of other that is still nil on snapshot
func (snapshot *AnalyticsSnapshot) FillGaps(other *AnalyticsSnapshot) {
	if other == nil {
		return
	}

	fill := func(target **int64, value *int64) {
		if *target == nil && value != nil {
			v := *value
			*target = &v
		}
	}

	fill(&snapshot.SpotifyFollowers, other.SpotifyFollowers)
	fill(&snapshot.SpotifyPopularity, other.SpotifyPopularity)
	fill(&snapshot.SpotifyMonthlyListeners, other.SpotifyMonthlyListeners)
	fill(&snapshot.YoutubeSubscribers, other.YoutubeSubscribers)
	fill(&snapshot.YoutubeTotalViews, other.YoutubeTotalViews)
	fill(&snapshot.YoutubeVideoCount, other.YoutubeVideoCount)
	fill(&snapshot.LastfmListeners, other.LastfmListeners)
	fill(&snapshot.LastfmPlayCount, other.LastfmPlayCount)
	fill(&snapshot.InstagramFollowers, other.InstagramFollowers)
	fill(&snapshot.FacebookFollowers, other.FacebookFollowers)
	fill(&snapshot.TiktokFollowers, other.TiktokFollowers)
	fill(&snapshot.SoundcloudFollowers, other.SoundcloudFollowers)
}

func Int64(value int64) *int64 {
	return &value
}
