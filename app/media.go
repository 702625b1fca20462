package app

import (
	"context"
	"errors"
	"strings"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/viberate"
	"github.com/artist-analytics/utils"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

var errScraperDisabled = errors.New("scraper is not configured")

// ViberateResult is the raw scrape next to its canonical form
type ViberateResult struct {
	Profile  *viberate.RawProfile         `json:"profile"`
	Snapshot *appmodels.AnalyticsSnapshot `json:"snapshot"`
	Tracks   []*appmodels.TrackRecord     `json:"tracks"`
	Videos   []*appmodels.VideoRecord     `json:"videos"`
}

// GetArtistTracks returns the top tracks of one artist, or the given tracks, with any stored stream counts
func (o *Orchestrator) GetArtistTracks(ctx context.Context, spotifyId string, spotifyIds []string) ([]*appmodels.TrackRecord, error) {
	spotifyId = strings.TrimSpace(spotifyId)
	ids := nonEmpty(spotifyIds)

	if spotifyId == "" && len(ids) == 0 {
		return nil, apperrors.Validation("spotifyId", "spotifyId or spotifyIds is required")
	}

	span, ctx := tracer.StartSpanFromContext(ctx, "app.get_artist_tracks")
	defer span.Finish()

	var tracks []*appmodels.TrackRecord
	var err error

	if spotifyId != "" {
		tracks, err = o.Spotify.GetArtistTopTracks(ctx, spotifyId)
	} else {
		tracks, err = o.Spotify.GetTracks(ctx, ids)
	}

	if err != nil {
		return nil, err
	}

	// the loaded slice is shared with concurrent callers of the same cache key
	tracks = copyTracks(tracks)

	if o.Store == nil || len(tracks) == 0 {
		return tracks, nil
	}

	trackIds := make([]string, 0, len(tracks))

	for _, track := range tracks {
		trackIds = append(trackIds, track.TrackId)
	}

	stored, err := o.Store.FindTracksByIds(ctx, trackIds)

	if err != nil {
		logger.WithSource(datadog.SpotifyProvider).Warning("Failed to read stored streams, returning tracks without them ", err)
		return tracks, nil
	}

	storedById := make(map[string]*appmodels.TrackRecord, len(stored))

	for _, track := range stored {
		storedById[track.TrackId] = track
	}

	for _, track := range tracks {
		if other, ok := storedById[track.TrackId]; ok {
			fillTrackGaps(track, other)
		}
	}

	return tracks, nil
}

// GetVideos never fails on youtube errors, the caller gets an empty list instead
func (o *Orchestrator) GetVideos(ctx context.Context, ids []string) ([]*appmodels.VideoRecord, error) {
	ids = nonEmpty(ids)

	if len(ids) == 0 {
		return nil, apperrors.Validation("videoIds", "is required")
	}

	videos, err := o.Youtube.GetVideosByIds(ctx, ids)

	if err != nil {
		logger.WithSource(datadog.YoutubeProvider).Warning("Failed to get videos, returning an empty list ", err)
		return []*appmodels.VideoRecord{}, nil
	}

	return videoRecords(videos), nil
}

func (o *Orchestrator) ScrapeViberate(ctx context.Context, name string, clearCache bool) (*ViberateResult, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return nil, apperrors.Validation("artistName", "is required")
	}

	if o.Viberate == nil {
		return nil, &apperrors.ScrapeError{Slug: utils.Slugify(name), Err: errScraperDisabled}
	}

	profile, err := o.Viberate.GetArtistData(cache.WithArtist(ctx, name), name, clearCache)

	if err != nil {
		return nil, err
	}

	return &ViberateResult{
		Profile:  profile,
		Snapshot: viberate.ToSnapshot(profile),
		Tracks:   viberate.ToTracks(profile),
		Videos:   viberate.ToVideos(profile),
	}, nil
}

func copyTracks(tracks []*appmodels.TrackRecord) []*appmodels.TrackRecord {
	result := make([]*appmodels.TrackRecord, 0, len(tracks))

	for _, track := range tracks {
		if track != nil {
			result = append(result, copyTrack(track))
		}
	}

	return result
}

// nonEmpty trims the ids and keeps their order
func nonEmpty(ids []string) []string {
	result := make([]string, 0, len(ids))

	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			result = append(result, id)
		}
	}

	return result
}
