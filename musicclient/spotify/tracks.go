package spotify

import (
	"context"

	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/clientcommon"
	"github.com/artist-analytics/utils"
	"github.com/thoas/go-funk"
	"github.com/zmb3/spotify/v2"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const maxTracksPerApiCall = 50
const maxTopTracks = 10

// GetArtistTopTracks returns at most 10 tracks in the configured market
func (c *Client) GetArtistTopTracks(ctx context.Context, id string) ([]*appmodels.TrackRecord, error) {
	entry := cache.Entry{Tag: cache.TagSpotifyTopTracks, Arg: id + ":" + c.config.Market}

	return cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) ([]*appmodels.TrackRecord, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "spotify.top_tracks")
		defer span.Finish()

		api, err := c.getApi(ctx)

		if err != nil {
			return nil, err
		}

		tracks, err := api.GetArtistsTopTracks(ctx, spotify.ID(id), c.config.Market)
		err = mapError(err, id)

		clientcommon.SendRequestMetric(source, datadog.RequestTypeTopTracks, err)

		if err != nil {
			logger.WithSource(source).Warningf("Failed to get top tracks for spotify artist %s %v", id, err)
			return nil, err
		}

		records := make([]*appmodels.TrackRecord, 0, len(tracks))

		for i := range tracks {
			if len(records) == maxTopTracks {
				break
			}

			records = append(records, toTrackRecord(&tracks[i]))
		}

		return records, nil
	})
}

func (c *Client) GetTracks(ctx context.Context, ids []string) ([]*appmodels.TrackRecord, error) {
	ids = funk.UniqString(ids)

	if len(ids) == 0 {
		return []*appmodels.TrackRecord{}, nil
	}

	entry := cache.Entry{Tag: cache.TagSpotifyTracks, Arg: utils.JoinIds(ids)}

	records, err := cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) ([]*appmodels.TrackRecord, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "spotify.get_tracks")
		defer span.Finish()

		api, err := c.getApi(ctx)

		if err != nil {
			return nil, err
		}

		records := make([]*appmodels.TrackRecord, 0, len(ids))

		for i := 0; i < len(ids); i += maxTracksPerApiCall {
			upperBound := i + maxTracksPerApiCall

			if upperBound > len(ids) {
				upperBound = len(ids)
			}

			batch := make([]spotify.ID, 0, upperBound-i)
			for _, id := range ids[i:upperBound] {
				batch = append(batch, spotify.ID(id))
			}

			tracks, err := api.GetTracks(ctx, batch)
			err = mapError(err, utils.JoinIds(ids[i:upperBound]))

			clientcommon.SendRequestMetric(source, datadog.RequestTypeSongs, err)

			if err != nil {
				logger.WithSource(source).Errorf("Failed to get spotify tracks %v", err)
				return nil, err
			}

			for _, track := range tracks {
				if track != nil {
					records = append(records, toTrackRecord(track))
				}
			}
		}

		return records, nil
	})

	if err != nil {
		return nil, err
	}

	return inRequestOrder(ids, records, func(track *appmodels.TrackRecord) string { return track.TrackId }), nil
}

func toTrackRecord(track *spotify.FullTrack) *appmodels.TrackRecord {
	var image string

	if len(track.Album.Images) > 0 {
		image = track.Album.Images[0].URL
	}

	return &appmodels.TrackRecord{
		TrackId:     track.ID.String(),
		Title:       track.Name,
		ImageUrl:    image,
		Popularity:  int(track.Popularity),
		PreviewUrl:  track.PreviewURL,
		ExternalUrl: track.ExternalURLs["spotify"],
	}
}
