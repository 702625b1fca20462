package spotify

import (
	"context"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/clientcommon"
	"github.com/artist-analytics/utils"
	"github.com/thoas/go-funk"
	"github.com/zmb3/spotify/v2"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const maxArtistsPerApiCall = 50

type ArtistData struct {
	Id         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	ImageUrl   string   `json:"imageUrl"`
	Followers  int64    `json:"followers"`
	Popularity int64    `json:"popularity"`
}

// SearchArtist returns the id of the best ranked artist for the name
func (c *Client) SearchArtist(ctx context.Context, name string) (string, error) {
	entry := cache.Entry{Tag: cache.TagSpotifySearchArtist, Arg: utils.NormaliseKey(name), Artist: name}

	return cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) (string, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "spotify.search_artist")
		defer span.Finish()

		api, err := c.getApi(ctx)

		if err != nil {
			return "", err
		}

		result, err := api.Search(ctx, name, spotify.SearchTypeArtist, spotify.Limit(1))
		err = mapError(err, name)

		clientcommon.SendRequestMetric(source, datadog.RequestTypeSearch, err)

		if err != nil {
			logger.WithArtistSource(name, source).Warning("Failed to search spotify artist ", err)
			return "", err
		}

		if result.Artists == nil || len(result.Artists.Artists) == 0 {
			return "", apperrors.NotFound(source, name)
		}

		return result.Artists.Artists[0].ID.String(), nil
	})
}

func (c *Client) GetArtistData(ctx context.Context, id string) (*ArtistData, error) {
	entry := cache.Entry{Tag: cache.TagSpotifyArtist, Arg: id}

	return cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) (*ArtistData, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "spotify.get_artist")
		defer span.Finish()

		api, err := c.getApi(ctx)

		if err != nil {
			return nil, err
		}

		artist, err := api.GetArtist(ctx, spotify.ID(id))
		err = mapError(err, id)

		clientcommon.SendRequestMetric(source, datadog.RequestTypeArtists, err)

		if err != nil {
			logger.WithSource(source).Warningf("Failed to get spotify artist %s %v", id, err)
			return nil, err
		}

		return toArtistData(artist), nil
	})
}

// GetArtistsData fetches the artists by batch of maxArtistsPerApiCall, unknown ids are skipped
func (c *Client) GetArtistsData(ctx context.Context, ids []string) ([]*ArtistData, error) {
	ids = funk.UniqString(ids)

	if len(ids) == 0 {
		return []*ArtistData{}, nil
	}

	entry := cache.Entry{Tag: cache.TagSpotifyArtists, Arg: utils.JoinIds(ids)}

	artists, err := cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) ([]*ArtistData, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "spotify.get_artists")
		defer span.Finish()

		api, err := c.getApi(ctx)

		if err != nil {
			return nil, err
		}

		artists := make([]*ArtistData, 0, len(ids))

		// Send the artists query by batch of maxArtistsPerApiCall, as we are limited on the number of artists
		// we can query at once
		for i := 0; i < len(ids); i += maxArtistsPerApiCall {
			upperBound := i + maxArtistsPerApiCall

			if upperBound > len(ids) {
				upperBound = len(ids)
			}

			batch := make([]spotify.ID, 0, upperBound-i)
			for _, id := range ids[i:upperBound] {
				batch = append(batch, spotify.ID(id))
			}

			artistsPart, err := api.GetArtists(ctx, batch...)
			err = mapError(err, utils.JoinIds(ids[i:upperBound]))

			clientcommon.SendRequestMetric(source, datadog.RequestTypeArtists, err)

			if err != nil {
				logger.WithSource(source).Errorf("Failed to get spotify artists %v", err)
				return nil, err
			}

			for _, artist := range artistsPart {
				// spotify answers null for ids it does not know
				if artist != nil {
					artists = append(artists, toArtistData(artist))
				}
			}

			logger.WithSource(source).Infof("Fetched %d artists successfully", upperBound-i)
		}

		return artists, nil
	})

	if err != nil {
		return nil, err
	}

	return inRequestOrder(ids, artists, func(artist *ArtistData) string { return artist.Id }), nil
}

func toArtistData(artist *spotify.FullArtist) *ArtistData {
	var image string

	if len(artist.Images) > 0 {
		image = artist.Images[0].URL
	}

	genres := artist.Genres
	if genres == nil {
		genres = []string{}
	}

	return &ArtistData{
		Id:         artist.ID.String(),
		Name:       artist.Name,
		Genres:     genres,
		ImageUrl:   image,
		Followers:  int64(artist.Followers.Count),
		Popularity: int64(artist.Popularity),
	}
}
