package lastfm

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/clientcommon"
	"github.com/artist-analytics/utils"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const DefaultSimilarLimit = 10

type SimilarArtist struct {
	Name  string `json:"name"`
	Mbid  string `json:"mbid"`
	Match string `json:"match"`
}

type similarResponse struct {
	SimilarArtists struct {
		Artist []SimilarArtist `json:"artist"`
	} `json:"similarartists"`
}

// GetSimilarArtistInfo returns similar artists in last.fm ranking order
func (c *Client) GetSimilarArtistInfo(ctx context.Context, name string, limit int) ([]SimilarArtist, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	entry := cache.Entry{
		Tag:    cache.TagLastFmSimilar,
		Arg:    utils.NormaliseKey(name) + ":" + strconv.Itoa(limit),
		Artist: name,
	}

	return cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) ([]SimilarArtist, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "lastfm.similar")
		defer span.Finish()
		defer clientcommon.SendRequestTiming(source, datadog.RequestTypeSimilar, time.Now())

		params := url.Values{}
		params.Set("limit", strconv.Itoa(limit))

		var response similarResponse
		err := c.call(ctx, "artist.getsimilar", name, params, &response)

		clientcommon.SendRequestMetric(source, datadog.RequestTypeSimilar, err)

		if err != nil {
			logger.WithArtistSource(name, source).Warning("Failed to get last.fm similar artists ", err)
			return nil, err
		}

		similar := make([]SimilarArtist, 0, len(response.SimilarArtists.Artist))

		for _, artist := range response.SimilarArtists.Artist {
			if strings.TrimSpace(artist.Name) == "" {
				continue
			}

			similar = append(similar, artist)

			if len(similar) == limit {
				break
			}
		}

		return similar, nil
	})
}

// ParseMatchScore reads last.fm's match string, anything unparsable counts as no similarity
func ParseMatchScore(match string) float64 {
	score, err := strconv.ParseFloat(strings.TrimSpace(match), 64)

	if err != nil || math.IsNaN(score) || score < 0 {
		return 0
	}

	if score > 1 {
		return 1
	}

	return score
}
