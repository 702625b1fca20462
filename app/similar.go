package app

import (
	"context"
	"sync"

	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/lastfm"
	"github.com/artist-analytics/musicclient/spotify"
	"github.com/artist-analytics/utils"
	"github.com/thoas/go-funk"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// SimilarArtists joins the last.fm similar list with spotify profiles by name: names are resolved to ids
// first, profiles are bulk fetched, then both sides are matched through the name -> id map.
// Names that do not resolve are dropped, the order of last.fm is kept.
func (o *Orchestrator) SimilarArtists(ctx context.Context, name string) ([]*appmodels.SimilarArtistEdge, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "app.similar_artists")
	defer span.Finish()

	similar, err := o.LastFm.GetSimilarArtistInfo(ctx, name, o.options.SimilarLimit)

	if err != nil {
		return nil, err
	}

	idsByName := o.resolveSpotifyIds(ctx, similar)

	artistsById := make(map[string]*spotify.ArtistData)

	if len(idsByName) > 0 {
		ids := funk.UniqString(funk.Values(idsByName).([]string))
		artists, err := o.Spotify.GetArtistsData(ctx, ids)

		if err != nil {
			logger.WithArtistSource(name, datadog.SpotifyProvider).Warning("Bulk fetch of similar artists failed, keeping ids only ", err)
		}

		for _, artist := range artists {
			artistsById[artist.Id] = artist
		}
	}

	edges := make([]*appmodels.SimilarArtistEdge, 0, len(idsByName))

	for _, candidate := range similar {
		id, ok := idsByName[utils.NormaliseKey(candidate.Name)]

		if !ok {
			continue
		}

		edge := &appmodels.SimilarArtistEdge{
			ToArtistName: candidate.Name,
			SpotifyId:    id,
			MatchScore:   appmodels.ClampScore(lastfm.ParseMatchScore(candidate.Match)),
			Genres:       []string{},
		}

		if artist, found := artistsById[id]; found {
			edge.Genres = appmodels.NormaliseGenres(artist.Genres)
			edge.ImageUrl = artist.ImageUrl
			edge.Followers = appmodels.Int64(artist.Followers)
			edge.Popularity = appmodels.Int64(artist.Popularity)
		}

		edges = append(edges, edge)
	}

	datadog.Gauge(len(edges), datadog.SimilarArtistsResolved)
	logger.WithArtist(name).Infof("Resolved %d of %d similar artists", len(edges), len(similar))

	return edges, nil
}

// resolveSpotifyIds searches every name concurrently, failed searches are left out of the map
func (o *Orchestrator) resolveSpotifyIds(ctx context.Context, similar []lastfm.SimilarArtist) map[string]string {
	results := make([]Result[string], len(similar))

	var wg sync.WaitGroup

	for i := range similar {
		candidate := similar[i]
		settle(&wg, "similar:"+candidate.Name, &results[i], func() (string, error) {
			return o.Spotify.SearchArtist(ctx, candidate.Name)
		})
	}

	wg.Wait()

	idsByName := make(map[string]string, len(similar))

	for i, result := range results {
		if result.Ok() && result.Value != "" {
			idsByName[utils.NormaliseKey(similar[i].Name)] = result.Value
		} else if result.Err != nil {
			logger.WithArtist(similar[i].Name).Debug("Similar artist not resolved on spotify ", result.Err)
		}
	}

	return idsByName
}
