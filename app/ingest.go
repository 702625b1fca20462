package app

import (
	"context"
	"strings"
	"sync"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/musicclient/generative"
	"github.com/artist-analytics/musicclient/lastfm"
	"github.com/artist-analytics/musicclient/musicbrainz"
	"github.com/artist-analytics/musicclient/spotify"
	"github.com/artist-analytics/musicclient/viberate"
	"github.com/artist-analytics/musicclient/youtube"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// IngestOptions tune one ingestion. Depth is how many levels of unknown similar artists get ingested
// below this one, it is capped by the configured maximum.
type IngestOptions struct {
	Depth           int
	SkipPersist     bool
	IncludeViberate bool
	Refresh         bool
}

// IngestArtist resolves the name on every platform, fetches all sources, merges, backfills and persists.
// Only an unresolvable name or a failed write is returned as an error, source failures become warnings.
func (o *Orchestrator) IngestArtist(ctx context.Context, name string, options IngestOptions) (*appmodels.ArtistAggregate, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return nil, apperrors.Validation("name", "is required")
	}

	if options.Depth > o.options.MaxDepth {
		options.Depth = o.options.MaxDepth
	}

	span, ctx := tracer.StartSpanFromContext(ctx, "app.ingest_artist")
	span.SetTag("artist", name)
	defer span.Finish()

	ctx = cache.WithArtist(ctx, name)
	run := newRun(name)
	datadog.Increment(1, datadog.IngestionStarted)

	if options.Refresh && o.Cache != nil {
		if _, err := o.Cache.InvalidateArtist(ctx, name); err != nil {
			run.log.Warning("Failed to invalidate cached data before refresh ", err)
		}
	}

	data := &SourceData{InputName: name}
	warnings := make([]apperrors.PartialDataWarning, 0)

	known, identity, identityWarnings, err := o.resolveIdentity(ctx, name)
	warnings = append(warnings, identityWarnings...)

	if err != nil {
		run.moveTo(StateFailed)
		datadog.Increment(1, datadog.IngestionFailed)
		span.Finish(tracer.WithError(err))
		return nil, err
	}

	data.Identity = identity
	data.Input = known

	run.moveTo(StateFetchingSources)
	warnings = append(warnings, o.fetchSources(ctx, data, options)...)

	run.moveTo(StateMerging)
	aggregate := Merge(data, o.options.Precedence)

	run.moveTo(StateBackfilling)
	if warning := o.backfillBiography(ctx, aggregate.Profile); warning != nil {
		warnings = append(warnings, *warning)
	}

	aggregate.Warnings = warnings

	if options.SkipPersist || o.Store == nil {
		run.moveTo(StateDone)
		return aggregate, nil
	}

	run.moveTo(StatePersisting)
	if err := o.persist(ctx, aggregate, options.Depth); err != nil {
		span.Finish(tracer.WithError(err))
		return nil, err
	}

	run.moveTo(StateDone)
	datadog.Gauge(len(aggregate.Warnings), datadog.IngestionWarnings)

	return aggregate, nil
}

// resolveIdentity reuses the ids of a stored profile with the same name and searches the rest concurrently.
// The stored profile is returned as well, it is the lowest ranked source of the merge.
func (o *Orchestrator) resolveIdentity(ctx context.Context, name string) (*appmodels.ArtistProfile, Identity, []apperrors.PartialDataWarning, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "app.resolve_identity")
	defer span.Finish()

	identity := Identity{}
	warnings := make([]apperrors.PartialDataWarning, 0)

	var known *appmodels.ArtistProfile

	if o.Store != nil {
		if stored, err := o.Store.FindArtistByName(ctx, name); err == nil {
			known = stored
			identity = Identity{
				SpotifyId:        stored.SpotifyId,
				MusicbrainzId:    stored.MusicbrainzId,
				YoutubeChannelId: stored.YoutubeChannelId,
			}
		}
	}

	var spotifyResult, musicbrainzResult, youtubeResult Result[string]
	var wg sync.WaitGroup

	if identity.SpotifyId == "" && o.Spotify != nil {
		settle(&wg, datadog.SpotifyProvider, &spotifyResult, func() (string, error) {
			return o.Spotify.SearchArtist(ctx, name)
		})
	}

	if identity.MusicbrainzId == "" && o.MusicBrainz != nil {
		settle(&wg, datadog.MusicBrainzProvider, &musicbrainzResult, func() (string, error) {
			return o.MusicBrainz.SearchArtistId(ctx, name)
		})
	}

	if identity.YoutubeChannelId == "" && o.Youtube != nil {
		settle(&wg, datadog.YoutubeProvider, &youtubeResult, func() (string, error) {
			return o.Youtube.SearchChannelId(ctx, name)
		})
	}

	wg.Wait()

	resolve := func(source string, result Result[string], target *string) {
		if result.Ok() {
			*target = result.Value
			return
		}

		if result.Err != nil {
			if apperrors.IsAuth(result.Err) {
				sourceLog(source, name).Error("Credentials rejected, source skipped for this ingestion ", result.Err)
			}

			if !apperrors.IsNotFound(result.Err) {
				warnings = append(warnings, apperrors.Warn(source, result.Err))
			}
		}
	}

	resolve(datadog.SpotifyProvider, spotifyResult, &identity.SpotifyId)
	resolve(datadog.MusicBrainzProvider, musicbrainzResult, &identity.MusicbrainzId)
	resolve(datadog.YoutubeProvider, youtubeResult, &identity.YoutubeChannelId)

	if identity.SpotifyId == "" && identity.MusicbrainzId == "" && identity.YoutubeChannelId == "" {
		return nil, identity, warnings, &apperrors.ArtistNotFoundError{Name: name}
	}

	return known, identity, warnings, nil
}

// fetchSources runs every branch to completion, a failing branch only leaves its slot empty
func (o *Orchestrator) fetchSources(ctx context.Context, data *SourceData, options IngestOptions) []apperrors.PartialDataWarning {
	span, ctx := tracer.StartSpanFromContext(ctx, "app.fetch_sources")
	defer span.Finish()

	name := data.InputName
	identity := data.Identity

	var (
		musicbrainzResult Result[*musicbrainz.ArtistDetails]
		lastfmResult      Result[*lastfm.ArtistInfo]
		channelResult     Result[*youtube.ChannelInfo]
		videosResult      Result[[]*youtube.VideoData]
		spotifyResult     Result[*spotify.ArtistData]
		tracksResult      Result[[]*appmodels.TrackRecord]
		viberateResult    Result[*viberate.RawProfile]
		similarResult     Result[[]*appmodels.SimilarArtistEdge]
	)

	var wg sync.WaitGroup

	if identity.MusicbrainzId != "" && o.MusicBrainz != nil {
		settle(&wg, datadog.MusicBrainzProvider, &musicbrainzResult, func() (*musicbrainz.ArtistDetails, error) {
			return o.MusicBrainz.GetArtistDetails(ctx, identity.MusicbrainzId)
		})
	}

	if o.LastFm != nil {
		settle(&wg, datadog.LastFmProvider, &lastfmResult, func() (*lastfm.ArtistInfo, error) {
			return o.LastFm.GetArtistInfo(ctx, name)
		})
	}

	if identity.YoutubeChannelId != "" && o.Youtube != nil {
		settle(&wg, datadog.YoutubeProvider, &channelResult, func() (*youtube.ChannelInfo, error) {
			return o.Youtube.GetChannelInfo(ctx, name, identity.YoutubeChannelId)
		})

		settle(&wg, datadog.YoutubeProvider, &videosResult, func() ([]*youtube.VideoData, error) {
			return o.Youtube.GetChannelTopVideos(ctx, identity.YoutubeChannelId, o.options.TopVideos)
		})
	}

	if identity.SpotifyId != "" && o.Spotify != nil {
		settle(&wg, datadog.SpotifyProvider, &spotifyResult, func() (*spotify.ArtistData, error) {
			return o.Spotify.GetArtistData(ctx, identity.SpotifyId)
		})

		settle(&wg, datadog.SpotifyProvider, &tracksResult, func() ([]*appmodels.TrackRecord, error) {
			return o.Spotify.GetArtistTopTracks(ctx, identity.SpotifyId)
		})
	}

	if options.IncludeViberate && o.Viberate != nil {
		settle(&wg, datadog.ViberateProvider, &viberateResult, func() (*viberate.RawProfile, error) {
			return o.Viberate.GetArtistData(ctx, name, false)
		})
	}

	if o.LastFm != nil && o.Spotify != nil {
		settle(&wg, "similar", &similarResult, func() ([]*appmodels.SimilarArtistEdge, error) {
			return o.SimilarArtists(ctx, name)
		})
	}

	wg.Wait()

	warnings := make([]apperrors.PartialDataWarning, 0)

	collect := func(source string, err error) {
		if err != nil {
			sourceLog(source, name).Warning("Source failed, continuing with partial data ", err)
			warnings = append(warnings, apperrors.Warn(source, err))
		}
	}

	if musicbrainzResult.Ok() {
		data.MusicBrainz = musicbrainzResult.Value
	}
	collect(datadog.MusicBrainzProvider, musicbrainzResult.Err)

	if lastfmResult.Ok() {
		data.LastFm = lastfmResult.Value
	}
	collect(datadog.LastFmProvider, lastfmResult.Err)

	if channelResult.Ok() {
		data.Youtube = channelResult.Value
	}
	collect(datadog.YoutubeProvider, channelResult.Err)

	if videosResult.Ok() {
		data.YoutubeVideos = videosResult.Value
	}
	collect(datadog.YoutubeProvider, videosResult.Err)

	if spotifyResult.Ok() {
		data.Spotify = spotifyResult.Value
	}
	collect(datadog.SpotifyProvider, spotifyResult.Err)

	if tracksResult.Ok() {
		data.SpotifyTracks = tracksResult.Value
	}
	collect(datadog.SpotifyProvider, tracksResult.Err)

	if viberateResult.Ok() {
		data.Viberate = viberateResult.Value
	}
	collect(datadog.ViberateProvider, viberateResult.Err)

	if similarResult.Ok() {
		data.Similar = similarResult.Value
		data.SimilarFetched = true
	}
	collect("similar", similarResult.Err)

	return warnings
}

// backfillBiography asks the generative collaborator for a biography when no source had one, failures only warn
func (o *Orchestrator) backfillBiography(ctx context.Context, profile *appmodels.ArtistProfile) *apperrors.PartialDataWarning {
	if profile.Biography != nil || o.Biography == nil {
		return nil
	}

	biography, err := o.Biography.GenerateBiography(ctx, generative.Facts{
		Name:        profile.Name,
		Genres:      profile.Genres,
		Country:     profile.Country,
		Gender:      profile.Gender,
		ActiveBegin: profile.ActiveYears.Begin,
		ActiveEnd:   profile.ActiveYears.End,
	})

	if err != nil {
		warning := apperrors.Warn(datadog.GenerativeProvider, err)
		return &warning
	}

	profile.Biography = &biography
	datadog.Increment(1, datadog.BiographyGenerated)

	return nil
}
