package app

import (
	"context"
	"strings"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/jinzhu/copier"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// ArtistPatch only overwrites the fields that are set
type ArtistPatch struct {
	Name             string
	SpotifyId        string
	MusicbrainzId    string
	YoutubeChannelId string
	LastFmId         string
	ViberateSlug     string
	Biography        *string
	Genres           []string
	Country          string
	Gender           string
	ImageUrl         string
	Disambiguation   string
	ActiveYears      *appmodels.ActiveYears `copier:"-"`
}

type YoutubePatch struct {
	ChannelId string
	VideoIds  []string
}

// AddArtist merges, backfills and persists caller supplied data without calling any platform
func (o *Orchestrator) AddArtist(ctx context.Context, input *appmodels.ArtistAggregate) (*appmodels.ArtistAggregate, error) {
	if input == nil || input.Profile == nil {
		return nil, apperrors.Validation("profile", "is required")
	}

	if err := input.Profile.Validate(); err != nil {
		return nil, err
	}

	span, ctx := tracer.StartSpanFromContext(ctx, "app.add_artist")
	defer span.Finish()

	aggregate := Merge(&SourceData{InputName: input.Profile.Name, Input: input.Profile}, o.options.Precedence)

	if input.Analytics != nil {
		if err := input.Analytics.Validate(); err != nil {
			return nil, err
		}

		analytics := *input.Analytics
		aggregate.Analytics = &analytics
	}

	aggregate.Tracks = LeftJoinTracks(input.Tracks, nil)
	aggregate.Videos = LeftJoinVideos(input.Videos, nil)
	aggregate.Similar = copyEdges(input.Similar)
	aggregate.SimilarFetched = input.Similar != nil

	for _, edge := range aggregate.Similar {
		edge.MatchScore = appmodels.ClampScore(edge.MatchScore)
	}

	if warning := o.backfillBiography(ctx, aggregate.Profile); warning != nil {
		aggregate.Warnings = append(aggregate.Warnings, *warning)
	}

	if err := o.persist(ctx, aggregate, 0); err != nil {
		span.Finish(tracer.WithError(err))
		return nil, err
	}

	logger.WithArtist(aggregate.Profile.Name).Infof("Artist added with id %s", aggregate.Profile.Id)

	return aggregate, nil
}

func (o *Orchestrator) UpdateArtist(ctx context.Context, id string, patch *ArtistPatch) (*appmodels.ArtistProfile, error) {
	if patch == nil {
		return nil, apperrors.Validation("", "empty patch")
	}

	profile, err := o.Store.GetArtist(ctx, id)

	if err != nil {
		return nil, notFoundOrPersistence("get artist", err)
	}

	previousName := profile.Name

	err = copier.CopyWithOption(profile, patch, copier.Option{IgnoreEmpty: true, DeepCopy: true})

	if err != nil {
		return nil, apperrors.Validation("", err.Error())
	}

	if patch.ActiveYears != nil {
		profile.ActiveYears = appmodels.ActiveYears{
			Begin: copyString(patch.ActiveYears.Begin),
			End:   copyString(patch.ActiveYears.End),
		}
	}

	profile.Name = strings.TrimSpace(profile.Name)
	profile.Genres = appmodels.NormaliseGenres(profile.Genres)

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	profile.UpdatedAt = o.now().UTC()

	if err := o.Store.SaveArtist(ctx, profile); err != nil {
		return nil, wrapPersistence("save artist", err)
	}

	o.forgetArtist(ctx, previousName)

	return profile, nil
}

// UpdateArtistYoutube changes the youtube side of a profile. Given only a channel id, the channel stats and
// top videos are refreshed and a snapshot is appended. Youtube failures are returned as warnings.
func (o *Orchestrator) UpdateArtistYoutube(ctx context.Context, id string, patch YoutubePatch) (*appmodels.ArtistAggregate, error) {
	patch.ChannelId = strings.TrimSpace(patch.ChannelId)

	if patch.ChannelId == "" && len(patch.VideoIds) == 0 {
		return nil, apperrors.Validation("", "channelId or videoIds is required")
	}

	span, ctx := tracer.StartSpanFromContext(ctx, "app.update_artist_youtube")
	defer span.Finish()

	profile, err := o.Store.GetArtist(ctx, id)

	if err != nil {
		return nil, notFoundOrPersistence("get artist", err)
	}

	warnings := make([]apperrors.PartialDataWarning, 0)

	if patch.ChannelId != "" && patch.ChannelId != profile.YoutubeChannelId {
		profile.YoutubeChannelId = patch.ChannelId
		profile.UpdatedAt = o.now().UTC()

		if err := o.Store.SaveArtist(ctx, profile); err != nil {
			return nil, wrapPersistence("save artist", err)
		}
	}

	if len(patch.VideoIds) > 0 {
		videos, err := o.Youtube.GetVideosByIds(ctx, patch.VideoIds)

		if err != nil {
			warnings = append(warnings, apperrors.Warn(datadog.YoutubeProvider, err))
		} else if err := o.saveVideos(ctx, profile.Id, videoRecords(videos)); err != nil {
			return nil, err
		}
	} else {
		warnings = append(warnings, o.refreshChannel(ctx, profile)...)
	}

	aggregate, err := o.GetArtist(ctx, profile.Id)

	if err != nil {
		return nil, err
	}

	aggregate.Warnings = warnings

	return aggregate, nil
}

// refreshChannel appends a snapshot carrying the latest known metrics with fresh youtube figures
func (o *Orchestrator) refreshChannel(ctx context.Context, profile *appmodels.ArtistProfile) []apperrors.PartialDataWarning {
	warnings := make([]apperrors.PartialDataWarning, 0)

	channel, err := o.Youtube.GetChannelInfo(ctx, profile.Name, profile.YoutubeChannelId)

	if err != nil {
		logger.WithArtistSource(profile.Name, datadog.YoutubeProvider).Warning("Failed to refresh channel ", err)
		return append(warnings, apperrors.Warn(datadog.YoutubeProvider, err))
	}

	snapshot := &appmodels.AnalyticsSnapshot{}

	if latest, err := o.Store.LatestSnapshot(ctx, profile.Id); err == nil {
		*snapshot = *latest
	}

	snapshot.Id = o.newId()
	snapshot.ArtistId = profile.Id
	snapshot.TakenAt = o.now().UTC()
	snapshot.YoutubeSubscribers = copyInt64(channel.Subscribers)
	snapshot.YoutubeTotalViews = copyInt64(channel.TotalViews)
	snapshot.YoutubeVideoCount = copyInt64(channel.VideoCount)
	snapshot.Sanitise()

	if err := o.Store.AppendSnapshot(ctx, snapshot); err != nil {
		logger.WithArtist(profile.Name).Errorf("Failed to append youtube snapshot %v", err)
		return append(warnings, apperrors.Warn("store", err))
	}

	videos, err := o.Youtube.GetChannelTopVideos(ctx, profile.YoutubeChannelId, o.options.TopVideos)

	if err != nil {
		return append(warnings, apperrors.Warn(datadog.YoutubeProvider, err))
	}

	if err := o.saveVideos(ctx, profile.Id, videoRecords(videos)); err != nil {
		return append(warnings, apperrors.Warn("store", err))
	}

	return warnings
}

func (o *Orchestrator) saveVideos(ctx context.Context, artistId string, videos []*appmodels.VideoRecord) error {
	if len(videos) == 0 {
		return nil
	}

	for _, video := range videos {
		video.ArtistId = artistId
	}

	if err := o.Store.UpsertVideos(ctx, artistId, videos); err != nil {
		return wrapPersistence("upsert videos", err)
	}

	return nil
}

// GetArtist reads everything stored for one artist, a missing snapshot leaves Analytics nil
func (o *Orchestrator) GetArtist(ctx context.Context, id string) (*appmodels.ArtistAggregate, error) {
	profile, err := o.Store.GetArtist(ctx, id)

	if err != nil {
		return nil, notFoundOrPersistence("get artist", err)
	}

	aggregate := &appmodels.ArtistAggregate{Profile: profile}

	snapshot, err := o.Store.LatestSnapshot(ctx, id)

	switch {
	case err == nil:
		aggregate.Analytics = snapshot
	case !apperrors.IsNotFound(err):
		return nil, wrapPersistence("latest snapshot", err)
	}

	if aggregate.Tracks, err = o.Store.GetTracks(ctx, id); err != nil {
		return nil, wrapPersistence("get tracks", err)
	}

	if aggregate.Videos, err = o.Store.GetVideos(ctx, id); err != nil {
		return nil, wrapPersistence("get videos", err)
	}

	if aggregate.Similar, err = o.Store.GetSimilar(ctx, id); err != nil {
		return nil, wrapPersistence("get similar", err)
	}

	return aggregate, nil
}

func (o *Orchestrator) ListArtists(ctx context.Context, limit int) ([]*appmodels.ArtistProfile, error) {
	artists, err := o.Store.ListArtists(ctx, limit)

	if err != nil {
		return nil, wrapPersistence("list artists", err)
	}

	return artists, nil
}

// PurgeArtist hard deletes the artist with all its rows and drops its cached data
func (o *Orchestrator) PurgeArtist(ctx context.Context, id string) error {
	profile, err := o.Store.GetArtist(ctx, id)

	if err != nil {
		return notFoundOrPersistence("get artist", err)
	}

	if err := o.Store.DeleteArtist(ctx, id); err != nil {
		return notFoundOrPersistence("delete artist", err)
	}

	o.forgetArtist(ctx, profile.Name)
	logger.WithArtist(profile.Name).Infof("Artist %s purged", id)

	return nil
}

// InvalidateCache drops every cached entry indexed under the tag
func (o *Orchestrator) InvalidateCache(ctx context.Context, tag string) (int, error) {
	tag = strings.TrimSpace(tag)

	if tag == "" {
		return 0, apperrors.Validation("tag", "is required")
	}

	if o.Cache == nil {
		return 0, nil
	}

	return o.Cache.InvalidateTag(ctx, tag)
}

func (o *Orchestrator) forgetArtist(ctx context.Context, name string) {
	if o.Cache == nil {
		return
	}

	if _, err := o.Cache.InvalidateArtist(ctx, name); err != nil {
		logger.WithArtist(name).Warning("Failed to invalidate cached data ", err)
	}
}

func notFoundOrPersistence(operation string, err error) error {
	if apperrors.IsNotFound(err) {
		return err
	}

	return wrapPersistence(operation, err)
}
