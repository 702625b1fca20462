package app

import (
	"context"
	"errors"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/utils"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// persist writes the aggregate: profile first, then the snapshot and the media, then the similar edges.
// Unknown similar artists are ingested while depth remains, their failures only warn.
func (o *Orchestrator) persist(ctx context.Context, aggregate *appmodels.ArtistAggregate, depth int) error {
	span, ctx := tracer.StartSpanFromContext(ctx, "app.persist")
	defer span.Finish()

	profile := aggregate.Profile

	if err := o.saveProfile(ctx, profile); err != nil {
		return err
	}

	if aggregate.Analytics != nil && !aggregate.Analytics.IsEmpty() {
		aggregate.Analytics.Id = o.newId()
		aggregate.Analytics.ArtistId = profile.Id
		aggregate.Analytics.TakenAt = o.now().UTC()

		if err := o.Store.AppendSnapshot(ctx, aggregate.Analytics); err != nil {
			return wrapPersistence("append snapshot", err)
		}
	}

	for _, track := range aggregate.Tracks {
		track.ArtistId = profile.Id
	}

	if len(aggregate.Tracks) > 0 {
		if err := o.Store.UpsertTracks(ctx, profile.Id, aggregate.Tracks); err != nil {
			return wrapPersistence("upsert tracks", err)
		}
	}

	for _, video := range aggregate.Videos {
		video.ArtistId = profile.Id
	}

	if len(aggregate.Videos) > 0 {
		if err := o.Store.UpsertVideos(ctx, profile.Id, aggregate.Videos); err != nil {
			return wrapPersistence("upsert videos", err)
		}
	}

	if aggregate.SimilarFetched {
		if err := o.replaceSimilar(ctx, aggregate, depth); err != nil {
			return err
		}
	}

	datadog.Increment(1, datadog.PersistenceWrites)

	return nil
}

// replaceSimilar swaps the stored edges for the fetched ones, keeping the curation flag of edges already known
func (o *Orchestrator) replaceSimilar(ctx context.Context, aggregate *appmodels.ArtistAggregate, depth int) error {
	profile := aggregate.Profile

	existing, err := o.Store.GetSimilar(ctx, profile.Id)

	if err != nil && !apperrors.IsNotFound(err) {
		return wrapPersistence("get similar", err)
	}

	keepSelection(aggregate.Similar, existing)

	for _, edge := range aggregate.Similar {
		edge.FromArtistId = profile.Id
		edge.ToArtistId = o.linkSimilar(ctx, aggregate, edge, depth)
	}

	if err := o.Store.ReplaceSimilar(ctx, profile.Id, aggregate.Similar); err != nil {
		return wrapPersistence("replace similar", err)
	}

	return nil
}

// keepSelection marks an edge selected when a stored edge to the same artist was, matching on Spotify id or name
func keepSelection(edges []*appmodels.SimilarArtistEdge, existing []*appmodels.SimilarArtistEdge) {
	selectedNames := make(map[string]bool)
	selectedIds := make(map[string]bool)

	for _, edge := range existing {
		if edge == nil || !edge.Selected {
			continue
		}

		selectedNames[utils.NormaliseKey(edge.ToArtistName)] = true

		if edge.SpotifyId != "" {
			selectedIds[edge.SpotifyId] = true
		}
	}

	for _, edge := range edges {
		if selectedIds[edge.SpotifyId] || selectedNames[utils.NormaliseKey(edge.ToArtistName)] {
			edge.Selected = true
		}
	}
}

// saveProfile reuses the id of a stored profile sharing any external id, which makes re-ingestion an update
func (o *Orchestrator) saveProfile(ctx context.Context, profile *appmodels.ArtistProfile) error {
	now := o.now().UTC()

	existing, err := o.Store.FindArtistByIdentity(ctx, profile)

	switch {
	case err == nil:
		profile.Id = existing.Id
		profile.CreatedAt = existing.CreatedAt
		fillProfileGaps(profile, existing)
	case apperrors.IsNotFound(err):
		profile.Id = o.newId()
		profile.CreatedAt = now
	default:
		return wrapPersistence("find artist", err)
	}

	profile.UpdatedAt = now

	if err := o.Store.SaveArtist(ctx, profile); err != nil {
		return wrapPersistence("save artist", err)
	}

	return nil
}

// linkSimilar returns the stored id of the similar artist, ingesting it first when depth allows
func (o *Orchestrator) linkSimilar(ctx context.Context, aggregate *appmodels.ArtistAggregate, edge *appmodels.SimilarArtistEdge, depth int) string {
	if known, err := o.Store.FindArtistByName(ctx, edge.ToArtistName); err == nil {
		return known.Id
	}

	if depth <= 0 {
		return ""
	}

	child, err := o.IngestArtist(ctx, edge.ToArtistName, IngestOptions{Depth: depth - 1})

	if err != nil {
		logger.WithArtist(edge.ToArtistName).Warning("Failed to ingest similar artist ", err)
		aggregate.AddWarning("similar", err)
		return ""
	}

	return child.Profile.Id
}

// fillProfileGaps keeps what the store already knew when this ingestion could not fetch it
func fillProfileGaps(profile *appmodels.ArtistProfile, existing *appmodels.ArtistProfile) {
	profile.SpotifyId = firstNonEmpty(profile.SpotifyId, existing.SpotifyId)
	profile.MusicbrainzId = firstNonEmpty(profile.MusicbrainzId, existing.MusicbrainzId)
	profile.YoutubeChannelId = firstNonEmpty(profile.YoutubeChannelId, existing.YoutubeChannelId)
	profile.LastFmId = firstNonEmpty(profile.LastFmId, existing.LastFmId)
	profile.ViberateSlug = firstNonEmpty(profile.ViberateSlug, existing.ViberateSlug)
	profile.ImageUrl = firstNonEmpty(profile.ImageUrl, existing.ImageUrl)
	profile.Country = firstNonEmpty(profile.Country, existing.Country)
	profile.Gender = firstNonEmpty(profile.Gender, existing.Gender)
	profile.Disambiguation = firstNonEmpty(profile.Disambiguation, existing.Disambiguation)

	if profile.Biography == nil {
		profile.Biography = copyString(existing.Biography)
	}

	if len(profile.Genres) == 0 {
		profile.Genres = append([]string{}, existing.Genres...)
	}

	if profile.ActiveYears.Begin == nil && profile.ActiveYears.End == nil {
		profile.ActiveYears = appmodels.ActiveYears{
			Begin: copyString(existing.ActiveYears.Begin),
			End:   copyString(existing.ActiveYears.End),
		}
	}
}

func wrapPersistence(operation string, err error) error {
	var persistence *apperrors.PersistenceError

	if errors.As(err, &persistence) {
		return err
	}

	return apperrors.Persistence(operation, err)
}
