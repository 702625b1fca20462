package api

import (
	"context"

	"github.com/artist-analytics/app"
	"github.com/artist-analytics/appmodels"
)

// Service is the part of the orchestrator the routes call into
type Service interface {
	IngestArtist(ctx context.Context, name string, options app.IngestOptions) (*appmodels.ArtistAggregate, error)
	SimilarArtists(ctx context.Context, name string) ([]*appmodels.SimilarArtistEdge, error)
	GetArtistTracks(ctx context.Context, spotifyId string, spotifyIds []string) ([]*appmodels.TrackRecord, error)
	GetVideos(ctx context.Context, ids []string) ([]*appmodels.VideoRecord, error)
	ScrapeViberate(ctx context.Context, name string, clearCache bool) (*app.ViberateResult, error)

	AddArtist(ctx context.Context, input *appmodels.ArtistAggregate) (*appmodels.ArtistAggregate, error)
	UpdateArtist(ctx context.Context, id string, patch *app.ArtistPatch) (*appmodels.ArtistProfile, error)
	UpdateArtistYoutube(ctx context.Context, id string, patch app.YoutubePatch) (*appmodels.ArtistAggregate, error)
	GetArtist(ctx context.Context, id string) (*appmodels.ArtistAggregate, error)
	ListArtists(ctx context.Context, limit int) ([]*appmodels.ArtistProfile, error)
	PurgeArtist(ctx context.Context, id string) error
	InvalidateCache(ctx context.Context, tag string) (int, error)

	MaxDepth() int
}

var _ Service = (*app.Orchestrator)(nil)
