package app

import (
	"context"

	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/musicclient/generative"
	"github.com/artist-analytics/musicclient/lastfm"
	"github.com/artist-analytics/musicclient/musicbrainz"
	"github.com/artist-analytics/musicclient/spotify"
	"github.com/artist-analytics/musicclient/viberate"
	"github.com/artist-analytics/musicclient/youtube"
)

type SpotifyClient interface {
	SearchArtist(ctx context.Context, name string) (string, error)
	GetArtistData(ctx context.Context, id string) (*spotify.ArtistData, error)
	GetArtistsData(ctx context.Context, ids []string) ([]*spotify.ArtistData, error)
	GetArtistTopTracks(ctx context.Context, id string) ([]*appmodels.TrackRecord, error)
	GetTracks(ctx context.Context, ids []string) ([]*appmodels.TrackRecord, error)
}

type YoutubeClient interface {
	SearchChannelId(ctx context.Context, name string) (string, error)
	GetChannelInfo(ctx context.Context, name string, knownChannelId string) (*youtube.ChannelInfo, error)
	GetChannelTopVideos(ctx context.Context, channelId string, n int) ([]*youtube.VideoData, error)
	GetVideosByIds(ctx context.Context, ids []string) ([]*youtube.VideoData, error)
}

type LastFmClient interface {
	GetArtistInfo(ctx context.Context, name string) (*lastfm.ArtistInfo, error)
	GetSimilarArtistInfo(ctx context.Context, name string, limit int) ([]lastfm.SimilarArtist, error)
}

type MusicBrainzClient interface {
	SearchArtistId(ctx context.Context, name string) (string, error)
	GetArtistDetails(ctx context.Context, id string) (*musicbrainz.ArtistDetails, error)
}

type ViberateClient interface {
	GetArtistData(ctx context.Context, name string, clearCache bool) (*viberate.RawProfile, error)
}

type BiographyWriter interface {
	GenerateBiography(ctx context.Context, facts generative.Facts) (string, error)
}

type CacheInvalidator interface {
	InvalidateArtist(ctx context.Context, name string) (int, error)
	InvalidateTag(ctx context.Context, tag string) (int, error)
}

// Store is the durable copy of everything ingestion produces. Lookups that find nothing return
// apperrors.ErrNotFound, write failures are apperrors.PersistenceError.
type Store interface {
	GetArtist(ctx context.Context, id string) (*appmodels.ArtistProfile, error)
	FindArtistByIdentity(ctx context.Context, profile *appmodels.ArtistProfile) (*appmodels.ArtistProfile, error)
	FindArtistByName(ctx context.Context, name string) (*appmodels.ArtistProfile, error)
	ListArtists(ctx context.Context, limit int) ([]*appmodels.ArtistProfile, error)
	SaveArtist(ctx context.Context, profile *appmodels.ArtistProfile) error
	DeleteArtist(ctx context.Context, id string) error

	AppendSnapshot(ctx context.Context, snapshot *appmodels.AnalyticsSnapshot) error
	LatestSnapshot(ctx context.Context, artistId string) (*appmodels.AnalyticsSnapshot, error)

	UpsertTracks(ctx context.Context, artistId string, tracks []*appmodels.TrackRecord) error
	GetTracks(ctx context.Context, artistId string) ([]*appmodels.TrackRecord, error)
	FindTracksByIds(ctx context.Context, trackIds []string) ([]*appmodels.TrackRecord, error)

	UpsertVideos(ctx context.Context, artistId string, videos []*appmodels.VideoRecord) error
	GetVideos(ctx context.Context, artistId string) ([]*appmodels.VideoRecord, error)

	ReplaceSimilar(ctx context.Context, fromArtistId string, edges []*appmodels.SimilarArtistEdge) error
	GetSimilar(ctx context.Context, fromArtistId string) ([]*appmodels.SimilarArtistEdge, error)
}
