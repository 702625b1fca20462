package sqlclient

import (
	"time"

	"github.com/artist-analytics/appmodels"
)

type artistRow struct {
	Id               string `gorm:"primaryKey"`
	Name             string
	NameKey          string `gorm:"index"`
	SpotifyId        string `gorm:"index"`
	MusicbrainzId    string `gorm:"index"`
	YoutubeChannelId string `gorm:"index"`
	LastFmId         string `gorm:"column:lastfm_id;index"`
	ViberateSlug     string
	Biography        *string
	Genres           []string `gorm:"serializer:json"`
	Country          string
	Gender           string
	ActiveBegin      *string
	ActiveEnd        *string
	ImageUrl         string
	Disambiguation   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (artistRow) TableName() string { return "artists" }

type snapshotRow struct {
	Id                      string    `gorm:"primaryKey"`
	ArtistId                string    `gorm:"index:idx_snapshot_artist_taken,priority:1"`
	TakenAt                 time.Time `gorm:"index:idx_snapshot_artist_taken,priority:2"`
	SpotifyFollowers        *int64
	SpotifyPopularity       *int64
	SpotifyMonthlyListeners *int64
	YoutubeSubscribers      *int64
	YoutubeTotalViews       *int64
	YoutubeVideoCount       *int64
	LastfmListeners         *int64
	LastfmPlayCount         *int64
	InstagramFollowers      *int64
	FacebookFollowers       *int64
	TiktokFollowers         *int64
	SoundcloudFollowers     *int64
}

func (snapshotRow) TableName() string { return "snapshots" }

type trackRow struct {
	ArtistId    string `gorm:"primaryKey"`
	TrackId     string `gorm:"primaryKey;index"`
	Position    int
	Title       string
	ImageUrl    string
	Popularity  int
	PreviewUrl  string
	ExternalUrl string
	Streams     *int64
}

func (trackRow) TableName() string { return "tracks" }

type videoRow struct {
	ArtistId     string `gorm:"primaryKey"`
	VideoId      string `gorm:"primaryKey"`
	Position     int
	Title        string
	Thumbnail    string
	ViewCount    *int64
	LikeCount    *int64
	CommentCount *int64
	PublishedAt  string
}

func (videoRow) TableName() string { return "videos" }

type similarRow struct {
	FromArtistId string `gorm:"primaryKey"`
	Position     int    `gorm:"primaryKey;autoIncrement:false"`
	ToArtistName string
	ToArtistId   string
	SpotifyId    string
	MatchScore   float64
	Genres       []string `gorm:"serializer:json"`
	ImageUrl     string
	Followers    *int64
	Popularity   *int64
	Selected     bool
}

func (similarRow) TableName() string { return "similar_artists" }

func toArtistRow(profile *appmodels.ArtistProfile, nameKey string) *artistRow {
	return &artistRow{
		Id:               profile.Id,
		Name:             profile.Name,
		NameKey:          nameKey,
		SpotifyId:        profile.SpotifyId,
		MusicbrainzId:    profile.MusicbrainzId,
		YoutubeChannelId: profile.YoutubeChannelId,
		LastFmId:         profile.LastFmId,
		ViberateSlug:     profile.ViberateSlug,
		Biography:        profile.Biography,
		Genres:           profile.Genres,
		Country:          profile.Country,
		Gender:           profile.Gender,
		ActiveBegin:      profile.ActiveYears.Begin,
		ActiveEnd:        profile.ActiveYears.End,
		ImageUrl:         profile.ImageUrl,
		Disambiguation:   profile.Disambiguation,
		CreatedAt:        profile.CreatedAt,
		UpdatedAt:        profile.UpdatedAt,
	}
}

func (row *artistRow) toProfile() *appmodels.ArtistProfile {
	genres := row.Genres

	if genres == nil {
		genres = []string{}
	}

	return &appmodels.ArtistProfile{
		Id:               row.Id,
		Name:             row.Name,
		SpotifyId:        row.SpotifyId,
		MusicbrainzId:    row.MusicbrainzId,
		YoutubeChannelId: row.YoutubeChannelId,
		LastFmId:         row.LastFmId,
		ViberateSlug:     row.ViberateSlug,
		Biography:        row.Biography,
		Genres:           genres,
		Country:          row.Country,
		Gender:           row.Gender,
		ActiveYears:      appmodels.ActiveYears{Begin: row.ActiveBegin, End: row.ActiveEnd},
		ImageUrl:         row.ImageUrl,
		Disambiguation:   row.Disambiguation,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
