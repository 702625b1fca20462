package app

import (
	"testing"

	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/musicclient/lastfm"
	"github.com/artist-analytics/musicclient/musicbrainz"
	"github.com/artist-analytics/musicclient/spotify"
	"github.com/artist-analytics/musicclient/viberate"
	"github.com/artist-analytics/musicclient/youtube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceData() *SourceData {
	bio := "Last.fm biography"
	begin := "1975"

	return &SourceData{
		InputName: "sia",
		Identity:  Identity{SpotifyId: "sp", MusicbrainzId: "mb", YoutubeChannelId: "yt"},
		Spotify:   &spotify.ArtistData{Id: "sp", Name: "Sia", Genres: []string{"pop"}, Followers: 10, Popularity: 50},
		SpotifyTracks: []*appmodels.TrackRecord{
			{TrackId: "t1", Title: "One", Popularity: 70},
		},
		MusicBrainz: &musicbrainz.ArtistDetails{Id: "mb", Name: "Sia Furler", Country: "AU", Begin: &begin},
		LastFm: &lastfm.ArtistInfo{
			Name: "SIA", Url: "https://www.last.fm/music/Sia", Biography: &bio,
			Tags: []string{"female vocalists"}, ImageUrl: "lastfm.png", Listeners: appmodels.Int64(5),
		},
		Youtube: &youtube.ChannelInfo{ChannelId: "yt", Title: "SiaVEVO", Subscribers: appmodels.Int64(7)},
		YoutubeVideos: []*youtube.VideoData{
			{VideoId: "v1", Title: "Video"},
		},
		Viberate: &viberate.RawProfile{
			Slug:      "sia",
			Socials:   map[string]string{"youtube": "100", "tiktok": "3K"},
			TopSongs:  []viberate.RawSong{{Title: "One", Url: "https://open.spotify.com/track/t1", Streams: "1M"}},
			TopVideos: []viberate.RawVideo{{Title: "Video", Url: "https://youtu.be/v1", Views: "2K"}},
		},
	}
}

func TestMergeFollowsPrecedence(t *testing.T) {
	aggregate := Merge(sourceData(), DefaultPrecedence())
	profile := aggregate.Profile

	assert.Equal(t, "Sia", profile.Name)
	assert.Equal(t, "Last.fm biography", *profile.Biography)
	assert.Equal(t, []string{"pop"}, profile.Genres)
	assert.Equal(t, "AU", profile.Country)
	assert.Equal(t, "1975", *profile.ActiveYears.Begin)
	assert.Equal(t, "lastfm.png", profile.ImageUrl)
	assert.Equal(t, "https://www.last.fm/music/Sia", profile.LastFmId)
	assert.Equal(t, "sia", profile.ViberateSlug)
}

func TestMergeSnapshotPrefersPlatformsOverScraper(t *testing.T) {
	snapshot := Merge(sourceData(), DefaultPrecedence()).Analytics

	assert.Equal(t, int64(7), *snapshot.YoutubeSubscribers)
	assert.Equal(t, int64(3000), *snapshot.TiktokFollowers)
	assert.Equal(t, int64(10), *snapshot.SpotifyFollowers)
	assert.Nil(t, snapshot.FacebookFollowers)
}

func TestMergeWithCustomPrecedence(t *testing.T) {
	precedence := DefaultPrecedence()
	precedence.Name = []Source{SourceMusicBrainz, SourceSpotify}
	precedence.Genres = []Source{SourceLastFm}

	profile := Merge(sourceData(), precedence).Profile

	assert.Equal(t, "Sia Furler", profile.Name)
	assert.Equal(t, []string{"female vocalists"}, profile.Genres)
}

func TestMergeFallsBackToInputName(t *testing.T) {
	aggregate := Merge(&SourceData{InputName: "  Unknown Act "}, DefaultPrecedence())

	assert.Equal(t, "Unknown Act", aggregate.Profile.Name)
	assert.Nil(t, aggregate.Profile.Biography)
	assert.Empty(t, aggregate.Profile.Genres)
	assert.True(t, aggregate.Analytics.IsEmpty())
}

func TestMergeIsDeterministicAndLeavesInputsAlone(t *testing.T) {
	data := sourceData()

	first := Merge(data, DefaultPrecedence())
	second := Merge(data, DefaultPrecedence())

	assert.Equal(t, first, second)

	first.Tracks[0].Title = "changed"
	*first.Profile.Biography = "changed"
	*first.Analytics.YoutubeSubscribers = 0

	assert.Equal(t, "One", data.SpotifyTracks[0].Title)
	assert.Equal(t, "Last.fm biography", *data.LastFm.Biography)
	assert.Equal(t, int64(7), *data.Youtube.Subscribers)
}

func TestMergeJoinsScrapedMedia(t *testing.T) {
	aggregate := Merge(sourceData(), DefaultPrecedence())

	require.Len(t, aggregate.Tracks, 1)
	assert.Equal(t, 70, aggregate.Tracks[0].Popularity)
	assert.Equal(t, int64(1000000), *aggregate.Tracks[0].Streams)

	require.Len(t, aggregate.Videos, 1)
	assert.Equal(t, int64(2000), *aggregate.Videos[0].ViewCount)
}

func TestLeftJoinTracks(t *testing.T) {
	primary := []*appmodels.TrackRecord{
		{TrackId: "a", Title: "A"},
		{TrackId: "b", Title: "B", Streams: appmodels.Int64(5)},
		{TrackId: "a", Title: "duplicate"},
	}
	secondary := []*appmodels.TrackRecord{
		{TrackId: "b", Title: "other B", Streams: appmodels.Int64(99)},
		{TrackId: "c", Title: "C", Streams: appmodels.Int64(1)},
		{TrackId: "a", ImageUrl: "a.png"},
		{TrackId: ""},
	}

	merged := LeftJoinTracks(primary, secondary)

	require.Len(t, merged, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{merged[0].TrackId, merged[1].TrackId, merged[2].TrackId})
	assert.Equal(t, "a.png", merged[0].ImageUrl)
	assert.Nil(t, merged[0].Streams)
	assert.Equal(t, "B", merged[1].Title)
	assert.Equal(t, int64(5), *merged[1].Streams)
	assert.Equal(t, int64(1), *merged[2].Streams)

	*merged[2].Streams = 42
	assert.Equal(t, int64(1), *secondary[1].Streams)
}

func TestLeftJoinVideos(t *testing.T) {
	merged := LeftJoinVideos(
		[]*appmodels.VideoRecord{{VideoId: "v1", Title: "One"}},
		[]*appmodels.VideoRecord{{VideoId: "v1", ViewCount: appmodels.Int64(3)}, {VideoId: "v2", Title: "Two"}},
	)

	require.Len(t, merged, 2)
	assert.Equal(t, "One", merged[0].Title)
	assert.Equal(t, int64(3), *merged[0].ViewCount)
	assert.Equal(t, "v2", merged[1].VideoId)
	assert.Nil(t, merged[1].ViewCount)
}
