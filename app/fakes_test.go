package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/musicclient/generative"
	"github.com/artist-analytics/musicclient/lastfm"
	"github.com/artist-analytics/musicclient/musicbrainz"
	"github.com/artist-analytics/musicclient/spotify"
	"github.com/artist-analytics/musicclient/viberate"
	"github.com/artist-analytics/musicclient/youtube"
	"github.com/artist-analytics/utils"
)

type fakeSpotify struct {
	mutex     sync.Mutex
	ids       map[string]string
	artists   map[string]*spotify.ArtistData
	tracks    map[string][]*appmodels.TrackRecord
	searchErr error
	bulkErr   error
	calls     int
}

func (f *fakeSpotify) count() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls++
}

func (f *fakeSpotify) SearchArtist(ctx context.Context, name string) (string, error) {
	f.count()

	if f.searchErr != nil {
		return "", f.searchErr
	}

	if id, ok := f.ids[utils.NormaliseKey(name)]; ok {
		return id, nil
	}

	return "", apperrors.NotFound("spotify", name)
}

func (f *fakeSpotify) GetArtistData(ctx context.Context, id string) (*spotify.ArtistData, error) {
	f.count()

	if artist, ok := f.artists[id]; ok {
		return artist, nil
	}

	return nil, apperrors.NotFound("spotify", id)
}

func (f *fakeSpotify) GetArtistsData(ctx context.Context, ids []string) ([]*spotify.ArtistData, error) {
	f.count()

	if f.bulkErr != nil {
		return nil, f.bulkErr
	}

	artists := make([]*spotify.ArtistData, 0, len(ids))

	for _, id := range ids {
		if artist, ok := f.artists[id]; ok {
			artists = append(artists, artist)
		}
	}

	return artists, nil
}

func (f *fakeSpotify) GetArtistTopTracks(ctx context.Context, id string) ([]*appmodels.TrackRecord, error) {
	f.count()
	return f.tracks[id], nil
}

func (f *fakeSpotify) GetTracks(ctx context.Context, ids []string) ([]*appmodels.TrackRecord, error) {
	f.count()

	tracks := make([]*appmodels.TrackRecord, 0, len(ids))

	for _, id := range ids {
		tracks = append(tracks, &appmodels.TrackRecord{TrackId: id, Title: "track " + id})
	}

	return tracks, nil
}

type fakeYoutube struct {
	channels map[string]string
	info     map[string]*youtube.ChannelInfo
	videos   map[string][]*youtube.VideoData
	err      error
}

func (f *fakeYoutube) SearchChannelId(ctx context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	if id, ok := f.channels[utils.NormaliseKey(name)]; ok {
		return id, nil
	}

	return "", apperrors.NotFound("youtube", name)
}

func (f *fakeYoutube) GetChannelInfo(ctx context.Context, name string, knownChannelId string) (*youtube.ChannelInfo, error) {
	if f.err != nil {
		return nil, f.err
	}

	if info, ok := f.info[knownChannelId]; ok {
		return info, nil
	}

	return nil, apperrors.NotFound("youtube", knownChannelId)
}

func (f *fakeYoutube) GetChannelTopVideos(ctx context.Context, channelId string, n int) ([]*youtube.VideoData, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.videos[channelId], nil
}

func (f *fakeYoutube) GetVideosByIds(ctx context.Context, ids []string) ([]*youtube.VideoData, error) {
	if f.err != nil {
		return nil, f.err
	}

	videos := make([]*youtube.VideoData, 0, len(ids))

	for _, id := range ids {
		videos = append(videos, &youtube.VideoData{VideoId: id, Title: "video " + id, ViewCount: appmodels.Int64(10)})
	}

	return videos, nil
}

type fakeLastFm struct {
	info    map[string]*lastfm.ArtistInfo
	similar map[string][]lastfm.SimilarArtist
	err     error
}

func (f *fakeLastFm) GetArtistInfo(ctx context.Context, name string) (*lastfm.ArtistInfo, error) {
	if f.err != nil {
		return nil, f.err
	}

	if info, ok := f.info[utils.NormaliseKey(name)]; ok {
		return info, nil
	}

	return nil, apperrors.NotFound("lastfm", name)
}

func (f *fakeLastFm) GetSimilarArtistInfo(ctx context.Context, name string, limit int) ([]lastfm.SimilarArtist, error) {
	if f.err != nil {
		return nil, f.err
	}

	similar := f.similar[utils.NormaliseKey(name)]

	if len(similar) > limit {
		similar = similar[:limit]
	}

	return similar, nil
}

type fakeMusicBrainz struct {
	ids     map[string]string
	details map[string]*musicbrainz.ArtistDetails
}

func (f *fakeMusicBrainz) SearchArtistId(ctx context.Context, name string) (string, error) {
	if id, ok := f.ids[utils.NormaliseKey(name)]; ok {
		return id, nil
	}

	return "", apperrors.NotFound("musicbrainz", name)
}

func (f *fakeMusicBrainz) GetArtistDetails(ctx context.Context, id string) (*musicbrainz.ArtistDetails, error) {
	if details, ok := f.details[id]; ok {
		return details, nil
	}

	return nil, apperrors.NotFound("musicbrainz", id)
}

type fakeViberate struct {
	profiles map[string]*viberate.RawProfile
	cleared  bool
}

func (f *fakeViberate) GetArtistData(ctx context.Context, name string, clearCache bool) (*viberate.RawProfile, error) {
	f.cleared = f.cleared || clearCache

	if profile, ok := f.profiles[utils.NormaliseKey(name)]; ok {
		return profile, nil
	}

	return nil, &apperrors.ScrapeError{Slug: utils.Slugify(name), Err: apperrors.ErrNotFound}
}

type fakeWriter struct {
	mutex sync.Mutex
	facts []generative.Facts
	err   error
}

func (f *fakeWriter) GenerateBiography(ctx context.Context, facts generative.Facts) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.facts = append(f.facts, facts)

	if f.err != nil {
		return "", f.err
	}

	return "Generated biography of " + facts.Name, nil
}

func (f *fakeWriter) calls() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.facts)
}

type fakeCache struct {
	artists []string
	tags    []string
}

func (f *fakeCache) InvalidateArtist(ctx context.Context, name string) (int, error) {
	f.artists = append(f.artists, name)
	return 1, nil
}

func (f *fakeCache) InvalidateTag(ctx context.Context, tag string) (int, error) {
	f.tags = append(f.tags, tag)
	return 2, nil
}

// memoryStore keeps rows in maps, the way the real stores key them
type memoryStore struct {
	mutex     sync.Mutex
	artists   map[string]*appmodels.ArtistProfile
	snapshots map[string][]*appmodels.AnalyticsSnapshot
	tracks    map[string][]*appmodels.TrackRecord
	videos    map[string][]*appmodels.VideoRecord
	similar   map[string][]*appmodels.SimilarArtistEdge
	saveErr   error
}

// sharesIdentity mirrors the $or lookup of the real stores: one equal external id is a match
func sharesIdentity(artist *appmodels.ArtistProfile, other *appmodels.ArtistProfile) bool {
	same := func(a string, b string) bool { return a != "" && a == b }

	return same(artist.SpotifyId, other.SpotifyId) ||
		same(artist.MusicbrainzId, other.MusicbrainzId) ||
		same(artist.YoutubeChannelId, other.YoutubeChannelId) ||
		same(artist.LastFmId, other.LastFmId)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		artists:   map[string]*appmodels.ArtistProfile{},
		snapshots: map[string][]*appmodels.AnalyticsSnapshot{},
		tracks:    map[string][]*appmodels.TrackRecord{},
		videos:    map[string][]*appmodels.VideoRecord{},
		similar:   map[string][]*appmodels.SimilarArtistEdge{},
	}
}

func (s *memoryStore) GetArtist(ctx context.Context, id string) (*appmodels.ArtistProfile, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if artist, ok := s.artists[id]; ok {
		copied := *artist
		return &copied, nil
	}

	return nil, apperrors.ErrNotFound
}

func (s *memoryStore) FindArtistByIdentity(ctx context.Context, profile *appmodels.ArtistProfile) (*appmodels.ArtistProfile, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, artist := range s.artists {
		if sharesIdentity(artist, profile) {
			copied := *artist
			return &copied, nil
		}
	}

	return nil, apperrors.ErrNotFound
}

func (s *memoryStore) FindArtistByName(ctx context.Context, name string) (*appmodels.ArtistProfile, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, artist := range s.artists {
		if strings.EqualFold(artist.Name, strings.TrimSpace(name)) {
			copied := *artist
			return &copied, nil
		}
	}

	return nil, apperrors.ErrNotFound
}

func (s *memoryStore) ListArtists(ctx context.Context, limit int) ([]*appmodels.ArtistProfile, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	artists := make([]*appmodels.ArtistProfile, 0, len(s.artists))

	for _, artist := range s.artists {
		artists = append(artists, artist)
	}

	sort.Slice(artists, func(i, j int) bool { return artists[i].Name < artists[j].Name })

	if limit > 0 && len(artists) > limit {
		artists = artists[:limit]
	}

	return artists, nil
}

func (s *memoryStore) SaveArtist(ctx context.Context, profile *appmodels.ArtistProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}

	copied := *profile
	s.artists[profile.Id] = &copied

	return nil
}

func (s *memoryStore) DeleteArtist(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.artists, id)
	delete(s.snapshots, id)
	delete(s.tracks, id)
	delete(s.videos, id)
	delete(s.similar, id)

	return nil
}

func (s *memoryStore) AppendSnapshot(ctx context.Context, snapshot *appmodels.AnalyticsSnapshot) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	copied := *snapshot
	s.snapshots[snapshot.ArtistId] = append(s.snapshots[snapshot.ArtistId], &copied)

	return nil
}

func (s *memoryStore) LatestSnapshot(ctx context.Context, artistId string) (*appmodels.AnalyticsSnapshot, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snapshots := s.snapshots[artistId]

	if len(snapshots) == 0 {
		return nil, apperrors.ErrNotFound
	}

	copied := *snapshots[len(snapshots)-1]
	return &copied, nil
}

func (s *memoryStore) UpsertTracks(ctx context.Context, artistId string, tracks []*appmodels.TrackRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tracks[artistId] = tracks
	return nil
}

func (s *memoryStore) GetTracks(ctx context.Context, artistId string) ([]*appmodels.TrackRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.tracks[artistId], nil
}

func (s *memoryStore) FindTracksByIds(ctx context.Context, trackIds []string) ([]*appmodels.TrackRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	found := make([]*appmodels.TrackRecord, 0)

	for _, tracks := range s.tracks {
		for _, track := range tracks {
			for _, id := range trackIds {
				if track.TrackId == id {
					found = append(found, track)
				}
			}
		}
	}

	return found, nil
}

func (s *memoryStore) UpsertVideos(ctx context.Context, artistId string, videos []*appmodels.VideoRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.videos[artistId] = videos
	return nil
}

func (s *memoryStore) GetVideos(ctx context.Context, artistId string) ([]*appmodels.VideoRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.videos[artistId], nil
}

func (s *memoryStore) ReplaceSimilar(ctx context.Context, fromArtistId string, edges []*appmodels.SimilarArtistEdge) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.similar[fromArtistId] = edges
	return nil
}

func (s *memoryStore) GetSimilar(ctx context.Context, fromArtistId string) ([]*appmodels.SimilarArtistEdge, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.similar[fromArtistId], nil
}

type fixture struct {
	spotify     *fakeSpotify
	youtube     *fakeYoutube
	lastfm      *fakeLastFm
	musicbrainz *fakeMusicBrainz
	viberate    *fakeViberate
	writer      *fakeWriter
	cache       *fakeCache
	store       *memoryStore
}

func newFixture() *fixture {
	return &fixture{
		spotify: &fakeSpotify{
			ids:     map[string]string{},
			artists: map[string]*spotify.ArtistData{},
			tracks:  map[string][]*appmodels.TrackRecord{},
		},
		youtube: &fakeYoutube{
			channels: map[string]string{},
			info:     map[string]*youtube.ChannelInfo{},
			videos:   map[string][]*youtube.VideoData{},
		},
		lastfm: &fakeLastFm{
			info:    map[string]*lastfm.ArtistInfo{},
			similar: map[string][]lastfm.SimilarArtist{},
		},
		musicbrainz: &fakeMusicBrainz{
			ids:     map[string]string{},
			details: map[string]*musicbrainz.ArtistDetails{},
		},
		viberate: &fakeViberate{profiles: map[string]*viberate.RawProfile{}},
		writer:   &fakeWriter{},
		cache:    &fakeCache{},
		store:    newMemoryStore(),
	}
}

func (f *fixture) orchestrator(options Options) *Orchestrator {
	orchestrator := NewOrchestrator(Dependencies{
		Spotify:     f.spotify,
		Youtube:     f.youtube,
		LastFm:      f.lastfm,
		MusicBrainz: f.musicbrainz,
		Viberate:    f.viberate,
		Biography:   f.writer,
		Store:       f.store,
		Cache:       f.cache,
	}, options)

	ids := 0
	orchestrator.newId = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	orchestrator.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	return orchestrator
}

// withSia registers the artist on every platform
func (f *fixture) withSia() {
	bio := "Sia Kate Isobelle Furler is an Australian singer."
	begin := "1975-12-18"

	f.spotify.ids["sia"] = "5WUlDfRSoLAfcVSX1WnrxN"
	f.spotify.artists["5WUlDfRSoLAfcVSX1WnrxN"] = &spotify.ArtistData{
		Id: "5WUlDfRSoLAfcVSX1WnrxN", Name: "Sia", Genres: []string{"Pop", "australian pop"},
		ImageUrl: "https://i.scdn.co/sia.jpg", Followers: 26000000, Popularity: 85,
	}
	f.spotify.tracks["5WUlDfRSoLAfcVSX1WnrxN"] = []*appmodels.TrackRecord{
		{TrackId: "chandelier", Title: "Chandelier", Popularity: 80},
		{TrackId: "cheap-thrills", Title: "Cheap Thrills", Popularity: 84},
	}

	f.musicbrainz.ids["sia"] = "2f548675-008d-4332-876c-108b0c7ab9c5"
	f.musicbrainz.details["2f548675-008d-4332-876c-108b0c7ab9c5"] = &musicbrainz.ArtistDetails{
		Id: "2f548675-008d-4332-876c-108b0c7ab9c5", Name: "Sia", Type: "Person",
		Country: "AU", Gender: "Female", Begin: &begin, Tags: []string{"pop"},
	}

	f.youtube.channels["sia"] = "UCN9HPn2fq-NL8M5_kp4RWZQ"
	f.youtube.info["UCN9HPn2fq-NL8M5_kp4RWZQ"] = &youtube.ChannelInfo{
		ChannelId: "UCN9HPn2fq-NL8M5_kp4RWZQ", Title: "SiaVEVO",
		Subscribers: appmodels.Int64(15000000), TotalViews: appmodels.Int64(9000000000), VideoCount: appmodels.Int64(120),
	}
	f.youtube.videos["UCN9HPn2fq-NL8M5_kp4RWZQ"] = []*youtube.VideoData{
		{VideoId: "2vjPBrBU-TM", Title: "Chandelier", ViewCount: appmodels.Int64(2800000000)},
	}

	f.lastfm.info["sia"] = &lastfm.ArtistInfo{
		Name: "Sia", Url: "https://www.last.fm/music/Sia", Biography: &bio,
		Tags: []string{"female vocalists"}, Listeners: appmodels.Int64(3000000), PlayCount: appmodels.Int64(150000000),
	}
}
