package app

import (
	"strings"

	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/musicclient/lastfm"
	"github.com/artist-analytics/musicclient/musicbrainz"
	"github.com/artist-analytics/musicclient/spotify"
	"github.com/artist-analytics/musicclient/viberate"
	"github.com/artist-analytics/musicclient/youtube"
)

type Source string

const (
	SourceSpotify     Source = "spotify"
	SourceMusicBrainz Source = "musicbrainz"
	SourceLastFm      Source = "lastfm"
	SourceYoutube     Source = "youtube"
	SourceViberate    Source = "viberate"
	SourceInput       Source = "input"
)

// Precedence lists, per field, the sources consulted in order. The first non empty value wins.
type Precedence struct {
	Name      []Source
	Biography []Source
	Genres    []Source
	Details   []Source
	ImageUrl  []Source
}

// MusicBrainz is first for biography but has no biography field, Last.fm supplies it until an annotation source exists
func DefaultPrecedence() Precedence {
	return Precedence{
		Name:      []Source{SourceSpotify, SourceMusicBrainz, SourceLastFm, SourceYoutube, SourceInput},
		Biography: []Source{SourceMusicBrainz, SourceLastFm, SourceInput},
		Genres:    []Source{SourceSpotify, SourceLastFm, SourceMusicBrainz, SourceInput},
		Details:   []Source{SourceMusicBrainz, SourceInput},
		ImageUrl:  []Source{SourceSpotify, SourceLastFm, SourceYoutube, SourceInput},
	}
}

type Identity struct {
	SpotifyId        string
	MusicbrainzId    string
	YoutubeChannelId string
}

// SourceData is what every source returned for one artist, nil where a source failed or was skipped
type SourceData struct {
	InputName     string
	Identity      Identity
	Input         *appmodels.ArtistProfile
	Spotify       *spotify.ArtistData
	SpotifyTracks []*appmodels.TrackRecord
	MusicBrainz   *musicbrainz.ArtistDetails
	LastFm        *lastfm.ArtistInfo
	Youtube       *youtube.ChannelInfo
	YoutubeVideos []*youtube.VideoData
	Viberate      *viberate.RawProfile
	Similar       []*appmodels.SimilarArtistEdge

	SimilarFetched bool
}

// Merge is pure: the same data and precedence always give the same aggregate and inputs are never modified
func Merge(data *SourceData, precedence Precedence) *appmodels.ArtistAggregate {
	profile := &appmodels.ArtistProfile{
		Name:             pickString(precedence.Name, nameCandidates(data)),
		SpotifyId:        firstNonEmpty(data.Identity.SpotifyId, inputField(data, func(p *appmodels.ArtistProfile) string { return p.SpotifyId })),
		MusicbrainzId:    firstNonEmpty(data.Identity.MusicbrainzId, inputField(data, func(p *appmodels.ArtistProfile) string { return p.MusicbrainzId })),
		YoutubeChannelId: firstNonEmpty(data.Identity.YoutubeChannelId, inputField(data, func(p *appmodels.ArtistProfile) string { return p.YoutubeChannelId })),
		LastFmId:         inputField(data, func(p *appmodels.ArtistProfile) string { return p.LastFmId }),
		ViberateSlug:     inputField(data, func(p *appmodels.ArtistProfile) string { return p.ViberateSlug }),
		Biography:        pickPointer(precedence.Biography, biographyCandidates(data)),
		Genres:           appmodels.NormaliseGenres(pickList(precedence.Genres, genreCandidates(data))),
		ImageUrl:         pickString(precedence.ImageUrl, imageCandidates(data)),
	}

	if data.LastFm != nil && data.LastFm.Url != "" {
		profile.LastFmId = data.LastFm.Url
	}

	if data.Viberate != nil && data.Viberate.Slug != "" {
		profile.ViberateSlug = data.Viberate.Slug
	}

	mergeDetails(profile, data, precedence.Details)

	aggregate := &appmodels.ArtistAggregate{
		Profile:   profile,
		Analytics: mergeSnapshot(data),
		Tracks:    LeftJoinTracks(data.SpotifyTracks, viberateTracks(data)),
		Videos:    LeftJoinVideos(videoRecords(data.YoutubeVideos), viberateVideos(data)),
		Similar:   copyEdges(data.Similar),

		SimilarFetched: data.SimilarFetched,
	}

	return aggregate
}

func inputField(data *SourceData, get func(*appmodels.ArtistProfile) string) string {
	if data.Input == nil {
		return ""
	}

	return get(data.Input)
}

func nameCandidates(data *SourceData) map[Source]string {
	candidates := map[Source]string{SourceInput: strings.TrimSpace(data.InputName)}

	if data.Input != nil && data.Input.Name != "" {
		candidates[SourceInput] = strings.TrimSpace(data.Input.Name)
	}

	if data.Spotify != nil {
		candidates[SourceSpotify] = data.Spotify.Name
	}

	if data.MusicBrainz != nil {
		candidates[SourceMusicBrainz] = data.MusicBrainz.Name
	}

	if data.LastFm != nil {
		candidates[SourceLastFm] = data.LastFm.Name
	}

	if data.Youtube != nil {
		candidates[SourceYoutube] = data.Youtube.Title
	}

	return candidates
}

func biographyCandidates(data *SourceData) map[Source]*string {
	candidates := map[Source]*string{}

	if data.LastFm != nil {
		candidates[SourceLastFm] = data.LastFm.Biography
	}

	if data.Input != nil {
		candidates[SourceInput] = data.Input.Biography
	}

	return candidates
}

func genreCandidates(data *SourceData) map[Source][]string {
	candidates := map[Source][]string{}

	if data.Spotify != nil {
		candidates[SourceSpotify] = data.Spotify.Genres
	}

	if data.LastFm != nil {
		candidates[SourceLastFm] = data.LastFm.Tags
	}

	if data.MusicBrainz != nil {
		candidates[SourceMusicBrainz] = data.MusicBrainz.Tags
	}

	if data.Input != nil {
		candidates[SourceInput] = data.Input.Genres
	}

	return candidates
}

func imageCandidates(data *SourceData) map[Source]string {
	candidates := map[Source]string{}

	if data.Spotify != nil {
		candidates[SourceSpotify] = data.Spotify.ImageUrl
	}

	if data.LastFm != nil {
		candidates[SourceLastFm] = data.LastFm.ImageUrl
	}

	if data.Youtube != nil {
		candidates[SourceYoutube] = data.Youtube.Thumbnail
	}

	if data.Input != nil {
		candidates[SourceInput] = data.Input.ImageUrl
	}

	return candidates
}

// country, gender, active years and disambiguation travel together so they always describe the same entity
func mergeDetails(profile *appmodels.ArtistProfile, data *SourceData, order []Source) {
	for _, source := range order {
		switch source {
		case SourceMusicBrainz:
			if details := data.MusicBrainz; details != nil {
				profile.Country = details.Country
				profile.Gender = details.Gender
				profile.Disambiguation = details.Disambiguation
				profile.ActiveYears = appmodels.ActiveYears{Begin: copyString(details.Begin), End: copyString(details.End)}
				return
			}
		case SourceInput:
			if input := data.Input; input != nil {
				profile.Country = input.Country
				profile.Gender = input.Gender
				profile.Disambiguation = input.Disambiguation
				profile.ActiveYears = appmodels.ActiveYears{Begin: copyString(input.ActiveYears.Begin), End: copyString(input.ActiveYears.End)}
				return
			}
		}
	}
}

// each metric comes from its own platform, the scraper only fills what is still unknown
func mergeSnapshot(data *SourceData) *appmodels.AnalyticsSnapshot {
	snapshot := &appmodels.AnalyticsSnapshot{}

	if data.Spotify != nil {
		snapshot.SpotifyFollowers = appmodels.Int64(data.Spotify.Followers)
		snapshot.SpotifyPopularity = appmodels.Int64(data.Spotify.Popularity)
	}

	if data.Youtube != nil {
		snapshot.YoutubeSubscribers = copyInt64(data.Youtube.Subscribers)
		snapshot.YoutubeTotalViews = copyInt64(data.Youtube.TotalViews)
		snapshot.YoutubeVideoCount = copyInt64(data.Youtube.VideoCount)
	}

	if data.LastFm != nil {
		snapshot.LastfmListeners = copyInt64(data.LastFm.Listeners)
		snapshot.LastfmPlayCount = copyInt64(data.LastFm.PlayCount)
	}

	if data.Viberate != nil {
		snapshot.FillGaps(viberate.ToSnapshot(data.Viberate))
	}

	snapshot.Sanitise()

	return snapshot
}

func viberateTracks(data *SourceData) []*appmodels.TrackRecord {
	if data.Viberate == nil {
		return nil
	}

	return viberate.ToTracks(data.Viberate)
}

func viberateVideos(data *SourceData) []*appmodels.VideoRecord {
	if data.Viberate == nil {
		return nil
	}

	return viberate.ToVideos(data.Viberate)
}

func videoRecords(youtubeVideos []*youtube.VideoData) []*appmodels.VideoRecord {
	videos := make([]*appmodels.VideoRecord, 0, len(youtubeVideos))

	for _, video := range youtubeVideos {
		if video != nil {
			videos = append(videos, video.ToRecord())
		}
	}

	return videos
}

// LeftJoinTracks keeps every primary track in order, fills its gaps from the secondary track with the same id
// and appends secondary only tracks. Inputs are copied, never modified.
func LeftJoinTracks(primary []*appmodels.TrackRecord, secondary []*appmodels.TrackRecord) []*appmodels.TrackRecord {
	secondaryById := make(map[string]*appmodels.TrackRecord, len(secondary))

	for _, track := range secondary {
		if track != nil && track.TrackId != "" {
			if _, seen := secondaryById[track.TrackId]; !seen {
				secondaryById[track.TrackId] = track
			}
		}
	}

	merged := make([]*appmodels.TrackRecord, 0, len(primary)+len(secondary))
	seen := make(map[string]bool, len(primary)+len(secondary))

	for _, track := range primary {
		if track == nil || track.TrackId == "" || seen[track.TrackId] {
			continue
		}

		result := copyTrack(track)

		if other, ok := secondaryById[track.TrackId]; ok {
			fillTrackGaps(result, other)
		}

		merged = append(merged, result)
		seen[track.TrackId] = true
	}

	for _, track := range secondary {
		if track == nil || track.TrackId == "" || seen[track.TrackId] {
			continue
		}

		merged = append(merged, copyTrack(track))
		seen[track.TrackId] = true
	}

	return merged
}

func fillTrackGaps(track *appmodels.TrackRecord, other *appmodels.TrackRecord) {
	track.Title = firstNonEmpty(track.Title, other.Title)
	track.ImageUrl = firstNonEmpty(track.ImageUrl, other.ImageUrl)
	track.PreviewUrl = firstNonEmpty(track.PreviewUrl, other.PreviewUrl)
	track.ExternalUrl = firstNonEmpty(track.ExternalUrl, other.ExternalUrl)

	if track.Popularity == 0 {
		track.Popularity = other.Popularity
	}

	if track.Streams == nil {
		track.Streams = copyInt64(other.Streams)
	}
}

// LeftJoinVideos follows the same rule as LeftJoinTracks, keyed by video id
func LeftJoinVideos(primary []*appmodels.VideoRecord, secondary []*appmodels.VideoRecord) []*appmodels.VideoRecord {
	secondaryById := make(map[string]*appmodels.VideoRecord, len(secondary))

	for _, video := range secondary {
		if video != nil && video.VideoId != "" {
			if _, seen := secondaryById[video.VideoId]; !seen {
				secondaryById[video.VideoId] = video
			}
		}
	}

	merged := make([]*appmodels.VideoRecord, 0, len(primary)+len(secondary))
	seen := make(map[string]bool, len(primary)+len(secondary))

	for _, video := range primary {
		if video == nil || video.VideoId == "" || seen[video.VideoId] {
			continue
		}

		result := copyVideo(video)

		if other, ok := secondaryById[video.VideoId]; ok {
			result.Title = firstNonEmpty(result.Title, other.Title)
			result.Thumbnail = firstNonEmpty(result.Thumbnail, other.Thumbnail)
			result.PublishedAt = firstNonEmpty(result.PublishedAt, other.PublishedAt)

			if result.ViewCount == nil {
				result.ViewCount = copyInt64(other.ViewCount)
			}

			if result.LikeCount == nil {
				result.LikeCount = copyInt64(other.LikeCount)
			}

			if result.CommentCount == nil {
				result.CommentCount = copyInt64(other.CommentCount)
			}
		}

		merged = append(merged, result)
		seen[video.VideoId] = true
	}

	for _, video := range secondary {
		if video == nil || video.VideoId == "" || seen[video.VideoId] {
			continue
		}

		merged = append(merged, copyVideo(video))
		seen[video.VideoId] = true
	}

	return merged
}

func pickString(order []Source, candidates map[Source]string) string {
	for _, source := range order {
		if value := strings.TrimSpace(candidates[source]); value != "" {
			return value
		}
	}

	return ""
}

func pickPointer(order []Source, candidates map[Source]*string) *string {
	for _, source := range order {
		if value := candidates[source]; value != nil && strings.TrimSpace(*value) != "" {
			return copyString(value)
		}
	}

	return nil
}

func pickList(order []Source, candidates map[Source][]string) []string {
	for _, source := range order {
		if values := candidates[source]; len(values) > 0 {
			return values
		}
	}

	return []string{}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}

func copyString(value *string) *string {
	if value == nil {
		return nil
	}

	v := *value
	return &v
}

func copyInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}

	v := *value
	return &v
}

func copyTrack(track *appmodels.TrackRecord) *appmodels.TrackRecord {
	result := *track
	result.Streams = copyInt64(track.Streams)
	return &result
}

func copyVideo(video *appmodels.VideoRecord) *appmodels.VideoRecord {
	result := *video
	result.ViewCount = copyInt64(video.ViewCount)
	result.LikeCount = copyInt64(video.LikeCount)
	result.CommentCount = copyInt64(video.CommentCount)
	return &result
}

func copyEdges(edges []*appmodels.SimilarArtistEdge) []*appmodels.SimilarArtistEdge {
	result := make([]*appmodels.SimilarArtistEdge, 0, len(edges))

	for _, edge := range edges {
		if edge == nil {
			continue
		}

		copied := *edge
		copied.Genres = append([]string{}, edge.Genres...)
		copied.Followers = copyInt64(edge.Followers)
		copied.Popularity = copyInt64(edge.Popularity)
		result = append(result, &copied)
	}

	return result
}
