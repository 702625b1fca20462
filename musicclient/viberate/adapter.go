package viberate

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/artist-analytics/appmodels"
)

var counterPattern = regexp.MustCompile(`^([0-9][0-9,]*(?:\.[0-9]+)?)\s*([KMB]?)$`)

var multipliers = map[string]float64{
	"":  1,
	"K": 1e3,
	"M": 1e6,
	"B": 1e9,
}

// ParseCounter reads displayed counters such as "1.2M", "350K" or "12,345", anything else or anything past int64 is unknown
func ParseCounter(raw string) *int64 {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	matches := counterPattern.FindStringSubmatch(cleaned)

	if matches == nil {
		return nil
	}

	number, err := strconv.ParseFloat(strings.ReplaceAll(matches[1], ",", ""), 64)

	if err != nil {
		return nil
	}

	scaled := math.Round(number * multipliers[matches[2]])

	// float64(math.MaxInt64) rounds up to 2^63, which no int64 holds
	if math.IsInf(scaled, 0) || scaled >= float64(math.MaxInt64) {
		return nil
	}

	value := int64(scaled)

	return &value
}

// ExtractVideoId handles watch?v=, youtu.be/ and /embed/ urls
func ExtractVideoId(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))

	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")

	switch {
	case host == "youtu.be":
		return firstSegment(parsed.Path)
	case strings.HasSuffix(host, "youtube.com"):
		if id := parsed.Query().Get("v"); id != "" {
			return id
		}

		if strings.HasPrefix(parsed.Path, "/embed/") {
			return firstSegment(strings.TrimPrefix(parsed.Path, "/embed/"))
		}

		if strings.HasPrefix(parsed.Path, "/shorts/") {
			return firstSegment(strings.TrimPrefix(parsed.Path, "/shorts/"))
		}
	}

	return ""
}

// ExtractSpotifyTrackId reads open.spotify.com/track/<id> urls and spotify:track:<id> uris
func ExtractSpotifyTrackId(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "spotify:track:") {
		return strings.TrimPrefix(raw, "spotify:track:")
	}

	parsed, err := url.Parse(raw)

	if err != nil || !strings.HasSuffix(strings.ToLower(parsed.Host), "spotify.com") {
		return ""
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")

	for i := 0; i < len(segments)-1; i++ {
		if segments[i] == "track" {
			return segments[i+1]
		}
	}

	return ""
}

func firstSegment(path string) string {
	return strings.Split(strings.Trim(path, "/"), "/")[0]
}

// ToSnapshot keeps only the metrics the scraper is the source of, other platforms fill theirs
func ToSnapshot(profile *RawProfile) *appmodels.AnalyticsSnapshot {
	snapshot := &appmodels.AnalyticsSnapshot{
		SpotifyMonthlyListeners: ParseCounter(profile.MonthlyListeners),
		InstagramFollowers:      ParseCounter(profile.Socials["instagram"]),
		FacebookFollowers:       ParseCounter(profile.Socials["facebook"]),
		TiktokFollowers:         ParseCounter(profile.Socials["tiktok"]),
		SoundcloudFollowers:     ParseCounter(profile.Socials["soundcloud"]),
		SpotifyFollowers:        ParseCounter(profile.Socials["spotify"]),
		YoutubeSubscribers:      ParseCounter(profile.Socials["youtube"]),
	}

	snapshot.Sanitise()

	return snapshot
}

// ToTracks skips songs whose spotify id cannot be read, they could never be joined
func ToTracks(profile *RawProfile) []*appmodels.TrackRecord {
	tracks := make([]*appmodels.TrackRecord, 0, len(profile.TopSongs))

	for _, song := range profile.TopSongs {
		id := ExtractSpotifyTrackId(song.Url)

		if id == "" {
			continue
		}

		tracks = append(tracks, &appmodels.TrackRecord{
			TrackId:     id,
			Title:       song.Title,
			ExternalUrl: song.Url,
			Streams:     ParseCounter(song.Streams),
		})
	}

	return tracks
}

func ToVideos(profile *RawProfile) []*appmodels.VideoRecord {
	videos := make([]*appmodels.VideoRecord, 0, len(profile.TopVideos))

	for _, video := range profile.TopVideos {
		id := ExtractVideoId(video.Url)

		if id == "" {
			continue
		}

		videos = append(videos, &appmodels.VideoRecord{
			VideoId:   id,
			Title:     video.Title,
			ViewCount: ParseCounter(video.Views),
		})
	}

	return videos
}
