package datadog

import "fmt"

type Tag struct {
	Key string
}

func (t Tag) Tag(value string) string {
	return fmt.Sprintf("%s:%s", t.Key, value)
}

func (t Tag) TagBool(value bool) string {
	return fmt.Sprintf("%s:%t", t.Key, value)
}

// For ingestion
const IngestionStarted = "ingestion.started"
const IngestionState = "ingestion.state"
const IngestionFailed = "ingestion.failed"
const IngestionTime = "ingestion.time"
const IngestionWarnings = "ingestion.warnings"
const BiographyGenerated = "ingestion.biography.generated"
const SimilarArtistsResolved = "similar.resolved.count"

var StateTag = Tag{"state"}

// For the cache layer
const CacheHit = "cache.hit"
const CacheMiss = "cache.miss"
const CacheInvalidation = "cache.invalidation"

var CacheTag = Tag{"cache_tag"}

// For persistence
const PersistenceWrites = "persistence.writes"

var StoreTag = Tag{"store"}

// For outbound platform api requests
const ApiRequests = "api.requests"
const ApiRequestTime = "api.requests.time"

const SpotifyProvider = "spotify"
const YoutubeProvider = "youtube"
const LastFmProvider = "lastfm"
const MusicBrainzProvider = "musicbrainz"
const ViberateProvider = "viberate"
const GenerativeProvider = "generative"

var Provider = Tag{"provider"}
var RequestType = Tag{"request_type"}
var Success = Tag{"success"}

const RequestTypeAuth = "auth"
const RequestTypeSearch = "search"
const RequestTypeArtists = "artists"
const RequestTypeTopTracks = "top_tracks"
const RequestTypeSongs = "songs"
const RequestTypeChannel = "channel"
const RequestTypeVideos = "videos"
const RequestTypeArtistInfo = "artist_info"
const RequestTypeSimilar = "similar"
const RequestTypeScrape = "scrape"
const RequestTypeBiography = "biography"
