package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/utils"
	"golang.org/x/sync/singleflight"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const TokenTTL = time.Hour
const DefaultTTL = 24 * time.Hour

// Tags group entries so one call drops a whole family of cached responses
const (
	TagSpotifyToken        = "spotify-token"
	TagSpotifySearchArtist = "spotify-search-artist"
	TagSpotifyArtist       = "spotify-artist"
	TagSpotifyArtists      = "spotify-artists"
	TagSpotifyTopTracks    = "spotify-top-tracks"
	TagSpotifyTracks       = "spotify-tracks"
	TagYoutubeSearch       = "youtube-search-channel"
	TagYoutubeChannel      = "youtube-channel"
	TagYoutubeTopVideos    = "youtube-top-videos"
	TagYoutubeVideos       = "youtube-videos"
	TagLastFmArtistInfo    = "lastfm-artist-info"
	TagLastFmSimilar       = "lastfm-similar"
	TagMusicBrainzSearch   = "musicbrainz-search"
	TagMusicBrainzArtist   = "musicbrainz-artist"
	TagViberateData        = "viberate-data"
)

const artistTagPrefix = "artist:"

// Store is the persistent side of the cache, values are opaque bytes
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	Delete(ctx context.Context, key string) error
	InvalidateTag(ctx context.Context, tag string) (int, error)
	Close() error
}

// Entry describes one cached call: Tag:Arg is the key, Artist adds the entry to that artist's index.
// Arg is used as given apart from surrounding spaces, ids are case sensitive.
type Entry struct {
	Tag    string
	Arg    string
	Artist string
	TTL    time.Duration
}

func (e Entry) Key() string {
	return e.Tag + ":" + strings.TrimSpace(e.Arg)
}

func (e Entry) tags() []string {
	tags := []string{e.Tag}

	if e.Artist != "" {
		tags = append(tags, ArtistTag(e.Artist))
	}

	return tags
}

func (e Entry) ttl() time.Duration {
	if e.TTL > 0 {
		return e.TTL
	}

	return DefaultTTL
}

func ArtistTag(name string) string {
	return artistTagPrefix + utils.Slugify(name)
}

type artistContextKey struct{}

// WithArtist marks every entry loaded under ctx as belonging to the artist
func WithArtist(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, artistContextKey{}, name)
}

func artistFrom(ctx context.Context) string {
	name, _ := ctx.Value(artistContextKey{}).(string)
	return name
}

type Cache struct {
	store Store
	group singleflight.Group
}

func New(store Store) *Cache {
	return &Cache{store: store}
}

// GetOrLoad returns the cached value for the entry or runs load, caching only successful results.
// Concurrent misses on the same key share a single load.
func GetOrLoad[T any](ctx context.Context, c *Cache, entry Entry, load func(ctx context.Context) (T, error)) (T, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "cache.get_or_load")
	span.SetTag("cache.tag", entry.Tag)
	defer span.Finish()

	if entry.Artist == "" {
		entry.Artist = artistFrom(ctx)
	}

	var value T
	key := entry.Key()

	if c.lookup(ctx, entry, &value) {
		return value, nil
	}

	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		loaded, err := load(ctx)

		if err != nil {
			return loaded, err
		}

		c.save(ctx, entry, loaded)

		return loaded, nil
	})

	if shared {
		span.SetTag("cache.shared", true)
	}

	if err != nil {
		return value, err
	}

	return result.(T), nil
}

func (c *Cache) lookup(ctx context.Context, entry Entry, v interface{}) bool {
	raw, found, err := c.store.Get(ctx, entry.Key())

	if err != nil {
		logger.Logger.Warningf("Cache read failed for %s, loading from source %v", entry.Key(), err)
		return false
	}

	if !found {
		datadog.Increment(1, datadog.CacheMiss, datadog.CacheTag.Tag(entry.Tag))
		return false
	}

	if err := json.Unmarshal(raw, v); err != nil {
		logger.Logger.Warningf("Cached value for %s is unreadable, loading from source %v", entry.Key(), err)
		return false
	}

	datadog.Increment(1, datadog.CacheHit, datadog.CacheTag.Tag(entry.Tag))

	return true
}

func (c *Cache) save(ctx context.Context, entry Entry, value interface{}) {
	raw, err := json.Marshal(value)

	if err != nil {
		logger.Logger.Warningf("Failed to encode value for %s %v", entry.Key(), err)
		return
	}

	err = c.store.Set(ctx, entry.Key(), raw, entry.ttl(), entry.tags()...)

	if err != nil {
		logger.Logger.Warningf("Failed to cache %s %v", entry.Key(), err)
	}
}

func (c *Cache) InvalidateTag(ctx context.Context, tag string) (int, error) {
	removed, err := c.store.InvalidateTag(ctx, tag)

	if err != nil {
		logger.Logger.Errorf("Failed to invalidate cache tag %s %v", tag, err)
		return 0, err
	}

	datadog.Increment(1, datadog.CacheInvalidation, datadog.CacheTag.Tag(tag))
	logger.Logger.Infof("Invalidated %d cache entries for tag %s", removed, tag)

	return removed, nil
}

// Forget drops a single entry
func (c *Cache) Forget(ctx context.Context, entry Entry) error {
	err := c.store.Delete(ctx, entry.Key())

	if err != nil {
		logger.Logger.Errorf("Failed to drop cache entry %s %v", entry.Key(), err)
	}

	return err
}

// InvalidateArtist drops every cached response recorded for the artist
func (c *Cache) InvalidateArtist(ctx context.Context, name string) (int, error) {
	return c.InvalidateTag(ctx, ArtistTag(name))
}

func (c *Cache) Close() error {
	return c.store.Close()
}
