package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedArtist struct {
	Name      string `json:"name"`
	Followers int64  `json:"followers"`
}

func newMemoryCache(t *testing.T) (*Cache, *MemoryStore) {
	store, err := NewMemoryStore(128)
	require.NoError(t, err)

	return New(store), store
}

func newRedisCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	return New(NewRedisStoreFromClient(client)), server
}

func stores(t *testing.T) map[string]*Cache {
	memory, _ := newMemoryCache(t)
	redisCache, _ := newRedisCache(t)

	return map[string]*Cache{"memory": memory, "redis": redisCache}
}

func TestGetOrLoadCachesSuccess(t *testing.T) {
	for name, c := range stores(t) {
		t.Run(name, func(t *testing.T) {
			calls := 0
			load := func(ctx context.Context) (*cachedArtist, error) {
				calls++
				return &cachedArtist{Name: "Sia", Followers: 10}, nil
			}

			entry := Entry{Tag: TagSpotifyArtist, Arg: "abc", Artist: "Sia"}

			first, err := GetOrLoad(context.Background(), c, entry, load)
			require.NoError(t, err)

			second, err := GetOrLoad(context.Background(), c, entry, load)
			require.NoError(t, err)

			assert.Equal(t, 1, calls)
			assert.Equal(t, first, second)
		})
	}
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	for name, c := range stores(t) {
		t.Run(name, func(t *testing.T) {
			calls := 0
			load := func(ctx context.Context) (string, error) {
				calls++
				if calls == 1 {
					return "", errors.New("upstream down")
				}
				return "ok", nil
			}

			entry := Entry{Tag: TagLastFmArtistInfo, Arg: "sia"}

			_, err := GetOrLoad(context.Background(), c, entry, load)
			assert.Error(t, err)

			value, err := GetOrLoad(context.Background(), c, entry, load)
			require.NoError(t, err)
			assert.Equal(t, "ok", value)
			assert.Equal(t, 2, calls)
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "spotify-artist:AbC", Entry{Tag: TagSpotifyArtist, Arg: "  AbC "}.Key())
	assert.Equal(t, "artist:beyonce", ArtistTag("Beyoncé"))
}

func TestInvalidateArtistDropsAllItsEntries(t *testing.T) {
	for name, c := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			calls := 0
			load := func(ctx context.Context) (int, error) {
				calls++
				return calls, nil
			}

			sia := Entry{Tag: TagSpotifyArtist, Arg: "sia-id", Artist: "Sia"}
			siaInfo := Entry{Tag: TagLastFmArtistInfo, Arg: "sia", Artist: "Sia"}
			other := Entry{Tag: TagSpotifyArtist, Arg: "adele-id", Artist: "Adele"}

			for _, entry := range []Entry{sia, siaInfo, other} {
				_, err := GetOrLoad(ctx, c, entry, load)
				require.NoError(t, err)
			}

			removed, err := c.InvalidateArtist(ctx, "Sia")
			require.NoError(t, err)
			assert.Equal(t, 2, removed)

			reloaded, err := GetOrLoad(ctx, c, sia, load)
			require.NoError(t, err)
			assert.Equal(t, 4, reloaded)

			kept, err := GetOrLoad(ctx, c, other, load)
			require.NoError(t, err)
			assert.Equal(t, 3, kept)
		})
	}
}

func TestArtistFromContext(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := WithArtist(context.Background(), "Sia")

	_, err := GetOrLoad(ctx, c, Entry{Tag: TagSpotifyTopTracks, Arg: "id"}, func(ctx context.Context) (string, error) { return "x", nil })
	require.NoError(t, err)

	removed, err := c.InvalidateArtist(context.Background(), "sia")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestForget(t *testing.T) {
	for name, c := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			calls := 0
			load := func(ctx context.Context) (int, error) {
				calls++
				return calls, nil
			}
			entry := Entry{Tag: TagViberateData, Arg: "sia", Artist: "Sia"}

			_, err := GetOrLoad(ctx, c, entry, load)
			require.NoError(t, err)
			require.NoError(t, c.Forget(ctx, entry))

			value, err := GetOrLoad(ctx, c, entry, load)
			require.NoError(t, err)
			assert.Equal(t, 2, value)
		})
	}
}

func TestInvalidateTag(t *testing.T) {
	c, _ := newMemoryCache(t)
	ctx := context.Background()

	_, err := GetOrLoad(ctx, c, Entry{Tag: TagViberateData, Arg: "sia"}, func(ctx context.Context) (string, error) { return "x", nil })
	require.NoError(t, err)

	removed, err := c.InvalidateTag(ctx, TagViberateData)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = c.InvalidateTag(ctx, TagViberateData)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestMemoryStoreExpiry(t *testing.T) {
	c, store := newMemoryCache(t)
	now := time.Now()
	store.now = func() time.Time { return now }

	calls := 0
	load := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}
	entry := Entry{Tag: TagSpotifyToken, Arg: "token", TTL: TokenTTL}

	_, err := GetOrLoad(context.Background(), c, entry, load)
	require.NoError(t, err)

	now = now.Add(TokenTTL + time.Second)

	value, err := GetOrLoad(context.Background(), c, entry, load)
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestRedisStoreExpiry(t *testing.T) {
	c, server := newRedisCache(t)
	ctx := context.Background()

	calls := 0
	load := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}
	entry := Entry{Tag: TagSpotifyToken, Arg: "token", TTL: TokenTTL}

	_, err := GetOrLoad(ctx, c, entry, load)
	require.NoError(t, err)
	assert.Equal(t, TokenTTL, server.TTL(entry.Key()))

	server.FastForward(TokenTTL + time.Second)

	value, err := GetOrLoad(ctx, c, entry, load)
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestConcurrentMissesAreCoalesced(t *testing.T) {
	c, _ := newMemoryCache(t)

	var calls int32
	release := make(chan struct{})
	load := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "value", nil
	}

	entry := Entry{Tag: TagYoutubeVideos, Arg: "a,b"}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := GetOrLoad(context.Background(), c, entry, load)
			assert.NoError(t, err)
			assert.Equal(t, "value", value)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}
