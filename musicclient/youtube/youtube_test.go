package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeYoutube struct {
	server      *httptest.Server
	videoCalls  int32
	failChannel bool
}

func newFakeYoutube(t *testing.T) *fakeYoutube {
	fake := &fakeYoutube{}

	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("channelId") != "" {
			assert.Equal(t, "viewCount", r.URL.Query().Get("order"))
			_, _ = w.Write([]byte(`{"items":[{"id":{"kind":"youtube#video","videoId":"v1"}},{"id":{"kind":"youtube#video","videoId":"v2"}}]}`))
			return
		}

		if r.URL.Query().Get("q") == "nobody" {
			_, _ = w.Write([]byte(`{"items":[]}`))
			return
		}

		_, _ = w.Write([]byte(`{"items":[{"id":{"kind":"youtube#channel","channelId":"UC-sia"},"snippet":{"channelId":"UC-sia","title":"Sia"}}]}`))
	})
	mux.HandleFunc("/youtube/v3/channels", func(w http.ResponseWriter, r *http.Request) {
		if fake.failChannel {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend error"}}`))
			return
		}
		assert.Equal(t, "UC-sia", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"UC-sia","snippet":{"title":"Sia","thumbnails":{"high":{"url":"https://yt/sia.jpg"}}},
"statistics":{"subscriberCount":"15000000","viewCount":"9000000000","videoCount":"120","hiddenSubscriberCount":false}}]}`))
	})
	mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fake.videoCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
{"id":"v2","snippet":{"title":"Elastic Heart","publishedAt":"2015-01-07T00:00:00Z"},"statistics":{"viewCount":"1000","likeCount":"10","commentCount":"1"}},
{"id":"v1","snippet":{"title":"Chandelier","publishedAt":"2014-05-06T00:00:00Z","thumbnails":{"default":{"url":"https://yt/v1.jpg"}}},"statistics":{"viewCount":"2000","likeCount":"20","commentCount":"2"}}]}`))
	})

	fake.server = httptest.NewServer(mux)
	t.Cleanup(fake.server.Close)

	return fake
}

func newTestClient(t *testing.T, fake *fakeYoutube) *Client {
	store, err := cache.NewMemoryStore(64)
	require.NoError(t, err)

	client, err := NewClient(context.Background(), Config{
		ApiKey:   "test-key",
		Endpoint: fake.server.URL + "/",
	}, cache.New(store))
	require.NoError(t, err)

	return client
}

func TestSearchChannelId(t *testing.T) {
	client := newTestClient(t, newFakeYoutube(t))

	id, err := client.SearchChannelId(context.Background(), "Sia")
	require.NoError(t, err)
	assert.Equal(t, "UC-sia", id)

	_, err = client.SearchChannelId(context.Background(), "nobody")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetChannelInfo(t *testing.T) {
	client := newTestClient(t, newFakeYoutube(t))

	info, err := client.GetChannelInfo(context.Background(), "Sia", "")
	require.NoError(t, err)

	assert.Equal(t, "UC-sia", info.ChannelId)
	assert.Equal(t, "Sia", info.Title)
	assert.Equal(t, "https://yt/sia.jpg", info.Thumbnail)
	assert.Equal(t, int64(15000000), *info.Subscribers)
	assert.Equal(t, int64(9000000000), *info.TotalViews)
	assert.Equal(t, int64(120), *info.VideoCount)
}

func TestGetChannelInfoUpstreamFailure(t *testing.T) {
	fake := newFakeYoutube(t)
	fake.failChannel = true
	client := newTestClient(t, fake)

	_, err := client.GetChannelInfo(context.Background(), "Sia", "UC-sia")

	var upstream *apperrors.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
}

func TestGetChannelTopVideosKeepsRankOrder(t *testing.T) {
	client := newTestClient(t, newFakeYoutube(t))

	videos, err := client.GetChannelTopVideos(context.Background(), "UC-sia", 5)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, "v1", videos[0].VideoId)
	assert.Equal(t, "Chandelier", videos[0].Title)
	assert.Equal(t, "https://yt/v1.jpg", videos[0].Thumbnail)
	assert.Equal(t, int64(2000), *videos[0].ViewCount)
	assert.Equal(t, "v2", videos[1].VideoId)

	record := videos[1].ToRecord()
	assert.Equal(t, "Elastic Heart", record.Title)
	assert.Equal(t, int64(1), *record.CommentCount)
}

func TestGetVideosByIdsUsesMemoryCache(t *testing.T) {
	fake := newFakeYoutube(t)
	client := newTestClient(t, fake)

	_, err := client.GetVideosByIds(context.Background(), []string{"v1", "v2"})
	require.NoError(t, err)

	_, err = client.GetVideosByIds(context.Background(), []string{"v1", "v2"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&fake.videoCalls))

	empty, err := client.GetVideosByIds(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetVideosByIdsMemoryCacheExpires(t *testing.T) {
	fake := newFakeYoutube(t)
	client := newTestClient(t, fake)

	now := time.Now()
	client.now = func() time.Time { return now }

	videos, err := client.GetVideosByIds(context.Background(), []string{"v1"})
	require.NoError(t, err)
	require.Len(t, videos, 1)

	now = now.Add(DefaultVideoCacheTTL + time.Minute)

	_, ok := client.videos.Get(strings.Join([]string{"v1"}, ","))
	assert.True(t, ok)

	_, err = client.GetVideosByIds(context.Background(), []string{"v1"})
	require.NoError(t, err)

	// the persistent cache still answers once the memory entry expired
	assert.Equal(t, int32(1), atomic.LoadInt32(&fake.videoCalls))
}
