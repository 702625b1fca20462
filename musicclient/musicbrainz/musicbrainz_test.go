package musicbrainz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userAgent = "ArtistAnalyticsTest/1.0 (test@example.com)"

func newTestClient(t *testing.T, spacing time.Duration) *Client {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/2/artist", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))

		if r.URL.Query().Get("query") == `artist:"nobody"` {
			_, _ = w.Write([]byte(`{"count":0,"artists":[]}`))
			return
		}

		_, _ = w.Write([]byte(`{"count":2,"artists":[
{"id":"other-id","name":"Sia Furler Tribute","score":60},
{"id":"sia-mbid","name":"Sia","score":100}]}`))
	})
	mux.HandleFunc("/ws/2/artist/sia-mbid", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tags", r.URL.Query().Get("inc"))
		_, _ = w.Write([]byte(`{"id":"sia-mbid","name":"Sia","type":"Person","gender":"Female","country":"AU",
"disambiguation":"Australian singer-songwriter","life-span":{"begin":"1975-12-18","ended":false},
"tags":[{"count":2,"name":"electropop"},{"count":9,"name":"pop"}]}`))
	})
	mux.HandleFunc("/ws/2/artist/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store, err := cache.NewMemoryStore(64)
	require.NoError(t, err)

	return NewClient(Config{
		UserAgent: userAgent,
		BaseUrl:   server.URL + "/ws/2/",
		Spacing:   spacing,
	}, cache.New(store))
}

func TestSearchArtistIdPicksHighestScore(t *testing.T) {
	client := newTestClient(t, time.Millisecond)

	id, err := client.SearchArtistId(context.Background(), "Sia")
	require.NoError(t, err)
	assert.Equal(t, "sia-mbid", id)

	_, err = client.SearchArtistId(context.Background(), "nobody")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetArtistDetails(t *testing.T) {
	client := newTestClient(t, time.Millisecond)

	details, err := client.GetArtistDetails(context.Background(), "sia-mbid")
	require.NoError(t, err)

	assert.Equal(t, "AU", details.Country)
	assert.Equal(t, "Female", details.Gender)
	assert.Equal(t, "Person", details.Type)
	assert.Equal(t, "Australian singer-songwriter", details.Disambiguation)
	require.NotNil(t, details.Begin)
	assert.Equal(t, "1975-12-18", *details.Begin)
	assert.Nil(t, details.End)
	assert.Equal(t, []string{"pop", "electropop"}, details.Tags)

	_, err = client.GetArtistDetails(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRequestsAreSpaced(t *testing.T) {
	client := newTestClient(t, 100*time.Millisecond)

	start := time.Now()
	_, err := client.SearchArtistId(context.Background(), "Sia")
	require.NoError(t, err)
	_, err = client.GetArtistDetails(context.Background(), "sia-mbid")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
