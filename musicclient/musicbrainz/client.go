package musicbrainz

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/clientcommon"
	"github.com/artist-analytics/utils"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const source = datadog.MusicBrainzProvider

const defaultBaseUrl = "https://musicbrainz.org/ws/2"

// musicbrainz allows one request per second per client
const minRequestSpacing = time.Second

type Config struct {
	UserAgent  string
	BaseUrl    string
	HttpClient *http.Client
	Spacing    time.Duration
}

type Client struct {
	baseUrl    string
	userAgent  string
	httpClient *http.Client
	gate       *clientcommon.RequestGate
	cache      *cache.Cache
}

func NewClient(config Config, c *cache.Cache) *Client {
	if config.BaseUrl == "" {
		config.BaseUrl = defaultBaseUrl
	}

	if config.HttpClient == nil {
		config.HttpClient = clientcommon.NewHttpClient(clientcommon.DefaultTimeout)
	}

	if config.Spacing <= 0 {
		config.Spacing = minRequestSpacing
	}

	return &Client{
		baseUrl:    strings.TrimSuffix(config.BaseUrl, "/"),
		userAgent:  config.UserAgent,
		httpClient: config.HttpClient,
		gate:       clientcommon.NewRequestGate(config.Spacing),
		cache:      c,
	}
}

type lifeSpan struct {
	Begin string `json:"begin,omitempty"`
	End   string `json:"end,omitempty"`
	Ended bool   `json:"ended,omitempty"`
}

type tag struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

type artist struct {
	Id             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	Country        string   `json:"country,omitempty"`
	Disambiguation string   `json:"disambiguation,omitempty"`
	LifeSpan       lifeSpan `json:"life-span,omitempty"`
	Tags           []tag    `json:"tags,omitempty"`
	Score          int      `json:"score,omitempty"`
}

type searchResponse struct {
	Count   int      `json:"count"`
	Artists []artist `json:"artists"`
}

type ArtistDetails struct {
	Id             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Country        string   `json:"country"`
	Gender         string   `json:"gender"`
	Disambiguation string   `json:"disambiguation"`
	Begin          *string  `json:"begin"`
	End            *string  `json:"end"`
	Tags           []string `json:"tags"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v interface{}) error {
	if err := c.gate.Wait(ctx); err != nil {
		return apperrors.Upstream(source, 0, err)
	}

	params.Set("fmt", "json")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+path+"?"+params.Encode(), nil)

	if err != nil {
		return apperrors.Upstream(source, 0, err)
	}

	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("Accept", "application/json")

	return clientcommon.GetJson(ctx, c.httpClient, source, request, v)
}

// SearchArtistId returns the id of the highest scored match
func (c *Client) SearchArtistId(ctx context.Context, name string) (string, error) {
	entry := cache.Entry{Tag: cache.TagMusicBrainzSearch, Arg: utils.NormaliseKey(name), Artist: name}

	return cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) (string, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "musicbrainz.search")
		defer span.Finish()
		defer clientcommon.SendRequestTiming(source, datadog.RequestTypeSearch, time.Now())

		params := url.Values{}
		params.Set("query", "artist:\""+strings.ReplaceAll(name, "\"", "")+"\"")
		params.Set("limit", "5")

		var response searchResponse
		err := c.get(ctx, "/artist", params, &response)

		clientcommon.SendRequestMetric(source, datadog.RequestTypeSearch, err)

		if err != nil {
			logger.WithArtistSource(name, source).Warning("Failed to search musicbrainz artist ", err)
			return "", err
		}

		if len(response.Artists) == 0 {
			return "", apperrors.NotFound(source, name)
		}

		best := response.Artists[0]
		for _, candidate := range response.Artists[1:] {
			if candidate.Score > best.Score {
				best = candidate
			}
		}

		return best.Id, nil
	})
}

func (c *Client) GetArtistDetails(ctx context.Context, id string) (*ArtistDetails, error) {
	entry := cache.Entry{Tag: cache.TagMusicBrainzArtist, Arg: id}

	return cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) (*ArtistDetails, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "musicbrainz.artist")
		defer span.Finish()
		defer clientcommon.SendRequestTiming(source, datadog.RequestTypeArtists, time.Now())

		params := url.Values{}
		params.Set("inc", "tags")

		var response artist
		err := c.get(ctx, "/artist/"+url.PathEscape(id), params, &response)

		clientcommon.SendRequestMetric(source, datadog.RequestTypeArtists, err)

		if err != nil {
			var upstream *apperrors.UpstreamError
			if asStatus(err, &upstream, http.StatusNotFound) {
				err = apperrors.NotFound(source, id)
			}

			logger.WithSource(source).Warningf("Failed to get musicbrainz artist %s %v", id, err)
			return nil, err
		}

		return toDetails(&response), nil
	})
}

func toDetails(artist *artist) *ArtistDetails {
	details := &ArtistDetails{
		Id:             artist.Id,
		Name:           artist.Name,
		Type:           artist.Type,
		Country:        artist.Country,
		Gender:         artist.Gender,
		Disambiguation: artist.Disambiguation,
		Begin:          optional(artist.LifeSpan.Begin),
		End:            optional(artist.LifeSpan.End),
		Tags:           make([]string, 0, len(artist.Tags)),
	}

	tags := append([]tag(nil), artist.Tags...)
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Count > tags[j].Count })

	for _, tag := range tags {
		details.Tags = append(details.Tags, tag.Name)
	}

	return details
}

func optional(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}
