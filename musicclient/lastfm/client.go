package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/musicclient/clientcommon"
)

const source = datadog.LastFmProvider

const defaultBaseUrl = "https://ws.audioscrobbler.com/2.0/"

// error codes of the last.fm envelope, see https://www.last.fm/api/errorcodes
const (
	errorInvalidParameters = 6
	errorInvalidApiKey     = 10
	errorSuspendedApiKey   = 26
)

type Config struct {
	ApiKey     string
	BaseUrl    string
	HttpClient *http.Client
}

type Client struct {
	apiKey     string
	baseUrl    string
	httpClient *http.Client
	cache      *cache.Cache
}

func NewClient(config Config, c *cache.Cache) *Client {
	if config.BaseUrl == "" {
		config.BaseUrl = defaultBaseUrl
	}

	if config.HttpClient == nil {
		config.HttpClient = clientcommon.NewHttpClient(clientcommon.DefaultTimeout)
	}

	return &Client{
		apiKey:     config.ApiKey,
		baseUrl:    config.BaseUrl,
		httpClient: config.HttpClient,
		cache:      c,
	}
}

// last.fm answers errors as {"error": 6, "message": "..."}, sometimes with a 200
type errorEnvelope struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, method string, artist string, params url.Values, v interface{}) error {
	if params == nil {
		params = url.Values{}
	}

	params.Set("method", method)
	params.Set("artist", artist)
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	params.Set("autocorrect", "1")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+"?"+params.Encode(), nil)

	if err != nil {
		return apperrors.Upstream(source, 0, err)
	}

	response, err := c.httpClient.Do(request)

	if err != nil {
		return apperrors.Upstream(source, 0, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)

	if err != nil {
		return apperrors.Upstream(source, response.StatusCode, err)
	}

	var envelope errorEnvelope
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != 0 {
		return envelopeError(envelope, artist)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return apperrors.Upstream(source, response.StatusCode, fmt.Errorf("%s", response.Status))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.Upstream(source, response.StatusCode, fmt.Errorf("undecodable response: %w", err))
	}

	return nil
}

func envelopeError(envelope errorEnvelope, artist string) error {
	switch envelope.Error {
	case errorInvalidParameters:
		return apperrors.NotFound(source, artist)
	case errorInvalidApiKey, errorSuspendedApiKey:
		return apperrors.Auth(source, fmt.Errorf("%d %s", envelope.Error, envelope.Message))
	default:
		return apperrors.Upstream(source, 0, fmt.Errorf("%d %s", envelope.Error, envelope.Message))
	}
}

// ParseCount reads the string counters last.fm returns, unknown values are nil
func ParseCount(value string) *int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)

	if err != nil || parsed < 0 {
		return nil
	}

	return &parsed
}
