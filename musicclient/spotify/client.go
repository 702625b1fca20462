package spotify

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/musicclient/clientcommon"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const source = datadog.SpotifyProvider

// refresh the token a bit before spotify considers it expired
const expiryMargin = time.Minute

type Config struct {
	ClientId     string
	ClientSecret string
	Market       string
	TokenUrl     string
	ApiUrl       string
	HttpClient   *http.Client
}

// Client talks to the spotify web api with an app token, it holds no user data
type Client struct {
	config Config
	cache  *cache.Cache

	mutex sync.Mutex
	token *oauth2.Token
	api   *spotify.Client
}

func NewClient(config Config, c *cache.Cache) *Client {
	if config.TokenUrl == "" {
		config.TokenUrl = spotifyauth.TokenURL
	}

	if config.Market == "" {
		config.Market = "US"
	}

	if config.HttpClient == nil {
		config.HttpClient = clientcommon.NewHttpClient(clientcommon.DefaultTimeout)
	}

	return &Client{config: config, cache: c}
}

// getApi returns a web api client bound to a valid token, it is rebuilt every time the token changes
func (c *Client) getApi(ctx context.Context) (*spotify.Client, error) {
	token, err := c.GetAccessToken(ctx)

	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.api != nil && c.token != nil && c.token.AccessToken == token.AccessToken {
		return c.api, nil
	}

	httpContext := context.WithValue(context.Background(), oauth2.HTTPClient, c.config.HttpClient)
	httpClient := oauth2.NewClient(httpContext, oauth2.StaticTokenSource(token))

	options := []spotify.ClientOption{spotify.WithRetry(true)}
	if c.config.ApiUrl != "" {
		options = append(options, spotify.WithBaseURL(c.config.ApiUrl))
	}

	c.token = token
	c.api = spotify.New(httpClient, options...)

	return c.api, nil
}

// mapError turns library errors into the error taxonomy
func mapError(err error, query string) error {
	if err == nil {
		return nil
	}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.Auth(source, err)
		case http.StatusNotFound, http.StatusBadRequest:
			return apperrors.NotFound(source, query)
		default:
			return apperrors.Upstream(source, apiErr.Status, err)
		}
	}

	var auth *apperrors.AuthError
	if errors.As(err, &auth) {
		return err
	}

	return apperrors.Upstream(source, 0, err)
}

// inRequestOrder lists the loaded items following ids. Bulk entries are cached under a sorted key so the
// cached order is the one of whichever caller loaded them first. Items spotify answered under another id
// (relinked tracks) are kept at the end.
func inRequestOrder[T any](ids []string, items []T, idOf func(T) string) []T {
	byId := make(map[string]T, len(items))

	for _, item := range items {
		byId[idOf(item)] = item
	}

	ordered := make([]T, 0, len(items))
	placed := make(map[string]bool, len(items))

	for _, id := range ids {
		if item, ok := byId[id]; ok && !placed[id] {
			ordered = append(ordered, item)
			placed[id] = true
		}
	}

	for _, item := range items {
		if !placed[idOf(item)] {
			ordered = append(ordered, item)
		}
	}

	return ordered
}
