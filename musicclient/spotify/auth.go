package spotify

import (
	"context"
	"time"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/clientcommon"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// GetAccessToken returns the app token, exchanging client credentials only when the held one is about to expire
func (c *Client) GetAccessToken(ctx context.Context) (*oauth2.Token, error) {
	c.mutex.Lock()
	token := c.token
	c.mutex.Unlock()

	if isFresh(token) {
		return token, nil
	}

	entry := cache.Entry{Tag: cache.TagSpotifyToken, Arg: c.config.ClientId, TTL: cache.TokenTTL - expiryMargin}

	token, err := cache.GetOrLoad(ctx, c.cache, entry, c.requestToken)

	if err != nil {
		return nil, err
	}

	// a shared cache may hand back a token another instance fetched a while ago
	if !isFresh(token) {
		if _, err := c.cache.InvalidateTag(ctx, cache.TagSpotifyToken); err != nil {
			logger.WithSource(source).Warning("Failed to drop stale spotify token ", err)
		}

		token, err = c.requestToken(ctx)

		if err != nil {
			return nil, err
		}
	}

	return token, nil
}

func (c *Client) requestToken(ctx context.Context) (*oauth2.Token, error) {
	config := &clientcredentials.Config{
		ClientID:     c.config.ClientId,
		ClientSecret: c.config.ClientSecret,
		TokenURL:     c.config.TokenUrl,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.config.HttpClient)
	token, err := config.Token(ctx)

	clientcommon.SendRequestMetric(source, datadog.RequestTypeAuth, err)

	if err != nil {
		logger.WithSource(source).Error("Failed to get spotify app token ", err)
		return nil, apperrors.Auth(source, err)
	}

	logger.WithSource(source).Info("Fetched a new spotify app token")

	return token, nil
}

func isFresh(token *oauth2.Token) bool {
	if token == nil || token.AccessToken == "" {
		return false
	}

	if token.Expiry.IsZero() {
		return true
	}

	return time.Now().Add(expiryMargin).Before(token.Expiry)
}
