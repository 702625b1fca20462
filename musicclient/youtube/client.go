package youtube

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/musicclient/clientcommon"
	lru "github.com/hashicorp/golang-lru"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const source = datadog.YoutubeProvider

const minRequestSpacing = 100 * time.Millisecond
const videoCacheSize = 256
const DefaultVideoCacheTTL = 10 * time.Minute
const DefaultTopVideos = 5

type Config struct {
	ApiKey        string
	Endpoint      string
	VideoCacheTTL time.Duration
	Timeout       time.Duration
}

type Client struct {
	service *youtube.Service
	cache   *cache.Cache
	gate    *clientcommon.RequestGate
	timeout time.Duration

	// in front of the persistent cache, keyed by the joined id list
	videos   *lru.Cache
	videoTTL time.Duration
	now      func() time.Time
}

type cachedVideos struct {
	videos    []*VideoData
	expiresAt time.Time
}

func NewClient(ctx context.Context, config Config, c *cache.Cache) (*Client, error) {
	options := []option.ClientOption{option.WithAPIKey(config.ApiKey)}

	if config.Endpoint != "" {
		options = append(options, option.WithEndpoint(config.Endpoint))
	}

	service, err := youtube.NewService(ctx, options...)

	if err != nil {
		return nil, err
	}

	videos, err := lru.New(videoCacheSize)

	if err != nil {
		return nil, err
	}

	if config.VideoCacheTTL <= 0 {
		config.VideoCacheTTL = DefaultVideoCacheTTL
	}

	if config.Timeout <= 0 {
		config.Timeout = clientcommon.DefaultTimeout
	}

	return &Client{
		service:  service,
		cache:    c,
		gate:     clientcommon.NewRequestGate(minRequestSpacing),
		timeout:  config.Timeout,
		videos:   videos,
		videoTTL: config.VideoCacheTTL,
		now:      time.Now,
	}, nil
}

// wait takes a slot on the gate and bounds the call that follows
func (c *Client) wait(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return ctx, func() {}, apperrors.Upstream(source, 0, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	return ctx, cancel, nil
}

func mapError(err error, query string) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return apperrors.Auth(source, err)
		case http.StatusForbidden:
			// quota exhaustion is a 403 too, only a bad key is a credential problem
			for _, item := range apiErr.Errors {
				if item.Reason == "keyInvalid" || item.Reason == "forbidden" {
					return apperrors.Auth(source, err)
				}
			}
			return apperrors.Upstream(source, apiErr.Code, err)
		case http.StatusNotFound:
			return apperrors.NotFound(source, query)
		default:
			return apperrors.Upstream(source, apiErr.Code, err)
		}
	}

	return apperrors.Upstream(source, 0, err)
}

func toInt64(value uint64) *int64 {
	v := int64(value)
	return &v
}
