package viberate

import (
	"context"
	"time"

	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/clientcommon"
	"github.com/artist-analytics/utils"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const source = datadog.ViberateProvider

// Client puts the cache in front of whichever scraper is plugged in
type Client struct {
	scraper Scraper
	cache   *cache.Cache
}

func NewClient(scraper Scraper, c *cache.Cache) *Client {
	return &Client{scraper: scraper, cache: c}
}

// GetArtistData scrapes the profile derived from the name, clearCache forces a fresh scrape
func (c *Client) GetArtistData(ctx context.Context, name string, clearCache bool) (*RawProfile, error) {
	slug := utils.Slugify(name)
	entry := cache.Entry{Tag: cache.TagViberateData, Arg: slug, Artist: name}

	if clearCache {
		_ = c.cache.Forget(ctx, entry)
	}

	return cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) (*RawProfile, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "viberate.scrape")
		defer span.Finish()
		defer clientcommon.SendRequestTiming(source, datadog.RequestTypeScrape, time.Now())

		profile, err := c.scraper.Scrape(ctx, slug)

		clientcommon.SendRequestMetric(source, datadog.RequestTypeScrape, err)

		if err != nil {
			logger.WithArtistSource(name, source).Warning("Failed to scrape viberate profile ", err)
			return nil, err
		}

		return profile, nil
	})
}
