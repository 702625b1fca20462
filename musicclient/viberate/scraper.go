package viberate

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/logger"
	"golang.org/x/net/html"
)

const defaultBaseUrl = "https://www.viberate.com"
const defaultTimeout = 30 * time.Second

// DefaultMinWarmUp and DefaultMaxWarmUp bound the random pause taken before each page request
const DefaultMinWarmUp = time.Second
const DefaultMaxWarmUp = 3 * time.Second
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// RawProfile is the page as read, counters are kept as displayed ("1.2M")
type RawProfile struct {
	Slug             string            `json:"slug"`
	Name             string            `json:"name"`
	MonthlyListeners string            `json:"monthlyListeners"`
	Socials          map[string]string `json:"socials"`
	TopSongs         []RawSong         `json:"topSongs"`
	TopVideos        []RawVideo        `json:"topVideos"`
}

type RawSong struct {
	Title   string `json:"title"`
	Url     string `json:"url"`
	Streams string `json:"streams"`
}

type RawVideo struct {
	Title string `json:"title"`
	Url   string `json:"url"`
	Views string `json:"views"`
}

// Scraper reads one artist profile page. Implementations are never retried automatically.
type Scraper interface {
	Scrape(ctx context.Context, slug string) (*RawProfile, error)
}

type ScraperConfig struct {
	BaseUrl    string
	Timeout    time.Duration
	MinWarmUp  time.Duration
	MaxWarmUp  time.Duration
	HttpClient *http.Client
}

// HTTPScraper reads the server rendered profile markup
type HTTPScraper struct {
	config     ScraperConfig
	httpClient *http.Client
}

func NewHTTPScraper(config ScraperConfig) *HTTPScraper {
	if config.BaseUrl == "" {
		config.BaseUrl = defaultBaseUrl
	}

	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	if config.MinWarmUp == 0 && config.MaxWarmUp == 0 {
		config.MinWarmUp = DefaultMinWarmUp
		config.MaxWarmUp = DefaultMaxWarmUp
	}

	if config.MaxWarmUp < config.MinWarmUp {
		config.MaxWarmUp = config.MinWarmUp
	}

	httpClient := config.HttpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &HTTPScraper{
		config:     config,
		httpClient: httpClient,
	}
}

func (s *HTTPScraper) Scrape(ctx context.Context, slug string) (*RawProfile, error) {
	if err := s.warmUp(ctx); err != nil {
		return nil, &apperrors.ScrapeError{Slug: slug, Err: err}
	}

	pageUrl := fmt.Sprintf("%s/artist/%s/", strings.TrimSuffix(s.config.BaseUrl, "/"), slug)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageUrl, nil)

	if err != nil {
		return nil, &apperrors.ScrapeError{Slug: slug, Err: err}
	}

	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	request.Header.Set("Accept-Language", "en-US,en;q=0.5")

	response, err := s.httpClient.Do(request)

	if err != nil {
		return nil, &apperrors.ScrapeError{Slug: slug, Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, &apperrors.ScrapeError{Slug: slug, Err: fmt.Errorf("status %d", response.StatusCode)}
	}

	doc, err := html.Parse(response.Body)

	if err != nil {
		return nil, &apperrors.ScrapeError{Slug: slug, Err: err}
	}

	profile := parseProfile(doc)
	profile.Slug = slug

	if profile.Name == "" {
		return nil, &apperrors.ScrapeError{Slug: slug, Err: fmt.Errorf("no artist profile on page")}
	}

	logger.WithSource("viberate").Infof("Scraped %s: %d socials, %d songs, %d videos",
		slug, len(profile.Socials), len(profile.TopSongs), len(profile.TopVideos))

	return profile, nil
}

// a jittered pause before each page load keeps the request pattern from looking scripted
func (s *HTTPScraper) warmUp(ctx context.Context) error {
	delay := s.config.MinWarmUp

	if spread := s.config.MaxWarmUp - s.config.MinWarmUp; spread > 0 {
		delay += time.Duration(rand.Int63n(int64(spread)))
	}

	if delay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
