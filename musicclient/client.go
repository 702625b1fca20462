package musicclient

import (
	"context"

	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/env"
	"github.com/artist-analytics/musicclient/clientcommon"
	"github.com/artist-analytics/musicclient/generative"
	"github.com/artist-analytics/musicclient/lastfm"
	"github.com/artist-analytics/musicclient/musicbrainz"
	"github.com/artist-analytics/musicclient/spotify"
	"github.com/artist-analytics/musicclient/viberate"
	"github.com/artist-analytics/musicclient/youtube"
)

// Clients holds one client per platform. They are built once at start up and shared by every request,
// which is what makes the token cache and the request gates effective.
type Clients struct {
	Spotify     *spotify.Client
	Youtube     *youtube.Client
	LastFm      *lastfm.Client
	MusicBrainz *musicbrainz.Client
	Viberate    *viberate.Client
	Generative  *generative.Client
}

func NewClients(ctx context.Context, config *env.Config, c *cache.Cache) (*Clients, error) {
	httpClient := clientcommon.NewHttpClient(config.HttpTimeout)

	youtubeClient, err := youtube.NewClient(ctx, youtube.Config{
		ApiKey:  config.YoutubeApiKey,
		Timeout: config.HttpTimeout,
	}, c)

	if err != nil {
		return nil, err
	}

	return &Clients{
		Spotify: spotify.NewClient(spotify.Config{
			ClientId:     config.SpotifyClientId,
			ClientSecret: config.SpotifyClientSecret,
			Market:       config.SpotifyMarket,
			HttpClient:   httpClient,
		}, c),
		Youtube: youtubeClient,
		LastFm: lastfm.NewClient(lastfm.Config{
			ApiKey:     config.LastFmApiKey,
			HttpClient: httpClient,
		}, c),
		MusicBrainz: musicbrainz.NewClient(musicbrainz.Config{
			UserAgent:  config.MusicBrainzUserAgent,
			HttpClient: httpClient,
		}, c),
		Viberate: viberate.NewClient(viberate.NewHTTPScraper(viberate.ScraperConfig{
			BaseUrl: config.ViberateBaseUrl,
		}), c),
		Generative: generative.NewClient(generative.Config{
			ApiKey: config.GenerativeApiKey,
			ApiUrl: config.GenerativeApiUrl,
			Model:  config.GenerativeModel,
		}),
	}, nil
}
