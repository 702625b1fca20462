package app

import (
	"time"

	"github.com/artist-analytics/musicclient/lastfm"
	"github.com/artist-analytics/musicclient/youtube"
	"github.com/google/uuid"
)

// Dependencies are built once at process start and shared by every request
type Dependencies struct {
	Spotify     SpotifyClient
	Youtube     YoutubeClient
	LastFm      LastFmClient
	MusicBrainz MusicBrainzClient
	Viberate    ViberateClient
	Biography   BiographyWriter
	Store       Store
	Cache       CacheInvalidator
}

type Options struct {
	Precedence   Precedence
	MaxDepth     int
	TopVideos    int
	SimilarLimit int
}

type Orchestrator struct {
	Dependencies
	options Options

	now   func() time.Time
	newId func() string
}

func NewOrchestrator(dependencies Dependencies, options Options) *Orchestrator {
	if options.Precedence.Name == nil {
		options.Precedence = DefaultPrecedence()
	}

	if options.TopVideos <= 0 {
		options.TopVideos = youtube.DefaultTopVideos
	}

	if options.SimilarLimit <= 0 {
		options.SimilarLimit = lastfm.DefaultSimilarLimit
	}

	if options.MaxDepth < 0 {
		options.MaxDepth = 0
	}

	return &Orchestrator{
		Dependencies: dependencies,
		options:      options,
		now:          time.Now,
		newId:        func() string { return uuid.New().String() },
	}
}

func (o *Orchestrator) MaxDepth() int {
	return o.options.MaxDepth
}
