package lastfm

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/clientcommon"
	"github.com/artist-analytics/utils"
	"golang.org/x/net/html"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

type image struct {
	Text string `json:"#text"`
	Size string `json:"size"`
}

type artistInfoResponse struct {
	Artist struct {
		Name  string  `json:"name"`
		MBID  string  `json:"mbid"`
		URL   string  `json:"url"`
		Image []image `json:"image"`
		Stats struct {
			Listeners string `json:"listeners"`
			Playcount string `json:"playcount"`
		} `json:"stats"`
		Tags struct {
			Tag []struct {
				Name string `json:"name"`
			} `json:"tag"`
		} `json:"tags"`
		Bio struct {
			Summary string `json:"summary"`
		} `json:"bio"`
	} `json:"artist"`
}

type ArtistInfo struct {
	Name      string   `json:"name"`
	Mbid      string   `json:"mbid"`
	Url       string   `json:"url"`
	ImageUrl  string   `json:"imageUrl"`
	Biography *string  `json:"biography"`
	Tags      []string `json:"tags"`
	Listeners *int64   `json:"listeners"`
	PlayCount *int64   `json:"playCount"`
}

var readMoreLink = regexp.MustCompile(`(?is)<a\s[^>]*>\s*Read more on Last\.fm\s*</a>\.?`)

func (c *Client) GetArtistInfo(ctx context.Context, name string) (*ArtistInfo, error) {
	entry := cache.Entry{Tag: cache.TagLastFmArtistInfo, Arg: utils.NormaliseKey(name), Artist: name}

	return cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) (*ArtistInfo, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "lastfm.artist_info")
		defer span.Finish()
		defer clientcommon.SendRequestTiming(source, datadog.RequestTypeArtistInfo, time.Now())

		var response artistInfoResponse
		err := c.call(ctx, "artist.getinfo", name, nil, &response)

		clientcommon.SendRequestMetric(source, datadog.RequestTypeArtistInfo, err)

		if err != nil {
			logger.WithArtistSource(name, source).Warning("Failed to get last.fm artist info ", err)
			return nil, err
		}

		artist := response.Artist
		info := &ArtistInfo{
			Name:      artist.Name,
			Mbid:      artist.MBID,
			Url:       artist.URL,
			ImageUrl:  pickImage(artist.Image),
			Biography: CleanBiography(artist.Bio.Summary),
			Tags:      make([]string, 0, len(artist.Tags.Tag)),
			Listeners: ParseCount(artist.Stats.Listeners),
			PlayCount: ParseCount(artist.Stats.Playcount),
		}

		for _, tag := range artist.Tags.Tag {
			info.Tags = append(info.Tags, tag.Name)
		}

		return info, nil
	})
}

// CleanBiography drops the "Read more on Last.fm" link and every html tag, an empty result is nil
func CleanBiography(summary string) *string {
	withoutLink := readMoreLink.ReplaceAllString(summary, "")

	var builder strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(withoutLink))

	for {
		tokenType := tokenizer.Next()

		if tokenType == html.ErrorToken {
			break
		}

		if tokenType == html.TextToken {
			builder.Write(tokenizer.Text())
		}
	}

	cleaned := strings.Join(strings.Fields(builder.String()), " ")

	if cleaned == "" {
		return nil
	}

	return &cleaned
}

// last.fm stopped serving real artist pictures, an empty #text is common
func pickImage(images []image) string {
	for _, size := range []string{"mega", "extralarge", "large", "medium"} {
		for _, img := range images {
			if img.Size == size && img.Text != "" {
				return img.Text
			}
		}
	}

	return ""
}
