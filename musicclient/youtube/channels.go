package youtube

import (
	"context"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/clientcommon"
	"github.com/artist-analytics/utils"
	"google.golang.org/api/youtube/v3"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

type ChannelInfo struct {
	ChannelId   string `json:"channelId"`
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail"`
	Subscribers *int64 `json:"subscribers"`
	TotalViews  *int64 `json:"totalViews"`
	VideoCount  *int64 `json:"videoCount"`
}

// SearchChannelId returns the best ranked channel for the name
func (c *Client) SearchChannelId(ctx context.Context, name string) (string, error) {
	entry := cache.Entry{Tag: cache.TagYoutubeSearch, Arg: utils.NormaliseKey(name), Artist: name}

	return cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) (string, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "youtube.search_channel")
		defer span.Finish()

		ctx, cancel, err := c.wait(ctx)
		defer cancel()

		if err != nil {
			return "", err
		}

		response, err := c.service.Search.List([]string{"snippet"}).
			Q(name).
			Type("channel").
			MaxResults(1).
			Context(ctx).
			Do()
		err = mapError(err, name)

		clientcommon.SendRequestMetric(source, datadog.RequestTypeSearch, err)

		if err != nil {
			logger.WithArtistSource(name, source).Warning("Failed to search youtube channel ", err)
			return "", err
		}

		for _, item := range response.Items {
			if item.Id != nil && item.Id.ChannelId != "" {
				return item.Id.ChannelId, nil
			}

			if item.Snippet != nil && item.Snippet.ChannelId != "" {
				return item.Snippet.ChannelId, nil
			}
		}

		return "", apperrors.NotFound(source, name)
	})
}

// GetChannelInfo searches the channel by name unless its id is already known, then reads its statistics
func (c *Client) GetChannelInfo(ctx context.Context, name string, knownChannelId string) (*ChannelInfo, error) {
	channelId := knownChannelId

	if channelId == "" {
		found, err := c.SearchChannelId(ctx, name)

		if err != nil {
			return nil, err
		}

		channelId = found
	}

	entry := cache.Entry{Tag: cache.TagYoutubeChannel, Arg: channelId}

	return cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) (*ChannelInfo, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "youtube.channel")
		defer span.Finish()

		ctx, cancel, err := c.wait(ctx)
		defer cancel()

		if err != nil {
			return nil, err
		}

		response, err := c.service.Channels.List([]string{"snippet", "statistics"}).
			Id(channelId).
			Context(ctx).
			Do()
		err = mapError(err, channelId)

		clientcommon.SendRequestMetric(source, datadog.RequestTypeChannel, err)

		if err != nil {
			logger.WithSource(source).Warningf("Failed to get youtube channel %s %v", channelId, err)
			return nil, err
		}

		if len(response.Items) == 0 {
			return nil, apperrors.NotFound(source, channelId)
		}

		return toChannelInfo(response.Items[0]), nil
	})
}

func toChannelInfo(channel *youtube.Channel) *ChannelInfo {
	info := &ChannelInfo{ChannelId: channel.Id}

	if channel.Snippet != nil {
		info.Title = channel.Snippet.Title
		info.Thumbnail = bestThumbnail(channel.Snippet.Thumbnails)
	}

	if stats := channel.Statistics; stats != nil {
		// hidden counts come back as 0, which is not a real value
		if !stats.HiddenSubscriberCount {
			info.Subscribers = toInt64(stats.SubscriberCount)
		}

		info.TotalViews = toInt64(stats.ViewCount)
		info.VideoCount = toInt64(stats.VideoCount)
	}

	return info
}

func bestThumbnail(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}

	for _, thumbnail := range []*youtube.Thumbnail{thumbnails.High, thumbnails.Medium, thumbnails.Default} {
		if thumbnail != nil && thumbnail.Url != "" {
			return thumbnail.Url
		}
	}

	return ""
}
