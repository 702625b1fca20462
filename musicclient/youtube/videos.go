package youtube

import (
	"context"
	"strings"

	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/cache"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/clientcommon"
	"github.com/artist-analytics/utils"
	"github.com/thoas/go-funk"
	"google.golang.org/api/youtube/v3"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const maxVideosPerApiCall = 50

type VideoData struct {
	VideoId      string `json:"videoId"`
	Title        string `json:"title"`
	Thumbnail    string `json:"thumbnail"`
	ViewCount    *int64 `json:"viewCount"`
	LikeCount    *int64 `json:"likeCount"`
	CommentCount *int64 `json:"commentCount"`
	PublishedAt  string `json:"publishedAt"`
}

func (video *VideoData) ToRecord() *appmodels.VideoRecord {
	return &appmodels.VideoRecord{
		VideoId:      video.VideoId,
		Title:        video.Title,
		Thumbnail:    video.Thumbnail,
		ViewCount:    video.ViewCount,
		LikeCount:    video.LikeCount,
		CommentCount: video.CommentCount,
		PublishedAt:  video.PublishedAt,
	}
}

// GetChannelTopVideos returns the n most viewed videos of the channel with their statistics
func (c *Client) GetChannelTopVideos(ctx context.Context, channelId string, n int) ([]*VideoData, error) {
	if n <= 0 {
		n = DefaultTopVideos
	}

	entry := cache.Entry{Tag: cache.TagYoutubeTopVideos, Arg: channelId}

	ids, err := cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) ([]string, error) {
		span, ctx := tracer.StartSpanFromContext(ctx, "youtube.top_videos")
		defer span.Finish()

		ctx, cancel, err := c.wait(ctx)
		defer cancel()

		if err != nil {
			return nil, err
		}

		response, err := c.service.Search.List([]string{"id"}).
			ChannelId(channelId).
			Type("video").
			Order("viewCount").
			MaxResults(int64(n)).
			Context(ctx).
			Do()
		err = mapError(err, channelId)

		clientcommon.SendRequestMetric(source, datadog.RequestTypeVideos, err)

		if err != nil {
			logger.WithSource(source).Warningf("Failed to search top videos of channel %s %v", channelId, err)
			return nil, err
		}

		ids := make([]string, 0, len(response.Items))

		for _, item := range response.Items {
			if item.Id != nil && item.Id.VideoId != "" {
				ids = append(ids, item.Id.VideoId)
			}
		}

		return ids, nil
	})

	if err != nil {
		return nil, err
	}

	if len(ids) > n {
		ids = ids[:n]
	}

	return c.GetVideosByIds(ctx, ids)
}

// GetVideosByIds keeps the order of ids, unknown ids are skipped
func (c *Client) GetVideosByIds(ctx context.Context, ids []string) ([]*VideoData, error) {
	ids = funk.UniqString(ids)

	if len(ids) == 0 {
		return []*VideoData{}, nil
	}

	key := strings.Join(ids, ",")

	if value, ok := c.videos.Get(key); ok {
		cached := value.(*cachedVideos)

		if c.now().Before(cached.expiresAt) {
			return cached.videos, nil
		}

		c.videos.Remove(key)
	}

	entry := cache.Entry{Tag: cache.TagYoutubeVideos, Arg: key}

	videos, err := cache.GetOrLoad(ctx, c.cache, entry, func(ctx context.Context) ([]*VideoData, error) {
		return c.fetchVideos(ctx, ids)
	})

	if err != nil {
		return nil, err
	}

	c.videos.Add(key, &cachedVideos{videos: videos, expiresAt: c.now().Add(c.videoTTL)})

	return videos, nil
}

func (c *Client) fetchVideos(ctx context.Context, ids []string) ([]*VideoData, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "youtube.videos")
	defer span.Finish()

	byId := make(map[string]*VideoData, len(ids))

	for i := 0; i < len(ids); i += maxVideosPerApiCall {
		upperBound := i + maxVideosPerApiCall

		if upperBound > len(ids) {
			upperBound = len(ids)
		}

		callCtx, cancel, err := c.wait(ctx)

		if err != nil {
			cancel()
			return nil, err
		}

		response, err := c.service.Videos.List([]string{"snippet", "statistics"}).
			Id(ids[i:upperBound]...).
			Context(callCtx).
			Do()
		cancel()
		err = mapError(err, utils.JoinIds(ids[i:upperBound]))

		clientcommon.SendRequestMetric(source, datadog.RequestTypeVideos, err)

		if err != nil {
			logger.WithSource(source).Warningf("Failed to get youtube videos %v", err)
			return nil, err
		}

		for _, video := range response.Items {
			byId[video.Id] = toVideoData(video)
		}
	}

	videos := make([]*VideoData, 0, len(byId))

	for _, id := range ids {
		if video, ok := byId[id]; ok {
			videos = append(videos, video)
		}
	}

	return videos, nil
}

func toVideoData(video *youtube.Video) *VideoData {
	data := &VideoData{VideoId: video.Id}

	if video.Snippet != nil {
		data.Title = video.Snippet.Title
		data.PublishedAt = video.Snippet.PublishedAt
		data.Thumbnail = bestThumbnail(video.Snippet.Thumbnails)
	}

	if stats := video.Statistics; stats != nil {
		data.ViewCount = toInt64(stats.ViewCount)
		data.LikeCount = toInt64(stats.LikeCount)
		data.CommentCount = toInt64(stats.CommentCount)
	}

	return data
}
