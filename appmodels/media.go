package appmodels

type TrackRecord struct {
	ArtistId    string `json:"artistId,omitempty" bson:"artist_id"`
	TrackId     string `json:"trackId" bson:"track_id"`
	Title       string `json:"title" bson:"title"`
	ImageUrl    string `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	Popularity  int    `json:"popularity" bson:"popularity"`
	PreviewUrl  string `json:"previewUrl,omitempty" bson:"preview_url,omitempty"`
	ExternalUrl string `json:"externalUrl,omitempty" bson:"external_url,omitempty"`
	Streams     *int64 `json:"streams" bson:"streams"`
}

type VideoRecord struct {
	ArtistId     string `json:"artistId,omitempty" bson:"artist_id"`
	VideoId      string `json:"videoId" bson:"video_id"`
	Title        string `json:"title" bson:"title"`
	Thumbnail    string `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	ViewCount    *int64 `json:"viewCount" bson:"view_count"`
	LikeCount    *int64 `json:"likeCount" bson:"like_count"`
	CommentCount *int64 `json:"commentCount" bson:"comment_count"`
	PublishedAt  string `json:"publishedAt,omitempty" bson:"published_at,omitempty"`
}
