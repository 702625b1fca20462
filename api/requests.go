package api

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/artist-analytics/app"
	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/httputils"
	"github.com/artist-analytics/utils"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	maxNameLength  = 200
	maxIdsPerQuery = 50
	defaultListCap = 100
)

type artistInfoRequest struct {
	Name     string `json:"name"`
	Depth    int    `json:"depth"`
	Refresh  bool   `json:"refresh"`
	Viberate bool   `json:"viberate"`
}

func (r artistInfoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&r.Depth, validation.Min(0)),
	)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (r nameRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, maxNameLength)),
	)
}

type tracksRequest struct {
	SpotifyId  string   `json:"spotifyId"`
	SpotifyIds []string `json:"spotifyIds"`
}

func (r tracksRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SpotifyId,
			validation.Required.When(len(r.SpotifyIds) == 0).Error("spotifyId or spotifyIds is required"),
		),
		validation.Field(&r.SpotifyIds, validation.Length(0, maxIdsPerQuery)),
	)
}

type videosRequest struct {
	VideoIds []string `json:"videoIds"`
}

func (r videosRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.VideoIds, validation.Required, validation.Length(1, maxIdsPerQuery)),
	)
}

type addArtistRequest struct {
	Profile   *appmodels.ArtistProfile       `json:"profile"`
	Analytics *appmodels.AnalyticsSnapshot   `json:"analytics"`
	Tracks    []*appmodels.TrackRecord       `json:"tracks"`
	Videos    []*appmodels.VideoRecord       `json:"videos"`
	Similar   []*appmodels.SimilarArtistEdge `json:"similar"`
}

// Validate also runs the profile and analytics invariants since both models are Validatable
func (r addArtistRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Profile, validation.Required),
		validation.Field(&r.Analytics),
		validation.Field(&r.Tracks, validation.Each(requiredKey("trackId is required", func(track *appmodels.TrackRecord) string {
			return track.TrackId
		}))),
		validation.Field(&r.Videos, validation.Each(requiredKey("videoId is required", func(video *appmodels.VideoRecord) string {
			return video.VideoId
		}))),
		validation.Field(&r.Similar, validation.Each(requiredKey("toArtistName is required", func(edge *appmodels.SimilarArtistEdge) string {
			return edge.ToArtistName
		}))),
	)
}

func (r addArtistRequest) aggregate() *appmodels.ArtistAggregate {
	return &appmodels.ArtistAggregate{
		Profile:   r.Profile,
		Analytics: r.Analytics,
		Tracks:    r.Tracks,
		Videos:    r.Videos,
		Similar:   r.Similar,
	}
}

type updateArtistRequest struct {
	Name             string                 `json:"name"`
	SpotifyId        string                 `json:"spotifyId"`
	MusicbrainzId    string                 `json:"musicbrainzId"`
	YoutubeChannelId string                 `json:"youtubeChannelId"`
	LastFmId         string                 `json:"lastFmId"`
	ViberateSlug     string                 `json:"viberateSlug"`
	Biography        *string                `json:"biography"`
	Genres           []string               `json:"genres"`
	Country          string                 `json:"country"`
	Gender           string                 `json:"gender"`
	ImageUrl         string                 `json:"imageUrl"`
	Disambiguation   string                 `json:"disambiguation"`
	ActiveYears      *appmodels.ActiveYears `json:"activeYears"`
}

func (r updateArtistRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, maxNameLength)),
		validation.Field(&r.Genres, validation.Each(validation.Length(1, 100))),
	)
}

func (r updateArtistRequest) patch() *app.ArtistPatch {
	return &app.ArtistPatch{
		Name:             r.Name,
		SpotifyId:        r.SpotifyId,
		MusicbrainzId:    r.MusicbrainzId,
		YoutubeChannelId: r.YoutubeChannelId,
		LastFmId:         r.LastFmId,
		ViberateSlug:     r.ViberateSlug,
		Biography:        r.Biography,
		Genres:           r.Genres,
		Country:          r.Country,
		Gender:           r.Gender,
		ImageUrl:         r.ImageUrl,
		Disambiguation:   r.Disambiguation,
		ActiveYears:      r.ActiveYears,
	}
}

type updateYoutubeRequest struct {
	ChannelId string   `json:"channelId"`
	VideoIds  []string `json:"videoIds"`
}

func (r updateYoutubeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ChannelId,
			validation.Required.When(len(r.VideoIds) == 0).Error("channelId or videoIds is required"),
		),
		validation.Field(&r.VideoIds, validation.Length(0, maxIdsPerQuery)),
	)
}

// requiredKey fails list entries that are nil or whose key is blank. Each hands the rule dereferenced values.
func requiredKey[T any](message string, key func(*T) string) validation.Rule {
	return validation.By(func(value interface{}) error {
		var record *T

		switch v := value.(type) {
		case T:
			record = &v
		case *T:
			record = v
		}

		if record == nil || strings.TrimSpace(key(record)) == "" {
			return errors.New(message)
		}

		return nil
	})
}

// check runs the request validation and converts the first failing field to a ValidationError
func check(request validation.Validatable) error {
	err := request.Validate()

	if err == nil {
		return nil
	}

	var fields validation.Errors

	if !errors.As(err, &fields) {
		return err
	}

	names := make([]string, 0, len(fields))

	for name := range fields {
		names = append(names, name)
	}

	sort.Strings(names)

	return apperrors.Validation(names[0], fields[names[0]].Error())
}

func queryList(r *http.Request, key string) []string {
	return utils.SplitIds(r.URL.Query().Get(key))
}

func decode(r *http.Request, request validation.Validatable) error {
	if err := httputils.DeserialiseBody(r, request); err != nil {
		return err
	}

	return check(request)
}
