package mongoclient

import (
	"context"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// MongoArtist carries a normalised name next to the profile so lookups by name ignore case
type MongoArtist struct {
	appmodels.ArtistProfile `bson:",inline"`
	NameKey                 string `bson:"name_key"`
}

func (s *Store) GetArtist(ctx context.Context, id string) (*appmodels.ArtistProfile, error) {
	return s.findArtist(ctx, bson.D{{Key: "_id", Value: id}})
}

// FindArtistByIdentity matches any stored profile sharing one external id with the given one
func (s *Store) FindArtistByIdentity(ctx context.Context, profile *appmodels.ArtistProfile) (*appmodels.ArtistProfile, error) {
	ids := bson.A{}

	add := func(key string, value string) {
		if value != "" {
			ids = append(ids, bson.D{{Key: key, Value: value}})
		}
	}

	add("spotify_id", profile.SpotifyId)
	add("musicbrainz_id", profile.MusicbrainzId)
	add("youtube_channel_id", profile.YoutubeChannelId)
	add("lastfm_id", profile.LastFmId)

	if len(ids) == 0 {
		return nil, apperrors.ErrNotFound
	}

	return s.findArtist(ctx, bson.D{{Key: "$or", Value: ids}})
}

func (s *Store) FindArtistByName(ctx context.Context, name string) (*appmodels.ArtistProfile, error) {
	return s.findArtist(ctx, bson.D{{Key: "name_key", Value: utils.NormaliseKey(name)}})
}

func (s *Store) findArtist(ctx context.Context, filter bson.D) (*appmodels.ArtistProfile, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "mongo.find_artist")
	defer span.Finish()

	var artist MongoArtist

	err := s.collection(artistCollection).FindOne(ctx, filter).Decode(&artist)

	if err != nil {
		return nil, wrap("find artist", err)
	}

	return &artist.ArtistProfile, nil
}

func (s *Store) ListArtists(ctx context.Context, limit int) ([]*appmodels.ArtistProfile, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name_key", Value: 1}})

	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := s.collection(artistCollection).Find(ctx, bson.D{}, findOptions)

	if err != nil {
		return nil, wrap("list artists", err)
	}

	mongoArtists := make([]*MongoArtist, 0)

	if err := cursor.All(ctx, &mongoArtists); err != nil {
		return nil, wrap("list artists", err)
	}

	artists := make([]*appmodels.ArtistProfile, 0, len(mongoArtists))

	for _, artist := range mongoArtists {
		artists = append(artists, &artist.ArtistProfile)
	}

	return artists, nil
}

// SaveArtist replaces the whole profile, last write wins
func (s *Store) SaveArtist(ctx context.Context, profile *appmodels.ArtistProfile) error {
	span, ctx := tracer.StartSpanFromContext(ctx, "mongo.save_artist")
	defer span.Finish()

	document := MongoArtist{ArtistProfile: *profile, NameKey: utils.NormaliseKey(profile.Name)}

	_, err := s.collection(artistCollection).ReplaceOne(
		ctx,
		bson.D{{Key: "_id", Value: profile.Id}},
		document,
		options.Replace().SetUpsert(true),
	)

	if err != nil {
		return wrap("save artist", err)
	}

	datadog.Increment(1, datadog.PersistenceWrites, datadog.StoreTag.Tag("mongo"))

	return nil
}

// DeleteArtist removes the profile first so a partial failure never leaves rows pointing to a live artist
func (s *Store) DeleteArtist(ctx context.Context, id string) error {
	result, err := s.collection(artistCollection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})

	if err != nil {
		return wrap("delete artist", err)
	}

	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}

	rows := map[string]string{
		snapshotCollection: "artist_id",
		trackCollection:    "artist_id",
		videoCollection:    "artist_id",
		similarCollection:  "from_artist_id",
	}

	for _, collection := range []string{snapshotCollection, trackCollection, videoCollection, similarCollection} {
		_, err := s.collection(collection).DeleteMany(ctx, bson.D{{Key: rows[collection], Value: id}})

		if err != nil {
			return wrap("delete "+collection, err)
		}
	}

	return nil
}
