package mongoclient

import (
	"context"

	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoTrack struct {
	Id                    string `bson:"_id"`
	Position              int    `bson:"position"`
	appmodels.TrackRecord `bson:",inline"`
}

type MongoVideo struct {
	Id                    string `bson:"_id"`
	Position              int    `bson:"position"`
	appmodels.VideoRecord `bson:",inline"`
}

func rowId(artistId string, id string) string {
	return artistId + ":" + id
}

// UpsertTracks replaces each track of the artist by id, tracks from earlier runs are kept
func (s *Store) UpsertTracks(ctx context.Context, artistId string, tracks []*appmodels.TrackRecord) error {
	writes := make([]mongo.WriteModel, 0, len(tracks))

	for position, track := range tracks {
		document := MongoTrack{Id: rowId(artistId, track.TrackId), Position: position, TrackRecord: *track}
		document.ArtistId = artistId

		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: document.Id}}).
			SetReplacement(document).
			SetUpsert(true))
	}

	return s.bulkUpsert(ctx, trackCollection, writes)
}

func (s *Store) GetTracks(ctx context.Context, artistId string) ([]*appmodels.TrackRecord, error) {
	mongoTracks := make([]*MongoTrack, 0)

	err := s.findAll(ctx, trackCollection, bson.D{{Key: "artist_id", Value: artistId}}, &mongoTracks)

	if err != nil {
		return nil, err
	}

	tracks := make([]*appmodels.TrackRecord, 0, len(mongoTracks))

	for _, track := range mongoTracks {
		tracks = append(tracks, &track.TrackRecord)
	}

	return tracks, nil
}

// FindTracksByIds looks the tracks up whichever artist they were stored for
func (s *Store) FindTracksByIds(ctx context.Context, trackIds []string) ([]*appmodels.TrackRecord, error) {
	if len(trackIds) == 0 {
		return []*appmodels.TrackRecord{}, nil
	}

	mongoTracks := make([]*MongoTrack, 0)

	filter := bson.D{{Key: "track_id", Value: bson.D{{Key: "$in", Value: trackIds}}}}
	err := s.findAll(ctx, trackCollection, filter, &mongoTracks)

	if err != nil {
		return nil, err
	}

	tracks := make([]*appmodels.TrackRecord, 0, len(mongoTracks))

	for _, track := range mongoTracks {
		tracks = append(tracks, &track.TrackRecord)
	}

	return tracks, nil
}

func (s *Store) UpsertVideos(ctx context.Context, artistId string, videos []*appmodels.VideoRecord) error {
	writes := make([]mongo.WriteModel, 0, len(videos))

	for position, video := range videos {
		document := MongoVideo{Id: rowId(artistId, video.VideoId), Position: position, VideoRecord: *video}
		document.ArtistId = artistId

		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: document.Id}}).
			SetReplacement(document).
			SetUpsert(true))
	}

	return s.bulkUpsert(ctx, videoCollection, writes)
}

func (s *Store) GetVideos(ctx context.Context, artistId string) ([]*appmodels.VideoRecord, error) {
	mongoVideos := make([]*MongoVideo, 0)

	err := s.findAll(ctx, videoCollection, bson.D{{Key: "artist_id", Value: artistId}}, &mongoVideos)

	if err != nil {
		return nil, err
	}

	videos := make([]*appmodels.VideoRecord, 0, len(mongoVideos))

	for _, video := range mongoVideos {
		videos = append(videos, &video.VideoRecord)
	}

	return videos, nil
}

func (s *Store) bulkUpsert(ctx context.Context, collection string, writes []mongo.WriteModel) error {
	if len(writes) == 0 {
		return nil
	}

	ordered := false

	result, err := s.collection(collection).BulkWrite(ctx, writes, &options.BulkWriteOptions{Ordered: &ordered})

	if err != nil {
		return wrap("upsert "+collection, err)
	}

	logger.Logger.Debugf("Upserted %d and updated %d rows in %s", result.UpsertedCount, result.ModifiedCount, collection)

	return nil
}

// findAll decodes every matching row ordered by position
func (s *Store) findAll(ctx context.Context, collection string, filter bson.D, results interface{}) error {
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cursor, err := s.collection(collection).Find(ctx, filter, findOptions)

	if err != nil {
		return wrap("find "+collection, err)
	}

	if err := cursor.All(ctx, results); err != nil {
		return wrap("decode "+collection, err)
	}

	return nil
}
