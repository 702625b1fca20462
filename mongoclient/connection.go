package mongoclient

import (
	"context"
	"time"

	"github.com/artist-analytics/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	artistCollection   = "artists"
	snapshotCollection = "snapshots"
	trackCollection    = "tracks"
	videoCollection    = "videos"
	similarCollection  = "similar_artists"
)

const DefaultDatabase = "artist_analytics"

const connectTimeout = 10 * time.Second

// Store persists artists and their rows in one mongo database
type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect dials and pings mongo, the returned store owns the client
func Connect(ctx context.Context, url string, database string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))

	if err != nil {
		logger.Logger.Errorf("Failed to connect to mongo %v", err)
		return nil, err
	}

	// Check the connection
	err = client.Ping(ctx, nil)

	if err != nil {
		logger.Logger.Errorf("Failed to ping mongo %v", err)
		return nil, err
	}

	logger.Logger.Infof("Connection to mongo successful, using database %s", database)

	store := &Store{client: client, database: client.Database(database)}

	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// NewStore wraps a database whose client is managed elsewhere
func NewStore(database *mongo.Database) *Store {
	return &Store{database: database}
}

// EnsureIndexes creates the lookup indexes, creating an existing index is a no-op in mongo
func (s *Store) EnsureIndexes(ctx context.Context) error {
	sparse := options.Index().SetSparse(true)

	indexes := map[string][]mongo.IndexModel{
		artistCollection: {
			{Keys: bson.D{{Key: "name_key", Value: 1}}},
			{Keys: bson.D{{Key: "spotify_id", Value: 1}}, Options: sparse},
			{Keys: bson.D{{Key: "musicbrainz_id", Value: 1}}, Options: sparse},
			{Keys: bson.D{{Key: "youtube_channel_id", Value: 1}}, Options: sparse},
			{Keys: bson.D{{Key: "lastfm_id", Value: 1}}, Options: sparse},
		},
		snapshotCollection: {
			{Keys: bson.D{{Key: "artist_id", Value: 1}, {Key: "taken_at", Value: -1}}},
		},
		trackCollection: {
			{Keys: bson.D{{Key: "artist_id", Value: 1}, {Key: "position", Value: 1}}},
			{Keys: bson.D{{Key: "track_id", Value: 1}}},
		},
		videoCollection: {
			{Keys: bson.D{{Key: "artist_id", Value: 1}, {Key: "position", Value: 1}}},
		},
		similarCollection: {
			{Keys: bson.D{{Key: "from_artist_id", Value: 1}, {Key: "position", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := s.database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			logger.Logger.Errorf("Failed to create indexes on %s %v", collection, err)
			return err
		}
	}

	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}

	return s.client.Disconnect(ctx)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.database.Collection(name)
}
