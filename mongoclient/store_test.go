package mongoclient

import (
	"context"
	"testing"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/appmodels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func mockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func siaDocument() bson.D {
	return bson.D{
		{Key: "_id", Value: "artist-1"},
		{Key: "name", Value: "Sia"},
		{Key: "name_key", Value: "sia"},
		{Key: "spotify_id", Value: "sp-1"},
		{Key: "genres", Value: bson.A{"pop"}},
		{Key: "active_years", Value: bson.D{{Key: "begin", Value: "1975"}}},
	}
}

func TestGetArtist(t *testing.T) {
	mt := mockMongo(t)

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.artists", mtest.FirstBatch, siaDocument()))

		artist, err := NewStore(mt.DB).GetArtist(context.Background(), "artist-1")

		require.NoError(mt, err)
		assert.Equal(mt, "artist-1", artist.Id)
		assert.Equal(mt, "Sia", artist.Name)
		assert.Equal(mt, "sp-1", artist.SpotifyId)
		assert.Equal(mt, []string{"pop"}, artist.Genres)
		assert.Equal(mt, "1975", *artist.ActiveYears.Begin)
		assert.Nil(mt, artist.Biography)
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.artists", mtest.FirstBatch))

		_, err := NewStore(mt.DB).GetArtist(context.Background(), "nope")

		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))

		_, err := NewStore(mt.DB).GetArtist(context.Background(), "artist-1")

		var persistence *apperrors.PersistenceError
		assert.ErrorAs(mt, err, &persistence)
	})
}

func TestFindArtistByIdentity(t *testing.T) {
	mt := mockMongo(t)

	mt.Run("matches on any id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.artists", mtest.FirstBatch, siaDocument()))

		artist, err := NewStore(mt.DB).FindArtistByIdentity(context.Background(), &appmodels.ArtistProfile{
			SpotifyId:     "sp-1",
			MusicbrainzId: "mb-1",
		})

		require.NoError(mt, err)
		assert.Equal(mt, "artist-1", artist.Id)

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		clauses, err := filter.Lookup("$or").Array().Values()
		require.NoError(mt, err)
		assert.Len(mt, clauses, 2)
	})

	mt.Run("no ids never queries", func(mt *mtest.T) {
		_, err := NewStore(mt.DB).FindArtistByIdentity(context.Background(), &appmodels.ArtistProfile{Name: "Sia"})

		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestFindArtistByNameUsesNormalisedKey(t *testing.T) {
	mt := mockMongo(t)

	mt.Run("name", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.artists", mtest.FirstBatch, siaDocument()))

		_, err := NewStore(mt.DB).FindArtistByName(context.Background(), "  SIA ")

		require.NoError(mt, err)
		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		assert.Equal(mt, "sia", filter.Lookup("name_key").StringValue())
	})
}

func TestSaveArtist(t *testing.T) {
	mt := mockMongo(t)

	mt.Run("upserts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := NewStore(mt.DB).SaveArtist(context.Background(), &appmodels.ArtistProfile{Id: "artist-1", Name: "Sia"})

		require.NoError(mt, err)
		update := mt.GetStartedEvent().Command.Lookup("updates").Array().Index(0).Value().Document()
		assert.True(mt, update.Lookup("upsert").Boolean())
		assert.Equal(mt, "sia", update.Lookup("u", "name_key").StringValue())
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "validation"}))

		err := NewStore(mt.DB).SaveArtist(context.Background(), &appmodels.ArtistProfile{Id: "artist-1", Name: "Sia"})

		var persistence *apperrors.PersistenceError
		require.ErrorAs(mt, err, &persistence)
		assert.Equal(mt, "save artist", persistence.Operation)
	})
}

func TestDeleteArtist(t *testing.T) {
	mt := mockMongo(t)

	mt.Run("removes rows", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 10}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 5}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
		)

		require.NoError(mt, NewStore(mt.DB).DeleteArtist(context.Background(), "artist-1"))
		assert.Len(mt, mt.GetAllStartedEvents(), 5)
	})

	mt.Run("unknown", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := NewStore(mt.DB).DeleteArtist(context.Background(), "nope")

		assert.ErrorIs(mt, err, apperrors.ErrNotFound)
		assert.Len(mt, mt.GetAllStartedEvents(), 1)
	})
}

func TestSnapshots(t *testing.T) {
	mt := mockMongo(t)

	mt.Run("append", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := NewStore(mt.DB).AppendSnapshot(context.Background(), &appmodels.AnalyticsSnapshot{
			Id: "snap-1", ArtistId: "artist-1", SpotifyFollowers: appmodels.Int64(10),
		})

		require.NoError(mt, err)
	})

	mt.Run("append twice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := NewStore(mt.DB).AppendSnapshot(context.Background(), &appmodels.AnalyticsSnapshot{Id: "snap-1"})

		assert.NoError(mt, err)
	})

	mt.Run("latest", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.snapshots", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "snap-2"},
			{Key: "artist_id", Value: "artist-1"},
			{Key: "youtube_subscribers", Value: int64(42)},
			{Key: "spotify_followers", Value: nil},
		}))

		snapshot, err := NewStore(mt.DB).LatestSnapshot(context.Background(), "artist-1")

		require.NoError(mt, err)
		assert.Equal(mt, "snap-2", snapshot.Id)
		assert.Equal(mt, int64(42), *snapshot.YoutubeSubscribers)
		assert.Nil(mt, snapshot.SpotifyFollowers)

		sort := mt.GetStartedEvent().Command.Lookup("sort").Document()
		assert.Equal(mt, int32(-1), sort.Lookup("taken_at").Int32())
	})
}

func TestTracks(t *testing.T) {
	mt := mockMongo(t)

	mt.Run("upsert keeps order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		err := NewStore(mt.DB).UpsertTracks(context.Background(), "artist-1", []*appmodels.TrackRecord{
			{TrackId: "t1", Title: "One"},
			{TrackId: "t2", Title: "Two", Streams: appmodels.Int64(9)},
		})

		require.NoError(mt, err)
		updates, err := mt.GetStartedEvent().Command.Lookup("updates").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, updates, 2)

		second := updates[1].Document()
		assert.Equal(mt, "artist-1:t2", second.Lookup("q", "_id").StringValue())
		assert.Equal(mt, int32(1), second.Lookup("u", "position").Int32())
		assert.Equal(mt, "artist-1", second.Lookup("u", "artist_id").StringValue())
	})

	mt.Run("nothing to write", func(mt *mtest.T) {
		require.NoError(mt, NewStore(mt.DB).UpsertTracks(context.Background(), "artist-1", nil))
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("find by ids", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.tracks", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "a:t1"}, {Key: "track_id", Value: "t1"}, {Key: "streams", Value: int64(100)}},
			bson.D{{Key: "_id", Value: "b:t2"}, {Key: "track_id", Value: "t2"}},
		))

		tracks, err := NewStore(mt.DB).FindTracksByIds(context.Background(), []string{"t1", "t2"})

		require.NoError(mt, err)
		require.Len(mt, tracks, 2)
		assert.Equal(mt, int64(100), *tracks[0].Streams)
		assert.Nil(mt, tracks[1].Streams)
	})
}

func TestSimilar(t *testing.T) {
	mt := mockMongo(t)

	mt.Run("replace", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 4}),
			mtest.CreateSuccessResponse(),
		)

		err := NewStore(mt.DB).ReplaceSimilar(context.Background(), "artist-1", []*appmodels.SimilarArtistEdge{
			{ToArtistName: "Rihanna", MatchScore: 1},
			{ToArtistName: "David Guetta", MatchScore: 0.4},
		})

		require.NoError(mt, err)
		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 2)
		assert.Equal(mt, "delete", events[0].CommandName)
		assert.Equal(mt, "insert", events[1].CommandName)
	})

	mt.Run("get", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.similar_artists", mtest.FirstBatch,
			bson.D{{Key: "position", Value: 0}, {Key: "from_artist_id", Value: "artist-1"}, {Key: "to_artist_name", Value: "Rihanna"}, {Key: "match_score", Value: 1.0}},
		))

		edges, err := NewStore(mt.DB).GetSimilar(context.Background(), "artist-1")

		require.NoError(mt, err)
		require.Len(mt, edges, 1)
		assert.Equal(mt, "Rihanna", edges[0].ToArtistName)
		assert.Equal(mt, 1.0, edges[0].MatchScore)
	})
}

func TestIsOnlyDuplicateError(t *testing.T) {
	duplicate := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
		{WriteError: mongo.WriteError{Code: 11000}},
	}}
	mixed := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
		{WriteError: mongo.WriteError{Code: 11000}},
		{WriteError: mongo.WriteError{Code: 121}},
	}}

	assert.True(t, IsOnlyDuplicateError(duplicate))
	assert.False(t, IsOnlyDuplicateError(mixed))
	assert.False(t, IsOnlyDuplicateError(mongo.BulkWriteException{}))
}
