package mongoclient

import (
	"context"

	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AppendSnapshot never updates, a snapshot written twice by a retried request is kept once
func (s *Store) AppendSnapshot(ctx context.Context, snapshot *appmodels.AnalyticsSnapshot) error {
	_, err := s.collection(snapshotCollection).InsertOne(ctx, snapshot)

	if err != nil && IsOnlyDuplicateError(err) {
		logger.Logger.Warningf("Snapshot %s already stored", snapshot.Id)
		return nil
	}

	if err != nil {
		return wrap("append snapshot", err)
	}

	return nil
}

func (s *Store) LatestSnapshot(ctx context.Context, artistId string) (*appmodels.AnalyticsSnapshot, error) {
	var snapshot appmodels.AnalyticsSnapshot

	err := s.collection(snapshotCollection).FindOne(
		ctx,
		bson.D{{Key: "artist_id", Value: artistId}},
		options.FindOne().SetSort(bson.D{{Key: "taken_at", Value: -1}}),
	).Decode(&snapshot)

	if err != nil {
		return nil, wrap("latest snapshot", err)
	}

	return &snapshot, nil
}
