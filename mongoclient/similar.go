package mongoclient

import (
	"context"

	"github.com/artist-analytics/appmodels"
	"go.mongodb.org/mongo-driver/bson"
)

type MongoSimilarEdge struct {
	Position                    int `bson:"position"`
	appmodels.SimilarArtistEdge `bson:",inline"`
}

// ReplaceSimilar swaps the whole edge list of the artist
func (s *Store) ReplaceSimilar(ctx context.Context, fromArtistId string, edges []*appmodels.SimilarArtistEdge) error {
	collection := s.collection(similarCollection)

	_, err := collection.DeleteMany(ctx, bson.D{{Key: "from_artist_id", Value: fromArtistId}})

	if err != nil {
		return wrap("clear similar", err)
	}

	if len(edges) == 0 {
		return nil
	}

	documents := make([]interface{}, 0, len(edges))

	for position, edge := range edges {
		document := MongoSimilarEdge{Position: position, SimilarArtistEdge: *edge}
		document.FromArtistId = fromArtistId
		documents = append(documents, document)
	}

	if _, err := collection.InsertMany(ctx, documents); err != nil {
		return wrap("insert similar", err)
	}

	return nil
}

func (s *Store) GetSimilar(ctx context.Context, fromArtistId string) ([]*appmodels.SimilarArtistEdge, error) {
	mongoEdges := make([]*MongoSimilarEdge, 0)

	err := s.findAll(ctx, similarCollection, bson.D{{Key: "from_artist_id", Value: fromArtistId}}, &mongoEdges)

	if err != nil {
		return nil, err
	}

	edges := make([]*appmodels.SimilarArtistEdge, 0, len(mongoEdges))

	for _, edge := range mongoEdges {
		edges = append(edges, &edge.SimilarArtistEdge)
	}

	return edges, nil
}
