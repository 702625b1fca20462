package sqlclient

import (
	"context"

	"github.com/artist-analytics/appmodels"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertTracks replaces each track of the artist by id, tracks from earlier runs are kept
func (s *Store) UpsertTracks(ctx context.Context, artistId string, tracks []*appmodels.TrackRecord) error {
	if len(tracks) == 0 {
		return nil
	}

	rows := make([]trackRow, len(tracks))

	for position, track := range tracks {
		if err := copier.Copy(&rows[position], track); err != nil {
			return wrap("upsert tracks", err)
		}

		rows[position].ArtistId = artistId
		rows[position].Position = position
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "artist_id"}, {Name: "track_id"}},
		UpdateAll: true,
	}).Create(&rows).Error

	if err != nil {
		return wrap("upsert tracks", err)
	}

	return nil
}

func (s *Store) GetTracks(ctx context.Context, artistId string) ([]*appmodels.TrackRecord, error) {
	return s.findTracks(s.db.WithContext(ctx).Where("artist_id = ?", artistId))
}

// FindTracksByIds looks the tracks up whichever artist they were stored for
func (s *Store) FindTracksByIds(ctx context.Context, trackIds []string) ([]*appmodels.TrackRecord, error) {
	if len(trackIds) == 0 {
		return []*appmodels.TrackRecord{}, nil
	}

	return s.findTracks(s.db.WithContext(ctx).Where("track_id IN ?", trackIds))
}

func (s *Store) findTracks(query *gorm.DB) ([]*appmodels.TrackRecord, error) {
	rows := make([]trackRow, 0)

	if err := query.Order("position").Order("track_id").Find(&rows).Error; err != nil {
		return nil, wrap("find tracks", err)
	}

	tracks := make([]*appmodels.TrackRecord, 0, len(rows))

	if err := copier.Copy(&tracks, &rows); err != nil {
		return nil, wrap("find tracks", err)
	}

	return tracks, nil
}

func (s *Store) UpsertVideos(ctx context.Context, artistId string, videos []*appmodels.VideoRecord) error {
	if len(videos) == 0 {
		return nil
	}

	rows := make([]videoRow, len(videos))

	for position, video := range videos {
		if err := copier.Copy(&rows[position], video); err != nil {
			return wrap("upsert videos", err)
		}

		rows[position].ArtistId = artistId
		rows[position].Position = position
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "artist_id"}, {Name: "video_id"}},
		UpdateAll: true,
	}).Create(&rows).Error

	if err != nil {
		return wrap("upsert videos", err)
	}

	return nil
}

func (s *Store) GetVideos(ctx context.Context, artistId string) ([]*appmodels.VideoRecord, error) {
	rows := make([]videoRow, 0)

	err := s.db.WithContext(ctx).Where("artist_id = ?", artistId).Order("position").Order("video_id").Find(&rows).Error

	if err != nil {
		return nil, wrap("get videos", err)
	}

	videos := make([]*appmodels.VideoRecord, 0, len(rows))

	if err := copier.Copy(&videos, &rows); err != nil {
		return nil, wrap("get videos", err)
	}

	return videos, nil
}

// ReplaceSimilar swaps the whole edge list of the artist in one transaction
func (s *Store) ReplaceSimilar(ctx context.Context, fromArtistId string, edges []*appmodels.SimilarArtistEdge) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("from_artist_id = ?", fromArtistId).Delete(&similarRow{}).Error; err != nil {
			return wrap("clear similar", err)
		}

		if len(edges) == 0 {
			return nil
		}

		rows := make([]similarRow, len(edges))

		for position, edge := range edges {
			if err := copier.Copy(&rows[position], edge); err != nil {
				return wrap("insert similar", err)
			}

			rows[position].FromArtistId = fromArtistId
			rows[position].Position = position
		}

		if err := tx.Create(&rows).Error; err != nil {
			return wrap("insert similar", err)
		}

		return nil
	})
}

func (s *Store) GetSimilar(ctx context.Context, fromArtistId string) ([]*appmodels.SimilarArtistEdge, error) {
	rows := make([]similarRow, 0)

	err := s.db.WithContext(ctx).Where("from_artist_id = ?", fromArtistId).Order("position").Find(&rows).Error

	if err != nil {
		return nil, wrap("get similar", err)
	}

	edges := make([]*appmodels.SimilarArtistEdge, 0, len(rows))

	if err := copier.Copy(&edges, &rows); err != nil {
		return nil, wrap("get similar", err)
	}

	return edges, nil
}
