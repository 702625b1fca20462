package sqlclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/appmodels"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/utils"
	"github.com/jinzhu/copier"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

// Store persists artists and their rows in postgres or sqlite
type Store struct {
	db *gorm.DB
}

// Open connects with the given driver and migrates the schema
func Open(driver string, dsn string) (*Store, error) {
	var dialector gorm.Dialector

	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSqlite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})

	if err != nil {
		logger.Logger.Errorf("Failed to open %s database %v", driver, err)
		return nil, err
	}

	sqlDB, err := db.DB()

	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	store := NewStore(db)

	if err := store.Migrate(); err != nil {
		return nil, err
	}

	logger.Logger.Infof("Connection to %s database successful", driver)

	return store, nil
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(&artistRow{}, &snapshotRow{}, &trackRow{}, &videoRow{}, &similarRow{})

	if err != nil {
		logger.Logger.Errorf("Failed to migrate database %v", err)
	}

	return err
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()

	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func wrap(operation string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}

	logger.WithSource("sql").Errorf("Failed to %s %v", operation, err)

	return apperrors.Persistence(operation, err)
}

func (s *Store) GetArtist(ctx context.Context, id string) (*appmodels.ArtistProfile, error) {
	return s.findArtist(ctx, s.db.WithContext(ctx).Where("id = ?", id))
}

// FindArtistByIdentity matches any stored profile sharing one external id with the given one
func (s *Store) FindArtistByIdentity(ctx context.Context, profile *appmodels.ArtistProfile) (*appmodels.ArtistProfile, error) {
	ids := map[string]string{
		"spotify_id":         profile.SpotifyId,
		"musicbrainz_id":     profile.MusicbrainzId,
		"youtube_channel_id": profile.YoutubeChannelId,
		"lastfm_id":          profile.LastFmId,
	}

	query := s.db.WithContext(ctx).Where("1 = 0")
	matchable := false

	for _, column := range []string{"spotify_id", "musicbrainz_id", "youtube_channel_id", "lastfm_id"} {
		if ids[column] != "" {
			query = query.Or(column+" = ?", ids[column])
			matchable = true
		}
	}

	if !matchable {
		return nil, apperrors.ErrNotFound
	}

	return s.findArtist(ctx, query)
}

func (s *Store) FindArtistByName(ctx context.Context, name string) (*appmodels.ArtistProfile, error) {
	return s.findArtist(ctx, s.db.WithContext(ctx).Where("name_key = ?", utils.NormaliseKey(name)))
}

func (s *Store) findArtist(ctx context.Context, query *gorm.DB) (*appmodels.ArtistProfile, error) {
	span, _ := tracer.StartSpanFromContext(ctx, "sql.find_artist")
	defer span.Finish()

	var row artistRow

	if err := query.Order("created_at").First(&row).Error; err != nil {
		return nil, wrap("find artist", err)
	}

	return row.toProfile(), nil
}

func (s *Store) ListArtists(ctx context.Context, limit int) ([]*appmodels.ArtistProfile, error) {
	rows := make([]artistRow, 0)
	query := s.db.WithContext(ctx).Order("name_key")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, wrap("list artists", err)
	}

	artists := make([]*appmodels.ArtistProfile, 0, len(rows))

	for i := range rows {
		artists = append(artists, rows[i].toProfile())
	}

	return artists, nil
}

// SaveArtist inserts or replaces every column of the profile, last write wins
func (s *Store) SaveArtist(ctx context.Context, profile *appmodels.ArtistProfile) error {
	span, ctx := tracer.StartSpanFromContext(ctx, "sql.save_artist")
	defer span.Finish()

	row := toArtistRow(profile, utils.NormaliseKey(profile.Name))

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error

	if err != nil {
		return wrap("save artist", err)
	}

	datadog.Increment(1, datadog.PersistenceWrites, datadog.StoreTag.Tag("sql"))

	return nil
}

// DeleteArtist removes the artist and all its rows in one transaction
func (s *Store) DeleteArtist(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&artistRow{})

		if result.Error != nil {
			return wrap("delete artist", result.Error)
		}

		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}

		if err := tx.Where("artist_id = ?", id).Delete(&snapshotRow{}).Error; err != nil {
			return wrap("delete snapshots", err)
		}

		if err := tx.Where("artist_id = ?", id).Delete(&trackRow{}).Error; err != nil {
			return wrap("delete tracks", err)
		}

		if err := tx.Where("artist_id = ?", id).Delete(&videoRow{}).Error; err != nil {
			return wrap("delete videos", err)
		}

		if err := tx.Where("from_artist_id = ?", id).Delete(&similarRow{}).Error; err != nil {
			return wrap("delete similar", err)
		}

		return nil
	})
}

// AppendSnapshot never updates, a snapshot written twice by a retried request is kept once
func (s *Store) AppendSnapshot(ctx context.Context, snapshot *appmodels.AnalyticsSnapshot) error {
	var row snapshotRow

	if err := copier.Copy(&row, snapshot); err != nil {
		return apperrors.Persistence("append snapshot", err)
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error

	if err != nil {
		return wrap("append snapshot", err)
	}

	return nil
}

func (s *Store) LatestSnapshot(ctx context.Context, artistId string) (*appmodels.AnalyticsSnapshot, error) {
	var row snapshotRow

	err := s.db.WithContext(ctx).Where("artist_id = ?", artistId).Order("taken_at desc").First(&row).Error

	if err != nil {
		return nil, wrap("latest snapshot", err)
	}

	var snapshot appmodels.AnalyticsSnapshot

	if err := copier.Copy(&snapshot, &row); err != nil {
		return nil, apperrors.Persistence("latest snapshot", err)
	}

	return &snapshot, nil
}
