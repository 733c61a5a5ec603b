package services

import (
	"context"
	"errors"

	"github.com/kendall-kelly/agenda-api/models"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseBlobStore keeps blobs as rows of the blobs table
type DatabaseBlobStore struct {
	db    *gorm.DB
	store string
}

// NewDatabaseBlobStore migrates the blobs table and returns a store bound to it
func NewDatabaseBlobStore(db *gorm.DB, store string) (*DatabaseBlobStore, error) {
	if err := db.AutoMigrate(&models.Blob{}); err != nil {
		return nil, goerr.Wrap(err, "failed to migrate blobs table")
	}
	return &DatabaseBlobStore{db: db, store: store}, nil
}

func (s *DatabaseBlobStore) Name() string {
	return "database"
}

func (s *DatabaseBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var blob models.Blob
	err := s.db.WithContext(ctx).
		Where("store = ? AND blob_key = ?", s.store, key).
		First(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query blob", goerr.Value("store", s.store), goerr.Value("key", key))
	}
	return []byte(blob.Value), nil
}

func (s *DatabaseBlobStore) Set(ctx context.Context, key string, value []byte, contentType string) error {
	blob := models.Blob{
		Store:       s.store,
		Key:         key,
		Value:       string(value),
		ContentType: contentType,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store"}, {Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "content_type", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		return goerr.Wrap(err, "failed to upsert blob", goerr.Value("store", s.store), goerr.Value("key", key))
	}
	return nil
}
