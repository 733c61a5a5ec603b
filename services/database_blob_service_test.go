package services

import (
	"context"
	"testing"

	"github.com/kendall-kelly/agenda-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupBlobTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func TestDatabaseBlobStoreRoundTrip(t *testing.T) {
	db := setupBlobTestDB(t)
	store, err := NewDatabaseBlobStore(db, StoreName)
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, "database", store.Name())

	value, err := store.Get(ctx, DocumentKey)
	require.NoError(t, err)
	assert.Nil(t, value)

	require.NoError(t, store.Set(ctx, DocumentKey, []byte(`[{"id":"1"}]`), DocumentContentType))
	require.NoError(t, store.Set(ctx, DocumentKey, []byte(`[{"id":"2"}]`), DocumentContentType))

	value, err = store.Get(ctx, DocumentKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"2"}]`, string(value), "Set overwrites the existing row")

	var count int64
	db.Model(&models.Blob{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDatabaseBlobStoreIsolatesStores(t *testing.T) {
	db := setupBlobTestDB(t)
	agenda, err := NewDatabaseBlobStore(db, StoreName)
	require.NoError(t, err)
	other, err := NewDatabaseBlobStore(db, "other")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, other.Set(ctx, DocumentKey, []byte(`["x"]`), DocumentContentType))

	value, err := agenda.Get(ctx, DocumentKey)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestDatabaseBlobStoreBackingDocumentStore(t *testing.T) {
	store, err := NewDatabaseBlobStore(setupBlobTestDB(t), StoreName)
	require.NoError(t, err)
	docs := NewDocumentStore(store)
	ctx := context.Background()

	result, err := docs.Write(ctx, []models.Appointment{{ID: "a", Cliente: "C"}})
	require.NoError(t, err)
	assert.Equal(t, "database", result.Mode)
	assert.True(t, result.Confirmed)

	read := docs.Read(ctx)
	require.Len(t, read.Items, 1)
	assert.Equal(t, "C", read.Items[0].Cliente)
}
