package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"kzsync/pkg/database"
	"kzsync/pkg/database/models"
)

// RecordRepository defines the public interface for handling record data.
// Records are append only, so there is no update path.
type RecordRepository interface {
	MaxID() (uint32, error)
	Create(record *models.Record) error
	CreateBatch(ctx context.Context, records []*models.Record) (int, error)
}

type recordRepository struct {
	db        *gorm.DB
	chunkSize int
}

// NewRecordRepository creates and returns the record repository.
func NewRecordRepository(db *gorm.DB, chunkSize int) RecordRepository {
	return &recordRepository{db: db, chunkSize: chunkSize}
}

// MaxID returns the highest persisted record id, or zero on an empty table.
// The live pipeline resumes from the next id.
func (rr *recordRepository) MaxID() (uint32, error) {
	var maxID *uint32
	if err := rr.db.Model(&models.Record{}).Select("MAX(id)").Scan(&maxID).Error; err != nil {
		return 0, fmt.Errorf("couldn't fetch the max record id: %w", err)
	}

	if maxID == nil {
		return 0, nil
	}

	return *maxID, nil
}

// Create inserts a single record. A duplicate id fails: it indicates a logic
// bug in the pipeline, not a valid retry.
func (rr *recordRepository) Create(record *models.Record) error {
	if err := rr.db.Create(record).Error; err != nil {
		return fmt.Errorf("couldn't insert record %d: %w", record.ID, err)
	}

	return nil
}

// CreateBatch inserts multiple records in chunks, failing the whole chunk on
// any duplicate or dangling reference.
func (rr *recordRepository) CreateBatch(ctx context.Context, records []*models.Record) (int, error) {
	return database.UpsertInChunks(ctx, rr.db, records, database.PolicyFail, database.UpsertOptions{
		ChunkSize: rr.chunkSize,
	})
}
