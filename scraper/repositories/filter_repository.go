package repositories

import (
	"context"

	"gorm.io/gorm"

	"kzsync/pkg/database"
	"kzsync/pkg/database/models"
)

// FilterRepository handles the derived (course, mode) support rows.
type FilterRepository interface {
	UpsertBatch(ctx context.Context, filters []*models.Filter) (int, error)
}

type filterRepository struct {
	db        *gorm.DB
	chunkSize int
}

// NewFilterRepository creates and returns the filter repository.
func NewFilterRepository(db *gorm.DB, chunkSize int) FilterRepository {
	return &filterRepository{db: db, chunkSize: chunkSize}
}

// UpsertBatch inserts derived filters, skipping pairs that already exist.
func (fr *filterRepository) UpsertBatch(ctx context.Context, filters []*models.Filter) (int, error) {
	return database.UpsertInChunks(ctx, fr.db, filters, database.PolicyIgnore, database.UpsertOptions{
		ConflictColumns: []string{"course_id", "mode_id"},
		ChunkSize:       fr.chunkSize,
	})
}
