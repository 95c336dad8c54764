package repositories

import (
	"context"

	"gorm.io/gorm"

	"kzsync/pkg/database"
	"kzsync/pkg/database/models"
)

// MapperRepository handles the player-to-map authorship rows.
type MapperRepository interface {
	UpsertBatch(ctx context.Context, mappers []*models.Mapper) (int, error)
}

type mapperRepository struct {
	db        *gorm.DB
	chunkSize int
}

// NewMapperRepository creates and returns the mapper repository.
func NewMapperRepository(db *gorm.DB, chunkSize int) MapperRepository {
	return &mapperRepository{db: db, chunkSize: chunkSize}
}

// UpsertBatch inserts authorship pairs, skipping ones already recorded.
func (mr *mapperRepository) UpsertBatch(ctx context.Context, mappers []*models.Mapper) (int, error) {
	return database.UpsertInChunks(ctx, mr.db, mappers, database.PolicyIgnore, database.UpsertOptions{
		ConflictColumns: []string{"player_id", "map_id"},
		ChunkSize:       mr.chunkSize,
	})
}
