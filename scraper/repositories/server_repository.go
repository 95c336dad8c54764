package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kzsync/pkg/database"
	"kzsync/pkg/database/models"
)

// ServerRepository defines the public interface for handling server data.
type ServerRepository interface {
	GetByID(id uint16) (*models.Server, error)
	GetByName(name string) (*models.Server, error)
	GetAll() ([]models.Server, error)
	CreateIgnore(server *models.Server) error
	UpsertBatch(ctx context.Context, servers []*models.Server, policy database.ConflictPolicy) (int, error)
}

type serverRepository struct {
	db        *gorm.DB
	chunkSize int
}

// NewServerRepository creates and returns the server repository.
func NewServerRepository(db *gorm.DB, chunkSize int) ServerRepository {
	return &serverRepository{db: db, chunkSize: chunkSize}
}

// GetByID returns a server by its id. A missing row is not an error.
func (sr *serverRepository) GetByID(id uint16) (*models.Server, error) {
	var server models.Server
	if err := sr.db.Where("id = ?", id).First(&server).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("couldn't fetch server %d: %w", id, err)
	}

	return &server, nil
}

// GetByName returns a server by name, exact match before case-insensitive
// substring match.
func (sr *serverRepository) GetByName(name string) (*models.Server, error) {
	var server models.Server
	err := sr.db.Where("name = ?", name).First(&server).Error
	if err == nil {
		return &server, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("couldn't fetch server %q: %w", name, err)
	}

	err = sr.db.Where("name ILIKE ?", "%"+name+"%").Order("id").First(&server).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("couldn't fetch server %q: %w", name, err)
	}

	return &server, nil
}

// GetAll returns every server row for in-memory name reconciliation.
func (sr *serverRepository) GetAll() ([]models.Server, error) {
	var servers []models.Server
	if err := sr.db.Find(&servers).Error; err != nil {
		return nil, fmt.Errorf("couldn't fetch servers: %w", err)
	}

	return servers, nil
}

// CreateIgnore inserts a server, treating a concurrent insert of the same id
// as success.
func (sr *serverRepository) CreateIgnore(server *models.Server) error {
	return sr.db.Clauses(clause.OnConflict{DoNothing: true}).Create(server).Error
}

// UpsertBatch creates or updates multiple servers in chunks.
func (sr *serverRepository) UpsertBatch(ctx context.Context, servers []*models.Server, policy database.ConflictPolicy) (int, error) {
	return database.UpsertInChunks(ctx, sr.db, servers, policy, database.UpsertOptions{
		ConflictColumns: []string{"id"},
		UpdateColumns:   []string{"name", "owned_by", "approved_by"},
		ChunkSize:       sr.chunkSize,
	})
}
