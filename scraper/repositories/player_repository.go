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

// PlayerRepository defines the public interface for handling player data.
type PlayerRepository interface {
	GetByID(id uint32) (*models.Player, error)
	GetByName(name string) (*models.Player, error)
	CreateIgnore(player *models.Player) error
	SetActive(id uint32, name string) error
	UpsertBatch(ctx context.Context, players []*models.Player, policy database.ConflictPolicy) (int, error)
}

type playerRepository struct {
	db        *gorm.DB
	chunkSize int
}

// NewPlayerRepository creates and returns the player repository.
func NewPlayerRepository(db *gorm.DB, chunkSize int) PlayerRepository {
	return &playerRepository{db: db, chunkSize: chunkSize}
}

// GetByID returns a player by their community id. A missing row is not an error.
func (pr *playerRepository) GetByID(id uint32) (*models.Player, error) {
	var player models.Player
	if err := pr.db.Where("id = ?", id).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("couldn't fetch player %d: %w", id, err)
	}

	return &player, nil
}

// GetByName returns a player by name, preferring an exact match over a
// case-insensitive substring match. First substring match wins.
func (pr *playerRepository) GetByName(name string) (*models.Player, error) {
	var player models.Player
	err := pr.db.Where("name = ?", name).First(&player).Error
	if err == nil {
		return &player, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("couldn't fetch player %q: %w", name, err)
	}

	err = pr.db.Where("name ILIKE ?", "%"+name+"%").Order("id").First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("couldn't fetch player %q: %w", name, err)
	}

	return &player, nil
}

// CreateIgnore inserts a player, treating a concurrent insert of the same id
// as success.
func (pr *playerRepository) CreateIgnore(player *models.Player) error {
	return pr.db.Clauses(clause.OnConflict{DoNothing: true}).Create(player).Error
}

// SetActive clears the ban flag and refreshes the name. A player that just
// submitted a record cannot be banned.
func (pr *playerRepository) SetActive(id uint32, name string) error {
	return pr.db.Model(&models.Player{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_banned": false,
			"name":      name,
		}).Error
}

// UpsertBatch creates or updates multiple players in chunks.
func (pr *playerRepository) UpsertBatch(ctx context.Context, players []*models.Player, policy database.ConflictPolicy) (int, error) {
	return database.UpsertInChunks(ctx, pr.db, players, policy, database.UpsertOptions{
		ConflictColumns: []string{"id"},
		UpdateColumns:   []string{"name", "is_banned"},
		ChunkSize:       pr.chunkSize,
	})
}
