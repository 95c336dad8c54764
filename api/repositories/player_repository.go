package repositories

import (
	"errors"

	"gorm.io/gorm"

	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
)

// PlayerRepository is the public interface for the player read queries.
type PlayerRepository interface {
	List(filters map[string]any, limit int, offset int) ([]*models.Player, error)
	GetByID(id uint32) (*models.Player, error)
}

// playerRepository repository structure.
type playerRepository struct {
	db *gorm.DB
}

// NewPlayerRepository creates a player read repository.
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepository{db: db}
}

// List returns players matching the given filters.
func (pr *playerRepository) List(filters map[string]any, limit int, offset int) ([]*models.Player, error) {
	query := pr.db.Model(&models.Player{})

	if name, ok := filters["name"].(string); ok && name != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", name+"%")
	}
	if banned, ok := filters["is_banned"].(bool); ok {
		query = query.Where("is_banned = ?", banned)
	}

	var players []*models.Player
	err := query.Order("id asc").Limit(limit).Offset(offset).Find(&players).Error
	return players, err
}

// GetByID returns a single player.
func (pr *playerRepository) GetByID(id uint32) (*models.Player, error) {
	var player models.Player
	err := pr.db.First(&player, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}
