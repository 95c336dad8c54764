package repositories

import (
	"errors"

	"gorm.io/gorm"

	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
)

// ServerRepository is the public interface for the server read queries.
type ServerRepository interface {
	List(filters map[string]any, limit int, offset int) ([]*models.Server, error)
	GetByID(id uint16) (*models.Server, error)
}

// serverRepository repository structure.
type serverRepository struct {
	db *gorm.DB
}

// NewServerRepository creates a server read repository.
func NewServerRepository(db *gorm.DB) ServerRepository {
	return &serverRepository{db: db}
}

// List returns servers matching the given filters.
func (sr *serverRepository) List(filters map[string]any, limit int, offset int) ([]*models.Server, error) {
	query := sr.db.Model(&models.Server{})

	if name, ok := filters["name"].(string); ok && name != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%")
	}
	if owner, ok := filters["owned_by"].(uint32); ok {
		query = query.Where("owned_by = ?", owner)
	}

	var servers []*models.Server
	err := query.Order("id asc").Limit(limit).Offset(offset).Find(&servers).Error
	return servers, err
}

// GetByID returns a single server.
func (sr *serverRepository) GetByID(id uint16) (*models.Server, error) {
	var server models.Server
	err := sr.db.First(&server, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &server, nil
}
