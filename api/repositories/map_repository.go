package repositories

import (
	"errors"

	"gorm.io/gorm"

	"kzsync/api/dto"
	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
)

// MapRepository is the public interface for the map read queries.
type MapRepository interface {
	List(filters map[string]any, limit int, offset int) ([]*models.Map, error)
	GetByID(id uint16) (*dto.MapDetail, error)
}

// mapRepository repository structure.
type mapRepository struct {
	db *gorm.DB
}

// NewMapRepository creates a map read repository.
func NewMapRepository(db *gorm.DB) MapRepository {
	return &mapRepository{db: db}
}

// List returns maps matching the given filters.
func (mr *mapRepository) List(filters map[string]any, limit int, offset int) ([]*models.Map, error) {
	query := mr.db.Model(&models.Map{})

	if name, ok := filters["name"].(string); ok && name != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%")
	}
	if global, ok := filters["global"].(bool); ok {
		query = query.Where("global = ?", global)
	}

	var maps []*models.Map
	err := query.Order("name asc").Limit(limit).Offset(offset).Find(&maps).Error
	return maps, err
}

// GetByID returns a single map with its courses.
func (mr *mapRepository) GetByID(id uint16) (*dto.MapDetail, error) {
	var m models.Map
	err := mr.db.First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var courses []*models.Course
	if err := mr.db.Where("map_id = ?", id).Order("stage asc").Find(&courses).Error; err != nil {
		return nil, err
	}

	return &dto.MapDetail{Map: m, Courses: courses}, nil
}
