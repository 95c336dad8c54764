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

// MapRepository defines the public interface for handling map and course data.
type MapRepository interface {
	GetByID(id uint16) (*models.Map, error)
	GetByName(name string) (*models.Map, error)
	GetAll() ([]models.Map, error)
	CourseExists(id uint32) (bool, error)
	InsertWithCourses(m *models.Map, courses []*models.Course) error
	UpsertBatch(ctx context.Context, maps []*models.Map, policy database.ConflictPolicy) (int, error)
	UpsertCourseBatch(ctx context.Context, courses []*models.Course) (int, error)
}

type mapRepository struct {
	db        *gorm.DB
	chunkSize int
}

// NewMapRepository creates and returns the map repository.
func NewMapRepository(db *gorm.DB, chunkSize int) MapRepository {
	return &mapRepository{db: db, chunkSize: chunkSize}
}

// GetByID returns a map by its id. A missing row is not an error.
func (mr *mapRepository) GetByID(id uint16) (*models.Map, error) {
	var m models.Map
	if err := mr.db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("couldn't fetch map %d: %w", id, err)
	}

	return &m, nil
}

// GetByName returns a map by name, exact match before case-insensitive
// substring match.
func (mr *mapRepository) GetByName(name string) (*models.Map, error) {
	var m models.Map
	err := mr.db.Where("name = ?", name).First(&m).Error
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("couldn't fetch map %q: %w", name, err)
	}

	err = mr.db.Where("name ILIKE ?", "%"+name+"%").Order("id").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("couldn't fetch map %q: %w", name, err)
	}

	return &m, nil
}

// GetAll returns every map row. Used by the offline loaders to reconcile
// names in memory.
func (mr *mapRepository) GetAll() ([]models.Map, error) {
	var maps []models.Map
	if err := mr.db.Find(&maps).Error; err != nil {
		return nil, fmt.Errorf("couldn't fetch maps: %w", err)
	}

	return maps, nil
}

// CourseExists reports whether a course row is present.
func (mr *mapRepository) CourseExists(id uint32) (bool, error) {
	var count int64
	if err := mr.db.Model(&models.Course{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("couldn't check course %d: %w", id, err)
	}

	return count > 0, nil
}

// InsertWithCourses writes a map and its derived courses in one transaction,
// so a record referencing the new map can never observe it without courses.
// A concurrent insert of the same map id is treated as success.
func (mr *mapRepository) InsertWithCourses(m *models.Map, courses []*models.Course) error {
	return mr.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error; err != nil {
			return fmt.Errorf("couldn't insert map %d: %w", m.ID, err)
		}

		if len(courses) == 0 {
			return nil
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&courses).Error; err != nil {
			return fmt.Errorf("couldn't insert courses for map %d: %w", m.ID, err)
		}

		return nil
	})
}

// UpsertBatch creates or updates multiple maps in chunks.
func (mr *mapRepository) UpsertBatch(ctx context.Context, maps []*models.Map, policy database.ConflictPolicy) (int, error) {
	return database.UpsertInChunks(ctx, mr.db, maps, policy, database.UpsertOptions{
		ConflictColumns: []string{"id"},
		UpdateColumns:   []string{"name", "global", "workshop_id", "filesize", "approved_by", "updated_on"},
		ChunkSize:       mr.chunkSize,
	})
}

// UpsertCourseBatch inserts courses, ignoring ones already present.
func (mr *mapRepository) UpsertCourseBatch(ctx context.Context, courses []*models.Course) (int, error) {
	return database.UpsertInChunks(ctx, mr.db, courses, database.PolicyIgnore, database.UpsertOptions{
		ConflictColumns: []string{"id"},
		ChunkSize:       mr.chunkSize,
	})
}
