package repositories

import (
	"gorm.io/gorm"

	"kzsync/pkg/database/models"
)

// RecordRepository is the public interface for the record read queries.
type RecordRepository interface {
	List(filters map[string]any, limit int, offset int) ([]*models.Record, error)
}

// recordRepository repository structure.
type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a record read repository.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

// List returns records matching the given filters, newest first.
func (rr *recordRepository) List(filters map[string]any, limit int, offset int) ([]*models.Record, error) {
	query := rr.db.Model(&models.Record{})

	if playerID, ok := filters["player_id"].(uint32); ok {
		query = query.Where("player_id = ?", playerID)
	}
	if serverID, ok := filters["server_id"].(uint16); ok {
		query = query.Where("server_id = ?", serverID)
	}
	if modeID, ok := filters["mode_id"].(uint16); ok {
		query = query.Where("mode_id = ?", modeID)
	}

	// The course id encodes the map and stage, so both narrow on it.
	if mapID, ok := filters["map_id"].(uint16); ok {
		if stage, ok := filters["stage"].(uint8); ok {
			query = query.Where("course_id = ?", models.CourseID(mapID, stage))
		} else {
			base := models.CourseID(mapID, 0)
			query = query.Where("course_id BETWEEN ? AND ?", base, base+models.MaxStages-1)
		}
	}

	var records []*models.Record
	err := query.Order("created_on desc, id desc").Limit(limit).Offset(offset).Find(&records).Error
	return records, err
}
