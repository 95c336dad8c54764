package services

import (
	"kzsync/api/repositories"
	"kzsync/pkg/database/models"
)

// RecordService exposes the record read operations.
type RecordService struct {
	recordRepository repositories.RecordRepository
}

// NewRecordService creates a record service.
func NewRecordService(repo repositories.RecordRepository) *RecordService {
	return &RecordService{
		recordRepository: repo,
	}
}

// ListRecords returns the records matching the filters, newest first.
func (rs *RecordService) ListRecords(filters map[string]any, limit int, offset int) ([]*models.Record, error) {
	return rs.recordRepository.List(filters, limit, offset)
}
