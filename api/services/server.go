package services

import (
	"kzsync/api/repositories"
	"kzsync/pkg/database/models"
)

// ServerService exposes the server read operations.
type ServerService struct {
	serverRepository repositories.ServerRepository
}

// NewServerService creates a server service.
func NewServerService(repo repositories.ServerRepository) *ServerService {
	return &ServerService{
		serverRepository: repo,
	}
}

// ListServers returns the servers matching the filters.
func (ss *ServerService) ListServers(filters map[string]any, limit int, offset int) ([]*models.Server, error) {
	return ss.serverRepository.List(filters, limit, offset)
}

// GetServer returns a single server by id.
func (ss *ServerService) GetServer(id uint16) (*models.Server, error) {
	return ss.serverRepository.GetByID(id)
}
