package services

import (
	"kzsync/api/repositories"
	"kzsync/pkg/database/models"
)

// PlayerService exposes the player read operations.
type PlayerService struct {
	playerRepository repositories.PlayerRepository
}

// NewPlayerService creates a player service.
func NewPlayerService(repo repositories.PlayerRepository) *PlayerService {
	return &PlayerService{
		playerRepository: repo,
	}
}

// ListPlayers returns the players matching the filters.
func (ps *PlayerService) ListPlayers(filters map[string]any, limit int, offset int) ([]*models.Player, error) {
	return ps.playerRepository.List(filters, limit, offset)
}

// GetPlayer returns a single player by id.
func (ps *PlayerService) GetPlayer(id uint32) (*models.Player, error) {
	return ps.playerRepository.GetByID(id)
}
