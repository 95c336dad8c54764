package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kzsync/api/cache"
	"kzsync/api/dto"
	"kzsync/api/repositories"
	"kzsync/pkg/database/models"
)

// Maps change roughly once a month, a few minutes of staleness is fine.
const mapListCacheTTL = 5 * time.Minute

// MapService exposes the map read operations, with the list cached since
// it is by far the hottest endpoint and the data barely moves.
type MapService struct {
	mapRepository repositories.MapRepository
	cache         *cache.Layered
}

// NewMapService creates a map service.
func NewMapService(repo repositories.MapRepository, store cache.Store) *MapService {
	return &MapService{
		mapRepository: repo,
		cache:         cache.NewLayered(store, 30*time.Second, mapListCacheTTL),
	}
}

// ListMaps returns the maps matching the filters, served from cache when a
// fresh copy of the same query exists.
func (ms *MapService) ListMaps(ctx context.Context, filters map[string]any, limit int, offset int) ([]*models.Map, error) {
	key := mapListKey(filters, limit, offset)

	if payload := ms.cache.Get(ctx, key); payload != nil {
		var maps []*models.Map
		if err := json.Unmarshal(payload, &maps); err == nil {
			return maps, nil
		}
	}

	maps, err := ms.mapRepository.List(filters, limit, offset)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(maps); err == nil {
		ms.cache.Set(ctx, key, payload)
	}

	return maps, nil
}

// GetMap returns a single map with its courses.
func (ms *MapService) GetMap(id uint16) (*dto.MapDetail, error) {
	return ms.mapRepository.GetByID(id)
}

func mapListKey(filters map[string]any, limit int, offset int) string {
	name, _ := filters["name"].(string)

	global := "any"
	if value, ok := filters["global"].(bool); ok {
		global = fmt.Sprintf("%t", value)
	}

	return fmt.Sprintf("maps:%s:%s:%d:%d", name, global, limit, offset)
}
