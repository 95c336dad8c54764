package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"kzsync/api/testutil"
	"kzsync/pkg/database/models"
)

func TestListMapsCachesTheQuery(t *testing.T) {
	repo := new(testutil.MockMapRepository)

	maps := []*models.Map{
		{ID: 992, Name: "kz_cybersand", Global: true},
	}
	repo.On("List", map[string]any{"name": "cyber"}, 100, 0).Return(maps, nil).Once()

	service := NewMapService(repo, nil)

	first, err := service.ListMaps(context.Background(), map[string]any{"name": "cyber"}, 100, 0)
	assert.NoError(t, err)
	assert.Len(t, first, 1)

	// Second identical query is served from the cache, never hitting the
	// repository again.
	second, err := service.ListMaps(context.Background(), map[string]any{"name": "cyber"}, 100, 0)
	assert.NoError(t, err)
	assert.Equal(t, first[0].Name, second[0].Name)

	testutil.VerifyAllMocks(t, repo)
}

func TestListMapsDistinctQueriesMiss(t *testing.T) {
	repo := new(testutil.MockMapRepository)

	repo.On("List", map[string]any{"name": "cyber"}, 100, 0).
		Return([]*models.Map{{ID: 992, Name: "kz_cybersand"}}, nil).Once()
	repo.On("List", map[string]any{"name": "hoist"}, 100, 0).
		Return([]*models.Map{{ID: 42, Name: "kz_hoist_fix"}}, nil).Once()

	service := NewMapService(repo, nil)

	_, err := service.ListMaps(context.Background(), map[string]any{"name": "cyber"}, 100, 0)
	assert.NoError(t, err)

	result, err := service.ListMaps(context.Background(), map[string]any{"name": "hoist"}, 100, 0)
	assert.NoError(t, err)
	assert.Equal(t, "kz_hoist_fix", result[0].Name)

	testutil.VerifyAllMocks(t, repo)
}
