package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kzsync/pkg/config"
	"kzsync/pkg/database"
	"kzsync/pkg/database/models"
	"kzsync/pkg/logger"
	"kzsync/scraper/data/globalapi"
	"kzsync/scraper/data/kzgo"
	"kzsync/scraper/testutil"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.CreateLogger(config.BucketConfig{})
	require.NoError(t, err)

	return log
}

func modeSet(filters []*models.Filter, courseID uint32) []uint16 {
	var modes []uint16
	for _, f := range filters {
		if f.CourseID == courseID {
			modes = append(modes, f.ModeID)
		}
	}
	return modes
}

func TestDeriveFilters(t *testing.T) {
	courses := []*models.Course{{ID: 100}}

	tests := []struct {
		name      string
		mapName   string
		meta      *kzgo.Map
		wantModes []uint16
	}{
		{
			name:      "defaultModeOnly",
			mapName:   "kz_example",
			meta:      &kzgo.Map{},
			wantModes: []uint16{models.ModeKZTimer},
		},
		{
			name:      "allThreeModes",
			mapName:   "kz_example",
			meta:      &kzgo.Map{SupportsSKZ: true, SupportsVNL: true},
			wantModes: []uint16{models.ModeKZTimer, models.ModeSimpleKZ, models.ModeVanilla},
		},
		{
			name:    "skzPrefixedMap",
			mapName: "skz_example",
			meta:    &kzgo.Map{SupportsSKZ: true},
			// The prefix excludes the default mode.
			wantModes: []uint16{models.ModeSimpleKZ},
		},
		{
			name:      "noMetadata",
			mapName:   "kz_example",
			meta:      nil,
			wantModes: []uint16{models.ModeKZTimer},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters := deriveFilters(tt.mapName, tt.meta, courses)
			assert.Equal(t, tt.wantModes, modeSet(filters, 100))
		})
	}
}

func TestDeriveFiltersCoversEveryCourse(t *testing.T) {
	courses := []*models.Course{{ID: 500}, {ID: 501}, {ID: 502}}

	filters := deriveFilters("kz_example", &kzgo.Map{SupportsSKZ: true}, courses)

	assert.Len(t, filters, 6)
	assert.Equal(t, []uint16{models.ModeKZTimer, models.ModeSimpleKZ}, modeSet(filters, 502))
}

func TestSyncMaps(t *testing.T) {
	global := new(testutil.MockGlobalAPI)
	meta := new(testutil.MockMapMetadata)
	players := new(testutil.MockPlayerRepository)
	maps := new(testutil.MockMapRepository)
	mappers := new(testutil.MockMapperRepository)
	filters := new(testutil.MockFilterRepository)

	global.On("GetMaps", mock.Anything).Return([]globalapi.Map{
		{ID: 42, Name: "kz_hoist_fix", Validated: true, ApprovedBy: "76561197982407566"},
	}, nil)
	meta.On("GetMaps", mock.Anything).Return([]kzgo.Map{
		{
			ID:          42,
			Name:        "kz_hoist_fix",
			Tier:        3,
			Bonuses:     1,
			SupportsSKZ: true,
			MapperIDs:   []string{"76561197961358245"},
			MapperNames: []string{"MapAuthor"},
		},
	}, nil)

	// The approver stub lands before the map row references it.
	players.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(rows []*models.Player) bool {
		return len(rows) == 1 && rows[0].ID == 22141838
	}), database.PolicyIgnore).Return(1, nil).Once()

	maps.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(rows []*models.Map) bool {
		return len(rows) == 1 && rows[0].ID == 42 && rows[0].Global
	}), database.PolicyUpdate).Return(1, nil)
	maps.On("UpsertCourseBatch", mock.Anything, mock.MatchedBy(func(rows []*models.Course) bool {
		return len(rows) == 2 && rows[0].ID == 4200 && rows[1].ID == 4201
	})).Return(2, nil)

	// Two courses, two modes each.
	filters.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(rows []*models.Filter) bool {
		return len(rows) == 4
	})).Return(4, nil)

	players.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(rows []*models.Player) bool {
		return len(rows) == 1 && rows[0].Name == "MapAuthor"
	}), database.PolicyIgnore).Return(1, nil).Once()
	mappers.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(rows []*models.Mapper) bool {
		return len(rows) == 1 && rows[0].MapID == 42 && rows[0].PlayerID == 1092517
	})).Return(1, nil)

	service := NewService(global, meta, players, maps, nil, mappers, filters, newTestLogger(t), 100)

	err := service.SyncMaps(context.Background())

	assert.NoError(t, err)
	testutil.VerifyAllMocks(t, global, meta, players, maps, mappers, filters)
}

func TestSyncServersEnsuresOwners(t *testing.T) {
	global := new(testutil.MockGlobalAPI)
	players := new(testutil.MockPlayerRepository)
	servers := new(testutil.MockServerRepository)

	global.On("GetServers", mock.Anything, 0, 100).Return([]globalapi.Server{
		{ID: 7, Name: "Hikari KZ", OwnerSteamID64: "76561197982407566"},
		// Doesn't fit the id column and gets skipped, not truncated.
		{ID: 99999, Name: "Broken", OwnerSteamID64: "76561197982407566"},
	}, nil).Once()
	global.On("GetServers", mock.Anything, 100, 100).Return([]globalapi.Server{}, nil).Once()

	players.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(rows []*models.Player) bool {
		return len(rows) == 1 && rows[0].ID == 22141838
	}), database.PolicyIgnore).Return(1, nil)
	servers.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(rows []*models.Server) bool {
		return len(rows) == 1 && rows[0].ID == 7 && rows[0].OwnedBy == 22141838
	}), database.PolicyUpdate).Return(1, nil)

	service := NewService(global, nil, players, nil, servers, nil, nil, newTestLogger(t), 100)

	err := service.SyncServers(context.Background())

	assert.NoError(t, err)
	testutil.VerifyAllMocks(t, global, players, servers)
}
