package elastic

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kzsync/pkg/config"
	"kzsync/pkg/database"
	"kzsync/pkg/database/models"
	"kzsync/pkg/logger"
	esdata "kzsync/scraper/data/elastic"
	"kzsync/scraper/testutil"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchInitial(ctx context.Context) (*esdata.Payload, error) {
	args := m.Called(ctx)
	return args.Get(0).(*esdata.Payload), args.Error(1)
}

func (m *MockSource) Fetch(ctx context.Context, scrollID string) (*esdata.Payload, error) {
	args := m.Called(ctx, scrollID)
	return args.Get(0).(*esdata.Payload), args.Error(1)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.CreateLogger(config.BucketConfig{})
	require.NoError(t, err)

	return log
}

func TestRunReconcilesAndDrains(t *testing.T) {
	source := new(MockSource)
	players := new(testutil.MockPlayerRepository)
	maps := new(testutil.MockMapRepository)
	servers := new(testutil.MockServerRepository)
	records := new(testutil.MockRecordRepository)

	maps.On("GetAll").Return([]models.Map{
		{ID: 42, Name: "kz_hoist_fix"},
	}, nil)
	servers.On("GetAll").Return([]models.Server{
		{ID: 7, Name: "Hikari KZ"},
	}, nil)

	// The first page carries a document under the map's historical name,
	// one referencing a server nobody knows, and a malformed raw document.
	source.On("FetchInitial", mock.Anything).Return(&esdata.Payload{
		ScrollID: "cursor-1",
		Records: []esdata.Record{
			{
				ID:         900,
				MapName:    "kz_hoist",
				Stage:      1,
				ModeName:   "kz_timer",
				PlayerName: "AlphaKeks",
				SteamID64:  "76561197982407566",
				Teleports:  2,
				Time:       61.23,
				ServerName: "Hikari KZ",
			},
			{
				ID:         901,
				MapName:    "kz_hoist_fix",
				ModeName:   "kz_timer",
				SteamID64:  "76561197982407566",
				ServerName: "Some Forgotten Server",
			},
		},
		Malformed: []json.RawMessage{json.RawMessage(`{"what":"is this"}`)},
	}, nil)
	source.On("Fetch", mock.Anything, "cursor-1").Return(&esdata.Payload{ScrollID: "cursor-2"}, nil)

	players.On("UpsertBatch", mock.Anything, mock.MatchedBy(func(rows []*models.Player) bool {
		return len(rows) == 1 && rows[0].ID == 22141838
	}), database.PolicyIgnore).Return(1, nil)

	// The bonus stage had no course row yet and gets one without a tier.
	maps.On("UpsertCourseBatch", mock.Anything, mock.MatchedBy(func(courses []*models.Course) bool {
		return len(courses) == 1 && courses[0].ID == 4201 && courses[0].Stage == 1 && courses[0].Tier == nil
	})).Return(1, nil)

	records.On("CreateBatch", mock.Anything, mock.MatchedBy(func(rows []*models.Record) bool {
		return len(rows) == 1 &&
			rows[0].ID == 900 &&
			rows[0].CourseID == 4201 &&
			rows[0].ServerID == 7
	})).Return(1, nil)

	service := NewService(source, players, maps, servers, records, newTestLogger(t), time.Millisecond)

	err := service.Run(context.Background())

	assert.NoError(t, err)
	testutil.VerifyAllMocks(t, source, players, maps, servers, records)
}

func TestRunDropsNegativeTime(t *testing.T) {
	source := new(MockSource)
	players := new(testutil.MockPlayerRepository)
	maps := new(testutil.MockMapRepository)
	servers := new(testutil.MockServerRepository)
	records := new(testutil.MockRecordRepository)

	maps.On("GetAll").Return([]models.Map{
		{ID: 42, Name: "kz_hoist_fix"},
	}, nil)
	servers.On("GetAll").Return([]models.Server{
		{ID: 7, Name: "Hikari KZ"},
	}, nil)

	source.On("FetchInitial", mock.Anything).Return(&esdata.Payload{
		ScrollID: "cursor-1",
		Records: []esdata.Record{
			{
				ID:         910,
				MapName:    "kz_hoist_fix",
				ModeName:   "kz_timer",
				PlayerName: "AlphaKeks",
				SteamID64:  "76561197982407566",
				Time:       61.23,
				ServerName: "Hikari KZ",
			},
			{
				ID:         911,
				MapName:    "kz_hoist_fix",
				ModeName:   "kz_timer",
				PlayerName: "AlphaKeks",
				SteamID64:  "76561197982407566",
				Time:       -61.23,
				ServerName: "Hikari KZ",
			},
		},
	}, nil)
	source.On("Fetch", mock.Anything, "cursor-1").Return(&esdata.Payload{ScrollID: "cursor-2"}, nil)

	players.On("UpsertBatch", mock.Anything, mock.Anything, database.PolicyIgnore).Return(1, nil)
	maps.On("UpsertCourseBatch", mock.Anything, mock.Anything).Return(1, nil)

	// The negative-time document never reaches the store.
	records.On("CreateBatch", mock.Anything, mock.MatchedBy(func(rows []*models.Record) bool {
		return len(rows) == 1 && rows[0].ID == 910
	})).Return(1, nil)

	service := NewService(source, players, maps, servers, records, newTestLogger(t), time.Millisecond)

	err := service.Run(context.Background())

	assert.NoError(t, err)
	testutil.VerifyAllMocks(t, source, players, maps, servers, records)
}

func TestRunTerminalOnFirstEmptyPage(t *testing.T) {
	source := new(MockSource)
	players := new(testutil.MockPlayerRepository)
	maps := new(testutil.MockMapRepository)
	servers := new(testutil.MockServerRepository)
	records := new(testutil.MockRecordRepository)

	maps.On("GetAll").Return([]models.Map{}, nil)
	servers.On("GetAll").Return([]models.Server{}, nil)
	source.On("FetchInitial", mock.Anything).Return(&esdata.Payload{ScrollID: "cursor-1"}, nil)

	service := NewService(source, players, maps, servers, records, newTestLogger(t), time.Millisecond)

	err := service.Run(context.Background())

	assert.NoError(t, err)
	source.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	records.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}
