package records

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kzsync/pkg/config"
	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
	"kzsync/pkg/kztime"
	"kzsync/pkg/logger"
	"kzsync/scraper/data/globalapi"
	"kzsync/scraper/data/kzgo"
	"kzsync/scraper/resolver"
	"kzsync/scraper/testutil"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.CreateLogger(config.BucketConfig{})
	require.NoError(t, err)

	return log
}

// Feed the driver a record whose map and server are unknown locally and
// whose player is known but banned: one new map with its courses, one new
// server with its owner resolved transitively, the ban flag cleared, one
// record row, and the cursor advancing.
func TestProcessOneEndToEnd(t *testing.T) {
	players := new(testutil.MockPlayerRepository)
	maps := new(testutil.MockMapRepository)
	servers := new(testutil.MockServerRepository)
	recordsRepo := new(testutil.MockRecordRepository)
	global := new(testutil.MockGlobalAPI)
	meta := new(testutil.MockMapMetadata)

	created := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	global.On("GetRecord", mock.Anything, uint32(500)).Return(&globalapi.Record{
		ID:         500,
		SteamID64:  "76561197982407566",
		PlayerName: "AlphaKeks",
		ServerID:   101,
		MapID:      992,
		Stage:      0,
		ModeName:   "kz_timer",
		Time:       184.39,
		Teleports:  3,
		CreatedOn:  kztime.Time{Time: created},
	}, nil)

	// The map is missing locally and gets merged from both providers.
	maps.On("GetByID", uint16(992)).Return((*models.Map)(nil), nil).Once()
	global.On("GetMaps", mock.Anything).Return([]globalapi.Map{
		{ID: 992, Name: "kz_lionharder", Validated: true, Filesize: 62762033},
	}, nil)
	meta.On("GetMaps", mock.Anything).Return([]kzgo.Map{
		{ID: 992, Name: "kz_lionharder", Tier: 7, Bonuses: 2},
	}, nil)
	maps.On("InsertWithCourses", mock.Anything, mock.MatchedBy(func(courses []*models.Course) bool {
		return len(courses) == 3 && courses[0].ID == 99200
	})).Return(nil)
	maps.On("GetByID", uint16(992)).Return(&models.Map{ID: 992, Name: "kz_lionharder"}, nil).Once()
	maps.On("CourseExists", uint32(99200)).Return(true, nil)

	// The server is missing and its owner player doesn't exist either.
	servers.On("GetByID", uint16(101)).Return((*models.Server)(nil), nil).Once()
	global.On("GetServer", mock.Anything, uint16(101)).Return(&globalapi.Server{
		ID:             101,
		Name:           "Hikari KZ",
		OwnerSteamID64: "76561197961358245",
	}, nil)
	players.On("GetByID", uint32(1092517)).Return((*models.Player)(nil), nil).Once()
	global.On("GetPlayerByCommunityID", mock.Anything, uint32(1092517)).Return(&globalapi.Player{
		SteamID64: "76561197961358245",
		Name:      "ServerOwner",
	}, nil)
	players.On("CreateIgnore", mock.Anything).Return(nil)
	players.On("GetByID", uint32(1092517)).Return(&models.Player{ID: 1092517, Name: "ServerOwner"}, nil).Once()
	servers.On("CreateIgnore", mock.MatchedBy(func(s *models.Server) bool {
		return s.ID == 101 && s.OwnedBy == 1092517
	})).Return(nil)
	servers.On("GetByID", uint16(101)).Return(&models.Server{ID: 101, OwnedBy: 1092517}, nil).Once()

	// The submitting player exists but is banned: proof of life unbans him.
	players.On("GetByID", uint32(22141838)).Return(&models.Player{
		ID: 22141838, Name: "OldName", IsBanned: true,
	}, nil).Once()
	players.On("SetActive", uint32(22141838), "AlphaKeks").Return(nil)

	recordsRepo.On("Create", mock.MatchedBy(func(r *models.Record) bool {
		return r.ID == 500 &&
			r.CourseID == 99200 &&
			r.ModeID == models.ModeKZTimer &&
			r.PlayerID == 22141838 &&
			r.ServerID == 101 &&
			r.Teleports == 3
	})).Return(nil)

	res := resolver.NewEntityResolver(players, maps, servers, global, meta)
	service := NewService(global, res, recordsRepo, newTestLogger(t), time.Millisecond)

	advance, err := service.ProcessOne(context.Background(), 500)

	assert.NoError(t, err)
	assert.True(t, advance)
	testutil.VerifyAllMocks(t, players, maps, servers, recordsRepo, global, meta)
}

func TestProcessOneRetriesOnUnavailable(t *testing.T) {
	global := new(testutil.MockGlobalAPI)
	recordsRepo := new(testutil.MockRecordRepository)

	global.On("GetRecord", mock.Anything, uint32(500)).
		Return((*globalapi.Record)(nil), fmt.Errorf("%w: status 502", errs.ErrUnavailable))

	service := NewService(global, nil, recordsRepo, newTestLogger(t), time.Millisecond)

	advance, err := service.ProcessOne(context.Background(), 500)

	assert.NoError(t, err)
	assert.False(t, advance)
}

func TestProcessOneRetriesOnMissingRecord(t *testing.T) {
	global := new(testutil.MockGlobalAPI)
	recordsRepo := new(testutil.MockRecordRepository)

	global.On("GetRecord", mock.Anything, uint32(500)).
		Return((*globalapi.Record)(nil), fmt.Errorf("%w: record 500", errs.ErrNotFound))

	service := NewService(global, nil, recordsRepo, newTestLogger(t), time.Millisecond)

	// A record that doesn't exist yet is just the head of the stream.
	advance, err := service.ProcessOne(context.Background(), 500)

	assert.NoError(t, err)
	assert.False(t, advance)
}

func TestProcessOneSkipsUnknownMode(t *testing.T) {
	global := new(testutil.MockGlobalAPI)
	recordsRepo := new(testutil.MockRecordRepository)

	global.On("GetRecord", mock.Anything, uint32(600)).Return(&globalapi.Record{
		ID:       600,
		ModeName: "kz_unknown",
	}, nil)

	service := NewService(global, nil, recordsRepo, newTestLogger(t), time.Millisecond)

	advance, err := service.ProcessOne(context.Background(), 600)

	assert.NoError(t, err)
	assert.True(t, advance)
	recordsRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProcessOneSkipsNegativeTime(t *testing.T) {
	global := new(testutil.MockGlobalAPI)
	recordsRepo := new(testutil.MockRecordRepository)

	global.On("GetRecord", mock.Anything, uint32(601)).Return(&globalapi.Record{
		ID:       601,
		ModeName: "kz_timer",
		Time:     -3.25,
	}, nil)

	service := NewService(global, nil, recordsRepo, newTestLogger(t), time.Millisecond)

	// A run time below zero cannot be stored; the record is skipped and the
	// cursor advances instead of the insert failing.
	advance, err := service.ProcessOne(context.Background(), 601)

	assert.NoError(t, err)
	assert.True(t, advance)
	recordsRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProcessOneFatalOnUnexpectedError(t *testing.T) {
	global := new(testutil.MockGlobalAPI)
	recordsRepo := new(testutil.MockRecordRepository)

	global.On("GetRecord", mock.Anything, uint32(500)).
		Return((*globalapi.Record)(nil), errors.New("API returned status code 429"))

	service := NewService(global, nil, recordsRepo, newTestLogger(t), time.Millisecond)

	_, err := service.ProcessOne(context.Background(), 500)

	assert.Error(t, err)
}

func TestRunBootstrapsFromMaxID(t *testing.T) {
	global := new(testutil.MockGlobalAPI)
	recordsRepo := new(testutil.MockRecordRepository)

	recordsRepo.On("MaxID").Return(uint32(499), nil)
	global.On("GetRecord", mock.Anything, uint32(500)).
		Return((*globalapi.Record)(nil), fmt.Errorf("%w: record 500", errs.ErrNotFound))

	service := NewService(global, nil, recordsRepo, newTestLogger(t), time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	err := service.Run(ctx, 0)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// The cursor never advanced past the missing head record.
	global.AssertNotCalled(t, "GetRecord", mock.Anything, uint32(501))
}
