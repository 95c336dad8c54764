package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"kzsync/pkg/database"
	"kzsync/pkg/database/models"
	"kzsync/scraper/data/globalapi"
	"kzsync/scraper/data/kzgo"
)

// Assert the expectations of all mocks.
func VerifyAllMocks(t *testing.T, mocks ...any) {
	t.Helper()

	for _, m := range mocks {
		if mockObj, ok := m.(interface{ AssertExpectations(*testing.T) bool }); ok {
			mockObj.AssertExpectations(t)
		}
	}
}

// ============================================================================
// Repository mocks.
// ============================================================================

type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) GetByID(id uint32) (*models.Player, error) {
	args := m.Called(id)
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByName(name string) (*models.Player, error) {
	args := m.Called(name)
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) CreateIgnore(player *models.Player) error {
	args := m.Called(player)
	return args.Error(0)
}

func (m *MockPlayerRepository) SetActive(id uint32, name string) error {
	args := m.Called(id, name)
	return args.Error(0)
}

func (m *MockPlayerRepository) UpsertBatch(ctx context.Context, players []*models.Player, policy database.ConflictPolicy) (int, error) {
	args := m.Called(ctx, players, policy)
	return args.Int(0), args.Error(1)
}

type MockMapRepository struct {
	mock.Mock
}

func (m *MockMapRepository) GetByID(id uint16) (*models.Map, error) {
	args := m.Called(id)
	return args.Get(0).(*models.Map), args.Error(1)
}

func (m *MockMapRepository) GetByName(name string) (*models.Map, error) {
	args := m.Called(name)
	return args.Get(0).(*models.Map), args.Error(1)
}

func (m *MockMapRepository) GetAll() ([]models.Map, error) {
	args := m.Called()
	return args.Get(0).([]models.Map), args.Error(1)
}

func (m *MockMapRepository) CourseExists(id uint32) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockMapRepository) InsertWithCourses(mp *models.Map, courses []*models.Course) error {
	args := m.Called(mp, courses)
	return args.Error(0)
}

func (m *MockMapRepository) UpsertBatch(ctx context.Context, maps []*models.Map, policy database.ConflictPolicy) (int, error) {
	args := m.Called(ctx, maps, policy)
	return args.Int(0), args.Error(1)
}

func (m *MockMapRepository) UpsertCourseBatch(ctx context.Context, courses []*models.Course) (int, error) {
	args := m.Called(ctx, courses)
	return args.Int(0), args.Error(1)
}

type MockServerRepository struct {
	mock.Mock
}

func (m *MockServerRepository) GetByID(id uint16) (*models.Server, error) {
	args := m.Called(id)
	return args.Get(0).(*models.Server), args.Error(1)
}

func (m *MockServerRepository) GetByName(name string) (*models.Server, error) {
	args := m.Called(name)
	return args.Get(0).(*models.Server), args.Error(1)
}

func (m *MockServerRepository) GetAll() ([]models.Server, error) {
	args := m.Called()
	return args.Get(0).([]models.Server), args.Error(1)
}

func (m *MockServerRepository) CreateIgnore(server *models.Server) error {
	args := m.Called(server)
	return args.Error(0)
}

func (m *MockServerRepository) UpsertBatch(ctx context.Context, servers []*models.Server, policy database.ConflictPolicy) (int, error) {
	args := m.Called(ctx, servers, policy)
	return args.Int(0), args.Error(1)
}

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) MaxID() (uint32, error) {
	args := m.Called()
	return args.Get(0).(uint32), args.Error(1)
}

func (m *MockRecordRepository) Create(record *models.Record) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockRecordRepository) CreateBatch(ctx context.Context, records []*models.Record) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

type MockMapperRepository struct {
	mock.Mock
}

func (m *MockMapperRepository) UpsertBatch(ctx context.Context, mappers []*models.Mapper) (int, error) {
	args := m.Called(ctx, mappers)
	return args.Int(0), args.Error(1)
}

type MockFilterRepository struct {
	mock.Mock
}

func (m *MockFilterRepository) UpsertBatch(ctx context.Context, filters []*models.Filter) (int, error) {
	args := m.Called(ctx, filters)
	return args.Int(0), args.Error(1)
}

// ============================================================================
// Upstream client mocks.
// ============================================================================

type MockGlobalAPI struct {
	mock.Mock
}

func (m *MockGlobalAPI) GetRecord(ctx context.Context, id uint32) (*globalapi.Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*globalapi.Record), args.Error(1)
}

func (m *MockGlobalAPI) GetPlayers(ctx context.Context, offset int, limit int) ([]globalapi.Player, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]globalapi.Player), args.Error(1)
}

func (m *MockGlobalAPI) GetPlayerByCommunityID(ctx context.Context, id uint32) (*globalapi.Player, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*globalapi.Player), args.Error(1)
}

func (m *MockGlobalAPI) GetPlayerByName(ctx context.Context, name string) (*globalapi.Player, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(*globalapi.Player), args.Error(1)
}

func (m *MockGlobalAPI) GetServers(ctx context.Context, offset int, limit int) ([]globalapi.Server, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]globalapi.Server), args.Error(1)
}

func (m *MockGlobalAPI) GetServer(ctx context.Context, id uint16) (*globalapi.Server, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*globalapi.Server), args.Error(1)
}

func (m *MockGlobalAPI) GetServerByName(ctx context.Context, name string) (*globalapi.Server, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(*globalapi.Server), args.Error(1)
}

func (m *MockGlobalAPI) GetMaps(ctx context.Context) ([]globalapi.Map, error) {
	args := m.Called(ctx)
	return args.Get(0).([]globalapi.Map), args.Error(1)
}

type MockMapMetadata struct {
	mock.Mock
}

func (m *MockMapMetadata) GetMaps(ctx context.Context) ([]kzgo.Map, error) {
	args := m.Called(ctx)
	return args.Get(0).([]kzgo.Map), args.Error(1)
}
