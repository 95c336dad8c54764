package testutil

import (
	"testing"

	"github.com/stretchr/testify/mock"

	"kzsync/api/dto"
	"kzsync/pkg/database/models"
)

// VerifyAllMocks asserts the expectations of all given mocks.
func VerifyAllMocks(t *testing.T, mocks ...any) {
	t.Helper()

	for _, m := range mocks {
		if mockObj, ok := m.(interface{ AssertExpectations(*testing.T) bool }); ok {
			mockObj.AssertExpectations(t)
		}
	}
}

// Player read repository mock.
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) List(filters map[string]any, limit int, offset int) ([]*models.Player, error) {
	args := m.Called(filters, limit, offset)
	return args.Get(0).([]*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetByID(id uint32) (*models.Player, error) {
	args := m.Called(id)
	return args.Get(0).(*models.Player), args.Error(1)
}

// Map read repository mock.
type MockMapRepository struct {
	mock.Mock
}

func (m *MockMapRepository) List(filters map[string]any, limit int, offset int) ([]*models.Map, error) {
	args := m.Called(filters, limit, offset)
	return args.Get(0).([]*models.Map), args.Error(1)
}

func (m *MockMapRepository) GetByID(id uint16) (*dto.MapDetail, error) {
	args := m.Called(id)
	return args.Get(0).(*dto.MapDetail), args.Error(1)
}

// Server read repository mock.
type MockServerRepository struct {
	mock.Mock
}

func (m *MockServerRepository) List(filters map[string]any, limit int, offset int) ([]*models.Server, error) {
	args := m.Called(filters, limit, offset)
	return args.Get(0).([]*models.Server), args.Error(1)
}

func (m *MockServerRepository) GetByID(id uint16) (*models.Server, error) {
	args := m.Called(id)
	return args.Get(0).(*models.Server), args.Error(1)
}

// Record read repository mock.
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) List(filters map[string]any, limit int, offset int) ([]*models.Record, error) {
	args := m.Called(filters, limit, offset)
	return args.Get(0).([]*models.Record), args.Error(1)
}
