package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"kzsync/api/handlers"
	"kzsync/api/services"
	"kzsync/api/testutil"
	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
)

func setupTestRouter() *Router {
	gin.SetMode(gin.TestMode)
	return NewRouter(gin.New())
}

func TestSetupRoutes(t *testing.T) {
	router := setupTestRouter()

	router.SetupRoutes(
		&handlers.PlayerHandler{},
		&handlers.MapHandler{},
		&handlers.ServerHandler{},
		&handlers.RecordHandler{},
	)

	routes := router.engine.Routes()
	assert.Len(t, routes, 7)
}

func TestListRecordsBindsQueryParams(t *testing.T) {
	repo := new(testutil.MockRecordRepository)

	expectedFilters := map[string]any{
		"player_id": uint32(22141838),
		"map_id":    uint16(992),
		"stage":     uint8(0),
	}
	repo.On("List", expectedFilters, 50, 0).Return([]*models.Record{
		{ID: 500, CourseID: 99200, ModeID: models.ModeKZTimer, PlayerID: 22141838, Time: 142.5, CreatedOn: time.Now()},
	}, nil)

	router := setupTestRouter()
	router.SetupRoutes(handlers.NewRecordHandler(services.NewRecordService(repo)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/records?player_id=22141838&map_id=992&stage=0&limit=50", nil)
	router.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"course_id":99200`)

	testutil.VerifyAllMocks(t, repo)
}

func TestGetPlayerNotFound(t *testing.T) {
	repo := new(testutil.MockPlayerRepository)
	repo.On("GetByID", uint32(999)).Return((*models.Player)(nil), errs.ErrNotFound)

	router := setupTestRouter()
	router.SetupRoutes(handlers.NewPlayerHandler(services.NewPlayerService(repo)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/players/999", nil)
	router.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	testutil.VerifyAllMocks(t, repo)
}

func TestGetPlayerRejectsBadID(t *testing.T) {
	router := setupTestRouter()
	router.SetupRoutes(handlers.NewPlayerHandler(services.NewPlayerService(new(testutil.MockPlayerRepository))))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/players/not-a-number", nil)
	router.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
