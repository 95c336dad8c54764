package globalapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kzsync/pkg/errs"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(server.URL)
}

func TestGetRecord(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/records/500", r.URL.Path)
		w.Write([]byte(`{
			"id": 500,
			"steamid64": "76561197982407566",
			"player_name": "runner",
			"server_id": 12,
			"map_id": 992,
			"map_name": "kz_lionharder",
			"stage": 0,
			"mode": "kz_timer",
			"time": 1337.42,
			"teleports": 3,
			"created_on": "2023-03-01T12:30:00"
		}`))
	})

	record, err := client.GetRecord(context.Background(), 500)
	require.NoError(t, err)

	assert.Equal(t, uint32(500), record.ID)
	assert.Equal(t, int64(992), record.MapID)
	assert.Equal(t, "kz_timer", record.ModeName)
	assert.Equal(t, int64(3), record.Teleports)
	assert.Equal(t, 2023, record.CreatedOn.Year())
}

func TestGetRecordErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantErr   error
		wantOther bool
	}{
		{name: "notFound", status: http.StatusNotFound, wantErr: errs.ErrNotFound},
		{name: "serverError", status: http.StatusInternalServerError, wantErr: errs.ErrUnavailable},
		{name: "badGateway", status: http.StatusBadGateway, wantErr: errs.ErrUnavailable},
		{name: "tooManyRequestsIsHardFailure", status: http.StatusTooManyRequests, wantOther: true},
		{name: "serviceUnavailableIsHardFailure", status: http.StatusServiceUnavailable, wantOther: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.GetRecord(context.Background(), 1)
			require.Error(t, err)

			if tt.wantOther {
				assert.NotErrorIs(t, err, errs.ErrNotFound)
				assert.NotErrorIs(t, err, errs.ErrUnavailable)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetRecordConnectionFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(server.URL)
	server.Close()

	_, err := client.GetRecord(context.Background(), 1)
	assert.ErrorIs(t, err, errs.ErrUnavailable)
}

func TestGetPlayersExhaustion(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5000", r.URL.Query().Get("offset"))
		w.Write([]byte(`[]`))
	})

	players, err := client.GetPlayers(context.Background(), 5000, 500)
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestGetPlayerByNameEscapesQuery(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a & b #1", r.URL.Query().Get("name"))
		w.Write([]byte(`[{"steamid64": "76561197982407566", "name": "a & b #1"}]`))
	})

	player, err := client.GetPlayerByName(context.Background(), "a & b #1")
	require.NoError(t, err)
	assert.Equal(t, "a & b #1", player.Name)
}

func TestGetServerByNameEscapesPath(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/servers/name/Hikari KZ #2", r.URL.Path)
		w.Write([]byte(`{"id": 7, "name": "Hikari KZ #2", "owner_steamid64": "76561197976783102"}`))
	})

	server, err := client.GetServerByName(context.Background(), "Hikari KZ #2")
	require.NoError(t, err)
	assert.Equal(t, int64(7), server.ID)
}

func TestGetRecordMalformedBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := client.GetRecord(context.Background(), 1)
	assert.ErrorIs(t, err, errs.ErrMalformed)
}
