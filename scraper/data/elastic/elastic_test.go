package elastic

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const richDoc = `{
	"id": 101,
	"map_name": "kz_lionharder",
	"stage": 0,
	"mode": "kz_timer",
	"player_name": "player one",
	"steamid64": "76561197982407566",
	"teleports": 12,
	"time": 512.73,
	"server": {"id": 7, "name": "House of Climb"},
	"created_on": "2018-01-02T15:04:05"
}`

const flatDoc = `{
	"id": 102,
	"map_name": "kz_synergy_x",
	"stage": 2,
	"mode": "kz_simple",
	"player_name": "player two",
	"steamid64": "76561197982407566",
	"teleports": 0,
	"time": 81.02,
	"server_name": "House of Climb",
	"created_on": "2019-06-01T10:00:00"
}`

func TestParseDocumentRicherShapeFirst(t *testing.T) {
	record, ok := ParseDocument(json.RawMessage(richDoc))
	require.True(t, ok)

	assert.Equal(t, uint32(101), record.ID)
	assert.Equal(t, "House of Climb", record.ServerName)
	assert.Equal(t, "kz_timer", record.ModeName)
	assert.Equal(t, uint8(0), record.Stage)
}

func TestParseDocumentFlatterShapeFallback(t *testing.T) {
	record, ok := ParseDocument(json.RawMessage(flatDoc))
	require.True(t, ok)

	assert.Equal(t, uint32(102), record.ID)
	assert.Equal(t, "House of Climb", record.ServerName)
	assert.Equal(t, uint8(2), record.Stage)
}

func TestParseDocumentMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "noServerAtAll", doc: `{"id": 103, "map_name": "kz_x", "mode": "kz_timer", "steamid64": "76561197982407566"}`},
		{name: "unknownMode", doc: strings.Replace(flatDoc, "kz_simple", "kz_unknown", 1)},
		{name: "missingMapName", doc: strings.Replace(flatDoc, `"map_name": "kz_synergy_x",`, "", 1)},
		{name: "notAnObject", doc: `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseDocument(json.RawMessage(tt.doc))
			assert.False(t, ok)
		})
	}
}

// A page mixing valid and malformed documents keeps both streams and never
// drops the cursor.
func TestDecodePageMalformedIsolation(t *testing.T) {
	hits := make([]string, 0, 10)
	for i := 0; i < 7; i++ {
		hits = append(hits, strings.Replace(richDoc, `"id": 101`, `"id": 20`+string(rune('0'+i)), 1))
	}
	for i := 0; i < 3; i++ {
		hits = append(hits, `{"broken": true}`)
	}

	body := `{"_scroll_id": "cursor-2", "hits": {"hits": [`
	for i, hit := range hits {
		if i > 0 {
			body += ","
		}
		body += `{"_source": ` + hit + `}`
	}
	body += `]}}`

	payload, err := decodePage(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, "cursor-2", payload.ScrollID)
	assert.Len(t, payload.Records, 7)
	assert.Len(t, payload.Malformed, 3)
	assert.False(t, payload.Done())
}

func TestPayloadDone(t *testing.T) {
	payload, err := decodePage(strings.NewReader(`{"_scroll_id": "end", "hits": {"hits": []}}`))
	require.NoError(t, err)
	assert.True(t, payload.Done())
}
