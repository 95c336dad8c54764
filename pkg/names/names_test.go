package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	idx := NewIndex([]Entry{
		{ID: 1, Name: "kz_hoist_fix"},
		{ID: 2, Name: "kz_lionharder"},
		{ID: 3, Name: "kz_lionheart"},
		{ID: 4, Name: "kz_cybersand"},
	})

	tests := []struct {
		name   string
		lookup string
		wantID uint32
		wantOK bool
	}{
		{
			name:   "exactMatch",
			lookup: "kz_lionharder",
			wantID: 2,
			wantOK: true,
		},
		{
			name: "historicalAlias",
			// The renamed map resolves through the alias table.
			lookup: "kz_hoist",
			wantID: 1,
			wantOK: true,
		},
		{
			name:   "aliasedRename",
			lookup: "kz_cyberspace_fix",
			wantID: 4,
			wantOK: true,
		},
		{
			name: "substringFirstMatchWins",
			// "kz_lion" is a substring of both 2 and 3; the first entry
			// in row order wins, no scoring.
			lookup: "kz_lion",
			wantID: 2,
			wantOK: true,
		},
		{
			name:   "containmentEitherDirection",
			lookup: "kz_lionharder_final",
			wantID: 2,
			wantOK: true,
		},
		{
			name:   "noMatch",
			lookup: "bkz_goldbhop",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := idx.Lookup(tt.lookup)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestExactBeatsSubstring(t *testing.T) {
	idx := NewIndex([]Entry{
		{ID: 1, Name: "kz_gus_sct2_longer"},
		{ID: 2, Name: "kz_gus_sct2"},
	})

	// Entry 1 contains the canonical name and comes first, but the exact
	// match on entry 2 takes priority.
	id, ok := idx.Lookup("kz_gus")
	assert.True(t, ok)
	assert.Equal(t, uint32(2), id)
}
