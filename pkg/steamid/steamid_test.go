package steamid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kzsync/pkg/errs"
)

func TestCommunityID(t *testing.T) {
	id, err := CommunityID(76561197982407566)
	assert.NoError(t, err)
	assert.Equal(t, uint32(22141838), id)
}

func TestCommunityIDBelowOffset(t *testing.T) {
	_, err := CommunityID(12345)
	assert.Error(t, err)
	assert.True(t, errs.IsRange(err))
}

func TestParseID64(t *testing.T) {
	id, err := ParseID64("76561197982407566")
	assert.NoError(t, err)
	assert.Equal(t, uint32(22141838), id)

	_, err = ParseID64("not-a-number")
	assert.Error(t, err)
}

func TestParseLegacy(t *testing.T) {
	// STEAM_1:0:11070919 -> community id 22141838.
	id, err := ParseLegacy("STEAM_1:0:11070919")
	assert.NoError(t, err)
	assert.Equal(t, uint32(22141838), id)

	_, err = ParseLegacy("garbage")
	assert.Error(t, err)
}
