package steamid

import (
	"fmt"
	"strconv"
	"strings"

	"kzsync/pkg/errs"
)

// Offset between a 64 bit steam id and the 32 bit community id.
const communityIDOffset uint64 = 76561197960265728

// CommunityID converts a 64 bit steam id into the 32 bit community id the
// store keys players by. The narrowing is checked: a value outside the
// community range is corrupt data, not something to truncate.
func CommunityID(steamID64 uint64) (uint32, error) {
	if steamID64 < communityIDOffset {
		return 0, &errs.RangeError{Field: "steamid64", Value: int64(steamID64), Max: 0}
	}

	return errs.NarrowUint32("steamid64", int64(steamID64-communityIDOffset))
}

// ParseID64 parses the decimal string form both upstream APIs use for the
// 64 bit id and converts it to the community id.
func ParseID64(id string) (uint32, error) {
	parsed, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid steamid64 %q: %w", id, err)
	}

	return CommunityID(parsed)
}

// ParseLegacy parses the textual "STEAM_X:Y:Z" form found in older dumps.
func ParseLegacy(id string) (uint32, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "STEAM_") {
		return 0, fmt.Errorf("invalid steam id %q", id)
	}

	y, err := strconv.ParseUint(parts[1], 10, 1)
	if err != nil {
		return 0, fmt.Errorf("invalid steam id %q: %w", id, err)
	}

	z, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid steam id %q: %w", id, err)
	}

	return errs.NarrowUint32("steam_id", int64(z*2+y))
}
