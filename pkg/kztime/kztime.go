package kztime

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the timestamp format both upstream APIs use.
const Layout = "2006-01-02T15:04:05"

// Time wraps time.Time to parse the upstream timestamp format, which has no
// timezone suffix and is always UTC.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(Layout, raw)
	if err != nil {
		return fmt.Errorf("couldn't parse timestamp %q: %w", raw, err)
	}

	t.Time = parsed.UTC()
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time.UTC().Format(Layout) + `"`), nil
}
