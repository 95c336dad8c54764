package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the upstream clients, the resolver and the drivers.
var (
	// ErrNotFound means the entity is absent both locally and upstream.
	ErrNotFound = errors.New("entity not found")

	// ErrUnavailable means the upstream responded with a transient failure (5xx / connection error).
	// The caller is expected to retry the same unit of work after the poll delay.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrMalformed means the payload was present but failed schema validation.
	// Never retried; the cursor still advances.
	ErrMalformed = errors.New("malformed upstream payload")
)

// RangeError is returned when a numeric value doesn't fit the destination column.
// It signals data corruption and is fatal for the row that produced it.
type RangeError struct {
	Field string
	Value int64
	Max   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %d for %s exceeds the destination range (max %d)", e.Value, e.Field, e.Max)
}

// IsRange reports whether err is (or wraps) a RangeError.
func IsRange(err error) bool {
	var rangeErr *RangeError
	return errors.As(err, &rangeErr)
}

// NarrowUint16 checks that a 64 bit upstream value fits into a 16 bit column.
func NarrowUint16(field string, value int64) (uint16, error) {
	if value < 0 || value > 65535 {
		return 0, &RangeError{Field: field, Value: value, Max: 65535}
	}
	return uint16(value), nil
}

// NarrowUint32 checks that a 64 bit upstream value fits into a 32 bit column.
func NarrowUint32(field string, value int64) (uint32, error) {
	if value < 0 || value > 4294967295 {
		return 0, &RangeError{Field: field, Value: value, Max: 4294967295}
	}
	return uint32(value), nil
}

// NarrowUint8 checks that a value fits into a single byte column.
func NarrowUint8(field string, value int64) (uint8, error) {
	if value < 0 || value > 255 {
		return 0, &RangeError{Field: field, Value: value, Max: 255}
	}
	return uint8(value), nil
}
