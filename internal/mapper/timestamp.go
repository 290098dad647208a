package mapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"

	"islandmarket/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	// ErrInvalidTimestamp is returned for values that cannot be read as an instant.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrFractionalNumber is returned when a float with a fractional part
	// targets an integer field.
	ErrFractionalNumber = errors.New("fractional number for integer field")
)

var timeType = reflect.TypeOf(time.Time{})

// ParseTimestamp resolves a backend timestamp to a concrete UTC instant.
// Accepted shapes: time.Time, bson.DateTime, bson.Timestamp, a
// {seconds, nanoseconds} map (with or without leading underscores),
// RFC3339 strings and epoch milliseconds.
func ParseTimestamp(v any) (time.Time, error) {
	switch tv := v.(type) {
	case time.Time:
		return tv.UTC(), nil
	case *time.Time:
		if tv != nil {
			return tv.UTC(), nil
		}
	case bson.DateTime:
		return tv.Time().UTC(), nil
	case bson.Timestamp:
		return time.Unix(int64(tv.T), 0).UTC(), nil
	case string:
		if t, err := time.Parse(time.RFC3339Nano, tv); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.Parse(time.RFC3339, tv); err == nil {
			return t.UTC(), nil
		}
	case map[string]any:
		return parseSecondsMap(tv)
	case bson.M:
		return parseSecondsMap(tv)
	case models.Document:
		return parseSecondsMap(tv)
	case int64, int, float64, json.Number:
		ms, ok := toInt64(tv)
		if ok {
			return time.UnixMilli(ms).UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %v (%T)", ErrInvalidTimestamp, v, v)
}

func parseSecondsMap(m map[string]any) (time.Time, error) {
	secRaw, ok := m["seconds"]
	if !ok {
		secRaw, ok = m["_seconds"]
	}
	if !ok {
		return time.Time{}, fmt.Errorf("%w: missing seconds", ErrInvalidTimestamp)
	}
	sec, ok := toInt64(secRaw)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: seconds is %T", ErrInvalidTimestamp, secRaw)
	}

	nsRaw, ok := m["nanoseconds"]
	if !ok {
		nsRaw = m["_nanoseconds"]
	}
	var ns int64
	if nsRaw != nil {
		if ns, ok = toInt64(nsRaw); !ok {
			return time.Time{}, fmt.Errorf("%w: nanoseconds is %T", ErrInvalidTimestamp, nsRaw)
		}
	}
	return time.Unix(sec, ns).UTC(), nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// timestampHook lets the decoder fill time.Time fields from any backend timestamp shape.
func timestampHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}
	return ParseTimestamp(data)
}

// wholeNumberHook rejects floats with a fractional part for integer fields
// instead of letting the decoder truncate them.
func wholeNumberHook(from, to reflect.Type, data any) (any, error) {
	if from == nil {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	switch from.Kind() {
	case reflect.Float32, reflect.Float64:
		f := reflect.ValueOf(data).Float()
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: %v", ErrFractionalNumber, data)
		}
	}
	return data, nil
}
