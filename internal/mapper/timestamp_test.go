package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	local := want.In(time.FixedZone("KST", 9*60*60))

	tests := []struct {
		name  string
		value any
	}{
		{"time", local},
		{"time pointer", &local},
		{"bson datetime", bson.NewDateTimeFromTime(want)},
		{"bson timestamp", bson.Timestamp{T: uint32(want.Unix())}},
		{"seconds map", map[string]any{"seconds": want.Unix(), "nanoseconds": 0}},
		{"underscore seconds map", map[string]any{"_seconds": float64(want.Unix()), "_nanoseconds": float64(0)}},
		{"seconds map without nanos", bson.M{"seconds": want.Unix()}},
		{"rfc3339", "2024-05-01T21:30:00+09:00"},
		{"rfc3339 nano", "2024-05-01T12:30:00.000000000Z"},
		{"epoch millis", want.UnixMilli()},
		{"epoch millis float", float64(want.UnixMilli())},
		{"epoch millis json number", json.Number("1714566600000")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.value)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, v := range []any{nil, "yesterday", true, map[string]any{"nanoseconds": 1}, map[string]any{"seconds": "1"}} {
		_, err := ParseTimestamp(v)
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	}
}
