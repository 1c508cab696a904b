package trx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{
			name:     "zero",
			d:        0,
			expected: "00:00:00.0000000",
		},
		{
			name:     "single tick",
			d:        100 * time.Nanosecond,
			expected: "00:00:00.0000001",
		},
		{
			name:     "sub-tick truncates",
			d:        99 * time.Nanosecond,
			expected: "00:00:00.0000000",
		},
		{
			name:     "one hour one minute one second one tick",
			d:        3_661_000_000_100 * time.Nanosecond,
			expected: "01:01:01.0000001",
		},
		{
			name:     "half second",
			d:        500 * time.Millisecond,
			expected: "00:00:00.5000000",
		},
		{
			name:     "hours not capped at 24",
			d:        25 * time.Hour,
			expected: "25:00:00.0000000",
		},
		{
			name:     "multi day elapsed range",
			d:        100*time.Hour + 30*time.Minute,
			expected: "100:30:00.0000000",
		},
		{
			name:     "negative clamps to zero",
			d:        -time.Second,
			expected: "00:00:00.0000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.d))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 34, 56, 123_456_700, time.UTC)
	assert.Equal(t, "2024-03-01T12:34:56.1234567Z", FormatTimestamp(ts))
}
