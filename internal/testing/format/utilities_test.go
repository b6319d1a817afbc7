package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 250 * time.Microsecond, want: "250µs"},
		{in: 42 * time.Millisecond, want: "42ms"},
		{in: 1500 * time.Millisecond, want: "1.5s"},
		{in: 90 * time.Second, want: "1.5m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(tt.in))
	}
}

func TestCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0 rows", Count(0, "row", "rows"))
	assert.Equal(t, "1 row", Count(1, "row", "rows"))
	assert.Equal(t, "7 rows", Count(7, "row", "rows"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo w...", Truncate("héllo wörld!", 10))
}

func TestPercent(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, Percent(3, 0), 0.001)
	assert.InDelta(t, 75.0, Percent(3, 4), 0.001)
}
