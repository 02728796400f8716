package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionWindow_Contains(t *testing.T) {
	window := SessionWindow{Start: 15*time.Hour + 55*time.Minute, End: 16 * time.Hour, Location: eastern}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "start", at: time.Date(2024, 3, 4, 15, 55, 0, 0, eastern), want: true},
		{name: "end", at: time.Date(2024, 3, 4, 16, 0, 0, 0, eastern), want: true},
		{name: "end with seconds", at: time.Date(2024, 3, 4, 16, 0, 30, 0, eastern), want: true},
		{name: "before", at: time.Date(2024, 3, 4, 15, 54, 59, 0, eastern), want: false},
		{name: "after", at: time.Date(2024, 3, 4, 16, 1, 0, 0, eastern), want: false},
		{name: "utc converted", at: time.Date(2024, 3, 4, 20, 57, 0, 0, time.UTC), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, window.Contains(tt.at))
		})
	}
}

func TestSessionWindow_NilLocationUsesTimestampZone(t *testing.T) {
	window := SessionWindow{Start: 9 * time.Hour, End: 9*time.Hour + 30*time.Minute}
	assert.True(t, window.Contains(time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC)))
	assert.True(t, window.Contains(time.Date(2024, 3, 4, 9, 15, 0, 0, eastern)))
	assert.Equal(t, "09:00-09:30 local", window.String())
}

func TestDefaultLiquidationWindow(t *testing.T) {
	window := DefaultLiquidationWindow()
	require.NotNil(t, window.Location)
	assert.Equal(t, "America/New_York", window.Location.String())
	assert.NoError(t, window.Validate())
	// 20:56 UTC is 15:56 EST in winter and 16:56 EDT in summer.
	assert.True(t, window.Contains(time.Date(2024, 1, 10, 20, 56, 0, 0, time.UTC)))
	assert.False(t, window.Contains(time.Date(2024, 7, 10, 20, 56, 0, 0, time.UTC)))
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("15:55")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Hour+55*time.Minute, d)

	d, err = ParseClock(" 09:05 ")
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+5*time.Minute, d)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = ParseClock("noon")
	assert.Error(t, err)
}

func TestTrendHistory(t *testing.T) {
	h := newTrendHistory(3)
	assert.False(t, h.Ready())
	assert.Panics(t, func() { h.At(0) })

	for _, v := range []float64{1, 2, 3, 4, 5} {
		h.Add(v)
		assert.LessOrEqual(t, h.Len(), h.Cap())
	}
	assert.True(t, h.Ready())
	assert.Equal(t, 5.0, h.At(0))
	assert.Equal(t, 4.0, h.At(1))
	assert.Equal(t, 3.0, h.At(2))
	assert.Panics(t, func() { h.At(3) })
}
