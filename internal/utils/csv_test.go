package utils

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instantTrendBot/internal/domain"
)

func TestKlinesCSV_WriteThenRead(t *testing.T) {
	open := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	klines := []*domain.Kline{
		{OpenTime: open, CloseTime: open.Add(time.Minute), Symbol: "SPY", Interval: "1m", Open: 125.9, High: 126.1, Low: 125.8, Close: 125.99, Volume: 1200},
		{OpenTime: open.Add(time.Minute), CloseTime: open.Add(2 * time.Minute), Symbol: "SPY", Interval: "1m", Open: 125.99, High: 126, Low: 125.85, Close: 125.91, Volume: 800},
	}

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, WriteKlinesToCSV(klines, path))

	got, err := ReadKlinesFromCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range klines {
		assert.True(t, klines[i].OpenTime.Equal(got[i].OpenTime))
		assert.True(t, klines[i].CloseTime.Equal(got[i].CloseTime))
		assert.Equal(t, klines[i].Close, got[i].Close)
		assert.Equal(t, klines[i].Symbol, got[i].Symbol)
		assert.True(t, got[i].IsFinal)
	}
}

func TestParseKlinesCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{
			name:  "minimal columns in any order",
			input: "close,open,high,low,open_time\n10.5,10,11,9.5,2024-03-01T15:55:00-05:00\n",
			want:  1,
		},
		{
			name:    "missing close column",
			input:   "open_time,open,high,low\n2024-03-01T15:55:00Z,1,2,0.5\n",
			wantErr: "missing column",
		},
		{
			name:    "bad number",
			input:   "open_time,open,high,low,close\n2024-03-01T15:55:00Z,1,x,0.5,1\n",
			wantErr: "line 2",
		},
		{
			name:    "bad time",
			input:   "open_time,open,high,low,close\nyesterday,1,2,0.5,1\n",
			wantErr: "open_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKlinesCSV(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestRoundBank(t *testing.T) {
	assert.Equal(t, 10.02, RoundBank(10.025, 2))
	assert.Equal(t, 10.08, RoundBank(10.085, 2))
	assert.Equal(t, 44.44, RoundBank(400.0/9.0, 2))
	assert.Equal(t, 37.5, RoundBank(37.5, 2))
	assert.Equal(t, 62.5, RoundBank(62.5, 2))
}
