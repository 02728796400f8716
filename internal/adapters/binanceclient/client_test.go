package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instantTrendBot/internal/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL:        srv.URL,
		Logger:         ports.NopLogger{},
		ReconnectDelay: time.Millisecond,
		MaxAttempts:    2,
	})
	require.NoError(t, err)
	return c
}

func klineRow(openMs int64, close float64) string {
	return fmt.Sprintf(`[%d,"%.2f","%.2f","%.2f","%.2f","1000",%d,"0",10,"0","0","0"]`,
		openMs, close, close+0.1, close-0.1, close, openMs+59999)
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestClient_GetKlines(t *testing.T) {
	base := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC).UnixMilli()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/klines", r.URL.Path)
		assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		fmt.Fprintf(w, "[%s,%s]", klineRow(base, 100), klineRow(base+60000, 101))
	})

	klines, err := c.GetKlines(context.Background(), "ETHUSDT", "1m", 2)
	require.NoError(t, err)
	require.Len(t, klines, 2)

	assert.Equal(t, "ETHUSDT", klines[0].Symbol)
	assert.Equal(t, "1m", klines[0].Interval)
	assert.Equal(t, 100.0, klines[0].Open)
	assert.InDelta(t, 100.1, klines[0].High, 1e-9)
	assert.InDelta(t, 99.9, klines[0].Low, 1e-9)
	assert.Equal(t, 101.0, klines[1].Close)
	assert.True(t, klines[0].IsFinal)
	assert.Equal(t, time.UnixMilli(base).UTC(), klines[0].OpenTime)
	assert.Equal(t, time.UnixMilli(base+59999).UTC(), klines[0].CloseTime)
}

func TestClient_GetKlines_InvalidLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.GetKlines(context.Background(), "ETHUSDT", "1m", 0)
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))
}

func TestClient_GetKlinesRange_Pages(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := start.Add(2000 * time.Minute)
	var calls int32

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		from, err := strconv.ParseInt(r.URL.Query().Get("startTime"), 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Write([]byte("["))
		n := 0
		for ms := from; ms < end.UnixMilli() && n < maxKlinesPerRequest; ms += 60000 {
			if n > 0 {
				w.Write([]byte(","))
			}
			w.Write([]byte(klineRow(ms, 100)))
			n++
		}
		w.Write([]byte("]"))
	})

	klines, err := c.GetKlinesRange(context.Background(), "ETHUSDT", "1m", start, end)
	require.NoError(t, err)
	assert.Len(t, klines, 2000)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	for i := 1; i < len(klines); i++ {
		assert.True(t, klines[i].OpenTime.After(klines[i-1].OpenTime), "kline %d out of order", i)
	}
}

func TestClient_GetKlinesRange_InvalidRange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	now := time.Now()
	_, err := c.GetKlinesRange(context.Background(), "ETHUSDT", "1m", now, now)
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))
}

func TestClient_APIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		code      int
		wantErr   error
		wantCalls int32
	}{
		{name: "rate limited is retried", status: http.StatusTooManyRequests, code: -1003, wantErr: ports.ErrRateLimited, wantCalls: 2},
		{name: "bad symbol", status: http.StatusBadRequest, code: -1121, wantErr: ports.ErrInvalidRequest, wantCalls: 1},
		{name: "bad key", status: http.StatusUnauthorized, code: -2015, wantErr: ports.ErrAuthenticationFailed, wantCalls: 1},
		{name: "unmapped", status: http.StatusBadRequest, code: -4999, wantErr: ports.ErrUnknown, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				fmt.Fprintf(w, `{"code":%d,"msg":"test"}`, tt.code)
			})

			_, err := c.GetKlines(context.Background(), "ETHUSDT", "1m", 10)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestTranslateBinanceKline_Errors(t *testing.T) {
	_, err := translateBinanceKline(nil, "ETHUSDT", "1m")
	assert.Error(t, err)

	_, err = translateBinanceKline(&futures.Kline{Open: "x", High: "1", Low: "1", Close: "1", Volume: "1"}, "ETHUSDT", "1m")
	assert.ErrorContains(t, err, "open price")
}
