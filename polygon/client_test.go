package polygon

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key")
	c.baseURL = srv.URL
	return c
}

func TestIsOpen(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/marketstatus/now", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"market":"open"}`))
	})

	open, err := c.IsOpen(context.Background())
	require.NoError(t, err)
	assert.True(t, open)
}

func TestEndOfDay(t *testing.T) {
	closeTime := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC).UnixMilli()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/aggs/ticker/SPY/prev":
			fmt.Fprintf(w, `{"results":[{"T":"SPY","c":560.5,"t":%d}]}`, closeTime)
		case "/v2/aggs/grouped/locale/us/market/stocks/2026-08-28":
			w.Write([]byte(`{"results":[{"T":"AAPL","c":187.5},{"T":"MSFT","c":250.25}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	snap, err := c.EndOfDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 187.5, snap["AAPL"])
	assert.Equal(t, 250.25, snap["MSFT"])
}

func TestIntraday(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/snapshot/locale/us/markets/stocks/tickers/AAPL", r.URL.Path)
		w.Write([]byte(`{"ticker":{"min":{"c":187.5}}}`))
	})

	price, err := c.Intraday(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 187.5, price)
}

func TestErrorStatusSurfaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.Intraday(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
