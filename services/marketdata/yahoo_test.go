package marketdata

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

func chartPayload(timestamps []int64, closes []string) string {
	ts := ""
	cl := ""
	for i := range timestamps {
		if i > 0 {
			ts += ","
			cl += ","
		}
		ts += fmt.Sprintf("%d", timestamps[i])
		cl += closes[i]
	}
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"timestamp": [%s],
				"indicators": {
					"quote": [{
						"open":   [%s],
						"high":   [%s],
						"low":    [%s],
						"close":  [%s],
						"volume": [100, 200, 300]
					}]
				}
			}],
			"error": null
		}
	}`, ts, cl, cl, cl, cl)
}

func TestYahooFetchParsesBars(t *testing.T) {
	d1 := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC).Unix()
	d2 := time.Date(2025, 3, 4, 14, 30, 0, 0, time.UTC).Unix()
	d3 := time.Date(2025, 3, 5, 14, 30, 0, 0, time.UTC).Unix()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/AAPL")
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		fmt.Fprint(w, chartPayload([]int64{d1, d2, d3}, []string{"100.5", "null", "102.25"}))
	}))
	defer server.Close()

	src := NewYahooSource()
	src.BaseURL = server.URL

	bars, err := src.Fetch(context.Background(), "AAPL", "2025-03-01")
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, "2025-03-03", bars[0].Date)
	require.NotNil(t, bars[0].Close)
	assert.Equal(t, 100.5, *bars[0].Close)
	require.NotNil(t, bars[0].Volume)
	assert.Equal(t, int64(100), *bars[0].Volume)

	// Null cells survive parsing; the clean step decides what to drop.
	assert.Nil(t, bars[1].Close)

	require.NotNil(t, bars[2].Close)
	assert.Equal(t, 102.25, *bars[2].Close)
}

func TestYahooFetchUnknownSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	src := NewYahooSource()
	src.BaseURL = server.URL

	bars, err := src.Fetch(context.Background(), "NOPE", "2025-03-01")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestYahooFetchChartError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": null, "error": {"code": "Bad Request", "description": "invalid range"}}}`)
	}))
	defer server.Close()

	src := NewYahooSource()
	src.BaseURL = server.URL

	_, err := src.Fetch(context.Background(), "AAPL", "2025-03-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad Request")
}

func TestYahooFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src := NewYahooSource()
	src.BaseURL = server.URL

	_, err := src.Fetch(context.Background(), "AAPL", "2025-03-01")
	require.Error(t, err)
}

func TestYahooFetchInvalidStartDate(t *testing.T) {
	src := NewYahooSource()
	_, err := src.Fetch(context.Background(), "AAPL", "not-a-date")
	require.Error(t, err)
}
