package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"findash_backend/models"
)

const defaultChartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooSource fetches daily bars from the Yahoo Finance chart API.
type YahooSource struct {
	BaseURL    string
	httpClient *http.Client
}

// NewYahooSource creates a Yahoo chart API client.
func NewYahooSource() *YahooSource {
	return &YahooSource{
		BaseURL:    defaultChartBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// chartResponse mirrors the subset of the chart API payload we consume.
// Quote arrays are index-aligned with the timestamp array and may contain
// null cells.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch retrieves daily bars for symbol from startDate (inclusive) up to now.
// A symbol with no data in the range yields an empty slice, not an error.
func (y *YahooSource) Fetch(ctx context.Context, symbol, startDate string) ([]RawBar, error) {
	start, err := time.Parse(models.DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}

	url := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d",
		y.BaseURL, symbol, start.Unix(), time.Now().Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Unknown symbol: treated as "no data", the caller skips it.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chart API error (status %d): %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s (%s)",
			chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]RawBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar := RawBar{Date: time.Unix(ts, 0).UTC().Format(models.DateLayout)}
		if i < len(quote.Open) {
			bar.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			bar.High = quote.High[i]
		}
		if i < len(quote.Low) {
			bar.Low = quote.Low[i]
		}
		if i < len(quote.Close) {
			bar.Close = quote.Close[i]
		}
		if i < len(quote.Volume) {
			bar.Volume = quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	return bars, nil
}
