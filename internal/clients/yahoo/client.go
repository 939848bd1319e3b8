// Package yahoo fetches daily closing quotes from the Yahoo Finance v8
// chart API, for equities and currency pairs alike.
package yahoo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/asimoes/retrosim/internal/timeseries"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Candle is one daily closing quote in the instrument's native currency.
type Candle struct {
	Date  timeseries.Date `json:"date"`
	Close float64         `json:"close"`
}

// Client is a Yahoo Finance chart API client
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// chartResponse mirrors the relevant part of the v8 chart payload.
// Close values are pointers because Yahoo emits null for days without
// a usable quote.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// DailyCloses fetches the daily close series for a symbol over the
// inclusive [start, end] range. Null points are dropped; zero or
// negative closes are returned as-is because the filtering policy
// belongs to the caller.
func (c *Client) DailyCloses(symbol string, start, end timeseries.Date) ([]Candle, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", fmt.Sprintf("%d", start.Unix()))
	// period2 is exclusive on Yahoo's side, so push it one day past the end.
	params.Set("period2", fmt.Sprintf("%d", end.Add(1).Unix()))

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "retrosim/1.0")

	c.log.Debug().Str("symbol", symbol).Str("start", start.String()).Str("end", end.String()).Msg("Fetching daily closes")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned status %d for %s", resp.StatusCode, symbol)
	}

	var raw chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(raw.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart result for %s", symbol)
	}

	result := raw.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	closes := result.Indicators.Quote[0].Close
	var candles []Candle
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		candles = append(candles, Candle{
			Date:  timeseries.DateOf(time.Unix(ts, 0).UTC()),
			Close: *closes[i],
		})
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("empty close series for %s", symbol)
	}

	return candles, nil
}
