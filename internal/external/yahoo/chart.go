package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/wonny/folio/pkg/httputil"
)

// ErrNoData is returned when Yahoo has no chart for the symbol or range
var ErrNoData = errors.New("yahoo: no chart data")

// DailyClose is one trading day's close as reported by Yahoo
type DailyClose struct {
	Symbol   string
	Date     time.Time // exchange-local calendar date (UTC midnight)
	Close    float64
	AdjClose float64 // 0 if not provided
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// FetchDailyCloses fetches daily closes with from <= date <= to
// ⭐ SSOT: Yahoo 일별 종가 조회는 이 함수에서만
func (c *Client) FetchDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]DailyClose, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", from.Unix()))
	// period2 is exclusive
	params.Set("period2", fmt.Sprintf("%d", to.AddDate(0, 0, 1).Unix()))
	params.Set("interval", "1d")
	params.Set("events", "div,splits")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
		}
		return nil, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}

	closes, err := parseChart(symbol, &resp)
	if err != nil {
		return nil, err
	}

	// Yahoo가 범위 밖 봉을 섞어 보내는 경우가 있어 한 번 더 거름
	fromDay, toDay := calendarDay(from), calendarDay(to)
	filtered := closes[:0]
	for _, dc := range closes {
		if dc.Date.Before(fromDay) || dc.Date.After(toDay) {
			continue
		}
		filtered = append(filtered, dc)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(filtered),
	}).Debug("Fetched daily closes")

	return filtered, nil
}

// parseChart converts a chart response into ascending daily closes
func parseChart(symbol string, resp *chartResponse) ([]DailyClose, error) {
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrNoData, symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s: empty result", ErrNoData, symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s: no quote indicators", ErrNoData, symbol)
	}
	closes := result.Indicators.Quote[0].Close

	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	out := make([]DailyClose, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		v := *closes[i]
		if math.IsNaN(v) || v <= 0 {
			continue
		}

		dc := DailyClose{
			Symbol: symbol,
			Date:   calendarDay(time.Unix(ts+result.Meta.GMTOffset, 0).UTC()),
			Close:  v,
		}
		if i < len(adj) && adj[i] != nil {
			dc.AdjClose = *adj[i]
		}

		// 같은 날짜가 두 번 오면 (장중 봉) 마지막 값을 사용
		if n := len(out); n > 0 && out[n-1].Date.Equal(dc.Date) {
			out[n-1] = dc
			continue
		}
		out = append(out, dc)
	}

	return out, nil
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
