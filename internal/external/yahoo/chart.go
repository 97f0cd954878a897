package yahoo

import (
	"context"
	"fmt"
	"net/url"
)

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Volume []*int64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// FetchVolumes returns daily session volumes, oldest first.
// Sessions with a null volume (halts, partial bars) are skipped.
func (c *Client) FetchVolumes(ctx context.Context, symbol string) ([]int64, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		c.baseURL, url.PathEscape(symbol), c.chartRange)

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("fetch chart %s: %w", symbol, resp.Chart.Error)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("fetch chart: %w: %s", ErrSymbolNotFound, symbol)
	}

	result := resp.Chart.Result[0]
	volumes := make([]int64, 0, len(result.Timestamp))
	if len(result.Indicators.Quote) > 0 {
		for _, v := range result.Indicators.Quote[0].Volume {
			if v != nil {
				volumes = append(volumes, *v)
			}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"sessions": len(volumes),
	}).Debug("Fetched volumes")
	return volumes, nil
}

// SumRecentVolume sums the last n sessions (all of them when fewer exist)
func SumRecentVolume(volumes []int64, n int) int64 {
	if n <= 0 {
		return 0
	}
	start := len(volumes) - n
	if start < 0 {
		start = 0
	}

	var total int64
	for _, v := range volumes[start:] {
		total += v
	}
	return total
}
