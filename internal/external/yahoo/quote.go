package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/shortlist/internal/contracts"
)

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol            string   `json:"symbol"`
			MarketCap         *float64 `json:"marketCap"`
			SharesOutstanding *float64 `json:"sharesOutstanding"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteResponse"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// FetchQuote fetches market cap and shares outstanding.
// 누락된 필드는 0 (제공자가 값을 생략하는 경우)
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(symbol))

	var resp quoteResponse
	if err := c.httpClient.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", symbol, resp.QuoteResponse.Error)
	}

	for _, r := range resp.QuoteResponse.Result {
		if !strings.EqualFold(r.Symbol, symbol) {
			continue
		}
		q := &contracts.Quote{Symbol: symbol}
		if r.MarketCap != nil {
			q.MarketCap = *r.MarketCap
		}
		if r.SharesOutstanding != nil {
			q.SharesOutstanding = *r.SharesOutstanding
		}

		c.logger.WithFields(map[string]interface{}{
			"symbol":     symbol,
			"market_cap": q.MarketCap,
			"shares":     q.SharesOutstanding,
		}).Debug("Fetched quote")
		return q, nil
	}

	return nil, fmt.Errorf("fetch quote: %w: %s", ErrSymbolNotFound, symbol)
}
