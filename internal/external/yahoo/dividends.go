package yahoo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/shortlist/internal/contracts"
)

var amountRe = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)

// Yahoo history pages print dates like "Mar 14, 2025"
var dateLayouts = []string{"Jan 2, 2006", "Jan 02, 2006", "2006-01-02"}

// FetchDividends fetches cash dividends paid strictly after since, oldest first
// ⭐ SSOT: 배당 이력 파싱은 이 함수에서만
func (c *Client) FetchDividends(ctx context.Context, symbol string, since time.Time) ([]contracts.Dividend, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(since.Unix(), 10))
	params.Set("period2", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("filter", "div")
	params.Set("frequency", "1d")

	u := fmt.Sprintf("%s/quote/%s/history?%s", c.historyURL, url.PathEscape(symbol), params.Encode())

	body, err := c.httpClient.GetBody(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch dividends %s: %w", symbol, err)
	}

	divs, err := parseDividendsHTML(body, since)
	if err != nil {
		return nil, fmt.Errorf("parse dividends %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(divs),
	}).Debug("Fetched dividends")
	return divs, nil
}

// parseDividendsHTML extracts "<amount> Dividend" rows from the history table
func parseDividendsHTML(html []byte, since time.Time) ([]contracts.Dividend, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	divs := make([]contracts.Dividend, 0)
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		// 컬럼: 날짜 | "0.26 Dividend"
		text := strings.TrimSpace(cells.Last().Text())
		if !strings.Contains(strings.ToLower(text), "dividend") {
			return
		}

		date, ok := parseDate(strings.TrimSpace(cells.First().Text()))
		if !ok || !date.After(since) {
			return
		}

		amount, err := strconv.ParseFloat(amountRe.FindString(text), 64)
		if err != nil || amount <= 0 {
			return
		}

		divs = append(divs, contracts.Dividend{Date: date, Amount: amount})
	})

	sort.Slice(divs, func(i, j int) bool { return divs[i].Date.Before(divs[j].Date) })
	return divs, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SumDividends totals per-share amounts
func SumDividends(divs []contracts.Dividend) float64 {
	var total float64
	for _, d := range divs {
		total += d.Amount
	}
	return total
}
