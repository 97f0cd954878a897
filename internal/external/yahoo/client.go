package yahoo

import (
	"errors"
	"strings"

	"github.com/wonny/shortlist/internal/contracts"
	"github.com/wonny/shortlist/pkg/httputil"
	"github.com/wonny/shortlist/pkg/logger"
)

// ErrSymbolNotFound is returned when the provider has no data for a symbol
var ErrSymbolNotFound = errors.New("symbol not found")

// Default chart window; wide enough for up to 60 sessions
const defaultChartRange = "3mo"

// Client handles communication with Yahoo Finance
// ⭐ SSOT: 시장 데이터 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string // JSON API (quote, chart)
	historyURL string // HTML history pages
	chartRange string
}

var _ contracts.MetricsProvider = (*Client)(nil)

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, baseURL, historyURL string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.Module("yahoo"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		historyURL: strings.TrimRight(historyURL, "/"),
		chartRange: defaultChartRange,
	}
}
