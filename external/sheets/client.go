package sheets

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/scout-pro/internal/domain/roster"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
	"github.com/riskibarqy/scout-pro/internal/platform/resilience"
	"github.com/riskibarqy/scout-pro/internal/usecase"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	defaultRange      = "A:Z"
	defaultTimeout    = 20 * time.Second
	defaultRetryDelay = time.Second
)

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

var errSheetsTransient = crerr.New("google sheets transient failure")

type ClientConfig struct {
	// Spreadsheet is either a bare spreadsheet ID or a docs.google.com URL.
	Spreadsheet     string
	Range           string
	CredentialsJSON []byte
	CredentialsFile string
	// Endpoint overrides the API base URL; requests are then unauthenticated
	// unless credentials are also set.
	Endpoint       string
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the roster tab of one spreadsheet. The first row is the header.
type Client struct {
	service        *gsheets.Service
	spreadsheetID  string
	readRange      string
	timeout        time.Duration
	retry          resilience.RetryConfig
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	spreadsheetID, err := ParseSpreadsheetID(cfg.Spreadsheet)
	if err != nil {
		return nil, err
	}

	readRange := strings.TrimSpace(cfg.Range)
	if readRange == "" {
		readRange = defaultRange
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsReadonlyScope)}
	hasCredentials := len(cfg.CredentialsJSON) > 0 || strings.TrimSpace(cfg.CredentialsFile) != ""
	switch {
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(endpoint, "/")+"/"))
		if !hasCredentials {
			opts = append(opts, option.WithoutAuthentication())
		}
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	service, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create google sheets service: %v", usecase.ErrDependencyUnavailable, err)
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	return &Client{
		service:        service,
		spreadsheetID:  spreadsheetID,
		readRange:      readRange,
		timeout:        timeout,
		retry:          resilience.RetryConfig{MaxRetries: max(cfg.MaxRetries, 0), BaseDelay: retryDelay},
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

func (c *Client) Name() string {
	return "google-sheets:" + c.spreadsheetID
}

// FetchRows returns every non-blank data row. Line numbers are sheet rows,
// so the first data row is line 2.
func (c *Client) FetchRows(ctx context.Context) ([]roster.RawRow, error) {
	var values [][]any
	err := resilience.Retry(ctx, c.retry, isTransient, func(attempt int) error {
		if attempt > 0 {
			c.logger.WarnContext(ctx, "retrying google sheets read",
				"spreadsheet_id", c.spreadsheetID,
				"attempt", attempt,
			)
		}
		var err error
		values, err = c.fetchOnce(ctx)
		return err
	})
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			return nil, fmt.Errorf("%w: google sheets circuit open: %v", usecase.ErrSourceUnavailable, err)
		}
		return nil, fmt.Errorf("%w: read spreadsheet %s range %s: %w", usecase.ErrSourceUnavailable, c.spreadsheetID, c.readRange, err)
	}
	if len(values) == 0 {
		return []roster.RawRow{}, nil
	}

	header := make([]string, 0, len(values[0]))
	for _, cell := range values[0] {
		header = append(header, strings.TrimSpace(fmt.Sprint(cell)))
	}
	rows := roster.RowsFromTable(header, values[1:], 2)

	c.logger.DebugContext(ctx, "google sheets rows fetched",
		"spreadsheet_id", c.spreadsheetID,
		"range", c.readRange,
		"rows", len(rows),
	)
	return rows, nil
}

func (c *Client) fetchOnce(ctx context.Context) ([][]any, error) {
	var values [][]any
	call := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("FORMATTED_STRING").
			Context(reqCtx).
			Do()
		if err != nil {
			if isTransientAPIError(ctx, err) {
				return crerr.Mark(err, errSheetsTransient)
			}
			return err
		}
		values = resp.Values
		return nil
	}

	if !c.circuitEnabled {
		return values, call()
	}
	err := c.breaker.Execute(call, func(err error) bool {
		return crerr.Is(err, errSheetsTransient)
	})
	return values, err
}

func isTransient(err error) bool {
	return crerr.Is(err, errSheetsTransient)
}

// isTransientAPIError reports errors worth retrying: throttling, server
// errors and transport failures. Auth and not-found errors are permanent.
func isTransientAPIError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

// ParseSpreadsheetID accepts a bare ID or any spreadsheet URL.
func ParseSpreadsheetID(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("%w: spreadsheet id or url is required", usecase.ErrInvalidInput)
	}
	if match := spreadsheetIDPattern.FindStringSubmatch(value); len(match) == 2 {
		return match[1], nil
	}
	if strings.Contains(value, "/") {
		return "", fmt.Errorf("%w: cannot find spreadsheet id in %q", usecase.ErrInvalidInput, value)
	}
	return value, nil
}
