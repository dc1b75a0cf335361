package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"dataentry/internal/cache"
	"dataentry/internal/log"
	ports "dataentry/internal/sheets"
)

const (
	DefaultSheetName = "Options"
	// DefaultCacheTTL bounds how long option lists are served without asking the API.
	DefaultCacheTTL = 5 * time.Minute

	categoriesColumn    = "A2:A"
	subcategoriesColumn = "B2:B"
	optionsKey          = "options"
)

var ErrNotInitialized = errors.New("sheets service not initialized")

// Config describes the spreadsheet holding the option lists. Categories are
// read from column A and subcategories from column B, below a header row.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	CacheTTL        time.Duration
	Logger          *log.Logger
}

type optionLists struct {
	categories    []string
	subcategories []string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	cache         *cache.LRUCache[optionLists]
	logger        *log.Logger
}

var _ ports.TaxonomyReader = (*Client)(nil)

// New creates a Sheets client authenticated with service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, cfg, logger), nil
}

func newClient(svc *gsheet.Service, cfg Config, logger *log.Logger) *Client {
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = DefaultSheetName
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		sheetName:     sheet,
		cache:         cache.NewLRUCache[optionLists](1, ttl),
		logger:        logger,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Inline JSON wins over a file; GOOGLE_APPLICATION_CREDENTIALS is the last resort.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// List returns the categories and subcategories, cached for the configured TTL.
func (c *Client) List(ctx context.Context) ([]string, []string, error) {
	if lists, ok := c.cache.Get(optionsKey); ok {
		return clone(lists.categories), clone(lists.subcategories), nil
	}
	if c.svc == nil {
		return nil, nil, ErrNotInitialized
	}

	cats, subs, err := c.read(ctx)
	if err != nil {
		return nil, nil, err
	}
	c.cache.Set(optionsKey, optionLists{categories: cats, subcategories: subs})
	c.logger.DebugContext(ctx, "Options loaded", "categories", len(cats), "subcategories", len(subs))
	return clone(cats), clone(subs), nil
}

func (c *Client) read(ctx context.Context) ([]string, []string, error) {
	catRange := columnRange(c.sheetName, categoriesColumn)
	subRange := columnRange(c.sheetName, subcategoriesColumn)

	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).
		Ranges(catRange, subRange).
		Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", c.sheetName, err)
	}
	if len(resp.ValueRanges) != 2 {
		return nil, nil, fmt.Errorf("read %s: expected 2 ranges, got %d", c.sheetName, len(resp.ValueRanges))
	}
	return parseColumn(resp.ValueRanges[0].Values), parseColumn(resp.ValueRanges[1].Values), nil
}

// Invalidate drops the cached option lists.
func (c *Client) Invalidate() {
	c.cache.Delete(optionsKey)
}

func clone(in []string) []string {
	return append([]string(nil), in...)
}
