package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Option backends
const (
	BackendMemory = "memory"
	BackendSheets = "sheets"
)

var validBackends = []string{BackendMemory, BackendSheets}

type Config struct {
	// HTTP Server
	Port               string        `envconfig:"PORT" default:"8081"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// Results endpoint
	ResultsEndpoint string        `envconfig:"RESULTS_ENDPOINT" default:"https://jsonplaceholder.typicode.com/posts"`
	FetchTimeout    time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"5s"`

	// Sessions
	SessionTTL          time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SessionMax          int           `envconfig:"SESSION_MAX" default:"1000"`
	SessionSecureCookie bool          `envconfig:"SESSION_SECURE_COOKIE" default:"false"`
	SessionsPerMinute   int           `envconfig:"SESSIONS_PER_MINUTE" default:"10"`

	// Option backend
	OptionsBackend string `envconfig:"OPTIONS_BACKEND" default:"memory"`
	OptionsDir     string `envconfig:"OPTIONS_DIR" default:"data"`

	// Google Sheets
	GoogleSpreadsheetID      string        `envconfig:"GOOGLE_SPREADSHEET_ID"`
	GoogleOptionsSheetName   string        `envconfig:"GOOGLE_OPTIONS_SHEET_NAME" default:"Options"`
	GoogleServiceAccountJSON string        `envconfig:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string        `envconfig:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleOptionsCacheTTL    time.Duration `envconfig:"GOOGLE_OPTIONS_CACHE_TTL" default:"5m"`

	// AMQP, optional
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"dataentry"`
	AMQPQueue    string `envconfig:"AMQP_QUEUE" default:"entry_submitted"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// AMQPEnabled reports whether submission events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.SessionsPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid session creation limit %d: must be at least 1 per minute", c.SessionsPerMinute))
	}

	if u, err := url.Parse(c.ResultsEndpoint); err != nil || c.ResultsEndpoint == "" {
		errors = append(errors, fmt.Sprintf("invalid results endpoint '%s'", c.ResultsEndpoint))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid results endpoint scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.FetchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be positive", c.FetchTimeout))
	}
	if c.RefreshInterval < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 100ms", c.RefreshInterval))
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max %d: must be at least 1", c.SessionMax))
	}

	if !slices.Contains(validBackends, c.OptionsBackend) {
		errors = append(errors, fmt.Sprintf("invalid options backend '%s': must be one of %v", c.OptionsBackend, validBackends))
	}

	if c.OptionsBackend == BackendSheets {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleOptionsSheetName == "" {
			errors = append(errors, "Google options sheet name is required when using sheets backend")
		}
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend")
		}
		if hasFile && !hasJSON {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
