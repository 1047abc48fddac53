package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// High score backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Config holds the server settings. Every field has an environment variable;
// command line flags override it.
type Config struct {
	Host     string
	Port     int
	LogLevel string
	Debug    bool

	HighScoreBackend string
	HighScoreFile    string
	HighScoreDB      string
	MaxHighScores    int

	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration
	MaxSessions            int

	CookieName   string
	CookieSecret string
	CookieSecure bool

	StaticDir string

	NgrokEnabled   bool
	NgrokAuthToken string
	NgrokDomain    string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Host:                   "localhost",
		Port:                   8080,
		LogLevel:               "info",
		HighScoreBackend:       BackendFile,
		HighScoreFile:          "data/high_scores.json",
		HighScoreDB:            "data/freecell.db",
		MaxHighScores:          20,
		SessionTTL:             24 * time.Hour,
		SessionCleanupInterval: time.Hour,
		CookieName:             "freecell_session",
		StaticDir:              "static",
	}
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv and validates it.
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Default()
	r := reader{getenv: getenv}

	cfg.Host = r.str("HOST", cfg.Host)
	cfg.Port = r.int("PORT", cfg.Port)
	cfg.LogLevel = r.str("LOG_LEVEL", cfg.LogLevel)
	cfg.Debug = r.bool("DEBUG", cfg.Debug)

	cfg.HighScoreBackend = strings.ToLower(r.str("HIGHSCORE_BACKEND", cfg.HighScoreBackend))
	cfg.HighScoreFile = r.str("HIGHSCORE_FILE", cfg.HighScoreFile)
	cfg.HighScoreDB = r.str("HIGHSCORE_DB", cfg.HighScoreDB)
	cfg.MaxHighScores = r.int("MAX_HIGH_SCORES", cfg.MaxHighScores)

	cfg.SessionTTL = r.duration("SESSION_TTL", cfg.SessionTTL)
	cfg.SessionCleanupInterval = r.duration("SESSION_CLEANUP_INTERVAL", cfg.SessionCleanupInterval)
	cfg.MaxSessions = r.int("MAX_SESSIONS", cfg.MaxSessions)

	cfg.CookieName = r.str("COOKIE_NAME", cfg.CookieName)
	cfg.CookieSecret = r.str("COOKIE_SECRET", cfg.CookieSecret)
	cfg.CookieSecure = r.bool("COOKIE_SECURE", cfg.CookieSecure)

	cfg.StaticDir = r.str("STATIC_DIR", cfg.StaticDir)

	cfg.NgrokEnabled = r.bool("NGROK_ENABLED", cfg.NgrokEnabled)
	cfg.NgrokAuthToken = r.str("NGROK_AUTHTOKEN", cfg.NgrokAuthToken)
	cfg.NgrokDomain = r.str("NGROK_DOMAIN", cfg.NgrokDomain)

	if len(r.errs) > 0 {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(r.errs...))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks ranges and backend names.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	switch c.HighScoreBackend {
	case BackendFile:
		if c.HighScoreFile == "" {
			errs = append(errs, errors.New("HIGHSCORE_FILE is required for the file backend"))
		}
	case BackendSQLite:
		if c.HighScoreDB == "" {
			errs = append(errs, errors.New("HIGHSCORE_DB is required for the sqlite backend"))
		}
	case BackendNone:
	default:
		errs = append(errs, fmt.Errorf("unknown high score backend %q", c.HighScoreBackend))
	}
	if c.MaxHighScores < 1 {
		errs = append(errs, errors.New("max high scores must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session TTL must be positive"))
	}
	if c.SessionCleanupInterval <= 0 {
		errs = append(errs, errors.New("session cleanup interval must be positive"))
	}
	if c.MaxSessions < 0 {
		errs = append(errs, errors.New("max sessions cannot be negative"))
	}
	if c.CookieName == "" {
		errs = append(errs, errors.New("cookie name is required"))
	}
	if c.NgrokEnabled && c.NgrokAuthToken == "" {
		errs = append(errs, errors.New("NGROK_AUTHTOKEN is required when ngrok is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Level is the zerolog level, forced to debug by Debug.
func (c Config) Level() zerolog.Level {
	if c.Debug {
		return zerolog.DebugLevel
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// reader collects parse errors so Load reports them all at once.
type reader struct {
	getenv func(string) string
	errs   []error
}

func (r *reader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (r *reader) bool(key string, def bool) bool {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}
