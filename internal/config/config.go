package config

import (
	"errors"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DBDSN        string `env:"DB_DSN" envDefault:"mbaayadmin.db"`
	LogFile      string `env:"LOG_FILE" envDefault:"./mbaayadmin.log"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"./web/templates"`
	StaticDir    string `env:"STATIC_DIR" envDefault:"./web/static"`

	// Marketplace backend
	APIBaseURL       string        `env:"API_BASE_URL" envDefault:"https://ilosiwaju-mbaay-2025.com/api/v1/admin"`
	CommunityBaseURL string        `env:"COMMUNITY_BASE_URL" envDefault:"https://ilosiwaju-mbaay-2025.com/api/v1/community"`
	APITimeout       time.Duration `env:"API_TIMEOUT" envDefault:"30s"`

	// Query cache
	QueryStaleTime time.Duration `env:"QUERY_STALE_TIME" envDefault:"5m"`
	RenderWait     time.Duration `env:"RENDER_WAIT" envDefault:"10s"`

	// Sessions
	SessionSecret string `env:"SESSION_SECRET" envDefault:"dev-only-change-me"`
	CookieSecure  bool   `env:"COOKIE_SECURE" envDefault:"false"`
	// How often expired sessions and their caches are cleared; 0 disables.
	SessionSweep time.Duration `env:"SESSION_SWEEP" envDefault:"10m"`

	// Throttling
	RateLimit  int `env:"RATE_LIMIT" envDefault:"120"`
	LoginLimit int `env:"LOGIN_LIMIT" envDefault:"5"`
}

// Load reads the environment. A malformed variable falls back to its own
// default so a typo in one value never prevents the dashboard from starting
// and never resets the others.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		restoreDefaults(&cfg, err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.CommunityBaseURL = strings.TrimRight(cfg.CommunityBaseURL, "/")
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s API_BASE_URL=%s STALE=%s TIMEOUT=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.APIBaseURL, cfg.QueryStaleTime, cfg.APITimeout)
	if cfg.SessionSecret == defaultSessionSecret {
		log.Printf("[security] SESSION_SECRET is the built-in development value; set it before exposing the dashboard")
	}
	return cfg
}

const defaultSessionSecret = "dev-only-change-me"

// restoreDefaults puts the default back into every field env could not parse.
func restoreDefaults(cfg *Config, err error) {
	def := reflect.ValueOf(Defaults())
	dst := reflect.ValueOf(cfg).Elem()
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		log.Printf("[config] %v; using defaults", err)
		*cfg = Defaults()
		return
	}
	for _, e := range agg.Errors {
		var pe env.ParseError
		if !errors.As(e, &pe) {
			log.Printf("[config] %v", e)
			continue
		}
		f := dst.FieldByName(pe.Name)
		if !f.IsValid() || !f.CanSet() {
			continue
		}
		f.Set(def.FieldByName(pe.Name))
		log.Printf("[config] %s is malformed (%v); using default %v", pe.Name, pe.Err, f.Interface())
	}
}

// Defaults returns the configuration with every envDefault applied.
func Defaults() Config {
	var cfg Config
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}
