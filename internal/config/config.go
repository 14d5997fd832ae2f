package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	SessionTTL       time.Duration
	BcryptCost       int

	CookieSecure bool
	CORSOrigins  []string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

// Load reads .env (if present) and then the process environment.
// Every required variable is checked and all problems are reported at once.
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	var errs []error

	required := func(key string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			errs = append(errs, fmt.Errorf("missing required env %s", key))
		}
		return v
	}
	duration := func(key string, raw string) time.Duration {
		if raw == "" {
			return 0
		}
		d, err := ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return d
	}

	cfg := Config{
		ServiceName: envDefault(getenv, "SERVICE_NAME", "gamebuy-api"),
		ServerPort:  envIntDefault(getenv, "SERVER_PORT", 8080),
		LogLevel:    envDefault(getenv, "LOG_LEVEL", "info"),

		DatabaseURL: required("DATABASE_URL"),

		JWTAccessSecret:  []byte(required("JWT_ACCESS_SECRET")),
		JWTRefreshSecret: []byte(required("JWT_REFRESH_SECRET")),
		BcryptCost:       envIntDefault(getenv, "BCRYPT_COST", 10),

		CookieSecure: envBoolDefault(getenv, "COOKIE_SECURE", false),
		CORSOrigins:  CSV(getenv("CORS_ORIGINS")),

		KafkaBrokers: CSV(getenv("KAFKA_BROKERS")),

		ESURL:      getenv("ES_URL"),
		ESUser:     getenv("ES_USER"),
		ESPassword: getenv("ES_PASSWORD"),
		ESIndex:    envDefault(getenv, "ES_INDEX", "products"),
	}

	cfg.AccessTTL = duration("JWT_ACCESS_EXPIRES_IN", required("JWT_ACCESS_EXPIRES_IN"))
	cfg.RefreshTTL = duration("JWT_REFRESH_EXPIRES_IN", required("JWT_REFRESH_EXPIRES_IN"))
	cfg.SessionTTL = duration("SESSION_TTL", envDefault(getenv, "SESSION_TTL", "7d"))

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// ParseDuration accepts Go durations ("15m", "1h30m"), a day suffix ("7d")
// and bare integers as seconds ("900").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}

	var d time.Duration
	switch {
	case strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("bad day count %q", s)
		}
		d = time.Duration(n) * 24 * time.Hour
	case isDigits(s):
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, err
		}
		d = time.Duration(n) * time.Second
	default:
		var err error
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, err
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", s)
	}
	return d, nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func envDefault(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(getenv func(string) string, key string, def int) int {
	v := getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBoolDefault(getenv func(string) string, key string, def bool) bool {
	v := getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
