// Package config provides functionality for managing configuration options
// for the server using command-line flags, a JSON config file, a .env file
// and environment variables.
//
// Precedence, lowest to highest: flag defaults, config file, explicit flags,
// environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for Options.DatabaseDriver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported values for Options.SessionStore.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// DatabaseDriver selects the relational backend: "postgres" or "sqlite".
	DatabaseDriver string `json:"database_driver"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// SessionStore selects where login sessions live: "memory" or "redis".
	SessionStore string `json:"session_store"`

	// RedisURL is used when SessionStore is "redis".
	RedisURL string `json:"redis_url"`

	// SessionTTL is how long a login session stays valid.
	SessionTTL time.Duration `json:"-"`

	// Timezone names the location used for calendar-day logic (IANA name or "Local").
	Timezone string `json:"timezone"`

	// LogLevel is the minimum zap level.
	LogLevel string `json:"log_level"`

	// LogFile enables rotating file logging when set.
	LogFile string `json:"log_file"`

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string `json:"cors_origins"`

	// RateLimitRPS and RateLimitBurst configure the per-client request limiter.
	RateLimitRPS   float64 `json:"rate_limit_rps"`
	RateLimitBurst int     `json:"rate_limit_burst"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Location resolves Timezone, defaulting to time.Local.
func (o *Options) Location() (*time.Location, error) {
	if o.Timezone == "" || strings.EqualFold(o.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", o.Timezone, err)
	}
	return loc, nil
}

// Validate reports configuration that cannot be served.
func (o *Options) Validate() error {
	switch o.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", o.DatabaseDriver)
	}
	if o.DatabaseDSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	switch o.SessionStore {
	case SessionMemory:
	case SessionRedis:
		if o.RedisURL == "" {
			return fmt.Errorf("redis URL is required for the redis session store")
		}
	default:
		return fmt.Errorf("unsupported session store %q", o.SessionStore)
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		return fmt.Errorf("tls cert and key must be set together")
	}
	if _, err := o.Location(); err != nil {
		return err
	}
	return nil
}

// Parse reads configuration for the process from os.Args, the environment and
// an optional .env file in the working directory.
func Parse() (*Options, error) {
	// .env is optional; missing file is not an error.
	_ = godotenv.Load()
	return Load(os.Args[1:], os.Getenv)
}

// Load builds Options from args and the getenv lookup.
func Load(args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}
	var origins, ttl string

	fs := flag.NewFlagSet("daybook", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDriver, "driver", DriverSQLite, "database driver: postgres | sqlite")
	fs.StringVar(&options.DatabaseDSN, "d", "file:daybook.db", "db address")
	fs.StringVar(&options.SessionStore, "sessions", SessionMemory, "session store: memory | redis")
	fs.StringVar(&options.RedisURL, "redis", "redis://localhost:6379/0", "redis URL")
	fs.StringVar(&ttl, "session-ttl", "168h", "session lifetime")
	fs.StringVar(&options.Timezone, "tz", "Local", "timezone for calendar days")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&options.LogFile, "log-file", "", "rotating log file path")
	fs.StringVar(&origins, "cors", "http://localhost:3000", "comma-separated allowed origins")
	fs.Float64Var(&options.RateLimitRPS, "rps", 10, "requests per second per client")
	fs.IntVar(&options.RateLimitBurst, "burst", 20, "request burst per client")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to TLS key")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	options.CORSOrigins = splitList(origins)

	// Override flags with environment variables if set
	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			// Flags given explicitly on the command line win over the file.
			explicit := map[string]string{}
			fs.Visit(func(f *flag.Flag) {
				explicit[f.Name] = f.Value.String()
			})
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
			for name, value := range explicit {
				_ = fs.Set(name, value)
			}
			if isSet(fs, "cors") {
				options.CORSOrigins = splitList(origins)
			}
		}
	}

	if v := getenv("SERVER_ADDRESS"); v != "" {
		options.Port = v
	}
	if v := getenv("DATABASE_DRIVER"); v != "" {
		options.DatabaseDriver = v
	}
	if v := getenv("DATABASE_DSN"); v != "" {
		options.DatabaseDSN = v
	}
	if v := getenv("SESSION_STORE"); v != "" {
		options.SessionStore = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		options.RedisURL = v
	}
	if v := getenv("SESSION_TTL"); v != "" {
		ttl = v
	}
	if v := getenv("TIMEZONE"); v != "" {
		options.Timezone = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		options.LogLevel = v
	}
	if v := getenv("LOG_FILE"); v != "" {
		options.LogFile = v
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		options.CORSOrigins = splitList(v)
	}
	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse RATE_LIMIT_RPS: %w", err)
		}
		options.RateLimitRPS = rps
	}
	if v := getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse RATE_LIMIT_BURST: %w", err)
		}
		options.RateLimitBurst = burst
	}
	if v := getenv("TLS_CERT"); v != "" {
		options.TLSCert = v
	}
	if v := getenv("TLS_KEY"); v != "" {
		options.TLSKey = v
	}

	d, err := time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("parse session ttl: %w", err)
	}
	options.SessionTTL = d

	return options, nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
