// Package config provides functionality for managing configuration options
// for the client and the stub server using a YAML config file, command-line
// flags, a .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Supported client state backends.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Options holds the configuration values for the gophauth client.
type Options struct {
	// BaseURL is the origin of the remote authentication API.
	BaseURL string `koanf:"url"`

	// Store selects the client state backend: file, memory, postgres or redis.
	Store string `koanf:"store"`
	// StorePath is the state file used by the file backend.
	StorePath string `koanf:"store-path"`
	// DatabaseDSN holds the connection string for the postgres backend.
	DatabaseDSN string `koanf:"dsn"`
	// RedisAddr is the host:port of the redis backend.
	RedisAddr string `koanf:"redis-addr"`

	// CAFile, CertFile and KeyFile configure TLS towards the API. All optional.
	CAFile   string `koanf:"ca"`
	CertFile string `koanf:"cert"`
	KeyFile  string `koanf:"key"`

	LogLevel string `koanf:"log-level"`
	// LogFile redirects logs away from the terminal. Empty means stderr.
	LogFile string `koanf:"log-file"`
	NoColor bool   `koanf:"no-color"`

	// Config is the path to the YAML config file.
	Config string `koanf:"config"`
}

// StubOptions holds the configuration values for the development API stub.
type StubOptions struct {
	// Addr defines the stub's listening address (ip:port).
	Addr string `koanf:"addr"`
	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `koanf:"tls-cert"`
	TLSKey  string `koanf:"tls-key"`
	// OTP fixes the one-time passcode issued on forgot-password. Empty means random.
	OTP      string `koanf:"otp"`
	LogLevel string `koanf:"log-level"`
	Config   string `koanf:"config"`
}

// RegisterClientFlags adds the client flags to fs.
func RegisterClientFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to YAML config file")
	fs.String("url", "http://localhost:8080", "authentication API base URL")
	fs.String("store", StoreFile, "state backend: file | memory | postgres | redis")
	fs.String("store-path", defaultStorePath(), "state file for the file backend")
	fs.String("dsn", "", "postgres connection string for the postgres backend")
	fs.String("redis-addr", "localhost:6379", "redis address for the redis backend")
	fs.String("ca", "", "path to CA certificate used to verify the API")
	fs.String("cert", "", "path to client certificate")
	fs.String("key", "", "path to client key")
	fs.String("log-level", "warn", "log level: debug | info | warn | error")
	fs.String("log-file", "", "write logs to this file instead of stderr")
	fs.Bool("no-color", false, "disable colored output")
}

// RegisterStubFlags adds the stub server flags to fs.
func RegisterStubFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to YAML config file")
	fs.StringP("addr", "a", "localhost:8080", "run on ip:port server")
	fs.String("tls-cert", "", "path to server TLS certificate")
	fs.String("tls-key", "", "path to server TLS key")
	fs.String("otp", "", "fixed OTP to issue (random when empty)")
	fs.String("log-level", "info", "log level: debug | info | warn | error")
}

// LoadClient resolves client Options. Precedence, lowest first: flag
// defaults, config file, explicitly set flags, environment.
func LoadClient(fs *pflag.FlagSet) (*Options, error) {
	opts := &Options{}
	err := load(fs, opts, map[string]string{
		"GOPHAUTH_URL":   "url",
		"GOPHAUTH_STORE": "store",
		"DATABASE_DSN":   "dsn",
		"REDIS_ADDR":     "redis-addr",
	})
	if err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// LoadStub resolves StubOptions with the same precedence as LoadClient.
func LoadStub(fs *pflag.FlagSet) (*StubOptions, error) {
	opts := &StubOptions{}
	err := load(fs, opts, map[string]string{
		"SERVER_ADDRESS": "addr",
	})
	if err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) validate() error {
	switch o.Store {
	case StoreFile, StoreMemory, StorePostgres, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q", o.Store)
	}
	if o.Store == StorePostgres && o.DatabaseDSN == "" {
		return errors.New("postgres store requires --dsn or DATABASE_DSN")
	}
	if o.BaseURL == "" {
		return errors.New("API base URL must not be empty")
	}
	return nil
}

func load(fs *pflag.FlagSet, target any, env map[string]string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error while reading .env: %w", err)
	}

	k := koanf.New(".")

	path, _ := fs.GetString("config")
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		path = configPath
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("error while reading config file: %w", err)
		}
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return fmt.Errorf("error while reading flags: %w", err)
	}

	for name, key := range env {
		if v := os.Getenv(name); v != "" {
			if err := k.Set(key, v); err != nil {
				return fmt.Errorf("apply %s: %w", name, err)
			}
		}
	}
	if path != "" {
		_ = k.Set("config", path)
	}

	if err := k.Unmarshal("", target); err != nil {
		return fmt.Errorf("error while parsing config: %w", err)
	}
	return nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gophauth-state.json"
	}
	return filepath.Join(home, ".gophauth", "state.json")
}
