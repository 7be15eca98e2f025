package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/pkg/cache"
	gerrors "github.com/matzehuels/gridpath/pkg/errors"
)

// envPrefix prefixes every environment override.
const envPrefix = "GRIDPATH_"

// Config is the effective configuration: defaults, then the TOML file, then
// environment variables.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Server ServerConfig `toml:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Verbose bool `toml:"verbose"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"` // file, redis or none
	Dir     string `toml:"dir"`     // file backend directory; empty means the XDG cache dir
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServerConfig configures "gridpath serve".
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	MaxMapBytes  int      `toml:"max_map_bytes"`
	ReadTimeout  duration `toml:"read_timeout"`
	WriteTimeout duration `toml:"write_timeout"`
}

// duration decodes TOML strings such as "30s".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// defaultConfig returns the configuration used when no file is present.
func defaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{Backend: cache.BackendFile},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxMapBytes:  gerrors.MaxMapBytes,
			ReadTimeout:  duration{10 * time.Second},
			WriteTimeout: duration{30 * time.Second},
		},
	}
}

// loadConfig reads the TOML file at path (a missing file is fine), loads an
// optional .env file from the working directory and applies GRIDPATH_*
// environment overrides.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	// Variables already set in the environment win over .env entries.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides fields from GRIDPATH_* variables.
func (c *Config) applyEnv() error {
	if v, ok := lookupEnv("LOG_VERBOSE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOG_VERBOSE: %w", envPrefix, err)
		}
		c.Log.Verbose = b
	}
	if v, ok := lookupEnv("CACHE_BACKEND"); ok {
		c.Cache.Backend = v
	}
	if v, ok := lookupEnv("CACHE_DIR"); ok {
		c.Cache.Dir = v
	}
	if v, ok := lookupEnv("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := lookupEnv("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := lookupEnv("REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", envPrefix, err)
		}
		c.Redis.DB = n
	}
	if v, ok := lookupEnv("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookupEnv("SERVER_MAX_MAP_BYTES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSERVER_MAX_MAP_BYTES: %w", envPrefix, err)
		}
		c.Server.MaxMapBytes = n
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return fmt.Errorf("%w: %q (must be one of: file, redis, none)", cache.ErrUnknownBackend, c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("cache backend redis requires redis.addr")
	}
	if c.Server.MaxMapBytes < 0 {
		return fmt.Errorf("server.max_map_bytes must not be negative")
	}
	return nil
}

// cacheConfig resolves the cache settings, filling in the default directory.
func (c *Config) cacheConfig() (cache.Config, error) {
	cc := cache.Config{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:      c.Redis.Addr,
			Password:  c.Redis.Password,
			DB:        c.Redis.DB,
			KeyPrefix: appName + ":",
		},
	}
	if cc.Backend == cache.BackendFile && cc.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return cc, fmt.Errorf("get cache dir: %w", err)
		}
		cc.Dir = dir
	}
	return cc, nil
}

// encode renders the configuration as TOML with secrets masked.
func (c *Config) encode() ([]byte, error) {
	shown := *c
	if shown.Redis.Password != "" {
		shown.Redis.Password = "********"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(shown); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(envPrefix + key)
}

// =============================================================================
// Commands
// =============================================================================

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.config().encode()
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	return cmd
}

// resolvedConfigPath returns the --config value or the default location.
func (c *CLI) resolvedConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "config.toml"), nil
}
