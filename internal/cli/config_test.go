package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gridpath/pkg/cache"
	gerrors "github.com/matzehuels/gridpath/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.toml")} {
		cfg, err := loadConfig(path)
		if err != nil {
			t.Fatalf("loadConfig(%q) error: %v", path, err)
		}
		if cfg.Cache.Backend != cache.BackendFile {
			t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, cache.BackendFile)
		}
		if cfg.Server.Addr != ":8080" {
			t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
		}
		if cfg.Server.MaxMapBytes != gerrors.MaxMapBytes {
			t.Errorf("Server.MaxMapBytes = %d, want %d", cfg.Server.MaxMapBytes, gerrors.MaxMapBytes)
		}
		if cfg.Server.ReadTimeout.Duration != 10*time.Second {
			t.Errorf("Server.ReadTimeout = %v, want 10s", cfg.Server.ReadTimeout.Duration)
		}
		if cfg.Log.Verbose {
			t.Error("Log.Verbose = true, want false")
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
[log]
verbose = true

[cache]
backend = "redis"

[redis]
addr = "localhost:6379"
db = 2

[server]
addr = ":9000"
max_map_bytes = 4096
read_timeout = "5s"
write_timeout = "1m"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if !cfg.Log.Verbose {
		t.Error("Log.Verbose = false, want true")
	}
	if cfg.Cache.Backend != cache.BackendRedis {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.MaxMapBytes != 4096 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout.Duration)
	}
	if cfg.Server.WriteTimeout.Duration != time.Minute {
		t.Errorf("WriteTimeout = %v, want 1m", cfg.Server.WriteTimeout.Duration)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "[server]\naddr = \"127.0.0.1:7000\"\n")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != cache.BackendFile {
		t.Errorf("Cache.Backend = %q, want default %q", cfg.Cache.Backend, cache.BackendFile)
	}
	if cfg.Server.WriteTimeout.Duration != 30*time.Second {
		t.Errorf("WriteTimeout = %v, want default 30s", cfg.Server.WriteTimeout.Duration)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "[server\naddr = "},
		{"bad duration", "[server]\nread_timeout = \"soon\"\n"},
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n"},
		{"negative max", "[server]\nmax_map_bytes = -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("loadConfig() error = nil, want error")
			}
		})
	}
}

func TestLoadConfigUnknownBackendIsTyped(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "[cache]\nbackend = \"memcached\"\n"))
	if !errors.Is(err, cache.ErrUnknownBackend) {
		t.Errorf("error = %v, want ErrUnknownBackend", err)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	path := writeConfig(t, "[server]\naddr = \":9000\"\n")
	t.Setenv("GRIDPATH_LOG_VERBOSE", "true")
	t.Setenv("GRIDPATH_CACHE_BACKEND", "redis")
	t.Setenv("GRIDPATH_REDIS_ADDR", "redis:6379")
	t.Setenv("GRIDPATH_REDIS_PASSWORD", "secret")
	t.Setenv("GRIDPATH_REDIS_DB", "3")
	t.Setenv("GRIDPATH_SERVER_ADDR", ":9100")
	t.Setenv("GRIDPATH_SERVER_MAX_MAP_BYTES", "2048")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if !cfg.Log.Verbose {
		t.Error("Log.Verbose = false, want true")
	}
	if cfg.Cache.Backend != cache.BackendRedis {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.Password != "secret" || cfg.Redis.DB != 3 {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Server.Addr != ":9100" {
		t.Errorf("Server.Addr = %q, want env override :9100", cfg.Server.Addr)
	}
	if cfg.Server.MaxMapBytes != 2048 {
		t.Errorf("Server.MaxMapBytes = %d, want 2048", cfg.Server.MaxMapBytes)
	}
}

func TestLoadConfigBadEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"GRIDPATH_LOG_VERBOSE", "maybe"},
		{"GRIDPATH_REDIS_DB", "zero"},
		{"GRIDPATH_SERVER_MAX_MAP_BYTES", "1MB"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := loadConfig("")
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("loadConfig() error = %v, want error naming %s", err, tt.key)
			}
		})
	}
}

func TestCacheConfig(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	cfg := defaultConfig()
	cc, err := cfg.cacheConfig()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(cacheHome, appName); cc.Dir != want {
		t.Errorf("Dir = %q, want %q", cc.Dir, want)
	}
	if cc.Redis.KeyPrefix != "gridpath:" {
		t.Errorf("KeyPrefix = %q, want %q", cc.Redis.KeyPrefix, "gridpath:")
	}

	cfg.Cache.Dir = "/var/cache/maps"
	if cc, _ := cfg.cacheConfig(); cc.Dir != "/var/cache/maps" {
		t.Errorf("explicit Dir = %q, want /var/cache/maps", cc.Dir)
	}
}

func TestConfigEncodeMasksPassword(t *testing.T) {
	cfg := defaultConfig()
	cfg.Redis.Password = "hunter2"

	data, err := cfg.encode()
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hunter2") {
		t.Error("encoded config leaks the redis password")
	}
	for _, want := range []string{`password = "********"`, `backend = "file"`, `read_timeout = "10s"`} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded config missing %q:\n%s", want, out)
		}
	}
	if cfg.Redis.Password != "hunter2" {
		t.Error("encode() modified the config")
	}
}
