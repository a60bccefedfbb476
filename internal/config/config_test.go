package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache.Backend != BackendMemory || cfg.Server.Addr != ":8080" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "pricing": {"model_path": "/etc/pricing.hcl", "variables": {"spring_percent": "15"}},
  "cache": {"enabled": true, "backend": "redis", "ttl_seconds": 60, "redis": {"addr": "cache:6379"}}
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pricing.ModelPath != "/etc/pricing.hcl" || cfg.Pricing.Variables["spring_percent"] != "15" {
		t.Errorf("unexpected pricing config %+v", cfg.Pricing)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.Redis.Addr != "cache:6379" || cfg.Cache.TTLSeconds != 60 {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}
	// untouched sections keep defaults
	if cfg.Output.DefaultFormat != "cli" {
		t.Errorf("expected default output format, got %q", cfg.Output.DefaultFormat)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(envMap(map[string]string{
		"PRICING_MODEL_PATH": "model.json",
		"DATABASE_URL":       "postgres://localhost/pricing",
		"REDIS_ADDR":         "localhost:6379",
		"CACHE_BACKEND":      "redis",
		"CACHE_TTL_SECONDS":  "30",
		"SERVER_ADDR":        ":9090",
		"LOG_LEVEL":          "debug",
		"REDIS_PASSWORD":     "",
	}))

	if cfg.Pricing.ModelPath != "model.json" {
		t.Errorf("expected model path override, got %q", cfg.Pricing.ModelPath)
	}
	if cfg.Database.DSN != "postgres://localhost/pricing" {
		t.Errorf("expected dsn override, got %q", cfg.Database.DSN)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.Redis.Addr != "localhost:6379" || cfg.Cache.TTLSeconds != 30 {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" || cfg.Logging.Level != "debug" {
		t.Errorf("unexpected server/logging config %+v %+v", cfg.Server, cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "redis without address", mutate: func(c *Config) { c.Cache.Backend = BackendRedis }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Cache.Backend = "disk" }, wantErr: true},
		{name: "unknown backend while disabled", mutate: func(c *Config) { c.Cache.Enabled = false; c.Cache.Backend = "disk" }},
		{name: "zero ttl", mutate: func(c *Config) { c.Cache.TTLSeconds = 0 }, wantErr: true},
		{name: "no model source", mutate: func(c *Config) { c.Pricing.ModelPath = "" }, wantErr: true},
		{name: "database only", mutate: func(c *Config) { c.Pricing.ModelPath = ""; c.Database.DSN = "postgres://x" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Pricing.ModelPath = "/srv/pricing.json"
	cfg.Cache.MaxEntries = 42
	if err := cfg.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Pricing.ModelPath != "/srv/pricing.json" {
		t.Errorf("expected model path /srv/pricing.json, got %q", loaded.Pricing.ModelPath)
	}
	if loaded.Cache.MaxEntries != 42 {
		t.Errorf("expected max entries 42, got %d", loaded.Cache.MaxEntries)
	}
}
