package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Server.Addr() = %q, want %q", cfg.Server.Addr(), "0.0.0.0:8080")
	}
	if cfg.Roster.Backend != BackendExcel {
		t.Errorf("Roster.Backend = %q, want %q", cfg.Roster.Backend, BackendExcel)
	}
	if cfg.Roster.Threshold != 0.8 {
		t.Errorf("Roster.Threshold = %v, want 0.8", cfg.Roster.Threshold)
	}
	if !cfg.Roster.Autosave {
		t.Error("Roster.Autosave = false, want true")
	}
	if cfg.Roster.BatchTTL != 30*time.Minute {
		t.Errorf("Roster.BatchTTL = %v, want 30m", cfg.Roster.BatchTTL)
	}
	if cfg.Upload.MaxFileSize != 10485760 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 10485760)
	}
	if cfg.Rate.RequestsPerMinute != 120 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 120)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ROSTER_FILE", "/data/turma.xlsx")
	t.Setenv("ROSTER_SIMILARITY_THRESHOLD", "0.85")
	t.Setenv("ROSTER_AUTOSAVE", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("API_KEYS", " k1 , ,k2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Roster.File != "/data/turma.xlsx" {
		t.Errorf("Roster.File = %q", cfg.Roster.File)
	}
	if cfg.Roster.Threshold != 0.85 {
		t.Errorf("Roster.Threshold = %v, want 0.85", cfg.Roster.Threshold)
	}
	if cfg.Roster.Autosave {
		t.Error("Roster.Autosave = true, want false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if len(cfg.Security.APIKeys) != 2 || cfg.Security.APIKeys[1] != "k2" {
		t.Errorf("Security.APIKeys = %v, want [k1 k2]", cfg.Security.APIKeys)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("ROSTER_BACKEND", "postgres")
	t.Setenv("DB_URL", "postgres://localhost/alttest")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/alttest" {
		t.Errorf("Database.URL = %q, want %q", cfg.Database.URL, "postgres://localhost/alttest")
	}
}

func TestLoad_PostgresNeedsURL(t *testing.T) {
	t.Setenv("ROSTER_BACKEND", "postgres")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL is required") {
		t.Errorf("Load() error = %v, want DATABASE_URL is required", err)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"bad integer", "SERVER_PORT", "abc"},
		{"bad duration", "ROSTER_BATCH_TTL", "soon"},
		{"bad float", "ROSTER_SIMILARITY_THRESHOLD", "high"},
		{"bad bool", "ROSTER_AUTOSAVE", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			if _, err := Load(); err == nil || !strings.Contains(err.Error(), tt.env) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.env)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
			Roster: RosterConfig{
				Backend:       BackendExcel,
				File:          "alunos.xlsx",
				Threshold:     0.8,
				BatchTTL:      time.Minute,
				SweepInterval: time.Minute,
				LockWait:      time.Second,
			},
			Upload:  UploadConfig{MaxFileSize: 1, MaxRows: 1},
			Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 1, WriteLimit: 1},
			Logging: LoggingConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Roster.Backend = "sqlite" }, "ROSTER_BACKEND"},
		{"threshold of one", func(c *Config) { c.Roster.Threshold = 1 }, "ROSTER_SIMILARITY_THRESHOLD"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "SERVER_PORT"},
		{"bad proxy", func(c *Config) { c.Security.TrustedProxies = []string{"10.0.0.0/8", "10.0.0.300"} }, "TRUSTED_PROXIES"},
		{"single proxy address", func(c *Config) { c.Security.TrustedProxies = []string{"127.0.0.1"} }, ""},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"rate disabled ignores limits", func(c *Config) {
			c.Rate = RateLimitConfig{Enabled: false}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: "postgres://user:hunter2@db/roster"},
		Security: SecurityConfig{APIKeys: []string{"secret-key"}},
	}

	s := cfg.String()
	if strings.Contains(s, "hunter2") || strings.Contains(s, "secret-key") {
		t.Errorf("String() leaks secrets: %s", s)
	}
}
