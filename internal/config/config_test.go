package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"API_KEY", "OTHER_KEY", "PORT", "GEMINI_API_KEY", "GEMINI_MODEL",
		"SENDGRID_API_KEY", "FROM_EMAIL", "TIMEKEEPER_STORE", "TIMEKEEPER_STORE_BACKEND",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "timekeeper" {
		t.Errorf("expected Name=timekeeper, got %s", cfg.Name)
	}
	if cfg.Server.Port != 7860 {
		t.Errorf("expected Port=7860, got %d", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendXLSX || cfg.Store.Path != "attendance.xlsx" {
		t.Errorf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Payroll.HoursPerDay != 8 || cfg.Payroll.HourlyRate != 144 {
		t.Errorf("unexpected payroll defaults: %+v", cfg.Payroll)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Store.Backend = BackendSQLite
	cfg.Store.Path = "data/attendance.db"
	cfg.Payroll.HourlyRate = 200

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Store.Backend != BackendSQLite {
		t.Errorf("expected Backend=sqlite, got %s", loaded.Store.Backend)
	}
	if loaded.Store.Path != "data/attendance.db" {
		t.Errorf("expected Path=data/attendance.db, got %s", loaded.Store.Path)
	}
	if loaded.Payroll.HourlyRate != 200 {
		t.Errorf("expected HourlyRate=200, got %d", loaded.Payroll.HourlyRate)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7860 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid default config, got: %v", err)
	}

	cfg.Store.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid backend")
	}

	cfg = DefaultConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for port 0")
	}

	cfg = DefaultConfig()
	cfg.Store.Backend = BackendMemory
	cfg.Store.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("memory backend needs no path, got: %v", err)
	}
}

func TestConfig_Helpers(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.GetLLMTimeout() != 60*time.Second {
		t.Errorf("unexpected LLM timeout %v", cfg.GetLLMTimeout())
	}
	cfg.LLM.Timeout = "garbage"
	if cfg.GetLLMTimeout() != 60*time.Second {
		t.Error("GetLLMTimeout should fall back on parse errors")
	}
	if cfg.ListenAddr() != "0.0.0.0:7860" {
		t.Errorf("unexpected listen addr %s", cfg.ListenAddr())
	}
	if cfg.Mail.Enabled() {
		t.Error("mail should be disabled without credentials")
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	c := LoggingConfig{}
	if c.IsCategoryEnabled("store") {
		t.Error("categories must be off outside debug mode")
	}
	c.DebugMode = true
	if !c.IsCategoryEnabled("store") {
		t.Error("unlisted categories default to on")
	}
	c.Categories = map[string]bool{"store": false}
	if c.IsCategoryEnabled("store") {
		t.Error("explicit false should disable")
	}
}
