package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
input:
  auth_log_path: /var/log/auth.log
detection:
  threshold: 7
output:
  dir: reports
  charts: false
  state_db_path: failtrack.db
logging:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Input.AuthLogPath != "/var/log/auth.log" {
		t.Errorf("Expected auth log path, got '%s'", cfg.Input.AuthLogPath)
	}
	if cfg.Detection.Threshold != "7" {
		t.Errorf("Expected threshold '7', got '%s'", cfg.Detection.Threshold)
	}
	if cfg.Output.Dir != "reports" || cfg.ChartsEnabled() {
		t.Errorf("Expected dir reports with charts off, got %+v", cfg.Output)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Unexpected logging config %+v", cfg.Logging)
	}
	// Defaults still fill the gaps.
	if cfg.Detection.LocalLLMModel != DefaultLocalLLMModel || cfg.Dashboard.Addr != DefaultDashboardAddr {
		t.Errorf("Expected defaults applied, got %+v / %+v", cfg.Detection, cfg.Dashboard)
	}
}

func TestLoadConfig_NonNumericThreshold(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "detection:\n  threshold: lots\n"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Detection.Threshold != "lots" {
		t.Errorf("Expected raw threshold 'lots', got '%s'", cfg.Detection.Threshold)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
	if _, err := LoadConfig(writeConfig(t, "output:\n  colour: red\n")); err == nil {
		t.Error("Expected error for unknown field, got nil")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Output.Dir != DefaultOutputDir || !cfg.ChartsEnabled() {
		t.Errorf("Unexpected default output %+v", cfg.Output)
	}
	if cfg.Input.AuthLogPath != "" {
		t.Errorf("Expected no default log path, got '%s'", cfg.Input.AuthLogPath)
	}
}
