package gemini

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("port: 1970\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 1970 {
		t.Errorf("expected port 1970, got %d", cfg.Port)
	}
	if cfg.CharacterSet != "utf-8" {
		t.Errorf("expected default charset utf-8, got %q", cfg.CharacterSet)
	}
	if len(cfg.Languages) != 1 || cfg.Languages[0] != "en" {
		t.Errorf("expected default languages [en], got %v", cfg.Languages)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	var cerr *ConfigurationError
	if !asConfigurationError(err, &cerr) {
		t.Errorf("expected *ConfigurationError, got %T", err)
	}
}

func TestConfigApply(t *testing.T) {
	cfg := &Config{
		CharacterSet: "iso-8859-1",
		Languages:    []string{"fr"},
		Port:         1970,
		FixPath:      true,
	}
	var s Server
	if err := cfg.Apply(&s); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.charset != "iso-8859-1" {
		t.Errorf("expected charset iso-8859-1, got %q", s.charset)
	}
	if s.port != 1970 {
		t.Errorf("expected port 1970, got %d", s.port)
	}
	if !s.fixPath {
		t.Error("expected fixPath true")
	}
}

func asConfigurationError(err error, target **ConfigurationError) bool {
	ce, ok := err.(*ConfigurationError)
	if ok {
		*target = ce
	}
	return ok
}
