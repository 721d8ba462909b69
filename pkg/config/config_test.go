package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("default port wrong: %d", cfg.Port)
	}
	if cfg.UpscaleInterpreter != "python3" {
		t.Fatalf("default interpreter wrong: %s", cfg.UpscaleInterpreter)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DECKSCAN_PORT", "9000")
	t.Setenv("DECKSCAN_VISION_API_KEY", "sk-test")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("env override ignored: %d", cfg.Port)
	}
	if cfg.VisionAPIKey != "sk-test" {
		t.Fatalf("api key not read: %q", cfg.VisionAPIKey)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deckscan.yaml")
	if err := os.WriteFile(path, []byte("port: 8888\nupload_dir: /tmp/decks\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != 8888 || cfg.UploadDir != "/tmp/decks" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/deckscan.yaml"); err == nil {
		t.Fatalf("missing explicit config file must error")
	}
}
