package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"splitcast/internal/segment"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if resolved != path {
		t.Fatalf("resolved = %s, want %s", resolved, path)
	}
	if cfg.FFmpegBinary() != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary %q", cfg.FFmpegBinary())
	}
	if cfg.Extraction.Workers != defaultExtractionWorkers {
		t.Fatalf("unexpected workers %d", cfg.Extraction.Workers)
	}
}

func TestLoadParsesAndExpands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "` + dir + `/out"
work_dir = "` + dir + `/work"
log_dir = "` + dir + `/logs"

[extraction]
workers = 2

[labels]
voice = ["female", "male"]

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected file to exist")
	}
	if cfg.Extraction.Workers != 2 {
		t.Fatalf("workers = %d, want 2", cfg.Extraction.Workers)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format = %q", cfg.Logging.Format)
	}
	labels := cfg.VoiceLabels()
	if len(labels) != 2 || labels[0] != segment.LabelFemale || labels[1] != segment.LabelMale {
		t.Fatalf("unexpected voice labels %v", labels)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("output dir not absolute: %s", cfg.Paths.OutputDir)
	}
}

func TestValidateRejectsNonVoiceLabel(t *testing.T) {
	cfg := Default()
	cfg.Labels.Voice = []string{"noEnergy"}
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "voice label") {
		t.Fatalf("expected voice label error, got %v", err)
	}
}

func TestValidateStereoNeedsTwoLabels(t *testing.T) {
	cfg := Default()
	cfg.Labels.Voice = []string{"male"}
	cfg.Outputs.Stereo = true
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected stereo label-count error")
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected log format error")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample should exist")
	}
	if !cfg.Outputs.Synchronized {
		t.Fatal("sample should enable synchronized output")
	}
}
