package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeSegmenter()
	c.normalizeExtraction()
	c.normalizeLabels()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = "ffprobe"
	}
}

func (c *Config) normalizeSegmenter() {
	c.Segmenter.Command = strings.TrimSpace(c.Segmenter.Command)
	if c.Segmenter.Command == "" {
		c.Segmenter.Command = defaultSegmenterCommand
	}
	if c.Segmenter.TimeoutSeconds <= 0 {
		c.Segmenter.TimeoutSeconds = defaultSegmenterTimeout
	}
}

func (c *Config) normalizeExtraction() {
	if c.Extraction.Workers <= 0 {
		c.Extraction.Workers = defaultExtractionWorkers
	}
	if c.Extraction.SliceTimeoutSeconds <= 0 {
		c.Extraction.SliceTimeoutSeconds = defaultSliceTimeoutSeconds
	}
}

func (c *Config) normalizeLabels() {
	var voice []string
	for _, label := range c.Labels.Voice {
		trimmed := strings.TrimSpace(label)
		if trimmed != "" {
			voice = append(voice, trimmed)
		}
	}
	if len(voice) == 0 {
		voice = Default().Labels.Voice
	}
	c.Labels.Voice = voice
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
