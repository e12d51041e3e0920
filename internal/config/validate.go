package config

import (
	"errors"
	"fmt"

	"splitcast/internal/segment"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if err := c.validateLabels(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Extraction.Workers > 64 {
		return fmt.Errorf("extraction.workers %d is unreasonably high", c.Extraction.Workers)
	}
	return nil
}

func (c *Config) validateLabels() error {
	for _, raw := range c.Labels.Voice {
		label := segment.ParseLabel(raw)
		if !label.Voice() {
			return fmt.Errorf("labels.voice entry %q is not a known voice label", raw)
		}
	}
	if c.Outputs.Stereo && len(c.Labels.Voice) != 2 {
		return errors.New("outputs.stereo requires exactly two voice labels")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}

// VoiceLabels returns the configured voice labels as the closed enum type.
func (c *Config) VoiceLabels() []segment.Label {
	labels := make([]segment.Label, 0, len(c.Labels.Voice))
	for _, raw := range c.Labels.Voice {
		labels = append(labels, segment.ParseLabel(raw))
	}
	return labels
}
