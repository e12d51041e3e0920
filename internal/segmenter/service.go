package segmenter

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"splitcast/internal/segment"
)

// DefaultCommand is the segmentation CLI invoked when none is configured.
const DefaultCommand = "ina_speech_segmenter"

// Config describes how to invoke the external segmentation source.
type Config struct {
	Command   string
	ExtraArgs []string
	Timeout   time.Duration
}

// Service runs the external voice-activity/speaker classifier and loads its
// tab-separated output. The classifier itself is a black box; only the
// structural shape of its output is validated here.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a segmenter service with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = DefaultCommand
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Command returns the configured command name for logging.
func (s *Service) Command() string {
	return s.cfg.Command
}

// Segment classifies the recording and returns the parsed, validated
// segment list plus the path of the CSV the classifier wrote.
func (s *Service) Segment(ctx context.Context, source, outDir string) (segment.List, string, error) {
	if strings.TrimSpace(source) == "" {
		return nil, "", fmt.Errorf("segment: source path required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("segment: ensure output dir: %w", err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(s.cfg.ExtraArgs)+4)
	args = append(args, s.cfg.ExtraArgs...)
	args = append(args, "-i", source, "-o", outDir)
	if err := s.run(ctx, s.cfg.Command, args...); err != nil {
		return nil, "", fmt.Errorf("segmenter: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	csvPath := filepath.Join(outDir, base+".csv")
	list, err := segment.ReadFile(csvPath)
	if err != nil {
		return nil, "", fmt.Errorf("segmenter output: %w", err)
	}
	if err := list.Validate(); err != nil {
		return nil, "", fmt.Errorf("segmenter output: %w", err)
	}
	return list, csvPath, nil
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
