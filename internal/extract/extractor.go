package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"splitcast/internal/logging"
	"splitcast/internal/segment"
)

// ErrConcat marks an extraction that produced clips but failed to join them.
// The outcome still carries the clip paths so the caller can retry the
// concatenation without re-slicing.
var ErrConcat = errors.New("concatenation failed")

const defaultWorkers = 4

// Slicer produces a standalone clip for one time range of the source.
type Slicer interface {
	Slice(ctx context.Context, source string, start, stop float64, dest string) error
}

// Concatenator joins clips, in the order given, into one output file.
type Concatenator interface {
	Concat(ctx context.Context, clips []string, dest string) error
}

// SliceFailure records one segment whose clip could not be produced.
type SliceFailure struct {
	Index int
	Start float64
	Stop  float64
	Err   string
}

// TimeRange formats the failed segment's interval for reports.
func (f SliceFailure) TimeRange() string {
	return fmt.Sprintf("%.3fs-%.3fs", f.Start, f.Stop)
}

// Outcome summarizes one label's extraction. Path is empty when no clip
// survived; ClipPaths is populated while intermediate clips still exist on
// disk (always on concat failure, and on success when KeepClips is set).
type Outcome struct {
	Label     segment.Label
	Path      string
	ClipPaths []string
	Attempted int
	Succeeded int
	Failures  []SliceFailure
}

// Produced reports whether a concatenated track was written.
func (o *Outcome) Produced() bool {
	return o != nil && o.Path != ""
}

// Extractor derives one compact, silence-free track per label by slicing the
// matching segments out of the recording and concatenating the clips.
type Extractor struct {
	Slicer       Slicer
	Concatenator Concatenator
	WorkDir      string
	Workers      int
	SliceTimeout time.Duration
	KeepClips    bool
	Logger       *slog.Logger
}

type sliceResult struct {
	path string
	err  error
}

// Extract slices and joins every segment carrying label into destPath.
//
// Segments with no match return (nil, nil): a legitimate speaker-not-present
// outcome, not an error. Individual slice failures are contained, logged,
// and summarized in the outcome; only a concatenation failure (or a fully
// failed slice set followed by nothing to join) changes the result shape.
// Clips are dispatched to a bounded worker pool; the concatenation order is
// the chronological segment order regardless of completion order.
func (e *Extractor) Extract(ctx context.Context, source string, list segment.List, label segment.Label, destPath string) (*Outcome, error) {
	matches := list.ForLabel(label)
	if len(matches) == 0 {
		return nil, nil
	}
	if e.Slicer == nil || e.Concatenator == nil {
		return nil, errors.New("extract: slicer and concatenator required")
	}
	logger := e.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	workDir := e.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(destPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("extract: ensure work dir: %w", err)
	}

	// One pre-sized slot per segment; each worker writes only its own index,
	// so no lock is needed and completion order cannot affect output order.
	results := make([]sliceResult, len(matches))
	jobs := make(chan int)
	workers := e.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(matches) {
		workers = len(matches)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = e.sliceOne(ctx, source, matches[idx], label, idx, workDir)
			}
		}()
	}
	for idx := range matches {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	outcome := &Outcome{Label: label, Attempted: len(matches)}
	var clips []string
	for idx, res := range results {
		if res.err != nil {
			seg := matches[idx]
			outcome.Failures = append(outcome.Failures, SliceFailure{Index: idx, Start: seg.Start, Stop: seg.Stop, Err: res.err.Error()})
			logger.Warn("segment slice failed",
				slog.String("label", string(label)),
				slog.Int("segment", idx),
				slog.String("range", seg.TimeRange()),
				slog.Any("error", res.err))
			continue
		}
		clips = append(clips, res.path)
	}
	outcome.Succeeded = len(clips)
	if err := ctx.Err(); err != nil {
		outcome.ClipPaths = clips
		return outcome, fmt.Errorf("extract %s: %w", label, err)
	}
	if len(clips) == 0 {
		return outcome, nil
	}

	// Write through a temp name so a cancelled or failed concat never leaves
	// a partial output file behind.
	partial := destPath + ".partial"
	if err := e.Concatenator.Concat(ctx, clips, partial); err != nil {
		_ = os.Remove(partial)
		outcome.ClipPaths = clips
		return outcome, fmt.Errorf("%w: %s: %v", ErrConcat, label, err)
	}
	if err := os.Rename(partial, destPath); err != nil {
		outcome.ClipPaths = clips
		return outcome, fmt.Errorf("%w: finalize %s: %v", ErrConcat, destPath, err)
	}
	outcome.Path = destPath

	if e.KeepClips {
		outcome.ClipPaths = clips
	} else {
		for _, clip := range clips {
			if err := os.Remove(clip); err != nil && !errors.Is(err, os.ErrNotExist) {
				logger.Warn("could not remove temporary clip", slog.String("clip", clip), slog.Any("error", err))
			}
		}
	}
	return outcome, nil
}

func (e *Extractor) sliceOne(ctx context.Context, source string, seg segment.Segment, label segment.Label, idx int, workDir string) sliceResult {
	if err := ctx.Err(); err != nil {
		return sliceResult{err: err}
	}
	if e.SliceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.SliceTimeout)
		defer cancel()
	}
	dest := filepath.Join(workDir, fmt.Sprintf("%s_segment_%03d.wav", label, idx))
	if err := e.Slicer.Slice(ctx, source, seg.Start, seg.Stop, dest); err != nil {
		return sliceResult{err: err}
	}
	return sliceResult{path: dest}
}
