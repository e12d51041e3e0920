package runs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"splitcast/internal/archive"
	"splitcast/internal/config"
	"splitcast/internal/extract"
	"splitcast/internal/logging"
	"splitcast/internal/media/ffmpeg"
	"splitcast/internal/media/ffprobe"
	"splitcast/internal/pcm"
	"splitcast/internal/runstore"
	"splitcast/internal/segment"
	"splitcast/internal/segmenter"
	"splitcast/internal/timeline"
)

// ProbeFunc inspects a media file; it exists so tests can avoid ffprobe.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Options selects the source recording and which artifacts to produce.
type Options struct {
	Source string
	// SegmentsCSV, when set, reuses an existing segmentation export instead
	// of invoking the segmenter. A .json extension selects the JSON form;
	// anything else is read as the tab-separated CSV export.
	SegmentsCSV string
	Outputs     config.Outputs
}

// Runner executes the full separation pipeline for one recording.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	media     *ffmpeg.Client
	segmenter *segmenter.Service
	store     *runstore.Store
	probe     ProbeFunc
}

// NewRunner wires a runner from configuration. The store may be nil when run
// history is unavailable; the pipeline itself does not depend on it.
func NewRunner(cfg *config.Config, logger *slog.Logger, store *runstore.Store) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		media:  ffmpeg.New(cfg.FFmpegBinary()),
		segmenter: segmenter.NewService(segmenter.Config{
			Command:   cfg.Segmenter.Command,
			ExtraArgs: cfg.Segmenter.ExtraArgs,
			Timeout:   time.Duration(cfg.Segmenter.TimeoutSeconds) * time.Second,
		}),
		store: store,
		probe: ffprobe.Inspect,
	}
}

// WithMediaClient overrides the ffmpeg client (for testing).
func (r *Runner) WithMediaClient(client *ffmpeg.Client) { r.media = client }

// WithSegmenter overrides the segmenter service (for testing).
func (r *Runner) WithSegmenter(svc *segmenter.Service) { r.segmenter = svc }

// WithProbe overrides the media prober (for testing).
func (r *Runner) WithProbe(probe ProbeFunc) { r.probe = probe }

// recorder persists artifacts for one run; a nil receiver discards them.
type recorder struct {
	store *runstore.Store
	rowID int64
}

func (rec *recorder) artifact(ctx context.Context, label, kind, path string) {
	if rec == nil || rec.store == nil {
		return
	}
	_ = rec.store.AddArtifact(ctx, rec.rowID, label, kind, path)
}

// Run executes the pipeline and returns a per-label report. Input and
// structural errors abort immediately; per-segment slice failures and
// absent labels are contained and reported.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	source := strings.TrimSpace(opts.Source)
	if source == "" {
		return nil, Wrap(ErrInput, "preflight", "no source recording given", nil)
	}
	if _, err := os.Stat(source); err != nil {
		return nil, Wrap(ErrInput, "preflight", "recording unreadable", err)
	}
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, Wrap(ErrInput, "preflight", "prepare directories", err)
	}

	lock := flock.New(filepath.Join(r.cfg.Paths.WorkDir, "splitcast.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire work dir lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another splitcast run is already using the work directory")
	}
	defer lock.Unlock()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)
	report := &Report{RunID: runID, Source: source, StartedAt: time.Now().UTC()}

	var rec *recorder
	if r.store != nil {
		rowID, err := r.store.BeginRun(ctx, runID, source)
		if err != nil {
			logger.Warn("run history unavailable", slog.Any("error", err))
		} else {
			rec = &recorder{store: r.store, rowID: rowID}
		}
	}

	runErr := r.execute(ctx, opts, source, report, rec)
	report.FinishedAt = time.Now().UTC()
	if rec != nil {
		status := runstore.StatusCompleted
		if runErr != nil {
			status = runstore.StatusFailed
		}
		if err := rec.store.FinishRun(ctx, rec.rowID, status, report.SegmentCount, report.FailedSlices(), runErr); err != nil {
			logger.Warn("could not finalize run history", slog.Any("error", err))
		}
	}
	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

func (r *Runner) execute(ctx context.Context, opts Options, source string, report *Report, rec *recorder) error {
	logger := logging.WithContext(ctx, r.logger)
	workDir := filepath.Join(r.cfg.Paths.WorkDir, report.RunID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return Wrap(ErrInput, "preflight", "create run work dir", err)
	}

	info, err := r.probe(logging.WithStage(ctx, "probe"), r.cfg.FFprobeBinary(), source)
	if err != nil {
		return Wrap(ErrInput, "probe", "inspect recording", err)
	}
	if info.AudioStreamCount() == 0 || info.SampleRate() <= 0 {
		return Wrap(ErrInput, "probe", "recording has no usable audio stream", nil)
	}
	report.Duration = info.DurationSeconds()
	report.SampleRate = info.SampleRate()
	logger.Info("recording inspected",
		slog.Float64("duration_seconds", report.Duration),
		slog.Int("sample_rate", report.SampleRate),
		slog.Int("channels", info.ChannelCount()))

	list, err := r.segmentation(ctx, opts, source, workDir, report)
	if err != nil {
		return err
	}
	report.SegmentCount = len(list)
	rec.artifact(ctx, "", KindSegmentation, report.SegmentationCSV)
	rec.artifact(ctx, "", KindSegmentation, report.SegmentationJSON)

	labels := r.cfg.VoiceLabels()
	if opts.Outputs.Synchronized || opts.Outputs.Stereo {
		if err := r.synchronized(ctx, opts, source, workDir, info, list, labels, report, rec); err != nil {
			return err
		}
	}
	if opts.Outputs.Concatenated || opts.Outputs.Archives {
		r.concatenated(ctx, opts, source, workDir, list, labels, report, rec)
	}

	// The work dir is scratch space; keep it only when a contained failure
	// left retry-able clips behind.
	keep := false
	for _, lr := range report.Labels {
		if lr.Err != "" {
			keep = true
		}
	}
	if !keep {
		_ = os.RemoveAll(workDir)
	}
	return nil
}

func (r *Runner) segmentation(ctx context.Context, opts Options, source, workDir string, report *Report) (segment.List, error) {
	ctx = logging.WithStage(ctx, "segment")
	logger := logging.WithContext(ctx, r.logger)

	var list segment.List
	if opts.SegmentsCSV != "" {
		var err error
		if strings.EqualFold(filepath.Ext(opts.SegmentsCSV), ".json") {
			list, err = segment.ReadJSONFile(opts.SegmentsCSV)
		} else {
			list, err = segment.ReadFile(opts.SegmentsCSV)
		}
		if err != nil {
			return nil, Wrap(ErrInput, "segment", "load segmentation", err)
		}
		if err := list.Validate(); err != nil {
			return nil, err
		}
		logger.Info("segmentation loaded", slog.Int("segments", len(list)), slog.String("source", opts.SegmentsCSV))
	} else {
		logger.Info("segmenting recording", slog.String("command", r.segmenter.Command()))
		var err error
		list, _, err = r.segmenter.Segment(ctx, source, workDir)
		if err != nil {
			if errors.Is(err, segment.ErrStructural) {
				return nil, err
			}
			return nil, Wrap(ErrInput, "segment", "segmentation failed", err)
		}
		logger.Info("segmentation complete", slog.Int("segments", len(list)))
	}

	// The classifier's own export lives in run scratch space; re-export into
	// the output dir so the recorded artifact outlives cleanup.
	base := sourceBase(source)
	csvPath := filepath.Join(r.cfg.Paths.OutputDir, base+"_segments.csv")
	if err := segment.WriteFile(csvPath, list); err != nil {
		return nil, fmt.Errorf("persist segmentation: %w", err)
	}
	jsonPath := filepath.Join(r.cfg.Paths.OutputDir, base+"_segments.json")
	if err := segment.WriteJSONFile(jsonPath, list); err != nil {
		return nil, fmt.Errorf("persist segmentation: %w", err)
	}
	report.SegmentationCSV = csvPath
	report.SegmentationJSON = jsonPath
	return list, nil
}

func (r *Runner) synchronized(ctx context.Context, opts Options, source, workDir string, info ffprobe.Result, list segment.List, labels []segment.Label, report *Report, rec *recorder) error {
	ctx = logging.WithStage(ctx, "reconstruct")
	logger := logging.WithContext(ctx, r.logger)

	recording, err := r.media.DecodePCM(ctx, source, info.SampleRate(), info.ChannelCount())
	if err != nil {
		return Wrap(ErrInput, "reconstruct", "decode recording", err)
	}
	tracks, err := timeline.Reconstruct(list, recording, labels)
	if err != nil {
		return err
	}

	base := sourceBase(source)
	for _, label := range labels {
		if !opts.Outputs.Synchronized {
			break
		}
		track := tracks[label]
		dest := filepath.Join(r.cfg.Paths.OutputDir, fmt.Sprintf("%s_%s_synced.wav", base, label))
		if err := r.media.EncodeWAV(ctx, track, dest); err != nil {
			return fmt.Errorf("encode synchronized %s track: %w", label, err)
		}
		report.LabelFor(label).Synchronized = dest
		rec.artifact(ctx, string(label), KindSynchronized, dest)
		logger.Info("synchronized track written",
			slog.String("label", string(label)),
			slog.String("path", dest),
			slog.Float64("duration_seconds", track.Duration()))
	}

	if opts.Outputs.Stereo && len(labels) == 2 {
		if err := r.stereo(ctx, base, workDir, labels, tracks, report, rec); err != nil {
			return err
		}
	}
	return nil
}

// stereo merges the two voice tracks into one stereo file, the first label
// on the left channel. The duration check is the external verification that
// the reconstruction invariant actually held; a mismatch is a defect and
// aborts.
func (r *Runner) stereo(ctx context.Context, base, workDir string, labels []segment.Label, tracks map[segment.Label]*pcm.Buffer, report *Report, rec *recorder) error {
	ctx = logging.WithStage(ctx, "stereo")
	logger := logging.WithContext(ctx, r.logger)

	left, right := tracks[labels[0]], tracks[labels[1]]
	if err := timeline.CheckDurations(left, right); err != nil {
		return err
	}

	// The merge reads encoded synchronized tracks; stage them in the work
	// dir when the run did not request them as outputs.
	leftPath := report.LabelFor(labels[0]).Synchronized
	rightPath := report.LabelFor(labels[1]).Synchronized
	if leftPath == "" || rightPath == "" {
		var err error
		if leftPath, err = r.encodeScratch(ctx, left, workDir, base, labels[0]); err != nil {
			return err
		}
		if rightPath, err = r.encodeScratch(ctx, right, workDir, base, labels[1]); err != nil {
			return err
		}
	}

	dest := filepath.Join(r.cfg.Paths.OutputDir, base+"_stereo.wav")
	if err := r.media.MergeChannels(ctx, leftPath, rightPath, dest); err != nil {
		return fmt.Errorf("stereo mix: %w", err)
	}
	report.Stereo = dest
	rec.artifact(ctx, "", KindStereo, dest)
	logger.Info("stereo mix written", slog.String("path", dest))
	return nil
}

func (r *Runner) encodeScratch(ctx context.Context, buf *pcm.Buffer, workDir, base string, label segment.Label) (string, error) {
	dest := filepath.Join(workDir, fmt.Sprintf("%s_%s_channel.wav", base, label))
	if err := r.media.EncodeWAV(ctx, buf, dest); err != nil {
		return "", fmt.Errorf("encode %s channel: %w", label, err)
	}
	return dest, nil
}

func (r *Runner) concatenated(ctx context.Context, opts Options, source, workDir string, list segment.List, labels []segment.Label, report *Report, rec *recorder) {
	ctx = logging.WithStage(ctx, "extract")
	logger := logging.WithContext(ctx, r.logger)

	extractor := &extract.Extractor{
		Slicer:       r.media,
		Concatenator: r.media,
		WorkDir:      workDir,
		Workers:      r.cfg.Extraction.Workers,
		SliceTimeout: time.Duration(r.cfg.Extraction.SliceTimeoutSeconds) * time.Second,
		KeepClips:    opts.Outputs.Archives,
		Logger:       logger,
	}

	base := sourceBase(source)
	for _, label := range labels {
		entry := report.LabelFor(label)
		dest := filepath.Join(r.cfg.Paths.OutputDir, fmt.Sprintf("%s_%s_concatenated.wav", base, label))
		outcome, err := extractor.Extract(ctx, source, list, label, dest)
		if outcome == nil && err == nil {
			entry.Absent = true
			logger.Info("label not present in segmentation", slog.String("label", string(label)))
			continue
		}
		if outcome != nil {
			entry.Attempted = outcome.Attempted
			entry.Succeeded = outcome.Succeeded
			entry.Failures = outcome.Failures
		}
		if err != nil {
			// Contained extraction failure: report it, keep going for the
			// other labels. Clips stay on disk for a retry.
			entry.Err = err.Error()
			logger.Warn("extraction failed", slog.String("label", string(label)), slog.Any("error", err))
			continue
		}
		if outcome.Produced() && opts.Outputs.Concatenated {
			entry.Concatenated = outcome.Path
			rec.artifact(ctx, string(label), KindConcatenated, outcome.Path)
			logger.Info("concatenated track written",
				slog.String("label", string(label)),
				slog.String("path", outcome.Path),
				slog.Int("segments", outcome.Succeeded))
		}
		if opts.Outputs.Archives {
			r.archiveClips(ctx, base, label, outcome, entry, rec, logger)
		}
	}
}

func (r *Runner) archiveClips(ctx context.Context, base string, label segment.Label, outcome *extract.Outcome, entry *LabelReport, rec *recorder, logger *slog.Logger) {
	dest := filepath.Join(r.cfg.Paths.OutputDir, fmt.Sprintf("%s_%s_segments.zip", base, label))
	err := archive.Build(dest, outcome.ClipPaths)
	switch {
	case errors.Is(err, archive.ErrEmptyArchive):
		logger.Info("no clips to archive", slog.String("label", string(label)))
	case err != nil:
		entry.Err = err.Error()
		logger.Warn("archive failed", slog.String("label", string(label)), slog.Any("error", err))
		return
	default:
		entry.Archive = dest
		rec.artifact(ctx, string(label), KindArchive, dest)
		logger.Info("segment archive written", slog.String("label", string(label)), slog.String("path", dest))
	}
	for _, clip := range outcome.ClipPaths {
		_ = os.Remove(clip)
	}
}

func sourceBase(source string) string {
	return strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
}
