package runs_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"splitcast/internal/config"
	"splitcast/internal/logging"
	"splitcast/internal/media/ffmpeg"
	"splitcast/internal/media/ffprobe"
	"splitcast/internal/runs"
	"splitcast/internal/runstore"
	"splitcast/internal/segment"
	"splitcast/internal/segmenter"
	"splitcast/internal/testsupport"
)

const (
	testRate     = 1000
	testDuration = 10.0
)

func stubProbe(duration float64) runs.ProbeFunc {
	return func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "audio", SampleRate: strconv.Itoa(testRate), Channels: 1}},
			Format:  ffprobe.Format{Duration: strconv.FormatFloat(duration, 'f', 6, 64)},
		}, nil
	}
}

// stubMediaClient fakes every ffmpeg invocation: decode requests return a
// deterministic sample buffer, everything else just materializes the output
// file named by the final argument.
func stubMediaClient(failSliceStart string) *ffmpeg.Client {
	client := ffmpeg.New("ffmpeg")
	client.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if failSliceStart != "" {
			for i, arg := range args {
				if arg == "-ss" && i+1 < len(args) && args[i+1] == failSliceStart {
					return nil, errors.New("simulated slice failure")
				}
			}
		}
		last := args[len(args)-1]
		if last == "-" {
			frames := int(testDuration * testRate)
			return make([]byte, frames*2), nil
		}
		if err := os.WriteFile(last, []byte("fake-audio"), 0o644); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return client
}

func stubSegmenter(t *testing.T, rows string) *segmenter.Service {
	t.Helper()
	svc := segmenter.NewService(segmenter.Config{Command: "ina_speech_segmenter"})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		var source, outDir string
		for i, arg := range args {
			if arg == "-i" && i+1 < len(args) {
				source = args[i+1]
			}
			if arg == "-o" && i+1 < len(args) {
				outDir = args[i+1]
			}
		}
		if source == "" || outDir == "" {
			return errors.New("segmenter stub: missing -i or -o")
		}
		base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		csvPath := filepath.Join(outDir, base+".csv")
		return os.WriteFile(csvPath, []byte("labels\tstart\tstop\n"+rows), 0o644)
	})
	return svc
}

func newTestRunner(t *testing.T, cfg *config.Config, store *runstore.Store, rows, failSliceStart string) *runs.Runner {
	t.Helper()
	runner := runs.NewRunner(cfg, logging.NewNop(), store)
	runner.WithProbe(stubProbe(testDuration))
	runner.WithMediaClient(stubMediaClient(failSliceStart))
	runner.WithSegmenter(stubSegmenter(t, rows))
	return runner
}

func writeSource(t *testing.T, cfg *config.Config) string {
	t.Helper()
	source := filepath.Join(cfg.Paths.WorkDir, "show.wav")
	testsupport.WriteFile(t, source, 64)
	return source
}

func allOutputs() config.Outputs {
	return config.Outputs{Concatenated: true, Synchronized: true, Stereo: true, Archives: true}
}

func TestRunProducesAllArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	rows := "male\t0\t3\nfemale\t3\t5\nmale\t7\t10\n"
	runner := newTestRunner(t, cfg, store, rows, "")
	source := writeSource(t, cfg)

	report, err := runner.Run(context.Background(), runs.Options{Source: source, Outputs: allOutputs()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected a run ID")
	}
	if report.SegmentCount != 3 {
		t.Fatalf("SegmentCount = %d, want 3", report.SegmentCount)
	}
	if report.SampleRate != testRate {
		t.Fatalf("SampleRate = %d, want %d", report.SampleRate, testRate)
	}

	for _, label := range []segment.Label{segment.LabelMale, segment.LabelFemale} {
		entry := report.LabelFor(label)
		if entry.Synchronized == "" {
			t.Fatalf("%s: missing synchronized track", label)
		}
		if entry.Concatenated == "" {
			t.Fatalf("%s: missing concatenated track", label)
		}
		if entry.Archive == "" {
			t.Fatalf("%s: missing archive", label)
		}
		for _, path := range []string{entry.Synchronized, entry.Concatenated, entry.Archive} {
			if _, statErr := os.Stat(path); statErr != nil {
				t.Fatalf("%s artifact missing on disk: %v", label, statErr)
			}
		}
	}
	if report.Stereo == "" {
		t.Fatal("expected stereo mix path")
	}
	if _, err := os.Stat(report.Stereo); err != nil {
		t.Fatalf("stereo mix missing on disk: %v", err)
	}

	// The segmentation export must outlive run-scratch cleanup: both the CSV
	// and JSON forms land in the output dir and stay there.
	for _, path := range []string{report.SegmentationCSV, report.SegmentationJSON} {
		if path == "" {
			t.Fatal("expected persisted segmentation export paths")
		}
		if filepath.Dir(path) != cfg.Paths.OutputDir {
			t.Fatalf("segmentation export %s should live in the output dir", path)
		}
		if _, statErr := os.Stat(path); statErr != nil {
			t.Fatalf("segmentation export missing after run: %v", statErr)
		}
	}
	persisted, err := segment.ReadFile(report.SegmentationCSV)
	if err != nil {
		t.Fatalf("reload persisted segmentation: %v", err)
	}
	if len(persisted) != 3 {
		t.Fatalf("persisted segmentation has %d segments, want 3", len(persisted))
	}

	stored, err := store.GetRun(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if stored.Status != runstore.StatusCompleted {
		t.Fatalf("stored status = %q, want %q", stored.Status, runstore.StatusCompleted)
	}
	artifacts, err := store.Artifacts(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("Artifacts: %v", err)
	}
	if len(artifacts) == 0 {
		t.Fatal("expected recorded artifacts")
	}
	segmentation := 0
	for _, artifact := range artifacts {
		if artifact.Kind != runs.KindSegmentation {
			continue
		}
		segmentation++
		if _, statErr := os.Stat(artifact.Path); statErr != nil {
			t.Fatalf("recorded segmentation artifact %s does not exist: %v", artifact.Path, statErr)
		}
	}
	if segmentation != 2 {
		t.Fatalf("expected CSV and JSON segmentation artifacts, got %d", segmentation)
	}
}

func TestRunMissingSourceIsInputError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := newTestRunner(t, cfg, nil, "", "")

	_, err := runner.Run(context.Background(), runs.Options{
		Source:  filepath.Join(cfg.Paths.WorkDir, "absent.wav"),
		Outputs: allOutputs(),
	})
	if !errors.Is(err, runs.ErrInput) {
		t.Fatalf("err = %v, want ErrInput", err)
	}
}

func TestRunOverlappingSegmentsAbort(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rows := "male\t0\t5\nfemale\t4\t8\n"
	runner := newTestRunner(t, cfg, nil, rows, "")
	source := writeSource(t, cfg)

	_, err := runner.Run(context.Background(), runs.Options{Source: source, Outputs: allOutputs()})
	if !errors.Is(err, segment.ErrStructural) {
		t.Fatalf("err = %v, want ErrStructural", err)
	}
}

func TestRunContainsSliceFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rows := "male\t0\t3\nfemale\t3\t5\nmale\t7\t10\n"
	runner := newTestRunner(t, cfg, nil, rows, "7.000")
	source := writeSource(t, cfg)

	report, err := runner.Run(context.Background(), runs.Options{
		Source:  source,
		Outputs: config.Outputs{Concatenated: true},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	male := report.LabelFor(segment.LabelMale)
	if male.Attempted != 2 || male.Succeeded != 1 {
		t.Fatalf("male attempted/succeeded = %d/%d, want 2/1", male.Attempted, male.Succeeded)
	}
	if len(male.Failures) != 1 {
		t.Fatalf("male failures = %d, want 1", len(male.Failures))
	}
	if male.Concatenated == "" {
		t.Fatal("male concatenated track should still be produced from surviving segments")
	}
	if report.FailedSlices() != 1 {
		t.Fatalf("FailedSlices = %d, want 1", report.FailedSlices())
	}

	female := report.LabelFor(segment.LabelFemale)
	if len(female.Failures) != 0 || female.Concatenated == "" {
		t.Fatalf("female label should be unaffected: %+v", female)
	}
}

func TestRunAbsentLabelStillGetsSynchronizedTrack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rows := "male\t0\t10\n"
	runner := newTestRunner(t, cfg, nil, rows, "")
	source := writeSource(t, cfg)

	report, err := runner.Run(context.Background(), runs.Options{Source: source, Outputs: allOutputs()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	female := report.LabelFor(segment.LabelFemale)
	if !female.Absent {
		t.Fatal("female should be reported absent")
	}
	if female.Concatenated != "" || female.Archive != "" {
		t.Fatalf("absent label must not produce extraction artifacts: %+v", female)
	}
	if female.Synchronized == "" {
		t.Fatal("absent label still gets a synchronized (silent) track")
	}
}

func TestRunReusesExistingSegmentationCSV(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := newTestRunner(t, cfg, nil, "", "")
	source := writeSource(t, cfg)

	csvPath := filepath.Join(t.TempDir(), "precomputed.csv")
	content := "labels\tstart\tstop\nmale\t0\t6\nfemale\t6\t10\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	report, err := runner.Run(context.Background(), runs.Options{
		Source:      source,
		SegmentsCSV: csvPath,
		Outputs:     config.Outputs{Synchronized: true},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.SegmentCount != 2 {
		t.Fatalf("SegmentCount = %d, want 2", report.SegmentCount)
	}
	// The run re-exports into the output dir rather than pointing at the
	// caller's file.
	if filepath.Dir(report.SegmentationCSV) != cfg.Paths.OutputDir {
		t.Fatalf("SegmentationCSV = %q, want a path in %q", report.SegmentationCSV, cfg.Paths.OutputDir)
	}
	if _, err := os.Stat(report.SegmentationCSV); err != nil {
		t.Fatalf("persisted segmentation missing: %v", err)
	}
}

func TestRunReusesExistingSegmentationJSON(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := newTestRunner(t, cfg, nil, "", "")
	source := writeSource(t, cfg)

	jsonPath := filepath.Join(t.TempDir(), "precomputed.json")
	content := `[{"label":"male","start":0,"stop":6},{"label":"female","start":6,"stop":10}]`
	if err := os.WriteFile(jsonPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}

	report, err := runner.Run(context.Background(), runs.Options{
		Source:      source,
		SegmentsCSV: jsonPath,
		Outputs:     config.Outputs{Synchronized: true},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.SegmentCount != 2 {
		t.Fatalf("SegmentCount = %d, want 2", report.SegmentCount)
	}
	if report.LabelFor(segment.LabelFemale).Synchronized == "" {
		t.Fatal("expected synchronized female track from JSON segmentation")
	}
}

func TestRunSegmenterFailureIsInputError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := runs.NewRunner(cfg, logging.NewNop(), nil)
	runner.WithProbe(stubProbe(testDuration))
	runner.WithMediaClient(stubMediaClient(""))
	svc := segmenter.NewService(segmenter.Config{Command: "ina_speech_segmenter"})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return fmt.Errorf("exit status 1")
	})
	runner.WithSegmenter(svc)
	source := writeSource(t, cfg)

	_, err := runner.Run(context.Background(), runs.Options{Source: source, Outputs: allOutputs()})
	if !errors.Is(err, runs.ErrInput) {
		t.Fatalf("err = %v, want ErrInput", err)
	}
}
