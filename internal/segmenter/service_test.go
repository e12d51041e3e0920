package segmenter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"splitcast/internal/segment"
)

func TestSegmentRunsCommandAndParsesOutput(t *testing.T) {
	outDir := t.TempDir()
	svc := NewService(Config{Command: "segmenter-bin", ExtraArgs: []string{"-g", "true"}})

	var gotName string
	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		csv := "labels\tstart\tstop\nmale\t0\t3\nfemale\t3\t5\n"
		return os.WriteFile(filepath.Join(outDir, "episode.csv"), []byte(csv), 0o644)
	})

	list, csvPath, err := svc.Segment(context.Background(), "/audio/episode.wav", outDir)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if gotName != "segmenter-bin" {
		t.Fatalf("command = %q", gotName)
	}
	if len(gotArgs) != 6 || gotArgs[0] != "-g" || gotArgs[2] != "-i" || gotArgs[3] != "/audio/episode.wav" {
		t.Fatalf("unexpected args %v", gotArgs)
	}
	if filepath.Base(csvPath) != "episode.csv" {
		t.Fatalf("csv path = %s", csvPath)
	}
	if len(list) != 2 || list[1].Label != segment.LabelFemale {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestSegmentRejectsStructurallyInvalidOutput(t *testing.T) {
	outDir := t.TempDir()
	svc := NewService(Config{Command: "segmenter-bin"})
	svc.WithCommandRunner(func(_ context.Context, _ string, _ ...string) error {
		csv := "labels\tstart\tstop\nmale\t0\t5\nfemale\t3\t8\n"
		return os.WriteFile(filepath.Join(outDir, "in.csv"), []byte(csv), 0o644)
	})

	_, _, err := svc.Segment(context.Background(), "/audio/in.wav", outDir)
	if !errors.Is(err, segment.ErrStructural) {
		t.Fatalf("expected ErrStructural, got %v", err)
	}
}

func TestSegmentCommandFailure(t *testing.T) {
	svc := NewService(Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("model load failed")
	})
	if _, _, err := svc.Segment(context.Background(), "in.wav", t.TempDir()); err == nil {
		t.Fatal("expected command failure to surface")
	}
}

func TestSegmentRequiresSource(t *testing.T) {
	svc := NewService(Config{})
	if _, _, err := svc.Segment(context.Background(), "  ", t.TempDir()); err == nil {
		t.Fatal("expected error for empty source")
	}
}
