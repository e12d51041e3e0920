package segment

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCSVWithHeader(t *testing.T) {
	input := "labels\tstart\tstop\nmale\t0\t3.25\nfemale\t3.25\t5\nnoEnergy\t5\t7.5\n"
	list, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(list))
	}
	if list[0].Label != LabelMale || list[0].Stop != 3.25 {
		t.Fatalf("unexpected first segment: %+v", list[0])
	}
	if list[2].Label != LabelNoEnergy {
		t.Fatalf("expected noEnergy, got %q", list[2].Label)
	}
}

func TestReadCSVWithoutHeader(t *testing.T) {
	list, err := ReadCSV(strings.NewReader("male\t0\t1\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(list))
	}
}

func TestReadCSVRejectsMalformedRow(t *testing.T) {
	input := "labels\tstart\tstop\nmale\tzero\t1\n"
	if _, err := ReadCSV(strings.NewReader(input)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	list := List{
		{Label: LabelMale, Start: 0, Stop: 3},
		{Label: LabelFemale, Start: 3, Stop: 5.5},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, list); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got) != len(list) {
		t.Fatalf("expected %d segments, got %d", len(list), len(got))
	}
	for i := range list {
		if got[i] != list[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, got[i], list[i])
		}
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	list := List{
		{Label: LabelMale, Start: 0, Stop: 2.25},
		{Label: LabelNoise, Start: 2.25, Stop: 4},
	}
	path := filepath.Join(t.TempDir(), "segments.csv")
	if err := WriteFile(path, list); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(loaded) != len(list) {
		t.Fatalf("got %d segments, want %d", len(loaded), len(list))
	}
	for i := range list {
		if loaded[i] != list[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, loaded[i], list[i])
		}
	}
}
