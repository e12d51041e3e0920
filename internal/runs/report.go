package runs

import (
	"time"

	"splitcast/internal/extract"
	"splitcast/internal/segment"
)

// Artifact kinds recorded on reports and in the run store.
const (
	KindConcatenated = "concatenated"
	KindSynchronized = "synchronized"
	KindStereo       = "stereo"
	KindArchive      = "archive"
	KindSegmentation = "segmentation"
)

// LabelReport describes one voice label's outcome within a run.
type LabelReport struct {
	Label        segment.Label
	Synchronized string
	Concatenated string
	Archive      string
	// Absent is set when the label never occurs in the segmentation, so no
	// concatenated track or archive could exist. The synchronized track is
	// still produced (pure silence).
	Absent    bool
	Attempted int
	Succeeded int
	Failures  []extract.SliceFailure
	// Err carries a contained extraction-level failure (e.g. concatenation)
	// that did not abort the rest of the run.
	Err string
}

// Report summarizes a completed run: which artifacts were produced per
// label, which were skipped, and which segments failed extraction.
type Report struct {
	RunID            string
	Source           string
	Duration         float64
	SampleRate       int
	SegmentCount     int
	SegmentationCSV  string
	SegmentationJSON string
	Stereo           string
	Labels           []LabelReport
	StartedAt        time.Time
	FinishedAt       time.Time
}

// FailedSlices returns the total count of failed segment slices.
func (r *Report) FailedSlices() int {
	total := 0
	for _, lr := range r.Labels {
		total += len(lr.Failures)
	}
	return total
}

// LabelFor returns the report entry for a label, creating it if needed.
func (r *Report) LabelFor(label segment.Label) *LabelReport {
	for i := range r.Labels {
		if r.Labels[i].Label == label {
			return &r.Labels[i]
		}
	}
	r.Labels = append(r.Labels, LabelReport{Label: label})
	return &r.Labels[len(r.Labels)-1]
}
