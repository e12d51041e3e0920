package segment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStructural marks a segmentation that violates the structural contract:
// segments out of chronological order or overlapping in time. Callers must
// abort rather than attempt a resolution.
var ErrStructural = errors.New("structural violation")

// Label identifies the classifier category a segment belongs to. The set is
// closed so that new classifier outputs surface as LabelOther instead of
// silently matching a catch-all string branch.
type Label string

const (
	LabelMale     Label = "male"
	LabelFemale   Label = "female"
	LabelNoEnergy Label = "noEnergy"
	LabelNoise    Label = "noise"
	LabelMusic    Label = "music"
	LabelOther    Label = "other"
)

// ParseLabel maps a raw classifier string to a Label. Unknown strings map to
// LabelOther; they are accounted for as silence but never matched to a track.
func ParseLabel(raw string) Label {
	switch strings.TrimSpace(raw) {
	case string(LabelMale):
		return LabelMale
	case string(LabelFemale):
		return LabelFemale
	case string(LabelNoEnergy):
		return LabelNoEnergy
	case string(LabelNoise):
		return LabelNoise
	case string(LabelMusic):
		return LabelMusic
	default:
		return LabelOther
	}
}

// Voice reports whether the label represents a speaker whose audio should be
// routed to its own track.
func (l Label) Voice() bool {
	return l == LabelMale || l == LabelFemale
}

// Segment is one labeled time interval from the segmentation source.
type Segment struct {
	Label Label   `json:"label"`
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
}

// Duration returns the interval length in seconds.
func (s Segment) Duration() float64 {
	return s.Stop - s.Start
}

// TimeRange formats the interval for reports and failure summaries.
func (s Segment) TimeRange() string {
	return fmt.Sprintf("%.3fs-%.3fs", s.Start, s.Stop)
}

func (s Segment) validate(index int) error {
	if s.Start < 0 {
		return fmt.Errorf("%w: segment %d starts at %.3f before zero", ErrStructural, index, s.Start)
	}
	if s.Stop <= s.Start {
		return fmt.Errorf("%w: segment %d has stop %.3f at or before start %.3f", ErrStructural, index, s.Stop, s.Start)
	}
	return nil
}

// List is the chronological record of classifier output for one recording.
// It is created once per run and treated as immutable afterwards.
type List []Segment

// Validate checks the structural contract the reconstruction engine relies
// on: every segment well formed, ascending starts, and no overlap. Gaps
// between segments are legal and represent unlabeled silence.
func (l List) Validate() error {
	for i, seg := range l {
		if err := seg.validate(i); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		prev := l[i-1]
		if seg.Start < prev.Start {
			return fmt.Errorf("%w: segment %d (%s) starts before segment %d (%s)", ErrStructural, i, seg.TimeRange(), i-1, prev.TimeRange())
		}
		if seg.Start < prev.Stop {
			return fmt.Errorf("%w: segment %d (%s) overlaps segment %d (%s)", ErrStructural, i, seg.TimeRange(), i-1, prev.TimeRange())
		}
	}
	return nil
}

// ForLabel returns the segments carrying the given label, preserving
// chronological order.
func (l List) ForLabel(label Label) List {
	var out List
	for _, seg := range l {
		if seg.Label == label {
			out = append(out, seg)
		}
	}
	return out
}

// Labels returns the distinct labels present, in order of first appearance.
func (l List) Labels() []Label {
	seen := make(map[Label]struct{}, 4)
	var out []Label
	for _, seg := range l {
		if _, ok := seen[seg.Label]; ok {
			continue
		}
		seen[seg.Label] = struct{}{}
		out = append(out, seg.Label)
	}
	return out
}

// TotalDuration sums the labeled interval durations. Gaps are not included.
func (l List) TotalDuration() float64 {
	var total float64
	for _, seg := range l {
		total += seg.Duration()
	}
	return total
}
