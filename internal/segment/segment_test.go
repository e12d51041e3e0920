package segment

import (
	"errors"
	"testing"
)

func TestValidateAcceptsGaps(t *testing.T) {
	list := List{
		{Label: LabelMale, Start: 0, Stop: 3},
		{Label: LabelFemale, Start: 3, Stop: 5},
		{Label: LabelMale, Start: 7, Stop: 10},
	}
	if err := list.Validate(); err != nil {
		t.Fatalf("expected valid list, got %v", err)
	}
}

func TestValidateEmptyList(t *testing.T) {
	if err := (List{}).Validate(); err != nil {
		t.Fatalf("empty list should validate, got %v", err)
	}
}

func TestValidateRejectsOverlap(t *testing.T) {
	list := List{
		{Label: LabelMale, Start: 0, Stop: 5},
		{Label: LabelFemale, Start: 3, Stop: 8},
	}
	err := list.Validate()
	if !errors.Is(err, ErrStructural) {
		t.Fatalf("expected ErrStructural, got %v", err)
	}
}

func TestValidateRejectsOutOfOrder(t *testing.T) {
	list := List{
		{Label: LabelMale, Start: 5, Stop: 6},
		{Label: LabelFemale, Start: 1, Stop: 2},
	}
	if err := list.Validate(); !errors.Is(err, ErrStructural) {
		t.Fatalf("expected ErrStructural, got %v", err)
	}
}

func TestValidateRejectsInvertedSegment(t *testing.T) {
	list := List{{Label: LabelMale, Start: 4, Stop: 4}}
	if err := list.Validate(); !errors.Is(err, ErrStructural) {
		t.Fatalf("expected ErrStructural for zero-length segment, got %v", err)
	}
}

func TestParseLabelUnknownIsOther(t *testing.T) {
	if got := ParseLabel("speech_overlap"); got != LabelOther {
		t.Fatalf("expected LabelOther, got %q", got)
	}
	if got := ParseLabel("male"); got != LabelMale {
		t.Fatalf("expected LabelMale, got %q", got)
	}
}

func TestForLabelPreservesOrder(t *testing.T) {
	list := List{
		{Label: LabelMale, Start: 0, Stop: 1},
		{Label: LabelFemale, Start: 1, Stop: 2},
		{Label: LabelMale, Start: 2, Stop: 3},
	}
	male := list.ForLabel(LabelMale)
	if len(male) != 2 {
		t.Fatalf("expected 2 male segments, got %d", len(male))
	}
	if male[0].Start != 0 || male[1].Start != 2 {
		t.Fatalf("order not preserved: %+v", male)
	}
	if got := list.ForLabel(LabelMusic); got != nil {
		t.Fatalf("expected nil for absent label, got %+v", got)
	}
}

func TestLabelsFirstAppearanceOrder(t *testing.T) {
	list := List{
		{Label: LabelNoEnergy, Start: 0, Stop: 1},
		{Label: LabelMale, Start: 1, Stop: 2},
		{Label: LabelNoEnergy, Start: 2, Stop: 3},
		{Label: LabelFemale, Start: 3, Stop: 4},
	}
	labels := list.Labels()
	want := []Label{LabelNoEnergy, LabelMale, LabelFemale}
	if len(labels) != len(want) {
		t.Fatalf("expected %d labels, got %d", len(want), len(labels))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestTotalDurationExcludesGaps(t *testing.T) {
	list := List{
		{Label: LabelMale, Start: 0, Stop: 3},
		{Label: LabelMale, Start: 7, Stop: 10},
	}
	if got := list.TotalDuration(); got != 6 {
		t.Fatalf("expected 6, got %v", got)
	}
}
