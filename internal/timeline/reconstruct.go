package timeline

import (
	"errors"
	"fmt"

	"splitcast/internal/pcm"
	"splitcast/internal/segment"
)

// ErrDurationMismatch marks a reconstructed track whose length diverged from
// the recording. It signals a defect in the engine, never a user error, and
// must abort rather than pad or truncate.
var ErrDurationMismatch = errors.New("duration mismatch")

// Reconstruct walks the segmentation once and builds a synchronized track
// per requested label. Every accumulator advances by the same frame count at
// every step, audio for the matching label and silence for the rest, which
// is what guarantees the tracks come out recording-length by construction.
//
// An empty list yields full-duration silence for every label. A label with
// no segments likewise yields full-duration silence. Segment stops past the
// end of the recording are clamped; a segment starting before the cursor is
// a structural violation and aborts the pass.
func Reconstruct(list segment.List, rec *pcm.Buffer, labels []segment.Label) (map[segment.Label]*pcm.Buffer, error) {
	if rec == nil {
		return nil, errors.New("reconstruct: nil recording")
	}
	if len(labels) == 0 {
		return nil, errors.New("reconstruct: no labels requested")
	}
	if err := list.Validate(); err != nil {
		return nil, err
	}

	tracks := make(map[segment.Label]*pcm.Buffer, len(labels))
	for _, label := range labels {
		track, err := pcm.New(rec.Rate(), rec.Channels())
		if err != nil {
			return nil, err
		}
		tracks[label] = track
	}

	total := rec.Frames()
	var cursor int64

	for i, seg := range list {
		start := rec.FrameAt(seg.Start)
		stop := rec.FrameAt(seg.Stop)
		if start > total {
			start = total
		}
		if stop > total {
			stop = total
		}
		if start < cursor {
			return nil, fmt.Errorf("%w: segment %d (%s) regresses behind cursor frame %d", segment.ErrStructural, i, seg.TimeRange(), cursor)
		}

		// Unlabeled gap before this segment is silent on every track.
		if gap := start - cursor; gap > 0 {
			for _, track := range tracks {
				track.AppendSilence(gap)
			}
			cursor = start
		}

		dur := stop - start
		for label, track := range tracks {
			if label == seg.Label {
				if err := track.AppendFrames(rec, start, stop); err != nil {
					return nil, fmt.Errorf("segment %d: %w", i, err)
				}
			} else {
				track.AppendSilence(dur)
			}
		}
		cursor = stop
	}

	if tail := total - cursor; tail > 0 {
		for _, track := range tracks {
			track.AppendSilence(tail)
		}
	}

	for label, track := range tracks {
		diff := track.Frames() - total
		if diff < -1 || diff > 1 {
			return nil, fmt.Errorf("%w: track %q has %d frames, recording has %d", ErrDurationMismatch, label, track.Frames(), total)
		}
	}
	return tracks, nil
}

// CheckDurations verifies two tracks agree in length within one frame, the
// precondition for a stereo merge.
func CheckDurations(a, b *pcm.Buffer) error {
	diff := a.Frames() - b.Frames()
	if diff < -1 || diff > 1 {
		return fmt.Errorf("%w: %d frames vs %d frames", ErrDurationMismatch, a.Frames(), b.Frames())
	}
	return nil
}

// CheckDurationSeconds verifies two durations agree within one sample frame
// at the given rate. Used when the tracks being merged live on disk and only
// their probed durations are known.
func CheckDurationSeconds(a, b float64, rate int) error {
	if rate <= 0 {
		return fmt.Errorf("duration check: invalid sample rate %d", rate)
	}
	tolerance := 1.0 / float64(rate)
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return fmt.Errorf("%w: %.6fs vs %.6fs", ErrDurationMismatch, a, b)
	}
	return nil
}
