// Package segment defines the labeled time-interval model produced by the
// speech segmentation source and consumed by the reconstruction engine.
//
// A List is the chronological record of (label, start, stop) intervals for
// one recording. Validate enforces the structural contract downstream code
// depends on: well-formed intervals, ascending starts, no overlap. Gaps are
// legal and stand for unlabeled silence.
//
// The CSV codec reads and writes the segmenter's tab-separated export format
// so runs can persist and replay segmentations without re-running the
// classifier.
package segment
