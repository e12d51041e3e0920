// Package runs orchestrates the separation pipeline for a single recording:
// probing, segmentation, timeline reconstruction, segment extraction, and
// archival. It classifies failures into fatal input/structural errors that
// abort a run and contained per-segment failures that are summarized on the
// run report, and records produced artifacts in the run history store.
package runs
