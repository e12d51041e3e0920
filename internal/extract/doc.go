// Package extract derives compact per-speaker tracks from a segmentation:
// every segment carrying the requested label is sliced out of the recording
// and the clips are concatenated in chronological order, with no silence
// filling.
//
// Slicing runs on a bounded worker pool since the per-segment calls are
// independent; each worker writes to its own pre-sized result slot, so the
// final concatenation order never depends on completion order. A failed
// slice is skipped and summarized rather than aborting the extraction.
package extract
