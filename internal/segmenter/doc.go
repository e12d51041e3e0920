// Package segmenter wraps the external speech segmentation command that
// classifies a recording into labeled (label, start, stop) intervals. The
// classifier's accuracy is its own business; this package only shells out,
// locates the tab-separated export, and validates its structural shape.
package segmenter
