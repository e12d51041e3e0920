// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe and returns a parsed Result; helper methods on
// Result give convenient access to the container duration and the first
// audio stream's sample rate and channel count, which is what the
// reconstruction pipeline needs to size its sample buffers.
package ffprobe
