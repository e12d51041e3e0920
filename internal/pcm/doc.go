// Package pcm provides the raw sample buffer the reconstruction engine
// operates on: interleaved signed 16-bit little-endian frames at a fixed
// rate and channel count. Keeping the core in sample space makes the
// duration invariant checkable exactly, without touching a codec.
package pcm
