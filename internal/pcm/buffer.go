package pcm

import (
	"fmt"
	"math"
)

const bytesPerSample = 2 // signed 16-bit little-endian

// Buffer holds interleaved 16-bit PCM frames at a fixed sample rate and
// channel count. It is the in-memory form of both the source recording and
// every reconstructed track.
type Buffer struct {
	rate     int
	channels int
	data     []byte
}

// New returns an empty buffer ready to accumulate frames.
func New(rate, channels int) (*Buffer, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("pcm: invalid sample rate %d", rate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("pcm: invalid channel count %d", channels)
	}
	return &Buffer{rate: rate, channels: channels}, nil
}

// FromData wraps decoded raw samples in a buffer. The data length must be a
// whole number of frames.
func FromData(rate, channels int, data []byte) (*Buffer, error) {
	buf, err := New(rate, channels)
	if err != nil {
		return nil, err
	}
	if len(data)%buf.FrameSize() != 0 {
		return nil, fmt.Errorf("pcm: %d bytes is not a whole number of %d-byte frames", len(data), buf.FrameSize())
	}
	buf.data = data
	return buf, nil
}

// Rate returns the sample rate in Hz.
func (b *Buffer) Rate() int { return b.rate }

// Channels returns the interleaved channel count.
func (b *Buffer) Channels() int { return b.channels }

// FrameSize returns the byte width of one interleaved frame.
func (b *Buffer) FrameSize() int { return b.channels * bytesPerSample }

// Frames returns the number of whole frames held.
func (b *Buffer) Frames() int64 { return int64(len(b.data) / b.FrameSize()) }

// Duration returns the buffered audio length in seconds.
func (b *Buffer) Duration() float64 { return float64(b.Frames()) / float64(b.rate) }

// Bytes exposes the raw interleaved samples.
func (b *Buffer) Bytes() []byte { return b.data }

// FrameAt converts a time offset in seconds to a frame index, rounding to
// the nearest frame and clamping below zero.
func (b *Buffer) FrameAt(seconds float64) int64 {
	frame := int64(math.Round(seconds * float64(b.rate)))
	if frame < 0 {
		return 0
	}
	return frame
}

// AppendSilence appends the given number of zeroed frames.
func (b *Buffer) AppendSilence(frames int64) {
	if frames <= 0 {
		return
	}
	b.data = append(b.data, make([]byte, frames*int64(b.FrameSize()))...)
}

// AppendFrames copies frames [start, stop) from src. The range is clamped to
// src's length; rate and channel layout must match.
func (b *Buffer) AppendFrames(src *Buffer, start, stop int64) error {
	if src.rate != b.rate || src.channels != b.channels {
		return fmt.Errorf("pcm: source format %dHz/%dch does not match %dHz/%dch", src.rate, src.channels, b.rate, b.channels)
	}
	if start < 0 {
		start = 0
	}
	if stop > src.Frames() {
		stop = src.Frames()
	}
	if stop <= start {
		return nil
	}
	size := int64(b.FrameSize())
	b.data = append(b.data, src.data[start*size:stop*size]...)
	return nil
}

// Silent reports whether every sample in frames [start, stop) is zero. The
// range is clamped to the buffer; an empty or inverted range counts as silent.
func (b *Buffer) Silent(start, stop int64) bool {
	size := int64(b.FrameSize())
	if start < 0 {
		start = 0
	}
	if start > b.Frames() {
		start = b.Frames()
	}
	if stop > b.Frames() {
		stop = b.Frames()
	}
	if stop < start {
		stop = start
	}
	for _, by := range b.data[start*size : stop*size] {
		if by != 0 {
			return false
		}
	}
	return true
}
