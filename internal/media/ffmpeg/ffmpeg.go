package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"splitcast/internal/pcm"
)

// CommandRunner executes an external command and returns its stdout. The
// default runner shells out; tests inject their own.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Client wraps the ffmpeg binary as the pipeline's media collaborator:
// slicing, concatenation, channel merging, and raw PCM decode/encode.
type Client struct {
	binary string
	runner CommandRunner
}

// New creates a client for the given ffmpeg binary name.
func New(binary string) *Client {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Client{binary: binary, runner: runCommand}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *Client) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		c.runner = runner
	}
}

// Slice copies the [start, stop) range of source into dest without
// re-encoding.
func (c *Client) Slice(ctx context.Context, source string, start, stop float64, dest string) error {
	if stop <= start {
		return fmt.Errorf("ffmpeg slice: invalid range %v-%v", start, stop)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-ss", formatSeconds(start),
		"-to", formatSeconds(stop),
		"-c", "copy",
		dest,
	}
	if _, err := c.runner(ctx, c.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg slice %s-%s: %w", formatSeconds(start), formatSeconds(stop), err)
	}
	return nil
}

// Concat joins the clips into dest, in the order given, using the concat
// demuxer. The list file is written next to dest and removed on success.
func (c *Client) Concat(ctx context.Context, clips []string, dest string) error {
	if len(clips) == 0 {
		return errors.New("ffmpeg concat: no clips")
	}
	listPath := dest + ".list"
	var list bytes.Buffer
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return fmt.Errorf("ffmpeg concat: resolve %s: %w", clip, err)
		}
		fmt.Fprintf(&list, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	if err := os.WriteFile(listPath, list.Bytes(), 0o644); err != nil {
		return fmt.Errorf("ffmpeg concat: write list: %w", err)
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		dest,
	}
	if _, err := c.runner(ctx, c.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg concat: %w", err)
	}
	_ = os.Remove(listPath)
	return nil
}

// MergeChannels merges two mono-compatible tracks into a single stereo file,
// left on the first channel and right on the second.
func (c *Client) MergeChannels(ctx context.Context, left, right, dest string) error {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", left,
		"-i", right,
		"-filter_complex", "[0:a][1:a]amerge=inputs=2[aout]",
		"-map", "[aout]",
		"-ac", "2",
		dest,
	}
	if _, err := c.runner(ctx, c.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg merge: %w", err)
	}
	return nil
}

// DecodePCM decodes source into raw interleaved s16le samples at the given
// rate and channel count.
func (c *Client) DecodePCM(ctx context.Context, source string, rate, channels int) (*pcm.Buffer, error) {
	if rate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("ffmpeg decode: invalid format %dHz/%dch", rate, channels)
	}
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(rate),
		"-ac", strconv.Itoa(channels),
		"-",
	}
	data, err := c.runner(ctx, c.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w", err)
	}
	buf, err := pcm.FromData(rate, channels, data)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w", err)
	}
	return buf, nil
}

// EncodeWAV writes the buffer's samples to dest as a PCM WAV file. The raw
// samples are staged in a temp file beside dest so ffmpeg can read them with
// an explicit input format.
func (c *Client) EncodeWAV(ctx context.Context, buf *pcm.Buffer, dest string) error {
	if buf == nil {
		return errors.New("ffmpeg encode: nil buffer")
	}
	raw, err := os.CreateTemp(filepath.Dir(dest), ".splitcast-raw-*.pcm")
	if err != nil {
		return fmt.Errorf("ffmpeg encode: stage raw samples: %w", err)
	}
	rawPath := raw.Name()
	defer os.Remove(rawPath)
	if _, err := raw.Write(buf.Bytes()); err != nil {
		raw.Close()
		return fmt.Errorf("ffmpeg encode: write raw samples: %w", err)
	}
	if err := raw.Close(); err != nil {
		return fmt.Errorf("ffmpeg encode: close raw samples: %w", err)
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(buf.Rate()),
		"-ac", strconv.Itoa(buf.Channels()),
		"-i", rawPath,
		"-c:a", "pcm_s16le",
		dest,
	}
	if _, err := c.runner(ctx, c.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg encode: %w", err)
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
