// Package ffmpeg wraps the ffmpeg binary as the pipeline's media
// collaborator. The Client covers the four capabilities the core needs:
// stream-copy slicing of time ranges, concat-demuxer joining, amerge stereo
// mixing, and raw s16le decode/encode so the reconstruction engine can work
// in sample space. The command runner is injectable for tests.
package ffmpeg
