// Command splitcast separates podcast recordings into per-speaker audio
// tracks. It drives an external speaker segmenter for labeling, ffmpeg for
// slicing and encoding, and keeps a local history of runs and the artifacts
// they produced.
package main
