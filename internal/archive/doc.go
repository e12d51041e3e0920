// Package archive packages a label's raw segment clips into a single zip
// deliverable. The format only has to round-trip byte-identically; zip with
// deflate is used because every consumer can open it.
package archive
