// Package timeline implements the reconstruction engine: a single
// chronological pass over a segmentation that emits one recording-length
// track per speaker label, with the original audio where that label is
// active and silence everywhere else.
//
// The engine works in lock step: at every step each track accumulator
// advances by exactly the same number of frames, differing only in whether
// those frames are copied audio or silence. Duration equality across tracks
// therefore holds by construction; the postcondition check exists to fail
// loudly if that ever stops being true.
package timeline
