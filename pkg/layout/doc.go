// Package layout fits greeting text into a bounding box.
//
// [Fit] searches for the largest font size at which a greedy word wrap of
// the text stays inside the box. The search starts from an estimate derived
// from the box area and the text length, then shrinks by a fixed step:
//
//	size₀ = ⌊√⌊W·H / len(text)⌋ · coefficient⌋
//
// At each size the words are appended one at a time (each followed by a
// space). A word that would make the block wider than the box starts a new
// line; a word that would make the block taller than the box abandons the
// size. Width overflow never shrinks the font, so a single word wider than
// the box is kept on its own line.
//
// The search is bounded below by Options.MinSize. When no size at or above
// the floor fits, Fit fails with a LAYOUT_ERROR instead of degenerating to
// microscopic or negative sizes.
//
// Measurement uses [github.com/fogleman/gg] multi-line metrics: a block of n
// lines is n·h·spacing − (spacing−1)·h tall, where h is the face's line
// height, and as wide as its widest line. [Block] places the same block on a
// canvas according to an [Anchor] and per-line [Align]ment.
package layout
