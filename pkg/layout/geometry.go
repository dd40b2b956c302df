package layout

import (
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

// Align justifies the lines of a block relative to each other.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Validate reports whether a is a known alignment.
func (a Align) Validate() error {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidTemplate, "unknown align %q (want left, center or right)", string(a))
}

func (a Align) fraction() float64 {
	switch a {
	case AlignCenter:
		return 0.5
	case AlignRight:
		return 1
	}
	return 0
}

// Anchor is a two-letter code locating the reference point of a block.
// The first letter is horizontal (l, m, r), the second vertical
// (a or t for top, m for middle, s, b or d for bottom). "mm" centers the
// block on the text position.
type Anchor string

// Validate reports whether a is a well-formed anchor.
func (a Anchor) Validate() error {
	if len(a) != 2 || !strings.ContainsRune("lmr", rune(a[0])) || !strings.ContainsRune("atmsbd", rune(a[1])) {
		return errors.New(errors.ErrCodeInvalidTemplate, "invalid anchor %q (want e.g. mm, la, rd)", string(a))
	}
	return nil
}

// fractions returns the anchor's position inside the block as fractions of
// its width and height.
func (a Anchor) fractions() (fx, fy float64) {
	switch a[0] {
	case 'm':
		fx = 0.5
	case 'r':
		fx = 1
	}
	switch a[1] {
	case 'm':
		fy = 0.5
	case 's', 'b', 'd':
		fy = 1
	}
	return fx, fy
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// Line is one positioned line of a block. X is the left edge, Y the baseline.
type Line struct {
	Text string
	X, Y float64
}

// measurer measures multi-line strings with a scratch gg context.
type measurer struct {
	dc      *gg.Context
	spacing float64
}

func newMeasurer(spacing float64) *measurer {
	return &measurer{dc: gg.NewContext(1, 1), spacing: spacing}
}

func (m *measurer) setFace(face font.Face) {
	m.dc.SetFontFace(face)
}

func (m *measurer) measure(text string) (w, h float64) {
	return m.dc.MeasureMultilineString(text, m.spacing)
}

// Measure returns the width and height of the multi-line text block.
func Measure(face font.Face, text string, spacing float64) (w, h float64) {
	m := newMeasurer(spacing)
	m.setFace(face)
	return m.measure(text)
}

// Block lays out text anchored at (x, y) and returns its lines and bounds.
func Block(face font.Face, text string, spacing float64, align Align, anchor Anchor, x, y float64) ([]Line, Rect) {
	m := newMeasurer(spacing)
	m.setFace(face)
	w, h := m.measure(text)

	fx, fy := anchor.fractions()
	bounds := Rect{X: x - fx*w, Y: y - fy*h, Width: w, Height: h}

	metrics := face.Metrics()
	lineHeight := float64(metrics.Height) / 64
	ascent := float64(metrics.Ascent) / 64

	parts := strings.Split(text, "\n")
	lines := make([]Line, len(parts))
	for i, s := range parts {
		lw, _ := m.dc.MeasureString(s)
		lines[i] = Line{
			Text: s,
			X:    bounds.X + (w-lw)*align.fraction(),
			Y:    bounds.Y + float64(i)*lineHeight*spacing + ascent,
		}
	}
	return lines, bounds
}
