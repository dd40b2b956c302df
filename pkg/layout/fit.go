package layout

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/fonts"
)

// Defaults used when Options fields are zero.
const (
	DefaultCoefficient = 1.55
	DefaultShrinkStep  = 3
	DefaultMinSize     = 8
	DefaultLineSpacing = 1.1
)

// Box is the text region of a template, in pixels.
type Box struct {
	Width, Height int
}

// Options tunes the font-size search.
type Options struct {
	Coefficient float64 // scales the initial size estimate; tuned per font
	ShrinkStep  int     // pixels removed after a height overflow
	MinSize     int     // smallest size tried before giving up
	LineSpacing float64 // line height multiplier
}

func (o Options) withDefaults() Options {
	if o.Coefficient == 0 {
		o.Coefficient = DefaultCoefficient
	}
	if o.ShrinkStep == 0 {
		o.ShrinkStep = DefaultShrinkStep
	}
	if o.MinSize == 0 {
		o.MinSize = DefaultMinSize
	}
	if o.LineSpacing == 0 {
		o.LineSpacing = DefaultLineSpacing
	}
	return o
}

// Result is a fitted block of text. The caller owns Face and should close
// it when done drawing.
type Result struct {
	Text   string    // text with line breaks inserted
	Face   font.Face // face at Size
	Size   int       // font size in pixels
	Width  float64   // measured block width
	Height float64   // measured block height, never above the box height
	Tries  int       // number of sizes attempted

	LineSpacing float64 // line height multiplier the block was measured with
}

// InitialSize estimates the starting font size for n characters in box.
func InitialSize(box Box, n int, coefficient float64) int {
	if n <= 0 {
		return 0
	}
	area := (box.Width * box.Height) / n
	return int(math.Sqrt(float64(area)) * coefficient)
}

// Fit finds the largest size, starting from [InitialSize] and shrinking by
// ShrinkStep, at which text wraps into box without exceeding its height.
func Fit(text string, box Box, loader fonts.Loader, opts Options) (Result, error) {
	opts = opts.withDefaults()
	if err := validate(text, box, opts); err != nil {
		return Result{}, err
	}

	size := InitialSize(box, utf8.RuneCountInString(text), opts.Coefficient)
	size = max(size, opts.MinSize)

	words := strings.Split(text, " ")
	m := newMeasurer(opts.LineSpacing)
	tries := 0

	for ; size >= opts.MinSize; size -= opts.ShrinkStep {
		tries++
		face, err := loader.Face(float64(size))
		if err != nil {
			return Result{}, err
		}
		m.setFace(face)

		if wrapped, ok := wrap(m, words, box); ok {
			w, h := m.measure(wrapped)
			return Result{
				Text:        wrapped,
				Face:        face,
				Size:        size,
				Width:       w,
				Height:      h,
				Tries:       tries,
				LineSpacing: opts.LineSpacing,
			}, nil
		}
		face.Close()
	}

	return Result{}, errors.New(errors.ErrCodeLayout,
		"%d characters do not fit %dx%d at any size >= %dpx", utf8.RuneCountInString(text), box.Width, box.Height, opts.MinSize)
}

// wrap greedily fills lines. It reports false as soon as the block would
// exceed the box height.
func wrap(m *measurer, words []string, box Box) (string, bool) {
	maxW, maxH := float64(box.Width), float64(box.Height)
	buf := ""

	for _, word := range words {
		word += " "
		w, h := m.measure(buf + word)
		if h > maxH {
			return "", false
		}
		if w > maxW && buf != "" {
			broken := buf + "\n" + word
			if _, h := m.measure(broken); h > maxH {
				return "", false
			}
			buf = broken
			continue
		}
		buf += word
	}
	return buf, true
}

func validate(text string, box Box, opts Options) error {
	switch {
	case text == "":
		return errors.New(errors.ErrCodeLayout, "text is empty")
	case box.Width <= 0 || box.Height <= 0:
		return errors.New(errors.ErrCodeLayout, "box must be positive, got %dx%d", box.Width, box.Height)
	case opts.ShrinkStep < 1:
		return errors.New(errors.ErrCodeLayout, "shrink step must be at least 1, got %d", opts.ShrinkStep)
	case opts.MinSize < 1:
		return errors.New(errors.ErrCodeLayout, "minimum font size must be at least 1, got %d", opts.MinSize)
	case opts.Coefficient <= 0:
		return errors.New(errors.ErrCodeLayout, "coefficient must be positive, got %g", opts.Coefficient)
	case opts.LineSpacing <= 0:
		return errors.New(errors.ErrCodeLayout, "line spacing must be positive, got %g", opts.LineSpacing)
	}
	return nil
}
