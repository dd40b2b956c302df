// Package template describes postcard designs.
//
// A [Template] is plain data: where the blank card image lives, where the
// text goes and how it is styled. Every design is rendered by the same code,
// so adding a design means adding a [[template]] table to the TOML file, not
// writing a type.
package template

import (
	_ "embed"
	"fmt"
	"image/color"
	"math/rand/v2"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/layout"
)

//go:embed newyear.toml
var newYearTOML []byte

// Template is one postcard design. Treat it as immutable once loaded.
type Template struct {
	ID          string        `toml:"id" json:"id"`
	Image       string        `toml:"image" json:"image"`       // template image, relative to assets
	Position    [2]int        `toml:"position" json:"position"` // text anchor point (x, y)
	Box         [2]int        `toml:"box" json:"box"`           // text region (width, height)
	Font        string        `toml:"font" json:"font"`         // font path or builtin: reference
	Color       string        `toml:"color" json:"color"`       // fill colour, #rrggbb
	Align       layout.Align  `toml:"align" json:"align"`       // line justification
	Anchor      layout.Anchor `toml:"anchor" json:"anchor"`     // block reference point
	ShrinkStep  int           `toml:"shrink_step" json:"shrink_step"`
	Coefficient float64       `toml:"coefficient" json:"coefficient"`
	MinFontSize int           `toml:"min_font_size" json:"min_font_size,omitempty"`
	LineSpacing float64       `toml:"line_spacing" json:"line_spacing,omitempty"`
}

// SetDefaults fills zero-valued styling fields.
func (t *Template) SetDefaults() {
	if t.Color == "" {
		t.Color = "#000000"
	}
	if t.Align == "" {
		t.Align = layout.AlignCenter
	}
	if t.Anchor == "" {
		t.Anchor = "mm"
	}
	if t.ShrinkStep == 0 {
		t.ShrinkStep = layout.DefaultShrinkStep
	}
	if t.Coefficient == 0 {
		t.Coefficient = layout.DefaultCoefficient
	}
	if t.MinFontSize == 0 {
		t.MinFontSize = layout.DefaultMinSize
	}
	if t.LineSpacing == 0 {
		t.LineSpacing = layout.DefaultLineSpacing
	}
}

// Validate checks that the template can be rendered.
func (t Template) Validate() error {
	if err := errors.ValidateIdentifier("template id", t.ID); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTemplate, err, "template")
	}
	if err := errors.ValidateAssetPath(t.Image); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTemplate, err, "template %s: image", t.ID)
	}
	if t.Font == "" {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %s: font is required", t.ID)
	}
	if t.Box[0] <= 0 || t.Box[1] <= 0 {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %s: box must be positive, got %v", t.ID, t.Box)
	}
	if _, err := t.FillColor(); err != nil {
		return err
	}
	if err := t.Align.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTemplate, err, "template %s", t.ID)
	}
	if err := t.Anchor.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTemplate, err, "template %s", t.ID)
	}
	if t.ShrinkStep < 1 {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %s: shrink_step must be at least 1", t.ID)
	}
	if t.Coefficient <= 0 {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %s: coefficient must be positive", t.ID)
	}
	if t.MinFontSize < 1 {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %s: min_font_size must be at least 1", t.ID)
	}
	// zero takes the layout default
	if t.LineSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %s: line_spacing must be positive, got %g", t.ID, t.LineSpacing)
	}
	return nil
}

// FillColor parses the template's text colour.
func (t Template) FillColor() (color.Color, error) {
	c, err := colorful.Hex(t.Color)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "template %s: color %q", t.ID, t.Color)
	}
	return c.Clamped(), nil
}

// TextBox returns the text region as a layout box.
func (t Template) TextBox() layout.Box {
	return layout.Box{Width: t.Box[0], Height: t.Box[1]}
}

// LayoutOptions returns the font-size search parameters of the template.
func (t Template) LayoutOptions() layout.Options {
	return layout.Options{
		Coefficient: t.Coefficient,
		ShrinkStep:  t.ShrinkStep,
		MinSize:     t.MinFontSize,
		LineSpacing: t.LineSpacing,
	}
}

// Set is an ordered collection of templates with unique ids.
type Set struct {
	Templates []Template `toml:"template"`
	index     map[string]int
}

// Default returns the embedded New Year designs.
func Default() *Set {
	s, err := Parse(newYearTOML)
	if err != nil {
		panic(fmt.Sprintf("template: embedded set is invalid: %v", err))
	}
	return s
}

// Load reads a template set from a TOML file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read templates %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a template set, applies defaults and validates it.
func Parse(data []byte) (*Set, error) {
	var s Set
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode templates")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown template keys: %v", undecoded)
	}
	return NewSet(s.Templates...)
}

// NewSet builds a validated set from templates. Zero styling fields get
// defaults.
func NewSet(templates ...Template) (*Set, error) {
	if len(templates) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no templates defined")
	}
	s := &Set{Templates: make([]Template, len(templates)), index: make(map[string]int, len(templates))}
	for i, t := range templates {
		t.SetDefaults()
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.index[t.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "duplicate template id %q", t.ID)
		}
		s.Templates[i] = t
		s.index[t.ID] = i
	}
	return s, nil
}

// Get returns the template with the given id.
func (s *Set) Get(id string) (Template, error) {
	i, ok := s.index[id]
	if !ok {
		return Template{}, errors.New(errors.ErrCodeNotFound, "unknown template %q", id)
	}
	return s.Templates[i], nil
}

// Pick returns a uniformly random template. A nil r uses the process-wide
// source.
func (s *Set) Pick(r *rand.Rand) Template {
	if r == nil {
		return s.Templates[rand.IntN(len(s.Templates))]
	}
	return s.Templates[r.IntN(len(s.Templates))]
}

// IDs returns template ids in set order.
func (s *Set) IDs() []string {
	ids := make([]string, len(s.Templates))
	for i, t := range s.Templates {
		ids[i] = t.ID
	}
	return ids
}
