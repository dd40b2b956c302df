// Package fonts loads the fonts postcards are drawn with.
//
// Font references come from template configuration. A reference is either a
// path relative to the assets directory ("fonts/majestic.ttf") or one of the
// builtin Go fonts bundled with golang.org/x/image ("builtin:goregular",
// "builtin:gobold"). Files are read on every [Resolver.Open] call; nothing
// keeps a handle between renders.
package fonts

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

// BuiltinPrefix marks references to fonts compiled into the binary.
const BuiltinPrefix = "builtin:"

// Regular is the reference of the builtin Go Regular font.
const Regular = BuiltinPrefix + "goregular"

var builtin = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
}

// Loader produces font faces at a pixel size.
type Loader interface {
	Face(size float64) (font.Face, error)
}

// Font is a parsed TrueType/OpenType font.
type Font struct {
	ref    string
	parsed *opentype.Font
}

// Parse parses raw font data.
func Parse(ref string, data []byte) (*Font, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "parse font %s", ref)
	}
	return &Font{ref: ref, parsed: parsed}, nil
}

// Ref returns the reference the font was loaded from.
func (f *Font) Ref() string { return f.ref }

// Face returns a face at size pixels (72 DPI, so points equal pixels).
func (f *Font) Face(size float64) (font.Face, error) {
	if size <= 0 {
		return nil, errors.New(errors.ErrCodeLayout, "font size must be positive, got %.1f", size)
	}
	face, err := opentype.NewFace(f.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create face %s at %.1fpx", f.ref, size)
	}
	return face, nil
}

var _ Loader = (*Font)(nil)

// Resolver opens font references relative to an assets directory.
type Resolver struct {
	dir string
}

// NewResolver creates a resolver rooted at dir.
func NewResolver(dir string) *Resolver {
	return &Resolver{dir: dir}
}

// Open reads and parses the referenced font.
func (r *Resolver) Open(ref string) (*Font, error) {
	if name, ok := strings.CutPrefix(ref, BuiltinPrefix); ok {
		data, ok := builtin[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "unknown builtin font %q (available: %s)", name, strings.Join(Builtins(), ", "))
		}
		return Parse(ref, data)
	}

	if err := errors.ValidateAssetPath(ref); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(r.dir, filepath.FromSlash(ref)))
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "font %s", ref)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read font %s", ref)
	}
	return Parse(ref, data)
}

// Builtins returns the names of the bundled fonts, sorted.
func Builtins() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
