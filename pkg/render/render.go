// Package render draws fitted greeting text onto template images.
//
// Every call opens the template image and its font from disk, draws on a
// private copy and returns it; the files in the assets directory are never
// written to. Encoding helpers produce the JPEG bytes handed to uploaders.
package render

import (
	"bytes"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/fonts"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/layout"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/template"
)

// DefaultJPEGQuality is used when no quality is configured.
const DefaultJPEGQuality = 90

// Compositor renders postcards from templates stored under an assets
// directory.
type Compositor struct {
	dir   string
	fonts *fonts.Resolver
}

// NewCompositor creates a compositor reading images and fonts from dir.
func NewCompositor(dir string) *Compositor {
	return &Compositor{dir: dir, fonts: fonts.NewResolver(dir)}
}

// Dir returns the assets directory.
func (c *Compositor) Dir() string { return c.dir }

// Fit opens the template font and fits text into the template box.
// The caller must close the returned face.
func (c *Compositor) Fit(tpl template.Template, text string) (layout.Result, error) {
	f, err := c.fonts.Open(tpl.Font)
	if err != nil {
		return layout.Result{}, err
	}
	return layout.Fit(text, tpl.TextBox(), f, tpl.LayoutOptions())
}

// Render draws fitted text onto a copy of the template image, spacing lines
// exactly as [Compositor.Fit] measured them.
func (c *Compositor) Render(tpl template.Template, fitted layout.Result) (image.Image, error) {
	fill, err := tpl.FillColor()
	if err != nil {
		return nil, err
	}
	src, err := c.openImage(tpl.Image)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContextForImage(src)
	dc.SetFontFace(fitted.Face)
	dc.SetColor(fill)

	spacing := fitted.LineSpacing
	if spacing <= 0 {
		spacing = layout.DefaultLineSpacing
	}
	x, y := float64(tpl.Position[0]), float64(tpl.Position[1])
	lines, _ := layout.Block(fitted.Face, fitted.Text, spacing, tpl.Align, tpl.Anchor, x, y)
	for _, l := range lines {
		dc.DrawString(l.Text, l.X, l.Y)
	}
	return dc.Image(), nil
}

// Postcard fits and renders text in one step.
func (c *Compositor) Postcard(tpl template.Template, text string) (image.Image, layout.Result, error) {
	fitted, err := c.Fit(tpl, text)
	if err != nil {
		return nil, layout.Result{}, err
	}
	defer fitted.Face.Close()

	img, err := c.Render(tpl, fitted)
	if err != nil {
		return nil, layout.Result{}, err
	}
	fitted.Face = nil
	return img, fitted, nil
}

func (c *Compositor) openImage(ref string) (image.Image, error) {
	if err := errors.ValidateAssetPath(ref); err != nil {
		return nil, err
	}
	path := filepath.Join(c.dir, filepath.FromSlash(ref))
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "template image %s", ref)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "open template image %s", ref)
	}
	return img, nil
}

// EncodeJPEG writes img as JPEG. Non-positive quality selects the default.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode jpeg")
	}
	return nil
}

// JPEG encodes img into a byte slice.
func JPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, img, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
