package cli

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/render"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/template"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	template string // template id; empty picks one at random
	text     string // greeting text; empty composes one from the bank
	output   string // JPEG path; empty derives <template>-<hash>.jpg
	quality  int    // JPEG quality; 0 uses the configured one
}

// renderCommand creates the render command. It draws one postcard locally
// without touching the cache or any uploader.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw one postcard into a local JPEG",
		Long: `Compose a greeting (or use --text), fit it onto a template and write the
result as JPEG. Nothing is cached or uploaded.`,
		Example: `  congratulator render
  congratulator render -t new-year-red -o card.jpg
  congratulator render -t new-year-blue --text "С Новым Годом! Ура!"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template id (default: random)")
	cmd.Flags().StringVar(&opts.text, "text", "", "greeting text (default: composed from the phrase bank)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <template>-<hash>.jpg)")
	cmd.Flags().IntVarP(&opts.quality, "quality", "q", 0, "JPEG quality 1-100 (default: from config)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := newAssets(cfg)
	if err != nil {
		return err
	}

	tpl, err := pickTemplate(a.templates, opts.template)
	if err != nil {
		return err
	}

	text, hash := strings.TrimSpace(opts.text), ""
	if text == "" {
		g, err := a.composer.Compose(a.bank, tpl.Image, tpl.Font)
		if err != nil {
			return err
		}
		text, hash = g.Text, g.Hash
	} else {
		hash = a.composer.Hash(tpl.Image, tpl.Font, text)
	}
	logger.Debug("rendering", "template", tpl.ID, "hash", hash, "text", text)

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering "+tpl.ID+"...")
	spinner.Start()
	img, fitted, err := a.compositor.Postcard(tpl, text)
	spinner.Stop()
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = fmt.Sprintf("%s-%s.jpg", tpl.ID, hash[:12])
	}
	quality := opts.quality
	if quality == 0 {
		quality = cfg.Compose.JPEGQuality
	}
	if err := writeJPEG(out, img, quality); err != nil {
		return err
	}
	prog.done("Rendered " + tpl.ID)

	printSuccess("Postcard written")
	printFile(out)
	printKeyValue("Template", tpl.ID)
	printKeyValue("Hash", hash)
	printKeyValue("Font size", fmt.Sprintf("%d px (%d tries)", fitted.Size, fitted.Tries))
	printKeyValue("Text", fitted.Text)
	return nil
}

func pickTemplate(set *template.Set, id string) (template.Template, error) {
	if id == "" {
		return set.Pick(nil), nil
	}
	return set.Get(id)
}

// writeJPEG writes img to path through a temp file so a failed encode
// never leaves a truncated postcard behind.
func writeJPEG(path string, img image.Image, quality int) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	if err := render.EncodeJPEG(f, img, quality); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
