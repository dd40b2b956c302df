package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/server"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/upload"
)

type serveOpts struct {
	addr    string
	withBot bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the postcard pipeline over HTTP. Postcards created through the API are
written to http.upload_dir and served back under /files.

With --bot the VK community bot runs in the same process and shares the
cache backend; each keeps its own cache scope.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: http.addr from config)")
	cmd.Flags().BoolVar(&opts.withBot, "bot", false, "also run the VK bot")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.withBot {
		if err := cfg.ValidateBot(); err != nil {
			return err
		}
	}
	if opts.addr != "" {
		cfg.HTTP.Addr = opts.addr
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	uploader, err := upload.NewDirUploader(cfg.HTTP.UploadDir, cfg.HTTP.PublicURL)
	if err != nil {
		return err
	}
	srv := server.New(server.Options{
		Generator:   a.service(ctx, uploader, scopeHTTP),
		Renderer:    a.compositor,
		Composer:    a.composer,
		Templates:   a.templates,
		Bank:        a.bank,
		FilesDir:    uploader.Dir(),
		JPEGQuality: cfg.Compose.JPEGQuality,
		Logger:      loggerFromContext(ctx),
	})

	printInfo("Serving %d templates on %s", len(a.templates.Templates), StyleHighlight.Render(cfg.HTTP.Addr))
	printDetail("Cache: %s", cfg.Cache.Backend)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx, cfg.HTTP.Addr) })
	if opts.withBot {
		b := a.newBot(gctx)
		g.Go(func() error { return b.Run(gctx) })
	}
	return g.Wait()
}
