// Package cli implements the congratulator command-line interface.
//
// # Commands
//
//   - render: compose a greeting and draw it into a local JPEG
//   - serve: run the HTTP API (optionally together with the VK bot)
//   - bot: run the VK community bot
//   - templates, phrases: inspect the configured designs and phrase bank
//   - cache: look up or drop cached links
//
// # Configuration
//
// Every command reads an optional TOML file (--config) and then the
// environment; see pkg/config for the keys.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed to commands through context.Context.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/buildinfo"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/cache"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/compose"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/config"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/observability"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/phrases"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/postcard"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/render"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/template"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/upload"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "congratulator"

// Cache key scopes. Links from different uploaders are not interchangeable,
// so the bot and the HTTP server keep separate entries in a shared backend.
const (
	scopeBot  = "vk:"
	scopeHTTP = "http:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
	lookupEnv  config.LookupFunc
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		lookupEnv: os.LookupEnv,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Congratulator draws greeting postcards",
		Long:         `Congratulator composes random greetings from a phrase bank, fits them onto postcard templates and serves them through a VK community bot or an HTTP API, caching every uploaded card by content hash.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.botCommand())
	root.AddCommand(c.templatesCommand())
	root.AddCommand(c.phrasesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and environment and validates the result.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(c.lookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// =============================================================================
// App - pipeline pieces shared by serve and bot
// =============================================================================

type app struct {
	cfg        config.Config
	templates  *template.Set
	bank       *phrases.Bank
	composer   *compose.Composer
	compositor *render.Compositor
	cache      cache.Cache
	hooks      *observability.LogHooks
}

// newApp loads assets and opens the cache backend.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a, err := newAssets(cfg)
	if err != nil {
		return nil, err
	}
	a.cache, err = cache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	a.hooks = observability.NewLogHooks(loggerFromContext(ctx))
	return a, nil
}

// newAssets loads templates, phrases and the composer without a cache.
func newAssets(cfg config.Config) (*app, error) {
	templates, err := cfg.Templates()
	if err != nil {
		return nil, err
	}
	bank, err := cfg.Bank()
	if err != nil {
		return nil, err
	}
	if err := bank.Validate(); err != nil {
		return nil, err
	}
	composer, err := cfg.Composer()
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:        cfg,
		templates:  templates,
		bank:       bank,
		composer:   composer,
		compositor: render.NewCompositor(cfg.Assets.Dir),
	}, nil
}

// service builds a postcard service whose cache entries live under scope.
func (a *app) service(ctx context.Context, u upload.Uploader, scope string) *postcard.Service {
	return &postcard.Service{
		Cache:       cache.NewScoped(a.cache, scope),
		Uploader:    u,
		Renderer:    a.compositor,
		Composer:    a.composer,
		Hooks:       a.hooks,
		Logger:      loggerFromContext(ctx),
		JPEGQuality: a.cfg.Compose.JPEGQuality,
	}
}

func (a *app) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}
