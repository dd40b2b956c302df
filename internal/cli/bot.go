package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/bot"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/vk"
)

// botCommand creates the bot command.
func (c *CLI) botCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the VK community bot",
		Long: `Listen for new community messages over the Bots Long Poll API and answer each
with a postcard. Needs vk.token and vk.group_id (or the token and public_id
environment variables).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBot(cmd.Context())
		},
	}
}

func (c *CLI) runBot(ctx context.Context) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	printInfo("Bot for group %d with %d templates", cfg.VK.GroupID, len(a.templates.Templates))
	printDetail("Cache: %s", cfg.Cache.Backend)
	return a.newBot(ctx).Run(ctx)
}

// newBot wires the VK client, uploader and long poll around the app.
func (a *app) newBot(ctx context.Context) *bot.Bot {
	client := vk.NewClient(a.cfg.VK.Token,
		vk.WithVersion(a.cfg.VK.Version),
		vk.WithBaseURL(a.cfg.VK.BaseURL),
		vk.WithHTTPHooks(a.hooks),
	)
	return &bot.Bot{
		Listener:  vk.NewLongPoll(client, a.cfg.VK.GroupID, a.cfg.VK.Wait),
		Sender:    client,
		Generator: a.service(ctx, vk.NewPhotoUploader(client), scopeBot),
		Templates: a.templates,
		Bank:      a.bank,
		Logger:    loggerFromContext(ctx).WithPrefix("bot"),
		Pause:     a.cfg.VK.Pause,
	}
}
