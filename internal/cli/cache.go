package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/cache"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the postcard link cache",
		Long: `Look up or remove cached links by content hash in the configured backend.
Entries written by the bot and the HTTP server live in separate scopes.`,
	}
	cmd.PersistentFlags().StringVar(&scope, "scope", "bot", "cache scope: bot or http")

	cmd.AddCommand(c.cacheGetCommand(&scope))
	cmd.AddCommand(c.cacheDeleteCommand(&scope))

	return cmd
}

func (c *CLI) cacheGetCommand(scope *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <hash>",
		Short: "Print the link cached for a hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCache(cmd.Context(), *scope, args[0], func(ctx context.Context, lc cache.Cache) error {
				link, ok, err := lc.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					printWarning("No entry for %s", args[0])
					return nil
				}
				fmt.Println(link)
				return nil
			})
		},
	}
}

func (c *CLI) cacheDeleteCommand(scope *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <hash>",
		Short: "Remove the link cached for a hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCache(cmd.Context(), *scope, args[0], func(ctx context.Context, lc cache.Cache) error {
				if err := lc.Delete(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Removed %s", args[0])
				return nil
			})
		},
	}
}

// withCache validates key, opens the configured backend under scope and
// runs fn against it.
func (c *CLI) withCache(ctx context.Context, scope, key string, fn func(context.Context, cache.Cache) error) error {
	prefix, err := scopePrefix(scope)
	if err != nil {
		return err
	}
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	backend, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer backend.Close()
	return fn(ctx, cache.NewScoped(backend, prefix))
}

func scopePrefix(scope string) (string, error) {
	switch scope {
	case "bot":
		return scopeBot, nil
	case "http":
		return scopeHTTP, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown cache scope %q (want bot or http)", scope)
	}
}
