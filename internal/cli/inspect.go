package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// templatesCommand lists the configured templates.
func (c *CLI) templatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List postcard templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			set, err := cfg.Templates()
			if err != nil {
				return err
			}

			printTitle("%d templates", len(set.Templates))
			for _, t := range set.Templates {
				printNewline()
				printKeyValue("ID", StyleHighlight.Render(t.ID))
				printKeyValue("Image", t.Image)
				printKeyValue("Font", t.Font)
				printKeyValue("Position", fmt.Sprintf("%d, %d", t.Position[0], t.Position[1]))
				printKeyValue("Box", fmt.Sprintf("%d x %d", t.Box[0], t.Box[1]))
				printKeyValue("Color", t.Color)
			}
			return nil
		},
	}
}

// phrasesCommand validates and prints the phrase bank.
func (c *CLI) phrasesCommand() *cobra.Command {
	var samples int

	cmd := &cobra.Command{
		Use:   "phrases",
		Short: "Validate and show the phrase bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			a, err := newAssets(cfg)
			if err != nil {
				return err
			}

			printTitle("Phrase bank %s", a.bank.Name)
			for _, g := range a.bank.Groups {
				printNewline()
				printKeyValue("Group", StyleHighlight.Render(g.Label))
				printDetail("%s", strings.Join(g.Variants, " · "))
			}
			printNewline()
			printSuccess("%d groups, %d possible greetings", len(a.bank.Groups), a.bank.Combinations())

			for range samples {
				g, err := a.composer.Compose(a.bank, "", "")
				if err != nil {
					return err
				}
				printInfo("%s", g.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&samples, "samples", "n", 0, "print n composed greetings")
	return cmd
}
