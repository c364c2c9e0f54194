package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/tabsplit/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tabsplit",
		Short:        "Split a shared bill by item, portion and discount",
		SilenceUsage: true,
	}
	root.AddCommand(newSplitCmd(), newVersionCmd())
	return root
}

func newSplitCmd() *cobra.Command {
	var (
		asJSON   bool
		currency string
	)

	cmd := &cobra.Command{
		Use:   "split <scenario.yaml>",
		Short: "Compute who owes what for a bill described in YAML",
		Long: `Loads a bill scenario and prints each participant's total and itemized shares.

A scenario lists participants, an optional discount percentage and items:

  discount: 10
  participants: [Alice, Bob]
  items:
    - name: Pizza
      price: "100"
      consumers: [Alice, Bob]
      portions: 4
      weights: {Alice: 3}
    - name: Wine
      price: "40"
      consumers: [Alice, Bob]
      exempt: true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := cli.LoadScenario(args[0])
			if err != nil {
				return err
			}
			store, err := sc.Apply(slog.Default())
			if err != nil {
				return err
			}

			breakdown := cli.NewBreakdown(store.Snapshot(), currency)
			if asJSON {
				return breakdown.WriteJSON(cmd.OutOrStdout())
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), breakdown.Render())
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the breakdown as JSON")
	cmd.Flags().StringVar(&currency, "currency", "₹", "currency symbol placed before amounts")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tabsplit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "tabsplit", version)
			return err
		},
	}
}
