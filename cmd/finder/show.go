package main

import (
	"context"
	"fmt"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/view"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the details of one recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext(cmd)
		defer cancel()

		data, err := newClient().GetRecipe(ctx, args[0])
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), view.ErrorBanner(err.Error()))
			return err
		}

		raw, ok := data.(map[string]any)
		if !ok {
			return fmt.Errorf("unexpected response for recipe %s", args[0])
		}
		r := recipe.NormalizeOne(raw)
		fmt.Fprintln(cmd.OutOrStdout(), view.Boundary(func() string { return view.Detail(r) }))
		return nil
	},
}

// cmdContext 以客戶端逾時包裝指令的 context
func cmdContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Client.Timeout > 0 {
		return context.WithTimeout(ctx, cfg.Client.Timeout)
	}
	return context.WithCancel(ctx)
}

func init() {
	rootCmd.AddCommand(showCmd)
}
