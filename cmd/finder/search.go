package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"recipe-finder/internal/core/finder"
	"recipe-finder/internal/view"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search recipes and print them as cards",
	Long: `Search sends the text to the recipe API and prints the results ordered by
cook time, fastest first. --tag keeps only recipes with a matching tag and
--toggle-sort applies the sort button that many times after filtering.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetString("tag")
		toggles, _ := cmd.Flags().GetInt("toggle-sort")
		asJSON, _ := cmd.Flags().GetBool("json")
		preload, _ := cmd.Flags().GetBool("preload")

		ctrl, preloader := newController(preload)
		ctx, cancel := cmdContext(cmd)
		defer cancel()

		if err := ctrl.Search(ctx, queryArg(args)); err != nil {
			return err
		}
		if tag != "" {
			ctrl.FilterByTag(tag)
		}
		for i := 0; i < toggles; i++ {
			ctrl.ToggleSort()
		}
		if preloader != nil {
			preloader.Wait()
		}

		state := ctrl.Snapshot()
		out := cmd.OutOrStdout()
		if state.Status.Kind == finder.StatusError {
			fmt.Fprintln(out, view.ErrorBanner(state.Status.Message))
			return errors.New(state.Status.Message)
		}

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(state.Displayed)
		}
		fmt.Fprintln(out, view.Boundary(func() string { return view.Screen(state) }))
		return nil
	},
}

func init() {
	searchCmd.Flags().String("tag", "", "show only recipes with a tag containing this text")
	searchCmd.Flags().Int("toggle-sort", 0, "press the cook time sort button N times")
	searchCmd.Flags().Bool("json", false, "print the displayed recipes as JSON")
	searchCmd.Flags().Bool("preload", false, "warm the image cache for the first results")

	rootCmd.AddCommand(searchCmd)
}
