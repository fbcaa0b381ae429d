package main

import (
	"recipe-finder/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Search recipes interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, _ := newController(cfg.Preload.Enabled)

		m := tui.New(ctrl, cfg.Client.Debounce, cfg.Client.Timeout)
		defer m.Close()

		p := tea.NewProgram(m, tea.WithAltScreen())
		m.SetSender(p.Send)

		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
