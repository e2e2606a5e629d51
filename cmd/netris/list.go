package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-netris/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available games",
	Args:  cobra.NoArgs,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()
	if len(games) == 0 {
		fmt.Println("No games available.")
		return
	}

	maxIDLen := 2
	for _, g := range games {
		maxIDLen = max(maxIDLen, len(g.ID))
	}

	fmt.Println("Available games:")
	fmt.Println()
	fmt.Printf("  %-*s  %-22s  %s\n", maxIDLen, "ID", "Title", "Mode")
	fmt.Printf("  %-*s  %-22s  %s\n", maxIDLen, "--", "-----", "----")
	for _, g := range games {
		mode := "local"
		if g.Kind == registry.KindOnline {
			mode = "online (netris serve)"
		}
		fmt.Printf("  %-*s  %-22s  %s\n", maxIDLen, g.ID, g.Title, mode)
	}

	fmt.Println()
	fmt.Println("Run 'netris play <id>' to play a local game.")
}
