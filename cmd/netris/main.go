// netris is a falling-block game for the terminal, playable solo, against
// a robot, or online against another player over SSH.
//
// Usage:
//
//	netris list              - List available games
//	netris play <game>       - Play a game
//	netris menu              - Pick games interactively
//	netris serve             - Start the SSH server for online play
//	netris scores <game>     - Show high scores or recent matches
//	netris config init       - Write the default config file
//
// Global flags:
//
//	--fps <rate>          - Tick rate (default: 60)
//	--seed <value>        - RNG seed for reproducible piece sequences
//	--db <path>           - Database path (default: ~/.netris/netris.db)
//	--log-file <path>     - Write logs to a file
//	--log-level <level>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/vovakirdan/tui-netris/internal/games/netris"
	"github.com/vovakirdan/tui-netris/internal/storage"
)

var (
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogFile  string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "netris",
	Short: "Netris - falling blocks in your terminal",
	Long: `Netris is a terminal falling-block game. Clear lines alone, race the
robot, or send junk rows to a friend over SSH.

Examples:
  netris list
  netris play netris
  netris play netris_cpu --difficulty hard
  netris menu
  netris serve --ssh :2222
  netris scores netris`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (ticks per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", storage.DefaultPath, "Path to the scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(configCmd)
}
