package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	xterm "golang.org/x/term"

	"github.com/vovakirdan/tui-netris/internal/config"
	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/games/netris"
	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
	"github.com/vovakirdan/tui-netris/internal/platform/term"
	"github.com/vovakirdan/tui-netris/internal/platform/tui"
	"github.com/vovakirdan/tui-netris/internal/registry"
	"github.com/vovakirdan/tui-netris/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagRuleset    string
	flagBackend    string
	flagSound      bool
)

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Play a game",
	Long: `Start playing the specified game.

Controls:
  Left/j/a, Right/l/d   - Move
  Up/k/w                - Rotate counterclockwise
  z                     - Rotate clockwise
  Down/m/s              - Soft drop
  Space                 - Hard drop
  P                     - Pause
  R                     - Restart (after game over)
  Esc/B                 - Back (when paused or over)
  Q/Ctrl+C              - Quit

Difficulty options:
  easy   - Slow start, gravity speeds up with the level
  normal - Config start speed
  hard   - Fast start
  fixed  - Gravity never changes

Rulesets:
  classic - Pieces spawn above the well and rotate in place
  tgm     - Pieces spawn inside the well and may kick off walls

Examples:
  netris play netris
  netris play netris_tgm
  netris play netris_cpu --difficulty hard
  netris play netris --ruleset tgm --backend tcell --sound
  netris play netris --config ./my-netris.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	addGameFlags(playCmd)
	playCmd.Flags().StringVar(&flagBackend, "backend", "bubbletea", "Terminal backend: bubbletea or tcell")
	playCmd.Flags().BoolVar(&flagSound, "sound", false, "Play a tone on line clears (tcell backend)")
}

// addGameFlags registers the flags that tune the netris games.
func addGameFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to a custom netris config YAML")
	cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	cmd.Flags().StringVar(&flagRuleset, "ruleset", "", "Override the config ruleset: classic or tgm")
}

// applyGameFlags validates the game flags and hands them to the games.
func applyGameFlags() error {
	if flagConfig != "" {
		if _, err := config.LoadNetris(flagConfig); err != nil {
			return err
		}
	}
	if flagDifficulty != "" {
		if _, err := config.ParsePreset(flagDifficulty); err != nil {
			return err
		}
	}
	if flagRuleset != "" {
		if _, err := shape.ParseRuleset(flagRuleset); err != nil {
			return err
		}
	}

	netris.SetConfigPath(flagConfig)
	netris.SetDifficultyPreset(flagDifficulty)
	netris.SetRuleset(flagRuleset)
	return nil
}

// runtimeConfig sizes the game to the terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := xterm.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW, cfg.ScreenH = w, h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// openStore opens the scores database. Games still run without it.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		logger.Warn("scores disabled", "error", err)
		return nil
	}
	return store
}

// playerName is the name stored with local scores.
func playerName() string {
	for _, env := range []string{"USER", "USERNAME"} {
		if name := strings.TrimSpace(os.Getenv(env)); name != "" {
			return name
		}
	}
	return "player"
}

func runPlay(_ *cobra.Command, args []string) error {
	gameID := args[0]
	info, ok := registry.Lookup(gameID)
	if !ok {
		return fmt.Errorf("unknown game %q, run 'netris list' to see available games", gameID)
	}
	if info.Kind == registry.KindOnline {
		return fmt.Errorf("%s is played online: start 'netris serve' and connect with ssh", gameID)
	}
	if flagBackend != "bubbletea" && flagBackend != "tcell" {
		return fmt.Errorf("unknown backend %q, expected bubbletea or tcell", flagBackend)
	}
	if err := applyGameFlags(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger("netris")
	if err != nil {
		return err
	}
	defer closeLog()

	game, err := registry.Create(gameID)
	if err != nil {
		return err
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	cfg := runtimeConfig()
	if flagBackend == "tcell" {
		return term.Run(game, term.Options{
			Store:  store,
			Config: cfg,
			Player: playerName(),
			Logger: logger,
			Sound:  flagSound,
		})
	}
	if flagSound {
		logger.Warn("--sound needs the tcell backend")
	}
	return tui.Run(game, store, cfg, playerName(), logger)
}
