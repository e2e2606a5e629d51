package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-netris/internal/registry"
	"github.com/vovakirdan/tui-netris/internal/storage"
)

var (
	flagLimit   int
	flagClear   bool
	flagSession string
	flagMatch   string
)

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show high scores, or recent matches of the online game",
	Long: `Display the best scores of a local game, or the latest results of
the online versus game. Without a game, prints a summary of every game.

Examples:
  netris scores
  netris scores netris
  netris scores netris_cpu --limit 20
  netris scores netris --clear
  netris scores netris_versus --session <session-id>
  netris scores netris_versus --match <match-id>`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of entries to show")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every score of the game")
	scoresCmd.Flags().StringVar(&flagSession, "session", "", "Only matches of this session (online game)")
	scoresCmd.Flags().StringVar(&flagMatch, "match", "", "Show one match by id (online game)")
}

func runScores(_ *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		return printSummary(store)
	}

	info, ok := registry.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown game %q, run 'netris list' to see available games", args[0])
	}

	if info.Kind == registry.KindOnline {
		if flagClear {
			return errors.New("match history cannot be cleared")
		}
		if flagMatch != "" {
			return printMatch(store, flagMatch)
		}
		return printMatches(store, info)
	}

	if flagClear {
		if err := store.ClearScores(info.ID); err != nil {
			return err
		}
		fmt.Printf("Cleared scores of %s\n", info.Title)
		return nil
	}
	return printScores(store, info)
}

func printSummary(store *storage.Store) error {
	stats, err := store.GetAllGamesStats()
	if err != nil {
		return err
	}
	fmt.Printf("  %-16s  %-6s  %-9s  %-9s  %-7s  %s\n", "Game", "Games", "Best", "Average", "Lines", "Last played")
	for _, g := range registry.List() {
		if g.Kind == registry.KindOnline {
			continue
		}
		st, ok := stats[g.ID]
		if !ok {
			fmt.Printf("  %-16s  %-6d  %-9s  %-9s  %-7s  %s\n", g.ID, 0, "-", "-", "-", "never")
			continue
		}
		fmt.Printf("  %-16s  %-6d  %-9d  %-9.0f  %-7d  %s\n",
			g.ID, st.GamesCount, st.HighScore, st.AvgScore, st.TotalLines, st.LastPlayed.Format("2006-01-02 15:04"))
	}

	matches, err := store.RecentMatches(1)
	if err != nil {
		return err
	}
	if len(matches) > 0 {
		fmt.Printf("\nLast online match: %s (%s)\n", matches[0].CreatedAt.Format("2006-01-02 15:04"), matches[0].EndReason)
	}
	return nil
}

func printScores(store *storage.Store, info registry.GameInfo) error {
	scores, err := store.TopScores(info.ID, flagLimit)
	if err != nil {
		return err
	}

	fmt.Printf("High Scores - %s\n\n", info.Title)
	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Printf("\nPlay 'netris play %s' to set the first high score!\n", info.ID)
		return nil
	}

	fmt.Printf("  %-4s  %-9s  %-6s  %-6s  %-12s  %s\n", "Rank", "Score", "Lines", "Level", "Player", "Date")
	fmt.Printf("  %-4s  %-9s  %-6s  %-6s  %-12s  %s\n", "----", "-----", "-----", "-----", "------", "----")
	for i, e := range scores {
		fmt.Printf("  %-4d  %-9d  %-6d  %-6d  %-12s  %s\n",
			i+1, e.Score, e.Lines, e.Level, e.Player, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.GetGameStats(info.ID)
	if err != nil {
		return err
	}
	fmt.Printf("\nGames: %d  |  Average: %.0f  |  Lines: %d  |  Best level: %d\n",
		stats.GamesCount, stats.AvgScore, stats.TotalLines, stats.BestLevel)
	return nil
}

func printMatches(store *storage.Store, info registry.GameInfo) error {
	var (
		matches []storage.MatchRecord
		err     error
	)
	if flagSession != "" {
		matches, err = store.PlayerMatches(flagSession, flagLimit)
	} else {
		matches, err = store.RecentMatches(flagLimit)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Recent Matches - %s\n\n", info.Title)
	if len(matches) == 0 {
		fmt.Println("No matches played yet.")
		return nil
	}

	fmt.Printf("  %-16s  %-11s  %-11s  %-6s  %-20s  %-6s  %s\n", "Date", "P1", "P2", "Winner", "Reason", "Length", "Match")
	for _, m := range matches {
		if m.GameID != info.ID {
			continue
		}
		fmt.Printf("  %-16s  %-11s  %-11s  %-6s  %-20s  %-6s  %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d (%dL)", m.Score1, m.Lines1),
			fmt.Sprintf("%d (%dL)", m.Score2, m.Lines2),
			winnerOf(m), m.EndReason,
			fmt.Sprintf("%d:%02d", m.Duration/60, m.Duration%60),
			m.MatchID)
	}
	return nil
}

func printMatch(store *storage.Store, id string) error {
	m, err := store.MatchByID(id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("no match %q", id)
	}
	fmt.Printf("Match %s (%s)\n", m.MatchID, m.GameID)
	fmt.Printf("  Played:  %s, %d:%02d\n", m.CreatedAt.Format("2006-01-02 15:04"), m.Duration/60, m.Duration%60)
	fmt.Printf("  P1:      %s  %d points, %d lines\n", m.Player1Session, m.Score1, m.Lines1)
	fmt.Printf("  P2:      %s  %d points, %d lines\n", m.Player2Session, m.Score2, m.Lines2)
	fmt.Printf("  Winner:  %s  (%s)\n", winnerOf(*m), m.EndReason)
	return nil
}

func winnerOf(m storage.MatchRecord) string {
	switch m.WinnerSession {
	case "":
		return "draw"
	case m.Player1Session:
		return "P1"
	case m.Player2Session:
		return "P2"
	}
	return "-"
}
