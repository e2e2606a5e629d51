package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-netris/internal/multiplayer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenCreatesNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestStoreTopScores(t *testing.T) {
	store := openTestStore(t)

	entries := []ScoreEntry{
		{GameID: "netris", Player: "ann", Score: 100, Lines: 3, Level: 0},
		{GameID: "netris", Player: "bob", Score: 400, Lines: 12, Level: 1},
		{GameID: "netris", Player: "cy", Score: 400, Lines: 15, Level: 1},
		{GameID: "netris_tgm", Player: "ann", Score: 900, Lines: 30, Level: 3},
	}
	for _, e := range entries {
		if _, err := store.SaveScore(e); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}

	scores, err := store.TopScores("netris", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	wantPlayers := []string{"cy", "bob", "ann"}
	for i, want := range wantPlayers {
		if scores[i].Player != want {
			t.Errorf("scores[%d].Player = %q, expected %q", i, scores[i].Player, want)
		}
	}
	if scores[0].Lines != 15 || scores[0].Level != 1 {
		t.Errorf("lines/level not stored: %+v", scores[0])
	}

	limited, err := store.TopScores("netris", 1)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: got %d scores", len(limited))
	}
}

func TestStoreHighScoreAndClear(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("netris")
	if err != nil || high != 0 {
		t.Fatalf("HighScore() on empty = %d, %v", high, err)
	}

	for _, score := range []int{50, 300, 120} {
		if _, err := store.SaveScore(ScoreEntry{GameID: "netris", Score: score}); err != nil {
			t.Fatal(err)
		}
	}
	if high, _ := store.HighScore("netris"); high != 300 {
		t.Errorf("HighScore() = %d, expected 300", high)
	}

	if err := store.ClearScores("netris"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}
	if high, _ := store.HighScore("netris"); high != 0 {
		t.Errorf("HighScore() after clear = %d, expected 0", high)
	}
}

func TestStoreGameStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.GetGameStats("netris")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if empty.GamesCount != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v", empty)
	}

	store.SaveScore(ScoreEntry{GameID: "netris", Score: 100, Lines: 10, Level: 1})
	store.SaveScore(ScoreEntry{GameID: "netris", Score: 300, Lines: 25, Level: 2})
	store.SaveScore(ScoreEntry{GameID: "netris_cpu", Score: 10, Lines: 1})

	stats, err := store.GetGameStats("netris")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if stats.GamesCount != 2 || stats.HighScore != 300 || stats.AvgScore != 200 ||
		stats.TotalLines != 35 || stats.BestLevel != 2 {
		t.Errorf("stats = %+v", stats)
	}

	all, err := store.GetAllGamesStats()
	if err != nil {
		t.Fatalf("GetAllGamesStats() failed: %v", err)
	}
	if len(all) != 2 || all["netris_cpu"].GamesCount != 1 {
		t.Errorf("all stats = %+v", all)
	}
}

func TestStoreMatches(t *testing.T) {
	store := openTestStore(t)

	data := multiplayer.MatchResultData{
		MatchID:        "m-1",
		GameID:         "netris_versus",
		Player1Session: "s1",
		Player2Session: "s2",
		Score1:         800,
		Score2:         200,
		Lines1:         12,
		Lines2:         4,
		WinnerSession:  "s1",
		EndReason:      "Match completed",
		DurationSecs:   95,
	}
	if err := store.SaveMatchResult(data); err != nil {
		t.Fatalf("SaveMatchResult() failed: %v", err)
	}
	if _, err := store.SaveMatch(MatchRecord{MatchID: "m-2", GameID: "netris_versus",
		Player1Session: "s3", Player2Session: "s1", EndReason: "Opponent disconnected"}); err != nil {
		t.Fatalf("SaveMatch() failed: %v", err)
	}

	got, err := store.MatchByID("m-1")
	if err != nil || got == nil {
		t.Fatalf("MatchByID() = %v, %v", got, err)
	}
	if got.Lines1 != 12 || got.WinnerSession != "s1" || got.Duration != 95 {
		t.Errorf("match = %+v", got)
	}

	missing, err := store.MatchByID("nope")
	if err != nil || missing != nil {
		t.Errorf("MatchByID(unknown) = %v, %v", missing, err)
	}

	recent, err := store.RecentMatches(0)
	if err != nil {
		t.Fatalf("RecentMatches() failed: %v", err)
	}
	if len(recent) != 2 || recent[0].MatchID != "m-2" {
		t.Errorf("recent = %+v", recent)
	}
	if recent[0].WinnerSession != "" {
		t.Errorf("draw should have no winner, got %q", recent[0].WinnerSession)
	}

	mine, err := store.PlayerMatches("s2", 5)
	if err != nil {
		t.Fatalf("PlayerMatches() failed: %v", err)
	}
	if len(mine) != 1 || mine[0].MatchID != "m-1" {
		t.Errorf("player matches = %+v", mine)
	}

	if err := store.SaveMatchResult(data); err == nil {
		t.Error("duplicate match id should fail")
	}
}
