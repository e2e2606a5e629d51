package term

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/games/netris"
	"github.com/vovakirdan/tui-netris/internal/storage"
)

func simScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(80, 24)
	t.Cleanup(s.Fini)
	return s
}

func row(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var sb strings.Builder
	for x := range w {
		r, _, _, _ := s.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func seeded() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	cfg.Seed = 11
	return cfg
}

func TestBackendDrawsBoardsThroughRenderer(t *testing.T) {
	s := simScreen(t)
	game := netris.New()
	game.Reset(seeded())

	NewBackend(s, game).Attach()

	visible := game.Board().Visible()
	top := row(s, 1)
	assert.Equal(t, byte(netris.WallRune), top[0], "left wall")

	markers := row(s, 1+visible)
	assert.Contains(t, markers, "==", "the spawned piece marks its columns")
	assert.Contains(t, markers, "--")

	blocks := 0
	for y := 1; y < 1+visible; y++ {
		blocks += strings.Count(row(s, y), "[]")
	}
	assert.Positive(t, blocks, "the spawned piece is drawn")
}

func TestBackendMatchesCanvas(t *testing.T) {
	s := simScreen(t)
	game := netris.New()
	game.Reset(seeded())
	NewBackend(s, game).Attach()
	for range 30 {
		game.Step(core.NewInputFrame())
	}

	canvas := core.NewScreen(80, 24)
	game.Render(canvas)
	visible := game.Board().Visible()
	w := 2 * game.Board().Width()
	for y := 1; y <= visible; y++ {
		assert.Equal(t, canvas.Row(y)[1:1+w], row(s, y)[1:1+w], "row %d", y)
	}
}

func TestActionOf(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want core.Action
	}{
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), core.ActionLeft},
		{tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone), core.ActionRight},
		{tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), core.ActionRotateCCW},
		{tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), core.ActionRotateCW},
		{tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), core.ActionSoftDrop},
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), core.ActionHardDrop},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), core.ActionQuit},
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), core.ActionNone},
		{tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone), core.ActionNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, actionOf(tt.ev), tt.ev.Name())
	}
}

func TestRunnerStepsAndQuits(t *testing.T) {
	s := simScreen(t)
	r := newRunner(s, netris.New(), Options{Config: seeded(), Player: "tester"})

	require.True(t, r.handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)))
	r.tick()
	assert.Positive(t, r.state.Score, "hard drop scores the dropped rows")
	assert.Contains(t, row(s, 23), "score", "status line")

	// Restart is ignored while the game runs.
	require.True(t, r.handle(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone)))
	assert.False(t, r.input.Has(core.ActionRestart))

	assert.False(t, r.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
}

func TestRunnerShowsBestAndSavesScore(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	_, err = store.SaveScore(storage.ScoreEntry{GameID: netris.IDSolo, Score: 4321})
	require.NoError(t, err)

	s := simScreen(t)
	r := newRunner(s, netris.New(), Options{Store: store, Config: seeded(), Player: "tester"})
	assert.Equal(t, 4321, r.backend.Best)
	assert.Contains(t, row(s, 23), "best 4321")

	r.state.Score, r.state.Lines = 500, 3
	r.saveScore()
	scores, err := store.TopScores(netris.IDSolo, 10)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "tester", scores[1].Player)
}

func TestVersusCPUSupportsBackend(t *testing.T) {
	var g any = netris.NewVersusCPU()
	_, ok := g.(Game)
	assert.True(t, ok, "the CPU game can be drawn by tcell")
}

func TestChime(t *testing.T) {
	freq, d := toneFor(4)
	f1, d1 := toneFor(1)
	assert.Greater(t, freq, f1)
	assert.Greater(t, d, d1)

	total := 0
	buf := make([][2]float64, 512)
	s := chime(freq, d)
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
		for _, v := range buf[:n] {
			require.LessOrEqual(t, v[0], 0.3)
			require.GreaterOrEqual(t, v[0], -0.3)
		}
	}
	assert.Equal(t, sampleRate.N(d), total)
}
