// Package term is a tcell front-end for the local netris games. Boards
// plot straight into the tcell screen through board.Renderer; the screen
// is flushed only on ticks that changed something.
package term

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/games/netris"
	"github.com/vovakirdan/tui-netris/internal/games/netris/board"
	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
	"github.com/vovakirdan/tui-netris/internal/registry"
	"github.com/vovakirdan/tui-netris/internal/storage"
)

// Game is a local game that can render through an external board renderer.
type Game interface {
	registry.Game
	Layout() *netris.Layout
	SetRenderer(r board.Renderer)
}

// Options configures Run.
type Options struct {
	Store  *storage.Store
	Config core.RuntimeConfig
	Player string
	Logger *log.Logger
	// Sound plays a tone on line clears. Audio failures are logged only.
	Sound bool
}

var styles = map[core.Color]tcell.Style{
	core.ColorDefault:     tcell.StyleDefault,
	core.ColorRed:         tcell.StyleDefault.Foreground(tcell.ColorMaroon),
	core.ColorGreen:       tcell.StyleDefault.Foreground(tcell.ColorGreen),
	core.ColorYellow:      tcell.StyleDefault.Foreground(tcell.ColorOlive),
	core.ColorBlue:        tcell.StyleDefault.Foreground(tcell.ColorNavy),
	core.ColorMagenta:     tcell.StyleDefault.Foreground(tcell.ColorPurple),
	core.ColorCyan:        tcell.StyleDefault.Foreground(tcell.ColorTeal),
	core.ColorWhite:       tcell.StyleDefault.Foreground(tcell.ColorSilver),
	core.ColorGray:        tcell.StyleDefault.Foreground(tcell.ColorGray),
	core.ColorBrightWhite: tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true),
}

func styleOf(c core.Color) tcell.Style {
	if st, ok := styles[c]; ok {
		return st
	}
	return tcell.StyleDefault
}

// Backend is a board.Renderer drawing into a tcell screen.
type Backend struct {
	screen tcell.Screen
	game   Game

	// Best is the stored high score shown on the status line; 0 hides it.
	Best int
}

// NewBackend creates a renderer for game on screen. Install it with
// game.SetRenderer after every Reset.
func NewBackend(screen tcell.Screen, game Game) *Backend {
	return &Backend{screen: screen, game: game}
}

// PlotCell implements board.Renderer.
func (b *Backend) PlotCell(id board.ID, row, col int, blk shape.Block) {
	if x, y, text, color, ok := b.game.Layout().Cell(id, row, col, blk); ok {
		b.text(x, y, text, color)
	}
}

// PlotFallingMarker implements board.Renderer.
func (b *Backend) PlotFallingMarker(id board.ID, col int, falling bool) {
	if x, y, text, color, ok := b.game.Layout().Marker(id, col, falling); ok {
		b.text(x, y, text, color)
	}
}

// Attach clears the screen, draws the board frames and replays every
// board through the backend.
func (b *Backend) Attach() {
	b.screen.Clear()
	wall := styleOf(core.ColorGray)
	for _, r := range b.game.Layout().Walls() {
		for y := r.Y; y < r.Bottom(); y++ {
			b.screen.SetContent(r.X, y, netris.WallRune, nil, wall)
		}
	}
	b.game.SetRenderer(b)
}

// DrawHUD writes the status line below the boards.
func (b *Backend) DrawHUD(st core.GameState) {
	_, h := b.screen.Size()
	line := fmt.Sprintf("%s  score %d  lines %d  level %d", b.game.Title(), st.Score, st.Lines, st.Level)
	if b.Best > 0 {
		line += fmt.Sprintf("  best %d", max(b.Best, st.Score))
	}
	switch {
	case st.GameOver:
		line += "  GAME OVER  r: restart  q: quit"
	case st.Paused:
		line += "  PAUSED  p: resume"
	}
	b.clearLine(h - 1)
	b.text(0, h-1, line, core.ColorBrightWhite)
}

func (b *Backend) clearLine(y int) {
	w, _ := b.screen.Size()
	for x := range w {
		b.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
}

func (b *Backend) text(x, y int, s string, c core.Color) {
	st := styleOf(c)
	for i, r := range []rune(s) {
		b.screen.SetContent(x+i, y, r, nil, st)
	}
}

// actionOf maps a tcell key event to a game action.
func actionOf(ev *tcell.EventKey) core.Action {
	switch ev.Key() {
	case tcell.KeyLeft:
		return core.ActionLeft
	case tcell.KeyRight:
		return core.ActionRight
	case tcell.KeyUp:
		return core.ActionRotateCCW
	case tcell.KeyDown:
		return core.ActionSoftDrop
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return core.ActionQuit
	case tcell.KeyRune:
	default:
		return core.ActionNone
	}

	switch ev.Rune() {
	case 'j', 'a':
		return core.ActionLeft
	case 'l', 'd':
		return core.ActionRight
	case 'k', 'w':
		return core.ActionRotateCCW
	case 'z':
		return core.ActionRotateCW
	case 'm', 's':
		return core.ActionSoftDrop
	case ' ':
		return core.ActionHardDrop
	case 'p':
		return core.ActionPause
	case 'r':
		return core.ActionRestart
	case 'q':
		return core.ActionQuit
	}
	return core.ActionNone
}

// Run plays game in a tcell screen until the user quits.
func Run(game registry.Game, opts Options) error {
	g, ok := game.(Game)
	if !ok {
		return fmt.Errorf("term: %s cannot be drawn by the tcell backend", game.ID())
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("term: cannot create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("term: cannot initialise screen: %w", err)
	}
	defer screen.Fini()

	r := newRunner(screen, g, opts)
	defer r.close()
	r.loop()
	return nil
}

// runner owns the tick loop of one tcell game.
type runner struct {
	screen    tcell.Screen
	game      Game
	backend   *Backend
	opts      Options
	logger    *log.Logger
	fixedSeed bool
	tone      *Tone
	input     core.InputFrame
	state     core.GameState
	saved     bool
}

func newRunner(screen tcell.Screen, g Game, opts Options) *runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Config.TickRate <= 0 {
		opts.Config.TickRate = 60
	}
	r := &runner{
		screen:    screen,
		game:      g,
		backend:   NewBackend(screen, g),
		opts:      opts,
		logger:    logger,
		fixedSeed: opts.Config.Seed != 0,
		input:     core.NewInputFrame(),
	}
	if opts.Sound {
		tone, err := NewTone()
		if err != nil {
			logger.Warn("sound disabled", "error", err)
		} else {
			r.tone = tone
		}
	}
	r.reset()
	return r
}

func (r *runner) close() {
	if r.tone != nil {
		r.tone.Close()
	}
}

func (r *runner) reset() {
	cfg := r.opts.Config
	w, h := r.screen.Size()
	cfg.ScreenW, cfg.ScreenH = w, h
	if !r.fixedSeed {
		cfg.Seed = time.Now().UnixNano()
	}
	r.game.Reset(cfg)
	if r.opts.Store != nil {
		best, err := r.opts.Store.HighScore(r.game.ID())
		if err != nil {
			r.logger.Warn("could not load high score", "error", err)
		}
		r.backend.Best = best
	}
	r.backend.Attach()
	r.state = r.game.State()
	r.saved = false
	r.backend.DrawHUD(r.state)
	r.screen.Show()
	r.logger.Info("game started", "game", r.game.ID(), "seed", cfg.Seed, "backend", "tcell")
}

func (r *runner) loop() {
	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(r.opts.Config.TickRate))
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok || !r.handle(ev) {
				return
			}
		case <-ticker.C:
			r.tick()
		}
	}
}

// handle processes one terminal event. It returns false on quit.
func (r *runner) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		r.screen.Sync()
		r.backend.Attach()
		r.backend.DrawHUD(r.state)
		r.screen.Show()
	case *tcell.EventKey:
		a := actionOf(ev)
		switch {
		case a == core.ActionQuit:
			return false
		case a == core.ActionRestart && !r.state.GameOver:
		case a != core.ActionNone:
			r.input.Set(a)
		}
	}
	return true
}

func (r *runner) tick() {
	if r.input.Has(core.ActionRestart) && r.state.GameOver {
		r.input.Clear()
		r.reset()
		return
	}

	prev := r.state
	res := r.game.Step(r.input)
	r.input.Clear()
	r.state = res.State
	r.events()

	if r.state.GameOver && !r.saved {
		r.saveScore()
		r.saved = true
	}

	if res.Refresh || r.state != prev {
		r.backend.DrawHUD(r.state)
		r.screen.Show()
	}
}

func (r *runner) events() {
	src, ok := r.game.(netris.EventSource)
	if !ok {
		return
	}
	for _, ev := range src.Events() {
		r.logger.Debug("game event", "game", r.game.ID(), "player", ev.Player, "kind", ev.Kind, "count", ev.Count)
		if ev.Kind == netris.EventLinesCleared && ev.Player == core.Player1 && r.tone != nil {
			r.tone.Play(ev.Count)
		}
	}
}

func (r *runner) saveScore() {
	st := r.state
	r.logger.Info("game over", "game", r.game.ID(), "score", st.Score, "lines", st.Lines, "level", st.Level)
	if r.opts.Store == nil || st.Score == 0 {
		return
	}
	_, err := r.opts.Store.SaveScore(storage.ScoreEntry{
		GameID: r.game.ID(),
		Player: r.opts.Player,
		Score:  st.Score,
		Lines:  st.Lines,
		Level:  st.Level,
	})
	if err != nil {
		r.logger.Warn("could not save score", "error", err)
	}
}
