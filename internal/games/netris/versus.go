package netris

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-netris/internal/config"
	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/games/netris/bag"
	"github.com/vovakirdan/tui-netris/internal/games/netris/board"
	"github.com/vovakirdan/tui-netris/internal/games/netris/robot"
	"github.com/vovakirdan/tui-netris/internal/games/netris/shape"
	"github.com/vovakirdan/tui-netris/internal/multiplayer"
)

// VersusGame puts two play boards side by side. Lines cleared on one side
// push junk rows into the other; the first side that cannot spawn loses.
//
// Against the CPU, Player2 is driven by the robot and the game is stepped
// locally. Online, the server steps it with StepMulti and every client
// mirrors the snapshots into its own instance.
type VersusGame struct {
	id     string
	online bool

	cfg     config.NetrisConfig
	ruleset shape.Ruleset

	players [2]*player
	robot   *robot.Robot
	pieces  int // pieces the robot has seen on its board

	canvas   *Canvas
	p2X      int
	external board.Renderer
	logger   *log.Logger

	tick     uint64
	paused   bool
	refresh  bool
	over     bool
	winner   core.PlayerID
	mirrored bool
	hud      [2]PlayerSnapshot
	events   []Event
}

// NewVersusCPU creates a game against the robot.
func NewVersusCPU() *VersusGame {
	return &VersusGame{id: IDCPU}
}

// NewVersusOnline creates the online versus game.
func NewVersusOnline() *VersusGame {
	return &VersusGame{id: IDVersus, online: true}
}

// ID returns the game identifier.
func (g *VersusGame) ID() string { return g.id }

// Title returns the display name.
func (g *VersusGame) Title() string {
	if g.online {
		return "Netris Versus (Online)"
	}
	return "Netris vs CPU"
}

// Reset loads the config and starts both sides from the same seed.
func (g *VersusGame) Reset(runtime core.RuntimeConfig) {
	g.cfg = loadConfig()
	g.ruleset = rulesetOf(g.cfg)

	seed := seedOf(runtime.Seed)
	holes := bag.NewRandSource(seed + 1)
	g.players[0] = newPlayer(core.Player1, board.LocalID, g.cfg, g.ruleset, seed, holes)
	g.players[1] = newPlayer(core.Player2, board.OpponentID, g.cfg, g.ruleset, seed, holes)

	c := g.cfg.CPU
	g.robot = robot.New(robot.Weights{
		Lines:     c.Lines,
		Height:    c.Height,
		Holes:     c.Holes,
		Bumpiness: c.Bumpiness,
	}, c.MoveEveryTicks)

	g.layout()

	g.tick = 0
	g.paused = false
	g.over = false
	g.winner = 0
	g.mirrored = false
	g.hud = [2]PlayerSnapshot{}
	g.events = nil
	for _, p := range g.players {
		p.start()
	}
	g.pieces = g.players[1].pieces
	g.publish()
}

// layout places both boards with the HUD between them.
func (g *VersusGame) layout() {
	w := g.players[0].board.Width()
	hudX := boardX + 2*w + hudGap
	g.p2X = hudX + 14 + hudGap
	g.canvas = NewCanvas(g.p2X+2*w+1, boardY+g.players[0].board.Visible()+1)
	g.canvas.Place(g.players[0].board, boardX, boardY, true)
	g.canvas.Place(g.players[1].board, g.p2X, boardY, true)
	g.attach()
}

func (g *VersusGame) attach() {
	r := renderers(g.canvas, g.external)
	for _, p := range g.players {
		p.board.SetRenderer(r)
		p.board.SetRowObserver(rowTracer(g.logger))
	}
}

// Layout returns where the boards are drawn, for renderers installed
// with SetRenderer. It changes on every Reset.
func (g *VersusGame) Layout() *Layout {
	return g.canvas.Layout()
}

// SetRenderer sends every plotted cell to r as well, replaying both boards.
func (g *VersusGame) SetRenderer(r board.Renderer) {
	g.external = r
	if g.players[0] == nil {
		return
	}
	g.attach()
	for _, p := range g.players {
		p.board.Redraw()
	}
	g.publish()
}

// SetLogger enables the debug trace of published rows.
func (g *VersusGame) SetLogger(l *log.Logger) {
	g.logger = l
	if g.players[0] != nil {
		g.attach()
	}
}

// Step advances a game against the robot by one tick.
func (g *VersusGame) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionPause) && !g.over {
		g.paused = !g.paused
		g.refresh = true
	}
	if g.paused || g.over || g.online {
		return core.StepResult{State: g.State(), Refresh: g.TakeRefresh()}
	}

	cpu := g.players[1]
	if cpu.pieces != g.pieces {
		g.pieces = cpu.pieces
		g.robot.Forget()
	}
	g.advance(in, robotFrame(g.robot.Step(cpu.board)))
	return core.StepResult{State: g.State(), Refresh: g.TakeRefresh()}
}

// StepMulti advances an online game by one tick.
func (g *VersusGame) StepMulti(in core.MultiInputFrame) core.StepResult {
	if !g.over {
		g.advance(in.Player1(), in.Player2())
	}
	return core.StepResult{State: g.State(), Refresh: g.TakeRefresh()}
}

func robotFrame(a robot.Action) core.InputFrame {
	f := core.NewInputFrame()
	switch a {
	case robot.Left:
		f.Set(core.ActionLeft)
	case robot.Right:
		f.Set(core.ActionRight)
	case robot.RotateCCW:
		f.Set(core.ActionRotateCCW)
	case robot.Drop:
		f.Set(core.ActionHardDrop)
	}
	return f
}

// advance steps both sides, exchanges junk and decides the winner.
func (g *VersusGame) advance(in1, in2 core.InputFrame) {
	g.tick++
	p1, p2 := g.players[0], g.players[1]
	n1 := p1.step(in1)
	n2 := p2.step(in2)
	g.sendJunk(p1, p2, n1)
	g.sendJunk(p2, p1, n2)

	for _, p := range g.players {
		g.events = append(g.events, p.drainEvents()...)
	}

	if p1.over || p2.over {
		g.over = true
		switch {
		case p1.over && p2.over:
			g.winner = 0
		case p1.over:
			g.winner = core.Player2
		default:
			g.winner = core.Player1
		}
	}
	g.publish()
}

func (g *VersusGame) sendJunk(from, to *player, lines int) {
	rows := g.cfg.Junk.JunkFor(lines)
	if rows <= 0 || to.over {
		return
	}
	to.junk += rows
	from.emit(EventJunkSent, rows)
}

func (g *VersusGame) publish() {
	a := g.players[0].board.PublishChanges()
	b := g.players[1].board.PublishChanges()
	g.refresh = g.refresh || a || b
}

// TakeRefresh reports whether anything was drawn since the last call.
func (g *VersusGame) TakeRefresh() bool {
	r := g.refresh
	g.refresh = false
	return r
}

// Events returns and clears the events since the last call.
func (g *VersusGame) Events() []Event {
	ev := g.events
	g.events = nil
	return ev
}

// Snapshot returns both sides after the last tick.
func (g *VersusGame) Snapshot() multiplayer.GameSnapshot {
	return Snapshot{
		Tick:     g.tick,
		Players:  []PlayerSnapshot{snapshotOf(g.players[0]), snapshotOf(g.players[1])},
		GameOver: g.over,
		Winner:   g.winner,
	}
}

// ApplySnapshot mirrors a server snapshot into the local boards. Only the
// cells that differ are written, so only those are redrawn.
func (g *VersusGame) ApplySnapshot(snap multiplayer.GameSnapshot) {
	s, ok := snap.(Snapshot)
	if !ok || len(s.Players) != 2 {
		return
	}
	if g.players[0] == nil || !g.fits(s) {
		g.rebuild(s)
	}
	for i, ps := range s.Players {
		p := g.players[i]
		mirror(p.board, ps.Cells)
		p.score, p.lines, p.over = ps.Score, ps.Lines, ps.Over
		p.next = stateOf(ps.Next)
		g.hud[i] = ps
	}
	g.tick = s.Tick
	g.over = s.GameOver
	g.winner = s.Winner
	g.mirrored = true
	g.publish()
}

// fits reports whether the local boards match the snapshot dimensions.
func (g *VersusGame) fits(s Snapshot) bool {
	for i, ps := range s.Players {
		b := g.players[i].board
		if len(ps.Cells) != b.Height() || ps.Visible != b.Visible() ||
			(len(ps.Cells) > 0 && len(ps.Cells[0]) != b.Width()) {
			return false
		}
	}
	return true
}

// rebuild recreates the local boards with the server's dimensions.
func (g *VersusGame) rebuild(s Snapshot) {
	if len(s.Players[0].Cells) == 0 {
		return
	}
	g.cfg = loadConfig()
	g.cfg.Board = config.BoardConfig{
		Height:  len(s.Players[0].Cells),
		Visible: s.Players[0].Visible,
		Width:   len(s.Players[0].Cells[0]),
	}
	if err := g.cfg.Validate(); err != nil {
		panic(fmt.Sprintf("netris: snapshot dimensions: %v", err))
	}
	holes := bag.NewRandSource(1)
	g.players[0] = newPlayer(core.Player1, board.LocalID, g.cfg, g.ruleset, 1, holes)
	g.players[1] = newPlayer(core.Player2, board.OpponentID, g.cfg, g.ruleset, 1, holes)
	g.layout()
}

// Render draws both boards and the HUD between them.
func (g *VersusGame) Render(dst *core.Screen) {
	dst.CopyFrom(g.canvas.Screen())

	w := g.players[0].board.Width()
	hudX := boardX + 2*w + hudGap
	names := [2]string{"P1", "P2"}
	if !g.online {
		names = [2]string{"YOU", "CPU"}
	}
	dst.DrawTextColor(boardX, 0, names[0], core.ColorBrightWhite)
	dst.DrawTextColor(g.p2X, 0, names[1], core.ColorBrightWhite)

	dst.DrawTextColor(hudX, boardY, "NETRIS", core.ColorBrightWhite)
	dst.DrawTextColor(hudX, boardY+1, g.ruleset.Title(), core.ColorGray)
	for i := range g.players {
		y := boardY + 3 + 6*i
		score, lines, level, next := g.stats(i)
		dst.DrawText(hudX, y, names[i])
		dst.DrawText(hudX, y+1, fmt.Sprintf("Score %6d", score))
		dst.DrawText(hudX, y+2, fmt.Sprintf("Lines %6d", lines))
		dst.DrawText(hudX, y+3, fmt.Sprintf("Level %6d", level))
		dst.DrawText(hudX, y+4, "Next  "+next)
	}

	if g.over {
		for i, p := range g.players {
			x := boardX
			if i == 1 {
				x = g.p2X
			}
			title := "WINNER"
			switch {
			case g.winner == 0:
				title = "DRAW"
			case g.winner != p.id:
				title = "GAME OVER"
			}
			hint := ""
			if !g.online {
				hint = "R: restart"
			}
			drawBanner(dst, x, boardY, p.board, title, hint)
		}
		return
	}
	if g.paused {
		drawBanner(dst, boardX, boardY, g.players[0].board, "PAUSED", "P: resume")
	}
}

// stats returns the HUD values of side i.
func (g *VersusGame) stats(i int) (score, lines, level int, next string) {
	if g.mirrored {
		h := g.hud[i]
		return h.Score, h.Lines, h.Level, kindName(stateOf(h.Next))
	}
	p := g.players[i]
	return p.score, p.lines, p.level(), kindName(p.next)
}

func kindName(st *shape.State) string {
	if st == nil {
		return "-"
	}
	return st.Kind.String()
}

// State reports Player1's side.
func (g *VersusGame) State() core.GameState {
	p := g.players[0]
	level := p.level()
	if g.mirrored {
		level = g.hud[0].Level
	}
	return core.GameState{
		Score:    p.score,
		Lines:    p.lines,
		Level:    level,
		GameOver: g.over,
		Paused:   g.paused,
	}
}

// IsGameOver reports whether one side topped out.
func (g *VersusGame) IsGameOver() bool { return g.over }

// Winner returns the side still standing, or 0 while playing or on a draw.
func (g *VersusGame) Winner() core.PlayerID { return g.winner }

// Score1 returns Player1's score.
func (g *VersusGame) Score1() int { return g.players[0].score }

// Score2 returns Player2's score.
func (g *VersusGame) Score2() int { return g.players[1].score }

// Lines1 returns the lines Player1 cleared.
func (g *VersusGame) Lines1() int { return g.players[0].lines }

// Lines2 returns the lines Player2 cleared.
func (g *VersusGame) Lines2() int { return g.players[1].lines }

// Board returns the play board of side p.
func (g *VersusGame) Board(p core.PlayerID) *board.Board {
	if p == core.Player2 {
		return g.players[1].board
	}
	return g.players[0].board
}

// QueueJunk adds junk rows to side p, applied at its next lock.
func (g *VersusGame) QueueJunk(p core.PlayerID, rows int) {
	if p == core.Player2 {
		g.players[1].junk += rows
		return
	}
	g.players[0].junk += rows
}
