package multiplayer

import (
	"sync"
	"time"

	"github.com/vovakirdan/tui-netris/internal/core"
)

// OnlineGame is a game that two sessions can play through a match.
type OnlineGame interface {
	Reset(cfg core.RuntimeConfig)
	StepMulti(input core.MultiInputFrame) core.StepResult
	Snapshot() GameSnapshot
	IsGameOver() bool
	// Winner returns Player1 or Player2, or 0 while undecided or on a draw.
	Winner() PlayerID
	Score1() int
	Score2() int
	Lines1() int
	Lines2() int
}

// MatchResult is the outcome of a finished match.
type MatchResult struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  PlayerID
	Score1  int
	Score2  int
	Lines1  int
	Lines2  int
	Ticks   uint64
}

type playerInput struct {
	player PlayerID
	input  core.InputFrame
}

// OnlineMatch is the authoritative loop of one match. Inputs arriving
// between ticks are merged and consumed by the next tick.
type OnlineMatch struct {
	id     MatchID
	code   string
	gameID string
	game   OnlineGame

	sessions [2]SessionHandle

	inputs  chan playerInput
	pending [2]core.InputFrame

	tick     uint64
	tickRate int

	done     chan struct{}
	doneOnce sync.Once
	leave    chan SessionID
}

// NewOnlineMatch creates a match; Run starts it.
func NewOnlineMatch(id MatchID, code, gameID string, game OnlineGame, p1, p2 SessionHandle, tickRate int) *OnlineMatch {
	return &OnlineMatch{
		id:       id,
		code:     code,
		gameID:   gameID,
		game:     game,
		sessions: [2]SessionHandle{p1, p2},
		inputs:   make(chan playerInput, 64),
		pending:  [2]core.InputFrame{core.NewInputFrame(), core.NewInputFrame()},
		tickRate: max(1, tickRate),
		done:     make(chan struct{}),
		leave:    make(chan SessionID, 2),
	}
}

// ID returns the match id.
func (m *OnlineMatch) ID() MatchID { return m.id }

// Code returns the join code the match was created from.
func (m *OnlineMatch) Code() string { return m.code }

// GameID returns the registry id of the game.
func (m *OnlineMatch) GameID() string { return m.gameID }

// Session returns the handle playing side p.
func (m *OnlineMatch) Session(p PlayerID) SessionHandle {
	if p == Player2 {
		return m.sessions[1]
	}
	return m.sessions[0]
}

// SendInput queues input for the next tick. It never blocks; input is
// dropped when the queue is full.
func (m *OnlineMatch) SendInput(player PlayerID, input core.InputFrame) {
	select {
	case m.inputs <- playerInput{player: player, input: input}:
	default:
	}
}

// PlayerDisconnected ends the match in favour of the other side.
func (m *OnlineMatch) PlayerDisconnected(id SessionID) {
	select {
	case m.leave <- id:
	default:
	}
}

// Run drives the match until the game ends, a side leaves or Stop is
// called. onComplete receives the result unless the match was stopped.
func (m *OnlineMatch) Run(onComplete func(MatchResult)) {
	defer m.Stop()

	ticker := time.NewTicker(time.Second / time.Duration(m.tickRate))
	defer ticker.Stop()

	go m.watchSessions()

	finish := func(r MatchResult) {
		if onComplete != nil {
			onComplete(r)
		}
	}

	for {
		select {
		case <-ticker.C:
			if m.step() {
				finish(m.result(MatchEndReasonCompleted, m.game.Winner()))
				return
			}
		case id := <-m.leave:
			winner := Player1
			if id == m.sessions[0].ID() {
				winner = Player2
			}
			finish(m.result(MatchEndReasonDisconnect, winner))
			return
		case <-m.done:
			return
		}
	}
}

// step runs one tick and reports whether the game is over.
func (m *OnlineMatch) step() bool {
	m.drainInputs()

	frame := core.NewMultiInputFrame()
	frame.SetPlayer(Player1, m.pending[0])
	frame.SetPlayer(Player2, m.pending[1])
	m.pending = [2]core.InputFrame{core.NewInputFrame(), core.NewInputFrame()}

	m.game.StepMulti(frame)
	m.tick++

	evt := SnapshotEvent{MatchID: m.id, Tick: m.tick, Snapshot: m.game.Snapshot()}
	for _, s := range m.sessions {
		s.Send(evt)
	}
	return m.game.IsGameOver()
}

func (m *OnlineMatch) drainInputs() {
	for {
		select {
		case in := <-m.inputs:
			i := 0
			if in.player == Player2 {
				i = 1
			}
			m.pending[i].Merge(in.input)
		default:
			return
		}
	}
}

func (m *OnlineMatch) result(reason MatchEndReason, winner PlayerID) MatchResult {
	return MatchResult{
		MatchID: m.id,
		Reason:  reason,
		Winner:  winner,
		Score1:  m.game.Score1(),
		Score2:  m.game.Score2(),
		Lines1:  m.game.Lines1(),
		Lines2:  m.game.Lines2(),
		Ticks:   m.tick,
	}
}

func (m *OnlineMatch) watchSessions() {
	select {
	case <-m.sessions[0].Done():
		m.PlayerDisconnected(m.sessions[0].ID())
	case <-m.sessions[1].Done():
		m.PlayerDisconnected(m.sessions[1].ID())
	case <-m.done:
	}
}

// Stop ends the loop without a result. Safe to call more than once.
func (m *OnlineMatch) Stop() {
	m.doneOnce.Do(func() { close(m.done) })
}

// Done is closed once the match loop has finished.
func (m *OnlineMatch) Done() <-chan struct{} {
	return m.done
}
