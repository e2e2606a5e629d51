package multiplayer

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-netris/internal/core"
)

type fakeSnapshot struct{ tick int }

func (fakeSnapshot) IsGameSnapshot() {}

// fakeGame ends after endAfter ticks with Player1 winning. It counts
// RotateCCW presses per side.
type fakeGame struct {
	mu       sync.Mutex
	ticks    int
	endAfter int
	rotates  [2]int
}

func (g *fakeGame) Reset(core.RuntimeConfig) {}

func (g *fakeGame) StepMulti(in core.MultiInputFrame) core.StepResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ticks++
	if in.Player1().Has(core.ActionRotateCCW) {
		g.rotates[0]++
	}
	if in.Player2().Has(core.ActionRotateCCW) {
		g.rotates[1]++
	}
	return core.StepResult{}
}

func (g *fakeGame) Snapshot() GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fakeSnapshot{tick: g.ticks}
}

func (g *fakeGame) IsGameOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.endAfter > 0 && g.ticks >= g.endAfter
}

func (g *fakeGame) Winner() PlayerID { return Player1 }
func (g *fakeGame) Score1() int      { return 100 }
func (g *fakeGame) Score2() int      { return 40 }
func (g *fakeGame) Lines1() int      { return 3 }
func (g *fakeGame) Lines2() int      { return 1 }

func (g *fakeGame) rotated(side int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotates[side]
}

type captureSaver struct {
	mu      sync.Mutex
	results []MatchResultData
}

func (s *captureSaver) SaveMatchResult(r MatchResultData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return nil
}

func (s *captureSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// waitFor reads events until one of type T arrives.
func waitFor[T SessionEvent](t *testing.T, s *ChannelSession) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-s.Events():
			if v, ok := evt.(T); ok {
				return v
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func newTestCoordinator(t *testing.T, game *fakeGame) (*Coordinator, *SessionRegistry) {
	t.Helper()
	reg := NewSessionRegistry()
	cfg := DefaultCoordinatorConfig()
	cfg.TickRate = 200
	c := NewCoordinator(cfg, func(gameID string, _ core.RuntimeConfig) (OnlineGame, error) {
		if gameID != "netris_versus" {
			return nil, errors.New("unknown game")
		}
		return game, nil
	}, reg)
	c.Start()
	t.Cleanup(c.Stop)
	return c, reg
}

func newSession(reg *SessionRegistry) *ChannelSession {
	s := NewChannelSession(NewSessionID(), 256)
	reg.Register(s)
	return s
}

func TestJoinCodeAlphabet(t *testing.T) {
	for range 50 {
		code := generateJoinCode()
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, (r >= 'A' && r <= 'Z') || (r >= '2' && r <= '7'), "unexpected rune %q", r)
		}
	}
}

func TestNewIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
	assert.NotEqual(t, NewMatchID(), NewMatchID())
}

func TestLobbyErrors(t *testing.T) {
	c, reg := newTestCoordinator(t, &fakeGame{})
	host := newSession(reg)
	other := newSession(reg)

	c.Send(JoinLobbyMsg{SessionID: other.ID(), Code: "NOPE22"})
	assert.Equal(t, "Lobby not found", waitFor[LobbyErrorEvent](t, other).Message)

	c.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "netris_versus"})
	created := waitFor[LobbyCreatedEvent](t, host)

	c.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "netris_versus"})
	assert.Equal(t, "Already in a lobby", waitFor[LobbyErrorEvent](t, host).Message)

	c.Send(JoinLobbyMsg{SessionID: host.ID(), Code: created.Code})
	assert.Equal(t, "Already in a lobby", waitFor[LobbyErrorEvent](t, host).Message)

	c.Send(CancelLobbyMsg{SessionID: host.ID(), Code: created.Code})
	require.Eventually(t, func() bool { return c.LobbyCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMatchRunsToCompletion(t *testing.T) {
	game := &fakeGame{endAfter: 20}
	c, reg := newTestCoordinator(t, game)
	saver := &captureSaver{}
	c.SetResultSaver(saver)

	host := newSession(reg)
	joiner := newSession(reg)

	c.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "netris_versus"})
	created := waitFor[LobbyCreatedEvent](t, host)
	assert.Equal(t, "netris_versus", created.GameID)

	// Codes are case-insensitive.
	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: " " + strings.ToLower(created.Code) + " "})

	started := waitFor[MatchStartedEvent](t, joiner)
	assert.Equal(t, Player2, started.Side)
	assert.Equal(t, "netris_versus", started.GameID)

	end := waitFor[MatchEndedEvent](t, host)
	assert.Equal(t, MatchEndReasonCompleted, end.Reason)
	assert.Equal(t, Player1, end.Winner)
	assert.Equal(t, 3, end.Lines1)
	assert.Equal(t, 1, end.Lines2)

	require.Eventually(t, func() bool { return saver.count() == 1 }, time.Second, 5*time.Millisecond)
	saved := saver.results[0]
	assert.Equal(t, string(host.ID()), saved.WinnerSession)
	assert.Equal(t, string(started.MatchID), saved.MatchID)
	assert.Equal(t, 100, saved.Score1)
	assert.Equal(t, 0, c.MatchCount())
}

func TestDisconnectAwardsOpponent(t *testing.T) {
	c, reg := newTestCoordinator(t, &fakeGame{})
	host := newSession(reg)
	joiner := newSession(reg)

	c.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "netris_versus"})
	created := waitFor[LobbyCreatedEvent](t, host)
	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: created.Code})
	waitFor[MatchStartedEvent](t, host)

	joiner.Close()

	end := waitFor[MatchEndedEvent](t, host)
	assert.Equal(t, MatchEndReasonDisconnect, end.Reason)
	assert.Equal(t, Player1, end.Winner)
}

func TestInputsReachTheGame(t *testing.T) {
	game := &fakeGame{}
	c, reg := newTestCoordinator(t, game)
	host := newSession(reg)
	joiner := newSession(reg)

	c.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "netris_versus"})
	created := waitFor[LobbyCreatedEvent](t, host)
	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: created.Code})
	started := waitFor[MatchStartedEvent](t, joiner)

	in := core.NewInputFrame()
	in.Set(core.ActionRotateCCW)
	c.Send(PlayerInputMsg{MatchID: started.MatchID, Player: Player2, Input: in})

	require.Eventually(t, func() bool { return game.rotated(1) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, game.rotated(0))

	snap := waitFor[SnapshotEvent](t, host)
	assert.Equal(t, started.MatchID, snap.MatchID)
	assert.IsType(t, fakeSnapshot{}, snap.Snapshot)
}

func TestUnknownGameClosesLobby(t *testing.T) {
	c, reg := newTestCoordinator(t, &fakeGame{})
	host := newSession(reg)
	joiner := newSession(reg)

	c.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "no_such_game"})
	created := waitFor[LobbyCreatedEvent](t, host)
	c.Send(JoinLobbyMsg{SessionID: joiner.ID(), Code: created.Code})

	assert.Equal(t, "Failed to create game", waitFor[LobbyErrorEvent](t, joiner).Message)
	assert.Equal(t, 0, c.LobbyCount())
}

func TestExpiredLobbiesAreRemoved(t *testing.T) {
	c, reg := newTestCoordinator(t, &fakeGame{})
	host := newSession(reg)

	c.Send(CreateLobbyMsg{SessionID: host.ID(), GameID: "netris_versus"})
	waitFor[LobbyCreatedEvent](t, host)

	c.cleanupExpiredLobbies(time.Now().Add(time.Hour))
	assert.Equal(t, "Lobby expired", waitFor[LobbyErrorEvent](t, host).Message)
	assert.Equal(t, 0, c.LobbyCount())
}

func TestSendInputNeverBlocks(t *testing.T) {
	a := NewChannelSession("a", 1)
	b := NewChannelSession("b", 1)
	m := NewOnlineMatch("m", "CODE", "netris_versus", &fakeGame{}, a, b, 60)
	for range 200 {
		m.SendInput(Player1, core.NewInputFrame())
	}
	m.Stop()
	m.Stop()
	<-m.Done()
}

func TestChannelSessionKeepsControlEventsWhenFull(t *testing.T) {
	s := NewChannelSession("s", 2)
	s.Send(SnapshotEvent{MatchID: "m"})
	s.Send(SnapshotEvent{MatchID: "m"})
	s.Send(SnapshotEvent{MatchID: "m"})
	assert.Equal(t, int64(1), s.Dropped())

	s.Send(MatchEndedEvent{MatchID: "m"})
	assert.Equal(t, int64(2), s.Dropped())

	assert.IsType(t, SnapshotEvent{}, <-s.Events())
	assert.IsType(t, MatchEndedEvent{}, <-s.Events())
}

func TestChannelSessionClosed(t *testing.T) {
	reg := NewSessionRegistry()
	s := newSession(reg)
	assert.Equal(t, 1, reg.Count())

	s.Close()
	s.Close()
	s.Send(LobbyErrorEvent{Message: "late"})
	assert.Empty(t, s.Events())

	reg.Unregister(s.ID())
	_, ok := reg.Get(s.ID())
	assert.False(t, ok)
}
