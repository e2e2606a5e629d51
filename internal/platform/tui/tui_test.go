package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/games/netris"
	"github.com/vovakirdan/tui-netris/internal/multiplayer"
	"github.com/vovakirdan/tui-netris/internal/registry"
	"github.com/vovakirdan/tui-netris/internal/storage"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyMapper(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		msg    tea.KeyMsg
		action core.Action
		quit   bool
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft, false},
		{runes("j"), core.ActionLeft, false},
		{runes("l"), core.ActionRight, false},
		{runes("k"), core.ActionRotateCCW, false},
		{runes("z"), core.ActionRotateCW, false},
		{runes("m"), core.ActionSoftDrop, false},
		{tea.KeyMsg{Type: tea.KeySpace}, core.ActionHardDrop, false},
		{runes("p"), core.ActionPause, false},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack, false},
		{runes("q"), core.ActionQuit, true},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{runes("x"), core.ActionNone, false},
	}
	for _, tt := range tests {
		action, quit := km.MapKey(tt.msg)
		if action != tt.action || quit != tt.quit {
			t.Errorf("MapKey(%q) = %v, %v; expected %v, %v", tt.msg.String(), action, quit, tt.action, tt.quit)
		}
	}

	frame := core.NewInputFrame()
	if !km.MapKeyToFrame(runes("q"), &frame) {
		t.Error("quit was not reported")
	}
	if frame.Has(core.ActionQuit) {
		t.Error("quit was queued as a game action")
	}
}

func TestMenuListsOnlineGamesOnlyWithCoordinator(t *testing.T) {
	has := func(m MenuModel, id string) bool {
		for _, item := range m.items {
			if item.GameID == id {
				return true
			}
		}
		return false
	}

	local := NewMenuModel(core.DefaultConfig(), false)
	if !has(local, netris.IDSolo) || !has(local, netris.IDCPU) {
		t.Error("local menu is missing solo games")
	}
	if has(local, netris.IDVersus) {
		t.Error("local menu lists the online game")
	}
	if !has(NewMenuModel(core.DefaultConfig(), true), netris.IDVersus) {
		t.Error("server menu is missing the online game")
	}
}

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawTextColor(0, 0, "[]", core.ColorRed)
	s.DrawText(2, 0, "ab")
	s.DrawTextColor(0, 1, "x", 99)

	out := RenderScreen(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, expected 2", len(lines))
	}
	if !strings.Contains(out, "[]") || !strings.Contains(out, "ab") || !strings.Contains(out, "x") {
		t.Errorf("rendered text lost: %q", out)
	}
}

func TestGameModelIgnoresStaleTicks(t *testing.T) {
	game, err := registry.Create(netris.IDSolo)
	if err != nil {
		t.Fatal(err)
	}
	cfg := core.DefaultConfig()
	cfg.Seed = 7
	m := NewGameModel(game, nil, cfg, "tester", nil)
	m.Init()

	updated, cmd := m.Update(TickMsg{Gen: m.gen + 1000})
	if cmd != nil {
		t.Error("a stale tick scheduled another tick")
	}
	m = updated.(GameModel)

	_, cmd = m.Update(TickMsg{Gen: m.gen})
	if cmd == nil {
		t.Error("a current tick did not schedule the next one")
	}
}

func TestGameModelBackOnlyWhenPausedOrOver(t *testing.T) {
	game, err := registry.Create(netris.IDSolo)
	if err != nil {
		t.Fatal(err)
	}
	m := NewGameModel(game, nil, core.DefaultConfig(), "tester", nil)
	m.Init()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(GameModel)
	if m.BackToMenu() {
		t.Fatal("back while running")
	}

	updated, _ = m.Update(runes("p"))
	m = updated.(GameModel)
	updated, _ = m.Update(TickMsg{Gen: m.gen})
	m = updated.(GameModel)
	if !m.State().Paused {
		t.Fatal("game did not pause")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !updated.(GameModel).BackToMenu() {
		t.Error("back ignored while paused")
	}
}

func TestLobbyJoinCodeInput(t *testing.T) {
	coord := multiplayer.NewCoordinator(multiplayer.DefaultCoordinatorConfig(), registry.MatchFactory, multiplayer.NewSessionRegistry())
	m := NewOnlineLobbyModel(netris.IDVersus, "s1", coord, 80, 24)

	press := func(msg tea.KeyMsg) {
		updated, _ := m.Update(msg)
		m = updated.(OnlineLobbyModel)
	}
	press(runes("j"))
	if m.State() != OnlineStateJoinEnterCode {
		t.Fatalf("state = %v, expected join code entry", m.State())
	}
	for _, r := range "ab1!-cdzz" {
		press(runes(string(r)))
	}
	if m.joinCodeInput != "AB1CDZ" {
		t.Errorf("code = %q, expected AB1CDZ", m.joinCodeInput)
	}
	press(tea.KeyMsg{Type: tea.KeyBackspace})
	press(tea.KeyMsg{Type: tea.KeyEnter})
	if m.State() != OnlineStateJoinEnterCode {
		t.Error("a short code was submitted")
	}
	if !strings.Contains(m.View(), "AB1CD") {
		t.Error("view does not show the typed code")
	}
}

func nextEvent[T multiplayer.SessionEvent](t *testing.T, s *multiplayer.ChannelSession) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-s.Events():
			if e, ok := evt.(T); ok {
				return e
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestOnlineLobbyToMatch(t *testing.T) {
	sessions := multiplayer.NewSessionRegistry()
	coord := multiplayer.NewCoordinator(multiplayer.DefaultCoordinatorConfig(), registry.MatchFactory, sessions)
	coord.Start()
	defer coord.Stop()

	hostSession := multiplayer.NewChannelSession("host", 256)
	joinSession := multiplayer.NewChannelSession("join", 256)
	sessions.Register(hostSession)
	sessions.Register(joinSession)

	host := NewOnlineLobbyModel(netris.IDVersus, hostSession.ID(), coord, 80, 24)
	updated, _ := host.Update(runes("h"))
	host = updated.(OnlineLobbyModel)

	updated, _ = host.Update(nextEvent[multiplayer.LobbyCreatedEvent](t, hostSession))
	host = updated.(OnlineLobbyModel)
	if host.State() != OnlineStateHostWaiting || host.LobbyCode() == "" {
		t.Fatalf("host state = %v, code %q", host.State(), host.LobbyCode())
	}

	joiner := NewOnlineLobbyModel(netris.IDVersus, joinSession.ID(), coord, 80, 24)
	updated, _ = joiner.Update(runes("j"))
	joiner = updated.(OnlineLobbyModel)
	for _, r := range host.LobbyCode() {
		updated, _ = joiner.Update(runes(string(r)))
		joiner = updated.(OnlineLobbyModel)
	}
	updated, _ = joiner.Update(tea.KeyMsg{Type: tea.KeyEnter})
	joiner = updated.(OnlineLobbyModel)

	started := nextEvent[multiplayer.MatchStartedEvent](t, joinSession)
	updated, _ = joiner.Update(started)
	joiner = updated.(OnlineLobbyModel)
	if joiner.Started() == nil || joiner.Started().Side != core.Player2 {
		t.Fatalf("joiner did not start as P2: %+v", joiner.Started())
	}

	match, err := NewOnlineMatchModel(started, joinSession.ID(), coord, core.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	updated, _ = match.Update(nextEvent[multiplayer.SnapshotEvent](t, joinSession))
	match = updated.(OnlineMatchModel)
	if view := match.View(); !strings.Contains(view, "You are P2") {
		t.Errorf("match view lacks the side line")
	}

	updated, _ = match.Update(tea.KeyMsg{Type: tea.KeyEsc})
	match = updated.(OnlineMatchModel)
	if !match.BackToMenu() {
		t.Fatal("esc did not leave the match")
	}
	end := nextEvent[multiplayer.MatchEndedEvent](t, hostSession)
	if end.Winner != core.Player1 || end.Reason != multiplayer.MatchEndReasonDisconnect {
		t.Errorf("end = %+v, expected P1 winning by disconnect", end)
	}
}

func TestSessionModelScreens(t *testing.T) {
	coord := multiplayer.NewCoordinator(multiplayer.DefaultCoordinatorConfig(), registry.MatchFactory, multiplayer.NewSessionRegistry())
	session := multiplayer.NewChannelSession("s", 8)
	m := NewSessionModel(nil, coord, session, core.DefaultConfig(), "tester", nil)

	send := func(msg tea.Msg) tea.Cmd {
		updated, cmd := m.Update(msg)
		m = updated.(SessionModel)
		return cmd
	}

	send(tea.KeyMsg{Type: tea.KeyTab})
	if m.current != screenScores {
		t.Fatalf("screen = %v, expected scores", m.current)
	}
	send(tea.KeyMsg{Type: tea.KeyEsc})
	if m.current != screenMenu {
		t.Fatalf("screen = %v, expected menu", m.current)
	}

	// The menu is sorted: netris is first.
	if cmd := send(tea.KeyMsg{Type: tea.KeyEnter}); cmd == nil {
		t.Error("starting a game scheduled no tick")
	}
	if m.current != screenGame || m.game.game.ID() != netris.IDSolo {
		t.Fatalf("screen = %v, expected the solo game", m.current)
	}

	// Coordinator events outside the lobby are dropped but the pump is re-armed.
	if cmd := send(multiplayer.LobbyErrorEvent{Message: "late"}); cmd == nil {
		t.Error("event pump was not re-armed")
	}

	session.Close()
	if cmd := send(sessionClosedMsg{}); cmd == nil || !m.quitting {
		t.Error("closed session did not quit")
	}
}

func TestScoreboardPages(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := store.SaveScore(storage.ScoreEntry{GameID: netris.IDSolo, Player: "ann", Score: 1200, Lines: 11, Level: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveMatch(storage.MatchRecord{
		MatchID: "m1", GameID: netris.IDVersus,
		Player1Session: "a", Player2Session: "b", WinnerSession: "b",
		Score1: 40, Score2: 300, EndReason: "topped out", Duration: 75,
	}); err != nil {
		t.Fatal(err)
	}

	m := NewScoreboardModel(store, 100, 30)
	if len(m.games) != len(registry.List()) {
		t.Fatalf("pages = %d, expected one per game", len(m.games))
	}

	seen := map[string]bool{}
	for range m.games {
		info, _ := m.current()
		view := m.View()
		switch info.ID {
		case netris.IDSolo:
			seen[info.ID] = strings.Contains(view, "ann") && strings.Contains(view, "1200")
		case netris.IDVersus:
			seen[info.ID] = strings.Contains(view, "P2") && strings.Contains(view, "1:15")
		}
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = updated.(ScoreboardModel)
	}
	for _, id := range []string{netris.IDSolo, netris.IDVersus} {
		if !seen[id] {
			t.Errorf("page %s did not show its records", id)
		}
	}

	m.embedded = true
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil || !updated.(ScoreboardModel).IsGoingBack() {
		t.Error("embedded scoreboard should go back without quitting")
	}
}
