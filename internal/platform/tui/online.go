package tui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/multiplayer"
	"github.com/vovakirdan/tui-netris/internal/registry"
)

// joinCodeLength matches the codes handed out by the coordinator.
const joinCodeLength = 6

// sessionClosedMsg is delivered once the session's transport is gone.
type sessionClosedMsg struct{}

// waitForEvent reads the next coordinator event of session. The caller
// re-arms it after every event so exactly one reader exists.
func waitForEvent(session *multiplayer.ChannelSession) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-session.Events():
			return evt
		case <-session.Done():
			return sessionClosedMsg{}
		}
	}
}

// OnlineState is a step of the lobby flow.
type OnlineState int

const (
	OnlineStateChooseMode OnlineState = iota
	OnlineStateHostWaiting
	OnlineStateJoinEnterCode
	OnlineStateJoinWaiting
	OnlineStateMatchStarting
)

// OnlineLobbyModel lets a session host a versus lobby or join one by
// code. Events are fed to it by the owner of the session's event pump.
type OnlineLobbyModel struct {
	state       OnlineState
	width       int
	height      int
	gameID      string
	title       string
	sessionID   multiplayer.SessionID
	coordinator *multiplayer.Coordinator

	lobbyCode     string
	joinCodeInput string
	lobbyError    string

	started *multiplayer.MatchStartedEvent

	backToMenu bool
	quitting   bool
}

// NewOnlineLobbyModel creates a lobby for gameID.
func NewOnlineLobbyModel(gameID string, sessionID multiplayer.SessionID, coordinator *multiplayer.Coordinator, width, height int) OnlineLobbyModel {
	title := gameID
	if info, ok := registry.Lookup(gameID); ok {
		title = info.Title
	}
	return OnlineLobbyModel{
		state:       OnlineStateChooseMode,
		width:       width,
		height:      height,
		gameID:      gameID,
		title:       title,
		sessionID:   sessionID,
		coordinator: coordinator,
	}
}

// Init implements tea.Model.
func (m OnlineLobbyModel) Init() tea.Cmd {
	return nil
}

// Update handles keys, resizes and coordinator events.
func (m OnlineLobbyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case multiplayer.LobbyCreatedEvent:
		m.lobbyCode = msg.Code
		m.lobbyError = ""
		m.state = OnlineStateHostWaiting
	case multiplayer.LobbyErrorEvent:
		m.lobbyError = msg.Message
		if m.state == OnlineStateJoinWaiting {
			m.state = OnlineStateJoinEnterCode
		}
	case multiplayer.LobbyJoinedEvent:
		m.lobbyCode = msg.Code
	case multiplayer.LobbyPlayerLeftEvent:
		m.lobbyError = "Opponent left the lobby"
	case multiplayer.MatchStartedEvent:
		m.started = &msg
		m.state = OnlineStateMatchStarting
	case multiplayer.MatchEndedEvent:
		// The host closed the lobby we joined.
		m.lobbyError = msg.Reason.String()
		m.state = OnlineStateJoinEnterCode
	}
	return m, nil
}

func (m OnlineLobbyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case OnlineStateChooseMode:
		switch msg.String() {
		case "h", "H", "1":
			m.coordinator.Send(multiplayer.CreateLobbyMsg{SessionID: m.sessionID, GameID: m.gameID})
		case "j", "J", "2":
			m.state = OnlineStateJoinEnterCode
			m.joinCodeInput = ""
			m.lobbyError = ""
		case "esc", "b":
			m.backToMenu = true
		case "q":
			m.quitting = true
			return m, tea.Quit
		}

	case OnlineStateHostWaiting:
		switch msg.String() {
		case "esc", "b":
			m.leave()
			m.backToMenu = true
		case "q":
			m.leave()
			m.quitting = true
			return m, tea.Quit
		}

	case OnlineStateJoinEnterCode:
		m.editJoinCode(msg.String())

	case OnlineStateJoinWaiting:
		if s := msg.String(); s == "esc" || s == "b" {
			m.leave()
			m.state = OnlineStateJoinEnterCode
		}
	}
	return m, nil
}

func (m *OnlineLobbyModel) editJoinCode(key string) {
	switch key {
	case "esc":
		m.backToMenu = true
	case "enter":
		if len(m.joinCodeInput) == joinCodeLength {
			m.state = OnlineStateJoinWaiting
			m.lobbyError = ""
			m.coordinator.Send(multiplayer.JoinLobbyMsg{SessionID: m.sessionID, Code: m.joinCodeInput})
		}
	case "backspace":
		if m.joinCodeInput != "" {
			m.joinCodeInput = m.joinCodeInput[:len(m.joinCodeInput)-1]
		}
	default:
		if len(key) == 1 && len(m.joinCodeInput) < joinCodeLength {
			c := strings.ToUpper(key)[0]
			if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
				m.joinCodeInput += string(c)
			}
		}
	}
}

// leave withdraws from the current lobby, if any.
func (m *OnlineLobbyModel) leave() {
	switch m.state {
	case OnlineStateHostWaiting:
		m.coordinator.Send(multiplayer.CancelLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
	case OnlineStateJoinWaiting:
		m.coordinator.Send(multiplayer.LeaveLobbyMsg{SessionID: m.sessionID, Code: m.joinCodeInput})
	}
}

var (
	lobbyTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	lobbyCodeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	lobbyErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// View renders the current step.
func (m OnlineLobbyModel) View() string {
	if m.quitting {
		return ""
	}

	var lines []string
	switch m.state {
	case OnlineStateChooseMode:
		lines = []string{
			lobbyTitleStyle.Render("ONLINE " + strings.ToUpper(m.title)), "",
			"[H] Host a game",
			"[J] Join a game", "",
			"Esc: Back  |  Q: Quit",
		}
	case OnlineStateHostWaiting:
		lines = []string{
			lobbyTitleStyle.Render("HOSTING"), "",
			"Share this code with your opponent:", "",
			lobbyCodeStyle.Render("[ " + m.lobbyCode + " ]"), "",
			"Waiting for a player to join...", "",
			"Esc: Cancel",
		}
	case OnlineStateJoinEnterCode:
		code := m.joinCodeInput
		if len(code) < joinCodeLength {
			code += "_" + strings.Repeat(" ", joinCodeLength-len(code)-1)
		}
		lines = []string{
			lobbyTitleStyle.Render("JOIN"), "",
			"Enter the game code:", "",
			lobbyCodeStyle.Render("[ " + code + " ]"), "",
			"Enter: Connect  |  Esc: Back",
		}
	case OnlineStateJoinWaiting:
		lines = []string{
			lobbyTitleStyle.Render("CONNECTING"), "",
			"Joining " + m.joinCodeInput + "...", "",
			"Esc: Cancel",
		}
	case OnlineStateMatchStarting:
		lines = []string{lobbyTitleStyle.Render("MATCH STARTING"), "", "Get ready!"}
	}
	if m.lobbyError != "" {
		lines = append(lines, "", lobbyErrStyle.Render("Error: "+m.lobbyError))
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, line := range lines {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}
	return b.String()
}

// State returns the current lobby step.
func (m OnlineLobbyModel) State() OnlineState {
	return m.state
}

// Started returns the match start event once one arrived.
func (m OnlineLobbyModel) Started() *multiplayer.MatchStartedEvent {
	return m.started
}

// BackToMenu reports whether the user left the lobby.
func (m OnlineLobbyModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting reports whether the user asked to quit.
func (m OnlineLobbyModel) IsQuitting() bool {
	return m.quitting
}

// LobbyCode returns the code of the hosted or joined lobby.
func (m OnlineLobbyModel) LobbyCode() string {
	return m.lobbyCode
}

// OnlineMatchModel is the client side of a running match. It forwards
// key presses to the coordinator and mirrors the server's snapshots into
// a local game instance used only for rendering.
type OnlineMatchModel struct {
	game        registry.OnlineGame
	screen      *core.Screen
	coordinator *multiplayer.Coordinator
	sessionID   multiplayer.SessionID
	matchID     multiplayer.MatchID
	side        core.PlayerID
	keyMapper   *KeyMapper
	logger      *log.Logger

	result     *multiplayer.MatchEndedEvent
	backToMenu bool
	quitting   bool
}

// NewOnlineMatchModel creates the client view of the match in started.
func NewOnlineMatchModel(started multiplayer.MatchStartedEvent, sessionID multiplayer.SessionID, coordinator *multiplayer.Coordinator, cfg core.RuntimeConfig, logger *log.Logger) (OnlineMatchModel, error) {
	game, err := registry.CreateOnline(started.GameID)
	if err != nil {
		return OnlineMatchModel{}, err
	}
	game.Reset(cfg)
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return OnlineMatchModel{
		game:        game,
		screen:      core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		coordinator: coordinator,
		sessionID:   sessionID,
		matchID:     started.MatchID,
		side:        started.Side,
		keyMapper:   NewKeyMapper(),
		logger:      logger,
	}, nil
}

// Init implements tea.Model.
func (m OnlineMatchModel) Init() tea.Cmd {
	return nil
}

// Update applies snapshots and forwards input.
func (m OnlineMatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
	case multiplayer.SnapshotEvent:
		if msg.MatchID == m.matchID {
			m.game.ApplySnapshot(msg.Snapshot)
		}
	case multiplayer.MatchEndedEvent:
		if msg.MatchID == m.matchID {
			m.result = &msg
			m.logger.Info("match ended", "match", m.matchID, "reason", msg.Reason, "winner", msg.Winner)
		}
	}
	return m, nil
}

func (m OnlineMatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	if m.result != nil {
		if action == core.ActionBack || action == core.ActionConfirm {
			m.backToMenu = true
		}
		return m, nil
	}

	switch action {
	case core.ActionNone, core.ActionPause, core.ActionRestart, core.ActionConfirm:
		// A match cannot be paused or restarted by one side.
	case core.ActionBack:
		m.leave()
		m.backToMenu = true
	default:
		frame := core.NewInputFrame()
		frame.Set(action)
		m.coordinator.Send(multiplayer.PlayerInputMsg{MatchID: m.matchID, Player: m.side, Input: frame})
	}
	return m, nil
}

func (m *OnlineMatchModel) leave() {
	if m.result == nil {
		m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.sessionID, MatchID: m.matchID})
	}
}

// View renders the mirrored boards and the outcome once known.
func (m OnlineMatchModel) View() string {
	if m.quitting {
		return ""
	}
	m.screen.Clear()
	m.game.Render(m.screen)

	status := fmt.Sprintf("You are %s  |  Esc: leave", m.side)
	if m.result != nil {
		status = m.outcome() + "  |  Enter: back to menu"
	}
	m.screen.DrawTextColor(1, m.screen.Height()-1, status, core.ColorBrightWhite)
	return RenderScreen(m.screen)
}

func (m OnlineMatchModel) outcome() string {
	r := m.result
	score := fmt.Sprintf("%d : %d", r.Score1, r.Score2)
	switch {
	case r.Winner == 0:
		return "Draw " + score
	case r.Winner == m.side:
		return "You win " + score
	case r.Reason == multiplayer.MatchEndReasonDisconnect:
		return "You left " + score
	default:
		return "You lose " + score
	}
}

// Result returns the final result once the match ended.
func (m OnlineMatchModel) Result() *multiplayer.MatchEndedEvent {
	return m.result
}

// BackToMenu reports whether the user left the match view.
func (m OnlineMatchModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting reports whether the user asked to quit.
func (m OnlineMatchModel) IsQuitting() bool {
	return m.quitting
}
