package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-netris/internal/core"
	"github.com/vovakirdan/tui-netris/internal/multiplayer"
	"github.com/vovakirdan/tui-netris/internal/registry"
	"github.com/vovakirdan/tui-netris/internal/storage"
)

// sessionEventBuffer is the number of coordinator events a slow client
// may lag behind before old ones are dropped.
const sessionEventBuffer = 64

// SSHServerConfig configures the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on.
	Address string

	// HostKeyPath defaults to ~/.netris/host_key, generated when missing.
	HostKeyPath string

	DBPath      string
	IdleTimeout time.Duration
	TickRate    int

	// Logger defaults to stderr.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns the defaults used by `netris serve`.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      storage.DefaultPath,
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
	}
}

// SSHServer serves the menu, the solo games and online versus matches
// to every SSH client. All sessions share one lobby coordinator.
type SSHServer struct {
	config      SSHServerConfig
	server      *ssh.Server
	store       *storage.Store
	sessions    *multiplayer.SessionRegistry
	coordinator *multiplayer.Coordinator
	logger      *log.Logger
}

// NewSSHServer creates the server and starts its coordinator.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "netris-ssh",
		})
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		store = nil
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("tui: cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".netris", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", err)
	}

	sessions := multiplayer.NewSessionRegistry()
	coordCfg := multiplayer.DefaultCoordinatorConfig()
	coordCfg.TickRate = cfg.TickRate
	coordinator := multiplayer.NewCoordinator(coordCfg, registry.MatchFactory, sessions)
	coordinator.SetLogger(logger.WithPrefix("coordinator"))
	if store != nil {
		coordinator.SetResultSaver(store)
	}

	srv := &SSHServer{
		config:      cfg,
		store:       store,
		sessions:    sessions,
		coordinator: coordinator,
		logger:      logger,
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}
	srv.server = server

	coordinator.Start()
	return srv, nil
}

// teaHandler registers the client with the coordinator and builds its
// session model. The session is withdrawn when the connection closes.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	session := multiplayer.NewChannelSession(multiplayer.NewSessionID(), sessionEventBuffer)
	s.sessions.Register(session)
	go func() {
		<-sshSession.Context().Done()
		session.Close()
		s.sessions.Unregister(session.ID())
		s.coordinator.Send(multiplayer.SessionDisconnectedMsg{SessionID: session.ID()})
		if n := session.Dropped(); n > 0 {
			s.logger.Debug("slow client", "session", session.ID(), "dropped", n, "online", s.sessions.Count())
		}
	}()

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
	}
	logger := s.logger.With("user", sshSession.User(), "session", session.ID())
	model := NewSessionModel(s.store, s.coordinator, session, cfg, sshSession.User(), logger)

	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until SIGINT or SIGTERM, then shuts down.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
		s.logger.Info("shutting down...")
		return s.Shutdown()
	case err := <-errCh:
		s.coordinator.Stop()
		if s.store != nil {
			s.store.Close()
		}
		return fmt.Errorf("tui: SSH server: %w", err)
	}
}

// Shutdown stops the coordinator, closes connections and the database.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.coordinator.Stop()
	err := s.server.Shutdown(ctx)
	if s.store != nil {
		s.store.Close()
	}
	return err
}

// Addr returns the configured listen address.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type screen int

const (
	screenMenu screen = iota
	screenGame
	screenScores
	screenLobby
	screenMatch
)

// SessionModel is the top-level model of one SSH client. It switches
// between the menu, a solo game, the scoreboard, the online lobby and a
// running match, and owns the pump of coordinator events.
type SessionModel struct {
	store       *storage.Store
	coordinator *multiplayer.Coordinator
	session     *multiplayer.ChannelSession
	config      core.RuntimeConfig
	username    string
	logger      *log.Logger

	current screen
	menu    MenuModel
	game    GameModel
	scores  ScoreboardModel
	lobby   OnlineLobbyModel
	match   OnlineMatchModel

	quitting bool
}

// NewSessionModel creates the model of one connected client.
func NewSessionModel(store *storage.Store, coordinator *multiplayer.Coordinator, session *multiplayer.ChannelSession, cfg core.RuntimeConfig, username string, logger *log.Logger) SessionModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return SessionModel{
		store:       store,
		coordinator: coordinator,
		session:     session,
		config:      cfg,
		username:    username,
		logger:      logger,
		menu:        NewMenuModel(cfg, coordinator != nil),
	}
}

// Init starts the event pump.
func (m SessionModel) Init() tea.Cmd {
	return waitForEvent(m.session)
}

// Update routes msg to the active screen and handles screen changes.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
	case sessionClosedMsg:
		m.quitting = true
		return m, tea.Quit
	case multiplayer.SessionEvent:
		next, cmd := m.route(msg)
		return next, tea.Batch(cmd, waitForEvent(m.session))
	}
	return m.route(msg)
}

func (m SessionModel) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var updated tea.Model

	switch m.current {
	case screenMenu:
		if _, ok := msg.(multiplayer.SessionEvent); ok {
			return m, nil
		}
		updated, cmd = m.menu.Update(msg)
		m.menu = updated.(MenuModel)
		return m.afterMenu(cmd)

	case screenGame:
		if _, ok := msg.(multiplayer.SessionEvent); ok {
			return m, nil
		}
		updated, cmd = m.game.Update(msg)
		m.game = updated.(GameModel)
		switch {
		case m.game.IsQuitting():
			m.quitting = true
			return m, tea.Quit
		case m.game.BackToMenu():
			return m.toMenu()
		}

	case screenScores:
		updated, cmd = m.scores.Update(msg)
		m.scores = updated.(ScoreboardModel)
		switch {
		case m.scores.IsQuitting():
			m.quitting = true
			return m, tea.Quit
		case m.scores.IsGoingBack():
			return m.toMenu()
		}

	case screenLobby:
		updated, cmd = m.lobby.Update(msg)
		m.lobby = updated.(OnlineLobbyModel)
		return m.afterLobby(cmd)

	case screenMatch:
		updated, cmd = m.match.Update(msg)
		m.match = updated.(OnlineMatchModel)
		switch {
		case m.match.IsQuitting():
			m.quitting = true
			return m, tea.Quit
		case m.match.BackToMenu():
			return m.toMenu()
		}
	}
	return m, cmd
}

// afterMenu leaves the menu once the user picked something. The menu
// quits its own program when run standalone, so its command is dropped.
func (m SessionModel) afterMenu(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		m.scores = NewScoreboardModel(m.store, m.config.ScreenW, m.config.ScreenH)
		m.scores.embedded = true
		m.current = screenScores
		return m, nil

	case m.menu.Selected() != nil:
		item := m.menu.Selected()
		if item.Kind == registry.KindOnline {
			m.lobby = NewOnlineLobbyModel(item.GameID, m.session.ID(), m.coordinator, m.config.ScreenW, m.config.ScreenH)
			m.current = screenLobby
			return m, m.lobby.Init()
		}

		game, err := registry.Create(item.GameID)
		if err != nil {
			m.logger.Error("cannot create game", "game", item.GameID, "error", err)
			return m.toMenu()
		}
		m.game = NewGameModel(game, m.store, m.config, m.username, m.logger)
		m.current = screenGame
		return m, m.game.Init()
	}
	return m, cmd
}

func (m SessionModel) afterLobby(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch {
	case m.lobby.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.lobby.BackToMenu():
		return m.toMenu()

	case m.lobby.Started() != nil:
		started := *m.lobby.Started()
		match, err := NewOnlineMatchModel(started, m.session.ID(), m.coordinator, m.config, m.logger)
		if err != nil {
			m.logger.Error("cannot mirror match", "game", started.GameID, "error", err)
			m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.session.ID(), MatchID: started.MatchID})
			return m.toMenu()
		}
		m.logger.Info("match started", "match", started.MatchID, "side", started.Side)
		m.match = match
		m.current = screenMatch
		return m, m.match.Init()
	}
	return m, cmd
}

func (m SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.menu = NewMenuModel(m.config, m.coordinator != nil)
	m.current = screenMenu
	return m, m.menu.Init()
}

// View renders the active screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.current {
	case screenGame:
		return m.game.View()
	case screenScores:
		return m.scores.View()
	case screenLobby:
		return m.lobby.View()
	case screenMatch:
		return m.match.View()
	default:
		return m.menu.View()
	}
}
