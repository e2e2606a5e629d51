package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-netris/internal/registry"
	"github.com/vovakirdan/tui-netris/internal/storage"
)

const maxScores = 100

// ScoreboardKeyMap binds the scoreboard keys.
type ScoreboardKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Next key.Binding
	Prev key.Binding
	Back key.Binding
	Quit key.Binding
}

func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.Prev, k.Back, k.Quit}
}

func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Next, k.Prev}, {k.Back, k.Quit}}
}

func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Next: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next")),
		Prev: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab", "prev")),
		Back: key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ScoreboardModel shows one page per registered game: the best scores of
// local games, the latest results of online ones.
type ScoreboardModel struct {
	games  []registry.GameInfo
	page   int
	store  *storage.Store
	table  table.Model
	help   help.Model
	keys   ScoreboardKeyMap
	width  int
	height int

	rows    int
	summary string
	loadErr error

	quitting  bool
	goingBack bool

	// embedded scoreboards run inside another program and must not quit it.
	embedded bool
}

func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		games:  registry.List(),
		store:  store,
		help:   help.New(),
		keys:   DefaultScoreboardKeyMap(),
		width:  width,
		height: height,
	}
	m.load()
	return m
}

func (m *ScoreboardModel) current() (registry.GameInfo, bool) {
	if len(m.games) == 0 {
		return registry.GameInfo{}, false
	}
	return m.games[m.page], true
}

// load refreshes the table for the current page.
func (m *ScoreboardModel) load() {
	m.rows, m.summary, m.loadErr = 0, "", nil
	info, ok := m.current()
	if !ok {
		m.table = newScoreTable(nil, nil, m.height)
		return
	}
	if info.Kind == registry.KindOnline {
		m.loadMatches(info)
	} else {
		m.loadScores(info)
	}
}

func (m *ScoreboardModel) loadScores(info registry.GameInfo) {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Score", Width: 9},
		{Title: "Lines", Width: 6},
		{Title: "Level", Width: 6},
		{Title: "Player", Width: 12},
		{Title: "Date", Width: 12},
	}
	var rows []table.Row
	if m.store != nil {
		scores, err := m.store.TopScores(info.ID, maxScores)
		if err != nil {
			m.loadErr = err
		}
		for i, s := range scores {
			rows = append(rows, table.Row{
				strconv.Itoa(i + 1),
				strconv.Itoa(s.Score),
				strconv.Itoa(s.Lines),
				strconv.Itoa(s.Level),
				orDash(s.Player),
				s.CreatedAt.Format("Jan 02 15:04"),
			})
		}
		if st, err := m.store.GetGameStats(info.ID); err == nil && st.GamesCount > 0 {
			m.summary = fmt.Sprintf("%d games  |  avg %.0f  |  %d lines  |  best level %d",
				st.GamesCount, st.AvgScore, st.TotalLines, st.BestLevel)
		}
	}
	m.rows = len(rows)
	m.table = newScoreTable(columns, rows, m.height)
}

func (m *ScoreboardModel) loadMatches(info registry.GameInfo) {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "P1", Width: 11},
		{Title: "P2", Width: 11},
		{Title: "Winner", Width: 6},
		{Title: "Reason", Width: 18},
		{Title: "Time", Width: 6},
	}
	var rows []table.Row
	if m.store != nil {
		matches, err := m.store.RecentMatches(maxScores)
		if err != nil {
			m.loadErr = err
		}
		for _, r := range matches {
			if r.GameID != info.ID {
				continue
			}
			rows = append(rows, table.Row{
				r.CreatedAt.Format("Jan 02 15:04"),
				fmt.Sprintf("%d/%dL", r.Score1, r.Lines1),
				fmt.Sprintf("%d/%dL", r.Score2, r.Lines2),
				matchWinner(r),
				r.EndReason,
				fmt.Sprintf("%d:%02d", r.Duration/60, r.Duration%60),
			})
		}
	}
	m.rows = len(rows)
	m.table = newScoreTable(columns, rows, m.height)
}

func matchWinner(r storage.MatchRecord) string {
	switch r.WinnerSession {
	case "":
		return "draw"
	case r.Player1Session:
		return "P1"
	case r.Player2Session:
		return "P2"
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newScoreTable(columns []table.Column, rows []table.Row, screenH int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(screenH-9, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			if m.embedded {
				return m, nil
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.turn(1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.turn(-1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.load()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *ScoreboardModel) turn(delta int) {
	if len(m.games) == 0 {
		return
	}
	m.page = (m.page + delta + len(m.games)) % len(m.games)
	m.load()
}

func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var b strings.Builder
	b.WriteString(centerText(title.Render("HIGH SCORES"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.tabs(), m.width))
	b.WriteString("\n")
	b.WriteString(centerText(dim.Render(m.summary), m.width))
	b.WriteString("\n")
	b.WriteString(centerText(box.Render(m.body()), m.width))
	b.WriteString("\n")
	b.WriteString(dim.Render(m.help.View(m.keys)))
	return b.String()
}

func (m ScoreboardModel) tabs() string {
	idle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	active := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	parts := make([]string, len(m.games))
	for i, g := range m.games {
		if i == m.page {
			parts[i] = active.Render(g.Title)
		} else {
			parts[i] = idle.Render(g.Title)
		}
	}
	line := strings.Join(parts, " ")
	if lipgloss.Width(line) > m.width-2 && len(m.games) > 0 {
		return active.Render("< " + m.games[m.page].Title + " >")
	}
	return line
}

func (m ScoreboardModel) body() string {
	msg := lipgloss.NewStyle().Padding(2, 4)
	switch {
	case m.loadErr != nil:
		return msg.Foreground(lipgloss.Color("1")).Render("Could not load scores: " + m.loadErr.Error())
	case m.store == nil:
		return msg.Foreground(lipgloss.Color("241")).Render("Scores are not being saved.")
	case m.rows == 0:
		info, _ := m.current()
		text := "No games finished yet.\nClear some lines!"
		if info.Kind == registry.KindOnline {
			text = "No matches played yet."
		}
		return msg.Foreground(lipgloss.Color("241")).Italic(true).Render(text)
	}
	return m.table.View()
}

// IsGoingBack reports whether the user left for the menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard shows the scoreboard in its own program. goBack is false
// when the user quit.
func RunScoreboard(store *storage.Store, width, height int) (goBack bool, err error) {
	final, err := tea.NewProgram(NewScoreboardModel(store, width, height), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ScoreboardModel)
	return ok && m.IsGoingBack(), nil
}
