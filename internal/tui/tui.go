package tui

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mzxrai/claude-sessions/internal/render"
	"github.com/mzxrai/claude-sessions/internal/resume"
	"github.com/mzxrai/claude-sessions/internal/session"
)

type tuiMode int

const (
	modeList tuiMode = iota
	modeFilter
	modeDetail
)

// model

type model struct {
	store    *session.Store
	home     string
	sessions []session.Session // full set, newest first
	filtered []session.Session
	query    string
	mode     tuiMode

	cursor int
	offset int

	filterInput textinput.Model
	detail      viewport.Model
	detailKey   string // session key of the rendered conversation

	width  int
	height int
	ready  bool
	note   string // transient status message (copy feedback)

	selected *session.Session
	quitting bool
}

func initialModel(store *session.Store, home string) model {
	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	sessions := store.All()
	sort.SliceStable(sessions, func(i, j int) bool {
		return session.ListTimeMS(sessions[i]) > session.ListTimeMS(sessions[j])
	})

	return model{
		store:       store,
		home:        home,
		sessions:    sessions,
		filtered:    sessions,
		filterInput: ti,
		detail:      viewport.New(0, 0),
	}
}

// Run starts the session picker and blocks until it exits. It returns the
// session chosen with Enter, or nil when the user quit without picking one.
func Run(store *session.Store) (*session.Session, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	m := initialModel(store, home)
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	return finalModel.(model).selected, nil
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.detail.Width = msg.Width
		m.detail.Height = m.listHeight()
		m.adjustScroll(m.listHeight())
		return m, nil

	case tea.KeyMsg:
		m.note = ""
		switch m.mode {
		case modeFilter:
			return m.updateFilter(msg)
		case modeDetail:
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	h := m.listHeight()

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Filter):
		m.mode = modeFilter
		m.filterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Enter):
		if sess, ok := m.current(); ok {
			if full, ok := m.store.GetExact(sess.Source, sess.ID); ok {
				sess = full
			}
			m.selected = &sess
			m.quitting = true
			return m, tea.Quit
		}

	case key.Matches(msg, keys.Detail):
		return m.enterDetail()

	case key.Matches(msg, keys.Copy):
		if sess, ok := m.current(); ok {
			cmd := resume.OneLiner(sess)
			if err := clipboard.WriteAll(cmd); err != nil {
				m.note = "clipboard unavailable: " + cmd
			} else {
				m.note = "copied: " + cmd
			}
		}
		return m, nil

	case key.Matches(msg, keys.Up):
		m.moveCursor(-1, h)
	case key.Matches(msg, keys.Down):
		m.moveCursor(1, h)
	case key.Matches(msg, keys.HalfUp):
		m.moveCursor(-h/2, h)
	case key.Matches(msg, keys.HalfDown):
		m.moveCursor(h/2, h)
	case key.Matches(msg, keys.First):
		m.cursor = 0
		m.adjustScroll(h)
	case key.Matches(msg, keys.Last):
		m.cursor = len(m.filtered) - 1
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.adjustScroll(h)
	}
	return m, nil
}

func (m model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	h := m.listHeight()

	switch {
	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Back):
		// Cancel the filter and show everything again.
		m.mode = modeList
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.applyQuery("")
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = modeList
		m.filterInput.Blur()
		return m, nil

	case msg.Type == tea.KeyUp:
		m.moveCursor(-1, h)
		return m, nil
	case msg.Type == tea.KeyDown:
		m.moveCursor(1, h)
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if q := m.filterInput.Value(); q != m.query {
		m.applyQuery(q)
	}
	return m, cmd
}

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC, msg.String() == "q":
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Detail):
		m.mode = modeList
		return m, nil

	case key.Matches(msg, keys.Enter):
		if sess, ok := m.current(); ok {
			if full, ok := m.store.GetExact(sess.Source, sess.ID); ok {
				sess = full
			}
			m.selected = &sess
			m.quitting = true
			return m, tea.Quit
		}

	case key.Matches(msg, keys.HalfUp):
		m.detail.LineUp(m.detail.Height / 2)
		return m, nil
	case key.Matches(msg, keys.HalfDown):
		m.detail.LineDown(m.detail.Height / 2)
		return m, nil
	case key.Matches(msg, keys.First):
		m.detail.GotoTop()
		return m, nil
	case key.Matches(msg, keys.Last):
		m.detail.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m model) enterDetail() (tea.Model, tea.Cmd) {
	sess, ok := m.current()
	if !ok {
		return m, nil
	}
	if full, ok := m.store.GetExact(sess.Source, sess.ID); ok {
		sess = full
	}
	if sess.Key() != m.detailKey {
		msgs := m.store.ReadMessages(sess, true)
		m.detail.SetContent(render.Conversation(sess, msgs, m.home, false, 0))
		m.detail.GotoTop()
		m.detailKey = sess.Key()
	}
	m.mode = modeDetail
	return m, nil
}

// applyQuery recomputes the filtered set. Extending the previous query can
// only narrow the match set, so only the current candidates are re-tested.
func (m *model) applyQuery(query string) {
	pool := m.sessions
	if m.query != "" && strings.HasPrefix(query, m.query) {
		pool = m.filtered
	}
	m.query = query

	lowered := strings.ToLower(query)
	if lowered == "" {
		m.filtered = m.sessions
	} else {
		filtered := make([]session.Session, 0, len(pool))
		for _, sess := range pool {
			if m.matches(sess, lowered) {
				filtered = append(filtered, sess)
			}
		}
		m.filtered = filtered
	}

	m.cursor = 0
	m.offset = 0
}

func (m *model) matches(sess session.Session, lowered string) bool {
	if strings.Contains(strings.ToLower(sess.Display), lowered) ||
		strings.Contains(strings.ToLower(sess.Project), lowered) ||
		strings.Contains(strings.ToLower(sess.ID), lowered) ||
		strings.Contains(sess.Source.Label(), lowered) ||
		strings.Contains(sess.Source.ListLabel(), lowered) {
		return true
	}
	return m.store.ContainsText(sess, lowered)
}

func (m model) current() (session.Session, bool) {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return session.Session{}, false
	}
	return m.filtered[m.cursor], true
}

func (m *model) moveCursor(delta, height int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor > len(m.filtered)-1 {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustScroll(height)
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	if m.mode == modeDetail {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.detail.View(),
			m.detailStatusBar(),
		)
	}

	var header string
	if m.mode == modeFilter || m.query != "" {
		header = m.filterInput.View()
	} else {
		header = styleStatusBar.Render("/ filter")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderList(m.width, m.listHeight()),
		m.statusBar(),
	)
}

// listHeight is the terminal height minus the header and status rows.
func (m model) listHeight() int {
	h := m.height - 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m model) statusBar() string {
	if m.note != "" {
		return styleStatusNote.Render(m.note)
	}
	position := "0/0"
	if len(m.filtered) > 0 {
		position = fmt.Sprintf("%d/%d", m.cursor+1, len(m.filtered))
	}
	parts := []string{
		position,
		"enter resume",
		"tab view",
		"y copy",
		"/ filter",
		"q quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) detailStatusBar() string {
	parts := []string{
		"esc back",
		"enter resume",
		"C-u/C-d scroll",
		"q quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}
