package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mzxrai/claude-sessions/internal/render"
	"github.com/mzxrai/claude-sessions/internal/session"
)

const projectColWidth = 24

// renderList renders the scrolled session list with the cursor bar.
func (m model) renderList(width, height int) string {
	if len(m.filtered) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No sessions")
	}

	timeW := m.timeColWidth()
	var lines []string
	for i := m.offset; i < len(m.filtered) && len(lines) < height; i++ {
		lines = append(lines, m.formatRow(m.filtered[i], timeW, width, i == m.cursor))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// formatRow builds one list line:
//
//	▌ 2h ago  cc     ab123  ~/code/proj              fix the flaky test
func (m model) formatRow(sess session.Session, timeW, width int, selected bool) string {
	age := runewidth.FillLeft(render.ListTime(session.ListTimeMS(sess)), timeW)

	var src string
	switch sess.Source {
	case session.SourceClaude:
		src = styleSourceClaude.Render(runewidth.FillRight(sess.Source.ListLabel(), 5))
	case session.SourceCodex:
		src = styleSourceCodex.Render(runewidth.FillRight(sess.Source.ListLabel(), 5))
	default:
		src = runewidth.FillRight(sess.Source.ListLabel(), 5)
	}

	tail := runewidth.FillRight(sess.ShortID(), 5)
	project := runewidth.FillRight(
		render.Truncate(render.ShortProject(sess.Project, m.home), projectColWidth),
		projectColWidth,
	)

	displayMax := width - 2 - timeW - 2 - 5 - 2 - 5 - 2 - projectColWidth - 2
	if displayMax < 8 {
		displayMax = 8
	}
	display := render.Truncate(sess.Display, displayMax)

	row := styleTime.Render(age) + "  " + src + "  " +
		styleIDTail.Render(tail) + "  " + styleProject.Render(project) + "  "
	if selected {
		return styleCursorBar.Render("▌ ") + row + styleRowSelected.Render(display)
	}
	return "  " + row + display
}

// timeColWidth sizes the age column to the widest visible value.
func (m model) timeColWidth() int {
	w := 6
	for _, sess := range m.filtered {
		if tw := runewidth.StringWidth(render.ListTime(session.ListTimeMS(sess))); tw > w {
			w = tw
		}
	}
	return w
}

// adjustScroll keeps the cursor inside the visible window.
func (m *model) adjustScroll(height int) {
	if height < 1 {
		height = 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}
}
