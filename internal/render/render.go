package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/tidwall/gjson"

	"github.com/mzxrai/claude-sessions/internal/parse"
	"github.com/mzxrai/claude-sessions/internal/session"
)

// Truncate collapses runs of whitespace and cuts the text to width visible
// columns, appending "..." when something was dropped.
func Truncate(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "...")
}

// ShortProject replaces a leading home directory with "~".
func ShortProject(project string, home string) string {
	if home != "" && strings.HasPrefix(project, home) {
		return "~" + project[len(home):]
	}
	return project
}

// RelativeTime renders an epoch-ms timestamp as "just now" / "12m ago" /
// "5h ago", falling back to the date for anything older than a day.
func RelativeTime(ms int64) string {
	if ms <= 0 {
		return "—"
	}
	return formatAge(ms, "2006-01-02")
}

// ListTime is RelativeTime with a clock time on older entries, for list
// rows where the extra precision matters.
func ListTime(ms int64) string {
	if ms <= 0 {
		return "—"
	}
	return formatAge(ms, "2006-01-02 15:04")
}

func formatAge(ms int64, oldLayout string) string {
	when := time.UnixMilli(ms)
	delta := time.Since(when)
	switch {
	case delta < time.Minute:
		return "just now"
	case delta < time.Hour:
		return fmt.Sprintf("%dm ago", int(delta.Minutes()))
	case delta < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(delta.Hours()))
	}
	return when.Format(oldLayout)
}

// Commas formats an integer with thousands separators.
func Commas(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// HumanSize renders a byte count in the nearest unit.
func HumanSize(size int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	if size <= 0 {
		return "0 B"
	}
	value := float64(size)
	unit := 0
	for value >= 1024 && unit+1 < len(units) {
		value /= 1024
		unit++
	}
	switch {
	case unit == 0:
		return fmt.Sprintf("%.0f %s", value, units[unit])
	case value >= 10:
		return fmt.Sprintf("%.1f %s", value, units[unit])
	default:
		return fmt.Sprintf("%.2f %s", value, units[unit])
	}
}

func assistantLabel(src session.Source) string {
	if src == session.SourceCodex {
		return "Codex"
	}
	return "Claude"
}

// Conversation renders a full transcript as pager-friendly plain text.
// Thinking blocks only appear when asked for; tail keeps the last n
// messages (0 keeps everything).
func Conversation(sess session.Session, msgs []parse.Message, home string, thinking bool, tail int) string {
	label := assistantLabel(sess.Source)

	var lines []string
	lines = append(lines,
		fmt.Sprintf("Session: %s", Truncate(sess.Display, 120)),
		fmt.Sprintf("Source: %s", sess.Source.ListLabel()),
		fmt.Sprintf("Session ID (full): %s", sess.ID),
		fmt.Sprintf("%s  ·  %s", ShortProject(sess.Project, home), RelativeTime(sess.Timestamp)),
		"")

	if tail > 0 && len(msgs) > tail {
		msgs = msgs[len(msgs)-tail:]
	}

	for _, msg := range msgs {
		switch msg.Type {
		case "system":
			continue
		case "user":
			text := msg.Text()
			if text == "" ||
				strings.HasPrefix(text, "<local-command") ||
				strings.HasPrefix(text, "<command-name") {
				continue
			}
			lines = append(lines, "You: "+text, "")
		case "assistant":
			if msg.IsAPIError {
				lines = append(lines, "Error: "+Truncate(msg.Text(), 500), "")
				continue
			}
			parts := assistantParts(msg, thinking)
			if len(parts) == 0 {
				continue
			}
			prefix := label + ": "
			if model := msg.Model; model != "" && model != "<synthetic>" {
				prefix = fmt.Sprintf("%s (%s): ", label, model)
			}
			lines = append(lines, prefix+strings.Join(parts, "\n"), "")
		}
	}
	return strings.Join(lines, "\n")
}

func assistantParts(msg parse.Message, thinking bool) []string {
	var parts []string
	for _, b := range msg.Blocks {
		switch b.Type {
		case "text", "input_text", "output_text":
			if strings.TrimSpace(b.Text) != "" {
				parts = append(parts, b.Text)
			}
		case "tool_use":
			parts = append(parts, "[tool] "+toolSummary(b))
		case "thinking":
			if thinking && strings.TrimSpace(b.Thinking) != "" {
				parts = append(parts, "[thinking] "+Truncate(b.Thinking, 250))
			}
		}
	}
	return parts
}

// toolSummary renders a one-line description of a tool invocation.
func toolSummary(b parse.Block) string {
	name := b.Name
	if name == "" {
		name = "?"
	}
	input := func(key string) string {
		return gjson.GetBytes(b.Input, key).String()
	}
	switch name {
	case "Bash":
		detail := input("description")
		if detail == "" {
			detail = input("command")
		}
		return "$ " + Truncate(detail, 80)
	case "Read", "Edit", "Write", "Glob", "Grep":
		target := input("file_path")
		if target == "" {
			target = input("pattern")
		}
		return name + " " + target
	case "Task":
		return "Task " + input("description")
	case "WebSearch":
		return "Search: " + input("query")
	}
	return name + "(...)"
}

// SearchResults renders search hits, one block per session.
func SearchResults(results []session.SearchResult, home string) string {
	if len(results) == 0 {
		return "No matches found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d match(es)\n\n", len(results))
	for _, r := range results {
		sess := r.Session
		fmt.Fprintf(&b, "%s  %s  %s  %s\n",
			sess.Source.ListLabel(), sess.ShortID(), RelativeTime(sess.Timestamp), ShortProject(sess.Project, home))
		fmt.Fprintf(&b, "  %s\n", Truncate(sess.Display, 80))
		roleLabel := assistantLabel(sess.Source)
		if r.Message.Role == "user" {
			roleLabel = "You"
		}
		fmt.Fprintf(&b, "  %s: %s\n\n", roleLabel, Truncate(r.Line, 100))
	}
	return b.String()
}

const statsFrameWidth = 82

// Stats renders the framed stats report.
func Stats(report session.StatsReport) string {
	var b strings.Builder

	title := "Session Usage Stats (Claude Code + Codex)"
	pad := statsFrameWidth - 2 - runewidth.StringWidth(title)
	left := pad / 2
	fmt.Fprintf(&b, "╭%s╮\n", strings.Repeat("─", statsFrameWidth-2))
	fmt.Fprintf(&b, "│%s%s%s│\n", strings.Repeat(" ", left), title, strings.Repeat(" ", pad-left))
	fmt.Fprintf(&b, "╰%s╯\n\n", strings.Repeat("─", statsFrameWidth-2))

	fmt.Fprintf(&b, "Total sessions: %s\n", Commas(int64(report.TotalSessions)))
	fmt.Fprintf(&b, "Total history entries: %s\n", Commas(report.TotalHistoryEntries))
	fmt.Fprintf(&b, "Total transcript size: %s\n", HumanSize(report.TotalTranscriptBytes))
	fmt.Fprintf(&b, "Last computed: %s\n\n", report.LastComputed)

	for _, row := range report.Sources {
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(row.Source.Label()))
		fmt.Fprintf(&b, "  Sessions: %s\n", Commas(int64(row.Sessions)))
		fmt.Fprintf(&b, "  History entries: %s\n", Commas(row.HistoryEntries))
		fmt.Fprintf(&b, "  First session: %s\n\n", row.FirstSessionDate)

		if len(row.TopModels) == 0 {
			b.WriteString("  Top models (session-level): —\n")
		} else {
			b.WriteString("  Top models (session-level):\n")
			for _, mc := range row.TopModels {
				fmt.Fprintf(&b, "    %s %s\n",
					runewidth.FillRight(Truncate(mc.Model, 34), 34), Commas(int64(mc.Count)))
			}
		}
		b.WriteString("\n")

		if len(row.DailySessions) == 0 {
			b.WriteString("  Daily sessions (last 14 days): —\n\n")
		} else {
			maxCount := 0
			for _, dc := range row.DailySessions {
				if dc.Count > maxCount {
					maxCount = dc.Count
				}
			}
			b.WriteString("  Daily sessions (last 14 days):\n")
			for _, dc := range row.DailySessions {
				fmt.Fprintf(&b, "    %s %s %s\n",
					dc.Date,
					runewidth.FillLeft(Commas(int64(dc.Count)), 6),
					bar(dc.Count, maxCount, 24))
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n\n", strings.Repeat("-", statsFrameWidth))
	}
	return b.String()
}

func bar(count, maxCount, width int) string {
	if maxCount <= 0 || width <= 0 || count <= 0 {
		return ""
	}
	n := count * width / maxCount
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}

// ListTable renders sessions as an aligned plain-text table with dynamic
// column widths.
func ListTable(sessions []session.Session, home string) string {
	type row struct {
		source, id, time, project, title string
	}

	rows := make([]row, 0, len(sessions))
	srcW, timeW, projW := len("source"), len("time"), len("project")
	for _, sess := range sessions {
		r := row{
			source:  sess.Source.ListLabel(),
			id:      sess.ShortID(),
			time:    ListTime(session.ListTimeMS(sess)),
			project: Truncate(ShortProject(sess.Project, home), 32),
			title:   Truncate(sess.Display, 48),
		}
		if w := runewidth.StringWidth(r.source); w > srcW {
			srcW = w
		}
		if w := runewidth.StringWidth(r.time); w > timeW {
			timeW = w
		}
		if w := runewidth.StringWidth(r.project); w > projW {
			projW = w
		}
		rows = append(rows, r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s  %s  %s\n",
		runewidth.FillRight("source", srcW),
		runewidth.FillRight("id5", 5),
		runewidth.FillRight("time", timeW),
		runewidth.FillRight("project", projW),
		"title")
	b.WriteString(strings.Repeat("-", srcW+2+5+2+timeW+2+projW+2+len("title")))
	b.WriteString("\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s  %s  %s  %s  %s\n",
			runewidth.FillRight(r.source, srcW),
			runewidth.FillRight(r.id, 5),
			runewidth.FillRight(r.time, timeW),
			runewidth.FillRight(r.project, projW),
			r.title)
	}
	return b.String()
}
