package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorClaude    = lipgloss.Color("208") // orange
	colorCodex     = lipgloss.Color("12")  // bright blue
	colorProject   = lipgloss.Color("14")  // cyan
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow

	// Filter input
	styleInput = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	// List rows
	styleCursorBar = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	styleRowSelected = lipgloss.NewStyle().
				Bold(true)

	styleTime = lipgloss.NewStyle().
			Foreground(colorDim)

	styleSourceClaude = lipgloss.NewStyle().
				Foreground(colorClaude)

	styleSourceCodex = lipgloss.NewStyle().
				Foreground(colorCodex)

	styleIDTail = lipgloss.NewStyle().
			Foreground(colorDim)

	styleProject = lipgloss.NewStyle().
			Foreground(colorProject)

	// Status bar
	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	styleStatusNote = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Padding(0, 1)
)
