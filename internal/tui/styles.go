package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/eisenhower/internal/model"
)

// Color palette
var (
	// Priority colors
	PriorityHigh   = lipgloss.Color("#FF6B6B") // Red
	PriorityMedium = lipgloss.Color("#FFE66D") // Yellow
	PriorityLow    = lipgloss.Color("#4ECDC4") // Blue

	// Quadrant accents
	QuadrantDo        = lipgloss.Color("#FF6B6B")
	QuadrantSchedule  = lipgloss.Color("#4ECDC4")
	QuadrantDelegate  = lipgloss.Color("#FFB347")
	QuadrantEliminate = lipgloss.Color("#6C757D")

	// Status colors
	Completed = lipgloss.Color("#95E1A3") // Green
	Overdue   = lipgloss.Color("#FF6B6B") // Red

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Quadrant boxes
	QuadrantStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	// Task item
	TaskItemStyle = lipgloss.NewStyle()

	TaskItemSelectedStyle = lipgloss.NewStyle().
				Background(Surface).
				Bold(true)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true)

	OverdueStyle = lipgloss.NewStyle().Foreground(Overdue).Bold(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// QuadrantColor returns the accent of a quadrant
func QuadrantColor(q model.Quadrant) lipgloss.Color {
	switch q {
	case model.QuadrantUrgentImportant:
		return QuadrantDo
	case model.QuadrantNotUrgentImportant:
		return QuadrantSchedule
	case model.QuadrantUrgentNotImportant:
		return QuadrantDelegate
	default:
		return QuadrantEliminate
	}
}

// FormatPriority returns a colored one-letter priority badge
func FormatPriority(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return lipgloss.NewStyle().Foreground(PriorityHigh).Bold(true).Render("H")
	case model.PriorityLow:
		return lipgloss.NewStyle().Foreground(PriorityLow).Render("L")
	default:
		return lipgloss.NewStyle().Foreground(PriorityMedium).Render("M")
	}
}
