package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/tasks"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)

	var body string
	switch m.mode {
	case ModeHelp:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderHelp())
	case ModeAddTask, ModeEditTask:
		body = lipgloss.Place(
			m.width, bodyHeight,
			lipgloss.Center, lipgloss.Center,
			m.renderModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	default:
		body = m.renderMatrix(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("Eisenhower Matrix")
	right := time.Now().Format("Mon Jan 2 15:04")
	if m.user != "" {
		right = m.user + "  " + right
	}
	right = HelpStyle.Render(right)

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right) - 1
	return title + repeat(" ", gap) + right
}

// renderMatrix lays the quadrants out as a 2x2 grid
func (m Model) renderMatrix(height int) string {
	boxWidth := m.width/2 - 2
	boxHeight := height/2 - 2
	if boxHeight < 3 {
		boxHeight = 3
	}

	boxes := make([]string, len(model.Quadrants))
	for i, q := range model.Quadrants {
		boxes[i] = m.renderQuadrant(i, q, boxWidth, boxHeight)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, boxes[0], boxes[1])
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, boxes[2], boxes[3])
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

func (m Model) renderQuadrant(idx int, q model.Quadrant, width, height int) string {
	list := m.groups[q]
	accent := QuadrantColor(q)
	now := time.Now()

	title := fmt.Sprintf("%d %s (%d)", idx+1, q.Label(), len(list))
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title))
	b.WriteString("\n")

	if len(list) == 0 {
		b.WriteString(HelpStyle.Render("  No tasks"))
	}

	// Scroll so the cursor stays visible
	rows := height - 1
	start := 0
	if c := m.cursors[idx]; c >= rows {
		start = c - rows + 1
	}

	for i := start; i < len(list) && i < start+rows; i++ {
		t := list[i]

		cursor := "  "
		style := TaskItemStyle
		if i == m.cursors[idx] && idx == m.focus {
			cursor = "❯ "
			style = TaskItemSelectedStyle
		}

		icon := "[ ]"
		if t.Completed {
			icon = "[x]"
			style = TaskDoneStyle
		}

		line := style.Render(fmt.Sprintf("%s%s %s", cursor, icon, truncate(t.Title, width-14)))
		line += " " + FormatPriority(t.Priority)
		if t.IsOverdue(now) {
			line += " " + OverdueStyle.Render("!")
		}
		b.WriteString("\n" + line)
	}

	border := Border
	if idx == m.focus {
		border = accent
	}
	return QuadrantStyle.
		BorderForeground(border).
		Width(width).
		Height(height).
		Render(b.String())
}

func (m Model) renderStatusBar() string {
	if m.mode == ModeSearch {
		return StatusBarStyle.Width(m.width).Render(
			fmt.Sprintf("/%s  [%d matches]", m.input.View(), len(m.visible)))
	}

	left := fmt.Sprintf("%d tasks  %d%% done  %d overdue", m.stats.Total, m.stats.CompletionRate, m.stats.Overdue)
	if f := m.filterSummary(); f != "" {
		left += "  " + f
	}

	right := "a:add  e:edit  x:done  d:del  1-4:move  /:search  ?:help  q:quit"
	if m.message != "" {
		right = m.message
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 2 {
		gap = 2
	}
	return StatusBarStyle.Width(m.width).Render(left + repeat(" ", gap) + right)
}

// filterSummary describes the criteria that narrow the board
func (m Model) filterSummary() string {
	var parts []string
	if m.filter.Text != "" {
		parts = append(parts, fmt.Sprintf("search:%q", m.filter.Text))
	}
	if m.filter.Priority != "" && m.filter.Priority != tasks.PriorityAll {
		parts = append(parts, "priority:"+m.filter.Priority)
	}
	if !m.filter.ShowCompleted {
		parts = append(parts, "hiding done")
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (m Model) renderModal() string {
	title := fmt.Sprintf("Add Task to: %s", m.focused().Label())
	if m.mode == ModeEditTask {
		title = "Edit Task"
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, k := range helpOrder {
		h := k.Help()
		b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
	}
	b.WriteString("\n" + HelpStyle.Render("Press any key to close"))
	return ModalStyle.Render(b.String())
}
