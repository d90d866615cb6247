package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/tasks"
)

// tickMsg refreshes time-dependent views such as the overdue count
type tickMsg time.Time

// Init initializes the model with a tick command
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle mode-specific input
		switch m.mode {
		case ModeAddTask, ModeEditTask:
			return m.updateInput(msg)
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}

		// Normal mode key handling
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Right):
		m.focus = (m.focus + 1) % len(model.Quadrants)

	case key.Matches(msg, keys.ShiftTab), key.Matches(msg, keys.Left):
		m.focus = (m.focus + len(model.Quadrants) - 1) % len(model.Quadrants)

	case key.Matches(msg, keys.Up):
		if m.cursors[m.focus] > 0 {
			m.cursors[m.focus]--
		}

	case key.Matches(msg, keys.Down):
		if m.cursors[m.focus] < len(m.groups[m.focused()])-1 {
			m.cursors[m.focus]++
		}

	case key.Matches(msg, keys.Move):
		n, _ := strconv.Atoi(msg.String())
		m.handleMove(model.Quadrants[n-1])

	case key.Matches(msg, keys.Add):
		return m.startInput(ModeAddTask, "", "New task in "+m.focused().Label()+"...")

	case key.Matches(msg, keys.Edit):
		if t := m.currentTask(); t != nil {
			m.editing = t.ID
			return m.startInput(ModeEditTask, t.Title, "Title...")
		}

	case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
		m.handleToggleDone()

	case key.Matches(msg, keys.Delete):
		if t := m.currentTask(); t != nil {
			m.mode = ModeConfirmDelete
			m.message = fmt.Sprintf("Delete \"%s\"? (y/N)", truncate(t.Title, 40))
		}

	case key.Matches(msg, keys.Search):
		return m.startInput(ModeSearch, m.filter.Text, "Search...")

	case key.Matches(msg, keys.Completed):
		m.filter.ShowCompleted = !m.filter.ShowCompleted
		m.refresh()
		if m.filter.ShowCompleted {
			m.message = "Showing completed tasks"
		} else {
			m.message = "Hiding completed tasks"
		}

	case key.Matches(msg, keys.Priority):
		m.filter.Priority = nextPriority(m.filter.Priority)
		m.refresh()
		m.message = "Priority: " + m.filter.Priority

	case key.Matches(msg, keys.Escape):
		if m.filter.Text != "" {
			m.filter.Text = ""
			m.refresh()
			m.message = "Search cleared"
		}

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func nextPriority(current string) string {
	for i, p := range priorityCycle {
		if p == current {
			return priorityCycle[(i+1)%len(priorityCycle)]
		}
	}
	return tasks.PriorityAll
}

func (m *Model) handleToggleDone() {
	t := m.currentTask()
	if t == nil {
		return
	}
	updated, err := m.svc.ToggleComplete(m.ctx, t.ID)
	if err != nil {
		m.message = fmt.Sprintf("Error: %v", err)
		return
	}
	if updated.Completed {
		m.message = "Done: " + updated.Title
	} else {
		m.message = "Reopened: " + updated.Title
	}
	m.refresh()
}

func (m *Model) handleMove(q model.Quadrant) {
	t := m.currentTask()
	if t == nil || t.Quadrant == q {
		return
	}
	if _, err := m.svc.Move(m.ctx, t.ID, q); err != nil {
		m.message = fmt.Sprintf("Error: %v", err)
		return
	}
	m.message = fmt.Sprintf("Moved to %s", q.Label())
	m.refresh()
}

func (m Model) startInput(mode Mode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.editing = ""
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := m.input.Value()
		m.mode = ModeNormal
		m.input.Blur()
		if value == "" {
			m.editing = ""
			return m, nil
		}

		switch {
		case m.editing != "":
			title := value
			updated, err := m.svc.Update(m.ctx, m.editing, model.TaskPatch{Title: &title})
			m.editing = ""
			if err != nil {
				m.message = fmt.Sprintf("Error: %v", err)
			} else {
				m.message = "Updated: " + updated.Title
			}
		default:
			created, err := m.svc.Create(m.ctx, model.TaskInput{
				Title:    value,
				Quadrant: m.focused(),
			})
			if err != nil {
				m.message = fmt.Sprintf("Error: %v", err)
			} else {
				logger.Debug("Task added from TUI", logger.F("id", created.ID))
				m.message = "Added: " + created.Title
			}
		}

		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// updateSearch filters live as the user types
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		m.filter.Text = ""
		m.refresh()
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()
		m.message = fmt.Sprintf("%d matching tasks", len(m.visible))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filter.Text = m.input.Value()
	m.refresh()
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	if msg.String() != "y" && msg.String() != "Y" {
		m.message = "Cancelled"
		return m, nil
	}
	if t := m.currentTask(); t != nil {
		m.svc.Delete(m.ctx, t.ID)
		m.message = "Deleted: " + t.Title
		m.refresh()
	}
	return m, nil
}
