package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/tasks"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeEditTask
	ModeSearch
	ModeConfirmDelete
	ModeHelp
)

// priorityCycle is the order the p key steps through
var priorityCycle = []string{
	tasks.PriorityAll,
	string(model.PriorityHigh),
	string(model.PriorityMedium),
	string(model.PriorityLow),
}

// Model is the main TUI model
type Model struct {
	ctx  context.Context
	svc  *tasks.Service
	user string

	// Derived views, rebuilt by refresh
	visible []model.Task
	groups  map[model.Quadrant][]model.Task
	stats   tasks.Stats

	// UI state
	width   int
	height  int
	mode    Mode
	focus   int    // index into model.Quadrants
	cursors [4]int // selected row per quadrant
	filter  tasks.Filter

	// Input
	input   textinput.Model
	editing string // id of the task being edited

	message string
}

// NewModel creates a new TUI model over svc. user is shown in the header
// and may be empty.
func NewModel(ctx context.Context, svc *tasks.Service, user string) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Enter task..."
	ti.CharLimit = 100
	ti.Width = 50

	m := Model{
		ctx:    ctx,
		svc:    svc,
		user:   user,
		mode:   ModeNormal,
		filter: tasks.DefaultFilter(),
		input:  ti,
	}
	m.refresh()

	logger.Debug("TUI model initialized", logger.F("tasks", svc.Len()))
	return m
}

// refresh recomputes the filtered and grouped views and keeps every
// cursor in range
func (m *Model) refresh() {
	m.visible = m.svc.Query(m.filter)
	m.groups = tasks.GroupByQuadrant(m.visible)
	m.stats = m.svc.Statistics(m.visible)

	for i, q := range model.Quadrants {
		n := len(m.groups[q])
		if m.cursors[i] >= n {
			m.cursors[i] = n - 1
		}
		if m.cursors[i] < 0 {
			m.cursors[i] = 0
		}
	}
}

func (m Model) focused() model.Quadrant {
	return model.Quadrants[m.focus]
}

func (m *Model) currentTask() *model.Task {
	list := m.groups[m.focused()]
	c := m.cursors[m.focus]
	if c < len(list) {
		return &list[c]
	}
	return nil
}
