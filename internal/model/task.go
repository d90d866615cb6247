package model

import (
	"strings"
	"time"
)

// Quadrant is one of the four urgency/importance categories of the matrix
type Quadrant string

const (
	QuadrantUrgentImportant       Quadrant = "urgent-important"         // Do First
	QuadrantNotUrgentImportant    Quadrant = "not-urgent-important"     // Schedule
	QuadrantUrgentNotImportant    Quadrant = "urgent-not-important"     // Delegate
	QuadrantNotUrgentNotImportant Quadrant = "not-urgent-not-important" // Eliminate
)

// Quadrants lists every quadrant in matrix order (Q1..Q4)
var Quadrants = []Quadrant{
	QuadrantUrgentImportant,
	QuadrantNotUrgentImportant,
	QuadrantUrgentNotImportant,
	QuadrantNotUrgentNotImportant,
}

// DefaultQuadrant is used when a task is created without one
const DefaultQuadrant = QuadrantUrgentImportant

// IsValid reports whether q is one of the four quadrants
func (q Quadrant) IsValid() bool {
	switch q {
	case QuadrantUrgentImportant, QuadrantNotUrgentImportant,
		QuadrantUrgentNotImportant, QuadrantNotUrgentNotImportant:
		return true
	}
	return false
}

// Label returns the action name shown for the quadrant
func (q Quadrant) Label() string {
	switch q {
	case QuadrantUrgentImportant:
		return "Do First"
	case QuadrantNotUrgentImportant:
		return "Schedule"
	case QuadrantUrgentNotImportant:
		return "Delegate"
	case QuadrantNotUrgentNotImportant:
		return "Eliminate"
	default:
		return "Unknown"
	}
}

// Index returns the 1-based matrix position, or 0 for an invalid quadrant
func (q Quadrant) Index() int {
	for i, v := range Quadrants {
		if v == q {
			return i + 1
		}
	}
	return 0
}

// ParseQuadrant accepts the canonical name, q1..q4, 1..4 or a label
func ParseQuadrant(s string) (Quadrant, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "1", "q1", "do", "do first", "do-first":
		return QuadrantUrgentImportant, true
	case "2", "q2", "schedule":
		return QuadrantNotUrgentImportant, true
	case "3", "q3", "delegate":
		return QuadrantUrgentNotImportant, true
	case "4", "q4", "eliminate":
		return QuadrantNotUrgentNotImportant, true
	}
	q := Quadrant(s)
	return q, q.IsValid()
}

// Priority levels for tasks
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is used when a task is created without one
const DefaultPriority = PriorityMedium

// IsValid reports whether p is high, medium or low
func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// ParsePriority parses a priority name case-insensitively
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	return p, p.IsValid()
}

// Task represents a single item on the matrix
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Quadrant    Quadrant   `json:"quadrant"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsOverdue returns true if the task is open and its due date has passed
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(now)
}

// Clone returns a copy that shares no slices or pointers with t
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.Tags = append([]string{}, t.Tags...)
	return c
}

// TaskInput is the candidate data for a new task
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Quadrant    Quadrant   `json:"quadrant"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags"`
}

// TaskPatch holds the fields to change on an existing task; nil means unchanged
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Quadrant    *Quadrant  `json:"quadrant,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	ClearDue    bool       `json:"clearDueDate,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
}

// Apply merges the patch onto the input form of a task
func (p TaskPatch) Apply(in TaskInput) TaskInput {
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Quadrant != nil {
		in.Quadrant = *p.Quadrant
	}
	if p.Priority != nil {
		in.Priority = *p.Priority
	}
	if p.ClearDue {
		in.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		in.DueDate = &d
	}
	if p.Tags != nil {
		in.Tags = append([]string{}, (*p.Tags)...)
	}
	return in
}

// Input returns the editable fields of the task
func (t Task) Input() TaskInput {
	c := t.Clone()
	return TaskInput{
		Title:       c.Title,
		Description: c.Description,
		Quadrant:    c.Quadrant,
		Priority:    c.Priority,
		DueDate:     c.DueDate,
		Tags:        c.Tags,
	}
}
