package tasks

import (
	"math"
	"strings"
	"time"

	"github.com/existflow/eisenhower/internal/model"
)

// PriorityAll matches every priority in a Filter
const PriorityAll = "all"

// Filter selects tasks for Query. Every active criterion must match.
type Filter struct {
	Text          string // case-insensitive substring of title or description
	Priority      string // "all", "" or a priority name
	ShowCompleted bool   // false hides completed tasks
}

// DefaultFilter matches every task
func DefaultFilter() Filter {
	return Filter{Priority: PriorityAll, ShowCompleted: true}
}

// Match reports whether t satisfies all criteria of f
func (f Filter) Match(t model.Task) bool {
	if text := strings.ToLower(strings.TrimSpace(f.Text)); text != "" {
		if !strings.Contains(strings.ToLower(t.Title), text) &&
			!strings.Contains(strings.ToLower(t.Description), text) {
			return false
		}
	}
	if f.Priority != "" && !strings.EqualFold(f.Priority, PriorityAll) && !strings.EqualFold(string(t.Priority), f.Priority) {
		return false
	}
	if !f.ShowCompleted && t.Completed {
		return false
	}
	return true
}

// Query returns the tasks matching f in collection order
func (s *Service) Query(f Filter) []model.Task {
	out := []model.Task{}
	for _, t := range s.tasks {
		if f.Match(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// GroupByQuadrant partitions tasks into the four quadrants, keeping the
// relative order. Every quadrant is present, possibly with an empty slice.
func GroupByQuadrant(tasks []model.Task) map[model.Quadrant][]model.Task {
	groups := make(map[model.Quadrant][]model.Task, len(model.Quadrants))
	for _, q := range model.Quadrants {
		groups[q] = []model.Task{}
	}
	for _, t := range tasks {
		q := t.Quadrant
		if !q.IsValid() {
			q = model.DefaultQuadrant
		}
		groups[q] = append(groups[q], t)
	}
	return groups
}

// Stats summarizes a task list
type Stats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	CompletionRate int `json:"completionRate"`
	Overdue        int `json:"overdue"`
}

// Statistics computes Stats for tasks relative to now
func Statistics(tasks []model.Task, now time.Time) Stats {
	st := Stats{Total: len(tasks)}
	for i := range tasks {
		if tasks[i].Completed {
			st.Completed++
		}
		if tasks[i].IsOverdue(now) {
			st.Overdue++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = int(math.Floor(float64(st.Completed)/float64(st.Total)*100 + 0.5))
	}
	return st
}

// Statistics computes Stats for tasks using the service clock
func (s *Service) Statistics(tasks []model.Task) Stats {
	return Statistics(tasks, s.now())
}
