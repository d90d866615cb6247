// Package validate checks candidate task data before it enters the collection.
package validate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/existflow/eisenhower/internal/model"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Field names used as keys in Errors
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldQuadrant    = "quadrant"
	FieldPriority    = "priority"
	FieldTags        = "tags"
)

// Errors maps a field name to a human-readable message
type Errors map[string]string

// Error joins the messages in field order
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Result is the outcome of validating a TaskInput
type Result struct {
	Valid  bool
	Data   model.TaskInput
	Errors Errors
}

// Err returns the field errors as an error, or nil when the input is valid
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return r.Errors
}

// Patch rejects explicit empty enum values. Defaults apply only when a task
// is created, so a patch cannot reset a quadrant or priority by blanking it.
func Patch(p model.TaskPatch) Errors {
	errs := Errors{}
	if p.Quadrant != nil && strings.TrimSpace(string(*p.Quadrant)) == "" {
		errs[FieldQuadrant] = "Quadrant is required"
	}
	if p.Priority != nil && strings.TrimSpace(string(*p.Priority)) == "" {
		errs[FieldPriority] = "Priority is required"
	}
	return errs
}

// Task validates and normalizes a task input. Empty quadrant and priority
// take their defaults; title, description and tags are trimmed.
func Task(in model.TaskInput) Result {
	errs := Errors{}
	out := model.TaskInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Quadrant:    in.Quadrant,
		Priority:    in.Priority,
		Tags:        make([]string, 0, len(in.Tags)),
	}
	if in.DueDate != nil {
		d := *in.DueDate
		out.DueDate = &d
	}

	switch n := utf8.RuneCountInString(out.Title); {
	case n == 0:
		errs[FieldTitle] = "Title is required"
	case n > MaxTitleLength:
		errs[FieldTitle] = "Title must be 100 characters or less"
	}

	if utf8.RuneCountInString(out.Description) > MaxDescriptionLength {
		errs[FieldDescription] = "Description must be 500 characters or less"
	}

	if out.Quadrant == "" {
		out.Quadrant = model.DefaultQuadrant
	}
	if !out.Quadrant.IsValid() {
		errs[FieldQuadrant] = "Quadrant must be one of urgent-important, not-urgent-important, urgent-not-important, not-urgent-not-important"
	}

	if out.Priority == "" {
		out.Priority = model.DefaultPriority
	}
	if !out.Priority.IsValid() {
		errs[FieldPriority] = "Priority must be high, medium or low"
	}

	for _, tag := range in.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			errs[FieldTags] = "Tags cannot be empty"
			continue
		}
		out.Tags = append(out.Tags, tag)
	}

	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}
	return Result{Valid: true, Data: out}
}
