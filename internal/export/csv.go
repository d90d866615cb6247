// Package export renders task lists as CSV or printable HTML.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/existflow/eisenhower/internal/model"
)

// Format names accepted by Write
const (
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// CSVHeader is the first row of every CSV export
var CSVHeader = []string{
	"ID", "Title", "Description", "Quadrant", "Priority",
	"Due Date", "Completed", "Tags", "Created At", "Updated At",
}

// CSV writes one row per task
func CSV(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		row := []string{
			t.ID,
			t.Title,
			t.Description,
			string(t.Quadrant),
			string(t.Priority),
			due,
			strconv.FormatBool(t.Completed),
			strings.Join(t.Tags, ";"),
			t.CreatedAt.UTC().Format(time.RFC3339),
			t.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write renders tasks in the named format
func Write(w io.Writer, format string, tasks []model.Task, now time.Time) error {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return CSV(w, tasks)
	case FormatHTML:
		return HTML(w, tasks, now)
	default:
		return fmt.Errorf("unknown export format %q (use csv or html)", format)
	}
}

// Filename suggests a download name for an export made at now
func Filename(format string, now time.Time) string {
	ext := strings.ToLower(format)
	if ext == "" {
		ext = FormatCSV
	}
	return fmt.Sprintf("eisenhower-tasks-%s.%s", now.Format("2006-01-02"), ext)
}

// ContentType returns the MIME type of a format
func ContentType(format string) string {
	if strings.ToLower(format) == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}
