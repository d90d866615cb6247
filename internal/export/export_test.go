package export_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/existflow/eisenhower/internal/export"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sample() []model.Task {
	due := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return []model.Task{
		{
			ID: "1", Title: "Ship, release", Description: `say "hi"`,
			Quadrant: model.QuadrantUrgentImportant, Priority: model.PriorityHigh,
			DueDate: &due, Tags: []string{"work", "q2"},
			CreatedAt: created, UpdatedAt: created,
		},
		{
			ID: "2", Title: "<script>alert(1)</script>",
			Quadrant: model.QuadrantNotUrgentNotImportant, Priority: model.PriorityLow,
			Completed: true, Tags: []string{},
			CreatedAt: created, UpdatedAt: created,
		},
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.CSV(&buf, sample()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, export.CSVHeader, rows[0])
	assert.Equal(t, []string{
		"1", "Ship, release", `say "hi"`, "urgent-important", "high",
		"2024-05-20", "false", "work;q2", "2024-05-01T09:00:00Z", "2024-05-01T09:00:00Z",
	}, rows[1])
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "true", rows[2][6])
}

func TestCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.CSV(&buf, nil))
	assert.Equal(t, strings.Join(export.CSVHeader, ",")+"\n", buf.String())
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.HTML(&buf, sample(), now))
	out := buf.String()

	for _, label := range []string{"Do First", "Schedule", "Delegate", "Eliminate"} {
		assert.Contains(t, out, label)
	}
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "Completion: 50%")
	assert.Contains(t, out, "Overdue: 1")
	assert.Contains(t, out, "2024-05-20")
	assert.Contains(t, out, "Generated June 1, 2024 12:00")
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, "HTML", sample(), now))
	assert.True(t, strings.HasPrefix(buf.String(), "<!DOCTYPE html>"))

	assert.Error(t, export.Write(&buf, "pdf", sample(), now))
	assert.Equal(t, "eisenhower-tasks-2024-06-01.csv", export.Filename("", now))
	assert.Equal(t, "text/html; charset=utf-8", export.ContentType("html"))
}
