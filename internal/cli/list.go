package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/tasks"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks, optionally filtered.

Examples:
  eisenhower list
  eisenhower list --search release --priority high
  eisenhower list --matrix --done=false`,
	RunE: runList,
}

var (
	listSearch   string
	listPriority string
	listDone     bool
	listMatrix   bool
)

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only tasks whose title or description contains text")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", tasks.PriorityAll, "Priority filter (all, high, medium, low)")
	listCmd.Flags().BoolVar(&listDone, "done", true, "Include completed tasks")
	listCmd.Flags().BoolVarP(&listMatrix, "matrix", "m", false, "Group by quadrant")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	f := tasks.Filter{
		Text:          listSearch,
		Priority:      strings.ToLower(listPriority),
		ShowCompleted: listDone,
	}
	if f.Priority != tasks.PriorityAll {
		if _, ok := model.ParsePriority(f.Priority); !ok {
			return fmt.Errorf("unknown priority %q", listPriority)
		}
	}

	out := cmd.OutOrStdout()
	found := a.tasks.Query(f)
	if len(found) == 0 {
		fmt.Fprintln(out, "No tasks found. Add one with: eisenhower add \"Your task\"")
		return nil
	}

	now := time.Now()
	if listMatrix {
		groups := tasks.GroupByQuadrant(found)
		for _, q := range model.Quadrants {
			printTasks(out, q.Label(), groups[q], now)
		}
		return nil
	}
	printTasks(out, "Tasks", found, now)
	return nil
}

func printTasks(out io.Writer, title string, list []model.Task, now time.Time) {
	pending := 0
	for _, t := range list {
		if !t.Completed {
			pending++
		}
	}

	fmt.Fprintf(out, "\n%s (%d pending)\n", title, pending)
	fmt.Fprintln(out, strings.Repeat("─", 72))

	for _, t := range list {
		printTask(out, t, now)
	}
	fmt.Fprintln(out)
}

func printTask(out io.Writer, t model.Task, now time.Time) {
	// Status icon
	icon := "[ ]"
	if t.Completed {
		icon = "[x]"
	}

	// Priority indicator
	priority := "  " + string(t.Priority)
	if t.Priority == model.PriorityHigh {
		priority = "▲ high"
	}

	// Due date
	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Format("Jan 2")
		if t.IsOverdue(now) {
			due = "! " + due
		}
	}

	// Truncate title if too long
	title := t.Title
	if r := []rune(title); len(r) > 40 {
		title = string(r[:37]) + "..."
	}

	fmt.Fprintf(out, "  %s  %-8s  %-40s  %-10s  %-8s  q%d\n",
		icon, shortID(t.ID), title, due, priority, t.Quadrant.Index())
}
