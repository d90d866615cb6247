package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/existflow/eisenhower/internal/model"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task to the matrix.

Examples:
  eisenhower add "Buy groceries"
  eisenhower add "Prepare board deck" -q schedule -p high --due +3d
  eisenhower add "Renew passport" -q 1 --tags admin,travel`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addQuadrant    string
	addPriority    string
	addDue         string
	addDescription string
	addTags        string
)

func init() {
	addCmd.Flags().StringVarP(&addQuadrant, "quadrant", "q", "", "Quadrant (1-4, do, schedule, delegate, eliminate)")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Priority (high, medium, low)")
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due date (e.g., 'tomorrow', '+3d', '2024-01-15')")
	addCmd.Flags().StringVar(&addDescription, "desc", "", "Description")
	addCmd.Flags().StringVarP(&addTags, "tags", "t", "", "Comma separated tags")
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	in := model.TaskInput{
		Title:       strings.Join(args, " "),
		Description: addDescription,
		Priority:    model.Priority(strings.ToLower(addPriority)),
		Tags:        splitTags(addTags),
	}
	if addQuadrant != "" {
		q, ok := model.ParseQuadrant(addQuadrant)
		if !ok {
			return fmt.Errorf("unknown quadrant %q", addQuadrant)
		}
		in.Quadrant = q
	}
	if addDue != "" {
		due, err := parseDue(addDue, time.Now())
		if err != nil {
			return err
		}
		in.DueDate = &due
	}

	task, err := a.tasks.Create(cmd.Context(), in)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added to [%s]: \"%s\" (%s) %s\n",
		task.Quadrant.Label(), task.Title, task.Priority, shortID(task.ID))
	return nil
}
