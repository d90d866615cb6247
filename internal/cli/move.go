package cli

import (
	"fmt"

	"github.com/existflow/eisenhower/internal/model"
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move [task-id] [quadrant]",
	Short: "Move a task to another quadrant",
	Long: `Move a task to another quadrant.

Quadrants can be given as 1-4, q1-q4, a label (do, schedule, delegate,
eliminate) or the full name (e.g. not-urgent-important).

Examples:
  eisenhower move abc123 2
  eisenhower move abc123 delegate`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func runMove(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.resolve(args[0])
	if err != nil {
		return err
	}

	q, ok := model.ParseQuadrant(args[1])
	if !ok {
		return fmt.Errorf("unknown quadrant %q", args[1])
	}

	task, err = a.tasks.Move(cmd.Context(), task.ID, q)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "→ Moved \"%s\" to %s\n", task.Title, q.Label())
	return nil
}
