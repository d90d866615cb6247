package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Toggle a task between done and open",
	Long: `Mark an open task as completed, or reopen a completed one.

Examples:
  eisenhower done abc123`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.resolve(args[0])
	if err != nil {
		return err
	}

	task, err = a.tasks.ToggleComplete(cmd.Context(), task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if task.Completed {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Completed: \"%s\"\n", task.Title)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "○ Reopened: \"%s\"\n", task.Title)
	}

	return nil
}
