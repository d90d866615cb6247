package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task by its ID or a unique ID prefix.

Examples:
  eisenhower delete abc123
  eisenhower rm abc123 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteForce bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.resolve(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.ConfirmDelete && !deleteForce {
		fmt.Fprintf(out, "About to delete: \"%s\" (ID: %s)\n", task.Title, shortID(task.ID))
		if !confirm(cmd, "Are you sure? [y/N]: ") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	a.tasks.Delete(cmd.Context(), task.ID)

	fmt.Fprintf(out, "🗑️  Deleted: \"%s\"\n", task.Title)
	return nil
}

// confirm prompts on the command's input and reports a yes answer
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
