package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every task",
	Long: `Delete every task in the current collection. Accounts are kept.`,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().Bool("force", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if !force {
		prompt := fmt.Sprintf("Are you sure you want to delete all %d tasks? (y/N): ", a.tasks.Len())
		if !confirm(cmd, prompt) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	n := a.tasks.Len()
	a.tasks.Clear(cmd.Context())
	fmt.Fprintf(out, "🧹 Cleared %d tasks.\n", n)
	return nil
}
