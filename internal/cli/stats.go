package cli

import (
	"fmt"

	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/tasks"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	all := a.tasks.All()
	st := a.tasks.Statistics(all)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Total:      %d\n", st.Total)
	fmt.Fprintf(out, "Completed:  %d (%d%%)\n", st.Completed, st.CompletionRate)
	fmt.Fprintf(out, "Overdue:    %d\n", st.Overdue)
	fmt.Fprintln(out)

	groups := tasks.GroupByQuadrant(all)
	for _, q := range model.Quadrants {
		qs := a.tasks.Statistics(groups[q])
		fmt.Fprintf(out, "  q%d %-10s %3d tasks, %3d%% done\n", q.Index(), q.Label(), qs.Total, qs.CompletionRate)
	}
	return nil
}
