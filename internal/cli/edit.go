package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/existflow/eisenhower/internal/model"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task",
	Long: `Change the fields of a task. Only the flags you pass are changed.

Examples:
  eisenhower edit abc123 --title "Ship v2"
  eisenhower edit abc123 --priority low --due none`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle       string
	editDescription string
	editQuadrant    string
	editPriority    string
	editDue         string
	editTags        string
)

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editDescription, "desc", "", "New description")
	editCmd.Flags().StringVarP(&editQuadrant, "quadrant", "q", "", "New quadrant")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "New priority")
	editCmd.Flags().StringVarP(&editDue, "due", "d", "", "New due date, or 'none' to clear")
	editCmd.Flags().StringVarP(&editTags, "tags", "t", "", "Comma separated tags, replaces existing")
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.resolve(args[0])
	if err != nil {
		return err
	}

	var patch model.TaskPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &editTitle
	}
	if flags.Changed("desc") {
		patch.Description = &editDescription
	}
	if flags.Changed("quadrant") {
		q, ok := model.ParseQuadrant(editQuadrant)
		if !ok {
			return fmt.Errorf("unknown quadrant %q", editQuadrant)
		}
		patch.Quadrant = &q
	}
	if flags.Changed("priority") {
		p := model.Priority(editPriority)
		if parsed, ok := model.ParsePriority(editPriority); ok {
			p = parsed
		}
		patch.Priority = &p
	}
	if flags.Changed("due") {
		if editDue == "none" || editDue == "" {
			patch.ClearDue = true
		} else {
			due, err := parseDue(editDue, time.Now())
			if err != nil {
				return err
			}
			patch.DueDate = &due
		}
	}
	if flags.Changed("tags") {
		tags := splitTags(editTags)
		patch.Tags = &tags
	}

	if patch == (model.TaskPatch{}) {
		return errors.New("nothing to change, pass at least one flag")
	}

	updated, err := a.tasks.Update(cmd.Context(), task.ID, patch)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✎ Updated: \"%s\"\n", updated.Title)
	return nil
}
