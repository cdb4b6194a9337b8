package cli

import (
	"fmt"

	"github.com/kanbanflow/workflow-engine/internal/api"
	"github.com/kanbanflow/workflow-engine/internal/service"
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <task-id> <column-id>",
	Short: "Move a task to another column",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

var historyCmd = &cobra.Command{
	Use:   "history <task-id>",
	Short: "Show the transitions of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	moveCmd.Flags().Bool("force", false, "Bypass the column WIP limit (never bypasses dependencies)")
	moveCmd.Flags().String("actor", "cli", "Acting user recorded in the transition history")
}

func runMove(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	actor, _ := cmd.Flags().GetString("actor")

	return withServices(func(s *api.Services) error {
		err := s.Transition.MoveTask(cmd.Context(), service.MoveRequest{
			TaskID:         args[0],
			TargetColumnID: args[1],
			Actor:          actor,
			Force:          force,
		})
		if err != nil {
			return err
		}

		task, err := s.Board.GetTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", task.ID, task.ColumnID, task.Status)
		return nil
	})
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withServices(func(s *api.Services) error {
		transitions, err := s.Board.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, t := range transitions {
			forced := ""
			if t.Forced {
				forced = " [forced]"
			}
			fmt.Fprintf(out, "%s  %s -> %s  %s  by %s%s\n",
				t.CreatedAt.Format("2006-01-02 15:04:05"), t.FromColumnID, t.ToColumnID, t.Status, t.Actor, forced)
		}
		return nil
	})
}
