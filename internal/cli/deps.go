package cli

import (
	"fmt"

	"github.com/kanbanflow/workflow-engine/internal/api"
	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Manage blocking dependencies",
}

var depsAddCmd = &cobra.Command{
	Use:   "add <task-id> <blocker-id>",
	Short: "Block a task on another task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *api.Services) error {
			return s.Dependency.AddEdge(cmd.Context(), args[0], args[1])
		})
	},
}

var depsRemoveCmd = &cobra.Command{
	Use:     "rm <task-id> <blocker-id>",
	Aliases: []string{"remove"},
	Short:   "Resolve a blocking dependency",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *api.Services) error {
			return s.Dependency.RemoveEdge(cmd.Context(), args[0], args[1])
		})
	},
}

var depsListCmd = &cobra.Command{
	Use:   "ls <task-id>",
	Short: "List the blockers of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *api.Services) error {
			deps, err := s.Dependency.Blockers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, d := range deps {
				fmt.Fprintln(cmd.OutOrStdout(), d.BlockerID)
			}
			return nil
		})
	},
}

func init() {
	depsCmd.AddCommand(depsAddCmd)
	depsCmd.AddCommand(depsRemoveCmd)
	depsCmd.AddCommand(depsListCmd)
}
