package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/kanbanflow/workflow-engine/internal/api"
	"github.com/kanbanflow/workflow-engine/internal/models"
	"github.com/kanbanflow/workflow-engine/internal/service"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Manage project boards",
}

var boardLoadCmd = &cobra.Command{
	Use:   "load <board.yaml>",
	Short: "Create a project and its columns from a YAML board definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runBoardLoad,
}

var boardShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show columns with their occupancy and WIP limits",
	Args:  cobra.ExactArgs(1),
	RunE:  runBoardShow,
}

var boardReconcileCmd = &cobra.Command{
	Use:   "reconcile <project-id>",
	Short: "Recount column occupancy from the task table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *api.Services) error {
			fixed, err := s.Board.Reconcile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d column(s) corrected\n", fixed)
			return nil
		})
	},
}

var boardArchiveCmd = &cobra.Command{
	Use:   "archive <project-id>",
	Short: "Archive a project; its columns stop accepting moves",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *api.Services) error {
			return s.Board.ArchiveProject(cmd.Context(), args[0])
		})
	},
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <project-id> <title>",
	Short: "Create a task in the first column of a project",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *api.Services) error {
			task := &models.Task{ProjectID: args[0], Title: strings.Join(args[1:], " ")}
			if err := s.Board.CreateTask(cmd.Context(), task); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), task.ID)
			return nil
		})
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "rm <task-id>",
	Short: "Delete a task and its dependency edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *api.Services) error {
			return s.Board.DeleteTask(cmd.Context(), args[0])
		})
	},
}

func init() {
	boardCmd.AddCommand(boardLoadCmd)
	boardCmd.AddCommand(boardShowCmd)
	boardCmd.AddCommand(boardReconcileCmd)
	boardCmd.AddCommand(boardArchiveCmd)

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskDeleteCmd)
}

func readBoardDefinition(path string) (service.BoardDefinition, error) {
	var def service.BoardDefinition
	data, err := os.ReadFile(path)
	if err != nil {
		return def, fmt.Errorf("read board definition: %w", err)
	}
	if err := yaml.Unmarshal(data, &def); err != nil {
		return def, fmt.Errorf("parse board definition: %w", err)
	}
	return def, nil
}

func runBoardLoad(cmd *cobra.Command, args []string) error {
	def, err := readBoardDefinition(args[0])
	if err != nil {
		return err
	}
	return withServices(func(s *api.Services) error {
		board, err := s.Board.LoadBoard(cmd.Context(), def)
		if err != nil {
			return err
		}
		printBoard(cmd, board)
		return nil
	})
}

func runBoardShow(cmd *cobra.Command, args []string) error {
	return withServices(func(s *api.Services) error {
		board, err := s.Board.GetBoard(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printBoard(cmd, board)
		return nil
	})
}

func printBoard(cmd *cobra.Command, board *service.Board) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", board.Project.ID, board.Project.Name)
	for _, c := range board.Columns {
		limit := "-"
		if c.Capacity != nil {
			limit = fmt.Sprintf("%d", *c.Capacity)
		}
		fmt.Fprintf(out, "  %s  %-20s %d/%s\n", c.ID, c.Name, c.Occupancy, limit)
	}
}
