package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/points"
)

// TaskOptions holds flags for task add.
type TaskOptions struct {
	*RootOptions
	Description string
	Points      string
	Priority    string
	Category    string
	Due         string
	Items       map[string]int
	Exp         int
	Scripts     []string
	All         bool
}

// NewTaskCommand creates the task command group.
func NewTaskCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TaskOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a pending task",
		Long: `Add a pending task. Completing it logs its points, grants its items and
runs its selected scripts.

Example:
  gamify task add "Clean kitchen" --points "temizlik:10" --item coin=2 --script bonus`,
		Args: cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			in := gameapi.TaskInput{
				Name:        args[0],
				Description: opts.Description,
				Points:      opts.Points,
				Priority:    opts.Priority,
				Category:    opts.Category,
				DueDate:     opts.Due,
				ItemRewards: opts.Items,
				ExpReward:   opts.Exp,
			}
			for _, ref := range opts.Scripts {
				sc, err := findScript(s, ref)
				if err != nil {
					return err
				}
				in.SelectedScripts = append(in.SelectedScripts, sc.ID)
			}
			task, err := s.api.CreateTask(ctx, in)
			if err != nil {
				return opError("failed to add task", err)
			}
			return s.out.Render(task, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Added task %s (%s)\n", task.Name, task.ID)
				return err
			})
		}),
	}
	add.Flags().StringVar(&opts.Description, "description", "", "task description")
	add.Flags().StringVar(&opts.Points, "points", "", `points granted on completion ("skill:value, ...")`)
	add.Flags().StringVar(&opts.Priority, "priority", "", "priority (default normal)")
	add.Flags().StringVar(&opts.Category, "category", "", "category")
	add.Flags().StringVar(&opts.Due, "due", "", "due date")
	add.Flags().StringToIntVar(&opts.Items, "item", nil, "item reward as name=amount (repeatable)")
	add.Flags().IntVar(&opts.Exp, "exp", 0, "experience reward")
	add.Flags().StringSliceVar(&opts.Scripts, "script", nil, "script to run on completion, by name or ID (repeatable)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List pending tasks",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			tasks := s.api.Todos()
			if opts.All {
				tasks = s.api.AllTasks()
			}
			return s.out.Render(tasks, func(w io.Writer) error {
				return writeTasks(w, tasks)
			})
		}),
	}
	list.Flags().BoolVar(&opts.All, "all", false, "include completed tasks")

	cmd.AddCommand(add, list,
		taskTransition(rootOpts, "complete", "Complete a pending task", "completed", (*gameapi.API).CompleteTask),
		taskTransition(rootOpts, "undo", "Revert a completed task to pending", "reverted", (*gameapi.API).UndoTask),
		taskTransition(rootOpts, "remove", "Remove a task", "removed", (*gameapi.API).RemoveTask),
	)
	return cmd
}

func taskTransition(
	rootOpts *RootOptions,
	use, short, past string,
	op func(*gameapi.API, context.Context, string) (bool, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			task, err := findTask(s, args[0])
			if err != nil {
				return err
			}
			ok, err := op(s.api, ctx, task.ID)
			if err != nil {
				return opError(fmt.Sprintf("failed to %s task", use), err)
			}
			if !ok {
				return refused("task %s cannot be %s in its current state", task.Name, past)
			}
			if fresh, found := s.api.TaskByID(task.ID); found {
				task = fresh
			}
			return s.out.Render(task, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Task %s %s\n", task.Name, past)
				return err
			})
		}),
	}
}

func writeTasks(w io.Writer, tasks []model.Task) error {
	t := newTheme(w)
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, t.muted.Render("No tasks."))
		return err
	}
	for _, task := range tasks {
		line := fmt.Sprintf("%s %s", t.mark(task.Completed), task.Name)
		if len(task.Points) > 0 {
			line += " " + t.muted.Render("["+points.Format(task.Points)+"]")
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", line, t.muted.Render(task.ID)); err != nil {
			return err
		}
	}
	return nil
}
