package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

func newListCmd(a *app) *cobra.Command {
	var status, owner string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var want model.Status
			if status != "" {
				st, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				want = st
			}

			st, err := a.newStore()
			if err != nil {
				return err
			}
			tasks, err := st.ListTasks(cmd.Context())
			if err != nil {
				return err
			}

			filtered := tasks[:0]
			for _, t := range tasks {
				if want != "" && t.Status != want {
					continue
				}
				if owner != "" && !strings.EqualFold(t.Owner, owner) {
					continue
				}
				filtered = append(filtered, t)
			}

			if a.jsonOutput {
				return a.writeJSON(filtered)
			}
			return a.writeTaskList(filtered)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only tasks with this status (todo, in_progress, done)")
	cmd.Flags().StringVar(&owner, "owner", "", "only tasks of this owner")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var (
		owner  string
		effort int
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task in the Todo column",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("effort") {
				effort = a.cfg.Effort.Default
			}
			st, err := a.newStore()
			if err != nil {
				return err
			}
			task, err := st.CreateTask(cmd.Context(), strings.Join(args, " "), owner, effort)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.writeJSON(task)
			}
			return a.writePlain("created %s\n", formatTaskLine(task))
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "task owner")
	cmd.Flags().IntVar(&effort, "effort", 0, "effort points (default from config)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	var back bool

	cmd := &cobra.Command{
		Use:   "move <id> [status]",
		Short: "Move a task to another column",
		Long:  "Move a task to the given status, or one column forward (--back: backward) when no status is given.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.newStore()
			if err != nil {
				return err
			}
			id := args[0]

			var target model.Status
			if len(args) == 2 {
				if target, err = model.ParseStatus(args[1]); err != nil {
					return err
				}
			} else {
				tasks, err := st.ListTasks(cmd.Context())
				if err != nil {
					return err
				}
				current, ok := findTask(tasks, id)
				if !ok {
					return fmt.Errorf("task %s not found", id)
				}
				if back {
					target, ok = current.Status.Prev()
				} else {
					target, ok = current.Status.Next()
				}
				if !ok {
					return fmt.Errorf("task %s cannot move past %q", id, current.Status)
				}
			}

			updated, err := st.UpdateTaskField(cmd.Context(), id, model.FIELD_STATUS, string(target))
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.writeJSON(map[string]any{"id": id, "status": target, "updated": updated})
			}
			if !updated {
				return a.writePlain("%s: nothing changed\n", id)
			}
			return a.writePlain("%s -> %s\n", id, target)
		},
	}

	cmd.Flags().BoolVar(&back, "back", false, "move one column backward")
	return cmd
}

func findTask(tasks []model.Task, id string) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
