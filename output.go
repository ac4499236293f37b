package main

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

func (a *app) writeJSON(payload any) error {
	b, err := sonic.ConfigStd.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

func (a *app) writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(a.out, format, args...)
	return err
}

func (a *app) writeTaskList(tasks []model.Task) error {
	for _, task := range tasks {
		if err := a.writePlain("%s\n", formatTaskLine(task)); err != nil {
			return err
		}
	}
	return nil
}

func formatTaskLine(task model.Task) string {
	return fmt.Sprintf("%s [%s] [%s] (%d) - %s", task.ID, task.Status, task.Owner, task.Effort, task.Title)
}
