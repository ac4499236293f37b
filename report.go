package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/metrics"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/session"
)

func newMetricsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show progress, workload and status distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.newStore()
			if err != nil {
				return err
			}
			tasks, err := st.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			summary := metrics.Summarize(tasks)
			if a.jsonOutput {
				return a.writeJSON(summary)
			}

			lines := []string{
				fmt.Sprintf("progress: %.1f%%", summary.Progress),
				fmt.Sprintf("points: %d/%d", summary.DonePoints, summary.TotalPoints),
				fmt.Sprintf("pending: %d", summary.Pending),
				"workload:",
			}
			for _, load := range summary.Workload {
				parts := make([]string, 0, len(model.Statuses))
				for _, s := range model.Statuses {
					parts = append(parts, fmt.Sprintf("%s=%d", s, load.Points[s]))
				}
				lines = append(lines, fmt.Sprintf("  - %s: %d (%s)", load.Owner, load.Total, strings.Join(parts, ", ")))
			}
			lines = append(lines, "distribution:")
			for _, share := range summary.Distribution {
				lines = append(lines, fmt.Sprintf("  - %s: %d points, %d tasks", share.Status, share.Points, share.Tasks))
			}
			return a.writePlain("%s\n", strings.Join(lines, "\n"))
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check credentials and the sheet header against the configured columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			st, err := a.newStore()
			if err != nil {
				return err
			}
			if _, err := st.Validate(ctx); err != nil {
				return err
			}
			tasks, err := st.ListTasks(ctx)
			if err != nil {
				return err
			}

			_, secretsErr := a.cfg.LoadSecrets()
			if a.jsonOutput {
				payload := map[string]any{"ok": true, "tasks": len(tasks), "logins": secretsErr == nil}
				return a.writeJSON(payload)
			}
			if err := a.writePlain("ok: %d tasks\n", len(tasks)); err != nil {
				return err
			}
			if secretsErr != nil {
				return a.writePlain("warning: %v\n", secretsErr)
			}
			return nil
		},
	}
}

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.toml to the configuration directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(a.cfg.Dir, "config.toml")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg := config.Default()
			cfg.Dir = a.cfg.Dir
			if err := config.Save(cfg); err != nil {
				return err
			}
			return a.writePlain("wrote %s\n", path)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config.toml")
	return cmd
}

func newHashPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its bcrypt hash for secrets.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(a.in)
			if err != nil {
				return err
			}
			password := strings.TrimRight(string(raw), "\r\n")
			if password == "" {
				return errors.New("empty password on stdin")
			}
			hash, err := session.HashPassword(password)
			if err != nil {
				return err
			}
			return a.writePlain("%s\n", hash)
		},
	}
}
