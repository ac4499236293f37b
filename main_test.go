package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/harrisonrobin/taskboard/pkg/metrics"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

type memSheet struct {
	mu   sync.Mutex
	rows [][]string
}

func (m *memSheet) Rows(ctx context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = append([]string{}, r...)
	}
	return out, nil
}

func (m *memSheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.rows) < row {
		m.rows = append(m.rows, nil)
	}
	for len(m.rows[row-1]) < col {
		m.rows[row-1] = append(m.rows[row-1], "")
	}
	m.rows[row-1][col-1] = value
	return nil
}

func (m *memSheet) AppendRow(ctx context.Context, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, append([]string{}, values...))
	return nil
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	a.out = &buf
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func newTestApp(sheet *memSheet) *app {
	a := newApp(nil)
	a.opener = store.Static(sheet)
	return a
}

func TestSelectLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		config  string
		want    log.Level
		wantErr string
	}{
		{name: "default", want: log.InfoLevel},
		{name: "config", config: "debug", want: log.DebugLevel},
		{name: "flag wins", flag: "error", config: "debug", want: log.ErrorLevel},
		{name: "warning alias", flag: "warning", want: log.WarnLevel},
		{name: "bad flag", flag: "loud", wantErr: "--log-level"},
		{name: "bad config", config: "loud", wantErr: "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectLogLevel(tt.flag, tt.config)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTaskCommands(t *testing.T) {
	dir := t.TempDir()
	sheet := &memSheet{}
	a := newTestApp(sheet)

	out, err := run(t, a, "--config-dir", dir, "--json", "add", "Fix", "bug", "--owner", "Ana", "--effort", "3")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	var created model.Task
	if err := sonic.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if created.Title != "Fix bug" || created.Status != model.TODO || created.Effort != 3 || len(created.ID) != 8 {
		t.Fatalf("unexpected task %+v", created)
	}
	if len(sheet.rows) != 2 || sheet.rows[0][0] != "id" {
		t.Fatalf("expected header and one task row, got %v", sheet.rows)
	}

	if _, err := run(t, a, "--config-dir", dir, "add", "Bad", "--owner", "Nobody"); err == nil {
		t.Error("expected unknown owner to be rejected")
	}

	out, err = run(t, a, "--config-dir", dir, "move", created.ID)
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if !strings.Contains(out, string(model.IN_PROGRESS)) {
		t.Errorf("unexpected move output %q", out)
	}

	if _, err := run(t, a, "--config-dir", dir, "move", created.ID, "done"); err != nil {
		t.Fatalf("move to done failed: %v", err)
	}
	if _, err := run(t, a, "--config-dir", dir, "move", created.ID); err == nil {
		t.Error("expected done task to refuse moving forward")
	}
	if _, err := run(t, a, "--config-dir", dir, "move", "--back", created.ID); err != nil {
		t.Fatalf("move back failed: %v", err)
	}
	if _, err := run(t, a, "--config-dir", dir, "move", "zzzz0000", "done"); err == nil {
		t.Error("expected unknown id to fail under the strict policy")
	}

	out, err = run(t, a, "--config-dir", dir, "list", "--status", "in_progress")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, created.ID) || !strings.Contains(out, "Fix bug") {
		t.Errorf("unexpected list output %q", out)
	}
	out, _ = run(t, a, "--config-dir", dir, "list", "--status", "todo")
	if strings.TrimSpace(out) != "" {
		t.Errorf("expected no todo tasks, got %q", out)
	}

	out, err = run(t, a, "--config-dir", dir, "--json", "metrics")
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	var summary metrics.Summary
	if err := sonic.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatal(err)
	}
	if summary.TotalPoints != 3 || summary.DonePoints != 0 || summary.Pending != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestCheckReportsSchemaMismatch(t *testing.T) {
	sheet := &memSheet{rows: [][]string{{"id", "title", "owner"}}}
	_, err := run(t, newTestApp(sheet), "--config-dir", t.TempDir(), "check")
	if err == nil || !strings.Contains(err.Error(), "effort") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(&memSheet{})
	if _, err := run(t, a, "--config-dir", dir, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, a, "--config-dir", dir, "init"); err == nil {
		t.Error("expected init to refuse overwriting")
	}
	if _, err := run(t, a, "--config-dir", dir, "init", "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
}

func TestHashPasswordCmd(t *testing.T) {
	a := newTestApp(&memSheet{})
	a.in = strings.NewReader("s3cret\n")
	out, err := run(t, a, "--config-dir", t.TempDir(), "hash-password")
	if err != nil {
		t.Fatal(err)
	}
	hash := strings.TrimSpace(out)
	if !strings.HasPrefix(hash, "$2a$") || strings.Contains(hash, "s3cret") {
		t.Errorf("unexpected hash %q", hash)
	}

	a.in = strings.NewReader("")
	if _, err := run(t, a, "--config-dir", t.TempDir(), "hash-password"); err == nil {
		t.Error("expected empty password to fail")
	}
}
