package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/google"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

// app carries the flag values and loaded configuration shared by every command.
type app struct {
	configDir  string
	logLevel   string
	jsonOutput bool

	cfg *config.Config
	out io.Writer
	in  io.Reader

	// opener replaces the Google Sheets backend when set.
	opener store.Opener
}

func newApp(out io.Writer) *app {
	return &app{out: out, in: os.Stdin}
}

func (a *app) load() error {
	var err error
	if strings.TrimSpace(a.configDir) != "" {
		a.cfg, err = config.LoadDir(a.configDir)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	return configureLogger(a.logLevel, a.cfg.LogLevel)
}

func (a *app) newStore() (*store.Store, error) {
	ttl, err := a.cfg.CacheTTLDuration()
	if err != nil {
		return nil, err
	}
	lookup := store.Strict
	if a.cfg.LookupPolicy == config.LookupIgnore {
		lookup = store.Ignore
	}
	open := a.opener
	if open == nil {
		open = sheetOpener(a.cfg)
	}

	cols := a.cfg.Spreadsheet.Columns
	return store.New(open, store.Options{
		Columns: store.Columns{
			model.FIELD_ID:     cols.ID,
			model.FIELD_TITLE:  cols.Title,
			model.FIELD_OWNER:  cols.Owner,
			model.FIELD_STATUS: cols.Status,
			model.FIELD_EFFORT: cols.Effort,
		},
		Owners:    a.cfg.Owners,
		EffortMin: a.cfg.Effort.Min,
		EffortMax: a.cfg.Effort.Max,
		Lookup:    lookup,
		CacheTTL:  ttl,
		Logger:    log.StandardLogger(),
	}), nil
}

func sheetOpener(cfg *config.Config) store.Opener {
	return func(ctx context.Context) (store.Backend, error) {
		sheet, err := google.NewSheet(ctx, google.Options{
			ServiceAccountFile: cfg.ServiceAccountFile,
			SpreadsheetID:      cfg.Spreadsheet.ID,
			SpreadsheetName:    cfg.Spreadsheet.Name,
			Worksheet:          cfg.Spreadsheet.Worksheet,
		})
		if err != nil {
			return nil, fmt.Errorf("could not open spreadsheet: %w", err)
		}
		log.WithField("worksheet", sheet.Title()).Debug("connected to spreadsheet")
		return sheet, nil
	}
}
