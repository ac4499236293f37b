package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/harrisonrobin/taskboard/pkg/index"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

const (
	idLength      = 8
	maxIDAttempts = 5
	tracerName    = "github.com/harrisonrobin/taskboard/pkg/store"

	DefaultEffortMin = 1
	DefaultEffortMax = 13
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidField  = errors.New("field cannot be updated")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidEffort = errors.New("invalid effort")
	ErrInvalidOwner  = errors.New("unknown owner")
	ErrEmptyTitle    = errors.New("title is required")
	ErrIDCollision   = errors.New("could not generate a unique task id")
)

// Backend is a single worksheet. Rows and columns are 1-based.
type Backend interface {
	Rows(ctx context.Context) ([][]string, error)
	UpdateCell(ctx context.Context, row, col int, value string) error
	AppendRow(ctx context.Context, values []string) error
}

// Opener creates the backend handle. It is called until it first succeeds.
type Opener func(ctx context.Context) (Backend, error)

// Static returns an Opener that always yields b.
func Static(b Backend) Opener {
	return func(context.Context) (Backend, error) { return b, nil }
}

// LookupPolicy decides what UpdateTaskField does when the task is absent.
type LookupPolicy int

const (
	// Strict reports ErrTaskNotFound.
	Strict LookupPolicy = iota
	// Ignore leaves the sheet untouched and reports no error.
	Ignore
)

type Options struct {
	Columns   Columns
	Owners    []string
	EffortMin int
	EffortMax int
	Lookup    LookupPolicy
	CacheTTL  time.Duration
	Logger    *log.Logger

	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider

	// overridable in tests
	Now   func() time.Time
	NewID func() string
}

// Store maps the task sheet to model.Task values.
type Store struct {
	open Opener
	opts Options

	mu      sync.Mutex
	backend Backend

	revision atomic.Uint64
	memo     *index.Memo
	tracer   trace.Tracer
}

func New(open Opener, opts Options) *Store {
	if opts.Columns == nil {
		opts.Columns = DefaultColumns()
	}
	if opts.EffortMin <= 0 {
		opts.EffortMin = DefaultEffortMin
	}
	if opts.EffortMax < opts.EffortMin {
		opts.EffortMax = DefaultEffortMax
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = newID
	}
	return &Store{
		open:   open,
		opts:   opts,
		memo:   index.NewMemo(opts.CacheTTL),
		tracer: opts.TracerProvider.Tracer(tracerName),
	}
}

func newID() string {
	return uuid.NewString()[:idLength]
}

// Owners returns the configured owner names.
func (s *Store) Owners() []string {
	return slices.Clone(s.opts.Owners)
}

// EffortRange returns the bounds enforced by CreateTask.
func (s *Store) EffortRange() (int, int) {
	return s.opts.EffortMin, s.opts.EffortMax
}

// Revision is bumped by every successful mutation.
func (s *Store) Revision() uint64 {
	return s.revision.Load()
}

// Connect returns the cached backend handle, opening it on first use.
func (s *Store) Connect(ctx context.Context) (Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend != nil {
		return s.backend, nil
	}
	b, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to task sheet: %w", err)
	}
	s.backend = b
	return b, nil
}

// Validate checks the header row against the configured columns. An empty
// sheet is valid; CreateTask writes the header before the first task.
func (s *Store) Validate(ctx context.Context) (*Schema, error) {
	b, err := s.Connect(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := b.Rows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return CanonicalSchema(), nil
	}
	return NewSchema(rows[0], s.opts.Columns)
}

// ListTasks returns every task in sheet order. On failure it returns an empty
// slice together with the error so that callers can still render.
func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	ctx, span := s.tracer.Start(ctx, "store.ListTasks")
	defer span.End()

	snap, err := s.snapshot(ctx)
	if err != nil {
		fail(span, err)
		return []model.Task{}, err
	}
	span.SetAttributes(attribute.Int("tasks.count", len(snap.Tasks)))
	return slices.Clone(snap.Tasks), nil
}

// UpdateTaskField writes value into field of the task identified by id.
// updated is false when the task is absent under the Ignore policy.
func (s *Store) UpdateTaskField(ctx context.Context, id string, field model.Field, value string) (updated bool, err error) {
	ctx, span := s.tracer.Start(ctx, "store.UpdateTaskField", trace.WithAttributes(
		attribute.String("task.id", id),
		attribute.String("task.field", string(field)),
	))
	defer func() {
		if err != nil {
			fail(span, err)
		}
		span.End()
	}()

	value, err = s.normalize(field, value)
	if err != nil {
		return false, err
	}

	snap, schema, err := s.fetch(ctx, s.revision.Load())
	if err != nil {
		return false, err
	}

	row, ok := snap.Row(id)
	if !ok {
		if s.opts.Lookup == Ignore {
			s.opts.Logger.Debugf("update of %s on missing task %s ignored", field, id)
			return false, nil
		}
		return false, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	b, err := s.Connect(ctx)
	if err != nil {
		return false, err
	}
	if err := b.UpdateCell(ctx, row, schema.Column(field), value); err != nil {
		return false, err
	}
	s.bump()
	s.opts.Logger.Debugf("task %s: %s updated", id, field)
	return true, nil
}

func (s *Store) normalize(field model.Field, value string) (string, error) {
	if !field.Writable() {
		return "", fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	switch field {
	case model.FIELD_STATUS:
		st, err := model.ParseStatus(value)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
		}
		return string(st), nil
	case model.FIELD_EFFORT:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return "", fmt.Errorf("%w: %q is not an integer", ErrInvalidEffort, value)
		}
		return strconv.Itoa(n), nil
	case model.FIELD_TITLE:
		if strings.TrimSpace(value) == "" {
			return "", ErrEmptyTitle
		}
		return strings.TrimSpace(value), nil
	}
	return strings.TrimSpace(value), nil
}

// CreateTask appends a new Todo task and returns it.
func (s *Store) CreateTask(ctx context.Context, title, owner string, effort int) (task model.Task, err error) {
	ctx, span := s.tracer.Start(ctx, "store.CreateTask")
	defer func() {
		if err != nil {
			fail(span, err)
		}
		span.End()
	}()

	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrEmptyTitle
	}
	if len(s.opts.Owners) > 0 && !slices.Contains(s.opts.Owners, owner) {
		return model.Task{}, fmt.Errorf("%w: %q", ErrInvalidOwner, owner)
	}
	if effort < s.opts.EffortMin || effort > s.opts.EffortMax {
		return model.Task{}, fmt.Errorf("%w: %d is outside [%d, %d]", ErrInvalidEffort, effort, s.opts.EffortMin, s.opts.EffortMax)
	}

	snap, schema, err := s.fetch(ctx, s.revision.Load())
	if err != nil {
		return model.Task{}, err
	}

	id, err := s.uniqueID(snap)
	if err != nil {
		return model.Task{}, err
	}
	task = model.Task{ID: id, Title: title, Owner: owner, Status: model.TODO, Effort: effort}

	b, err := s.Connect(ctx)
	if err != nil {
		return model.Task{}, err
	}
	if schema == nil {
		schema = CanonicalSchema()
		header := make(map[model.Field]string, len(model.Fields))
		for _, f := range model.Fields {
			header[f] = s.opts.Columns[f]
		}
		if err := b.AppendRow(ctx, schema.Row(header)); err != nil {
			return model.Task{}, err
		}
	}

	row := schema.Row(map[model.Field]string{
		model.FIELD_ID:     task.ID,
		model.FIELD_TITLE:  task.Title,
		model.FIELD_OWNER:  task.Owner,
		model.FIELD_STATUS: string(task.Status),
		model.FIELD_EFFORT: strconv.Itoa(task.Effort),
	})
	if err := b.AppendRow(ctx, row); err != nil {
		return model.Task{}, err
	}
	s.bump()
	span.SetAttributes(attribute.String("task.id", task.ID))
	s.opts.Logger.Debugf("task %s created", task.ID)
	return task, nil
}

func (s *Store) uniqueID(snap *index.Snapshot) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.opts.NewID()
		if !snap.Has(id) {
			return id, nil
		}
		s.opts.Logger.Warnf("generated task id %s already exists, retrying", id)
	}
	return "", ErrIDCollision
}

func (s *Store) bump() {
	s.revision.Add(1)
	s.memo.Invalidate()
}

func (s *Store) snapshot(ctx context.Context) (*index.Snapshot, error) {
	rev := s.revision.Load()
	if snap, ok := s.memo.Get(rev, s.opts.Now()); ok {
		return snap, nil
	}
	snap, _, err := s.fetch(ctx, rev)
	return snap, err
}

// fetch reads the sheet and caches the result under rev. schema is nil when
// the sheet has no header row.
func (s *Store) fetch(ctx context.Context, rev uint64) (*index.Snapshot, *Schema, error) {
	b, err := s.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	rows, err := b.Rows(ctx)
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		snap := index.NewSnapshot(rev, s.opts.Now(), []model.Task{}, nil)
		s.memo.Put(snap)
		return snap, nil, nil
	}

	schema, err := NewSchema(rows[0], s.opts.Columns)
	if err != nil {
		return nil, nil, err
	}

	tasks := make([]model.Task, 0, len(rows)-1)
	rowNums := make([]int, 0, len(rows)-1)
	for i, raw := range rows[1:] {
		sheetRow := i + 2
		id := schema.Cell(raw, model.FIELD_ID)
		if id == "" {
			continue
		}
		tasks = append(tasks, s.parseTask(schema, raw, sheetRow))
		rowNums = append(rowNums, sheetRow)
	}

	snap := index.NewSnapshot(rev, s.opts.Now(), tasks, rowNums)
	s.memo.Put(snap)
	return snap, schema, nil
}

func (s *Store) parseTask(schema *Schema, raw []string, sheetRow int) model.Task {
	t := model.Task{
		ID:     schema.Cell(raw, model.FIELD_ID),
		Title:  schema.Cell(raw, model.FIELD_TITLE),
		Owner:  schema.Cell(raw, model.FIELD_OWNER),
		Status: model.Status(schema.Cell(raw, model.FIELD_STATUS)),
	}
	if st, err := model.ParseStatus(string(t.Status)); err == nil {
		t.Status = st
	} else {
		s.opts.Logger.Warnf("row %d: task %s has unknown status %q", sheetRow, t.ID, t.Status)
	}
	if cell := schema.Cell(raw, model.FIELD_EFFORT); cell != "" {
		effort, err := strconv.Atoi(cell)
		if err != nil {
			s.opts.Logger.Warnf("row %d: task %s has non-numeric effort %q", sheetRow, t.ID, cell)
		}
		t.Effort = effort
	}
	return t
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
