package model

import (
	"fmt"
	"strings"
)

// Status is the workflow stage of a task. Its value is the literal stored in the sheet.
type Status string

const (
	TODO        Status = "Por Hacer"
	IN_PROGRESS Status = "En Progreso"
	DONE        Status = "Hecho"
)

// Statuses lists every status in board order.
var Statuses = []Status{TODO, IN_PROGRESS, DONE}

var statusNames = map[string]Status{
	"todo":        TODO,
	"in_progress": IN_PROGRESS,
	"inprogress":  IN_PROGRESS,
	"done":        DONE,
}

// ParseStatus accepts either the stored literal or the symbolic name (todo, in_progress, done).
func ParseStatus(s string) (Status, error) {
	trimmed := strings.TrimSpace(s)
	for _, st := range Statuses {
		if string(st) == trimmed {
			return st, nil
		}
	}
	if st, ok := statusNames[strings.ToLower(trimmed)]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) Valid() bool {
	switch s {
	case TODO, IN_PROGRESS, DONE:
		return true
	}
	return false
}

// Name returns the symbolic name used in URLs and JSON.
func (s Status) Name() string {
	switch s {
	case TODO:
		return "todo"
	case IN_PROGRESS:
		return "in_progress"
	case DONE:
		return "done"
	}
	return ""
}

// Next returns the status a task advances to. ok is false for Done.
func (s Status) Next() (Status, bool) {
	switch s {
	case TODO:
		return IN_PROGRESS, true
	case IN_PROGRESS:
		return DONE, true
	}
	return "", false
}

// Prev returns the status a task reverts to. ok is false for Todo.
func (s Status) Prev() (Status, bool) {
	switch s {
	case IN_PROGRESS:
		return TODO, true
	case DONE:
		return IN_PROGRESS, true
	}
	return "", false
}

// Field names a task column.
type Field string

const (
	FIELD_ID     Field = "id"
	FIELD_TITLE  Field = "title"
	FIELD_OWNER  Field = "owner"
	FIELD_STATUS Field = "status"
	FIELD_EFFORT Field = "effort"
)

// Fields lists every column in canonical sheet order.
var Fields = []Field{FIELD_ID, FIELD_TITLE, FIELD_OWNER, FIELD_STATUS, FIELD_EFFORT}

// Writable reports whether the field may be changed after creation.
func (f Field) Writable() bool {
	switch f {
	case FIELD_TITLE, FIELD_OWNER, FIELD_STATUS, FIELD_EFFORT:
		return true
	}
	return false
}

// Task is one row of the task sheet.
type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Owner  string `json:"owner"`
	Status Status `json:"status"`
	Effort int    `json:"effort"`
}
