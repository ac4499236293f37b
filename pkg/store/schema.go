package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// ErrSchemaMismatch is returned when the sheet header does not carry every expected column.
var ErrSchemaMismatch = errors.New("sheet header does not match the task schema")

// Columns maps each task field to its header name in the sheet.
type Columns map[model.Field]string

// DefaultColumns uses the field names themselves as headers.
func DefaultColumns() Columns {
	cols := make(Columns, len(model.Fields))
	for _, f := range model.Fields {
		cols[f] = string(f)
	}
	return cols
}

// Schema is the column position of every task field, resolved against a header row.
type Schema struct {
	positions map[model.Field]int
	width     int
}

// NewSchema locates every configured header in header. Matching ignores case
// and surrounding whitespace; extra columns are allowed.
func NewSchema(header []string, cols Columns) (*Schema, error) {
	found := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := found[key]; !dup && key != "" {
			found[key] = i + 1
		}
	}

	s := &Schema{positions: make(map[model.Field]int, len(model.Fields))}
	var missing []string
	for _, f := range model.Fields {
		name := cols[f]
		pos, ok := found[normalizeHeader(name)]
		if !ok {
			missing = append(missing, fmt.Sprintf("%q", name))
			continue
		}
		s.positions[f] = pos
		if pos > s.width {
			s.width = pos
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing column(s) %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return s, nil
}

// CanonicalSchema places the fields in columns 1-5, used for a sheet with no header yet.
func CanonicalSchema() *Schema {
	s := &Schema{positions: make(map[model.Field]int, len(model.Fields)), width: len(model.Fields)}
	for i, f := range model.Fields {
		s.positions[f] = i + 1
	}
	return s
}

// Column returns the 1-based column of f.
func (s *Schema) Column(f model.Field) int {
	return s.positions[f]
}

// Row lays values out by column position.
func (s *Schema) Row(values map[model.Field]string) []string {
	row := make([]string, s.width)
	for f, v := range values {
		if pos := s.positions[f]; pos > 0 {
			row[pos-1] = v
		}
	}
	return row
}

// Cell reads the value of f from a raw row, tolerating short rows.
func (s *Schema) Cell(row []string, f model.Field) string {
	pos := s.positions[f]
	if pos <= 0 || pos > len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos-1])
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
