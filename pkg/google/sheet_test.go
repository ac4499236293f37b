package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
)

type fakeAPI struct {
	mu      sync.Mutex
	rows    [][]interface{}
	updates []string
	appends [][]interface{}
	// valueInputOption of every write
	inputOptions []string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		path := r.URL.Path
		switch {
		case path == "/files":
			if !strings.Contains(r.URL.Query().Get("q"), "name = 'Board'") {
				io.WriteString(w, `{"files": []}`)
				return
			}
			io.WriteString(w, `{"files": [{"id": "sheet-123", "name": "Board"}]}`)
		case path == "/v4/spreadsheets/sheet-123":
			io.WriteString(w, `{"spreadsheetId": "sheet-123", "sheets": [{"properties": {"title": "Tasks"}}, {"properties": {"title": "Archive"}}]}`)
		case strings.HasSuffix(path, ":append") && r.Method == http.MethodPost:
			var body struct {
				Values [][]interface{} `json:"values"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode append body: %v", err)
			}
			if r.URL.Query().Get("insertDataOption") != insertDataOption {
				t.Errorf("unexpected insertDataOption %q", r.URL.Query().Get("insertDataOption"))
			}
			f.appends = append(f.appends, body.Values...)
			f.inputOptions = append(f.inputOptions, r.URL.Query().Get("valueInputOption"))
			io.WriteString(w, `{}`)
		case strings.HasPrefix(path, "/v4/spreadsheets/sheet-123/values/") && r.Method == http.MethodPut:
			var body struct {
				Values [][]interface{} `json:"values"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode update body: %v", err)
			}
			rng := strings.TrimPrefix(path, "/v4/spreadsheets/sheet-123/values/")
			f.updates = append(f.updates, rng+"="+body.Values[0][0].(string))
			f.inputOptions = append(f.inputOptions, r.URL.Query().Get("valueInputOption"))
			io.WriteString(w, `{}`)
		case strings.HasPrefix(path, "/v4/spreadsheets/sheet-123/values/") && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{"values": f.rows})
		default:
			t.Errorf("unexpected request %s %s", r.Method, path)
			http.NotFound(w, r)
		}
	})
}

func newTestSheet(t *testing.T, api *fakeAPI, opts Options) (*Sheet, error) {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	opts.HTTPClient = srv.Client()
	opts.ClientOptions = []option.ClientOption{option.WithEndpoint(srv.URL + "/")}
	return NewSheet(context.Background(), opts)
}

func TestNewSheetByName(t *testing.T) {
	sheet, err := newTestSheet(t, &fakeAPI{}, Options{SpreadsheetName: "Board"})
	if err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	if sheet.Title() != "Tasks" {
		t.Errorf("expected first worksheet 'Tasks', got %q", sheet.Title())
	}
}

func TestNewSheetErrors(t *testing.T) {
	if _, err := newTestSheet(t, &fakeAPI{}, Options{SpreadsheetName: "Missing"}); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected spreadsheet not found, got %v", err)
	}
	if _, err := newTestSheet(t, &fakeAPI{}, Options{SpreadsheetID: "sheet-123", Worksheet: "Nope"}); err == nil || !strings.Contains(err.Error(), "worksheet 'Nope' not found") {
		t.Errorf("expected worksheet not found, got %v", err)
	}
}

func TestSheetRowsUpdateAppend(t *testing.T) {
	api := &fakeAPI{rows: [][]interface{}{
		{"id", "title", "owner", "status", "effort"},
		{"a1b2c3d4", "Fix bug", "Ana", "Por Hacer", 5},
	}}
	sheet, err := newTestSheet(t, api, Options{SpreadsheetID: "sheet-123", Worksheet: "Archive"})
	if err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	ctx := context.Background()

	rows, err := sheet.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	if len(rows) != 2 || rows[1][4] != "5" || rows[1][0] != "a1b2c3d4" {
		t.Fatalf("unexpected rows %v", rows)
	}

	if err := sheet.UpdateCell(ctx, 2, 4, "Hecho"); err != nil {
		t.Fatalf("UpdateCell failed: %v", err)
	}
	if len(api.updates) != 1 || api.updates[0] != "'Archive'!D2=Hecho" {
		t.Errorf("unexpected updates %v", api.updates)
	}

	if err := sheet.AppendRow(ctx, []string{"ffff0000", "New", "Luis", "Por Hacer", "3"}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}
	if len(api.appends) != 1 || api.appends[0][1] != "New" {
		t.Errorf("unexpected appends %v", api.appends)
	}
}

func TestSheetWritesAreStoredVerbatim(t *testing.T) {
	api := &fakeAPI{rows: [][]interface{}{{"id", "title", "owner", "status", "effort"}}}
	sheet, err := newTestSheet(t, api, Options{SpreadsheetID: "sheet-123", Worksheet: "Tasks"})
	if err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	ctx := context.Background()

	if err := sheet.AppendRow(ctx, []string{"00012345", "=1+1", "Ana", "Por Hacer", "3"}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}
	if err := sheet.UpdateCell(ctx, 2, 2, "3/4"); err != nil {
		t.Fatalf("UpdateCell failed: %v", err)
	}

	if len(api.inputOptions) != 2 {
		t.Fatalf("expected 2 writes, got %v", api.inputOptions)
	}
	for _, opt := range api.inputOptions {
		if opt != "RAW" {
			t.Errorf("expected valueInputOption RAW, got %q", opt)
		}
	}
	if got := api.appends[0]; got[0] != "00012345" || got[1] != "=1+1" {
		t.Errorf("appended values changed in transit: %v", got)
	}
}

func TestA1(t *testing.T) {
	tests := []struct {
		row, col int
		want     string
	}{
		{1, 1, "A1"},
		{3, 5, "E3"},
		{10, 26, "Z10"},
		{10, 27, "AA10"},
		{2, 52, "AZ2"},
		{7, 703, "AAA7"},
	}
	for _, tt := range tests {
		if got := A1(tt.row, tt.col); got != tt.want {
			t.Errorf("A1(%d, %d) = %q, want %q", tt.row, tt.col, got, tt.want)
		}
	}
}
