package google

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/harrisonrobin/taskboard/pkg/auth"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Options selects the spreadsheet and worksheet to open.
type Options struct {
	ServiceAccountFile string
	SpreadsheetID      string // takes precedence over SpreadsheetName
	SpreadsheetName    string
	Worksheet          string // first worksheet when empty

	// HTTPClient replaces the service account client. Used by tests.
	HTTPClient *http.Client
	// ClientOptions are appended when constructing the API services.
	ClientOptions []option.ClientOption
}

// NewSheet opens the worksheet described by opts.
func NewSheet(ctx context.Context, opts Options) (*Sheet, error) {
	client := opts.HTTPClient
	if client == nil {
		var err error
		client, err = auth.ServiceAccountClient(ctx, opts.ServiceAccountFile)
		if err != nil {
			return nil, err
		}
	}
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(client)}, opts.ClientOptions...)

	sheetsSrv, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}

	spreadsheetID := opts.SpreadsheetID
	if spreadsheetID == "" {
		driveSrv, err := drive.NewService(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("unable to create Drive client: %w", err)
		}
		spreadsheetID, err = findSpreadsheet(ctx, driveSrv, opts.SpreadsheetName)
		if err != nil {
			return nil, err
		}
	}

	spreadsheet, err := sheetsSrv.Spreadsheets.Get(spreadsheetID).
		Fields("spreadsheetId", "sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve spreadsheet %s: %w", spreadsheetID, err)
	}
	if len(spreadsheet.Sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no worksheets", spreadsheetID)
	}

	title := opts.Worksheet
	if title == "" {
		title = spreadsheet.Sheets[0].Properties.Title
	} else {
		found := false
		for _, s := range spreadsheet.Sheets {
			if s.Properties != nil && s.Properties.Title == title {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("worksheet '%s' not found", title)
		}
	}

	return NewSheetClient(sheetsSrv, spreadsheetID, title), nil
}

func findSpreadsheet(ctx context.Context, srv *drive.Service, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMimeType)
	list, err := srv.Files.List().
		Q(q).
		Fields("files(id, name)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to search spreadsheets: %w", err)
	}

	for _, f := range list.Files {
		if f.Name == name {
			return f.Id, nil
		}
	}
	return "", fmt.Errorf("spreadsheet '%s' not found", name)
}
