package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

// ErrNotServiceAccount is returned when the credentials file holds some other
// kind of Google credential (an OAuth client secret, for instance).
var ErrNotServiceAccount = errors.New("credentials file is not a service account key")

// Scopes grants read/write on spreadsheets plus the drive access needed to
// find a spreadsheet by name.
var Scopes = []string{
	sheets.SpreadsheetsScope,
	drive.DriveScope,
}

// ServiceAccountClient creates an *http.Client authenticated as the service
// account whose JSON key is stored at path. Tokens are refreshed by the client.
func ServiceAccountClient(ctx context.Context, path string) (*http.Client, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file %s: %w", path, err)
	}
	return ServiceAccountClientFromJSON(ctx, b)
}

func ServiceAccountClientFromJSON(ctx context.Context, key []byte) (*http.Client, error) {
	config, err := google.JWTConfigFromJSON(key, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}
	if config.Email == "" || len(config.PrivateKey) == 0 {
		return nil, ErrNotServiceAccount
	}
	return config.Client(ctx), nil
}
