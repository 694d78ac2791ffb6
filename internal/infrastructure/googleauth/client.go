// Package googleauth builds the authorized HTTP client shared by the
// Gmail and Sheets adapters.
package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	sheetsapi "google.golang.org/api/sheets/v4"
)

var scopes = []string{
	gmailapi.GmailModifyScope,
	gmailapi.GmailSendScope,
	sheetsapi.SpreadsheetsScope,
}

// NewClient reads OAuth2 installed-app credentials plus a previously
// granted refresh token from disk and returns an HTTP client that
// renews access tokens automatically. Token acquisition itself is an
// offline step; a missing token file is a startup error.
func NewClient(ctx context.Context, credentialsFile, tokenFile string) (*http.Client, error) {
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(raw, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}

	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth token: %w", err)
	}
	return cfg.Client(ctx, token), nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &token, nil
}
