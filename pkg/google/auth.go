package google

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2/google"
)

// SpreadsheetsScope grants read and write access to spreadsheets.
const SpreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"

// ServiceAccountHTTPClient returns an http.Client that signs requests with
// tokens minted from a service-account key. Tokens are refreshed before they
// expire. ctx governs token requests and must outlive the client.
func ServiceAccountHTTPClient(ctx context.Context, credentialsJSON []byte, timeout time.Duration) (*http.Client, error) {
	conf, err := google.JWTConfigFromJSON(credentialsJSON, SpreadsheetsScope)
	if err != nil {
		return nil, eris.Wrap(err, "google: parse service account credentials")
	}
	hc := conf.Client(ctx)
	hc.Timeout = timeout
	return hc, nil
}

// ServiceAccountHTTPClientFromFile reads the key file at path and calls
// ServiceAccountHTTPClient.
func ServiceAccountHTTPClientFromFile(ctx context.Context, path string, timeout time.Duration) (*http.Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "google: read credentials file %s", path)
	}
	return ServiceAccountHTTPClient(ctx, data, timeout)
}
