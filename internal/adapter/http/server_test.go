package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/maplist-import/internal/adapter/http"
	"github.com/couchcryptid/maplist-import/internal/domain"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockParser struct {
	locations []domain.ParsedLocation
	err       error
	gotURL    string
}

func (m *mockParser) Parse(_ context.Context, url string) ([]domain.ParsedLocation, error) {
	m.gotURL = url
	return m.locations, m.err
}

type mockImporter struct {
	outcome      domain.ImportOutcome
	err          error
	collectionID string
	caller       domain.Caller
	items        []domain.ImportItem
}

func (m *mockImporter) Import(_ context.Context, collectionID string, caller domain.Caller, items []domain.ImportItem) (domain.ImportOutcome, error) {
	m.collectionID = collectionID
	m.caller = caller
	m.items = items
	return m.outcome, m.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(readyErr error, p *mockParser, im *mockImporter) *httpadapter.Server {
	if p == nil {
		p = &mockParser{}
	}
	if im == nil {
		im = &mockImporter{}
	}
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, p, im, testLogger())
}

func do(srv http.Handler, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	srv.ServeHTTP(rec, req)
	return rec
}

// --- health ---

func TestHealthzReturns200(t *testing.T) {
	rec := do(newTestServer(nil, nil, nil), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReflectsChecker(t *testing.T) {
	rec := do(newTestServer(nil, nil, nil), http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(newTestServer(fmt.Errorf("database unreachable"), nil, nil), http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(newTestServer(nil, nil, nil), http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// --- parse ---

func TestParse_Success(t *testing.T) {
	p := &mockParser{locations: []domain.ParsedLocation{{
		Name:       "Third Wave Coffee",
		Latitude:   12.97,
		Longitude:  77.59,
		Identifier: "13835058055282170149",
		SourceURL:  "https://www.google.com/maps/placelists/list/abc",
	}}}
	srv := newTestServer(nil, p, nil)

	rec := do(srv, http.MethodPost, "/api/lists/parse", `{"url":"https://maps.app.goo.gl/abc"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://maps.app.goo.gl/abc", p.gotURL)
	assert.JSONEq(t, `{"locations":[{
		"name":"Third Wave Coffee","latitude":12.97,"longitude":77.59,
		"identifier":"13835058055282170149",
		"source_url":"https://www.google.com/maps/placelists/list/abc"}]}`, rec.Body.String())
}

func TestParse_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid input", fmt.Errorf("%w: bad host", domain.ErrInvalidInput), http.StatusBadRequest, domain.MessageParseFailed},
		{"resolution failed", domain.ErrResolutionFailed, http.StatusUnprocessableEntity, domain.MessageParseFailed},
		{"fetch failed", domain.ErrFetchFailed, http.StatusUnprocessableEntity, domain.MessageParseFailed},
		{"no location data", domain.ErrNoLocationData, http.StatusUnprocessableEntity, domain.MessageNoLocations},
		{"no data array", domain.ErrNoDataArray, http.StatusUnprocessableEntity, domain.MessageNoLocations},
		{"malformed", domain.ErrMalformedData, http.StatusUnprocessableEntity, domain.MessageNoLocations},
		{"unexpected", context.DeadlineExceeded, http.StatusInternalServerError, domain.MessageParseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(nil, &mockParser{err: tt.err}, nil)

			rec := do(srv, http.MethodPost, "/api/lists/parse", `{"url":"x"}`, nil)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["error"])
		})
	}
}

func TestParse_BadBody(t *testing.T) {
	for _, body := range []string{``, `not json`, `{"link":"x"}`} {
		rec := do(newTestServer(nil, nil, nil), http.MethodPost, "/api/lists/parse", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestParse_EmptyListIsArray(t *testing.T) {
	rec := do(newTestServer(nil, &mockParser{}, nil), http.MethodPost, "/api/lists/parse", `{"url":"x"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"locations":[]}`, rec.Body.String())
}

// --- import ---

func TestImport_Success(t *testing.T) {
	im := &mockImporter{outcome: domain.ImportOutcome{
		Imported:          2,
		Skipped:           1,
		WithIdentifier:    1,
		WithoutIdentifier: 1,
		Failures:          []domain.ItemFailure{{Name: "Bad", Reason: "coordinates out of range"}},
	}}
	srv := newTestServer(nil, nil, im)
	body := `{"items":[
		{"name":"Cafe","latitude":12.97,"longitude":77.59,"identifier":"13835058055282170149"},
		{"name":"Park","latitude":12.5,"longitude":77.25},
		{"name":"Bad","latitude":95,"longitude":77.5}]}`

	rec := do(srv, http.MethodPost, "/api/collections/col-1/imports", body, http.Header{"X-User-Id": {"user-1"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "col-1", im.collectionID)
	assert.Equal(t, domain.Caller{ID: "user-1"}, im.caller)
	require.Len(t, im.items, 3)
	assert.Empty(t, im.items[1].Identifier)
	assert.JSONEq(t, `{"success":true,"outcome":{
		"imported":2,"skipped":1,"with_identifier":1,"without_identifier":1,
		"failures":[{"name":"Bad","reason":"coordinates out of range"}]}}`, rec.Body.String())
}

func TestImport_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthenticated", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"missing collection", fmt.Errorf("%w: col-9", domain.ErrCollectionNotFound), http.StatusNotFound},
		{"store down", fmt.Errorf("list existing locations: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(nil, nil, &mockImporter{err: tt.err})

			rec := do(srv, http.MethodPost, "/api/collections/col-9/imports", `{"items":[]}`, nil)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotContains(t, body, "outcome")
		})
	}
}

func TestImport_InterruptedReturnsPartialOutcome(t *testing.T) {
	for _, cause := range []error{context.Canceled, context.DeadlineExceeded} {
		t.Run(cause.Error(), func(t *testing.T) {
			im := &mockImporter{
				outcome: domain.ImportOutcome{Imported: 1, WithIdentifier: 1, Failures: []domain.ItemFailure{}},
				err:     cause,
			}
			srv := newTestServer(nil, nil, im)

			rec := do(srv, http.MethodPost, "/api/collections/col-1/imports", `{"items":[]}`, http.Header{"X-User-Id": {"user-1"}})

			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.JSONEq(t, `{"success":false,"error":"import interrupted","outcome":{
				"imported":1,"skipped":0,"with_identifier":1,"without_identifier":0,"failures":[]}}`, rec.Body.String())
		})
	}
}

func TestImport_MissingHeaderPassesAnonymousCaller(t *testing.T) {
	im := &mockImporter{}
	srv := newTestServer(nil, nil, im)

	do(srv, http.MethodPost, "/api/collections/col-1/imports", `{"items":[]}`, http.Header{"X-User-Id": {"   "}})

	assert.False(t, im.caller.Authenticated())
}

func TestImport_MethodNotAllowed(t *testing.T) {
	rec := do(newTestServer(nil, nil, nil), http.MethodGet, "/api/collections/col-1/imports", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
