package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/model"
)

// ============================================================================
// Request Building
// ============================================================================

// RequestBuilder assembles a test request fluently
type RequestBuilder struct {
	t       *testing.T
	method  string
	path    string
	payload any
	headers map[string]string
}

// NewRequest starts building a request for the given method and path
func NewRequest(t *testing.T, method, path string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{t: t, method: method, path: path, headers: map[string]string{}}
}

// WithBody sets a payload that Build JSON-encodes
func (b *RequestBuilder) WithBody(payload any) *RequestBuilder {
	b.payload = payload
	return b
}

// WithHeader sets a request header
func (b *RequestBuilder) WithHeader(name, value string) *RequestBuilder {
	b.headers[name] = value
	return b
}

// WithIdempotencyKey sets the Idempotency-Key header
func (b *RequestBuilder) WithIdempotencyKey(key string) *RequestBuilder {
	return b.WithHeader("Idempotency-Key", key)
}

// Build produces the request
func (b *RequestBuilder) Build() *http.Request {
	b.t.Helper()

	var body io.Reader
	if b.payload != nil {
		raw, err := json.Marshal(b.payload)
		if err != nil {
			b.t.Fatalf("helpers: cannot encode request payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(b.method, b.path, body)
	if b.payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range b.headers {
		req.Header.Set(name, value)
	}
	return req
}

// ============================================================================
// Response Assertions
// ============================================================================

// AssertStatus fails the test when the recorded status differs from want
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Errorf("expected status %d, got %d (body: %s)", want, rr.Code, rr.Body.String())
	}
}

// AssertProblemDetails checks status plus the problem+json error code.
// Pass code 0 to skip the code check.
func AssertProblemDetails(t *testing.T, rr *httptest.ResponseRecorder, status int, code model.ErrorCode) {
	t.Helper()

	AssertStatus(t, rr, status)

	var problem model.ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("response is not problem+json: %v (body: %s)", err, rr.Body.String())
	}
	if problem.Status != status {
		t.Errorf("expected problem.status %d, got %d", status, problem.Status)
	}
	if code != 0 && problem.Code != code {
		t.Errorf("expected problem.code %d, got %d", code, problem.Code)
	}
}

// GetDataFromResponse unwraps the data envelope of a success response
func GetDataFromResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("cannot decode response envelope: %v (body: %s)", err, rr.Body.String())
	}
	return envelope.Data
}

// ============================================================================
// Store Assertions
// ============================================================================

// splitRecordID strips the table prefix from a "table:key" record id
func splitRecordID(id string) string {
	if _, key, found := strings.Cut(id, ":"); found {
		return key
	}
	return id
}

func lookupRecord(t *testing.T, db database.Database, table, id string) []interface{} {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := db.Query(ctx, "SELECT * FROM type::record($table, $id)", map[string]interface{}{
		"table": table,
		"id":    splitRecordID(id),
	})
	if err != nil {
		t.Fatalf("record lookup failed for %s:%s: %v", table, splitRecordID(id), err)
	}
	return results
}

// AssertRecordExists fails when table:id is absent from the store
func AssertRecordExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()
	if !hasRows(lookupRecord(t, db, table, id)) {
		t.Errorf("expected %s:%s to exist", table, splitRecordID(id))
	}
}

// AssertRecordNotExists fails when table:id is present in the store
func AssertRecordNotExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()
	if hasRows(lookupRecord(t, db, table, id)) {
		t.Errorf("expected %s:%s to be absent", table, splitRecordID(id))
	}
}

// hasRows inspects a raw SurrealDB response for at least one row
func hasRows(results []interface{}) bool {
	if len(results) == 0 {
		return false
	}
	frame, ok := results[0].(map[string]interface{})
	if !ok {
		return false
	}
	switch rows := frame["result"].(type) {
	case nil:
		return false
	case []interface{}:
		return len(rows) > 0
	default:
		return true
	}
}

// ============================================================================
// Misc
// ============================================================================

// Ptr returns a pointer to v, for optional fixture fields
func Ptr[T any](v T) *T {
	return &v
}

// MustParseTime parses value with layout or fails the test
func MustParseTime(t *testing.T, layout, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(layout, value)
	if err != nil {
		t.Fatalf("unparsable time %q: %v", value, err)
	}
	return parsed
}
