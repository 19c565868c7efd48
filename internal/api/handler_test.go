package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmadesk/m/domain"
	"pharmadesk/m/internal/auth"
	"pharmadesk/m/internal/database"
	"pharmadesk/m/internal/metrics"
	"pharmadesk/m/internal/migrations"
	"pharmadesk/m/internal/store"
)

const (
	testSecret   = "test-secret"
	testIssuer   = "pharmadesk"
	testAudience = "pharmadesk-dashboard"
)

type testServer struct {
	handler http.Handler
	store   *store.Store
	tokens  *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Connect("sqlite", filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Run(db))

	st := store.New(db, nil)
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: testSecret, TTL: time.Hour, Issuer: testIssuer, Audience: testAudience})
	require.NoError(t, err)

	h := New(st, tokens, nil, metrics.New("test"))
	return &testServer{handler: h.Router("/api", []string{"*"}), store: st, tokens: tokens}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// user inserts an account directly, bypassing the self-registration rules.
func (ts *testServer) user(t *testing.T, username, password string, role domain.Role) domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := domain.User{Username: username, FullName: username, PasswordHash: hash, Role: role, IsActive: true}
	require.NoError(t, ts.store.CreateUser(context.Background(), &u))
	return u
}

func (ts *testServer) token(t *testing.T, role domain.Role) string {
	t.Helper()
	u := ts.user(t, "user-"+string(role), "password", role)
	tok, err := ts.tokens.Issue(u)
	require.NoError(t, err)
	return tok
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, rec, &body)
	return body["error"]
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"a","password":"b","remember":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "unknown field")
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", day)

	day, err = parseDay("2026-03-04T23:30:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-05", day)

	_, err = parseDay("04/03/2026")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseOrderDate(t *testing.T) {
	got, err := parseOrderDate("2026-03-04T10:15:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04 08:15:00", got)

	got, err = parseOrderDate("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseOrderDate("yesterday")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
