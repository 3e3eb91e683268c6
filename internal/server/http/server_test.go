package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestHTTPServer(t *testing.T) *HTTPServer {
	t.Helper()
	repos := repomanager.NewMemoryRepositoryManager()
	tokens, err := auth.NewTokenService([]byte("test-secret"), 15*time.Minute)
	require.NoError(t, err)
	guard := auth.NewGuard(tokens, repos.Identities())
	creds, err := services.NewCredentialService(repos, auth.NewArgon2idHasherWithParams(1, 64, 1), tokens, guard, logging.Nop())
	require.NoError(t, err)

	s, err := NewHTTPServer("", logging.Nop(), creds, guard)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e.Detail
}

func TestHealth(t *testing.T) {
	h := newTestHTTPServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthFlow_EndToEnd(t *testing.T) {
	h := newTestHTTPServer(t).Handler()

	rec := do(t, h, http.MethodPost, "/auth/register",
		`{"email":"a@x.com","username":"alice","password":"longenough1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	var reg api.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, "Account created successfully", reg.Message)
	assert.NotEmpty(t, reg.User.ID)
	assert.False(t, reg.User.CreatedAt.IsZero())

	rec = do(t, h, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"longenough1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tok api.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.Equal(t, "bearer", tok.TokenType)
	require.Len(t, strings.Split(tok.AccessToken, "."), 3)

	rec = do(t, h, http.MethodGet, "/auth/me", "", "Bearer "+tok.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me api.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, reg.User.ID, me.ID)
	assert.Equal(t, "alice", me.Username)

	i := strings.LastIndex(tok.AccessToken, ".") + 1
	b := []byte(tok.AccessToken)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	rec = do(t, h, http.MethodGet, "/auth/me", "", "Bearer "+string(b))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Could not validate credentials", detail(t, rec))

	rec = do(t, h, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authenticated", detail(t, rec))
}

func TestRegister_Errors(t *testing.T) {
	h := newTestHTTPServer(t).Handler()

	rec := do(t, h, http.MethodPost, "/auth/register", `{"email":"a@x.com","username":"alice","password":"longenough1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{"duplicate email", `{"email":"a@x.com","username":"bob","password":"longenough1"}`, http.StatusConflict, "An account with this email already exists"},
		{"duplicate username", `{"email":"b@x.com","username":"alice","password":"longenough1"}`, http.StatusConflict, "This username is already taken"},
		{"both taken", `{"email":"a@x.com","username":"alice","password":"longenough1"}`, http.StatusConflict, "An account with this email already exists"},
		{"short password", `{"email":"c@x.com","username":"carol","password":"short"}`, http.StatusUnprocessableEntity, "password: should have at least 8 characters"},
		{"bad json", `{"email":`, http.StatusUnprocessableEntity, detailInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/auth/register", tt.body, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantDetail, detail(t, rec))
		})
	}
}

func TestLogin_RejectionsIdentical(t *testing.T) {
	h := newTestHTTPServer(t).Handler()

	rec := do(t, h, http.MethodPost, "/auth/register", `{"email":"a@x.com","username":"alice","password":"longenough1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	wrong := do(t, h, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"not-it-at-all"}`, "")
	unknown := do(t, h, http.MethodPost, "/auth/login", `{"email":"nobody@x.com","password":"longenough1"}`, "")

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, "Incorrect email or password", detail(t, wrong))

	empty := do(t, h, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":""}`, "")
	assert.Equal(t, wrong.Code, empty.Code)
	assert.Equal(t, wrong.Body.String(), empty.Body.String())
}

type failingGuard struct{ err error }

func (g failingGuard) Authenticate(context.Context, string) (*models.Identity, error) {
	return nil, g.err
}

func TestMe_InternalError(t *testing.T) {
	s, err := NewHTTPServer("", logging.Nop(), nil, failingGuard{err: assert.AnError})
	require.NoError(t, err)

	rec := do(t, s.Handler(), http.MethodGet, "/auth/me", "", "Bearer abc")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", detail(t, rec))
}

func TestServe_ListenerFailureStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestHTTPServer(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, lis.Close())

	done := make(chan error, 1)
	go func() { done <- s.Serve(context.Background(), lis) }()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(2 * shutdownTimeout):
		t.Fatal("Serve did not return after listener failure")
	}
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	s := newTestHTTPServer(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + lis.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * shutdownTimeout):
		t.Fatal("server did not stop after context cancel")
	}
}
