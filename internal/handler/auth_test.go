package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/user-directory/internal/config"
	"github.com/iliyamo/user-directory/internal/handler"
	"github.com/iliyamo/user-directory/internal/model"
	"github.com/iliyamo/user-directory/internal/query"
	"github.com/iliyamo/user-directory/internal/repository"
	"github.com/iliyamo/user-directory/internal/router"
	"github.com/iliyamo/user-directory/internal/service"
	"github.com/iliyamo/user-directory/internal/token"
)

// memStore is a minimal in-memory AccountStore for exercising the HTTP
// surface without a database.
type memStore struct {
	mu       sync.Mutex
	seq      uint64
	accounts map[uint64]model.Account
}

func newMemStore() *memStore { return &memStore{accounts: map[uint64]model.Account{}} }

func (m *memStore) Create(_ context.Context, name, email, passwordHash, role string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.DeletedAt == nil && a.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	m.seq++
	now := time.Now().UTC()
	m.accounts[m.seq] = model.Account{ID: m.seq, Name: name, Email: email,
		PasswordHash: passwordHash, Role: role, CreatedAt: now, UpdatedAt: now}
	return m.seq, nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.DeletedAt == nil && a.Email == email {
			return a, nil
		}
	}
	return model.Account{}, repository.ErrNotFound
}

func (m *memStore) GetByID(_ context.Context, id uint64) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.DeletedAt != nil {
		return model.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (m *memStore) UpdateRefreshHash(_ context.Context, id uint64, hash *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.DeletedAt != nil {
		return repository.ErrNotFound
	}
	if hash == nil {
		a.RefreshTokenHash = nil
	} else {
		h := *hash
		a.RefreshTokenHash = &h
	}
	m.accounts[id] = a
	return nil
}

func (m *memStore) SoftDelete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	a.DeletedAt = &now
	m.accounts[id] = a
	return nil
}

func (m *memStore) List(_ context.Context, p query.Params) ([]model.Account, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		if a.DeletedAt == nil {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

// setRole flips an account's role directly; registration only ever creates
// plain users.
func (m *memStore) setRole(id uint64, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.accounts[id]
	a.Role = role
	m.accounts[id] = a
}

func newTestServer(t *testing.T) (*echo.Echo, *memStore) {
	t.Helper()
	store := newMemStore()
	tm := token.NewManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	authSvc := service.NewAuthService(store, tm, bcrypt.MinCost, nil)
	acctSvc := service.NewAccountService(store, nil, time.Minute)

	e := echo.New()
	cfg := config.Config{} // zero rate limit -> limiter disabled
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), tm, nil, cfg)
	router.RegisterAccounts(e, handler.NewAccountHandler(acctSvc), tm)
	return e, store
}

func doJSON(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthFlowOverHTTP(t *testing.T) {
	e, _ := newTestServer(t)

	// Register.
	rec := doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"name":"Bob","email":"bob@example.com","password":"hunter22"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	// Duplicate email conflicts.
	rec = doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"name":"Bob","email":"bob@example.com","password":"hunter22"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Login.
	rec = doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"bob@example.com","password":"hunter22"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		User    service.AccountView `json:"user"`
		Access  service.IssuedToken `json:"access"`
		Refresh service.IssuedToken `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "bob@example.com", login.User.Email)

	// Profile with the access token.
	rec = doJSON(e, http.MethodGet, "/v1/users/me", "", login.Access.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bob@example.com")

	// Refresh rotates; the consumed token stops working.
	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+login.Refresh.Token+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.NotEqual(t, login.Refresh.Token, pair.Refresh.Token)

	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+login.Refresh.Token+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logout kills the live refresh token.
	rec = doJSON(e, http.MethodPost, "/v1/auth/logout", "", pair.Access.Token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+pair.Refresh.Token+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginFailuresAreIdentical(t *testing.T) {
	e, _ := newTestServer(t)

	doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"name":"Bob","email":"bob@example.com","password":"hunter22"}`, "")

	unknown := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"nobody@example.com","password":"hunter22"}`, "")
	wrong := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"bob@example.com","password":"wrong"}`, "")

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestDirectoryRequiresAdmin(t *testing.T) {
	e, store := newTestServer(t)

	doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"name":"Bob","email":"bob@example.com","password":"hunter22"}`, "")

	login := func() string {
		rec := doJSON(e, http.MethodPost, "/v1/auth/login",
			`{"email":"bob@example.com","password":"hunter22"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Access service.IssuedToken `json:"access"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Access.Token
	}

	// No token at all.
	rec := doJSON(e, http.MethodGet, "/v1/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Plain user is forbidden.
	rec = doJSON(e, http.MethodGet, "/v1/users", "", login())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Promote and re-login so the role claim updates.
	store.setRole(1, model.RoleAdmin)
	admin := login()

	rec = doJSON(e, http.MethodGet, "/v1/users", "", admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = doJSON(e, http.MethodDelete, "/v1/users/1", "", admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(e, http.MethodDelete, "/v1/users/1", "", admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
