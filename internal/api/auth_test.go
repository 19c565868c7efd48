package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmadesk/m/domain"
	"pharmadesk/m/internal/auth"
)

func TestRegisterLoginAndVerify(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "nadia",
		"password": "pa55word",
		"role":     "pharmacist",
		"fullName": "Nadia Rahman",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var registered registerResponse
	decodeBody(t, rec, &registered)
	assert.Equal(t, domain.RolePharmacist, registered.User.Role)
	assert.NotContains(t, rec.Body.String(), "pa55word")

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "nadia", "password": "pa55word"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login loginResponse
	decodeBody(t, rec, &login)
	require.NotEmpty(t, login.Token)

	claims, err := ts.tokens.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, "nadia", claims.Subject)
	assert.Equal(t, domain.RolePharmacist, claims.Role)
	assert.Equal(t, registered.User.ID, claims.UserID)

	rec = ts.do(t, http.MethodGet, "/api/protected", login.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"You are authorized!"}`, rec.Body.String())
}

func TestRegisterDefaultsAndRejections(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "plain", "password": "secret"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	stored, err := ts.store.UserByUsername(context.Background(), "plain")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, stored.Role)
	assert.NoError(t, auth.CheckPassword(stored.PasswordHash, "secret"))

	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "plain", "password": "other"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "boss", "password": "secret", "role": "Admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "odd", "password": "secret", "role": "Janitor"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "nopass"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "euro", "password": strings.Repeat("€", 30)})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, errorMessage(t, rec), "72 bytes")
}

func TestLoginFailures(t *testing.T) {
	ts := newTestServer(t)
	ts.user(t, "karim", "correct", domain.RoleManager)
	disabled := ts.user(t, "gone", "correct", domain.RolePharmacist)
	require.NoError(t, ts.store.SetUserActive(context.Background(), disabled.ID, false))

	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "karim", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", errorMessage(t, rec))

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "nobody", "password": "correct"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", errorMessage(t, rec))

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "gone", "password": "correct"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthorization(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(t, domain.RoleAdmin)
	manager := ts.token(t, domain.RoleManager)
	pharmacist := ts.token(t, domain.RolePharmacist)
	customer := ts.token(t, domain.RoleCustomer)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: 1,
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-Admin",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"no token", http.MethodGet, "/api/admin/overview", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/admin/overview", "abc.def.ghi", nil, http.StatusUnauthorized},
		{"expired token", http.MethodGet, "/api/admin/overview", expired, nil, http.StatusUnauthorized},
		{"customer reads inventory", http.MethodGet, "/api/admin/inventory", customer, nil, http.StatusForbidden},
		{"pharmacist reads inventory", http.MethodGet, "/api/admin/inventory", pharmacist, nil, http.StatusOK},
		{"pharmacist adds category", http.MethodPost, "/api/admin/category", pharmacist, map[string]string{"name": "Vitamins"}, http.StatusForbidden},
		{"manager adds category", http.MethodPost, "/api/admin/category", manager, map[string]string{"name": "Vitamins"}, http.StatusCreated},
		{"manager lists all users", http.MethodGet, "/api/admin/users/all", manager, nil, http.StatusForbidden},
		{"admin lists all users", http.MethodGet, "/api/admin/users/all", admin, nil, http.StatusOK},
		{"manager reads manager data", http.MethodGet, "/api/protected/manager-data", manager, nil, http.StatusOK},
		{"manager reads admin data", http.MethodGet, "/api/protected/admin-data", manager, nil, http.StatusForbidden},
		{"customer pings", http.MethodGet, "/api/admin/ping", customer, nil, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(t, tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}

	rec := ts.do(t, http.MethodGet, "/api/admin/overview", expired, nil)
	assert.Equal(t, "token has expired", errorMessage(t, rec))
}

func TestUserManagement(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(t, domain.RoleAdmin)
	target := ts.user(t, "zara", "secret", domain.RoleUser)

	rec := ts.do(t, http.MethodPut, "/api/admin/users/"+itoa(target.ID)+"/role", admin, map[string]string{"role": "Customer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var customers []domain.CustomerSummary
	decodeBody(t, rec, &customers)
	assert.Equal(t, []domain.CustomerSummary{{ID: target.ID, Name: "zara"}}, customers)

	rec = ts.do(t, http.MethodPut, "/api/admin/users/"+itoa(target.ID)+"/active", admin, map[string]bool{"active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/admin/users", admin, nil)
	decodeBody(t, rec, &customers)
	assert.Empty(t, customers)

	rec = ts.do(t, http.MethodPut, "/api/admin/users/999/role", admin, map[string]string{"role": "Manager"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/admin/users/"+itoa(target.ID)+"/role", admin, map[string]string{"role": "Wizard"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/admin/users/"+itoa(target.ID)+"/active", admin, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
