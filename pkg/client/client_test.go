package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, role string) string {
	t.Helper()
	claims := TokenInfo{
		UserID:   7,
		Email:    "anna@example.com",
		Role:     role,
		Username: "anna",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return token
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewDefaults(t *testing.T) {
	c := New()
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.Empty(t, c.Tokens().Token())

	c = New(WithBaseURL("http://api.example.com/"), WithTimeout(time.Second))
	assert.Equal(t, "http://api.example.com", c.baseURL)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}

func TestDoAttachesTokenAndClearsOnRejection(t *testing.T) {
	var seen atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if r.URL.Path == "/denied" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "nope"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))
	c.Tokens().SetToken("abc")

	var out map[string]string
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/fine", nil, &out))
	assert.Equal(t, "yes", out["ok"])
	assert.Equal(t, "Bearer abc", seen.Load())
	assert.Equal(t, "abc", c.Tokens().Token())

	err := c.Do(context.Background(), http.MethodGet, "/denied", nil, nil)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.Empty(t, c.Tokens().Token())

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/fine", nil, nil))
	assert.Equal(t, "", seen.Load())
}

func TestTokenInfo(t *testing.T) {
	c := New()
	assert.Nil(t, c.TokenInfo())
	assert.False(t, c.IsClientAuthenticated())

	c.Tokens().SetToken("garbage")
	assert.Nil(t, c.TokenInfo())
	assert.False(t, c.IsWorkerAuthenticated())

	c.Tokens().SetToken(signedToken(t, RoleWorker))
	info := c.TokenInfo()
	require.NotNil(t, info)
	assert.Equal(t, int64(7), info.UserID)
	assert.Equal(t, "anna", info.Username)
	assert.True(t, c.IsWorkerAuthenticated())
	assert.False(t, c.IsClientAuthenticated())
}

func TestCheckClientAccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/v1/client", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome, Client!"})
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))

	result := c.CheckClientAccess(context.Background())
	assert.Equal(t, http.StatusForbidden, result.Status)
	assert.Equal(t, "Not authenticated as client", result.Data["message"])
	assert.Equal(t, int32(0), calls.Load())

	c.Tokens().SetToken(signedToken(t, RoleClient))
	result = c.CheckClientAccess(context.Background())
	assert.True(t, result.Allowed())
	assert.Equal(t, "Welcome, Client!", result.Data["message"])
	assert.Equal(t, int32(1), calls.Load())
}

func TestCheckWorkerAccessRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Insufficient permissions"})
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))
	c.Tokens().SetToken(signedToken(t, RoleWorker))

	result := c.CheckWorkerAccess(context.Background())
	assert.Equal(t, http.StatusForbidden, result.Status)
	assert.Equal(t, "Insufficient permissions", result.Data["message"])
	assert.Empty(t, c.Tokens().Token())
}

func TestCheckWorkerAccessServerDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := New(WithBaseURL(url))
	c.Tokens().SetToken(signedToken(t, RoleWorker))

	result := c.CheckWorkerAccess(context.Background())
	assert.Equal(t, http.StatusInternalServerError, result.Status)
	assert.Equal(t, "Server error", result.Data["message"])
}

func TestStoreChecks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/isStoreOwner":
			writeJSON(w, http.StatusOK, map[string]interface{}{"isStoreOwner": true, "storeId": 3, "storeName": "Barber & Blade"})
		case "/api/v1/is-connected-to-store":
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
		}
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))

	owner := c.CheckStoreOwner(context.Background())
	assert.True(t, owner.IsStoreOwner)
	require.NotNil(t, owner.StoreID)
	assert.Equal(t, int64(3), *owner.StoreID)
	assert.Equal(t, "Barber & Blade", owner.StoreName)

	conn := c.CheckStoreConnection(context.Background())
	assert.Equal(t, StoreConnection{}, conn)
}

func TestLoginStoresToken(t *testing.T) {
	token := signedToken(t, RoleClient)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "password123" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"token":      token,
				"expires_at": time.Now().Add(time.Hour).Unix(),
				"user":       map[string]interface{}{"id": 7, "username": "anna", "role": "client"},
			},
		})
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))

	_, err := c.Login(context.Background(), "anna@example.com", "wrong")
	require.Error(t, err)
	assert.Empty(t, c.Tokens().Token())

	session, err := c.Login(context.Background(), "anna@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), session.User.ID)
	assert.Equal(t, token, c.Tokens().Token())
	assert.True(t, c.IsClientAuthenticated())
}
