package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userfolio/accounts-api/internal/service"
	"github.com/userfolio/accounts-api/internal/store"
)

const testJWTSecret = "test-jwt-secret"

func newAuthHandler(t *testing.T, adminEmails ...string) *AuthHandler {
	t.Helper()
	svc := service.NewUserService(store.NewFileStore(filepath.Join(t.TempDir(), "db.json")))
	return NewAuthHandler(svc, testJWTSecret, time.Hour, adminEmails)
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func register(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, h.Register, http.MethodPost, "/api/auth/register", body)
}

func TestRegister(t *testing.T) {
	h := newAuthHandler(t)

	rec := register(t, h, `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool            `json:"success"`
		User    json.RawMessage `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	var user map[string]any
	require.NoError(t, json.Unmarshal(resp.User, &user))
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, true, user["isActive"])
	assert.Equal(t, "$1,000.00", user["balance"])
	assert.NotEmpty(t, user["_id"])
	assert.NotEmpty(t, user["guid"])

	// the hash must never appear anywhere in a response
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestRegister_NameShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantFirst string
		wantLast  string
	}{
		{
			name:      "object name",
			body:      `{"email":"a@x.com","password":"s","name":{"first":"Ada","last":"Lovelace"}}`,
			wantFirst: "Ada",
			wantLast:  "Lovelace",
		},
		{
			name:      "string name",
			body:      `{"email":"a@x.com","password":"s","name":"Ada Lovelace"}`,
			wantFirst: "Ada",
			wantLast:  "Lovelace",
		},
		{
			name:      "malformed name falls back to defaults",
			body:      `{"email":"a@x.com","password":"s","name":42}`,
			wantFirst: "User",
			wantLast:  "Anonymous",
		},
		{
			name:      "absent name falls back to defaults",
			body:      `{"email":"a@x.com","password":"s"}`,
			wantFirst: "User",
			wantLast:  "Anonymous",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newAuthHandler(t)
			rec := register(t, h, tc.body)
			require.Equal(t, http.StatusCreated, rec.Code)

			var resp struct {
				User struct {
					Name struct {
						First string `json:"first"`
						Last  string `json:"last"`
					} `json:"name"`
				} `json:"user"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantFirst, resp.User.Name.First)
			assert.Equal(t, tc.wantLast, resp.User.Name.Last)
		})
	}
}

func TestRegister_MissingFields(t *testing.T) {
	h := newAuthHandler(t)

	for _, body := range []string{
		`{"password":"secret1"}`,
		`{"email":"a@x.com"}`,
		`{}`,
	} {
		rec := register(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
		assert.Contains(t, rec.Body.String(), "Email and password are required")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newAuthHandler(t)

	rec := register(t, h, `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = register(t, h, `{"email":"a@x.com","password":"other"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
}

func TestLogin(t *testing.T) {
	h := newAuthHandler(t)
	register(t, h, `{"email":"a@x.com","password":"secret1"}`)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/auth/login",
		`{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestLogin_UniformInvalidCredentials(t *testing.T) {
	h := newAuthHandler(t)
	register(t, h, `{"email":"a@x.com","password":"secret1"}`)

	// wrong password and unknown email produce identical responses
	wrongPassword := doJSON(t, h.Login, http.MethodPost, "/api/auth/login",
		`{"email":"a@x.com","password":"wrong"}`)
	unknownEmail := doJSON(t, h.Login, http.MethodPost, "/api/auth/login",
		`{"email":"nobody@x.com","password":"secret1"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Contains(t, wrongPassword.Body.String(), "Invalid credentials")
}

func TestLogin_MissingFields(t *testing.T) {
	h := newAuthHandler(t)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/auth/login", `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProfile(t *testing.T) {
	h := newAuthHandler(t)
	register(t, h, `{"email":"a@x.com","password":"secret1","company":"Acme"}`)

	rec := doJSON(t, h.GetProfile, http.MethodGet, "/api/auth/profile?email=a@x.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"company":"Acme"`)
	assert.NotContains(t, rec.Body.String(), "$2a$")

	rec = doJSON(t, h.GetProfile, http.MethodGet, "/api/auth/profile", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email parameter is required")

	rec = doJSON(t, h.GetProfile, http.MethodGet, "/api/auth/profile?email=nobody@x.com", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestUpdateProfile(t *testing.T) {
	h := newAuthHandler(t)
	register(t, h, `{"email":"a@x.com","password":"secret1"}`)

	rec := doJSON(t, h.UpdateProfile, http.MethodPut, "/api/auth/profile",
		`{"email":"a@x.com","updates":{"company":"Acme","name":{"first":"Ada"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"company":"Acme"`)
	// name replaced wholesale
	assert.Contains(t, rec.Body.String(), `"name":{"first":"Ada","last":""}`)

	for _, body := range []string{
		`{"updates":{"company":"Acme"}}`,
		`{"email":"a@x.com"}`,
	} {
		rec := doJSON(t, h.UpdateProfile, http.MethodPut, "/api/auth/profile", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
		assert.Contains(t, rec.Body.String(), "Email and updates are required")
	}

	rec = doJSON(t, h.UpdateProfile, http.MethodPut, "/api/auth/profile",
		`{"email":"nobody@x.com","updates":{}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProfile_EmptyPatchRefreshesUpdatedAt(t *testing.T) {
	h := newAuthHandler(t)
	register(t, h, `{"email":"a@x.com","password":"secret1"}`)

	updatedAt := func(rec *httptest.ResponseRecorder) time.Time {
		var resp struct {
			User struct {
				UpdatedAt time.Time `json:"updatedAt"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.User.UpdatedAt
	}

	body := `{"email":"a@x.com","updates":{}}`
	first := doJSON(t, h.UpdateProfile, http.MethodPut, "/api/auth/profile", body)
	require.Equal(t, http.StatusOK, first.Code)
	second := doJSON(t, h.UpdateProfile, http.MethodPut, "/api/auth/profile", body)
	require.Equal(t, http.StatusOK, second.Code)

	assert.True(t, updatedAt(second).After(updatedAt(first)),
		fmt.Sprintf("expected %s after %s", updatedAt(second), updatedAt(first)))
}
