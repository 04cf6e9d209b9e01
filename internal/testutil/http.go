package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need chi.URLParam values. Calls chain:
// an existing route context on the request is extended, not replaced.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// SuperAdminUser returns an AuthUser with the superadmin global role.
func SuperAdminUser() *auth.AuthUser {
	return &auth.AuthUser{
		ID:         primitive.NewObjectID(),
		Name:       "Test SuperAdmin",
		Phone:      "+15550000001",
		GlobalRole: "superadmin",
		IsApproved: true,
	}
}

// RegularUser returns an approved AuthUser with no global role.
func RegularUser() *auth.AuthUser {
	return &auth.AuthUser{
		ID:         primitive.NewObjectID(),
		Name:       "Test User",
		Phone:      "+15550000002",
		GlobalRole: "none",
		IsApproved: true,
	}
}

// AsUser returns an AuthUser mirroring an existing user document's ID.
func AsUser(id primitive.ObjectID, name, globalRole string) *auth.AuthUser {
	return &auth.AuthUser{
		ID:         id,
		Name:       name,
		GlobalRole: globalRole,
		IsApproved: true,
	}
}

// NewJSONRequest creates a request with a JSON-encoded body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates a JSON request with a user in context.
func NewAuthenticatedRequest(t *testing.T, method, target string, body any, user *auth.AuthUser) *http.Request {
	t.Helper()
	return auth.WithTestUser(NewJSONRequest(t, method, target, body), user)
}

// DecodeJSON decodes a recorded JSON response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}
