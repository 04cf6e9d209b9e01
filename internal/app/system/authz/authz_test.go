package authz

import (
	"net/http/httptest"
	"testing"

	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAccessContext_IsSuperAdmin(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"superadmin", true},
		{"none", false},
		{"", false},
		{"admin", false},
		{"project_admin", false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			a := AccessContext{GlobalRole: tt.role}
			if got := a.IsSuperAdmin(); got != tt.want {
				t.Errorf("IsSuperAdmin() with role %q = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestUserCtx_NoUser(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	a, ok := UserCtx(r)
	if ok {
		t.Fatal("expected ok=false without a user")
	}
	if a.IsSuperAdmin() {
		t.Error("zero context must carry no privileges")
	}
}

func TestUserCtx_NormalizesRoleCase(t *testing.T) {
	id := primitive.NewObjectID()
	r := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.AuthUser{
		ID:         id,
		Name:       "Admin",
		GlobalRole: "SuperAdmin",
	})

	a, ok := UserCtx(r)
	if !ok {
		t.Fatal("expected a user in context")
	}
	if a.UserID != id {
		t.Errorf("UserID: got %s, want %s", a.UserID.Hex(), id.Hex())
	}
	if !a.IsSuperAdmin() {
		t.Error("role comparison should be case-insensitive at the boundary")
	}
}

func TestIsSuperAdmin(t *testing.T) {
	r := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.AuthUser{
		ID:         primitive.NewObjectID(),
		GlobalRole: "none",
	})
	if IsSuperAdmin(r) {
		t.Error("regular user reported as superadmin")
	}
	if IsSuperAdmin(httptest.NewRequest("GET", "/", nil)) {
		t.Error("anonymous request reported as superadmin")
	}
}
