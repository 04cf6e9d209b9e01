package accesspolicy_test

import (
	"testing"

	"github.com/thiraviyalingesh/company-chat/internal/app/policy/accesspolicy"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/authz"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"github.com/thiraviyalingesh/company-chat/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func access(id primitive.ObjectID, role string) authz.AccessContext {
	return authz.AccessContext{UserID: id, GlobalRole: role}
}

func TestRoleInProject_SuperAdminShortCircuits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := accesspolicy.NewResolver(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// No project, no membership records at all: superadmin still
	// resolves to an admin-equivalent role.
	role, err := resolver.RoleInProject(ctx, access(primitive.NewObjectID(), "superadmin"), primitive.NewObjectID())
	if err != nil {
		t.Fatalf("RoleInProject failed: %v", err)
	}
	if role != authz.RoleProjectAdmin {
		t.Errorf("role: got %q, want %q", role, authz.RoleProjectAdmin)
	}
}

func TestRoleInProject_ResolvesMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := accesspolicy.NewResolver(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	admin := fixtures.CreateMember(ctx, "Admin", "+15550002001")
	member := fixtures.CreateMember(ctx, "Member", "+15550002002")
	outsider := fixtures.CreateMember(ctx, "Outsider", "+15550002003")
	fixtures.CreateMembership(ctx, admin.ID, project.ID, models.ProjectRoleAdmin)
	fixtures.CreateMembership(ctx, member.ID, project.ID, models.ProjectRoleUser)

	tests := []struct {
		name   string
		userID primitive.ObjectID
		want   authz.Role
	}{
		{"project admin", admin.ID, authz.RoleProjectAdmin},
		{"regular member", member.ID, authz.RoleUser},
		{"no membership", outsider.ID, authz.RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := resolver.RoleInProject(ctx, access(tt.userID, "none"), project.ID)
			if err != nil {
				t.Fatalf("RoleInProject failed: %v", err)
			}
			if role != tt.want {
				t.Errorf("role: got %q, want %q", role, tt.want)
			}
		})
	}
}

func TestRoleInProject_InactiveMembershipIsNone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := accesspolicy.NewResolver(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	user := fixtures.CreateMember(ctx, "Former Member", "+15550002004")
	m := fixtures.CreateMembership(ctx, user.ID, project.ID, models.ProjectRoleAdmin)

	if _, err := db.Collection("memberships").UpdateOne(ctx,
		bson.M{"_id": m.ID}, bson.M{"$set": bson.M{"is_active": false}}); err != nil {
		t.Fatalf("deactivate membership failed: %v", err)
	}

	role, err := resolver.RoleInProject(ctx, access(user.ID, "none"), project.ID)
	if err != nil {
		t.Fatalf("RoleInProject failed: %v", err)
	}
	if role != authz.RoleNone {
		t.Errorf("role: got %q, want %q", role, authz.RoleNone)
	}
}

func TestRoleInProject_MalformedRoleFailsClosed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := accesspolicy.NewResolver(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	user := fixtures.CreateMember(ctx, "Broken Row", "+15550002005")
	m := fixtures.CreateMembership(ctx, user.ID, project.ID, models.ProjectRoleUser)

	// Corrupt the role value in place.
	if _, err := db.Collection("memberships").UpdateOne(ctx,
		bson.M{"_id": m.ID}, bson.M{"$set": bson.M{"role": "owner"}}); err != nil {
		t.Fatalf("corrupt membership failed: %v", err)
	}

	role, err := resolver.RoleInProject(ctx, access(user.ID, "none"), project.ID)
	if err != nil {
		t.Fatalf("malformed data must not raise, got: %v", err)
	}
	if role != authz.RoleNone {
		t.Errorf("role: got %q, want %q (fail closed)", role, authz.RoleNone)
	}
}

func TestCanManageProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := accesspolicy.NewResolver(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	admin := fixtures.CreateMember(ctx, "Admin", "+15550002006")
	member := fixtures.CreateMember(ctx, "Member", "+15550002007")
	fixtures.CreateMembership(ctx, admin.ID, project.ID, models.ProjectRoleAdmin)
	fixtures.CreateMembership(ctx, member.ID, project.ID, models.ProjectRoleUser)

	ok, err := resolver.CanManageProject(ctx, access(admin.ID, "none"), project.ID)
	if err != nil || !ok {
		t.Errorf("project admin: got (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = resolver.CanManageProject(ctx, access(member.ID, "none"), project.ID)
	if err != nil || ok {
		t.Errorf("regular member: got (%v, %v), want (false, nil)", ok, err)
	}
	ok, err = resolver.CanManageProject(ctx, access(primitive.NewObjectID(), "superadmin"), project.ID)
	if err != nil || !ok {
		t.Errorf("superadmin: got (%v, %v), want (true, nil)", ok, err)
	}
}
