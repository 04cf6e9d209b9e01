package grouppolicy_test

import (
	"testing"

	"github.com/thiraviyalingesh/company-chat/internal/app/policy/accesspolicy"
	"github.com/thiraviyalingesh/company-chat/internal/app/policy/grouppolicy"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/authz"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"github.com/thiraviyalingesh/company-chat/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func access(id primitive.ObjectID, role string) authz.AccessContext {
	return authz.AccessContext{UserID: id, GlobalRole: role}
}

func TestCanPostInGroup_PlainGroupMembersMayPost(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := accesspolicy.NewResolver(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	member := fixtures.CreateMember(ctx, "Member", "+15550003001")
	outsider := fixtures.CreateMember(ctx, "Outsider", "+15550003002")
	fixtures.CreateMembership(ctx, member.ID, project.ID, models.ProjectRoleUser)
	group := fixtures.CreateGroup(ctx, "design", project.ID, member.ID)

	ok, err := grouppolicy.CanPostInGroup(ctx, resolver, access(member.ID, "none"), &group)
	if err != nil || !ok {
		t.Errorf("group member: got (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = grouppolicy.CanPostInGroup(ctx, resolver, access(outsider.ID, "none"), &group)
	if err != nil || ok {
		t.Errorf("non-member: got (%v, %v), want (false, nil)", ok, err)
	}
}

func TestCanPostInGroup_ChannelRestrictsToAdmins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := accesspolicy.NewResolver(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	admin := fixtures.CreateMember(ctx, "Admin", "+15550003003")
	member := fixtures.CreateMember(ctx, "Member", "+15550003004")
	super := fixtures.CreateSuperAdmin(ctx, "Root", "+15550003005")
	fixtures.CreateMembership(ctx, admin.ID, project.ID, models.ProjectRoleAdmin)
	fixtures.CreateMembership(ctx, member.ID, project.ID, models.ProjectRoleUser)

	// Everyone is in the channel's member list; posting still requires
	// an admin role. Membership in the list only grants reading.
	channel := fixtures.CreateChannel(ctx, "announcements", project.ID, admin.ID, member.ID)

	tests := []struct {
		name   string
		access authz.AccessContext
		want   bool
	}{
		{"project admin", access(admin.ID, "none"), true},
		{"regular member", access(member.ID, "none"), false},
		{"superadmin", access(super.ID, "superadmin"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := grouppolicy.CanPostInGroup(ctx, resolver, tt.access, &channel)
			if err != nil {
				t.Fatalf("CanPostInGroup failed: %v", err)
			}
			if ok != tt.want {
				t.Errorf("got %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestCanPostInGroup_NilGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := accesspolicy.NewResolver(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ok, err := grouppolicy.CanPostInGroup(ctx, resolver, access(primitive.NewObjectID(), "superadmin"), nil)
	if err != nil || ok {
		t.Errorf("nil group: got (%v, %v), want (false, nil)", ok, err)
	}
}

func TestCanReadGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := accesspolicy.NewResolver(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	admin := fixtures.CreateMember(ctx, "Admin", "+15550003006")
	member := fixtures.CreateMember(ctx, "Member", "+15550003007")
	outsider := fixtures.CreateMember(ctx, "Outsider", "+15550003008")
	fixtures.CreateMembership(ctx, admin.ID, project.ID, models.ProjectRoleAdmin)
	fixtures.CreateMembership(ctx, member.ID, project.ID, models.ProjectRoleUser)
	fixtures.CreateMembership(ctx, outsider.ID, project.ID, models.ProjectRoleUser)

	// Only member is in the group; admin can read anyway, outsider
	// (project member but not in the group) cannot.
	group := fixtures.CreateGroup(ctx, "design", project.ID, member.ID)

	ok, err := grouppolicy.CanReadGroup(ctx, resolver, access(member.ID, "none"), &group)
	if err != nil || !ok {
		t.Errorf("group member: got (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = grouppolicy.CanReadGroup(ctx, resolver, access(admin.ID, "none"), &group)
	if err != nil || !ok {
		t.Errorf("project admin: got (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = grouppolicy.CanReadGroup(ctx, resolver, access(outsider.ID, "none"), &group)
	if err != nil || ok {
		t.Errorf("non-member: got (%v, %v), want (false, nil)", ok, err)
	}
}

func TestCanManageGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	resolver := accesspolicy.NewResolver(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	admin := fixtures.CreateMember(ctx, "Admin", "+15550003009")
	member := fixtures.CreateMember(ctx, "Member", "+15550003010")
	fixtures.CreateMembership(ctx, admin.ID, project.ID, models.ProjectRoleAdmin)
	fixtures.CreateMembership(ctx, member.ID, project.ID, models.ProjectRoleUser)
	group := fixtures.CreateGroup(ctx, "design", project.ID, member.ID)

	ok, err := grouppolicy.CanManageGroup(ctx, resolver, access(admin.ID, "none"), &group)
	if err != nil || !ok {
		t.Errorf("project admin: got (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = grouppolicy.CanManageGroup(ctx, resolver, access(member.ID, "none"), &group)
	if err != nil || ok {
		t.Errorf("regular member: got (%v, %v), want (false, nil)", ok, err)
	}
}
