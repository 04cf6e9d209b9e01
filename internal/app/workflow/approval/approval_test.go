package approval_test

import (
	"errors"
	"testing"

	invitations "github.com/thiraviyalingesh/company-chat/internal/app/store/invitations"
	memberships "github.com/thiraviyalingesh/company-chat/internal/app/store/memberships"
	users "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/indexes"
	"github.com/thiraviyalingesh/company-chat/internal/app/workflow/approval"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"github.com/thiraviyalingesh/company-chat/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*approval.Engine, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return approval.New(db, nil, zap.NewNop()), testutil.NewFixtures(t, db), db
}

func TestApprove_ProjectSignup(t *testing.T) {
	engine, fixtures, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateSuperAdmin(ctx, "Root", "+15550004001")
	project := fixtures.CreateProject(ctx, "Test Project")
	fixtures.CreateGeneralChannel(ctx, project.ID)
	pending := fixtures.CreatePendingUser(ctx, "New Hire", "+15550004002")
	fixtures.CreatePendingSignup(ctx, pending.ID, &project.ID)

	res, err := engine.Approve(ctx, admin.ID, pending.ID, "")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if res.TransitionID == "" {
		t.Error("expected a transition id")
	}
	if res.AlreadyApproved {
		t.Error("first approve must not report AlreadyApproved")
	}

	user, err := users.New(db).GetByID(ctx, pending.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !user.IsApproved {
		t.Error("user is not approved")
	}
	if user.ApprovedAt == nil {
		t.Error("approved_at is not set")
	}

	role, err := memberships.New(db).ActiveRole(ctx, pending.ID, project.ID)
	if err != nil {
		t.Fatalf("ActiveRole failed: %v", err)
	}
	if role != models.ProjectRoleUser {
		t.Errorf("membership role: got %q, want %q", role, models.ProjectRoleUser)
	}

	var general models.Group
	if err := db.Collection("groups").FindOne(ctx, bson.M{
		"project_id": project.ID, "is_general_channel": true,
	}).Decode(&general); err != nil {
		t.Fatalf("general channel lookup failed: %v", err)
	}
	if !general.HasMember(pending.ID) {
		t.Error("user was not added to the general channel")
	}

	if _, _, err := invitations.New(db).FindEntry(ctx, pending.ID); !errors.Is(err, invitations.ErrEntryNotFound) {
		t.Errorf("pending entry should be gone, got err=%v", err)
	}
}

func TestApprove_CompanyWideSignup(t *testing.T) {
	engine, fixtures, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateSuperAdmin(ctx, "Root", "+15550004003")
	pending := fixtures.CreatePendingUser(ctx, "New Hire", "+15550004004")
	fixtures.CreatePendingSignup(ctx, pending.ID, nil)

	res, err := engine.Approve(ctx, admin.ID, pending.ID, "")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if res.ProjectID != nil {
		t.Errorf("company-wide signup must have no project, got %v", res.ProjectID)
	}

	// No membership is created for a company-wide signup.
	count, err := db.Collection("memberships").CountDocuments(ctx, bson.M{"user_id": pending.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("memberships: got %d, want 0", count)
	}
}

func TestApprove_IsIdempotent(t *testing.T) {
	engine, fixtures, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateSuperAdmin(ctx, "Root", "+15550004005")
	project := fixtures.CreateProject(ctx, "Test Project")
	fixtures.CreateGeneralChannel(ctx, project.ID)
	pending := fixtures.CreatePendingUser(ctx, "New Hire", "+15550004006")
	fixtures.CreatePendingSignup(ctx, pending.ID, &project.ID)

	first, err := engine.Approve(ctx, admin.ID, pending.ID, "")
	if err != nil {
		t.Fatalf("first Approve failed: %v", err)
	}

	second, err := engine.Approve(ctx, admin.ID, pending.ID, "")
	if err != nil {
		t.Fatalf("second Approve failed: %v", err)
	}
	if !second.AlreadyApproved {
		t.Error("second approve must report AlreadyApproved")
	}
	if second.TransitionID == first.TransitionID {
		t.Error("each approve attempt must get its own transition id")
	}

	count, err := db.Collection("memberships").CountDocuments(ctx, bson.M{
		"user_id": pending.ID, "project_id": project.ID, "is_active": true,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("active memberships after double approve: got %d, want 1", count)
	}
}

func TestApprove_ResumesPartialTransition(t *testing.T) {
	engine, fixtures, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateSuperAdmin(ctx, "Root", "+15550004007")
	project := fixtures.CreateProject(ctx, "Test Project")
	fixtures.CreateGeneralChannel(ctx, project.ID)
	pending := fixtures.CreatePendingUser(ctx, "New Hire", "+15550004008")
	fixtures.CreatePendingSignup(ctx, pending.ID, &project.ID)

	// Simulate a crash after the first step: the user is approved but
	// no membership exists and the pending entry is still there.
	if err := users.New(db).Approve(ctx, pending.ID, project.CreatedAt); err != nil {
		t.Fatalf("pre-approve failed: %v", err)
	}

	if _, err := engine.Approve(ctx, admin.ID, pending.ID, ""); err != nil {
		t.Fatalf("resumed Approve failed: %v", err)
	}

	role, err := memberships.New(db).ActiveRole(ctx, pending.ID, project.ID)
	if err != nil || role != models.ProjectRoleUser {
		t.Errorf("membership after resume: got (%q, %v)", role, err)
	}
	if _, _, err := invitations.New(db).FindEntry(ctx, pending.ID); !errors.Is(err, invitations.ErrEntryNotFound) {
		t.Errorf("pending entry should be gone, got err=%v", err)
	}
}

func TestApprove_UnknownUser(t *testing.T) {
	engine, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateSuperAdmin(ctx, "Root", "+15550004009")
	ghost := fixtures.CreatePendingUser(ctx, "Ghost", "+15550004010")

	// A user record without a pending entry cannot be approved.
	if _, err := engine.Approve(ctx, admin.ID, ghost.ID, ""); !errors.Is(err, approval.ErrSignupNotFound) {
		t.Errorf("got err=%v, want ErrSignupNotFound", err)
	}
}

func TestReject_DeletesUserAndEntry(t *testing.T) {
	engine, fixtures, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateSuperAdmin(ctx, "Root", "+15550004011")
	project := fixtures.CreateProject(ctx, "Test Project")
	pending := fixtures.CreatePendingUser(ctx, "New Hire", "+15550004012")
	fixtures.CreatePendingSignup(ctx, pending.ID, &project.ID)

	res, err := engine.Reject(ctx, admin.ID, pending.ID, "")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if res.ProjectID == nil || *res.ProjectID != project.ID {
		t.Errorf("result project: got %v, want %s", res.ProjectID, project.ID.Hex())
	}
	if res.FollowUp != approval.FollowUpCredentialCleanup {
		t.Errorf("follow up: got %q, want %q", res.FollowUp, approval.FollowUpCredentialCleanup)
	}

	if _, err := users.New(db).GetByID(ctx, pending.ID); !errors.Is(err, users.ErrNotFound) {
		t.Errorf("user should be deleted, got err=%v", err)
	}
	if _, _, err := invitations.New(db).FindEntry(ctx, pending.ID); !errors.Is(err, invitations.ErrEntryNotFound) {
		t.Errorf("pending entry should be gone, got err=%v", err)
	}
}

func TestApproveAfterReject(t *testing.T) {
	engine, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateSuperAdmin(ctx, "Root", "+15550004013")
	pending := fixtures.CreatePendingUser(ctx, "New Hire", "+15550004014")
	fixtures.CreatePendingSignup(ctx, pending.ID, nil)

	if _, err := engine.Reject(ctx, admin.ID, pending.ID, ""); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if _, err := engine.Approve(ctx, admin.ID, pending.ID, ""); !errors.Is(err, approval.ErrSignupNotFound) {
		t.Errorf("approve after reject: got err=%v, want ErrSignupNotFound", err)
	}
}

func TestReject_ApprovedUserRefused(t *testing.T) {
	engine, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateSuperAdmin(ctx, "Root", "+15550004015")
	user := fixtures.CreateMember(ctx, "Existing", "+15550004016")

	if _, err := engine.Reject(ctx, admin.ID, user.ID, ""); !errors.Is(err, approval.ErrSignupNotFound) {
		t.Errorf("reject of approved user: got err=%v, want ErrSignupNotFound", err)
	}
}
