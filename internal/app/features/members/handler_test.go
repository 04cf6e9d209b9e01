package members_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	membersfeature "github.com/thiraviyalingesh/company-chat/internal/app/features/members"
	membershipstore "github.com/thiraviyalingesh/company-chat/internal/app/store/memberships"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/indexes"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"github.com/thiraviyalingesh/company-chat/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*membersfeature.Handler, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return membersfeature.NewHandler(db, nil, zap.NewNop()), testutil.NewFixtures(t, db), db
}

func TestServeAdd_FansIntoGeneralChannel(t *testing.T) {
	h, fixtures, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	fixtures.CreateGeneralChannel(ctx, project.ID)
	admin := fixtures.CreateMember(ctx, "Admin", "+15550010001")
	fixtures.CreateMembership(ctx, admin.ID, project.ID, models.ProjectRoleAdmin)
	newcomer := fixtures.CreateMember(ctx, "Newcomer", "+15550010002")

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest(t, http.MethodPost,
		"/projects/"+project.ID.Hex()+"/members",
		map[string]string{"user_id": newcomer.ID.Hex(), "role": models.ProjectRoleUser},
		testutil.AsUser(admin.ID, admin.FullName, admin.GlobalRole))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	h.ServeAdd(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body)
	}

	role, err := membershipstore.New(db).ActiveRole(ctx, newcomer.ID, project.ID)
	if err != nil || role != models.ProjectRoleUser {
		t.Errorf("membership: got (%q, %v)", role, err)
	}

	var general models.Group
	if err := db.Collection("groups").FindOne(ctx, bson.M{
		"project_id": project.ID, "is_general_channel": true,
	}).Decode(&general); err != nil {
		t.Fatalf("general channel lookup failed: %v", err)
	}
	if !general.HasMember(newcomer.ID) {
		t.Error("newcomer is not in the general channel")
	}
}

func TestServeAdd_RegularMemberForbidden(t *testing.T) {
	h, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	member := fixtures.CreateMember(ctx, "Member", "+15550010003")
	fixtures.CreateMembership(ctx, member.ID, project.ID, models.ProjectRoleUser)
	newcomer := fixtures.CreateMember(ctx, "Newcomer", "+15550010004")

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest(t, http.MethodPost,
		"/projects/"+project.ID.Hex()+"/members",
		map[string]string{"user_id": newcomer.ID.Hex(), "role": models.ProjectRoleUser},
		testutil.AsUser(member.ID, member.FullName, member.GlobalRole))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	h.ServeAdd(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestServeAdd_PendingUserRefused(t *testing.T) {
	h, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	pending := fixtures.CreatePendingUser(ctx, "Pending", "+15550010005")

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest(t, http.MethodPost,
		"/projects/"+project.ID.Hex()+"/members",
		map[string]string{"user_id": pending.ID.Hex(), "role": models.ProjectRoleUser},
		testutil.SuperAdminUser())
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	h.ServeAdd(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestServeList(t *testing.T) {
	h, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	member := fixtures.CreateMember(ctx, "Member", "+15550010006")
	fixtures.CreateMembership(ctx, member.ID, project.ID, models.ProjectRoleUser)

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest(t, http.MethodGet,
		"/projects/"+project.ID.Hex()+"/members", nil,
		testutil.AsUser(member.ID, member.FullName, member.GlobalRole))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	h.ServeList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body)
	}

	var resp struct {
		Members []struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
		} `json:"members"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp.Members) != 1 || resp.Members[0].UserID != member.ID.Hex() {
		t.Errorf("members: got %+v", resp.Members)
	}
}

func TestServeList_OutsiderForbidden(t *testing.T) {
	h, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	outsider := fixtures.CreateMember(ctx, "Outsider", "+15550010007")

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest(t, http.MethodGet,
		"/projects/"+project.ID.Hex()+"/members", nil,
		testutil.AsUser(outsider.ID, outsider.FullName, outsider.GlobalRole))
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	h.ServeList(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestServeRemove_PullsFromGroups(t *testing.T) {
	h, fixtures, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	member := fixtures.CreateMember(ctx, "Member", "+15550010008")
	fixtures.CreateMembership(ctx, member.ID, project.ID, models.ProjectRoleUser)
	fixtures.CreateGroup(ctx, "design", project.ID, member.ID)
	fixtures.CreateGeneralChannel(ctx, project.ID, member.ID)

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest(t, http.MethodDelete,
		"/projects/"+project.ID.Hex()+"/members/"+member.ID.Hex(), nil,
		testutil.SuperAdminUser())
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", member.ID.Hex())
	h.ServeRemove(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body)
	}

	if _, err := membershipstore.New(db).ActiveRole(ctx, member.ID, project.ID); err == nil {
		t.Error("membership is still active")
	}

	count, err := db.Collection("groups").CountDocuments(ctx, bson.M{
		"project_id": project.ID, "members": member.ID,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("user still present in %d groups", count)
	}
}

func TestServeSetRole(t *testing.T) {
	h, fixtures, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")
	member := fixtures.CreateMember(ctx, "Member", "+15550010009")
	fixtures.CreateMembership(ctx, member.ID, project.ID, models.ProjectRoleUser)

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest(t, http.MethodPut,
		"/projects/"+project.ID.Hex()+"/members/"+member.ID.Hex()+"/role",
		map[string]string{"role": models.ProjectRoleAdmin},
		testutil.SuperAdminUser())
	req = testutil.WithChiURLParam(req, "projectID", project.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", member.ID.Hex())
	h.ServeSetRole(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body)
	}

	role, err := membershipstore.New(db).ActiveRole(ctx, member.ID, project.ID)
	if err != nil || role != models.ProjectRoleAdmin {
		t.Errorf("role: got (%q, %v)", role, err)
	}
}
