package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an approved user with the given name, phone, and
// global role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, phone, globalRole string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Phone:      phone,
		GlobalRole: globalRole,
		IsApproved: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateSuperAdmin creates an approved superadmin user.
func (f *Fixtures) CreateSuperAdmin(ctx context.Context, fullName, phone string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, phone, models.GlobalRoleSuperAdmin)
}

// CreateMember creates an approved regular user.
func (f *Fixtures) CreateMember(ctx context.Context, fullName, phone string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, phone, models.GlobalRoleNone)
}

// CreatePendingUser creates an unapproved user, as signup does.
func (f *Fixtures) CreatePendingUser(ctx context.Context, fullName, phone string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Phone:      phone,
		GlobalRole: models.GlobalRoleNone,
		IsApproved: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create pending test user: %v", err)
	}
	return u
}

// CreateProject creates an active project.
func (f *Fixtures) CreateProject(ctx context.Context, name string) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

// CreateMembership creates an active membership with the given role.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, projectID primitive.ObjectID, role string) models.Membership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Membership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ProjectID: projectID,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateGroup creates a plain group (not a channel) with the given
// members.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, projectID primitive.ObjectID, members ...primitive.ObjectID) models.Group {
	f.t.Helper()
	return f.createGroup(ctx, name, projectID, false, false, members)
}

// CreateChannel creates a restricted-write channel.
func (f *Fixtures) CreateChannel(ctx context.Context, name string, projectID primitive.ObjectID, members ...primitive.ObjectID) models.Group {
	f.t.Helper()
	return f.createGroup(ctx, name, projectID, true, false, members)
}

// CreateGeneralChannel creates the project's general channel.
func (f *Fixtures) CreateGeneralChannel(ctx context.Context, projectID primitive.ObjectID, members ...primitive.ObjectID) models.Group {
	f.t.Helper()
	return f.createGroup(ctx, "general", projectID, true, true, members)
}

func (f *Fixtures) createGroup(ctx context.Context, name string, projectID primitive.ObjectID, isChannel, isGeneral bool, members []primitive.ObjectID) models.Group {
	f.t.Helper()

	if members == nil {
		members = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	g := models.Group{
		ID:               primitive.NewObjectID(),
		Name:             name,
		NameCI:           text.Fold(name),
		ProjectID:        projectID,
		IsChannel:        isChannel,
		IsGeneralChannel: isGeneral,
		Members:          members,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// CreatePendingSignup creates an invitation document holding one pending
// entry for the given user. projectID may be nil for company-wide.
func (f *Fixtures) CreatePendingSignup(ctx context.Context, userID primitive.ObjectID, projectID *primitive.ObjectID) models.Invitation {
	f.t.Helper()

	now := time.Now().UTC()
	inv := models.Invitation{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Pending:   []models.PendingSignup{{UserID: userID, SignedUpAt: now}},
		IsPending: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("invitations").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("failed to create test invitation: %v", err)
	}
	return inv
}
