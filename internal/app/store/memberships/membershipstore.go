// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c        *mongo.Collection
	projects *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("memberships"),
		projects: db.Collection("projects"),
	}
}

var (
	errBadRole        = errors.New(`role must be "user" or "project_admin"`)
	errProjectMissing = errors.New("project not found or inactive")

	// ErrNotFound is returned when no active membership matches.
	ErrNotFound = errors.New("membership not found")
)

// Add creates an active membership for (userID, projectID). Uniqueness
// is enforced by the partial unique index on active memberships; a
// duplicate-key rejection means the membership already exists and is
// treated as success, so concurrent adds for the same pair reconcile
// instead of racing.
func (s *Store) Add(ctx context.Context, userID, projectID primitive.ObjectID, role string) error {
	if role != models.ProjectRoleUser && role != models.ProjectRoleAdmin {
		return errBadRole
	}

	err := s.projects.FindOne(ctx, bson.M{"_id": projectID, "is_active": true}).Err()
	if err == mongo.ErrNoDocuments {
		return errProjectMissing
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	doc := bson.M{
		"user_id":    userID,
		"project_id": projectID,
		"role":       role,
		"is_active":  true,
		"created_at": now,
		"updated_at": now,
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// ActiveRole returns the role of the active membership for the pair, or
// ("", ErrNotFound) when none exists. Transport failures come back as-is
// so callers can tell an outage from an absent record.
func (s *Store) ActiveRole(ctx context.Context, userID, projectID primitive.ObjectID) (string, error) {
	var row struct {
		Role string `bson:"role"`
	}
	err := s.c.FindOne(ctx, bson.M{
		"user_id":    userID,
		"project_id": projectID,
		"is_active":  true,
	}).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return row.Role, nil
}

// SetRole promotes or demotes the active membership for the pair.
func (s *Store) SetRole(ctx context.Context, userID, projectID primitive.ObjectID, role string) error {
	if role != models.ProjectRoleUser && role != models.ProjectRoleAdmin {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "project_id": projectID, "is_active": true},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-removes the membership. Removal never deletes the
// document; the history stays queryable.
func (s *Store) Deactivate(ctx context.Context, userID, projectID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "project_id": projectID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByProject returns active memberships for a project.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID, "is_active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByUser returns a user's active memberships across projects.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "is_active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountActive returns the number of active memberships for a project.
func (s *Store) CountActive(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"project_id": projectID, "is_active": true})
}
