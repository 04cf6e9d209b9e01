// internal/app/store/invitations/invitationstore.go
package invitationstore

import (
	"context"
	"errors"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("invitations")}
}

var (
	// ErrNotFound is returned when no invitation matches the lookup.
	ErrNotFound = errors.New("invitation not found")
	// ErrEntryNotFound is returned when the pending list holds no entry
	// for the user.
	ErrEntryNotFound = errors.New("no pending signup for user")
)

// AddPending appends a pending signup entry for the user on the
// invitation scoped to projectID (nil for company-wide), creating the
// invitation document on first use. is_pending is recomputed by the same
// write.
func (s *Store) AddPending(ctx context.Context, projectID *primitive.ObjectID, userID primitive.ObjectID, signedUpAt time.Time) error {
	now := time.Now().UTC()
	filter := scopeFilter(projectID)
	update := bson.M{
		"$push": bson.M{"pending": models.PendingSignup{UserID: userID, SignedUpAt: signedUpAt.UTC()}},
		"$set":  bson.M{"is_pending": true, "updated_at": now},
		"$setOnInsert": bson.M{
			"project_id": projectID,
			"created_at": now,
		},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// FindEntry locates the invitation carrying a pending entry for the
// user. Returns the invitation and the matching entry.
func (s *Store) FindEntry(ctx context.Context, userID primitive.ObjectID) (*models.Invitation, *models.PendingSignup, error) {
	var inv models.Invitation
	err := s.c.FindOne(ctx, bson.M{"pending.user_id": userID}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return nil, nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	for i := range inv.Pending {
		if inv.Pending[i].UserID == userID {
			return &inv, &inv.Pending[i], nil
		}
	}
	// Document matched on pending.user_id but the entry is gone; a
	// concurrent approve/reject won the race.
	return nil, nil, ErrEntryNotFound
}

// RemoveEntry pulls the user's entry from the invitation's pending list
// and recomputes is_pending in a follow-up write. Removing an entry that
// is already gone is a no-op.
func (s *Store) RemoveEntry(ctx context.Context, invitationID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": invitationID},
		bson.M{
			"$pull": bson.M{"pending": bson.M{"user_id": userID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	// is_pending mirrors the pending list length. A second writer doing
	// the same recompute converges on the same value.
	_, err = s.c.UpdateOne(ctx,
		bson.M{"_id": invitationID},
		mongo.Pipeline{{{Key: "$set", Value: bson.M{
			"is_pending": bson.M{"$gt": bson.A{bson.M{"$size": "$pending"}, 0}},
		}}}})
	return err
}

// ListPending returns invitations that still carry pending entries,
// oldest first.
func (s *Store) ListPending(ctx context.Context) ([]models.Invitation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"is_pending": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var invitations []models.Invitation
	if err := cur.All(ctx, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

func scopeFilter(projectID *primitive.ObjectID) bson.M {
	if projectID == nil {
		return bson.M{"project_id": nil}
	}
	return bson.M{"project_id": *projectID}
}
