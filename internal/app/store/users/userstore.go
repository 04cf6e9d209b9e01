package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/app/system/normalize"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicatePhone is returned when creating a user with a phone
	// number that already exists.
	ErrDuplicatePhone = errors.New("a user with this phone number already exists")

	errBadPhone      = errors.New("phone number is empty or malformed")
	errBadGlobalRole = errors.New(`global role must be "superadmin" or "none"`)
)

// GetByID loads a user by ObjectID. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByPhone looks up a user by normalized phone number.
// Returns ErrNotFound if absent.
func (s *Store) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"phone": normalize.Phone(phone)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing and validating fields.
// Signups arrive unapproved; superadmin bootstrap passes IsApproved.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Phone = normalize.Phone(u.Phone)
	if u.Phone == "" {
		return models.User{}, errBadPhone
	}
	if u.GlobalRole == "" {
		u.GlobalRole = models.GlobalRoleNone
	}
	switch u.GlobalRole {
	case models.GlobalRoleSuperAdmin, models.GlobalRoleNone:
	default:
		return models.User{}, errBadGlobalRole
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicatePhone
		}
		return models.User{}, err
	}
	return u, nil
}

// SetOTP writes a fresh login code and its expiry onto the user
// document. Field-level $set only; sibling fields are untouched.
func (s *Store) SetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"current_otp":    code,
		"otp_expires_at": expiresAt,
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearOTP removes the in-flight code and stamps last_active. Called on
// successful verification.
func (s *Store) ClearOTP(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"current_otp": "", "otp_expires_at": ""},
		"$set":   bson.M{"last_active": now.UTC(), "updated_at": now.UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Approve marks the user approved and stamps the approval instant.
// Calling it on an already-approved user is a no-op that preserves the
// original approval instant.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_approved": false},
		bson.M{"$set": bson.M{
			"is_approved": true,
			"approved_at": now.UTC(),
			"updated_at":  now.UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either already approved (fine) or missing (reported).
		err := s.c.FindOne(ctx, bson.M{"_id": id}).Err()
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Promote changes a user's global role. Used by the startup superadmin
// bootstrap; promotion also approves the user.
func (s *Store) Promote(ctx context.Context, id primitive.ObjectID, globalRole string) error {
	switch globalRole {
	case models.GlobalRoleSuperAdmin, models.GlobalRoleNone:
	default:
		return errBadGlobalRole
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"global_role": globalRole,
		"is_approved": true,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetBlocked blocks or unblocks a user.
func (s *Store) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_blocked": blocked,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete hard-deletes a user. Only rejection of a pending signup uses
// this; approved users are blocked, not deleted. Returns the number of
// documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns users ordered by folded name. Superadmin screens only;
// scoping to a project goes through the memberships collection.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
