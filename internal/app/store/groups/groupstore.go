// internal/app/store/groups/groupstore.go
package groupstore

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
	return &Store{c: db.Collection("groups")}
}

var (
	// ErrNotFound is returned when no group matches the lookup.
	ErrNotFound = errors.New("group not found")
	// ErrGeneralChannelExists is returned when creating a second general
	// channel for a project.
	ErrGeneralChannelExists = errors.New("project already has a general channel")
	// ErrGeneralChannelImmutable is returned when deleting the general
	// channel.
	ErrGeneralChannelImmutable = errors.New("the general channel cannot be deleted")

	errEmptyName = errors.New("group name is empty")
)

// Create inserts a group or channel. The general channel is created once
// per project; the unique partial index turns a second attempt into
// ErrGeneralChannelExists.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	g.ID = primitive.NewObjectID()
	g.Name = normalize.Name(g.Name)
	if g.Name == "" {
		return models.Group{}, errEmptyName
	}
	g.NameCI = text.Fold(g.Name)
	if g.IsGeneralChannel {
		g.IsChannel = true
	}
	if g.Members == nil {
		g.Members = []primitive.ObjectID{}
	}

	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrGeneralChannelExists
		}
		return models.Group{}, err
	}
	return g, nil
}

// GetByID loads a group. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ListByProject returns a project's groups ordered by folded name.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListByMember returns the groups in a project whose member list
// contains the user.
func (s *Store) ListByMember(ctx context.Context, projectID, userID primitive.ObjectID) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID, "members": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// AddMembers adds the given users to the group's member set. $addToSet
// keeps the list duplicate-free, so re-adding is a no-op.
func (s *Store) AddMembers(ctx context.Context, groupID primitive.ObjectID, userIDs []primitive.ObjectID) error {
	if len(userIDs) == 0 {
		return nil
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": groupID}, bson.M{
		"$addToSet": bson.M{"members": bson.M{"$each": userIDs}},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMemberToGeneralChannel puts a user into the project's general
// channel (used when a membership is approved or created, so every
// project member lands there).
func (s *Store) AddMemberToGeneralChannel(ctx context.Context, projectID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"project_id": projectID, "is_general_channel": true},
		bson.M{
			"$addToSet": bson.M{"members": userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// RemoveMember pulls a user from the group's member set.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": groupID}, bson.M{
		"$pull": bson.M{"members": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveMemberFromProjectGroups pulls a user out of every group in the
// project (used when a membership is deactivated).
func (s *Store) RemoveMemberFromProjectGroups(ctx context.Context, projectID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"project_id": projectID, "members": userID},
		bson.M{
			"$pull": bson.M{"members": userID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes a group. The general channel is refused.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "is_general_channel": false})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		// Distinguish "general channel" from "missing".
		err := s.c.FindOne(ctx, bson.M{"_id": id}).Err()
		if err == nil {
			return ErrGeneralChannelImmutable
		}
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}
	return nil
}
