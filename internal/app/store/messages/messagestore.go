// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultPageSize bounds message list reads.
	DefaultPageSize = 50
	// MaxBodyLen bounds message bodies after sanitization.
	MaxBodyLen = 4000
)

var (
	// ErrNotFound is returned when no message matches.
	ErrNotFound = errors.New("message not found")
	// ErrEmptyBody is returned when a message body is empty after
	// sanitization.
	ErrEmptyBody = errors.New("message body is empty")
	// ErrBodyTooLong is returned when a message body exceeds MaxBodyLen.
	ErrBodyTooLong = errors.New("message body too long")
)

// sanitizer strips all markup; chat bodies are plain text on the wire.
var sanitizer = bluemonday.StrictPolicy()

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

// Create sanitizes and inserts a message.
func (s *Store) Create(ctx context.Context, groupID, senderID primitive.ObjectID, body string) (models.Message, error) {
	body = strings.TrimSpace(sanitizer.Sanitize(body))
	if body == "" {
		return models.Message{}, ErrEmptyBody
	}
	if len(body) > MaxBodyLen {
		return models.Message{}, ErrBodyTooLong
	}

	m := models.Message{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// ListPage returns up to limit messages for the group, newest first.
// before is an exclusive ObjectID cursor: pass the oldest ID from the
// previous page to continue, or NilObjectID for the first page.
func (s *Store) ListPage(ctx context.Context, groupID primitive.ObjectID, before primitive.ObjectID, limit int64) ([]models.Message, error) {
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}
	filter := bson.M{"group_id": groupID}
	if before != primitive.NilObjectID {
		filter["_id"] = bson.M{"$lt": before}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var messages []models.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetByID loads a message. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var m models.Message
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Delete removes a message. Returns ErrNotFound when nothing matched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByGroup removes all messages for a group (group deletion
// cleanup). Returns the number deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
