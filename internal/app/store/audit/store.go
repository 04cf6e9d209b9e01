// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventLoginCodeSent         = "login_code_sent"
	EventLoginSuccess          = "login_success"
	EventLoginFailedBadCode    = "login_failed_bad_code"
	EventLoginFailedNotFound   = "login_failed_user_not_found"
	EventLoginFailedBlocked    = "login_failed_user_blocked"
	EventLoginFailedUnapproved = "login_failed_user_unapproved"
)

// Admin event types
const (
	EventSignupApproved     = "signup_approved"
	EventSignupRejected     = "signup_rejected"
	EventUserBlocked        = "user_blocked"
	EventUserUnblocked      = "user_unblocked"
	EventProjectCreated     = "project_created"
	EventProjectDeactivated = "project_deactivated"
	EventMemberAdded        = "member_added"
	EventMemberRemoved      = "member_removed"
	EventMemberRoleChanged  = "member_role_changed"
	EventGroupCreated       = "group_created"
	EventGroupDeleted       = "group_deleted"
)

// Event represents one audit record.
type Event struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Timestamp time.Time           `bson:"timestamp"`
	ProjectID *primitive.ObjectID `bson:"project_id,omitempty"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	UserID  *primitive.ObjectID `bson:"user_id,omitempty"`  // affected user
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty"` // who performed the action

	IP string `bson:"ip,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// Store persists audit events.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Insert writes one event, stamping Timestamp if unset.
func (s *Store) Insert(ctx context.Context, e Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// ListRecent returns the latest events, newest first, optionally
// filtered by category.
func (s *Store) ListRecent(ctx context.Context, category string, limit int64) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
