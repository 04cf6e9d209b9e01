// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. Each ensure* function is idempotent.
// Errors are aggregated so every problem is visible and startup can fail
// fast.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureProjects(ctx, db); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := ensureMemberships(ctx, db); err != nil {
		problems = append(problems, "memberships: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureMessages(ctx, db); err != nil {
		problems = append(problems, "messages: "+err.Error())
	}
	if err := ensureInvitations(ctx, db); err != nil {
		problems = append(problems, "invitations: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureSet(ctx context.Context, db *mongo.Database, collection string, indexes []mongo.IndexModel) error {
	start := time.Now()
	_, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return err
	}
	zap.L().Info("indexes ensured",
		zap.String("collection", collection),
		zap.Int("count", len(indexes)),
		zap.String("took", time.Since(start).String()))
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureSet(ctx, db, "users", []mongo.IndexModel{
		// Phone is the login identifier and must be globally unique.
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_phone"),
		},
		// Superadmin and member lists sort by folded name.
		{
			Keys: bson.D{
				{Key: "full_name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_fullnameci_id"),
		},
	})
}

func ensureProjects(ctx context.Context, db *mongo.Database) error {
	return ensureSet(ctx, db, "projects", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_projects_nameci"),
		},
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_projects_active_nameci"),
		},
	})
}

func ensureMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureSet(ctx, db, "memberships", []mongo.IndexModel{
		// At most one ACTIVE membership per (user, project). The partial
		// filter leaves deactivated history documents out of the
		// constraint, and insert-time duplicate-key errors become the
		// "conflict means it already exists" success path in the store.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "project_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_memberships_user_project_active").
				SetPartialFilterExpression(bson.M{"is_active": true}),
		},
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("idx_memberships_project_active"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("idx_memberships_user_active"),
		},
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	return ensureSet(ctx, db, "groups", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_groups_project_nameci"),
		},
		// At most one general channel per project.
		{
			Keys: bson.D{{Key: "project_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_groups_general_per_project").
				SetPartialFilterExpression(bson.M{"is_general_channel": true}),
		},
		{
			Keys:    bson.D{{Key: "members", Value: 1}},
			Options: options.Index().SetName("idx_groups_members"),
		},
	})
}

func ensureMessages(ctx context.Context, db *mongo.Database) error {
	return ensureSet(ctx, db, "messages", []mongo.IndexModel{
		// Paged newest-first reads per group.
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_messages_group_id_desc"),
		},
		{
			Keys:    bson.D{{Key: "sender_id", Value: 1}},
			Options: options.Index().SetName("idx_messages_sender"),
		},
	})
}

func ensureInvitations(ctx context.Context, db *mongo.Database) error {
	return ensureSet(ctx, db, "invitations", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "is_pending", Value: 1}},
			Options: options.Index().SetName("idx_invitations_pending"),
		},
		{
			Keys:    bson.D{{Key: "pending.user_id", Value: 1}},
			Options: options.Index().SetName("idx_invitations_pending_user"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureSet(ctx, db, "audit_events", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp_desc"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_timestamp"),
		},
	})
}
