// Package approval drives the signup approval state machine.
//
// A pending signup moves to exactly one of two terminal states:
//
//	approved: the user record is marked approved, a project membership
//	  is created when the signup targeted a project, the user is added
//	  to the project's general channel, and the pending entry is
//	  removed.
//	rejected: the user record is deleted and the pending entry is
//	  removed. Because every request re-fetches the user record, any
//	  token the rejected user still holds stops resolving immediately.
//
// The multi-document transition is not wrapped in a transaction. Each
// step is idempotent (approve matches only unapproved users, the
// membership insert treats a duplicate key as success, the channel
// fan-in uses $addToSet), so a crash mid-transition is repaired by
// retrying the approve. Every step logs under a shared transition id
// so a partial transition can be traced.
package approval

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thiraviyalingesh/company-chat/internal/app/store/audit"
	groups "github.com/thiraviyalingesh/company-chat/internal/app/store/groups"
	invitations "github.com/thiraviyalingesh/company-chat/internal/app/store/invitations"
	memberships "github.com/thiraviyalingesh/company-chat/internal/app/store/memberships"
	users "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrSignupNotFound is returned when no pending signup exists for the
// user, including the approve-after-reject and reject-after-reject
// cases (the reject deleted the user).
var ErrSignupNotFound = errors.New("no pending signup for this user")

// Engine executes approval transitions.
type Engine struct {
	users       *users.Store
	memberships *memberships.Store
	groups      *groups.Store
	invitations *invitations.Store
	auditLog    *auditlog.Logger
	log         *zap.Logger
}

// New creates an approval Engine over the given database. auditLog may
// be nil.
func New(db *mongo.Database, auditLog *auditlog.Logger, log *zap.Logger) *Engine {
	return &Engine{
		users:       users.New(db),
		memberships: memberships.New(db),
		groups:      groups.New(db),
		invitations: invitations.New(db),
		auditLog:    auditLog,
		log:         log,
	}
}

// Result describes a completed transition.
type Result struct {
	TransitionID string
	UserID       primitive.ObjectID
	ProjectID    *primitive.ObjectID

	// AlreadyApproved is set when the approve found the user already
	// in the approved state and only performed cleanup.
	AlreadyApproved bool

	// FollowUp names a privileged action the caller still owes after
	// this transition. Empty when the transition is complete in itself.
	FollowUp string
}

// FollowUpCredentialCleanup: reject removes the user record but not the
// login credential held by the identity provider; a privileged cleanup
// call is still required.
const FollowUpCredentialCleanup = "credential_cleanup"

// Approve moves a pending signup to the approved state.
//
// Calling Approve twice for the same user is safe: the second call
// re-runs the idempotent steps and reports AlreadyApproved. Approving
// a user who was rejected (or never signed up) returns
// ErrSignupNotFound.
func (e *Engine) Approve(ctx context.Context, actorID, userID primitive.ObjectID, ip string) (*Result, error) {
	tid := uuid.NewString()
	log := e.log.With(
		zap.String("transition_id", tid),
		zap.String("user_id", userID.Hex()))

	user, err := e.users.GetByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrSignupNotFound
	}
	if err != nil {
		return nil, err
	}

	inv, _, err := e.invitations.FindEntry(ctx, userID)
	if errors.Is(err, invitations.ErrEntryNotFound) {
		if !user.IsApproved {
			// Unapproved user with no pending entry: the signup was
			// never recorded, so there is nothing to approve.
			return nil, ErrSignupNotFound
		}
		// Retry after a completed approve.
		log.Info("approve: user already approved, entry already removed")
		return &Result{TransitionID: tid, UserID: userID, AlreadyApproved: true}, nil
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		TransitionID:    tid,
		UserID:          userID,
		ProjectID:       inv.ProjectID,
		AlreadyApproved: user.IsApproved,
	}
	now := time.Now().UTC()

	if err := e.users.Approve(ctx, userID, now); err != nil {
		log.Error("approve: mark user approved failed", zap.Error(err))
		return nil, err
	}
	log.Info("approve: user marked approved")

	if inv.ProjectID != nil {
		if err := e.memberships.Add(ctx, userID, *inv.ProjectID, models.ProjectRoleUser); err != nil {
			log.Error("approve: create membership failed",
				zap.String("project_id", inv.ProjectID.Hex()), zap.Error(err))
			return nil, err
		}
		log.Info("approve: membership created",
			zap.String("project_id", inv.ProjectID.Hex()))

		joined, err := e.groups.AddMemberToGeneralChannel(ctx, *inv.ProjectID, userID)
		if err != nil {
			log.Error("approve: general channel join failed",
				zap.String("project_id", inv.ProjectID.Hex()), zap.Error(err))
			return nil, err
		}
		log.Info("approve: joined general channel",
			zap.String("project_id", inv.ProjectID.Hex()),
			zap.Int64("channels_updated", joined))
	}

	if err := e.invitations.RemoveEntry(ctx, inv.ID, userID); err != nil {
		log.Error("approve: remove pending entry failed", zap.Error(err))
		return nil, err
	}
	log.Info("approve: pending entry removed")

	e.auditLog.Log(ctx, audit.Event{
		Timestamp: now,
		ProjectID: inv.ProjectID,
		Category:  audit.CategoryAdmin,
		EventType: audit.EventSignupApproved,
		UserID:    &userID,
		ActorID:   &actorID,
		IP:        ip,
		Success:   true,
		Details:   map[string]string{"transition_id": tid},
	})
	return res, nil
}

// Reject moves a pending signup to the rejected state: the user record
// is deleted and the pending entry removed. Rejecting an already
// approved user is refused; use blocking for that.
func (e *Engine) Reject(ctx context.Context, actorID, userID primitive.ObjectID, ip string) (*Result, error) {
	tid := uuid.NewString()
	log := e.log.With(
		zap.String("transition_id", tid),
		zap.String("user_id", userID.Hex()))

	user, err := e.users.GetByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrSignupNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.IsApproved {
		return nil, ErrSignupNotFound
	}

	inv, _, err := e.invitations.FindEntry(ctx, userID)
	if errors.Is(err, invitations.ErrEntryNotFound) {
		return nil, ErrSignupNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := e.users.Delete(ctx, userID); err != nil {
		log.Error("reject: delete user failed", zap.Error(err))
		return nil, err
	}
	log.Info("reject: user deleted")

	if err := e.invitations.RemoveEntry(ctx, inv.ID, userID); err != nil {
		log.Error("reject: remove pending entry failed", zap.Error(err))
		return nil, err
	}
	log.Info("reject: pending entry removed")

	e.auditLog.Log(ctx, audit.Event{
		Timestamp: time.Now().UTC(),
		ProjectID: inv.ProjectID,
		Category:  audit.CategoryAdmin,
		EventType: audit.EventSignupRejected,
		UserID:    &userID,
		ActorID:   &actorID,
		IP:        ip,
		Success:   true,
		Details:   map[string]string{"transition_id": tid},
	})
	return &Result{
		TransitionID: tid,
		UserID:       userID,
		ProjectID:    inv.ProjectID,
		FollowUp:     FollowUpCredentialCleanup,
	}, nil
}
