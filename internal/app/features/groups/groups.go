// internal/app/features/groups/groups.go
package groups

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	"github.com/thiraviyalingesh/company-chat/internal/app/store/audit"
	groupstore "github.com/thiraviyalingesh/company-chat/internal/app/store/groups"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/authz"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createRequest struct {
	Name      string   `json:"name"`
	IsChannel bool     `json:"is_channel"`
	MemberIDs []string `json:"member_ids"`
}

type membersRequest struct {
	MemberIDs []string `json:"member_ids"`
}

type groupResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	ProjectID        string   `json:"project_id"`
	IsChannel        bool     `json:"is_channel"`
	IsGeneralChannel bool     `json:"is_general_channel"`
	MemberIDs        []string `json:"member_ids"`
}

func toResponse(g models.Group) groupResponse {
	members := make([]string, 0, len(g.Members))
	for _, id := range g.Members {
		members = append(members, id.Hex())
	}
	return groupResponse{
		ID:               g.ID.Hex(),
		Name:             g.Name,
		ProjectID:        g.ProjectID.Hex(),
		IsChannel:        g.IsChannel,
		IsGeneralChannel: g.IsGeneralChannel,
		MemberIDs:        members,
	}
}

func parseMemberIDs(raw []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, errors.New("invalid member id " + s)
		}
		out = append(out, id)
	}
	return out, nil
}

// ServeList handles GET /projects/{projectID}/groups. Project admins
// and superadmins see every group; members see the groups they are in.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	access, projectID, ok := h.routeProject(w, r)
	if !ok {
		return
	}

	role, err := h.Resolver.RoleInProject(r.Context(), access, projectID)
	if err != nil {
		h.Log.Error("groups: role resolution failed",
			zap.String("project_id", projectID.Hex()), zap.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	var list []models.Group
	switch role {
	case authz.RoleProjectAdmin:
		list, err = h.Groups.ListByProject(r.Context(), projectID)
	case authz.RoleUser:
		list, err = h.Groups.ListByMember(r.Context(), projectID, access.UserID)
	default:
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "groups: list", err)
		return
	}

	out := make([]groupResponse, 0, len(list))
	for _, g := range list {
		out = append(out, toResponse(g))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"groups": out})
}

// ServeCreate handles POST /projects/{projectID}/groups. A second
// general channel can never be created this way.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := h.requireManager(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	memberIDs, err := parseMemberIDs(req.MemberIDs)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.Groups.Create(r.Context(), models.Group{
		Name:      req.Name,
		ProjectID: projectID,
		IsChannel: req.IsChannel,
		Members:   memberIDs,
	})
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.AuditLog.Log(r.Context(), audit.Event{
		Timestamp: time.Now().UTC(),
		ProjectID: &projectID,
		Category:  audit.CategoryAdmin,
		EventType: audit.EventGroupCreated,
		ActorID:   &actor.UserID,
		IP:        auditlog.ClientIP(r),
		Success:   true,
		Details:   map[string]string{"name": group.Name},
	})
	respond.JSON(w, http.StatusCreated, toResponse(group))
}

// ServeAddMembers handles POST /projects/{projectID}/groups/{groupID}/members.
func (h *Handler) ServeAddMembers(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := h.requireManager(w, r)
	if !ok {
		return
	}
	group, ok := h.routeGroup(w, r, projectID)
	if !ok {
		return
	}
	var req membersRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	memberIDs, err := parseMemberIDs(req.MemberIDs)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Groups.AddMembers(r.Context(), group.ID, memberIDs); err != nil {
		respond.Internal(w, h.Log, "groups: add members", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "members_added"})
}

// ServeRemoveMember handles
// DELETE /projects/{projectID}/groups/{groupID}/members/{userID}.
func (h *Handler) ServeRemoveMember(w http.ResponseWriter, r *http.Request) {
	_, projectID, ok := h.requireManager(w, r)
	if !ok {
		return
	}
	group, ok := h.routeGroup(w, r, projectID)
	if !ok {
		return
	}
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Groups.RemoveMember(r.Context(), group.ID, userID); err != nil {
		respond.Internal(w, h.Log, "groups: remove member", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "member_removed"})
}

// ServeDelete handles DELETE /projects/{projectID}/groups/{groupID}.
// The general channel is refused.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	actor, projectID, ok := h.requireManager(w, r)
	if !ok {
		return
	}
	group, ok := h.routeGroup(w, r, projectID)
	if !ok {
		return
	}

	if err := h.Groups.Delete(r.Context(), group.ID); err != nil {
		if errors.Is(err, groupstore.ErrGeneralChannelImmutable) {
			respond.Error(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if errors.Is(err, groupstore.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "group not found")
			return
		}
		respond.Internal(w, h.Log, "groups: delete", err)
		return
	}

	// Messages in a deleted group are unreachable; purge them. A failed
	// purge is logged, not fatal.
	if n, err := h.Messages.DeleteByGroup(r.Context(), group.ID); err != nil {
		h.Log.Error("groups: message purge failed",
			zap.String("group_id", group.ID.Hex()), zap.Error(err))
	} else if n > 0 {
		h.Log.Info("groups: purged messages",
			zap.String("group_id", group.ID.Hex()), zap.Int64("count", n))
	}

	h.AuditLog.Log(r.Context(), audit.Event{
		Timestamp: time.Now().UTC(),
		ProjectID: &projectID,
		Category:  audit.CategoryAdmin,
		EventType: audit.EventGroupDeleted,
		ActorID:   &actor.UserID,
		IP:        auditlog.ClientIP(r),
		Success:   true,
		Details:   map[string]string{"name": group.Name},
	})
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// routeGroup loads the {groupID} route param and checks it belongs to
// the route's project.
func (h *Handler) routeGroup(w http.ResponseWriter, r *http.Request, projectID primitive.ObjectID) (*models.Group, bool) {
	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid group id")
		return nil, false
	}
	group, err := h.Groups.GetByID(r.Context(), groupID)
	if errors.Is(err, groupstore.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "group not found")
		return nil, false
	}
	if err != nil {
		respond.Internal(w, h.Log, "groups: load group", err)
		return nil, false
	}
	if group.ProjectID != projectID {
		respond.Error(w, http.StatusNotFound, "group not found")
		return nil, false
	}
	return group, true
}
