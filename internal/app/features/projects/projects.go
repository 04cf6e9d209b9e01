// internal/app/features/projects/projects.go
package projects

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	"github.com/thiraviyalingesh/company-chat/internal/app/store/audit"
	membershipstore "github.com/thiraviyalingesh/company-chat/internal/app/store/memberships"
	projectstore "github.com/thiraviyalingesh/company-chat/internal/app/store/projects"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createRequest struct {
	Name string `json:"name"`
}

type projectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(p models.Project) projectResponse {
	return projectResponse{
		ID:        p.ID.Hex(),
		Name:      p.Name,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}

// ServeCreate handles POST /projects. Every new project gets its
// general channel in the same request; members are fanned into it as
// they are approved or added.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.Projects.Create(r.Context(), req.Name)
	if errors.Is(err, projectstore.ErrDuplicateName) {
		respond.Error(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.Groups.Create(r.Context(), models.Group{
		Name:             "general",
		ProjectID:        project.ID,
		IsChannel:        true,
		IsGeneralChannel: true,
	}); err != nil {
		// The project exists without its general channel; the approve
		// fan-in tolerates that, but log it loudly.
		h.Log.Error("projects: general channel create failed",
			zap.String("project_id", project.ID.Hex()), zap.Error(err))
	}

	h.AuditLog.Log(r.Context(), audit.Event{
		Timestamp: time.Now().UTC(),
		ProjectID: &project.ID,
		Category:  audit.CategoryAdmin,
		EventType: audit.EventProjectCreated,
		ActorID:   &actor.ID,
		IP:        auditlog.ClientIP(r),
		Success:   true,
		Details:   map[string]string{"name": project.Name},
	})
	respond.JSON(w, http.StatusCreated, toResponse(project))
}

// ServeList handles GET /projects. Superadmins see every project;
// everyone else sees the active projects they belong to.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if current.GlobalRole == models.GlobalRoleSuperAdmin {
		all, err := h.Projects.List(r.Context(), false)
		if err != nil {
			respond.Internal(w, h.Log, "projects: list", err)
			return
		}
		out := make([]projectResponse, 0, len(all))
		for _, p := range all {
			out = append(out, toResponse(p))
		}
		respond.JSON(w, http.StatusOK, map[string]any{"projects": out})
		return
	}

	ms, err := h.Memberships.ListByUser(r.Context(), current.ID)
	if err != nil {
		respond.Internal(w, h.Log, "projects: list memberships", err)
		return
	}
	out := make([]projectResponse, 0, len(ms))
	for _, m := range ms {
		project, err := h.Projects.GetByID(r.Context(), m.ProjectID)
		if errors.Is(err, projectstore.ErrNotFound) {
			continue
		}
		if err != nil {
			respond.Internal(w, h.Log, "projects: load project", err)
			return
		}
		if !project.IsActive {
			continue
		}
		out = append(out, toResponse(*project))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"projects": out})
}

// ServeGet handles GET /projects/{projectID}. Superadmins can see any
// project; everyone else only the projects they belong to, which also
// keeps project ids unguessable to outsiders.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if current.GlobalRole != models.GlobalRoleSuperAdmin {
		_, err := h.Memberships.ActiveRole(r.Context(), current.ID, projectID)
		if errors.Is(err, membershipstore.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "project not found")
			return
		}
		if err != nil {
			respond.Internal(w, h.Log, "projects: membership lookup", err)
			return
		}
	}

	project, err := h.Projects.GetByID(r.Context(), projectID)
	if errors.Is(err, projectstore.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "projects: load project", err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(*project))
}

// ServeDeactivate handles POST /projects/{projectID}/deactivate.
// Deactivation is soft: history and memberships stay queryable, but
// the project stops accepting members.
func (h *Handler) ServeDeactivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if err := h.Projects.Deactivate(r.Context(), projectID); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "project not found")
			return
		}
		respond.Internal(w, h.Log, "projects: deactivate", err)
		return
	}

	h.AuditLog.Log(r.Context(), audit.Event{
		Timestamp: time.Now().UTC(),
		ProjectID: &projectID,
		Category:  audit.CategoryAdmin,
		EventType: audit.EventProjectDeactivated,
		ActorID:   &actor.ID,
		IP:        auditlog.ClientIP(r),
		Success:   true,
	})
	respond.JSON(w, http.StatusOK, map[string]string{
		"status":     "deactivated",
		"project_id": projectID.Hex(),
	})
}
