// internal/app/features/auditview/handler.go
package auditview

import (
	"net/http"
	"strconv"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	"github.com/thiraviyalingesh/company-chat/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultLimit = 100

// Handler serves the audit trail to superadmins.
type Handler struct {
	Log   *zap.Logger
	Audit *audit.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Audit: audit.New(db)}
}

type eventResponse struct {
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	UserID        string            `json:"user_id,omitempty"`
	ActorID       string            `json:"actor_id,omitempty"`
	ProjectID     string            `json:"project_id,omitempty"`
	IP            string            `json:"ip,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// ServeList handles GET /audit?category=auth|admin&limit=n, newest
// first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	switch category {
	case "", audit.CategoryAuth, audit.CategoryAdmin:
	default:
		respond.Error(w, http.StatusBadRequest, "unknown category")
		return
	}

	limit := int64(defaultLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			respond.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	events, err := h.Audit.ListRecent(r.Context(), category, limit)
	if err != nil {
		respond.Internal(w, h.Log, "audit: list", err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp := eventResponse{
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.UserID != nil {
			resp.UserID = e.UserID.Hex()
		}
		if e.ActorID != nil {
			resp.ActorID = e.ActorID.Hex()
		}
		if e.ProjectID != nil {
			resp.ProjectID = e.ProjectID.Hex()
		}
		out = append(out, resp)
	}
	respond.JSON(w, http.StatusOK, map[string]any{"events": out})
}
