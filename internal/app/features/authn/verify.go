// internal/app/features/authn/verify.go
package authn

import (
	"errors"
	"net/http"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/app/features/respond"
	"github.com/thiraviyalingesh/company-chat/internal/app/store/audit"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auditlog"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/normalize"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/otp"
)

type verifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type verifyResponse struct {
	Token string     `json:"token"`
	User  verifyUser `json:"user"`
}

type verifyUser struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	GlobalRole string `json:"global_role"`
}

// ServeVerify handles POST /auth/verify: checks the login code and
// returns a bearer token. The stored code is cleared on success so it
// cannot be replayed.
func (h *Handler) ServeVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	phone := normalize.Phone(req.Phone)
	if phone == "" || req.Code == "" {
		respond.Error(w, http.StatusBadRequest, "phone and code are required")
		return
	}

	ip := auditlog.ClientIP(r)
	now := time.Now().UTC()

	user, err := h.Users.GetByPhone(r.Context(), phone)
	if errors.Is(err, userstore.ErrNotFound) {
		h.AuditLog.Log(r.Context(), audit.Event{
			Timestamp: now,
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginFailedNotFound,
			IP:        ip,
			Details:   map[string]string{"phone": phone},
		})
		respond.Error(w, http.StatusUnauthorized, "invalid phone or code")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "verify: user lookup", err)
		return
	}

	if user.IsBlocked {
		h.AuditLog.Log(r.Context(), audit.Event{
			Timestamp: now,
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginFailedBlocked,
			UserID:    &user.ID,
			IP:        ip,
		})
		respond.Error(w, http.StatusForbidden, "account is blocked")
		return
	}
	if !user.IsApproved {
		h.AuditLog.Log(r.Context(), audit.Event{
			Timestamp: now,
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginFailedUnapproved,
			UserID:    &user.ID,
			IP:        ip,
		})
		respond.Error(w, http.StatusForbidden, "account is pending approval")
		return
	}

	var storedExpiry any
	if user.OTPExpiresAt != nil {
		storedExpiry = *user.OTPExpiresAt
	}
	result := otp.Verify(req.Code, user.CurrentOTP, storedExpiry, now)
	if !result.Valid {
		h.AuditLog.Log(r.Context(), audit.Event{
			Timestamp:     now,
			Category:      audit.CategoryAuth,
			EventType:     audit.EventLoginFailedBadCode,
			UserID:        &user.ID,
			IP:            ip,
			FailureReason: string(result.Reason),
		})
		respond.Error(w, http.StatusUnauthorized, "invalid or expired code")
		return
	}

	if err := h.Users.ClearOTP(r.Context(), user.ID, now); err != nil {
		respond.Internal(w, h.Log, "verify: clear code", err)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.FullName, user.GlobalRole, now)
	if err != nil {
		respond.Internal(w, h.Log, "verify: issue token", err)
		return
	}

	h.AuditLog.Log(r.Context(), audit.Event{
		Timestamp: now,
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &user.ID,
		IP:        ip,
		Success:   true,
	})
	respond.JSON(w, http.StatusOK, verifyResponse{
		Token: token,
		User: verifyUser{
			ID:         user.ID.Hex(),
			FullName:   user.FullName,
			Phone:      user.Phone,
			GlobalRole: user.GlobalRole,
		},
	})
}
