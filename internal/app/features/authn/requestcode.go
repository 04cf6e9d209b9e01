// internal/app/features/authn/requestcode.go
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
	"github.com/thiraviyalingesh/company-chat/internal/app/system/sms"
	"go.uber.org/zap"
)

type requestCodeRequest struct {
	Phone string `json:"phone"`
}

// ServeRequestCode handles POST /auth/request-code.
//
// The response does not reveal whether the phone belongs to an account:
// unknown, blocked, and unapproved phones all get the same 202 so the
// endpoint cannot be used to enumerate users. The audit trail records
// what actually happened.
func (h *Handler) ServeRequestCode(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	phone := normalize.Phone(req.Phone)
	if phone == "" {
		respond.Error(w, http.StatusBadRequest, "phone is required")
		return
	}

	ip := auditlog.ClientIP(r)
	accepted := func() {
		respond.JSON(w, http.StatusAccepted, map[string]string{"status": "code_sent"})
	}

	user, err := h.Users.GetByPhone(r.Context(), phone)
	if errors.Is(err, userstore.ErrNotFound) {
		h.AuditLog.Log(r.Context(), audit.Event{
			Timestamp: time.Now().UTC(),
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginFailedNotFound,
			IP:        ip,
			Details:   map[string]string{"phone": phone},
		})
		accepted()
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "request-code: user lookup", err)
		return
	}
	if user.IsBlocked || !user.IsApproved {
		eventType := audit.EventLoginFailedBlocked
		if !user.IsBlocked {
			eventType = audit.EventLoginFailedUnapproved
		}
		h.AuditLog.Log(r.Context(), audit.Event{
			Timestamp: time.Now().UTC(),
			Category:  audit.CategoryAuth,
			EventType: eventType,
			UserID:    &user.ID,
			IP:        ip,
		})
		accepted()
		return
	}

	now := time.Now().UTC()
	code, expiresAt := otp.Generate(now)
	if err := h.Users.SetOTP(r.Context(), user.ID, code, expiresAt); err != nil {
		respond.Internal(w, h.Log, "request-code: store code", err)
		return
	}

	if err := h.SMS.Send(r.Context(), user.Phone, sms.LoginCodeBody(code, otp.Lifetime)); err != nil {
		h.Log.Error("request-code: sms delivery failed",
			zap.String("user_id", user.ID.Hex()), zap.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "could not send code, try again")
		return
	}

	h.AuditLog.Log(r.Context(), audit.Event{
		Timestamp: now,
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginCodeSent,
		UserID:    &user.ID,
		IP:        ip,
		Success:   true,
	})
	accepted()
}
