package authn_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/thiraviyalingesh/company-chat/internal/app/features/authn"
	userstore "github.com/thiraviyalingesh/company-chat/internal/app/store/users"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/auth"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/indexes"
	"github.com/thiraviyalingesh/company-chat/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// capturedSMS records sent messages instead of delivering them.
type capturedSMS struct {
	mu       sync.Mutex
	messages []string
	phones   []string
	fail     bool
}

func (c *capturedSMS) Send(_ context.Context, phone, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return context.DeadlineExceeded
	}
	c.phones = append(c.phones, phone)
	c.messages = append(c.messages, body)
	return nil
}

func (c *capturedSMS) last() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return "", false
	}
	return c.messages[len(c.messages)-1], true
}

func setup(t *testing.T) (*authn.Handler, *capturedSMS, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tm, err := auth.NewTokenManager("test-secret", time.Hour, true, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	sender := &capturedSMS{}
	h := authn.NewHandler(db, tm, sender, nil, zap.NewNop())
	return h, sender, testutil.NewFixtures(t, db), db
}

// codeFromMessage pulls the 6-digit code out of the SMS body.
func codeFromMessage(t *testing.T, body string) string {
	t.Helper()
	for _, word := range strings.Fields(body) {
		word = strings.TrimSuffix(word, ".")
		if len(word) == 6 && strings.IndexFunc(word, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
			return word
		}
	}
	t.Fatalf("no code found in sms body %q", body)
	return ""
}

func TestRequestCodeAndVerify_FullFlow(t *testing.T) {
	h, sender, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "Test User", "+15550006001")

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/request-code",
		map[string]string{"phone": "+1 555-000-6001"})
	h.ServeRequestCode(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("request-code status: got %d, want %d (body %s)", rec.Code, http.StatusAccepted, rec.Body)
	}

	body, ok := sender.last()
	if !ok {
		t.Fatal("no sms was sent")
	}
	code := codeFromMessage(t, body)

	rec = httptest.NewRecorder()
	req = testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify",
		map[string]string{"phone": "+15550006001", "code": code})
	h.ServeVerify(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body)
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Phone string `json:"phone"`
		} `json:"user"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Token == "" {
		t.Error("verify returned no token")
	}
	if resp.User.Phone != "+15550006001" {
		t.Errorf("user phone: got %q", resp.User.Phone)
	}

	// The code is single use.
	rec = httptest.NewRecorder()
	req = testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify",
		map[string]string{"phone": "+15550006001", "code": code})
	h.ServeVerify(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("replayed code status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequestCode_UnknownPhoneLooksTheSame(t *testing.T) {
	h, sender, _, _ := setup(t)

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/request-code",
		map[string]string{"phone": "+15550006999"})
	h.ServeRequestCode(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusAccepted)
	}
	if _, ok := sender.last(); ok {
		t.Error("no sms should be sent for an unknown phone")
	}
}

func TestRequestCode_BlockedAndUnapprovedGetNoCode(t *testing.T) {
	h, sender, fixtures, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	blocked := fixtures.CreateMember(ctx, "Blocked", "+15550006002")
	if err := userstore.New(db).SetBlocked(ctx, blocked.ID, true); err != nil {
		t.Fatalf("SetBlocked failed: %v", err)
	}
	fixtures.CreatePendingUser(ctx, "Pending", "+15550006003")

	for _, phone := range []string{"+15550006002", "+15550006003"} {
		rec := httptest.NewRecorder()
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/request-code",
			map[string]string{"phone": phone})
		h.ServeRequestCode(rec, req)
		if rec.Code != http.StatusAccepted {
			t.Errorf("%s: status got %d, want %d", phone, rec.Code, http.StatusAccepted)
		}
	}
	if _, ok := sender.last(); ok {
		t.Error("no sms should be sent to blocked or unapproved users")
	}
}

func TestRequestCode_SMSFailureSurfaces(t *testing.T) {
	h, sender, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "Test User", "+15550006004")
	sender.fail = true

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/request-code",
		map[string]string{"phone": "+15550006004"})
	h.ServeRequestCode(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestVerify_WrongCode(t *testing.T) {
	h, sender, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "Test User", "+15550006005")

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/request-code",
		map[string]string{"phone": "+15550006005"})
	h.ServeRequestCode(rec, req)

	body, _ := sender.last()
	code := codeFromMessage(t, body)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	rec = httptest.NewRecorder()
	req = testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify",
		map[string]string{"phone": "+15550006005", "code": wrong})
	h.ServeVerify(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestVerify_NoOutstandingCode(t *testing.T) {
	h, _, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "Test User", "+15550006006")

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify",
		map[string]string{"phone": "+15550006006", "code": "123456"})
	h.ServeVerify(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestVerify_BlockedUser(t *testing.T) {
	h, _, fixtures, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateMember(ctx, "Blocked", "+15550006007")
	if err := userstore.New(db).SetBlocked(ctx, user.ID, true); err != nil {
		t.Fatalf("SetBlocked failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify",
		map[string]string{"phone": "+15550006007", "code": "123456"})
	h.ServeVerify(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestSignup_QueuesPendingEntry(t *testing.T) {
	h, _, fixtures, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Test Project")

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/signup", map[string]string{
		"full_name":  "New Hire",
		"phone":      "+15550006008",
		"project_id": project.ID.Hex(),
	})
	h.ServeSignup(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusAccepted, rec.Body)
	}

	var resp struct {
		Status string `json:"status"`
		UserID string `json:"user_id"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Status != "pending_approval" {
		t.Errorf("status field: got %q", resp.Status)
	}

	userID, err := primitive.ObjectIDFromHex(resp.UserID)
	if err != nil {
		t.Fatalf("bad user_id in response: %v", err)
	}
	user, err := userstore.New(db).GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if user.IsApproved {
		t.Error("signup must create an unapproved user")
	}
}

func TestSignup_DuplicatePhone(t *testing.T) {
	h, _, fixtures, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateMember(ctx, "Existing", "+15550006009")

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/signup", map[string]string{
		"full_name": "Impostor",
		"phone":     "+15550006009",
	})
	h.ServeSignup(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestSignup_UnknownProject(t *testing.T) {
	h, _, _, _ := setup(t)

	rec := httptest.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/signup", map[string]string{
		"full_name":  "New Hire",
		"phone":      "+15550006010",
		"project_id": primitive.NewObjectID().Hex(),
	})
	h.ServeSignup(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}
