package otp

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestVerify_Valid(t *testing.T) {
	res := Verify("482913", "482913", base.Add(5*time.Minute), base.Add(4*time.Minute+59*time.Second))
	if !res.Valid {
		t.Fatalf("expected valid, got reason %q", res.Reason)
	}
	if res.Reason != "" {
		t.Errorf("Reason: got %q, want empty", res.Reason)
	}
}

func TestVerify_Expired(t *testing.T) {
	res := Verify("482913", "482913", base.Add(5*time.Minute), base.Add(5*time.Minute+time.Second))
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if res.Reason != ReasonExpired {
		t.Errorf("Reason: got %q, want %q", res.Reason, ReasonExpired)
	}
}

func TestVerify_ExactExpiryInstantStillValid(t *testing.T) {
	// Expiry is exclusive: the code is good through the expiry instant
	// itself and invalid only strictly after it.
	res := Verify("482913", "482913", base.Add(5*time.Minute), base.Add(5*time.Minute))
	if !res.Valid {
		t.Errorf("expected valid at exact expiry instant, got reason %q", res.Reason)
	}
}

func TestVerify_Mismatch(t *testing.T) {
	res := Verify("482914", "482913", base.Add(5*time.Minute), base.Add(time.Minute))
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if res.Reason != ReasonMismatch {
		t.Errorf("Reason: got %q, want %q", res.Reason, ReasonMismatch)
	}
}

func TestVerify_MismatchWinsOverExpiry(t *testing.T) {
	// A wrong code reports mismatch regardless of expiry state.
	res := Verify("000000", "482913", base.Add(-time.Hour), base)
	if res.Reason != ReasonMismatch {
		t.Errorf("Reason: got %q, want %q", res.Reason, ReasonMismatch)
	}
}

func TestVerify_Missing(t *testing.T) {
	tests := []struct {
		name    string
		entered string
		stored  string
	}{
		{"empty entered", "", "482913"},
		{"empty stored", "482913", ""},
		{"both empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Verify(tt.entered, tt.stored, base.Add(5*time.Minute), base)
			if res.Valid {
				t.Fatal("expected invalid")
			}
			if res.Reason != ReasonMissing {
				t.Errorf("Reason: got %q, want %q", res.Reason, ReasonMissing)
			}
		})
	}
}

func TestVerify_ExpiryRepresentations(t *testing.T) {
	exp := base.Add(5 * time.Minute)
	ptr := exp

	valid := []struct {
		name string
		v    any
	}{
		{"time.Time", exp},
		{"*time.Time", &ptr},
		{"primitive.DateTime", primitive.NewDateTimeFromTime(exp)},
		{"RFC3339 string", exp.Format(time.RFC3339)},
		{"unix millis", exp.UnixMilli()},
	}
	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			res := Verify("482913", "482913", tt.v, base)
			if !res.Valid {
				t.Errorf("expected valid for %s, got reason %q", tt.name, res.Reason)
			}
		})
	}

	invalid := []struct {
		name string
		v    any
	}{
		{"nil", nil},
		{"nil *time.Time", (*time.Time)(nil)},
		{"garbage string", "not-a-date"},
		{"float", 1.5},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			res := Verify("482913", "482913", tt.v, base)
			if res.Valid {
				t.Fatal("expected invalid")
			}
			if res.Reason != ReasonInvalidExpiration {
				t.Errorf("Reason: got %q, want %q", res.Reason, ReasonInvalidExpiration)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, exp := Generate(base)
		if len(code) != CodeLength {
			t.Fatalf("code length: got %d, want %d", len(code), CodeLength)
		}
		if strings.HasPrefix(code, "0") {
			t.Fatalf("code %q has a leading zero; generated range is 100000-999999", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
		if want := base.Add(Lifetime); !exp.Equal(want) {
			t.Fatalf("expiry: got %v, want %v", exp, want)
		}
	}
}

func TestGenerate_CodesVary(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, _ := Generate(base)
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("expected distinct codes across generations")
	}
}
