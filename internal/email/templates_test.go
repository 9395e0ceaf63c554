package email

import (
	"strings"
	"testing"

	"github.com/summitprep/satprep-backend/internal/outbox"
)

const baseURL = "https://app.summitprep.com"

func TestRenderParentalApproval(t *testing.T) {
	r, err := Render(outbox.Event{
		Type: outbox.EventParentalApproval,
		To:   "parent@example.com",
		Name: "Pat Guardian",
		Data: map[string]string{"token": "tok123", "student_name": "Casey"},
	}, baseURL)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !strings.Contains(r.Plain, baseURL+"/approval/tok123/approve") {
		t.Errorf("approve link missing from plain body:\n%s", r.Plain)
	}
	if !strings.Contains(r.Plain, baseURL+"/approval/tok123/decline") {
		t.Errorf("decline link missing from plain body:\n%s", r.Plain)
	}
	if !strings.Contains(r.Subject, "Casey") {
		t.Errorf("student name missing from subject: %q", r.Subject)
	}
}

func TestRenderPasswordReset(t *testing.T) {
	r, err := Render(outbox.Event{
		Type: outbox.EventPasswordReset,
		To:   "kid@example.com",
		Name: "Casey",
		Data: map[string]string{"token": "resettok"},
	}, baseURL)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(r.Plain, "reset-password?token=resettok") {
		t.Errorf("reset link missing:\n%s", r.Plain)
	}
}

func TestRenderPaymentReceipt(t *testing.T) {
	r, err := Render(outbox.Event{
		Type: outbox.EventPaymentReceipt,
		To:   "kid@example.com",
		Name: "Casey",
		Data: map[string]string{"amount": "1039.20", "plan": "SAT Prep Full Course"},
	}, baseURL)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(r.Plain, "$1039.20") {
		t.Errorf("amount missing:\n%s", r.Plain)
	}
	if !strings.Contains(r.Plain, "SAT Prep Full Course") {
		t.Errorf("plan missing:\n%s", r.Plain)
	}
}

func TestRenderCoversAllEventTypes(t *testing.T) {
	types := []outbox.EventType{
		outbox.EventWelcome,
		outbox.EventParentalApproval,
		outbox.EventApprovalResult,
		outbox.EventPasswordReset,
		outbox.EventPaymentReceipt,
	}
	for _, typ := range types {
		r, err := Render(outbox.Event{Type: typ, Name: "X", Data: map[string]string{}}, baseURL)
		if err != nil {
			t.Errorf("Render(%s): %v", typ, err)
			continue
		}
		if r.Subject == "" || r.Plain == "" || r.HTML == "" {
			t.Errorf("Render(%s) produced an empty part", typ)
		}
	}
}

func TestRenderUnknownType(t *testing.T) {
	if _, err := Render(outbox.Event{Type: "telegram"}, baseURL); err == nil {
		t.Error("unknown event type did not error")
	}
}
