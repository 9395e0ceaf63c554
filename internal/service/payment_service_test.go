package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/summitprep/satprep-backend/internal/config"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/outbox"
	"github.com/summitprep/satprep-backend/internal/repository"
)

// fakePaymentStore mimics the repository's status guards in memory.
type fakePaymentStore struct {
	students map[int]*model.Student
}

func (f *fakePaymentStore) byIntent(intentID string) *model.Student {
	for _, s := range f.students {
		if s.StripePaymentIntentID == intentID {
			return s
		}
	}
	return nil
}

func (f *fakePaymentStore) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, repository.ErrStudentNotFound
	}
	return s, nil
}

func (f *fakePaymentStore) BeginCheckout(ctx context.Context, id int, customerID, paymentIntentID string) error {
	s, ok := f.students[id]
	if !ok {
		return nil
	}
	if s.PaymentStatus == model.PaymentPending || s.PaymentStatus == model.PaymentFailed {
		s.PaymentStatus = model.PaymentProcessing
		s.StripeCustomerID = customerID
		s.StripePaymentIntentID = paymentIntentID
	}
	return nil
}

func (f *fakePaymentStore) AttachPaymentIntent(ctx context.Context, id int, customerID, paymentIntentID string) error {
	s, ok := f.students[id]
	if !ok {
		return nil
	}
	s.StripePaymentIntentID = paymentIntentID
	if customerID != "" {
		s.StripeCustomerID = customerID
	}
	return nil
}

func (f *fakePaymentStore) markPaid(s *model.Student, amountCents int64, paidAt time.Time) {
	s.PaymentStatus = model.PaymentSucceeded
	s.HasPaidSpecialOffer = true
	if s.PaymentDate == nil {
		s.PaymentDate = &paidAt
	}
	if s.PaymentAmountCents == nil {
		s.PaymentAmountCents = &amountCents
	}
}

func (f *fakePaymentStore) MarkPaymentSucceeded(ctx context.Context, paymentIntentID string, amountCents int64, paidAt time.Time) (int, error) {
	s := f.byIntent(paymentIntentID)
	if s == nil || s.PaymentStatus == model.PaymentSucceeded {
		return 0, repository.ErrStudentNotFound
	}
	f.markPaid(s, amountCents, paidAt)
	return s.ID, nil
}

func (f *fakePaymentStore) MarkPaymentSucceededByID(ctx context.Context, id int, amountCents int64, paidAt time.Time) (bool, error) {
	s, ok := f.students[id]
	if !ok || s.PaymentStatus == model.PaymentSucceeded {
		return false, nil
	}
	f.markPaid(s, amountCents, paidAt)
	return true, nil
}

func (f *fakePaymentStore) MarkPaymentFailed(ctx context.Context, paymentIntentID string) (int, error) {
	s := f.byIntent(paymentIntentID)
	if s == nil || (s.PaymentStatus != model.PaymentPending && s.PaymentStatus != model.PaymentProcessing) {
		return 0, repository.ErrStudentNotFound
	}
	s.PaymentStatus = model.PaymentFailed
	return s.ID, nil
}

func (f *fakePaymentStore) MarkPaymentCanceled(ctx context.Context, paymentIntentID string) (int, error) {
	s := f.byIntent(paymentIntentID)
	if s == nil || (s.PaymentStatus != model.PaymentPending && s.PaymentStatus != model.PaymentProcessing) {
		return 0, repository.ErrStudentNotFound
	}
	s.PaymentStatus = model.PaymentCanceled
	return s.ID, nil
}

func (f *fakePaymentStore) SettleFreeEnrollment(ctx context.Context, id int) error {
	if s, ok := f.students[id]; ok {
		f.markPaid(s, 0, time.Now())
	}
	return nil
}

type fakeUsageSettler struct {
	settled map[string]model.UsagePaymentStatus
}

func (f *fakeUsageSettler) SettleUsageByPaymentIntent(ctx context.Context, paymentIntentID string, status model.UsagePaymentStatus) error {
	if f.settled == nil {
		f.settled = make(map[string]model.UsagePaymentStatus)
	}
	f.settled[paymentIntentID] = status
	return nil
}

type captureEmitter struct {
	events []outbox.Event
}

func (c *captureEmitter) Emit(ctx context.Context, ev outbox.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func newWebhookTestService(store *fakePaymentStore) (*PaymentService, *fakeUsageSettler, *captureEmitter) {
	usages := &fakeUsageSettler{}
	emitter := &captureEmitter{}
	svc := &PaymentService{
		studentRepo: store,
		usages:      usages,
		emitter:     emitter,
		cfg:         &config.Config{},
		log:         zerolog.Nop(),
	}
	return svc, usages, emitter
}

func stripeEvent(t *testing.T, payload map[string]interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshaling event payload: %v", err)
	}
	return stripe.Event{Data: &stripe.EventData{Raw: raw}}
}

func processingStudent(id int, intentID string) *model.Student {
	return &model.Student{
		ID:                    id,
		Email:                 "kid@example.com",
		Name:                  "Kid",
		PaymentStatus:         model.PaymentProcessing,
		StripePaymentIntentID: intentID,
	}
}

func TestCheckoutCompletedSettlesPayment(t *testing.T) {
	// After CreateCheckout the intent id is still empty: Stripe assigns it at
	// submission. The completed event must both backfill it and mark paid.
	store := &fakePaymentStore{students: map[int]*model.Student{
		7: processingStudent(7, ""),
	}}
	svc, usages, emitter := newWebhookTestService(store)

	event := stripeEvent(t, map[string]interface{}{
		"client_reference_id": "7",
		"payment_status":      "paid",
		"amount_total":        103920,
		"payment_intent":      map[string]interface{}{"id": "pi_1"},
	})
	if err := svc.handleCheckoutCompleted(context.Background(), event); err != nil {
		t.Fatalf("handleCheckoutCompleted: %v", err)
	}

	s := store.students[7]
	if s.PaymentStatus != model.PaymentSucceeded {
		t.Errorf("status = %s, want succeeded", s.PaymentStatus)
	}
	if !s.HasPaidSpecialOffer {
		t.Error("has_paid_special_offer not set")
	}
	if s.StripePaymentIntentID != "pi_1" {
		t.Errorf("intent id = %q, want pi_1", s.StripePaymentIntentID)
	}
	if s.PaymentAmountCents == nil || *s.PaymentAmountCents != 103920 {
		t.Errorf("amount = %v, want 103920", s.PaymentAmountCents)
	}
	if usages.settled["pi_1"] != model.UsagePaid {
		t.Errorf("usage settle = %q, want paid", usages.settled["pi_1"])
	}
	if len(emitter.events) != 1 {
		t.Fatalf("receipts = %d, want 1", len(emitter.events))
	}
	if emitter.events[0].To != "kid@example.com" {
		t.Errorf("receipt to = %q", emitter.events[0].To)
	}
}

func TestCheckoutCompletedUnpaidDefersToIntentEvents(t *testing.T) {
	// Async payment methods complete the session before the charge clears.
	store := &fakePaymentStore{students: map[int]*model.Student{
		7: processingStudent(7, ""),
	}}
	svc, _, emitter := newWebhookTestService(store)

	event := stripeEvent(t, map[string]interface{}{
		"client_reference_id": "7",
		"payment_status":      "unpaid",
		"amount_total":        103920,
		"payment_intent":      map[string]interface{}{"id": "pi_1"},
	})
	if err := svc.handleCheckoutCompleted(context.Background(), event); err != nil {
		t.Fatalf("handleCheckoutCompleted: %v", err)
	}

	s := store.students[7]
	if s.PaymentStatus != model.PaymentProcessing {
		t.Errorf("status = %s, want processing", s.PaymentStatus)
	}
	if s.StripePaymentIntentID != "pi_1" {
		t.Errorf("intent id = %q, want pi_1 backfilled", s.StripePaymentIntentID)
	}
	if len(emitter.events) != 0 {
		t.Errorf("receipts = %d, want 0", len(emitter.events))
	}

	// The charge clears later and arrives as payment_intent.succeeded.
	intentEvent := stripeEvent(t, map[string]interface{}{
		"id":              "pi_1",
		"amount_received": 103920,
	})
	if err := svc.handlePaymentIntent(context.Background(), intentEvent, true); err != nil {
		t.Fatalf("handlePaymentIntent: %v", err)
	}
	if s.PaymentStatus != model.PaymentSucceeded {
		t.Errorf("status = %s, want succeeded", s.PaymentStatus)
	}
	if len(emitter.events) != 1 {
		t.Errorf("receipts = %d, want 1", len(emitter.events))
	}
}

func TestSuccessAppliesOnceAcrossEventOrderings(t *testing.T) {
	// Stripe delivers checkout.session.completed and payment_intent.succeeded
	// for the same charge, then redelivers both on retry. One transition, one
	// receipt.
	store := &fakePaymentStore{students: map[int]*model.Student{
		7: processingStudent(7, ""),
	}}
	svc, _, emitter := newWebhookTestService(store)

	completed := stripeEvent(t, map[string]interface{}{
		"client_reference_id": "7",
		"payment_status":      "paid",
		"amount_total":        103920,
		"payment_intent":      map[string]interface{}{"id": "pi_1"},
	})
	succeeded := stripeEvent(t, map[string]interface{}{
		"id":              "pi_1",
		"amount_received": 103920,
	})

	for i := 0; i < 2; i++ {
		if err := svc.handleCheckoutCompleted(context.Background(), completed); err != nil {
			t.Fatalf("completed delivery %d: %v", i, err)
		}
		if err := svc.handlePaymentIntent(context.Background(), succeeded, true); err != nil {
			t.Fatalf("succeeded delivery %d: %v", i, err)
		}
	}

	if got := store.students[7].PaymentStatus; got != model.PaymentSucceeded {
		t.Errorf("status = %s, want succeeded", got)
	}
	if len(emitter.events) != 1 {
		t.Errorf("receipts = %d, want exactly 1", len(emitter.events))
	}
}

func TestFailureEventNeverClawsBackSuccess(t *testing.T) {
	paid := processingStudent(7, "pi_1")
	paid.PaymentStatus = model.PaymentSucceeded
	store := &fakePaymentStore{students: map[int]*model.Student{7: paid}}
	svc, usages, _ := newWebhookTestService(store)

	failed := stripeEvent(t, map[string]interface{}{"id": "pi_1"})
	if err := svc.handlePaymentIntent(context.Background(), failed, false); err != nil {
		t.Fatalf("handlePaymentIntent: %v", err)
	}

	if got := store.students[7].PaymentStatus; got != model.PaymentSucceeded {
		t.Errorf("status = %s, want succeeded untouched", got)
	}
	if len(usages.settled) != 0 {
		t.Errorf("usage settled on ignored failure: %v", usages.settled)
	}
}

func TestPaymentIntentFailureAndCancel(t *testing.T) {
	store := &fakePaymentStore{students: map[int]*model.Student{
		7: processingStudent(7, "pi_1"),
		8: processingStudent(8, "pi_2"),
	}}
	svc, usages, _ := newWebhookTestService(store)

	failed := stripeEvent(t, map[string]interface{}{"id": "pi_1"})
	if err := svc.handlePaymentIntent(context.Background(), failed, false); err != nil {
		t.Fatalf("failure event: %v", err)
	}
	if got := store.students[7].PaymentStatus; got != model.PaymentFailed {
		t.Errorf("student 7 status = %s, want failed", got)
	}
	if usages.settled["pi_1"] != model.UsageFailed {
		t.Errorf("usage settle = %q, want failed", usages.settled["pi_1"])
	}

	canceled := stripeEvent(t, map[string]interface{}{"id": "pi_2"})
	if err := svc.handlePaymentIntentCanceled(context.Background(), canceled); err != nil {
		t.Fatalf("cancel event: %v", err)
	}
	if got := store.students[8].PaymentStatus; got != model.PaymentCanceled {
		t.Errorf("student 8 status = %s, want canceled", got)
	}
}

func TestPlanPrice(t *testing.T) {
	for plan, want := range model.PlanPriceCents {
		got, err := PlanPrice(plan)
		if err != nil {
			t.Errorf("PlanPrice(%s) error: %v", plan, err)
		}
		if got != want {
			t.Errorf("PlanPrice(%s) = %d, want %d", plan, got, want)
		}
	}

	if _, err := PlanPrice("never_a_plan"); !errors.Is(err, ErrUnknownPlan) {
		t.Errorf("unknown plan err = %v, want ErrUnknownPlan", err)
	}
}

func TestPlanLabel(t *testing.T) {
	for _, plan := range []model.PlanType{model.PlanFullCourse, model.PlanSpecialOffer, model.PlanDiagnostic} {
		if planLabel(plan) == "" {
			t.Errorf("planLabel(%s) is empty", plan)
		}
	}
}
