package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/summitprep/satprep-backend/internal/config"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/outbox"
	"github.com/summitprep/satprep-backend/internal/repository"
)

// Payment errors.
var (
	ErrUnknownPlan        = errors.New("unknown plan type")
	ErrWebhookSignature   = errors.New("webhook signature verification failed")
	ErrPaymentNotEligible = errors.New("payment already completed")
	ErrStripeUnavailable  = errors.New("stripe is not configured")
)

// paymentStore is the slice of the student repository the payment flow
// depends on. Narrowed to an interface so the webhook transitions are
// testable without Postgres.
type paymentStore interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
	BeginCheckout(ctx context.Context, id int, customerID, paymentIntentID string) error
	AttachPaymentIntent(ctx context.Context, id int, customerID, paymentIntentID string) error
	MarkPaymentSucceeded(ctx context.Context, paymentIntentID string, amountCents int64, paidAt time.Time) (int, error)
	MarkPaymentSucceededByID(ctx context.Context, id int, amountCents int64, paidAt time.Time) (bool, error)
	MarkPaymentFailed(ctx context.Context, paymentIntentID string) (int, error)
	MarkPaymentCanceled(ctx context.Context, paymentIntentID string) (int, error)
	SettleFreeEnrollment(ctx context.Context, id int) error
}

// usageSettler settles coupon usage rows from webhook events.
type usageSettler interface {
	SettleUsageByPaymentIntent(ctx context.Context, paymentIntentID string, status model.UsagePaymentStatus) error
}

// PaymentService creates Stripe checkout sessions and settles payment state
// from webhook events. Student payment status only moves forward: a paid
// student is never downgraded by a late failure event.
type PaymentService struct {
	studentRepo paymentStore
	couponSvc   *CouponService
	usages      usageSettler
	emitter     outbox.Emitter
	cfg         *config.Config
	log         zerolog.Logger
}

// NewPaymentService creates a PaymentService and installs the Stripe API key.
func NewPaymentService(
	studentRepo *repository.StudentRepository,
	couponSvc *CouponService,
	emitter outbox.Emitter,
	cfg *config.Config,
	log zerolog.Logger,
) *PaymentService {
	stripe.Key = cfg.StripeSecretKey
	return &PaymentService{
		studentRepo: studentRepo,
		couponSvc:   couponSvc,
		usages:      couponSvc.couponRepo,
		emitter:     emitter,
		cfg:         cfg,
		log:         log.With().Str("component", "payment_service").Logger(),
	}
}

// PlanPrice resolves the list price for a plan.
func PlanPrice(plan model.PlanType) (int64, error) {
	price, ok := model.PlanPriceCents[plan]
	if !ok {
		return 0, ErrUnknownPlan
	}
	return price, nil
}

// planLabel is the line item description shown on the Stripe checkout page.
func planLabel(plan model.PlanType) string {
	switch plan {
	case model.PlanFullCourse:
		return "SAT Prep Full Course"
	case model.PlanSpecialOffer:
		return "SAT Prep Special Offer"
	case model.PlanDiagnostic:
		return "Diagnostic Test"
	default:
		return "SAT Prep"
	}
}

// CreateCheckout creates a Stripe checkout session for a plan, optionally
// reduced by a coupon. A coupon that covers the full price skips Stripe
// entirely and marks the student paid.
func (s *PaymentService) CreateCheckout(ctx context.Context, studentID int, req *model.CreateCheckoutRequest) (*model.CheckoutSessionResponse, error) {
	if s.cfg.StripeSecretKey == "" {
		return nil, ErrStripeUnavailable
	}

	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.PaymentStatus == model.PaymentSucceeded {
		return nil, ErrPaymentNotEligible
	}

	amount, err := PlanPrice(req.PlanType)
	if err != nil {
		return nil, err
	}

	var usage *model.CouponUsage
	if req.CouponCode != "" {
		usage, err = s.couponSvc.Redeem(ctx, studentID, req.CouponCode, string(req.PlanType), amount)
		if err != nil {
			return nil, err
		}
		amount = usage.FinalAmountCents
	}

	// Fully covered by the coupon, nothing to charge.
	if amount == 0 {
		if err := s.studentRepo.SettleFreeEnrollment(ctx, studentID); err != nil {
			return nil, err
		}
		s.emitReceipt(ctx, student, 0, string(req.PlanType))
		return &model.CheckoutSessionResponse{AmountCents: 0}, nil
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.cfg.CheckoutSuccessURL),
		CancelURL:         stripe.String(s.cfg.CheckoutCancelURL),
		CustomerEmail:     stripe.String(student.Email),
		ClientReferenceID: stripe.String(strconv.Itoa(student.ID)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(planLabel(req.PlanType)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"student_id": strconv.Itoa(student.ID),
			"plan_type":  string(req.PlanType),
		},
	}
	if usage != nil {
		params.Metadata["coupon_usage_id"] = strconv.Itoa(usage.ID)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}

	paymentIntentID := ""
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}
	if err := s.studentRepo.BeginCheckout(ctx, student.ID, customerIDOf(sess), paymentIntentID); err != nil {
		return nil, err
	}
	if usage != nil {
		if err := s.couponSvc.AttachStripeRefs(ctx, usage.ID, sess.ID, paymentIntentID); err != nil {
			s.log.Error().Err(err).Int("usage_id", usage.ID).Msg("failed to attach stripe refs to coupon usage")
		}
	}

	s.log.Info().Int("student_id", student.ID).Str("session_id", sess.ID).
		Int64("amount_cents", amount).Msg("checkout session created")

	return &model.CheckoutSessionResponse{
		SessionID:   sess.ID,
		CheckoutURL: sess.URL,
		AmountCents: amount,
	}, nil
}

func customerIDOf(sess *stripe.CheckoutSession) string {
	if sess.Customer != nil {
		return sess.Customer.ID
	}
	return ""
}

// HandleWebhook verifies the event signature and dispatches by event type.
// Unknown event types are acknowledged without action so Stripe stops
// retrying them.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.cfg.StripeWebhookSecret)
	if err != nil {
		return ErrWebhookSignature
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "payment_intent.succeeded":
		return s.handlePaymentIntent(ctx, event, true)
	case "payment_intent.payment_failed":
		return s.handlePaymentIntent(ctx, event, false)
	case "payment_intent.canceled":
		return s.handlePaymentIntentCanceled(ctx, event)
	case "checkout.session.expired":
		return s.handleCheckoutExpired(ctx, event)
	default:
		s.log.Debug().Str("type", string(event.Type)).Msg("ignoring webhook event")
		return nil
	}
}

func (s *PaymentService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("unmarshaling checkout session: %w", err)
	}

	studentID, err := strconv.Atoi(sess.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("bad client reference id %q", sess.ClientReferenceID)
	}

	paymentIntentID := ""
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}
	// Stripe assigns the intent at submission, after the session was created,
	// so the student row still carries an empty intent id. Backfill it here
	// regardless of status so the payment_intent events can be matched.
	if paymentIntentID != "" {
		if err := s.studentRepo.AttachPaymentIntent(ctx, studentID, customerIDOf(&sess), paymentIntentID); err != nil {
			s.log.Warn().Err(err).Int("student_id", studentID).Msg("could not record payment intent from completed session")
		}
		if usageID := sess.Metadata["coupon_usage_id"]; usageID != "" {
			if id, convErr := strconv.Atoi(usageID); convErr == nil {
				if err := s.couponSvc.AttachStripeRefs(ctx, id, sess.ID, paymentIntentID); err != nil {
					s.log.Warn().Err(err).Str("usage_id", usageID).Msg("could not attach payment intent to coupon usage")
				}
			}
		}
	}

	// Async payment methods complete the session before the charge clears;
	// those settle through the payment_intent events instead.
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil
	}

	transitioned, err := s.studentRepo.MarkPaymentSucceededByID(ctx, studentID, sess.AmountTotal, time.Now())
	if err != nil {
		return err
	}
	if !transitioned {
		return nil
	}

	if paymentIntentID != "" {
		if err := s.usages.SettleUsageByPaymentIntent(ctx, paymentIntentID, model.UsagePaid); err != nil {
			s.log.Warn().Err(err).Str("payment_intent", paymentIntentID).Msg("could not settle coupon usage")
		}
	}
	if student, err := s.studentRepo.GetByID(ctx, studentID); err == nil {
		s.emitReceipt(ctx, student, sess.AmountTotal, sess.Metadata["plan_type"])
	}
	s.log.Info().Int("student_id", studentID).Str("session_id", sess.ID).
		Int64("amount_cents", sess.AmountTotal).Msg("payment succeeded")
	return nil
}

func (s *PaymentService) handlePaymentIntent(ctx context.Context, event stripe.Event, succeeded bool) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("unmarshaling payment intent: %w", err)
	}

	if succeeded {
		studentID, err := s.studentRepo.MarkPaymentSucceeded(ctx, intent.ID, intent.AmountReceived, time.Now())
		if err != nil {
			if errors.Is(err, repository.ErrStudentNotFound) {
				// Retried delivery for a student already settled, or an intent
				// created outside this system. Acknowledge either way.
				s.log.Debug().Str("payment_intent", intent.ID).Msg("payment success event matched no pending student")
				return nil
			}
			return err
		}
		if err := s.usages.SettleUsageByPaymentIntent(ctx, intent.ID, model.UsagePaid); err != nil {
			s.log.Warn().Err(err).Str("payment_intent", intent.ID).Msg("could not settle coupon usage")
		}
		if student, err := s.studentRepo.GetByID(ctx, studentID); err == nil {
			s.emitReceipt(ctx, student, intent.AmountReceived, intent.Metadata["plan_type"])
		}
		s.log.Info().Int("student_id", studentID).Str("payment_intent", intent.ID).
			Int64("amount_cents", intent.AmountReceived).Msg("payment succeeded")
		return nil
	}

	studentID, err := s.studentRepo.MarkPaymentFailed(ctx, intent.ID)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			s.log.Debug().Str("payment_intent", intent.ID).Msg("payment failure event matched no pending student")
			return nil
		}
		return err
	}
	if err := s.usages.SettleUsageByPaymentIntent(ctx, intent.ID, model.UsageFailed); err != nil {
		s.log.Warn().Err(err).Str("payment_intent", intent.ID).Msg("could not settle coupon usage")
	}
	s.log.Info().Int("student_id", studentID).Str("payment_intent", intent.ID).Msg("payment failed")
	return nil
}

func (s *PaymentService) handlePaymentIntentCanceled(ctx context.Context, event stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("unmarshaling payment intent: %w", err)
	}
	if _, err := s.studentRepo.MarkPaymentCanceled(ctx, intent.ID); err != nil && !errors.Is(err, repository.ErrStudentNotFound) {
		return err
	}
	return nil
}

func (s *PaymentService) handleCheckoutExpired(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("unmarshaling checkout session: %w", err)
	}
	if sess.PaymentIntent == nil {
		return nil
	}
	if _, err := s.studentRepo.MarkPaymentCanceled(ctx, sess.PaymentIntent.ID); err != nil && !errors.Is(err, repository.ErrStudentNotFound) {
		return err
	}
	return nil
}

func (s *PaymentService) emitReceipt(ctx context.Context, student *model.Student, amountCents int64, planType string) {
	ev := outbox.Event{
		Type: outbox.EventPaymentReceipt,
		To:   student.Email,
		Name: student.Name,
		Data: map[string]string{
			"amount": fmt.Sprintf("%.2f", float64(amountCents)/100),
			"plan":   planLabel(model.PlanType(planType)),
		},
	}
	if err := s.emitter.Emit(ctx, ev); err != nil {
		s.log.Error().Err(err).Int("student_id", student.ID).Msg("failed to enqueue payment receipt")
	}
}
