package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/booking"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/outbox"
	"github.com/summitprep/satprep-backend/internal/repository"
)

// Registration errors.
var (
	ErrEmailTaken        = errors.New("email already registered")
	ErrApprovalDecided   = errors.New("approval already decided")
	ErrApprovalNotNeeded = errors.New("approval is not pending")
)

// RegistrationService handles the public signup flow and the parental
// approval lifecycle.
type RegistrationService struct {
	studentRepo    *repository.StudentRepository
	ambassadorRepo *repository.AmbassadorRepository
	scheduleSvc    *ScheduleService
	authSvc        *AuthService
	bookingClient  *booking.Client
	emitter        outbox.Emitter
	log            zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	studentRepo *repository.StudentRepository,
	ambassadorRepo *repository.AmbassadorRepository,
	scheduleSvc *ScheduleService,
	authSvc *AuthService,
	bookingClient *booking.Client,
	emitter outbox.Emitter,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		studentRepo:    studentRepo,
		ambassadorRepo: ambassadorRepo,
		scheduleSvc:    scheduleSvc,
		authSvc:        authSvc,
		bookingClient:  bookingClient,
		emitter:        emitter,
		log:            log.With().Str("component", "registration_service").Logger(),
	}
}

// Register creates a student account. The selected class time and diagnostic
// date are validated against active offerings under the same policy as later
// schedule changes. Everything after the insert is best effort: email
// delivery, referral attribution, and booking-platform sync never fail the
// signup.
func (s *RegistrationService) Register(ctx context.Context, req *model.RegisterStudentRequest) (*model.Student, error) {
	if err := s.scheduleSvc.ValidateSelection(ctx, model.OfferingClassTime, req.ClassTime); err != nil {
		return nil, err
	}
	if err := s.scheduleSvc.ValidateSelection(ctx, model.OfferingDiagnosticTest, req.DiagnosticTestDate); err != nil {
		return nil, err
	}

	hash, err := s.authSvc.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		Name:                   req.Name,
		Email:                  strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:           hash,
		GuardianName:           req.GuardianName,
		GuardianEmail:          strings.ToLower(strings.TrimSpace(req.GuardianEmail)),
		GuardianPhone:          req.GuardianPhone,
		School:                 req.School,
		GraduationYear:         req.GraduationYear,
		AmbassadorCode:         strings.ToUpper(strings.TrimSpace(req.AmbassadorCode)),
		ClassTime:              req.ClassTime,
		DiagnosticTestDate:     req.DiagnosticTestDate,
		ParentalApprovalStatus: model.ApprovalPending,
		ParentalApprovalToken:  uuid.NewString(),
		PaymentStatus:          model.PaymentPending,
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if student.AmbassadorCode != "" {
		matched, err := s.ambassadorRepo.AttributeReferral(ctx, student.AmbassadorCode)
		if err != nil {
			s.log.Error().Err(err).Str("code", student.AmbassadorCode).Msg("referral attribution failed")
		} else if !matched {
			s.log.Info().Str("code", student.AmbassadorCode).Msg("referral code matched no active ambassador")
		}
	}

	s.emit(ctx, outbox.Event{
		Type: outbox.EventWelcome,
		To:   student.Email,
		Name: student.Name,
	})
	s.emit(ctx, outbox.Event{
		Type: outbox.EventParentalApproval,
		To:   student.GuardianEmail,
		Name: student.GuardianName,
		Data: map[string]string{
			"student_name": student.Name,
			"token":        student.ParentalApprovalToken,
		},
	})

	s.syncBookingCustomer(ctx, student)

	s.log.Info().Int("student_id", student.ID).Str("email", student.Email).Msg("student registered")
	return student, nil
}

// DecideApproval consumes a parental approval token. The token predicate
// makes the decision single use: a second click on either link fails.
func (s *RegistrationService) DecideApproval(ctx context.Context, token string, approve bool) (*model.Student, error) {
	status := model.ApprovalApproved
	if !approve {
		status = model.ApprovalDeclined
	}

	student, err := s.studentRepo.ConsumeApprovalToken(ctx, token, status)
	if err != nil {
		if errors.Is(err, repository.ErrApprovalConsumed) {
			return nil, ErrApprovalDecided
		}
		return nil, err
	}

	s.emit(ctx, outbox.Event{
		Type: outbox.EventApprovalResult,
		To:   student.Email,
		Name: student.Name,
		Data: map[string]string{"decision": string(status)},
	})

	s.log.Info().Int("student_id", student.ID).Str("status", string(status)).Msg("parental approval decided")
	return student, nil
}

// ResendApproval rotates the approval token and re-sends the guardian email.
// Only pending students may request a resend.
func (s *RegistrationService) ResendApproval(ctx context.Context, studentID int) error {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if student.ParentalApprovalStatus != model.ApprovalPending {
		return ErrApprovalNotNeeded
	}

	token := uuid.NewString()
	if err := s.studentRepo.ResetApprovalToken(ctx, student.ID, token); err != nil {
		return err
	}

	s.emit(ctx, outbox.Event{
		Type: outbox.EventParentalApproval,
		To:   student.GuardianEmail,
		Name: student.GuardianName,
		Data: map[string]string{
			"student_name": student.Name,
			"token":        token,
		},
	})
	return nil
}

func (s *RegistrationService) syncBookingCustomer(ctx context.Context, student *model.Student) {
	id, err := s.bookingClient.CreateCustomer(ctx, student.Name, student.Email, student.GuardianPhone)
	if err != nil {
		if !errors.Is(err, booking.ErrNotConfigured) {
			s.log.Warn().Err(err).Int("student_id", student.ID).Msg("booking customer sync failed")
		}
		return
	}
	if err := s.studentRepo.SetBookingCustomerID(ctx, student.ID, id); err != nil {
		s.log.Error().Err(err).Int("student_id", student.ID).Msg("failed to store booking customer id")
	}
}

func (s *RegistrationService) emit(ctx context.Context, ev outbox.Event) {
	if err := s.emitter.Emit(ctx, ev); err != nil {
		s.log.Error().Err(err).Str("type", string(ev.Type)).Msg("failed to enqueue outbox event")
	}
}
