package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/outbox"
	"github.com/summitprep/satprep-backend/internal/repository"
)

// StudentService handles student authentication, self-service account
// operations, and the admin-facing roster.
type StudentService struct {
	studentRepo *repository.StudentRepository
	authSvc     *AuthService
	emitter     outbox.Emitter
	log         zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, authSvc *AuthService, emitter outbox.Emitter, log zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		authSvc:     authSvc,
		emitter:     emitter,
		log:         log.With().Str("component", "student_service").Logger(),
	}
}

// Login authenticates a student by email and password.
func (s *StudentService) Login(ctx context.Context, email, password string) (*model.StudentLoginResponse, error) {
	student, err := s.studentRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.authSvc.CheckPassword(student.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.authSvc.GenerateStudentToken(student.ID, student.Email)
	if err != nil {
		return nil, err
	}

	return &model.StudentLoginResponse{Token: token, Student: *student}, nil
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// List returns a roster page, optionally filtered by a search term matching
// name or email.
func (s *StudentService) List(ctx context.Context, search string, limit, offset int) ([]model.Student, int, error) {
	return s.studentRepo.ListPaginated(ctx, search, limit, offset)
}

// Update applies an admin edit to a student's profile fields.
func (s *StudentService) Update(ctx context.Context, id int, req *model.UpdateStudentRequest) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	student.Name = req.Name
	student.GuardianName = req.GuardianName
	student.GuardianEmail = strings.ToLower(strings.TrimSpace(req.GuardianEmail))
	student.GuardianPhone = req.GuardianPhone
	student.School = req.School
	student.GraduationYear = req.GraduationYear

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Delete removes a student account.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	return s.studentRepo.Delete(ctx, id)
}

// RequestPasswordReset issues a single-use reset token and emails it to the
// student. An unknown email is reported as success so the endpoint cannot be
// used to probe which addresses are registered.
func (s *StudentService) RequestPasswordReset(ctx context.Context, email string) error {
	student, err := s.studentRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		s.log.Debug().Str("email", email).Msg("password reset requested for unknown email")
		return nil
	}

	token, err := s.authSvc.IssuePasswordResetToken(ctx, student.ID)
	if err != nil {
		return err
	}

	ev := outbox.Event{
		Type: outbox.EventPasswordReset,
		To:   student.Email,
		Name: student.Name,
		Data: map[string]string{"token": token},
	}
	if err := s.emitter.Emit(ctx, ev); err != nil {
		s.log.Error().Err(err).Int("student_id", student.ID).Msg("failed to enqueue password reset email")
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and stores the new password.
func (s *StudentService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	studentID, err := s.authSvc.ConsumePasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrResetTokenInvalid) {
			return ErrResetTokenInvalid
		}
		return err
	}

	hash, err := s.authSvc.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.studentRepo.UpdatePassword(ctx, studentID, hash); err != nil {
		return err
	}

	s.log.Info().Int("student_id", studentID).Msg("password reset completed")
	return nil
}
