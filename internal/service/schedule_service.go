package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/config"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/repository"
)

// Schedule change errors.
var (
	ErrInvalidOption       = errors.New("option is not currently offered")
	ErrChangeLimitExceeded = errors.New("schedule change limit exceeded")
)

// legacyOfferingNames are schedule values that predate the offerings table.
// Students carrying one of these may still change away from (or briefly back
// to) them even though no offering row exists. Remove once the historical
// records are backfilled into offerings.
var legacyOfferingNames = map[model.OfferingKind][]string{
	model.OfferingClassTime: {
		"Saturday Morning (Legacy)",
		"Sunday Afternoon (Legacy)",
	},
	model.OfferingDiagnosticTest: {
		"January Diagnostic (Legacy)",
	},
}

// OptionValidity is the tri-state outcome of validating a schedule value
// against the active offerings. Unknown means the lookup itself failed and
// the configured degraded-mode policy decides the outcome.
type OptionValidity int

const (
	OptionInvalid OptionValidity = iota
	OptionValid
	OptionUnknown
)

// isLegacyName reports whether the value appears in the legacy fallback list.
func isLegacyName(kind model.OfferingKind, value string) bool {
	for _, name := range legacyOfferingNames[kind] {
		if name == value {
			return true
		}
	}
	return false
}

// checkChangeAllowed applies the pure schedule-change rules. A nil error with
// noop=true means the request equals the current value and must return
// current state unchanged rather than fail.
func checkChangeAllowed(current, requested string, changeCount, limit int) (noop bool, err error) {
	if requested == current {
		return true, nil
	}
	if changeCount >= limit {
		return false, ErrChangeLimitExceeded
	}
	return false, nil
}

// resolveValidity folds the tri-state lookup outcome and the fail-open policy
// into a final allow/deny.
func resolveValidity(v OptionValidity, failOpen bool) error {
	switch v {
	case OptionValid:
		return nil
	case OptionUnknown:
		if failOpen {
			return nil
		}
		return ErrInvalidOption
	default:
		return ErrInvalidOption
	}
}

// ScheduleService enforces the admission-limited schedule-change ruleset.
type ScheduleService struct {
	studentRepo  *repository.StudentRepository
	offeringRepo *repository.OfferingRepository
	cfg          *config.Config
	log          zerolog.Logger
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(studentRepo *repository.StudentRepository, offeringRepo *repository.OfferingRepository, cfg *config.Config, log zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		studentRepo:  studentRepo,
		offeringRepo: offeringRepo,
		cfg:          cfg,
		log:          log.With().Str("component", "schedule_service").Logger(),
	}
}

// validateOption checks the requested value against active offerings and the
// legacy fallback list, returning Unknown when the store lookup fails.
func (s *ScheduleService) validateOption(ctx context.Context, kind model.OfferingKind, value string) OptionValidity {
	if isLegacyName(kind, value) {
		return OptionValid
	}

	active, err := s.offeringRepo.IsActiveName(ctx, kind, value)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Str("value", value).
			Msg("offering lookup failed, applying degraded-mode policy")
		return OptionUnknown
	}
	if active {
		return OptionValid
	}
	return OptionInvalid
}

// GetStudent loads the student whose schedule is being read or changed.
func (s *ScheduleService) GetStudent(ctx context.Context, studentID int) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, studentID)
}

// ValidateSelection checks a signup-time schedule selection under the same
// policy as later changes.
func (s *ScheduleService) ValidateSelection(ctx context.Context, kind model.OfferingKind, value string) error {
	return resolveValidity(s.validateOption(ctx, kind, value), s.cfg.ScheduleFailOpen)
}

// RequestChange moves a student to a different class time or diagnostic test
// date, enforcing the per-dimension change cap and active-option validation.
// Equal new/current values are a no-op success: the current state is returned
// and the counter is not consumed.
func (s *ScheduleService) RequestChange(ctx context.Context, studentID int, kind model.OfferingKind, newValue string) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	current, count := student.ClassTime, student.ClassTimeChangeCount
	if kind == model.OfferingDiagnosticTest {
		current, count = student.DiagnosticTestDate, student.DiagnosticChangeCount
	}

	noop, err := checkChangeAllowed(current, newValue, count, s.cfg.ScheduleChangeLimit)
	if err != nil {
		return nil, err
	}
	if noop {
		return student, nil
	}

	if err := resolveValidity(s.validateOption(ctx, kind, newValue), s.cfg.ScheduleFailOpen); err != nil {
		return nil, err
	}

	updated, err := s.studentRepo.ApplyScheduleChange(ctx, studentID, kind, model.ScheduleChange{
		From:      current,
		To:        newValue,
		ChangedAt: time.Now().UTC(),
	}, s.cfg.ScheduleChangeLimit)
	if err != nil {
		// The guarded update lost a race against a concurrent change that
		// consumed the last slot.
		if errors.Is(err, repository.ErrChangeLimitReached) {
			return nil, ErrChangeLimitExceeded
		}
		return nil, err
	}

	s.log.Info().Int("student_id", studentID).Str("kind", string(kind)).
		Str("from", current).Str("to", newValue).Msg("schedule changed")

	return updated, nil
}

// ScheduleState builds the student-facing schedule view with the remaining
// change budget per dimension.
func (s *ScheduleService) ScheduleState(student *model.Student) model.ScheduleState {
	limit := s.cfg.ScheduleChangeLimit
	return model.ScheduleState{
		ClassTime:               student.ClassTime,
		DiagnosticTestDate:      student.DiagnosticTestDate,
		ClassTimeChangeCount:    student.ClassTimeChangeCount,
		DiagnosticChangeCount:   student.DiagnosticChangeCount,
		CanChangeClassTime:      student.ClassTimeChangeCount < limit,
		CanChangeDiagnosticTest: student.DiagnosticChangeCount < limit,
		ClassTimeChangeHistory:  student.ClassTimeChangeHistory,
		DiagnosticChangeHistory: student.DiagnosticChangeHistory,
	}
}
