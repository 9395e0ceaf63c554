package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/repository"
)

var ErrOfferingInUse = errors.New("offering has enrolled students")

// OfferingService manages the class time and diagnostic test catalogs.
type OfferingService struct {
	offeringRepo *repository.OfferingRepository
	studentRepo  *repository.StudentRepository
	log          zerolog.Logger
}

// NewOfferingService creates a new OfferingService.
func NewOfferingService(offeringRepo *repository.OfferingRepository, studentRepo *repository.StudentRepository, log zerolog.Logger) *OfferingService {
	return &OfferingService{
		offeringRepo: offeringRepo,
		studentRepo:  studentRepo,
		log:          log.With().Str("component", "offering_service").Logger(),
	}
}

// ListByKind returns offerings of one kind with enrollment counts. Students
// see active offerings only; admins see everything.
func (s *OfferingService) ListByKind(ctx context.Context, kind model.OfferingKind, activeOnly bool) ([]model.Offering, error) {
	return s.offeringRepo.ListByKind(ctx, kind, activeOnly)
}

// GetByID retrieves one offering.
func (s *OfferingService) GetByID(ctx context.Context, id int) (*model.Offering, error) {
	return s.offeringRepo.GetByID(ctx, id)
}

// Create adds an offering to the catalog.
func (s *OfferingService) Create(ctx context.Context, req *model.CreateOfferingRequest) (*model.Offering, error) {
	o := &model.Offering{
		Kind:     req.Kind,
		Name:     req.Name,
		StartsAt: req.StartsAt,
		Capacity: req.Capacity,
		IsActive: *req.IsActive,
	}
	if err := s.offeringRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Update modifies an offering. Renaming does not rewrite enrolled students'
// schedules; their stored value keeps pointing at the old name, which the
// legacy fallback list must then cover.
func (s *OfferingService) Update(ctx context.Context, id int, req *model.CreateOfferingRequest) (*model.Offering, error) {
	o, err := s.offeringRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	o.Kind = req.Kind
	o.Name = req.Name
	o.StartsAt = req.StartsAt
	o.Capacity = req.Capacity
	o.IsActive = *req.IsActive

	if err := s.offeringRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Delete removes an offering. Refused while students are still enrolled so a
// stored schedule value never points at nothing.
func (s *OfferingService) Delete(ctx context.Context, id int) error {
	o, err := s.offeringRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	enrolled, err := s.studentRepo.CountBySchedule(ctx, o.Kind, o.Name)
	if err != nil {
		return err
	}
	if enrolled > 0 {
		return ErrOfferingInUse
	}

	return s.offeringRepo.Delete(ctx, id)
}
