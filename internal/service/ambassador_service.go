package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/repository"
)

// AmbassadorService manages the referral program roster.
type AmbassadorService struct {
	ambassadorRepo *repository.AmbassadorRepository
	log            zerolog.Logger
}

// NewAmbassadorService creates a new AmbassadorService.
func NewAmbassadorService(ambassadorRepo *repository.AmbassadorRepository, log zerolog.Logger) *AmbassadorService {
	return &AmbassadorService{
		ambassadorRepo: ambassadorRepo,
		log:            log.With().Str("component", "ambassador_service").Logger(),
	}
}

// List returns the referral leaderboard.
func (s *AmbassadorService) List(ctx context.Context) ([]model.Ambassador, error) {
	return s.ambassadorRepo.List(ctx)
}

// Create registers a new ambassador with a normalized code.
func (s *AmbassadorService) Create(ctx context.Context, req *model.CreateAmbassadorRequest) (*model.Ambassador, error) {
	a := &model.Ambassador{
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:     req.Name,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		IsActive: *req.IsActive,
	}
	if err := s.ambassadorRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update modifies an ambassador's profile. The referral counter is owned by
// signup attribution and never set here.
func (s *AmbassadorService) Update(ctx context.Context, id int, req *model.CreateAmbassadorRequest) (*model.Ambassador, error) {
	a, err := s.ambassadorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	a.Name = req.Name
	a.Email = strings.ToLower(strings.TrimSpace(req.Email))
	a.IsActive = *req.IsActive

	if err := s.ambassadorRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
