package service

import (
	"context"
	"errors"
	"fmt"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LawyerService manages the firm's lawyer profiles. Admins have full access;
// member roles need the manage_lawyers permission.
type LawyerService struct {
	lawyers LawyerStore
	gate    *AccessGate
	log     *logger.Logger
}

// NewLawyerService creates a new LawyerService instance.
func NewLawyerService(lawyers LawyerStore, gate *AccessGate, log *logger.Logger) *LawyerService {
	return &LawyerService{lawyers: lawyers, gate: gate, log: log}
}

func (s *LawyerService) authorize(ctx context.Context, actorID, firmID string) error {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return err
	}
	if !scope.IsAdmin() && !scope.HasPermission("manage_lawyers") {
		return ErrUnauthorized
	}
	return nil
}

// CreateLawyer adds a lawyer profile to the firm.
func (s *LawyerService) CreateLawyer(ctx context.Context, actorID, firmID string, req *domain.CreateLawyerRequest) (*domain.Lawyer, error) {
	if err := s.authorize(ctx, actorID, firmID); err != nil {
		return nil, err
	}

	lawyer := &domain.Lawyer{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		FirmID:         firmID,
		UserID:         req.UserID,
	}

	if err := s.lawyers.Create(ctx, lawyer); err != nil {
		return nil, fmt.Errorf("create lawyer: %w", err)
	}

	s.log.Info(ctx, "lawyer created",
		logger.Module("lawyer"),
		logger.Action("create"),
		zap.String("actor_id", actorID),
		zap.String("lawyer_id", lawyer.ID),
	)

	return lawyer, nil
}

// GetLawyer retrieves one lawyer profile of the firm.
func (s *LawyerService) GetLawyer(ctx context.Context, actorID, firmID, lawyerID string) (*domain.Lawyer, error) {
	if err := s.authorize(ctx, actorID, firmID); err != nil {
		return nil, err
	}

	lawyer, err := s.lawyers.Get(ctx, firmID, lawyerID)
	if err != nil {
		if errors.Is(err, repo.ErrLawyerNotFound) {
			return nil, ErrLawyerNotFound
		}
		return nil, fmt.Errorf("get lawyer: %w", err)
	}
	return lawyer, nil
}

// ListLawyers returns the firm's lawyer roster.
func (s *LawyerService) ListLawyers(ctx context.Context, actorID, firmID string) ([]domain.Lawyer, error) {
	if err := s.authorize(ctx, actorID, firmID); err != nil {
		return nil, err
	}

	lawyers, err := s.lawyers.List(ctx, firmID)
	if err != nil {
		return nil, fmt.Errorf("list lawyers: %w", err)
	}
	return lawyers, nil
}

// UpdateLawyer applies a partial update.
func (s *LawyerService) UpdateLawyer(ctx context.Context, actorID, firmID, lawyerID string, req *domain.UpdateLawyerRequest) (*domain.Lawyer, error) {
	if err := s.authorize(ctx, actorID, firmID); err != nil {
		return nil, err
	}

	lawyer, err := s.lawyers.Update(ctx, firmID, lawyerID, req)
	if err != nil {
		if errors.Is(err, repo.ErrLawyerNotFound) {
			return nil, ErrLawyerNotFound
		}
		return nil, fmt.Errorf("update lawyer: %w", err)
	}

	s.log.Info(ctx, "lawyer updated",
		logger.Module("lawyer"),
		logger.Action("update"),
		zap.String("actor_id", actorID),
		zap.String("lawyer_id", lawyerID),
	)

	return lawyer, nil
}

// DeleteLawyer removes a lawyer profile. Case assignments referencing the
// lawyer are dropped by the schema's cascade.
func (s *LawyerService) DeleteLawyer(ctx context.Context, actorID, firmID, lawyerID string) error {
	if err := s.authorize(ctx, actorID, firmID); err != nil {
		return err
	}

	if err := s.lawyers.Delete(ctx, firmID, lawyerID); err != nil {
		if errors.Is(err, repo.ErrLawyerNotFound) {
			return ErrLawyerNotFound
		}
		return fmt.Errorf("delete lawyer: %w", err)
	}

	s.log.Info(ctx, "lawyer deleted",
		logger.Module("lawyer"),
		logger.Action("delete"),
		zap.String("actor_id", actorID),
		zap.String("lawyer_id", lawyerID),
	)

	return nil
}
