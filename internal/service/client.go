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

// ClientService manages the firm's client directory. Admins have full
// access; member roles need the manage_clients permission.
type ClientService struct {
	clients ClientStore
	gate    *AccessGate
	log     *logger.Logger
}

// NewClientService creates a new ClientService instance.
func NewClientService(clients ClientStore, gate *AccessGate, log *logger.Logger) *ClientService {
	return &ClientService{clients: clients, gate: gate, log: log}
}

func (s *ClientService) authorize(ctx context.Context, actorID, firmID string) error {
	scope, err := s.gate.Resolve(ctx, actorID, firmID)
	if err != nil {
		return err
	}
	if !scope.IsAdmin() && !scope.HasPermission("manage_clients") {
		return ErrUnauthorized
	}
	return nil
}

// CreateClient adds a client to the firm.
func (s *ClientService) CreateClient(ctx context.Context, actorID, firmID string, req *domain.CreateClientRequest) (*domain.Client, error) {
	if err := s.authorize(ctx, actorID, firmID); err != nil {
		return nil, err
	}

	client := &domain.Client{
		ID:         uuid.NewString(),
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		ClientType: req.ClientType,
		Status:     "active",
		FirmID:     firmID,
		UserID:     req.UserID,
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.log.Info(ctx, "client created",
		logger.Module("client"),
		logger.Action("create"),
		zap.String("actor_id", actorID),
		zap.String("client_id", client.ID),
	)

	return client, nil
}

// GetClient retrieves one client of the firm.
func (s *ClientService) GetClient(ctx context.Context, actorID, firmID, clientID string) (*domain.Client, error) {
	if err := s.authorize(ctx, actorID, firmID); err != nil {
		return nil, err
	}

	client, err := s.clients.Get(ctx, firmID, clientID)
	if err != nil {
		if errors.Is(err, repo.ErrClientNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return client, nil
}

// ListClients returns the firm's client directory.
func (s *ClientService) ListClients(ctx context.Context, actorID, firmID string) ([]domain.Client, error) {
	if err := s.authorize(ctx, actorID, firmID); err != nil {
		return nil, err
	}

	clients, err := s.clients.List(ctx, firmID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// UpdateClient applies a partial update.
func (s *ClientService) UpdateClient(ctx context.Context, actorID, firmID, clientID string, req *domain.UpdateClientRequest) (*domain.Client, error) {
	if err := s.authorize(ctx, actorID, firmID); err != nil {
		return nil, err
	}

	client, err := s.clients.Update(ctx, firmID, clientID, req)
	if err != nil {
		if errors.Is(err, repo.ErrClientNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("update client: %w", err)
	}

	s.log.Info(ctx, "client updated",
		logger.Module("client"),
		logger.Action("update"),
		zap.String("actor_id", actorID),
		zap.String("client_id", clientID),
	)

	return client, nil
}

// DeleteClient removes a client. A client referenced by any case cannot be
// deleted; the cases must be reassigned or removed first.
func (s *ClientService) DeleteClient(ctx context.Context, actorID, firmID, clientID string) error {
	if err := s.authorize(ctx, actorID, firmID); err != nil {
		return err
	}

	if err := s.clients.Delete(ctx, firmID, clientID); err != nil {
		if errors.Is(err, repo.ErrClientNotFound) {
			return ErrClientNotFound
		}
		if errors.Is(err, repo.ErrClientInUse) {
			return ErrClientInUse
		}
		return fmt.Errorf("delete client: %w", err)
	}

	s.log.Info(ctx, "client deleted",
		logger.Module("client"),
		logger.Action("delete"),
		zap.String("actor_id", actorID),
		zap.String("client_id", clientID),
	)

	return nil
}
