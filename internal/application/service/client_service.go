package service

import (
	"context"
	"fmt"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
)

// ClientService manages client reference data and the lookup tables
type ClientService interface {
	List(ctx context.Context, limit, offset int, includeInactive bool) ([]*entity.Client, error)
	GetByCode(ctx context.Context, code string) (*entity.Client, error)
	Create(ctx context.Context, in ClientInput) (*entity.Client, error)
	Update(ctx context.Context, code string, in ClientInput) (*entity.Client, error)
	Deactivate(ctx context.Context, code string) error

	ListSessions(ctx context.Context, limit, offset int) ([]*entity.ImportSession, error)
	VatTypes(ctx context.Context) ([]*entity.VatType, error)
}

type clientServiceImpl struct {
	clientRepo  port.ClientRepository
	sessionRepo port.ImportSessionRepository
	vatRepo     port.VatTypeRepository
	logger      Logger
}

// NewClientService creates a new ClientService
func NewClientService(
	clientRepo port.ClientRepository,
	sessionRepo port.ImportSessionRepository,
	vatRepo port.VatTypeRepository,
	logger Logger,
) ClientService {
	return &clientServiceImpl{
		clientRepo:  clientRepo,
		sessionRepo: sessionRepo,
		vatRepo:     vatRepo,
		logger:      logger,
	}
}

func (s *clientServiceImpl) List(ctx context.Context, limit, offset int, includeInactive bool) ([]*entity.Client, error) {
	limit, offset = clampPage(limit, offset)
	clients, err := s.clientRepo.List(ctx, limit, offset, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	if clients == nil {
		clients = []*entity.Client{}
	}
	return clients, nil
}

func (s *clientServiceImpl) GetByCode(ctx context.Context, code string) (*entity.Client, error) {
	client, err := s.clientRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, code)
	}
	return client, nil
}

// Create validates in with the DGI template rules before inserting
func (s *clientServiceImpl) Create(ctx context.Context, in ClientInput) (*entity.Client, error) {
	prepared := prepareClient(in)
	if len(prepared.Errors) > 0 {
		return nil, &ValidationError{Violations: prepared.Errors}
	}

	existing, err := s.clientRepo.FindByCode(ctx, prepared.Client.Code)
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrClientExists, prepared.Client.Code)
	}

	if err := s.clientRepo.Create(ctx, prepared.Client); err != nil {
		s.logger.Error("Failed to create client", "error", err, "code", prepared.Client.Code)
		return nil, fmt.Errorf("create client: %w", err)
	}
	s.logger.Info("Client created", "code", prepared.Client.Code, "template", prepared.Client.Template)
	return prepared.Client, nil
}

// Update replaces every field of the active client identified by code
func (s *clientServiceImpl) Update(ctx context.Context, code string, in ClientInput) (*entity.Client, error) {
	existing, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	in.Code = code
	prepared := prepareClient(in)
	if len(prepared.Errors) > 0 {
		return nil, &ValidationError{Violations: prepared.Errors}
	}

	client := prepared.Client
	client.ID = existing.ID
	client.CreatedAt = existing.CreatedAt
	if err := s.clientRepo.Update(ctx, client); err != nil {
		s.logger.Error("Failed to update client", "error", err, "code", code)
		return nil, fmt.Errorf("update client: %w", err)
	}
	s.logger.Info("Client updated", "code", code)
	return client, nil
}

func (s *clientServiceImpl) Deactivate(ctx context.Context, code string) error {
	if _, err := s.GetByCode(ctx, code); err != nil {
		return err
	}
	if err := s.clientRepo.Deactivate(ctx, code); err != nil {
		return fmt.Errorf("deactivate client: %w", err)
	}
	s.logger.Info("Client deactivated", "code", code)
	return nil
}

func (s *clientServiceImpl) ListSessions(ctx context.Context, limit, offset int) ([]*entity.ImportSession, error) {
	limit, offset = clampPage(limit, offset)
	sessions, err := s.sessionRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list import sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*entity.ImportSession{}
	}
	return sessions, nil
}

func (s *clientServiceImpl) VatTypes(ctx context.Context) ([]*entity.VatType, error) {
	types, err := s.vatRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vat types: %w", err)
	}
	return types, nil
}
