package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
)

type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

// TransitionObserver is told about every committed status change.
type TransitionObserver interface {
	ConnectionTransition(from, to domain.ConnectionStatus)
}

type ConnectionService struct {
	store    repository.Store
	observer TransitionObserver
}

func NewConnectionService(store repository.Store, observer TransitionObserver) *ConnectionService {
	return &ConnectionService{store: store, observer: observer}
}

type ConnectionRequestInput struct {
	AddresseeID int64   `json:"addresseeId" validate:"required,gt=0"`
	Message     *string `json:"message" validate:"omitnil,max=500"`
}

type RespondInput struct {
	Action Action `json:"action" validate:"required,oneof=accept decline"`
}

// Request creates a pending connection from requesterID to the addressee.
// At most one connection exists per unordered pair; the lookup and insert
// run in one transaction holding a lock on the pair.
func (s *ConnectionService) Request(ctx context.Context, requesterID int64, input ConnectionRequestInput) (*domain.Connection, error) {
	if requesterID == input.AddresseeID {
		return nil, ErrSelfConnection
	}

	conn := &domain.Connection{
		RequesterID: requesterID,
		AddresseeID: input.AddresseeID,
		Status:      domain.ConnectionPending,
	}
	if input.Message != nil {
		if msg := strings.TrimSpace(*input.Message); msg != "" {
			conn.Message = &msg
		}
	}

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Connections().LockPair(ctx, requesterID, input.AddresseeID); err != nil {
			return fmt.Errorf("locking pair: %w", err)
		}

		addressee, err := repos.Users().GetByID(ctx, input.AddresseeID)
		if err != nil {
			return err
		}
		if addressee == nil || !addressee.IsActive {
			return ErrUserNotFound
		}

		existing, err := repos.Connections().GetByPair(ctx, requesterID, input.AddresseeID)
		if err != nil {
			return err
		}
		if existing != nil {
			return existsError(existing.Status)
		}

		if err := repos.Connections().Create(ctx, conn); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrRequestExists
			}
			return fmt.Errorf("creating connection: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observe("", domain.ConnectionPending)
	return conn, nil
}

func existsError(status domain.ConnectionStatus) error {
	switch status {
	case domain.ConnectionAccepted:
		return ErrAlreadyConnected
	case domain.ConnectionBlocked:
		return ErrConnectionBlocked
	}
	return ErrRequestExists
}

// Respond moves a pending request addressed to userID to accepted or blocked.
// Anything other than pending is terminal.
func (s *ConnectionService) Respond(ctx context.Context, connectionID, userID int64, action Action) (*domain.Connection, error) {
	var next domain.ConnectionStatus
	switch action {
	case ActionAccept:
		next = domain.ConnectionAccepted
	case ActionDecline:
		next = domain.ConnectionBlocked
	default:
		return nil, ErrInvalidAction
	}

	var conn *domain.Connection
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		var err error
		conn, err = repos.Connections().GetForAddressee(ctx, connectionID, userID)
		if err != nil {
			return err
		}
		if conn == nil {
			return ErrConnectionNotFound
		}
		if conn.Status != domain.ConnectionPending {
			return ErrAlreadyProcessed
		}

		conn.Status = next
		return repos.Connections().UpdateStatus(ctx, conn)
	})
	if err != nil {
		return nil, err
	}

	s.observe(domain.ConnectionPending, next)
	return conn, nil
}

// List returns userID's connections with the given status, newest first.
// An empty status means accepted.
func (s *ConnectionService) List(ctx context.Context, userID int64, status domain.ConnectionStatus) ([]domain.ConnectionView, error) {
	if status == "" {
		status = domain.ConnectionAccepted
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	views, err := s.store.Connections().ListByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []domain.ConnectionView{}
	}
	return views, nil
}

func (s *ConnectionService) observe(from, to domain.ConnectionStatus) {
	if s.observer != nil {
		s.observer.ConnectionTransition(from, to)
	}
}
