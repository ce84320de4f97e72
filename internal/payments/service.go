package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
)

// ErrPaymentNotVerified means the payment fields a client handed back do
// not match a completed session on record.
var ErrPaymentNotVerified = errors.New("payment could not be verified")

// Service opens checkout sessions and records their outcomes. The gateway
// behind it is the hosted one or the simulator depending on config.
type Service struct {
	gateway   Gateway
	processor *Processor
	repo      *Repository
	logger    *zap.Logger

	// lifetime keeps outcome persistence running after the initiating
	// request has returned.
	lifetime context.Context
}

func NewService(gateway Gateway, processor *Processor, repo *Repository, lifetime context.Context, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lifetime == nil {
		lifetime = context.Background()
	}
	return &Service{gateway: gateway, processor: processor, repo: repo, lifetime: lifetime, logger: logger}
}

// Initialize opens a session, registers it with the processor and persists
// it as pending. Nothing is persisted when the gateway fails.
func (s *Service) Initialize(ctx context.Context, req InitRequest) (*Session, error) {
	if req.OrderID == "" {
		req.OrderID = "ORD-" + uuid.New().String()
	}

	session, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}

	handle, err := s.processor.Begin(*session)
	if err != nil {
		return nil, err
	}

	var categoryID *string
	if req.CategoryID != "" {
		categoryID = &req.CategoryID
	}
	if _, err := s.repo.CreateAttempt(ctx, session, req, categoryID); err != nil {
		return nil, err
	}

	go s.persistOutcome(handle)
	return session, nil
}

func (s *Service) persistOutcome(handle *Handle) {
	res, err := handle.Await(s.lifetime)
	if err != nil {
		return // server shutting down
	}

	status := models.PaymentStatusFailed
	switch {
	case res.Success:
		status = models.PaymentStatusCompleted
	case res.Cancelled:
		status = models.PaymentStatusCancelled
	}
	if err := s.repo.Resolve(s.lifetime, res.SessionID, status, res.TransactionID, res.FailureMessage); err != nil {
		s.logger.Error("failed to persist payment outcome",
			zap.String("session_id", res.SessionID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("payment resolved",
		zap.String("session_id", res.SessionID),
		zap.String("status", status),
	)
}

// Complete feeds a gateway success callback to the processor.
func (s *Service) Complete(sessionID, resultIndicator string) bool {
	return s.processor.Complete(sessionID, resultIndicator)
}

// Fail feeds a gateway error callback to the processor.
func (s *Service) Fail(sessionID, message string) bool {
	return s.processor.Fail(sessionID, message)
}

// Cancel feeds a gateway cancel callback to the processor.
func (s *Service) Cancel(sessionID string) bool {
	return s.processor.Cancel(sessionID)
}

// Verify checks the payment fields from a registration submission against
// the completed attempt on record. The token and session id must both
// match exactly.
func (s *Service) Verify(ctx context.Context, orderID, paymentToken, paymentSession string) (*models.PaymentAttempt, error) {
	attempt, err := s.repo.GetCompletedOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrAttemptNotFound) {
			return nil, ErrPaymentNotVerified
		}
		return nil, err
	}
	if attempt.Token != paymentToken || attempt.SessionID != paymentSession {
		return nil, ErrPaymentNotVerified
	}
	return attempt, nil
}

// Attempt exposes a stored attempt for status polling.
func (s *Service) Attempt(ctx context.Context, sessionID string) (*models.PaymentAttempt, error) {
	return s.repo.GetBySessionID(ctx, sessionID)
}

// AttemptsForOrder returns every attempt made against an order, newest
// first, for the staff payment view.
func (s *Service) AttemptsForOrder(ctx context.Context, orderID string) ([]models.PaymentAttempt, error) {
	return s.repo.ListByOrder(ctx, orderID)
}
