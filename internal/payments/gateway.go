package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/config"
)

// ErrUnknownSimSession means a simulation trigger named a session the
// simulator never issued.
var ErrUnknownSimSession = errors.New("unknown simulated session")

// Gateway opens checkout sessions. Call sites do not know whether they are
// talking to the hosted gateway or the local simulator.
type Gateway interface {
	CreateSession(ctx context.Context, req InitRequest) (*Session, error)
}

// NewGateway picks the implementation from config.
func NewGateway(cfg config.PaymentConfig, processor *Processor, logger *zap.Logger) Gateway {
	if cfg.Simulated() {
		return NewSimulatedGateway(processor, logger)
	}
	return &HostedGateway{init: NewInitializer(cfg, logger)}
}

// HostedGateway talks to the real payment provider over HTTP.
type HostedGateway struct {
	init *Initializer
}

func (g *HostedGateway) CreateSession(ctx context.Context, req InitRequest) (*Session, error) {
	return g.init.CreateSession(ctx, req)
}

// SimulatedGateway issues sessions locally, for environments without
// gateway credentials. Its Complete and Cancel triggers feed the processor
// the same callbacks the hosted gateway would, with the result indicator
// set to the session token so verification behaves identically.
type SimulatedGateway struct {
	processor *Processor
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]Session
}

func NewSimulatedGateway(processor *Processor, logger *zap.Logger) *SimulatedGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedGateway{
		processor: processor,
		logger:    logger,
		sessions:  make(map[string]Session),
	}
}

func (g *SimulatedGateway) CreateSession(_ context.Context, req InitRequest) (*Session, error) {
	token := make([]byte, 16)
	if _, err := rand.Read(token); err != nil {
		return nil, fmt.Errorf("failed to generate simulated token: %w", err)
	}
	session := Session{
		SessionID: "SIM-" + uuid.New().String(),
		Token:     hex.EncodeToString(token),
		OrderID:   req.OrderID,
	}

	g.mu.Lock()
	g.sessions[session.SessionID] = session
	g.mu.Unlock()

	g.logger.Info("simulated payment session opened",
		zap.String("session_id", session.SessionID),
		zap.String("order_id", req.OrderID),
	)
	return &session, nil
}

// Complete simulates the customer paying. The callback carries the
// session's own token as result indicator.
func (g *SimulatedGateway) Complete(sessionID string) error {
	session, err := g.take(sessionID)
	if err != nil {
		return err
	}
	g.processor.Complete(session.SessionID, session.Token)
	return nil
}

// Cancel simulates the customer abandoning checkout.
func (g *SimulatedGateway) Cancel(sessionID string) error {
	session, err := g.take(sessionID)
	if err != nil {
		return err
	}
	g.processor.Cancel(session.SessionID)
	return nil
}

func (g *SimulatedGateway) take(sessionID string) (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.sessions[sessionID]
	if !ok {
		return Session{}, ErrUnknownSimSession
	}
	delete(g.sessions, sessionID)
	return session, nil
}
