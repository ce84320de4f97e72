package payments

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrSessionActive means Begin was called twice for the same session id.
	ErrSessionActive = errors.New("payment session already awaiting completion")
)

// Result is the outcome of a checkout session. Exactly one Result is
// delivered per Begin.
type Result struct {
	Success        bool   `json:"success"`
	Cancelled      bool   `json:"cancelled,omitempty"`
	OrderID        string `json:"order_id"`
	SessionID      string `json:"session_id"`
	TransactionID  string `json:"transaction_id,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

// Processor is a completion registry keyed by session id. Each pending
// session holds one handle; gateway callbacks resolve it exactly once and
// unregister it, so late or duplicate callbacks fall through as no-ops.
type Processor struct {
	mu      sync.Mutex
	pending map[string]*pendingSession
}

type pendingSession struct {
	session Session
	ch      chan Result
}

// Handle awaits the outcome of one checkout session.
type Handle struct {
	session Session
	ch      <-chan Result
}

func NewProcessor() *Processor {
	return &Processor{pending: make(map[string]*pendingSession)}
}

// Begin registers a session and returns the handle its callbacks will
// resolve.
func (p *Processor) Begin(session Session) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.pending[session.SessionID]; exists {
		return nil, ErrSessionActive
	}
	ps := &pendingSession{session: session, ch: make(chan Result, 1)}
	p.pending[session.SessionID] = ps
	return &Handle{session: session, ch: ps.ch}, nil
}

// Await blocks until the session resolves or ctx expires. The only error
// it returns is the context's.
func (h *Handle) Await(ctx context.Context) (Result, error) {
	select {
	case res := <-h.ch:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Session returns the session this handle awaits.
func (h *Handle) Session() Session {
	return h.session
}

// Complete resolves a session from a gateway success callback. The payment
// succeeded only when the result indicator equals the session token
// exactly; anything else resolves as a failure. Returns false when no
// session with that id is pending.
func (p *Processor) Complete(sessionID, resultIndicator string) bool {
	return p.resolve(sessionID, func(s Session) Result {
		if resultIndicator != s.Token {
			return Result{
				Success:        false,
				OrderID:        s.OrderID,
				SessionID:      s.SessionID,
				FailureMessage: "token mismatch",
			}
		}
		return Result{
			Success:       true,
			OrderID:       s.OrderID,
			SessionID:     s.SessionID,
			TransactionID: resultIndicator,
		}
	})
}

// Fail resolves a session from a gateway error callback.
func (p *Processor) Fail(sessionID, message string) bool {
	if message == "" {
		message = "payment failed"
	}
	return p.resolve(sessionID, func(s Session) Result {
		return Result{
			Success:        false,
			OrderID:        s.OrderID,
			SessionID:      s.SessionID,
			FailureMessage: message,
		}
	})
}

// Cancel resolves a session the customer backed out of.
func (p *Processor) Cancel(sessionID string) bool {
	return p.resolve(sessionID, func(s Session) Result {
		return Result{
			Success:        false,
			Cancelled:      true,
			OrderID:        s.OrderID,
			SessionID:      s.SessionID,
			FailureMessage: "payment cancelled",
		}
	})
}

func (p *Processor) resolve(sessionID string, outcome func(Session) Result) bool {
	p.mu.Lock()
	ps, ok := p.pending[sessionID]
	if ok {
		delete(p.pending, sessionID)
	}
	p.mu.Unlock()
	if !ok {
		return false
	}
	ps.ch <- outcome(ps.session)
	return true
}
