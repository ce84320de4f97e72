package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/config"
)

// ErrSessionUnparseable means the gateway answered but no known response
// shape carried both a session id and a token.
var ErrSessionUnparseable = errors.New("gateway response missing payment session or token")

// Session is a single-use checkout session issued by the payment gateway.
type Session struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	OrderID   string `json:"order_id"`
}

// InitRequest carries the registration context sent to the gateway when
// opening a checkout session.
type InitRequest struct {
	OrderID        string  `json:"order_id"`
	Amount         float64 `json:"amount" binding:"required"`
	Currency       string  `json:"currency" binding:"required"`
	CategoryID     string  `json:"category_id"`
	CategoryName   string  `json:"category_name"`
	CustomerEmail  string  `json:"customer_email"`
	CustomerName   string  `json:"customer_name"`
	AttendanceType string  `json:"attendence_type"`
}

// Initializer opens checkout sessions against the hosted gateway.
type Initializer struct {
	cfg    config.PaymentConfig
	client *http.Client
	logger *zap.Logger
}

func NewInitializer(cfg config.PaymentConfig, logger *zap.Logger) *Initializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Initializer{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// CreateSession POSTs the registration context form-encoded to the gateway
// and normalizes whichever response shape comes back. Any failure leaves no
// partial state behind.
func (i *Initializer) CreateSession(ctx context.Context, req InitRequest) (*Session, error) {
	form := url.Values{}
	form.Set("application", "registration")
	form.Set("amount", strconv.FormatFloat(req.Amount, 'f', 2, 64))
	form.Set("currency", req.Currency)
	form.Set("order_id", req.OrderID)
	form.Set("category_id", req.CategoryID)
	form.Set("category_name", req.CategoryName)
	form.Set("customer_email", req.CustomerEmail)
	form.Set("customer_name", req.CustomerName)
	form.Set("attendence_type", req.AttendanceType)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, i.cfg.GatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if i.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+i.cfg.APIKey)
	}

	resp, err := i.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		i.logger.Warn("gateway rejected session init",
			zap.Int("status", resp.StatusCode),
			zap.String("order_id", req.OrderID),
		)
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	session, err := normalizeSession(body, req.OrderID)
	if err != nil {
		i.logger.Warn("unrecognized gateway response shape", zap.String("order_id", req.OrderID))
		return nil, err
	}
	return session, nil
}

// normalizeSession absorbs the response-shape drift the gateway has shipped
// over time. The session id is taken from the first non-empty of
// data.data.payment_session, data.data.session_id, data.session_id; the
// token from data.data.token, data.data.payment_token, data.payment_token,
// data.data.successIndicator. Exhausting either chain is a hard error.
func normalizeSession(raw []byte, orderID string) (*Session, error) {
	var payload struct {
		Data struct {
			PaymentSession   string `json:"payment_session"`
			InnerSessionID   string `json:"session_id"`
			Token            string `json:"token"`
			PaymentToken     string `json:"payment_token"`
			SuccessIndicator string `json:"successIndicator"`
		} `json:"data"`
		SessionID    string `json:"session_id"`
		PaymentToken string `json:"payment_token"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionUnparseable, err)
	}

	sessionID := firstNonEmpty(
		payload.Data.PaymentSession,
		payload.Data.InnerSessionID,
		payload.SessionID,
	)
	token := firstNonEmpty(
		payload.Data.Token,
		payload.Data.PaymentToken,
		payload.PaymentToken,
		payload.Data.SuccessIndicator,
	)
	if sessionID == "" || token == "" {
		return nil, ErrSessionUnparseable
	}
	return &Session{SessionID: sessionID, Token: token, OrderID: orderID}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
