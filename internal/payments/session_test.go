package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/config"
)

func TestNormalizeSessionShapes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSession string
		wantToken   string
	}{
		{
			name:        "current shape",
			body:        `{"data":{"payment_session":"ps-1","token":"tk-1"}}`,
			wantSession: "ps-1",
			wantToken:   "tk-1",
		},
		{
			name:        "nested session_id with payment_token",
			body:        `{"data":{"session_id":"ps-2","payment_token":"tk-2"}}`,
			wantSession: "ps-2",
			wantToken:   "tk-2",
		},
		{
			name:        "flat legacy shape",
			body:        `{"session_id":"ps-3","payment_token":"tk-3"}`,
			wantSession: "ps-3",
			wantToken:   "tk-3",
		},
		{
			name:        "successIndicator fallback",
			body:        `{"data":{"payment_session":"ps-4","successIndicator":"tk-4"}}`,
			wantSession: "ps-4",
			wantToken:   "tk-4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := normalizeSession([]byte(tt.body), "ORD-9")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSession, s.SessionID)
			assert.Equal(t, tt.wantToken, s.Token)
			assert.Equal(t, "ORD-9", s.OrderID)
		})
	}
}

func TestNormalizeSessionProbeOrder(t *testing.T) {
	// When several candidates are present the earliest in the chain wins.
	body := `{
		"session_id": "flat",
		"payment_token": "flat-token",
		"data": {
			"payment_session": "nested-ps",
			"session_id": "nested-sid",
			"token": "nested-token",
			"payment_token": "nested-pt",
			"successIndicator": "indicator"
		}
	}`
	s, err := normalizeSession([]byte(body), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "nested-ps", s.SessionID)
	assert.Equal(t, "nested-token", s.Token)
}

func TestNormalizeSessionHardFailure(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"data":{"payment_session":"ps-only"}}`,
		`{"data":{"token":"tk-only"}}`,
		`not json`,
	} {
		_, err := normalizeSession([]byte(body), "ORD-1")
		assert.ErrorIs(t, err, ErrSessionUnparseable, body)
	}
}

func TestInitializerPostsFormEncodedContext(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"application":     r.PostFormValue("application"),
			"amount":          r.PostFormValue("amount"),
			"currency":        r.PostFormValue("currency"),
			"order_id":        r.PostFormValue("order_id"),
			"attendence_type": r.PostFormValue("attendence_type"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"payment_session":"ps-1","token":"tk-1"}}`))
	}))
	defer srv.Close()

	init := NewInitializer(config.PaymentConfig{GatewayURL: srv.URL}, nil)
	session, err := init.CreateSession(context.Background(), InitRequest{
		OrderID:        "ORD-7",
		Amount:         1250,
		Currency:       "RWF",
		AttendanceType: "in-person",
	})
	require.NoError(t, err)
	assert.Equal(t, "ps-1", session.SessionID)
	assert.Equal(t, "tk-1", session.Token)
	assert.Equal(t, map[string]string{
		"application":     "registration",
		"amount":          "1250.00",
		"currency":        "RWF",
		"order_id":        "ORD-7",
		"attendence_type": "in-person",
	}, gotForm)
}

func TestInitializerGatewayErrorLeavesNoSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	init := NewInitializer(config.PaymentConfig{GatewayURL: srv.URL}, nil)
	session, err := init.CreateSession(context.Background(), InitRequest{Amount: 10, Currency: "USD"})
	assert.Error(t, err)
	assert.Nil(t, session)
}

func TestInitializerMalformedResponseIsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"result":"SUCCESS"}}`))
	}))
	defer srv.Close()

	init := NewInitializer(config.PaymentConfig{GatewayURL: srv.URL}, nil)
	_, err := init.CreateSession(context.Background(), InitRequest{Amount: 10, Currency: "USD"})
	assert.ErrorIs(t, err, ErrSessionUnparseable)
}
