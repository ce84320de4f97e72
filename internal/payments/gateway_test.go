package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/config"
)

func TestSimulatedGatewayCompleteMatchesHostedSemantics(t *testing.T) {
	processor := NewProcessor()
	sim := NewSimulatedGateway(processor, nil)

	session, err := sim.CreateSession(context.Background(), InitRequest{OrderID: "ORD-1", Amount: 50, Currency: "USD"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.SessionID)
	assert.NotEmpty(t, session.Token)

	h, err := processor.Begin(*session)
	require.NoError(t, err)

	// The simulator's callback carries the session token, so the same
	// verification path that guards the hosted gateway passes here.
	require.NoError(t, sim.Complete(session.SessionID))
	res := awaitNow(t, h)
	assert.True(t, res.Success)
	assert.Equal(t, session.Token, res.TransactionID)
	assert.Equal(t, "ORD-1", res.OrderID)
}

func TestSimulatedGatewayCancel(t *testing.T) {
	processor := NewProcessor()
	sim := NewSimulatedGateway(processor, nil)

	session, err := sim.CreateSession(context.Background(), InitRequest{OrderID: "ORD-2", Amount: 50, Currency: "USD"})
	require.NoError(t, err)
	h, err := processor.Begin(*session)
	require.NoError(t, err)

	require.NoError(t, sim.Cancel(session.SessionID))
	res := awaitNow(t, h)
	assert.False(t, res.Success)
	assert.True(t, res.Cancelled)
}

func TestSimulatedGatewayUnknownSession(t *testing.T) {
	sim := NewSimulatedGateway(NewProcessor(), nil)
	assert.ErrorIs(t, sim.Complete("nope"), ErrUnknownSimSession)
	assert.ErrorIs(t, sim.Cancel("nope"), ErrUnknownSimSession)
}

func TestSimulatedSessionsAreSingleUse(t *testing.T) {
	processor := NewProcessor()
	sim := NewSimulatedGateway(processor, nil)

	session, err := sim.CreateSession(context.Background(), InitRequest{OrderID: "ORD-3", Amount: 10, Currency: "USD"})
	require.NoError(t, err)
	_, err = processor.Begin(*session)
	require.NoError(t, err)

	require.NoError(t, sim.Complete(session.SessionID))
	assert.ErrorIs(t, sim.Complete(session.SessionID), ErrUnknownSimSession)
}

func TestNewGatewaySelectsByConfig(t *testing.T) {
	processor := NewProcessor()

	g := NewGateway(config.PaymentConfig{Mode: config.PaymentModeSimulation}, processor, nil)
	_, ok := g.(*SimulatedGateway)
	assert.True(t, ok)

	g = NewGateway(config.PaymentConfig{Mode: config.PaymentModeLive, GatewayURL: "https://gateway.example"}, processor, nil)
	_, ok = g.(*HostedGateway)
	assert.True(t, ok)
}
