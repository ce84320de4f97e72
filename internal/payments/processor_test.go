package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() Session {
	return Session{SessionID: "sess-1", Token: "tok-abc", OrderID: "ORD-1"}
}

func awaitNow(t *testing.T, h *Handle) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := h.Await(ctx)
	require.NoError(t, err)
	return res
}

func TestCompleteWithMatchingTokenSucceeds(t *testing.T) {
	p := NewProcessor()
	h, err := p.Begin(testSession())
	require.NoError(t, err)

	assert.True(t, p.Complete("sess-1", "tok-abc"))

	res := awaitNow(t, h)
	assert.True(t, res.Success)
	assert.Equal(t, "ORD-1", res.OrderID)
	assert.Equal(t, "tok-abc", res.TransactionID)
}

func TestCompleteWithMismatchedTokenFails(t *testing.T) {
	p := NewProcessor()
	h, err := p.Begin(testSession())
	require.NoError(t, err)

	assert.True(t, p.Complete("sess-1", "tok-forged"))

	res := awaitNow(t, h)
	assert.False(t, res.Success)
	assert.Equal(t, "token mismatch", res.FailureMessage)
}

func TestCancelAndFailResolveWithoutError(t *testing.T) {
	p := NewProcessor()

	h1, err := p.Begin(Session{SessionID: "s1", Token: "t1", OrderID: "o1"})
	require.NoError(t, err)
	assert.True(t, p.Cancel("s1"))
	res := awaitNow(t, h1)
	assert.False(t, res.Success)
	assert.True(t, res.Cancelled)
	assert.Equal(t, "payment cancelled", res.FailureMessage)

	h2, err := p.Begin(Session{SessionID: "s2", Token: "t2", OrderID: "o2"})
	require.NoError(t, err)
	assert.True(t, p.Fail("s2", "card declined"))
	res = awaitNow(t, h2)
	assert.False(t, res.Success)
	assert.Equal(t, "card declined", res.FailureMessage)
}

func TestLateAndDuplicateCallbacksAreNoOps(t *testing.T) {
	p := NewProcessor()
	h, err := p.Begin(testSession())
	require.NoError(t, err)

	assert.True(t, p.Complete("sess-1", "tok-abc"))

	// The session resolved once; every later callback falls through.
	assert.False(t, p.Complete("sess-1", "tok-abc"))
	assert.False(t, p.Fail("sess-1", "late error"))
	assert.False(t, p.Cancel("sess-1"))
	assert.False(t, p.Complete("never-seen", "x"))

	res := awaitNow(t, h)
	assert.True(t, res.Success)
}

func TestBeginRejectsActiveSession(t *testing.T) {
	p := NewProcessor()
	_, err := p.Begin(testSession())
	require.NoError(t, err)

	_, err = p.Begin(testSession())
	assert.ErrorIs(t, err, ErrSessionActive)

	// After resolution the id may be reused.
	p.Cancel("sess-1")
	_, err = p.Begin(testSession())
	assert.NoError(t, err)
}

func TestAwaitHonoursContext(t *testing.T) {
	p := NewProcessor()
	h, err := p.Begin(testSession())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = h.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolveBeforeAwaitIsNotLost(t *testing.T) {
	p := NewProcessor()
	h, err := p.Begin(testSession())
	require.NoError(t, err)

	// Callback lands before anyone is waiting.
	assert.True(t, p.Complete("sess-1", "tok-abc"))

	res := awaitNow(t, h)
	assert.True(t, res.Success)
}
