package bulkimport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/middleware"
)

// actorCapture records who each invitation was attributed to and signals
// once the expected number of rows has been dispatched.
type actorCapture struct {
	mu     sync.Mutex
	actors []uuid.UUID
	expect int
	done   chan struct{}
}

func (a *actorCapture) Invite(ctx context.Context, actor uuid.UUID, row DelegateRow) (string, error) {
	a.mu.Lock()
	a.actors = append(a.actors, actor)
	n := len(a.actors)
	a.mu.Unlock()
	if n == a.expect {
		close(a.done)
	}
	return "invitation sent", nil
}

func readyBatch(t *testing.T, store *Store) *Batch {
	t.Helper()
	table := &Table{
		Columns: []string{"Email", "First", "Last"},
		Rows: []Row{
			{"Email": "awa@example.org", "First": "Awa", "Last": "Diop"},
			{"Email": "kofi@example.org", "First": "Kofi", "Last": "Mensah"},
		},
	}
	batch := store.Create("delegates.csv", table)
	_, err := store.ConfirmMapping(batch.ID, ColumnMapping{Email: "Email", FirstName: "First", LastName: "Last"})
	require.NoError(t, err)
	return batch
}

func TestDispatchAttributesActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewStore()
	batch := readyBatch(t, store)
	inviter := &actorCapture{expect: 2, done: make(chan struct{})}
	h := NewHandler(store, NewProgressHub(nil), inviter, context.Background(), nil)

	staff := uuid.New()
	r := gin.New()
	r.POST("/bulk-import/:id/dispatch", func(c *gin.Context) { c.Set(middleware.ContextUserID, staff) }, h.Dispatch)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bulk-import/"+batch.ID.String()+"/dispatch", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	select {
	case <-inviter.done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not finish")
	}

	inviter.mu.Lock()
	defer inviter.mu.Unlock()
	require.Len(t, inviter.actors, 2)
	for _, actor := range inviter.actors {
		assert.Equal(t, staff, actor, "every delegate must be attributed to the dispatching staff member")
	}
}

func TestDispatchRequiresUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewStore()
	batch := readyBatch(t, store)
	h := NewHandler(store, NewProgressHub(nil), &actorCapture{expect: 2, done: make(chan struct{})}, context.Background(), nil)

	r := gin.New()
	r.POST("/bulk-import/:id/dispatch", h.Dispatch)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bulk-import/"+batch.ID.String()+"/dispatch", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The batch was not consumed.
	kept, err := store.Get(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, BatchStateReady, kept.State)
}
