package abstracts

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/middleware"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestCheckWordLimitsGatesBeforePersistence(t *testing.T) {
	assert.Empty(t, checkWordLimits(words(15), words(300)))

	violations := checkWordLimits(words(16), words(300))
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "Title")
	assert.Contains(t, violations[0], "15")

	violations = checkWordLimits(words(15), words(301))
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "Body")
	assert.Contains(t, violations[0], "300")

	violations = checkWordLimits(words(16), words(301))
	assert.Len(t, violations, 2)
}

func TestCheckWordLimitsIgnoresMarkup(t *testing.T) {
	// The rich-text editor wraps content in tags; only visible words count.
	body := "<p><em>" + words(300) + "</em></p>"
	assert.Empty(t, checkWordLimits("A short title", body))
}

func TestFileEndpointsWithoutStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, nil, nil, nil, nil)

	r := gin.New()
	r.POST("/abstracts/:id/file", func(c *gin.Context) { c.Set(middleware.ContextUserID, uuid.New()) }, h.UploadFile)
	r.GET("/abstracts/:id/file", h.DownloadURL)

	id := uuid.New().String()
	for _, method := range []string{http.MethodPost, http.MethodGet} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/abstracts/"+id+"/file", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusServiceUnavailable, w.Code, method)
		assert.Contains(t, w.Body.String(), "file storage is not configured")
	}
}
