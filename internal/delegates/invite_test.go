package delegates

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvitationToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := generateInvitationToken()
		require.NoError(t, err)
		assert.Len(t, token, 43)
		// URL-safe alphabet only, tokens land in query strings unescaped.
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "=")
		_, dup := seen[token]
		assert.False(t, dup, "token repeated")
		seen[token] = struct{}{}
	}
}

func TestInvitationBody(t *testing.T) {
	expires := time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC)
	body := invitationBody("Amina", "https://portal.example.com/register?token=abc", expires)

	assert.True(t, strings.HasPrefix(body, "<p>Dear Amina,"))
	assert.Contains(t, body, `href="https://portal.example.com/register?token=abc"`)
	assert.Contains(t, body, "3 October 2026")
}
