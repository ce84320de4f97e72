package forms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordCountStripsMarkup(t *testing.T) {
	assert.Equal(t, 3, WordCount("one two three"))
	assert.Equal(t, 3, WordCount("<p>one <strong>two</strong> three</p>"))
	assert.Equal(t, 2, WordCount("one<br/>two"))
	assert.Equal(t, 0, WordCount("<p></p>"))
	assert.Equal(t, 0, WordCount("   "))
}

func TestCheckWordLimitTitle(t *testing.T) {
	fifteen := strings.Repeat("word ", 15)
	require.NoError(t, CheckWordLimit("Title", fifteen, 15))

	sixteen := strings.Repeat("word ", 16)
	err := CheckWordLimit("Title", sixteen, 15)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "15 word limit")
}

func TestCheckWordLimitBodyBoundary(t *testing.T) {
	exactly300 := strings.Repeat("<em>word</em> ", 300)
	require.NoError(t, CheckWordLimit("Abstract", exactly300, 300))

	over := strings.Repeat("word ", 301)
	err := CheckWordLimit("Abstract", over, 300)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "300 word limit")
}
