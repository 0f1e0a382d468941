package load

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSchema(t *testing.T) {
	tests := []struct {
		tenantID string
		want     string
	}{
		{"app1.test-project", "app1_test_project"},
		{"app1", "app1"},
		{"", ""},
		{"...", "___"},
		{"a-.-b", "a___b"},
		{"-leading.and.trailing-", "_leading_and_trailing_"},
		{"wordpuzz.wordle.puzzle.game.word.daily.free", "wordpuzz_wordle_puzzle_game_word_daily_free"},
		{"already_fine_9", "already_fine_9"},
	}

	for _, tt := range tests {
		t.Run(tt.tenantID, func(t *testing.T) {
			got := ResolveSchema(tt.tenantID)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ResolveSchema(tt.tenantID), "must be deterministic")
		})
	}
}

func TestResolveSchemaSweepsLongIdentifiers(t *testing.T) {
	// more disallowed characters than the identifier's own length in
	// replacement passes would ever cover one at a time
	tenantID := strings.Repeat(".-", 200) + "x"

	got := ResolveSchema(tenantID)

	assert.NotContains(t, got, ".")
	assert.NotContains(t, got, "-")
	assert.Len(t, got, len(tenantID))
}
