package seed

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{6,25}$`)

func TestGenerateUsers(t *testing.T) {
	users := GenerateUsers(25)
	require.Len(t, users, 25)

	seen := make(map[string]bool)
	for _, u := range users {
		assert.Regexp(t, usernamePattern, u.Username)
		assert.False(t, seen[u.Username], "duplicate username %s", u.Username)
		seen[u.Username] = true
		assert.NotEmpty(t, u.Name)
		assert.NotEmpty(t, u.Password)
		assert.NotEqual(t, "Seeded1pass", u.Password)
	}
}

func TestGenerateScratchesBodyLimit(t *testing.T) {
	users := GenerateUsers(3)
	scratches := GenerateScratches(users, 50)
	require.Len(t, scratches, 50)

	for _, s := range scratches {
		assert.LessOrEqual(t, len(s.Body), 280)
		if s.RescratchedID == nil && s.ParentID == nil {
			assert.NotEmpty(t, s.Body)
		}
	}
}
