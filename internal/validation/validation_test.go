package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid lowercase", "alice1", false},
		{"valid mixed case", "AliceWonder99", false},
		{"valid max length", strings.Repeat("a", 25), false},
		{"too short", "alice", true},
		{"too long", strings.Repeat("a", 26), true},
		{"underscore not allowed", "alice_1", true},
		{"hyphen not allowed", "alice-one", true},
		{"space not allowed", "alice one", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Password1", false},
		{"valid with symbols", "S3cret!pass", false},
		{"too short", "Pass1", true},
		{"too long", "P1" + strings.Repeat("a", 71), true},
		{"missing digit", "PasswordOnly", true},
		{"missing uppercase", "password1", true},
		{"missing lowercase", "PASSWORD1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDescription(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateDescription(""))
	assert.NoError(t, ValidateDescription(strings.Repeat("d", 160)))
	assert.Error(t, ValidateDescription(strings.Repeat("d", 161)))
}

func TestValidateScratchBody(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateScratchBody(""))
	assert.NoError(t, ValidateScratchBody(strings.Repeat("b", 280)))
	assert.Error(t, ValidateScratchBody(strings.Repeat("b", 281)))
	// multi-byte runes count as single characters
	assert.NoError(t, ValidateScratchBody(strings.Repeat("ü", 280)))
}
