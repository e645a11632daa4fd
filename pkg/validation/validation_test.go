package validation

import (
	"errors"
	"testing"

	"github.com/shelfmark/shelfmark/pkg/clierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateThreadCount(t *testing.T) {
	tests := []struct {
		name    string
		threads int
		wantErr bool
	}{
		{"minimum", 1, false},
		{"maximum", 20, false},
		{"middle", 10, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"too large", 21, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThreadCount(tt.threads)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBookID(t *testing.T) {
	assert.NoError(t, ValidateBookID(1))
	assert.NoError(t, ValidateBookID(999999))
	assert.Error(t, ValidateBookID(0))
	assert.Error(t, ValidateBookID(-5))
}

func TestValidateNonEmptyString(t *testing.T) {
	assert.NoError(t, ValidateNonEmptyString("username", "ada"))
	err := ValidateNonEmptyString("username", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "username")
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"ada@example.com", false},
		{"a.b+tag@sub.example.org", false},
		{"", true},
		{"no-at-sign", true},
		{"two@@example.com", true},
		{"@example.com", true},
		{"ada@", true},
		{"ada@nodot", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("longenough"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(""))
}

func TestValidationErrorsAreTyped(t *testing.T) {
	var cerr *clierr.Error
	require.True(t, errors.As(ValidateBookID(0), &cerr))
	assert.Equal(t, clierr.Validation, cerr.Type)
}
