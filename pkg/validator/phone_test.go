package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"9876543210", "9876543210", "Standard format"},
		{"98765 43210", "9876543210", "With spaces"},
		{"98765-43210", "9876543210", "With dashes"},
		{"+91 98765 43210", "9876543210", "With plus country code"},
		{"919876543210", "9876543210", "With country code"},
		{"09876543210", "9876543210", "With trunk zero"},
		{"091-98765-43210", "9876543210", "With zero and country code"},
		{"6123456789", "6123456789", "Leading 6"},
		{"7012345678", "7012345678", "Leading 7"},
		{"8123456789", "8123456789", "Leading 8"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty string"},
		{"     ", ErrEmptyPhone, "Only spaces"},
		{"123", ErrInvalidLength, "Too short"},
		{"98765432101", ErrInvalidLength, "Too long"},
		{"5876543210", ErrInvalidPrefix, "Leading 5"},
		{"0123456789", ErrInvalidPrefix, "Landline style"},
		{"987654321a", ErrInvalidFormat, "Contains letters"},
		{"98765 4321!", ErrInvalidFormat, "Contains special characters"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.Equal(t, tc.expectedErr, err)
		})
	}
}

func TestFormat(t *testing.T) {
	validator := NewPhoneValidator()

	formatted, err := validator.Format("919876543210")
	require.NoError(t, err)
	assert.Equal(t, "+91 98765 43210", formatted)

	_, err = validator.Format("invalid")
	assert.Error(t, err)
}

func TestIsValid(t *testing.T) {
	validator := NewPhoneValidator()

	assert.True(t, validator.IsValid("+91 98765 43210"))
	assert.False(t, validator.IsValid("0771234567"))
	assert.False(t, validator.IsValid(""))
}

func BenchmarkValidate(b *testing.B) {
	validator := NewPhoneValidator()
	phone := "+91 98765 43210"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = validator.Validate(phone)
	}
}
