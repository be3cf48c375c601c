package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPhone = "+91 98765 43210"

func validSOSFields() map[string]any {
	return map[string]any{
		"name":           "Asha",
		"phone":          testPhone,
		"location":       "Ward 7, Bhubaneswar",
		"emergency_type": "medical",
		"message":        "Need an ambulance",
	}
}

func requireValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	return verr
}

func TestNewSOSAlertInput(t *testing.T) {
	t.Run("valid input is trimmed and normalised", func(t *testing.T) {
		fields := validSOSFields()
		fields["name"] = "  Asha  "
		fields["emergency_type"] = "FLOOD"

		in, err := NewSOSAlertInput(fields)
		require.NoError(t, err)
		assert.Equal(t, "Asha", in.Name)
		assert.Equal(t, testPhone, in.Phone)
		assert.Equal(t, EmergencyFlood, in.EmergencyType)
	})

	t.Run("empty message is missing", func(t *testing.T) {
		fields := validSOSFields()
		fields["message"] = ""

		_, err := NewSOSAlertInput(fields)
		verr := requireValidationError(t, err)
		assert.Equal(t, []string{"message"}, verr.Fields)
		assert.Contains(t, verr.Message, "message")
	})

	t.Run("whitespace-only message is missing", func(t *testing.T) {
		fields := validSOSFields()
		fields["message"] = "   \t "

		_, err := NewSOSAlertInput(fields)
		verr := requireValidationError(t, err)
		assert.Equal(t, []string{"message"}, verr.Fields)
	})

	t.Run("all missing fields reported in order", func(t *testing.T) {
		_, err := NewSOSAlertInput(map[string]any{"location": "here", "phone": nil})
		verr := requireValidationError(t, err)
		assert.Equal(t, []string{"name", "phone", "emergency_type", "message"}, verr.Fields)
		assert.Equal(t, "Missing required fields: name, phone, emergency_type, message", verr.Message)
	})

	t.Run("numeric phone is stringified", func(t *testing.T) {
		fields := validSOSFields()
		fields["phone"] = float64(9876543210)

		in, err := NewSOSAlertInput(fields)
		require.NoError(t, err)
		assert.Equal(t, "9876543210", in.Phone)
	})

	t.Run("invalid phone", func(t *testing.T) {
		fields := validSOSFields()
		fields["phone"] = "12345"

		_, err := NewSOSAlertInput(fields)
		verr := requireValidationError(t, err)
		assert.Equal(t, []string{"phone"}, verr.Fields)
	})

	t.Run("unknown emergency type lists allowed values", func(t *testing.T) {
		fields := validSOSFields()
		fields["emergency_type"] = "lava"

		_, err := NewSOSAlertInput(fields)
		verr := requireValidationError(t, err)
		assert.Equal(t, []string{"emergency_type"}, verr.Fields)
		for _, et := range EmergencyTypes {
			assert.Contains(t, verr.Message, string(et))
		}
		assert.Contains(t, verr.Message, "lava")
	})

	t.Run("nil body map", func(t *testing.T) {
		_, err := NewSOSAlertInput(nil)
		verr := requireValidationError(t, err)
		assert.Len(t, verr.Fields, 5)
	})
}

func TestNewAidRequestInput(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		in, err := NewAidRequestInput(map[string]any{
			"name":       " Ravi ",
			"location":   "Puri beach road",
			"aid_needed": "Drinking water",
		})
		require.NoError(t, err)
		assert.Equal(t, AidRequestInput{Name: "Ravi", Location: "Puri beach road", AidNeeded: "Drinking water"}, in)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := NewAidRequestInput(map[string]any{"name": "Ravi", "aid_needed": "  "})
		verr := requireValidationError(t, err)
		assert.Equal(t, []string{"location", "aid_needed"}, verr.Fields)
	})

	t.Run("name too long", func(t *testing.T) {
		_, err := NewAidRequestInput(map[string]any{
			"name":       strings.Repeat("n", MaxRequesterNameLen+1),
			"location":   "x",
			"aid_needed": "y",
		})
		verr := requireValidationError(t, err)
		assert.Equal(t, []string{"name"}, verr.Fields)
	})

	t.Run("multibyte text counted in characters", func(t *testing.T) {
		_, err := NewAidRequestInput(map[string]any{
			"name":       strings.Repeat("ଓ", MaxRequesterNameLen),
			"location":   "x",
			"aid_needed": strings.Repeat("ଓ", MaxAidNeededLen),
		})
		require.NoError(t, err)
	})
}
