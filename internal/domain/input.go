package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Maximum lengths, in characters, accepted for aid request text.
const (
	MaxRequesterNameLen = 255
	MaxLocationLen      = 1000
	MaxAidNeededLen     = 1000
)

// ValidationError describes client input that cannot be accepted.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

// SOSAlertInput is a validated SOS alert submission.
type SOSAlertInput struct {
	Name          string
	Phone         string
	Location      string
	EmergencyType EmergencyType
	Message       string
}

// AidRequestInput is a validated aid request submission.
type AidRequestInput struct {
	Name      string
	Location  string
	AidNeeded string
}

var (
	sosRequiredFields = []string{"name", "phone", "location", "emergency_type", "message"}
	aidRequiredFields = []string{"name", "location", "aid_needed"}
)

// NewSOSAlertInput validates a decoded JSON body for an SOS alert.
// Errors are always *ValidationError.
func NewSOSAlertInput(fields map[string]any) (SOSAlertInput, error) {
	values, err := requireFields(fields, sosRequiredFields)
	if err != nil {
		return SOSAlertInput{}, err
	}

	if !ValidatePhoneNumber(values["phone"]) {
		return SOSAlertInput{}, &ValidationError{
			Message: fmt.Sprintf("Invalid phone number: must contain %d-%d digits", MinPhoneDigits, MaxPhoneDigits),
			Fields:  []string{"phone"},
		}
	}

	et, ok := ParseEmergencyType(values["emergency_type"])
	if !ok {
		allowed := make([]string, len(EmergencyTypes))
		for i, t := range EmergencyTypes {
			allowed[i] = string(t)
		}
		return SOSAlertInput{}, &ValidationError{
			Message: fmt.Sprintf("Invalid emergency_type %q. Must be one of: %s",
				values["emergency_type"], strings.Join(allowed, ", ")),
			Fields: []string{"emergency_type"},
		}
	}

	return SOSAlertInput{
		Name:          values["name"],
		Phone:         values["phone"],
		Location:      values["location"],
		EmergencyType: et,
		Message:       values["message"],
	}, nil
}

// NewAidRequestInput validates a decoded JSON body for an aid request.
// Errors are always *ValidationError.
func NewAidRequestInput(fields map[string]any) (AidRequestInput, error) {
	values, err := requireFields(fields, aidRequiredFields)
	if err != nil {
		return AidRequestInput{}, err
	}

	limits := []struct {
		field string
		max   int
	}{
		{"name", MaxRequesterNameLen},
		{"location", MaxLocationLen},
		{"aid_needed", MaxAidNeededLen},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(values[l.field]) > l.max {
			return AidRequestInput{}, &ValidationError{
				Message: fmt.Sprintf("%s must be at most %d characters", l.field, l.max),
				Fields:  []string{l.field},
			}
		}
	}

	return AidRequestInput{
		Name:      values["name"],
		Location:  values["location"],
		AidNeeded: values["aid_needed"],
	}, nil
}

// requireFields returns the trimmed string value of each required field, or a
// ValidationError naming every field that is absent, null, or blank.
func requireFields(fields map[string]any, required []string) (map[string]string, error) {
	values := make(map[string]string, len(required))
	var missing []string
	for _, name := range required {
		v := strings.TrimSpace(stringify(fields[name]))
		if v == "" {
			missing = append(missing, name)
			continue
		}
		values[name] = v
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Message: "Missing required fields: " + strings.Join(missing, ", "),
			Fields:  missing,
		}
	}
	return values, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
