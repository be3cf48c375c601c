package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Phone number digit bounds, inclusive.
const (
	MinPhoneDigits = 10
	MaxPhoneDigits = 15
)

// EmergencyType categorises an SOS alert.
type EmergencyType string

// Allowed emergency types.
const (
	EmergencyMedical    EmergencyType = "medical"
	EmergencyFire       EmergencyType = "fire"
	EmergencyFlood      EmergencyType = "flood"
	EmergencyEarthquake EmergencyType = "earthquake"
	EmergencyTrapped    EmergencyType = "trapped"
	EmergencyOther      EmergencyType = "other"
)

// EmergencyTypes lists the allowed values in display order.
var EmergencyTypes = []EmergencyType{
	EmergencyMedical, EmergencyFire, EmergencyFlood,
	EmergencyEarthquake, EmergencyTrapped, EmergencyOther,
}

// ParseEmergencyType matches s case-insensitively against EmergencyTypes.
func ParseEmergencyType(s string) (EmergencyType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range EmergencyTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ValidatePhoneNumber reports whether phone has between MinPhoneDigits and
// MaxPhoneDigits digits once every non-digit character is stripped.
func ValidatePhoneNumber(phone string) bool {
	n := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n >= MinPhoneDigits && n <= MaxPhoneDigits
}

// ValidateCoordinates reports whether lat and lng parse as numbers within
// [-90, 90] and [-180, 180]. Non-numeric input yields false.
func ValidateCoordinates(lat, lng any) bool {
	la, ok := toFloat(lat)
	if !ok {
		return false
	}
	lo, ok := toFloat(lng)
	if !ok {
		return false
	}
	return la >= -90 && la <= 90 && lo >= -180 && lo <= 180
}

// ParseCoordinate converts a numeric or numeric-string value to float64.
// It reports false for anything else, including NaN.
func ParseCoordinate(v any) (float64, bool) {
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimFunc(x, unicode.IsSpace), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
