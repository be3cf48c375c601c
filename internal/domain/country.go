package domain

import "strings"

// Country is a country record as returned by reference data sources.
type Country struct {
	Name        string `json:"name"`
	Continent   string `json:"continent"`
	DisplayName string `json:"display_name,omitempty"`
}

// FormatCountryForDisplay returns a copy of c with DisplayName set to the
// upper-cased name followed by the continent in parentheses. A nil input
// returns nil; c itself is never modified.
func FormatCountryForDisplay(c *Country) *Country {
	if c == nil {
		return nil
	}
	formatted := *c
	formatted.DisplayName = strings.ToUpper(c.Name) + " (" + c.Continent + ")"
	return &formatted
}
