package validators

import "strings"

// MaskString masks all but the last four characters of value. Short values
// are fully masked so their length is not disclosed.
func MaskString(value string) string {
	if len(value) < 4 {
		return "************"
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}

// MaskPassword fully masks a password, hiding even its length.
func MaskPassword(string) string {
	return "*************************"
}
