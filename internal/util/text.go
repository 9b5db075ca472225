package util

import "strings"

// SanitizeText drops invalid UTF-8 sequences and NUL bytes. Spreadsheet
// imports occasionally carry both, and neither survives a round trip
// through PostgreSQL text columns or the N-Quads encoder.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
