package models

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Zero-width and BOM characters leak out of spreadsheet exports and silently
// fragment what should be one category key.
var labelStripper = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "",
)

// NormalizeLabel canonicalizes a free-text category label so it can be used
// as an exact-match group key: trim, strip invisible characters, compose to
// NFC.
func NormalizeLabel(label string) string {
	cleaned := labelStripper.Replace(strings.TrimSpace(label))
	return norm.NFC.String(strings.TrimSpace(cleaned))
}
