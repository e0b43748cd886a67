package action

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoldName produces the comparison key for item names: NFC-normalised,
// whitespace collapsed, Unicode case-folded. "  RICE  basmati" and
// "rice Basmati" fold to the same key.
//
// A cases.Caser is stateful, so one is created per call.
func FoldName(name string) string {
	name = norm.NFC.String(name)
	name = strings.Join(strings.Fields(name), " ")
	return cases.Fold().String(name)
}

// CleanName trims and collapses whitespace while keeping the caller's casing.
func CleanName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}
