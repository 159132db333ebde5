package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CapitalizeWords title-cases every word and lower-cases the rest using the
// Unicode title mappings. Runs of whitespace collapse to one space.
func CapitalizeWords(s string) string {
	// a Caser keeps state, so one per call
	return cases.Title(language.Und).String(strings.Join(strings.Fields(s), " "))
}
