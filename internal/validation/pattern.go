package validation

import "strings"

// CleanSequence drops every character that is not '0' or '1'.
func CleanSequence(sequence string) string {
	return strings.Map(func(r rune) rune {
		if r == '0' || r == '1' {
			return r
		}
		return -1
	}, sequence)
}
