package schema

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Commit record display constraints.
const (
	MaxSummaryLength = 80
	ShortHashLength  = 7
)

// cleanParts trims non-alphanumeric punctuation from the ends of each name part.
func cleanParts(parts []string) []string {
	var cleaned []string
	for _, p := range parts {
		cp := strings.TrimFunc(p, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '\'' && r != '.'
		})
		cp = strings.TrimSuffix(cp, ".")
		if cp != "" {
			cleaned = append(cleaned, cp)
		}
	}
	return cleaned
}

// AbbreviateName formats "Samuel Huang" to "Samuel H".
// Bot accounts such as dependabot[bot] and single-word names are returned unchanged.
func AbbreviateName(name string) string {
	trimmed := strings.TrimSpace(name)
	if strings.Contains(trimmed, "[bot]") {
		return strings.Join(strings.Fields(trimmed), " ")
	}

	cleaned := cleanParts(strings.Fields(strings.Trim(trimmed, "()\"'`")))
	switch len(cleaned) {
	case 0:
		return trimmed
	case 1:
		return cleaned[0]
	}

	first, last := cleaned[0], cleaned[len(cleaned)-1]
	if r, _ := utf8.DecodeRuneInString(last); r != utf8.RuneError {
		return first + " " + string(r)
	}
	return first
}

// CommitSummary returns the first line of a commit message, truncated to MaxSummaryLength runes.
func CommitSummary(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) > MaxSummaryLength {
		return string(runes[:MaxSummaryLength])
	}
	return line
}

// ShortHash returns the abbreviated form of a commit hash.
func ShortHash(hash string) string {
	if len(hash) > ShortHashLength {
		return hash[:ShortHashLength]
	}
	return hash
}
