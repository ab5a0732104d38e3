// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package generator

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
)

const (
	// maxQuestionLength caps a sanitized question; longer text is truncated
	// with an ellipsis to keep downstream payloads bounded.
	maxQuestionLength = 2000

	// minPunctuateLength is the length above which a question missing
	// terminal punctuation gets a question mark appended.
	minPunctuateLength = 10
)

var (
	// fillerPrefixRe strips a spurious filler token some models emit at the
	// start of a question, along with trailing separators.
	fillerPrefixRe = regexp.MustCompile(`(?i)^bruh[,.\s]*`)

	// leadingMarksRe strips quote and markdown characters from the start.
	leadingMarksRe = regexp.MustCompile(`^['"*_~]+`)

	// jsonQuestionRe finds a question field inside text that is not valid
	// JSON as a whole.
	jsonQuestionRe = regexp.MustCompile(`"question"\s*:\s*"([^"]{5,})"`)

	// quotedQuestionRe finds a quoted sentence ending in a question mark.
	quotedQuestionRe = regexp.MustCompile(`"([^"]{10,}\?)"`)
)

// extractQuestion pulls the question text out of a raw model response, which
// may be plain text, a JSON object, or prose with embedded JSON.
func extractQuestion(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if utf8.RuneCountInString(trimmed) < 2 {
		return "", parleyerr.New(parleyerr.CodeGeneratorResponseInvalid,
			"generated response is empty or too short")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		if q, ok := parsed["question"].(string); ok && utf8.RuneCountInString(q) > 2 {
			return q, nil
		}
		// Fall back to the first string field of useful length.
		for _, v := range parsed {
			if s, ok := v.(string); ok && utf8.RuneCountInString(s) > 2 {
				return s, nil
			}
		}
	}

	if m := jsonQuestionRe.FindStringSubmatch(trimmed); m != nil {
		return m[1], nil
	}
	if m := quotedQuestionRe.FindStringSubmatch(trimmed); m != nil {
		return m[1], nil
	}
	return trimmed, nil
}

// Sanitize normalizes a generated question: strips the known filler prefix
// and leading quote marks, capitalizes the first letter, truncates oversized
// text, and appends terminal punctuation to longer unpunctuated questions.
func Sanitize(question string) string {
	cleaned := strings.TrimSpace(question)
	cleaned = fillerPrefixRe.ReplaceAllString(cleaned, "")
	cleaned = leadingMarksRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	cleaned = capitalize(cleaned)

	if utf8.RuneCountInString(cleaned) > maxQuestionLength {
		runes := []rune(cleaned)
		cleaned = string(runes[:maxQuestionLength-3]) + "..."
	}

	if utf8.RuneCountInString(cleaned) > minPunctuateLength && !hasTerminalPunctuation(cleaned) {
		cleaned += "?"
	}
	return cleaned
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func hasTerminalPunctuation(s string) bool {
	return strings.HasSuffix(s, "?") || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!")
}
