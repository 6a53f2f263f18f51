// Package textnorm normalizes transcript text for acoustic model
// training: Unicode normalization, lowercasing, punctuation removal, and
// expansion of integers into words.
package textnorm

import (
	"strconv"
	"strings"

	"github.com/divan/num2words"
	"golang.org/x/text/unicode/norm"
)

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Clean converts raw transcript text into the normalized form stored in
// the manifest: NFC, lowercase, no punctuation, digits spelled out, and
// runs of whitespace collapsed to single spaces.
func Clean(text string) string {
	text = norm.NFC.String(text)
	text = strings.ToLower(text)
	text = stripPunctuation(text)
	text = expandNumbers(text)
	return collapseWhitespace(text)
}

// stripPunctuation deletes punctuation without leaving a gap, so
// "don't" becomes "dont" and "12,500" becomes "12500".
func stripPunctuation(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(punctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// expandNumbers replaces standalone integer tokens with their spoken
// form. Tokens mixing digits and letters, like "mp3", stay as they are.
func expandNumbers(text string) string {
	fields := strings.Fields(text)
	for i, field := range fields {
		value, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		fields[i] = strings.ToLower(num2words.Convert(value))
	}
	return strings.Join(fields, " ")
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
