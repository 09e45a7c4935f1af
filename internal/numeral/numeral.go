// Package numeral converts spoken-number tokens into integers.
//
// Speech-to-text output mixes literal digits ("21"), number words
// ("twenty-one"), and occasionally ordinals ("first John"). Resolve accepts
// all three; anything else is reported as unparseable so the caller can drop
// the candidate rather than misread it as zero.
package numeral

import (
	"strconv"
	"strings"
)

// simpleWords maps single number words and ordinals to their values.
// Covers one through fifty plus the ordinal forms that show up in book
// names and verse phrases ("first", "2nd").
var simpleWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50,

	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"1st": 1, "2nd": 2, "3rd": 3, "4th": 4, "5th": 5,
}

// tensWords are the multiple-of-ten words that can lead a compound
// ("twenty one" → 21). Ten itself never forms a compound.
var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
}

// Resolve converts token into an integer. Token may be a digit string, a
// number word, or a hyphen/space compound such as "twenty-one" or
// "twenty one". The second return value is false when the token cannot be
// parsed; callers must treat that as a non-match, never as zero.
func Resolve(token string) (int, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(token); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}

	if n, ok := simpleWords[token]; ok {
		return n, true
	}

	// Compound: tens word + units word, joined by hyphen or space.
	normalized := strings.ReplaceAll(token, "-", " ")
	parts := strings.Fields(normalized)
	if len(parts) == 2 {
		tens, tensOK := tensWords[parts[0]]
		units, unitsOK := simpleWords[parts[1]]
		if tensOK && unitsOK && units >= 1 && units <= 9 {
			return tens + units, true
		}
	}

	return 0, false
}

// IsTensWord reports whether word is a multiple-of-ten number word ≥ 20
// ("twenty", "thirty", ...) and returns its value. The pattern matcher uses
// this to distinguish a compound chapter number from two independent numbers.
func IsTensWord(word string) (int, bool) {
	n, ok := tensWords[strings.ToLower(strings.TrimSpace(word))]
	return n, ok
}

// IsUnitsWord reports whether word is a number word in [1, 9] and returns
// its value.
func IsUnitsWord(word string) (int, bool) {
	n, ok := simpleWords[strings.ToLower(strings.TrimSpace(word))]
	if !ok || n < 1 || n > 9 {
		return 0, false
	}
	return n, true
}
