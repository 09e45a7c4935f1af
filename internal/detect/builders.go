package detect

import (
	"strconv"
	"strings"

	"github.com/versecue/versecue/internal/numeral"
)

// buildKeyword handles the verbal and verbalShort rules: chapter and verse
// arrive as tokens (digits, number words, or compounds) and go through the
// numeral resolver. An unparseable token drops the whole candidate.
func buildKeyword(_ *Scanner, groups []string) (Match, bool) {
	chapter, ok := numeral.Resolve(groups[2])
	if !ok {
		return Match{}, false
	}
	verse, ok := numeral.Resolve(groups[3])
	if !ok {
		return Match{}, false
	}
	m := Match{Chapter: chapter, VerseStart: verse}
	if groups[4] != "" {
		end, ok := numeral.Resolve(groups[4])
		if !ok {
			return Match{}, false
		}
		m.VerseEnd = end
	}
	return m, true
}

// buildStandard handles "Book C:V" and "Book C:V-V".
func buildStandard(_ *Scanner, groups []string) (Match, bool) {
	chapter, err1 := strconv.Atoi(groups[2])
	verse, err2 := strconv.Atoi(groups[3])
	if err1 != nil || err2 != nil {
		return Match{}, false
	}
	m := Match{Chapter: chapter, VerseStart: verse}
	if groups[4] != "" {
		end, err := strconv.Atoi(groups[4])
		if err != nil {
			return Match{}, false
		}
		m.VerseEnd = end
	}
	return m, true
}

// buildSpoken handles space-separated "Book C V" and concatenated digit runs
// "Book CVV". A concatenated run of three or more digits splits into a 1–2
// digit chapter prefix and a 2-digit verse suffix, so "John 316" reads as
// 3:16 while "John 11" is left to the chapter-only rule.
func buildSpoken(_ *Scanner, groups []string) (Match, bool) {
	if groups[4] != "" {
		chapter, verse, ok := splitDigitRun(groups[4])
		if !ok {
			return Match{}, false
		}
		return Match{Chapter: chapter, VerseStart: verse}, true
	}
	chapter, err1 := strconv.Atoi(groups[2])
	verse, err2 := strconv.Atoi(groups[3])
	if err1 != nil || err2 != nil {
		return Match{}, false
	}
	return Match{Chapter: chapter, VerseStart: verse}, true
}

// buildSpokenRange handles the spoken forms followed by "to V" / "through V".
func buildSpokenRange(_ *Scanner, groups []string) (Match, bool) {
	var chapter, verse int
	if groups[4] != "" {
		var ok bool
		chapter, verse, ok = splitDigitRun(groups[4])
		if !ok {
			return Match{}, false
		}
	} else {
		var err1, err2 error
		chapter, err1 = strconv.Atoi(groups[2])
		verse, err2 = strconv.Atoi(groups[3])
		if err1 != nil || err2 != nil {
			return Match{}, false
		}
	}
	end, err := strconv.Atoi(groups[5])
	if err != nil {
		return Match{}, false
	}
	return Match{Chapter: chapter, VerseStart: verse, VerseEnd: end}, true
}

// buildSpokenWords handles chapter/verse expressed entirely as number words.
// The run is two to four words; a leading multiple-of-ten word (≥ 20)
// followed by a units word forms a compound chapter ("twenty one one" →
// 21:1), otherwise the words are independent chapter and verse numbers.
func buildSpokenWords(_ *Scanner, groups []string) (Match, bool) {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(groups[2]), "-", " "))

	chapter, rest, ok := takeNumber(words)
	if !ok {
		return Match{}, false
	}
	verse, rest, ok := takeNumber(rest)
	if !ok || len(rest) != 0 {
		return Match{}, false
	}
	return Match{Chapter: chapter, VerseStart: verse}, true
}

// takeNumber consumes one number from the front of words: either a compound
// (tens word ≥ 20 + units word 1–9) or a single number word.
func takeNumber(words []string) (value int, rest []string, ok bool) {
	if len(words) == 0 {
		return 0, nil, false
	}
	if len(words) >= 2 {
		if tens, isTens := numeral.IsTensWord(words[0]); isTens {
			if units, isUnits := numeral.IsUnitsWord(words[1]); isUnits {
				return tens + units, words[2:], true
			}
		}
	}
	n, ok := numeral.Resolve(words[0])
	if !ok {
		return 0, nil, false
	}
	return n, words[1:], true
}

// buildChapterOnly handles a bare "Book C"; verse 1 is implied.
func buildChapterOnly(_ *Scanner, groups []string) (Match, bool) {
	chapter, err := strconv.Atoi(groups[2])
	if err != nil {
		return Match{}, false
	}
	return Match{Chapter: chapter, VerseStart: 1}, true
}

// splitDigitRun divides a concatenated 3–4 digit run into a 1–2 digit
// chapter prefix and a 2-digit verse suffix. Shorter runs never split —
// "John 11" stays chapter 11 rather than becoming 1:1.
func splitDigitRun(run string) (chapter, verse int, ok bool) {
	if len(run) < 3 || len(run) > 4 {
		return 0, 0, false
	}
	chapter, err1 := strconv.Atoi(run[:len(run)-2])
	verse, err2 := strconv.Atoi(run[len(run)-2:])
	if err1 != nil || err2 != nil || chapter < 1 || verse < 1 {
		return 0, 0, false
	}
	return chapter, verse, true
}
