package parser

import (
	"strconv"
	"strings"
)

// Ordinal tokens are accepted in three encodings. When a token is valid under
// more than one scheme the first match wins: Arabic digits, then Roman
// numerals, then spelled-out words. A bare "I" in ordinal position is read as
// Roman 1, not a pronoun. The order is a deliberate choice; change
// ordinalSchemes to change it.
var ordinalSchemes = []func(string) (int, bool){
	parseArabic,
	parseRoman,
	parseNumberWord,
}

// parseOrdinalToken parses a single cleaned token as a chapter ordinal.
func parseOrdinalToken(token string) (int, bool) {
	for _, scheme := range ordinalSchemes {
		if n, ok := scheme(token); ok && n > 0 {
			return n, true
		}
	}
	return 0, false
}

func parseArabic(token string) (int, bool) {
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return n, true
}

var romanValues = map[byte]int{
	'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000,
}

func parseRoman(token string) (int, bool) {
	s := strings.ToUpper(token)
	if s == "" {
		return 0, false
	}

	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0, false
		}
		if i > 0 && v > romanValues[s[i-1]] {
			// Subtractive pair: the previous value was already added.
			total += v - 2*romanValues[s[i-1]]
		} else {
			total += v
		}
	}
	return total, total > 0
}

var unitWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// parseNumberWord parses spelled-out English numbers up to 999, including
// hyphenated forms ("twenty-one") and multi-word forms joined by spaces
// ("one hundred forty two", with an optional "and").
func parseNumberWord(token string) (int, bool) {
	fields := strings.FieldsFunc(strings.ToLower(token), func(r rune) bool {
		return r == ' ' || r == '-'
	})
	if len(fields) == 0 {
		return 0, false
	}

	total := 0
	current := 0
	seen := false

	for _, w := range fields {
		switch {
		case w == "and":
			if !seen {
				return 0, false
			}
		case w == "hundred":
			if current == 0 {
				return 0, false
			}
			current *= 100
		default:
			if v, ok := unitWords[w]; ok {
				current += v
				seen = true
			} else if v, ok := tensWords[w]; ok {
				current += v
				seen = true
			} else {
				return 0, false
			}
		}
	}

	total += current
	return total, seen
}

// isNumberWord reports whether a cleaned token can extend a spelled-out
// number already in progress.
func isNumberWord(token string) bool {
	t := strings.ToLower(token)
	if t == "hundred" || t == "and" {
		return true
	}
	if _, ok := unitWords[t]; ok {
		return true
	}
	_, ok := tensWords[t]
	return ok
}
