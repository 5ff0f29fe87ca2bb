// CLAUDE:SUMMARY Locale-aware parsing of money, quantity, and count text pulled from page elements.
package snapshot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseMoney parses a locale-formatted price string into a float value.
//
// Accepts currency symbols ("R$ 12,90", "€1.234,56", "$1,234.56"),
// non-breaking spaces, and both decimal-comma and decimal-point
// conventions. When both separators appear, the last one is taken as the
// decimal mark; a lone comma or point followed by one or two digits is a
// decimal mark, otherwise a thousands separator.
func ParseMoney(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" || cleaned == "-" {
		return 0, fmt.Errorf("parse money %q: no numeric content", s)
	}

	lastComma := strings.LastIndexByte(cleaned, ',')
	lastDot := strings.LastIndexByte(cleaned, '.')

	var decimalSep byte
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			decimalSep = ','
		} else {
			decimalSep = '.'
		}
	case lastComma >= 0:
		if isDecimalMark(cleaned, lastComma) {
			decimalSep = ','
		}
	case lastDot >= 0:
		if isDecimalMark(cleaned, lastDot) {
			decimalSep = '.'
		}
	}

	var sb strings.Builder
	for i := 0; i < len(cleaned); i++ {
		c := cleaned[i]
		switch c {
		case ',', '.':
			if c == decimalSep && i == strings.LastIndexByte(cleaned, decimalSep) {
				sb.WriteByte('.')
			}
			// other separators are thousands marks, dropped
		default:
			sb.WriteByte(c)
		}
	}

	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	return v, nil
}

// isDecimalMark reports whether the separator at idx is followed by one
// or two trailing digits, which marks it as a decimal point rather than
// a thousands separator.
func isDecimalMark(s string, idx int) bool {
	trailing := len(s) - idx - 1
	return trailing == 1 || trailing == 2
}

// ParseQuantity extracts an item quantity from compound text such as
// "x2", "2", "Qtd: 3", or "2 un".
func ParseQuantity(s string) (int, error) {
	n, err := firstInt(s)
	if err != nil {
		return 0, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("parse quantity %q: negative", s)
	}
	return n, nil
}

// ParseCount extracts an item count from text such as "38 Produtos".
func ParseCount(s string) (int, error) {
	n, err := firstInt(s)
	if err != nil {
		return 0, fmt.Errorf("parse count %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("parse count %q: negative", s)
	}
	return n, nil
}

// firstInt returns the first run of digits in s as an integer.
func firstInt(s string) (int, error) {
	start := -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return strconv.Atoi(s[start:i])
		}
	}
	if start >= 0 {
		return strconv.Atoi(s[start:])
	}
	return 0, fmt.Errorf("no digits")
}

// Round2 rounds a money value to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
