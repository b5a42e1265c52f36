// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package price extracts a single trustworthy bid price from noisy page
// text and computes the competitive price score across bidders.
package price

import "strings"

var numeralDigits = map[rune]float64{
	'零': 0, '〇': 0,
	'一': 1, '壹': 1,
	'二': 2, '贰': 2, '两': 2,
	'三': 3, '叁': 3,
	'四': 4, '肆': 4,
	'五': 5, '伍': 5,
	'六': 6, '陆': 6,
	'七': 7, '柒': 7,
	'八': 8, '捌': 8,
	'九': 9, '玖': 9,
}

var numeralUnits = map[rune]float64{
	'十': 10, '拾': 10,
	'百': 100, '佰': 100,
	'千': 1000, '仟': 1000,
}

var numeralLargeUnits = map[rune]float64{
	'万': 1e4, '萬': 1e4,
	'亿': 1e8, '億': 1e8,
}

// ParseChineseNumeral converts a Chinese-numeral amount spelling (financial
// or common digits) to its value. Currency decoration (人民币, 元, 整) is
// tolerated; 角 and 分 become decimal fractions. Returns false when the
// string contains no parseable numeral.
func ParseChineseNumeral(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"人民币", "大写", "：", ":"} {
		s = strings.TrimPrefix(s, prefix)
	}
	for _, suffix := range []string{"整", "正"} {
		s = strings.TrimSuffix(s, suffix)
	}
	if s == "" {
		return 0, false
	}

	intPart, fracPart := s, ""
	if i := strings.IndexAny(s, "元圆"); i >= 0 {
		intPart = s[:i]
		fracPart = s[i:]
		// Skip the currency rune itself.
		for _, sep := range []string{"元", "圆"} {
			fracPart = strings.TrimPrefix(fracPart, sep)
		}
	}

	value, seen := parseIntegerNumeral(intPart)
	fracValue, fracSeen := parseFractionNumeral(fracPart)
	if !seen && !fracSeen {
		return 0, false
	}
	return value + fracValue, true
}

// parseIntegerNumeral applies segment-weighted summation: small units
// (十/百/千) multiply the pending digit into the current segment; large
// units (万/亿) close the segment and scale it.
func parseIntegerNumeral(s string) (float64, bool) {
	var total, section, current float64
	seen := false

	for _, r := range s {
		switch {
		case numeralDigits[r] != 0 || r == '零' || r == '〇':
			current = numeralDigits[r]
			seen = true
		case numeralUnits[r] != 0:
			if current == 0 {
				// "十" alone means one ten.
				current = 1
			}
			section += current * numeralUnits[r]
			current = 0
			seen = true
		case numeralLargeUnits[r] != 0:
			unit := numeralLargeUnits[r]
			if unit == 1e8 {
				total = (total + section + current) * unit
				section = 0
			} else {
				section = (section + current) * unit
				total += section
				section = 0
			}
			current = 0
			seen = true
		}
		// Unknown runes (whitespace, stray text) are skipped.
	}
	return total + section + current, seen
}

// parseFractionNumeral reads the 角/分 tail after the currency rune.
func parseFractionNumeral(s string) (float64, bool) {
	var value, current float64
	seen := false
	for _, r := range s {
		switch {
		case numeralDigits[r] != 0 || r == '零' || r == '〇':
			current = numeralDigits[r]
		case r == '角':
			value += current * 0.1
			current = 0
			seen = true
		case r == '分':
			value += current * 0.01
			current = 0
			seen = true
		}
	}
	return value, seen
}
