// Package version orders CPAN version strings.
//
// Both Perl version styles are understood: decimal versions (3.007004) are
// split into groups of three fractional digits, dotted versions (v3.18.0,
// 3.18.0) are split on dots. Strings that carry no leading number are never
// rejected; they sort lexicographically below every numeric version, and the
// "undef" sentinel sorts below everything.
package version

import (
	"regexp"
	"strings"
)

// Undef is the sentinel used when a record carries no version.
const Undef = "undef"

type rank int

const (
	rankUndef rank = iota
	rankText
	rankNumeric
)

var numericRe = regexp.MustCompile(`^(v?)(\d+(?:[._]\d+)*)(.*)$`)

// Token is a parsed, immutable version.
type Token struct {
	raw    string
	rank   rank
	parts  []string // digit strings without leading zeros
	suffix string
}

// New parses s. It never fails.
func New(s string) Token {
	s = strings.TrimSpace(s)
	if s == "" || s == Undef {
		return Token{raw: Undef, rank: rankUndef}
	}

	m := numericRe.FindStringSubmatch(s)
	if m == nil {
		return Token{raw: s, rank: rankText}
	}

	return Token{
		raw:    s,
		rank:   rankNumeric,
		parts:  normalize(m[1] == "v", m[2]),
		suffix: m[3],
	}
}

// String returns the version as it was written.
func (t Token) String() string {
	if t.raw == "" {
		return Undef
	}
	return t.raw
}

// IsUndef reports whether t is the undef sentinel.
func (t Token) IsUndef() bool {
	return t.raw == "" || t.rank == rankUndef
}

// Compare returns -1, 0 or 1. The order is total over all strings.
func (t Token) Compare(o Token) int {
	if t.rank != o.rank {
		if t.rank < o.rank {
			return -1
		}
		return 1
	}

	switch t.rank {
	case rankUndef:
		return 0
	case rankText:
		return strings.Compare(t.raw, o.raw)
	}

	n := max(len(t.parts), len(o.parts))
	for i := 0; i < n; i++ {
		if c := compareDigits(part(t.parts, i), part(o.parts, i)); c != 0 {
			return c
		}
	}
	return strings.Compare(t.suffix, o.suffix)
}

// Less reports whether t sorts before o.
func (t Token) Less(o Token) bool {
	return t.Compare(o) < 0
}

// Compare parses and compares two version strings.
func Compare(a, b string) int {
	return New(a).Compare(New(b))
}

// IsAlpha reports whether v is a developer release, marked with an
// underscore (1.23_01).
func IsAlpha(v string) bool {
	return strings.Contains(v, "_")
}

func part(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return "0"
}

// compareDigits compares two digit strings without leading zeros, so that
// arbitrarily long components never overflow.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// normalize converts the numeric prefix of a version into components.
// Decimal format: 3.007004 -> [3, 7, 4] (groups of 3 digits in fractional part)
// Dotted format: 3.18.0 -> [3, 18, 0]
func normalize(dotted bool, v string) []string {
	if !dotted && strings.Count(v, ".") <= 1 {
		v = strings.ReplaceAll(v, "_", "")
	} else {
		v = strings.ReplaceAll(v, "_", ".")
	}

	parts := strings.Split(v, ".")
	if len(parts) == 1 {
		return []string{trimZeros(parts[0])}
	}

	if !dotted && len(parts) == 2 && len(parts[1]) > 3 {
		result := []string{trimZeros(parts[0])}
		frac := parts[1]
		for len(frac) > 0 {
			chunk := frac
			if len(chunk) > 3 {
				chunk, frac = frac[:3], frac[3:]
			} else {
				chunk, frac = chunk+strings.Repeat("0", 3-len(chunk)), ""
			}
			result = append(result, trimZeros(chunk))
		}
		return result
	}

	result := make([]string, len(parts))
	for i, p := range parts {
		result[i] = trimZeros(p)
	}
	return result
}

func trimZeros(s string) string {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}
