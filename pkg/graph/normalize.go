package graph

import "strings"

// defaultSentinels are raw values treated as "no value" in list and scalar
// fields. Comparison happens after normalization.
var defaultSentinels = []string{"", "nan", "null", "none", "n/a", "[]", "{}"}

// Normalize canonicalizes a raw key before hashing. It lower-cases and strips
// leading and trailing whitespace and performs no other transformation.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

type sentinelSet map[string]struct{}

func newSentinelSet(extra []string) sentinelSet {
	s := make(sentinelSet, len(defaultSentinels)+len(extra))
	for _, v := range defaultSentinels {
		s[v] = struct{}{}
	}
	for _, v := range extra {
		s[Normalize(v)] = struct{}{}
	}
	return s
}

func (s sentinelSet) missing(raw string) bool {
	_, ok := s[Normalize(raw)]
	return ok
}

var builtinSentinels = newSentinelSet(nil)

// IsMissing reports whether raw is blank or one of the built-in missing
// sentinels such as "nan" or "null".
func IsMissing(raw string) bool {
	return builtinSentinels.missing(raw)
}
