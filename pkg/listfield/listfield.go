// Package listfield decodes multi-valued text columns of the judgment
// table. Values were imported from spreadsheets and tabular exports and
// arrive in several encodings:
//
//	["A. Kumar", "B. Iyer"]           JSON array
//	['A. Kumar', 'B. Iyer']           Python list literal
//	{'cited_cases': ['X v. Y']}        dict with a cited_cases key
//	'cited_cases': ['X v. Y']          the same dict without braces
//	A. Kumar, B. Iyer                 comma separated
//	A. Kumar                          single value
package listfield

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/graph"

	"github.com/kaptinlin/jsonrepair"
)

const citedCasesKey = "cited_cases"

var reQuoted = regexp.MustCompile(`"([^"]*)"`)

// Parse decodes raw into its list of non-empty, trimmed items. Unknown or
// broken encodings degrade to the closest readable form instead of failing.
func Parse(raw string) []string {
	raw = strings.TrimSpace(raw)
	if graph.IsMissing(raw) {
		return nil
	}

	switch {
	case strings.HasPrefix(raw, "{") || strings.Contains(raw, citedCasesKey):
		if !strings.HasPrefix(raw, "{") {
			raw = "{" + raw + "}"
		}
		var dict map[string]any
		if err := unmarshalFlexible(raw, &dict); err != nil {
			return nil
		}
		return clean(dict[citedCasesKey])

	case strings.HasPrefix(raw, "["):
		cleaned := strings.NewReplacer(`\"`, `"`, `\n`, " ", `\t`, " ").Replace(raw)
		var items []any
		if err := unmarshalFlexible(cleaned, &items); err == nil {
			return clean(items)
		}
		var out []string
		for _, m := range reQuoted.FindAllStringSubmatch(cleaned, -1) {
			out = appendItem(out, m[1])
		}
		return out

	case strings.Contains(raw, ","):
		var out []string
		for _, part := range strings.Split(raw, ",") {
			out = appendItem(out, strings.Trim(strings.TrimSpace(part), `"'`))
		}
		return out

	default:
		return appendItem(nil, strings.Trim(raw, `"'`))
	}
}

// ParseScalar decodes a single-valued column. Empty and sentinel values
// become "".
func ParseScalar(raw string) string {
	raw = strings.TrimSpace(raw)
	if graph.IsMissing(raw) {
		return ""
	}
	return raw
}

func clean(v any) []string {
	list, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil
		}
		return appendItem(nil, stringify(v))
	}
	var out []string
	for _, item := range list {
		if item == nil {
			continue
		}
		out = appendItem(out, stringify(item))
	}
	return out
}

func appendItem(out []string, item string) []string {
	item = strings.TrimSpace(item)
	if item == "" {
		return out
	}
	return append(out, item)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func unmarshalFlexible(input string, out any) error {
	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: %w", err)
	}
	return nil
}
