package neo4j

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
)

var labels = map[string]struct{}{
	common.TypeCase:     {},
	common.TypeJudge:    {},
	common.TypeAdvocate: {},
	common.TypeOutcome:  {},
	common.TypeDuration: {},
}

var idPredicates = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, p := range common.IDPredicates() {
		m[p] = struct{}{}
	}
	return m
}()

type edgeKey struct {
	Rel  string
	From string
	To   string
}

// graphRows is a batch of triples regrouped into UNWIND parameter rows:
// node property maps per label and edge endpoints per (type, labels).
type graphRows struct {
	Nodes map[string][]map[string]any
	Edges map[edgeKey][]map[string]any
}

// relationshipType maps an edge predicate to a Neo4j relationship type.
func relationshipType(predicate string) string {
	return strings.ToUpper(predicate)
}

func literalValue(t common.Triple) (any, error) {
	switch t.Datatype {
	case common.DatatypeInt:
		v, err := strconv.ParseInt(t.Object, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int literal %q for %s: %w", t.Object, t.Predicate, err)
		}
		return v, nil
	case common.DatatypeDateTime:
		v, err := time.Parse(time.RFC3339, t.Object)
		if err != nil {
			return nil, fmt.Errorf("invalid datetime literal %q for %s: %w", t.Object, t.Predicate, err)
		}
		return v, nil
	default:
		return t.Object, nil
	}
}

// toRows groups triples by subject. Every node must carry a type triple in
// the same batch, which RunBatch guarantees for every identifier it
// references.
func toRows(triples []common.Triple) (graphRows, error) {
	labelOf := make(map[string]string)
	props := make(map[string]map[string]any)
	var order []string

	for _, t := range triples {
		if t.Predicate != common.PredType {
			continue
		}
		if _, ok := labels[t.Object]; !ok {
			return graphRows{}, fmt.Errorf("unknown node type %q", t.Object)
		}
		if _, seen := labelOf[t.Subject]; !seen {
			order = append(order, t.Subject)
			props[t.Subject] = map[string]any{"id": t.Subject}
		}
		labelOf[t.Subject] = t.Object
	}

	rows := graphRows{
		Nodes: make(map[string][]map[string]any),
		Edges: make(map[edgeKey][]map[string]any),
	}

	for _, t := range triples {
		if t.Predicate == common.PredType {
			continue
		}
		from, ok := labelOf[t.Subject]
		if !ok {
			return graphRows{}, fmt.Errorf("node %s has no type in batch", t.Subject)
		}
		if t.Ref {
			to, ok := labelOf[t.Object]
			if !ok {
				return graphRows{}, fmt.Errorf("edge target %s has no type in batch", t.Object)
			}
			k := edgeKey{Rel: relationshipType(t.Predicate), From: from, To: to}
			rows.Edges[k] = append(rows.Edges[k], map[string]any{"from": t.Subject, "to": t.Object})
			continue
		}
		if _, ok := idPredicates[t.Predicate]; ok {
			continue
		}
		v, err := literalValue(t)
		if err != nil {
			return graphRows{}, err
		}
		props[t.Subject][t.Predicate] = v
	}

	for _, id := range order {
		l := labelOf[id]
		rows.Nodes[l] = append(rows.Nodes[l], props[id])
	}
	return rows, nil
}

func sortedLabels(m map[string][]map[string]any) []string {
	out := make([]string, 0, len(m))
	for l := range m {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

func sortedEdgeKeys(m map[edgeKey][]map[string]any) []edgeKey {
	out := make([]edgeKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b edgeKey) int {
		return strings.Compare(a.Rel+"|"+a.From+"|"+a.To, b.Rel+"|"+b.From+"|"+b.To)
	})
	return out
}
