package graph

import (
	"strconv"
	"strings"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
)

// Count keys reported in Result.Counts.
const (
	CountCases               = "cases"
	CountCitationCases       = "citation_cases"
	CountJudges              = "judges"
	CountPetitionerAdvocates = "petitioner_advocates"
	CountRespondentAdvocates = "respondent_advocates"
	CountOutcomes            = "outcomes"
	CountDurations           = "durations"
	CountTitleMatches        = "title_matches"
	CountDuplicateTitles     = "duplicate_titles"
	CountRejected            = "rejected"
	CountTriples             = "triples"
)

// Counts holds per-kind node counts, per-relation edge counts and a few run
// statistics. It is informational only.
type Counts map[string]int

// entityEmitter is the shared template for the judge, advocate, outcome and
// duration emitters.
type entityEmitter struct {
	kind      common.Kind
	relation  string
	countKey  string
	attribute func(value string) []common.Triple
}

var entityEmitters = map[common.Kind]entityEmitter{
	common.KindJudge: {
		kind:     common.KindJudge,
		relation: common.PredJudgedBy,
		countKey: CountJudges,
		attribute: func(v string) []common.Triple {
			return []common.Triple{{Predicate: common.PredName, Object: v}}
		},
	},
	common.KindPetitionerAdvocate: {
		kind:     common.KindPetitionerAdvocate,
		relation: common.PredPetitionerRepresentedBy,
		countKey: CountPetitionerAdvocates,
		attribute: func(v string) []common.Triple {
			return []common.Triple{
				{Predicate: common.PredName, Object: v},
				{Predicate: common.PredAdvocateRole, Object: common.RolePetitioner},
			}
		},
	},
	common.KindRespondentAdvocate: {
		kind:     common.KindRespondentAdvocate,
		relation: common.PredRespondentRepresentedBy,
		countKey: CountRespondentAdvocates,
		attribute: func(v string) []common.Triple {
			return []common.Triple{
				{Predicate: common.PredName, Object: v},
				{Predicate: common.PredAdvocateRole, Object: common.RoleRespondent},
			}
		},
	},
	common.KindOutcome: {
		kind:     common.KindOutcome,
		relation: common.PredHasOutcome,
		countKey: CountOutcomes,
		attribute: func(v string) []common.Triple {
			return []common.Triple{{Predicate: common.PredLabel, Object: v}}
		},
	},
	common.KindDuration: {
		kind:     common.KindDuration,
		relation: common.PredHasDuration,
		countKey: CountDurations,
		attribute: func(v string) []common.Triple {
			return []common.Triple{{Predicate: common.PredDescription, Object: v}}
		},
	},
}

// batch is the state of a single RunBatch call. Nothing in it outlives the
// call.
type batch struct {
	sentinels sentinelSet
	memo      *Memo
	titles    *TitleIndex
	triples   []common.Triple
	counts    Counts
}

func newBatch(sentinels sentinelSet) *batch {
	return &batch{
		sentinels: sentinels,
		memo:      NewMemo(),
		titles:    NewTitleIndex(),
		counts:    make(Counts),
	}
}

func (b *batch) add(triples ...common.Triple) {
	b.triples = append(b.triples, triples...)
}

func (b *batch) edge(caseID, predicate, targetID string) {
	b.add(common.Triple{Subject: caseID, Predicate: predicate, Object: targetID, Ref: true})
	b.counts[predicate]++
}

// node appends the type and identifier triples of id followed by attrs with
// their subject filled in.
func (b *batch) node(kind common.Kind, id string, attrs ...common.Triple) {
	b.add(
		common.Triple{Subject: id, Predicate: common.PredType, Object: kind.TypeName()},
		common.Triple{Subject: id, Predicate: kind.IDPredicate(), Object: id},
	)
	for _, a := range attrs {
		a.Subject = id
		b.add(a)
	}
}

// emitEntities runs the entity template for every raw value of one field.
func (b *batch) emitEntities(kind common.Kind, caseID string, values []string) {
	e := entityEmitters[kind]
	for _, raw := range values {
		if b.sentinels.missing(raw) {
			continue
		}
		id, isNew := b.memo.GetOrCreate(e.kind, raw)
		if isNew {
			b.node(e.kind, id, e.attribute(strings.TrimSpace(raw))...)
			b.counts[e.countKey]++
		}
		b.edge(caseID, e.relation, id)
	}
}

// emitCitations resolves citation titles against the title index first and
// falls back to a citation-only Case node.
func (b *batch) emitCitations(caseID string, citations []string) {
	for _, raw := range citations {
		if b.sentinels.missing(raw) {
			continue
		}
		if target, ok := b.titles.Lookup(raw); ok {
			b.counts[CountTitleMatches]++
			b.edge(caseID, common.PredCites, target)
			continue
		}
		target, isNew := b.memo.GetOrCreate(common.KindCase, raw)
		if isNew {
			b.node(common.KindCase, target, common.Triple{
				Predicate: common.PredTitle,
				Object:    strings.TrimSpace(raw),
			})
			b.counts[CountCitationCases]++
		}
		b.edge(caseID, common.PredCites, target)
	}
}

// caseAttributes returns the full attribute triples of a record's Case node.
func (b *batch) caseAttributes(r common.Record) []common.Triple {
	attrs := []common.Triple{{Predicate: common.PredTitle, Object: strings.TrimSpace(r.Title)}}
	if !b.sentinels.missing(r.DocID) {
		attrs = append(attrs, common.Triple{Predicate: common.PredDocID, Object: strings.TrimSpace(r.DocID)})
	}
	if r.Year != nil {
		attrs = append(attrs, common.Triple{
			Predicate: common.PredYear,
			Object:    strconv.Itoa(*r.Year),
			Datatype:  common.DatatypeInt,
		})
	}
	if !r.IngestedAt.IsZero() {
		attrs = append(attrs, common.Triple{
			Predicate: common.PredIngestedAt,
			Object:    r.IngestedAt.UTC().Format(time.RFC3339),
			Datatype:  common.DatatypeDateTime,
		})
	}
	return attrs
}
