package graph

import (
	"errors"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"
)

// ErrEmptyTitle is reported for records whose title is blank or a missing
// sentinel. Such records cannot be given a Case identifier.
var ErrEmptyTitle = errors.New("record has no title")

// Defect describes a record that was rejected from the batch. Rejected
// records must not be marked processed.
type Defect struct {
	RecordID int64  `json:"record_id"`
	DocID    string `json:"doc_id"`
	Reason   string `json:"reason"`
}

// Result is the output of RunBatch.
type Result struct {
	// Triples in emission order: all Case node triples from the collection
	// pass, then relationship triples record by record.
	Triples []common.Triple `json:"-"`
	Counts  Counts          `json:"counts"`
	Defects []Defect        `json:"defects,omitempty"`
	// Accepted holds the document store ids of every record that made it
	// into Triples.
	Accepted []int64 `json:"accepted"`
}

type staged struct {
	record common.Record
	caseID string
}

// RunBatch converts records into triples in two passes.
//
// The collection pass resolves every record's Case identifier, fills the
// title index and stages the Case node triples. The relationship pass runs
// the entity emitters and the citation emitter per record. The collection
// pass always completes before the relationship pass begins, so citations
// to records later in the batch resolve to the same Case identifier.
func (p *Processor) RunBatch(records []common.Record) Result {
	b := newBatch(p.sentinels)

	accepted, defects := p.collect(b, records)
	for _, s := range accepted {
		b.relate(s)
	}

	ids := make([]int64, 0, len(accepted))
	for _, s := range accepted {
		ids = append(ids, s.record.ID)
	}
	b.counts[CountTriples] = len(b.triples)

	logger.Debug(
		"[Graph] Batch processed",
		"records", len(records),
		"accepted", len(ids),
		"rejected", len(defects),
		"triples", len(b.triples),
	)

	return Result{
		Triples:  b.triples,
		Counts:   b.counts,
		Defects:  defects,
		Accepted: ids,
	}
}

func (p *Processor) collect(b *batch, records []common.Record) ([]staged, []Defect) {
	accepted := make([]staged, 0, len(records))
	var defects []Defect

	for _, r := range records {
		if p.sentinels.missing(r.Title) {
			defects = append(defects, Defect{
				RecordID: r.ID,
				DocID:    r.DocID,
				Reason:   ErrEmptyTitle.Error(),
			})
			b.counts[CountRejected]++
			logger.Warn("[Graph] Rejected record without title", "id", r.ID, "doc_id", r.DocID)
			continue
		}

		caseID, seen := b.titles.add(r.Title)
		if seen {
			b.counts[CountDuplicateTitles]++
			logger.Debug("[Graph] Duplicate title in batch", "id", r.ID, "case_id", caseID)
		} else {
			b.node(common.KindCase, caseID, b.caseAttributes(r)...)
			b.counts[CountCases]++
		}
		accepted = append(accepted, staged{record: r, caseID: caseID})
	}

	return accepted, defects
}

func (b *batch) relate(s staged) {
	r := s.record
	b.emitEntities(common.KindJudge, s.caseID, r.Judges)
	b.emitEntities(common.KindPetitionerAdvocate, s.caseID, r.PetitionerAdvocates)
	b.emitEntities(common.KindRespondentAdvocate, s.caseID, r.RespondentAdvocates)
	b.emitEntities(common.KindOutcome, s.caseID, []string{r.Outcome})
	b.emitEntities(common.KindDuration, s.caseID, []string{r.Duration})
	b.emitCitations(s.caseID, r.Citations)
}
