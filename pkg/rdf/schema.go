package rdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
)

// Schema returns the Dgraph schema for the judgment graph. Every identifier
// predicate is indexed and marked @upsert so the live loader can merge
// incoming nodes by it. The cites edge carries @reverse so cited-by
// lookups need no second edge.
func Schema() string {
	var b strings.Builder

	for _, p := range common.IDPredicates() {
		fmt.Fprintf(&b, "%s: string @index(exact) @upsert .\n", p)
	}
	fmt.Fprintf(&b, "%s: string @index(exact, term) .\n", common.PredTitle)
	fmt.Fprintf(&b, "%s: string @index(exact) .\n", common.PredDocID)
	fmt.Fprintf(&b, "%s: int @index(int) .\n", common.PredYear)
	fmt.Fprintf(&b, "%s: datetime .\n", common.PredIngestedAt)
	fmt.Fprintf(&b, "%s: string @index(exact, term) .\n", common.PredName)
	fmt.Fprintf(&b, "%s: string @index(exact) .\n", common.PredAdvocateRole)
	fmt.Fprintf(&b, "%s: string @index(exact) .\n", common.PredLabel)
	fmt.Fprintf(&b, "%s: string @index(exact) .\n", common.PredDescription)
	for _, p := range common.RelationPredicates() {
		if p == common.PredCites {
			fmt.Fprintf(&b, "%s: [uid] @reverse .\n", p)
			continue
		}
		fmt.Fprintf(&b, "%s: [uid] .\n", p)
	}

	b.WriteString("\n")
	writeType(&b, common.TypeCase,
		common.PredCaseID, common.PredTitle, common.PredDocID, common.PredYear, common.PredIngestedAt,
		common.PredJudgedBy, common.PredPetitionerRepresentedBy, common.PredRespondentRepresentedBy,
		common.PredHasOutcome, common.PredHasDuration, common.PredCites,
	)
	writeType(&b, common.TypeJudge, common.PredJudgeID, common.PredName)
	writeType(&b, common.TypeAdvocate, common.PredAdvocateID, common.PredName, common.PredAdvocateRole)
	writeType(&b, common.TypeOutcome, common.PredOutcomeID, common.PredLabel)
	writeType(&b, common.TypeDuration, common.PredDurationID, common.PredDescription)

	return b.String()
}

func writeType(b *strings.Builder, name string, predicates ...string) {
	fmt.Fprintf(b, "type %s {\n", name)
	for _, p := range predicates {
		fmt.Fprintf(b, "  %s\n", p)
	}
	b.WriteString("}\n\n")
}

// WriteSchemaFile writes Schema to path, replacing any previous content.
func WriteSchemaFile(path string) error {
	if err := os.WriteFile(path, []byte(Schema()), 0o644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return nil
}
