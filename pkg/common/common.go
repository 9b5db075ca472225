package common

import "time"

// Record represents one judgment row as delivered by the document store.
// List fields have already been decoded from their stored encoding; values
// may still be blank or carry a missing sentinel such as "nan".
//
// A record is identified in the document store by ID. DocID is the external
// document reference and never participates in entity identity.
type Record struct {
	ID                  int64     `json:"id"`
	DocID               string    `json:"doc_id"`
	Title               string    `json:"title"`
	Year                *int      `json:"year,omitempty"`
	Judges              []string  `json:"judges"`
	PetitionerAdvocates []string  `json:"petitioner_advocates"`
	RespondentAdvocates []string  `json:"respondent_advocates"`
	Outcome             string    `json:"outcome"`
	Duration            string    `json:"case_duration"`
	Citations           []string  `json:"citations"`
	IngestedAt          time.Time `json:"ingested_at"`
}

// Triple is a single subject-predicate-object statement of the output graph.
//
// When Ref is true Object is the identifier of another node and the triple
// is an edge. Otherwise Object is a literal value, optionally typed by
// Datatype (for example DatatypeInt).
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Ref       bool   `json:"ref,omitempty"`
	Datatype  string `json:"datatype,omitempty"`
}

// Kind is the entity kind of a node in the output graph.
type Kind int

const (
	KindCase Kind = iota
	KindJudge
	KindPetitionerAdvocate
	KindRespondentAdvocate
	KindOutcome
	KindDuration
)

// Kinds lists every entity kind in emission order.
var Kinds = []Kind{
	KindCase,
	KindJudge,
	KindPetitionerAdvocate,
	KindRespondentAdvocate,
	KindOutcome,
	KindDuration,
}

func (k Kind) String() string {
	switch k {
	case KindCase:
		return "case"
	case KindJudge:
		return "judge"
	case KindPetitionerAdvocate:
		return "petitioner_advocate"
	case KindRespondentAdvocate:
		return "respondent_advocate"
	case KindOutcome:
		return "outcome"
	case KindDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// TypeName is the node type tag written for the kind. Both advocate roles
// share one type and are told apart by PredAdvocateRole.
func (k Kind) TypeName() string {
	switch k {
	case KindCase:
		return TypeCase
	case KindJudge:
		return TypeJudge
	case KindPetitionerAdvocate, KindRespondentAdvocate:
		return TypeAdvocate
	case KindOutcome:
		return TypeOutcome
	case KindDuration:
		return TypeDuration
	default:
		return ""
	}
}

// IDPredicate is the predicate that carries the node identifier and that
// the graph store upserts on.
func (k Kind) IDPredicate() string {
	switch k {
	case KindCase:
		return PredCaseID
	case KindJudge:
		return PredJudgeID
	case KindPetitionerAdvocate, KindRespondentAdvocate:
		return PredAdvocateID
	case KindOutcome:
		return PredOutcomeID
	case KindDuration:
		return PredDurationID
	default:
		return ""
	}
}

// Node type tags.
const (
	TypeCase     = "Case"
	TypeJudge    = "Judge"
	TypeAdvocate = "Advocate"
	TypeOutcome  = "Outcome"
	TypeDuration = "CaseDuration"
)

// Identifier predicates.
const (
	PredCaseID     = "case_id"
	PredJudgeID    = "judge_id"
	PredAdvocateID = "advocate_id"
	PredOutcomeID  = "outcome_id"
	PredDurationID = "case_duration_id"
)

// Attribute predicates.
const (
	PredType         = "dgraph.type"
	PredTitle        = "title"
	PredDocID        = "doc_id"
	PredYear         = "year"
	PredIngestedAt   = "processed_timestamp"
	PredName         = "name"
	PredAdvocateRole = "advocate_type"
	PredLabel        = "label"
	PredDescription  = "description"
)

// Relationship predicates. The source is always a Case node.
const (
	PredJudgedBy                = "judged_by"
	PredPetitionerRepresentedBy = "petitioner_represented_by"
	PredRespondentRepresentedBy = "respondent_represented_by"
	PredHasOutcome              = "has_outcome"
	PredHasDuration             = "has_case_duration"
	PredCites                   = "cites"
)

// Advocate roles written to PredAdvocateRole.
const (
	RolePetitioner = "petitioner"
	RoleRespondent = "respondent"
)

// Literal datatypes.
const (
	DatatypeInt      = "xs:int"
	DatatypeDateTime = "xs:dateTime"
)

// IDPredicates returns the distinct identifier predicates of all kinds.
func IDPredicates() []string {
	return []string{PredCaseID, PredJudgeID, PredAdvocateID, PredOutcomeID, PredDurationID}
}

// RelationPredicates returns every edge predicate.
func RelationPredicates() []string {
	return []string{
		PredJudgedBy,
		PredPetitionerRepresentedBy,
		PredRespondentRepresentedBy,
		PredHasOutcome,
		PredHasDuration,
		PredCites,
	}
}
