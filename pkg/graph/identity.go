package graph

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
)

// digestLength is the number of hex characters of the digest kept in an
// identifier.
const digestLength = 8

// prefixes maps every kind to its identifier prefix. Citations are Case
// nodes and therefore share the Case prefix.
var prefixes = map[common.Kind]string{
	common.KindCase:               "case",
	common.KindJudge:              "judge",
	common.KindPetitionerAdvocate: "padv",
	common.KindRespondentAdvocate: "radv",
	common.KindOutcome:            "outcome",
	common.KindDuration:           "dur",
}

// Prefix returns the identifier prefix of kind.
func Prefix(kind common.Kind) string {
	return prefixes[kind]
}

// IdentityKey returns the string that is hashed for an already normalized
// key of the given kind.
//
//   - Case: the title. A citation and a full record with the same title
//     produce the same key.
//   - Judge, Outcome, Duration: the value itself.
//   - Petitioner and respondent advocates: the role followed by the name, so
//     the same person in both roles yields two nodes.
func IdentityKey(kind common.Kind, normalized string) string {
	switch kind {
	case common.KindPetitionerAdvocate:
		return common.RolePetitioner + ":" + normalized
	case common.KindRespondentAdvocate:
		return common.RoleRespondent + ":" + normalized
	default:
		return normalized
	}
}

// Resolve maps (kind, raw key) to a stable identifier of the form
// "<prefix>_<first 8 hex chars of sha256>". The result depends only on the
// kind and the normalized key.
//
// Callers must skip blank or missing values instead of resolving them.
func Resolve(kind common.Kind, raw string) string {
	return resolveNormalized(kind, Normalize(raw))
}

func resolveNormalized(kind common.Kind, normalized string) string {
	sum := sha256.Sum256([]byte(IdentityKey(kind, normalized)))
	return Prefix(kind) + "_" + hex.EncodeToString(sum[:])[:digestLength]
}
