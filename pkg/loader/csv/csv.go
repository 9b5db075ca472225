// Package csv reads judgment records from CSV exports with the same columns
// as the judgments table.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/util"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/listfield"
)

// Column names. Matching is case-insensitive and ignores surrounding space.
const (
	ColID                  = "id"
	ColDocID               = "doc_id"
	ColTitle               = "title"
	ColYear                = "year"
	ColJudges              = "judges"
	ColPetitionerAdvocates = "petitioner_advocates"
	ColRespondentAdvocates = "respondent_advocates"
	ColOutcome             = "outcome"
	ColDuration            = "case_duration"
	ColCitations           = "citations"
	ColCreatedAt           = "created_at"
)

// ReadRecords parses a CSV stream with a header row. Rows without an id
// column are numbered from 1 in file order. Blank rows are skipped and a
// title column is required.
func ReadRecords(r io.Reader) ([]common.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	if _, ok := cols[ColTitle]; !ok {
		return nil, fmt.Errorf("CSV header has no %q column", ColTitle)
	}

	var records []common.Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}

		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		rec := common.Record{
			ID:                  int64(len(records) + 1),
			DocID:               listfield.ParseScalar(get(ColDocID)),
			Title:               util.SanitizeText(get(ColTitle)),
			Year:                parseYear(get(ColYear)),
			Judges:              listfield.Parse(get(ColJudges)),
			PetitionerAdvocates: listfield.Parse(get(ColPetitionerAdvocates)),
			RespondentAdvocates: listfield.Parse(get(ColRespondentAdvocates)),
			Outcome:             listfield.ParseScalar(get(ColOutcome)),
			Duration:            listfield.ParseScalar(get(ColDuration)),
			Citations:           listfield.Parse(get(ColCitations)),
		}
		if raw := strings.TrimSpace(get(ColID)); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid id %q", line, raw)
			}
			rec.ID = id
		}
		if raw := strings.TrimSpace(get(ColCreatedAt)); raw != "" {
			at, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s %q", line, ColCreatedAt, raw)
			}
			rec.IngestedAt = at.UTC()
		}
		records = append(records, rec)
	}

	return records, nil
}

// parseYear accepts "2019" and spreadsheet style "2019.0". Anything else,
// including values outside 1..maxYear, is treated as unknown.
const maxYear = 9999

func parseYear(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 || f > maxYear || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	y := int(f)
	return &y
}

func isBlank(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
