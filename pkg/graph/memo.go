package graph

import "github.com/OFFIS-RIT/lexgraph/backend/pkg/common"

// MemoTable is a run-scoped cache from normalized key to identifier for one
// entity kind. It only prevents duplicate node emission inside a batch and
// is discarded with the run.
type MemoTable struct {
	kind common.Kind
	ids  map[string]string
}

func NewMemoTable(kind common.Kind) *MemoTable {
	return &MemoTable{
		kind: kind,
		ids:  make(map[string]string),
	}
}

// GetOrCreate returns the identifier for raw and whether this is the first
// time the key was seen in this table.
func (m *MemoTable) GetOrCreate(raw string) (string, bool) {
	key := Normalize(raw)
	if id, ok := m.ids[key]; ok {
		return id, false
	}
	id := resolveNormalized(m.kind, key)
	m.ids[key] = id
	return id, true
}

// Len returns the number of distinct keys seen.
func (m *MemoTable) Len() int {
	return len(m.ids)
}

// Memo groups one MemoTable per entity kind.
type Memo struct {
	tables map[common.Kind]*MemoTable
}

func NewMemo() *Memo {
	tables := make(map[common.Kind]*MemoTable, len(common.Kinds))
	for _, k := range common.Kinds {
		tables[k] = NewMemoTable(k)
	}
	return &Memo{tables: tables}
}

func (m *Memo) GetOrCreate(kind common.Kind, raw string) (string, bool) {
	return m.tables[kind].GetOrCreate(raw)
}

// TitleIndex maps normalized case titles to Case identifiers. It is filled
// during the collection pass and only read afterwards.
type TitleIndex struct {
	ids map[string]string
}

func NewTitleIndex() *TitleIndex {
	return &TitleIndex{ids: make(map[string]string)}
}

// add registers title and reports whether it was already present.
func (t *TitleIndex) add(title string) (string, bool) {
	key := Normalize(title)
	if id, ok := t.ids[key]; ok {
		return id, true
	}
	id := resolveNormalized(common.KindCase, key)
	t.ids[key] = id
	return id, false
}

// Lookup returns the Case identifier registered for title.
func (t *TitleIndex) Lookup(title string) (string, bool) {
	id, ok := t.ids[Normalize(title)]
	return id, ok
}

func (t *TitleIndex) Len() int {
	return len(t.ids)
}
