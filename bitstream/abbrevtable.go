// Copyright (C) 2024 Bitgraph, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package bitstream

import (
	"golang.org/x/exp/slices"
)

// firstUserAbbrevID is the first id available to a DEFINE_ABBREV;
// 0..3 are reserved for END_BLOCK, ENTER_SUBBLOCK, DEFINE_ABBREV and
// UNABBREV_RECORD.
const firstUserAbbrevID = 4

type abbrevEntry struct {
	id  uint32
	def AbbrevDef
}

// AbbrevTable is an ordered id -> AbbrevDef mapping. Tables are small
// (typically well under a few dozen entries), so lookup is a linear
// scan rather than a map, same tradeoff ion.Symtab makes for its own
// small interned tables.
//
// AbbrevTable is value-typed for scoping purposes: Clone returns an
// independent copy so that a BLOCKINFO seed table can be handed to
// many block frames without one frame's DEFINE_ABBREV leaking into
// another's.
type AbbrevTable struct {
	entries []abbrevEntry
}

// Add allocates the next id for def (firstUserAbbrevID on an empty
// table, max(existing ids)+1 otherwise) and appends it to the table.
func (t *AbbrevTable) Add(def AbbrevDef) uint32 {
	id := uint32(firstUserAbbrevID)
	if len(t.entries) > 0 {
		id = t.entries[len(t.entries)-1].id + 1
	}
	t.entries = append(t.entries, abbrevEntry{id: id, def: def})
	return id
}

// Get looks up the definition registered under id.
func (t *AbbrevTable) Get(id uint32) (AbbrevDef, bool) {
	for _, e := range t.entries {
		if e.id == id {
			return e.def, true
		}
	}
	return AbbrevDef{}, false
}

// Len reports the number of abbreviations in the table.
func (t *AbbrevTable) Len() int { return len(t.entries) }

// IDs returns the table's abbreviation ids in definition order.
func (t *AbbrevTable) IDs() []uint32 {
	ids := make([]uint32, len(t.entries))
	for i, e := range t.entries {
		ids[i] = e.id
	}
	return ids
}

// Clone returns an independent copy of t; mutating the copy never
// affects t, and vice versa.
func (t AbbrevTable) Clone() AbbrevTable {
	return AbbrevTable{entries: slices.Clone(t.entries)}
}
