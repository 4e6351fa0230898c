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

// BlockInfoBlockID is the reserved block id (0) carrying cross-block
// metadata.
const BlockInfoBlockID = 0

// Reserved BLOCKINFO record codes.
const (
	RecordSetBID        = 1
	RecordBlockName     = 2
	RecordSetRecordName = 3
)

// Block is a named, length-delimited region of the stream containing
// records and nested blocks.
type Block struct {
	ID              uint32
	AbbrevIDWidth   uint8
	LengthBytes     uint32
	Records         []Record
	SubBlocks       []*Block
	enterOffsetByte uint64
}

// Blocks returns every block with the given id anywhere in b's
// subtree, b included.
func (b *Block) Blocks(id uint32) []*Block {
	var out []*Block
	if b.ID == id {
		out = append(out, b)
	}
	for _, sub := range b.SubBlocks {
		out = append(out, sub.Blocks(id)...)
	}
	return out
}

// BlockInfo carries the metadata BLOCKINFO attaches to a block id: an
// optional name, per-record-code names, and a seed AbbrevTable handed
// (as a clone) to every future block of that id.
type BlockInfo struct {
	Name        string
	HasName     bool
	RecordNames map[uint32]string
	Abbrevs     AbbrevTable
}

// BlockInfoStore is a per-Document block-id -> BlockInfo mapping,
// written by the BLOCKINFO driver and read whenever a block is
// entered (to seed its frame's abbreviation table) or named (for
// trace output).
type BlockInfoStore struct {
	infos map[uint32]*BlockInfo
}

// NewBlockInfoStore returns an empty store.
func NewBlockInfoStore() *BlockInfoStore {
	return &BlockInfoStore{infos: make(map[uint32]*BlockInfo)}
}

func (s *BlockInfoStore) entry(id uint32) *BlockInfo {
	if bi, ok := s.infos[id]; ok {
		return bi
	}
	bi := &BlockInfo{RecordNames: make(map[uint32]string)}
	s.infos[id] = bi
	return bi
}

// Lookup returns the BlockInfo registered for id, if any.
func (s *BlockInfoStore) Lookup(id uint32) (*BlockInfo, bool) {
	bi, ok := s.infos[id]
	return bi, ok
}

// Seed pre-populates the name and record names for block id, leaving
// any abbreviation table already registered for id untouched. It is
// used to load the textual (non-binary) parts of a BlockInfo entry
// from an external source such as a YAML sidecar, since abbreviation
// definitions have no natural textual form and are always read from
// an embedded BLOCKINFO block.
func (s *BlockInfoStore) Seed(id uint32, name string, recordNames map[uint32]string) {
	bi := s.entry(id)
	if name != "" {
		bi.Name = name
		bi.HasName = true
	}
	for code, n := range recordNames {
		bi.RecordNames[code] = n
	}
}

// SeedAbbrevs returns a clone of the abbreviation table seeded for
// block id, or an empty table if none is registered.
func (s *BlockInfoStore) SeedAbbrevs(id uint32) AbbrevTable {
	if bi, ok := s.infos[id]; ok {
		return bi.Abbrevs.Clone()
	}
	return AbbrevTable{}
}
