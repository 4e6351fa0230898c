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

// Document is the root of the decoded tree: the opaque magic number,
// the BlockInfoStore assembled from every BLOCKINFO block encountered,
// and the top-level blocks in stream order.
type Document struct {
	Magic      uint32
	BlockInfos *BlockInfoStore
	TopBlocks  []*Block
}

// Option configures a parse. See WithWarner and WithSeed.
type Option func(*Session)

// WithWarner installs w as the session's warning sink. The default is
// DiscardWarner.
func WithWarner(w Warner) Option {
	return func(s *Session) { s.warner = w }
}

// WithSessionID tags every warning emitted during the parse with id.
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithSeed pre-populates the session's BlockInfoStore, for bitstreams
// whose own BLOCKINFO block is absent or incomplete. See bcio.LoadSeed.
func WithSeed(info *BlockInfoStore) Option {
	return func(s *Session) {
		if info != nil {
			s.info = info
		}
	}
}

// FromBytes parses buf from offset 0 and returns the resulting
// Document, or the first fatal error encountered. On fatal failure no
// partial Document is returned.
func FromBytes(buf []byte, opts ...Option) (*Document, error) {
	s := NewSession(buf, nil, nil, "")
	for _, opt := range opts {
		opt(s)
	}
	magic, err := s.cur.ReadBits(32)
	if err != nil {
		return nil, err
	}
	doc := &Document{Magic: uint32(magic), BlockInfos: s.info}
	reader := newAbbrevReader(s.cur, s.st)
	for !s.cur.AtEnd() {
		tok, err := reader.next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case TokEnterSubBlock:
			b := tok.Block
			if err := s.enter(b); err != nil {
				return nil, err
			}
			if b.ID == BlockInfoBlockID {
				err = s.readBlockInfo()
			} else {
				err = s.readBlock()
			}
			if err != nil {
				return nil, err
			}
			if err := s.exit(); err != nil {
				return nil, err
			}
			doc.TopBlocks = append(doc.TopBlocks, b)
		default:
			s.warn("stray %v token at stream top level, ignoring", tok.Kind)
		}
	}
	return doc, nil
}

// FromBlock positions a cursor at block's recorded enter offset,
// enters it seeded from info, and walks its body collecting only
// DEFINE_ABBREV tokens into the returned AbbrevTable — sub-blocks and
// records are skipped rather than recursed into. This is the
// scan-for-definitions mode of §4.G: a caller who wants the effective
// abbreviation table at an arbitrary point without retaining the full
// record list.
func FromBlock(buf []byte, block *Block, info *BlockInfoStore) (AbbrevTable, error) {
	s := NewSession(buf, info, nil, "")
	s.cur.pos = Position{Offset: block.enterOffsetByte}
	if err := s.enter(block); err != nil {
		return AbbrevTable{}, err
	}
	reader := newAbbrevReader(s.cur, s.st)
	for {
		tok, err := reader.next()
		if err != nil {
			return AbbrevTable{}, err
		}
		switch tok.Kind {
		case TokEndBlock:
			table := s.st.top().abbrevs
			if err := s.exit(); err != nil {
				return AbbrevTable{}, err
			}
			return table, nil
		case TokDefineAbbrev:
			s.st.top().abbrevs.Add(tok.Def)
		case TokEnterSubBlock:
			if err := s.cur.SkipBytes(uint64(tok.Block.LengthBytes)); err != nil {
				return AbbrevTable{}, err
			}
		case TokRecord:
			// ignored in scan-for-definitions mode
		}
	}
}

// BlockName returns the name BLOCKINFO attached to id, if any.
func (d *Document) BlockName(id uint32) (string, bool) {
	bi, ok := d.BlockInfos.Lookup(id)
	if !ok || !bi.HasName {
		return "", false
	}
	return bi.Name, true
}

// RecordName returns the name BLOCKINFO attached to code within
// block id, if any.
func (d *Document) RecordName(blockID, code uint32) (string, bool) {
	bi, ok := d.BlockInfos.Lookup(blockID)
	if !ok {
		return "", false
	}
	name, ok := bi.RecordNames[code]
	return name, ok
}

// Blocks returns every block with the given id anywhere in the
// document, top-level or nested.
func (d *Document) Blocks(id uint32) []*Block {
	var out []*Block
	for _, b := range d.TopBlocks {
		out = append(out, b.Blocks(id)...)
	}
	return out
}
