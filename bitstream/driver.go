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

import "unicode/utf8"

// Session threads the pieces components A-F fan out from: the
// cursor, the frame stack, the BlockInfoStore, and the warning sink.
// A Session is created fresh for each top-level FromBytes/FromBlock call
// and discarded once that call returns; it holds no state useful
// beyond the lifetime of one parse.
type Session struct {
	cur    *Cursor
	st     *stateStack
	info   *BlockInfoStore
	warner Warner
	id     string
}

// NewSession constructs a Session over buf. A nil warner defaults to
// DiscardWarner. id is an opaque, caller-supplied session identifier
// threaded into every warning (cmd/bcdump mints a uuid for it).
func NewSession(buf []byte, info *BlockInfoStore, warner Warner, id string) *Session {
	if info == nil {
		info = NewBlockInfoStore()
	}
	if warner == nil {
		warner = DiscardWarner{}
	}
	return &Session{
		cur:    NewCursor(buf),
		st:     newStateStack(),
		info:   info,
		warner: warner,
		id:     id,
	}
}

func (s *Session) warn(format string, args ...interface{}) {
	if s.id != "" {
		format = "%s: " + format
		args = append([]interface{}{s.id}, args...)
	}
	warnf(s.warner, s.cur.Position(), s.currentBlockID(), format, args...)
}

func (s *Session) currentBlockID() *uint32 {
	top := s.st.top()
	if top.block == nil {
		return nil
	}
	id := top.block.ID
	return &id
}

// enter pushes a new frame for b, seeding its abbreviation table from
// the BlockInfoStore. Precondition: the cursor is byte-aligned.
func (s *Session) enter(b *Block) error {
	if s.cur.Position().BitOffset != 0 {
		return malformed(s.cur.Position(), &b.ID, "block entered while not byte-aligned")
	}
	b.enterOffsetByte = s.cur.Position().Offset
	s.st.push(frame{
		block:       b,
		abbrevs:     s.info.SeedAbbrevs(b.ID),
		enterOffset: b.enterOffsetByte,
	})
	return nil
}

// exit pops the current frame and verifies the block-length invariant
// of §3/§8: enter_offset + length_bytes == cursor.offset.
func (s *Session) exit() error {
	f := s.st.pop()
	if s.cur.Position().BitOffset != 0 {
		return malformed(s.cur.Position(), &f.block.ID, "block exited while not byte-aligned")
	}
	want := f.enterOffset + uint64(f.block.LengthBytes)
	if s.cur.Position().Offset != want {
		return malformed(s.cur.Position(), &f.block.ID, "block length mismatch: expected end at byte %d, cursor is at %d", want, s.cur.Position().Offset)
	}
	return nil
}

// readBlock drives the AbbreviationReader across the body of the
// block at the top of the stack, recursing into sub-blocks and
// special-casing BLOCKINFO, until END_BLOCK. The caller is responsible
// for the matching enter/exit pair.
func (s *Session) readBlock() error {
	reader := newAbbrevReader(s.cur, s.st)
	for {
		tok, err := reader.next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokEndBlock:
			return nil
		case TokDefineAbbrev:
			// st.top() is re-fetched rather than cached across this
			// loop: nested enter/exit calls below mutate the frame
			// stack and can reallocate its backing slice.
			s.st.top().abbrevs.Add(tok.Def)
		case TokRecord:
			block := s.st.top().block
			block.Records = append(block.Records, tok.Record)
		case TokEnterSubBlock:
			sub := tok.Block
			if err := s.enter(sub); err != nil {
				return err
			}
			if sub.ID == BlockInfoBlockID {
				err = s.readBlockInfo()
			} else {
				err = s.readBlock()
			}
			if err != nil {
				return err
			}
			if err := s.exit(); err != nil {
				return err
			}
			block := s.st.top().block
			block.SubBlocks = append(block.SubBlocks, sub)
		}
	}
}

// readBlockInfo drives the reserved BLOCKINFO block (§4.G): it writes
// into the session's BlockInfoStore rather than into a Block's own
// records, tracking which block id subsequent DEFINE_ABBREV/metadata
// records target via SET_BID.
func (s *Session) readBlockInfo() error {
	reader := newAbbrevReader(s.cur, s.st)
	var targetBlockID *uint32
	for {
		tok, err := reader.next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokEndBlock:
			return nil

		case TokEnterSubBlock:
			s.warn("sub-block %#x inside BLOCKINFO is not allowed, skipping", tok.Block.ID)
			if err := s.cur.SkipBytes(uint64(tok.Block.LengthBytes)); err != nil {
				return err
			}

		case TokDefineAbbrev:
			if targetBlockID == nil {
				s.warn("DEFINE_ABBREV inside BLOCKINFO before SET_BID, discarding")
				continue
			}
			bi := s.info.entry(*targetBlockID)
			bi.Abbrevs.Add(tok.Def)

		case TokRecord:
			if err := s.handleBlockInfoRecord(tok.Record, &targetBlockID); err != nil {
				return err
			}
		}
	}
}

func (s *Session) handleBlockInfoRecord(rec Record, targetBlockID **uint32) error {
	if rec.AbbrevID != UnabbrevRecordID {
		s.warn("abbreviated record (code %d) inside BLOCKINFO is not allowed, ignoring", rec.Code)
		return nil
	}
	switch rec.Code {
	case RecordSetBID:
		v, ok := scalarAt(rec.Values, 0)
		if !ok {
			s.warn("SET_BID record has no scalar value, ignoring")
			return nil
		}
		id := uint32(v)
		*targetBlockID = &id

	case RecordBlockName:
		if *targetBlockID == nil {
			s.warn("BLOCK_NAME record before SET_BID, ignoring")
			return nil
		}
		name, ok := decodeUTF8Scalars(rec.Values)
		if !ok {
			s.warn("BLOCK_NAME record is not valid UTF-8, ignoring")
			return nil
		}
		bi := s.info.entry(**targetBlockID)
		bi.Name = name
		bi.HasName = true

	case RecordSetRecordName:
		if *targetBlockID == nil {
			s.warn("SET_RECORD_NAME record before SET_BID, ignoring")
			return nil
		}
		code, ok := scalarAt(rec.Values, 0)
		if !ok {
			s.warn("SET_RECORD_NAME record has no scalar code, ignoring")
			return nil
		}
		name, ok := decodeUTF8Scalars(rec.Values[1:])
		if !ok {
			s.warn("SET_RECORD_NAME record name is not valid UTF-8, ignoring")
			return nil
		}
		bi := s.info.entry(**targetBlockID)
		bi.RecordNames[uint32(code)] = name

	default:
		s.warn("unknown BLOCKINFO record code %d, ignoring", rec.Code)
	}
	return nil
}

func scalarAt(values []Value, i int) (uint64, bool) {
	if i >= len(values) {
		return 0, false
	}
	sc, ok := values[i].(Scalar)
	return uint64(sc), ok
}

func decodeUTF8Scalars(values []Value) (string, bool) {
	buf := make([]byte, 0, len(values))
	for _, v := range values {
		sc, ok := v.(Scalar)
		if !ok || sc > 255 {
			return "", false
		}
		buf = append(buf, byte(sc))
	}
	if !utf8.Valid(buf) {
		return "", false
	}
	return string(buf), true
}
