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

// bitWriter is the test-only mirror image of Cursor: it builds up a raw
// byte buffer bit by bit using the same little-endian-within-and-across
// bytes convention Cursor.ReadBits documents, so tests can hand-encode
// wire-format fixtures without going through the decoder itself.
type bitWriter struct {
	buf  []byte
	bits uint64 // total bits written so far
}

func (w *bitWriter) WriteBits(v uint64, n uint8) {
	for i := uint8(0); i < n; i++ {
		byteIdx := w.bits / 8
		bitIdx := uint8(w.bits % 8)
		for uint64(len(w.buf)) <= byteIdx {
			w.buf = append(w.buf, 0)
		}
		if v>>i&1 != 0 {
			w.buf[byteIdx] |= 1 << bitIdx
		}
		w.bits++
	}
}

// WriteVBR mirrors Cursor.readVBR: chunk-1 payload bits per group,
// low-order chunk first, continuation bit in the chunk's top bit.
func (w *bitWriter) WriteVBR(v uint64, chunk uint8) {
	payloadWidth := chunk - 1
	mask := wideMask(payloadWidth)
	for {
		payload := v & mask
		v >>= payloadWidth
		cont := v != 0
		chunkVal := payload
		if cont {
			chunkVal |= uint64(1) << payloadWidth
		}
		w.WriteBits(chunkVal, chunk)
		if !cont {
			return
		}
	}
}

func (w *bitWriter) AlignTo32() {
	for w.bits%32 != 0 {
		w.WriteBits(0, 1)
	}
}

// WriteRawBytes appends b directly; the writer must currently be
// byte-aligned, mirroring Cursor.ReadBytes' own precondition.
func (w *bitWriter) WriteRawBytes(b []byte) {
	if w.bits%8 != 0 {
		panic("bitWriter: WriteRawBytes requires byte alignment")
	}
	w.buf = append(w.buf, b...)
	w.bits += uint64(len(b)) * 8
}

func (w *bitWriter) Bytes() []byte { return w.buf }

// writeOp encodes one top-level AbbrevOp of a DEFINE_ABBREV, per the
// grammar readOneAbbrevOp decodes.
func writeOp(w *bitWriter, op AbbrevOp) {
	switch op.Kind {
	case OpLiteral:
		w.WriteBits(1, 1)
		w.WriteVBR(op.Value, 8)
	case OpFixed:
		w.WriteBits(0, 1)
		w.WriteBits(1, 3)
		w.WriteVBR(uint64(op.Width), 5)
	case OpVBR:
		w.WriteBits(0, 1)
		w.WriteBits(2, 3)
		w.WriteVBR(uint64(op.Width), 5)
	case OpArray:
		w.WriteBits(0, 1)
		w.WriteBits(3, 3)
		writeElemOp(w, *op.Elem)
	case OpChar6:
		w.WriteBits(0, 1)
		w.WriteBits(4, 3)
	case OpBlob:
		w.WriteBits(0, 1)
		w.WriteBits(5, 3)
	}
}

func writeElemOp(w *bitWriter, op AbbrevOp) {
	switch op.Kind {
	case OpLiteral:
		w.WriteBits(1, 1)
		w.WriteVBR(op.Value, 8)
	case OpFixed:
		w.WriteBits(0, 1)
		w.WriteBits(1, 3)
		w.WriteVBR(uint64(op.Width), 5)
	case OpVBR:
		w.WriteBits(0, 1)
		w.WriteBits(2, 3)
		w.WriteVBR(uint64(op.Width), 5)
	case OpChar6:
		w.WriteBits(0, 1)
		w.WriteBits(4, 3)
	default:
		panic("writeElemOp: unsupported element kind in test fixture")
	}
}

// writeDefineAbbrev encodes a full DEFINE_ABBREV token body (the
// abbrev id itself is written by the caller, since its width depends
// on the enclosing scope).
func writeDefineAbbrev(w *bitWriter, ops []AbbrevOp) {
	w.WriteVBR(uint64(len(ops)), 5)
	for _, op := range ops {
		writeOp(w, op)
	}
}

// writeUnabbrevRecord encodes an UNABBREV_RECORD body (code + values),
// not including the leading abbrev id.
func writeUnabbrevRecord(w *bitWriter, code uint64, values []uint64) {
	w.WriteVBR(code, 6)
	w.WriteVBR(uint64(len(values)), 6)
	for _, v := range values {
		w.WriteVBR(v, 6)
	}
}

// blockBuilder assembles one ENTER_SUBBLOCK...END_BLOCK region as a
// self-contained, byte-aligned byte slice, so nested blocks can be
// built bottom-up and spliced into an enclosing writer without needing
// to patch a length field after the fact.
type blockBuilder struct {
	w     bitWriter
	width uint8
}

func newBlockBuilder(width uint8) *blockBuilder {
	return &blockBuilder{width: width}
}

func (b *blockBuilder) token(id uint64) { b.w.WriteBits(id, b.width) }

func (b *blockBuilder) DefineAbbrev(ops []AbbrevOp) {
	b.token(DefineAbbrevID)
	writeDefineAbbrev(&b.w, ops)
}

func (b *blockBuilder) UnabbrevRecord(code uint64, values []uint64) {
	b.token(UnabbrevRecordID)
	writeUnabbrevRecord(&b.w, code, values)
}

func (b *blockBuilder) EnterSubBlock(sub *blockBuilder, id uint32) {
	b.token(EnterSubBlockID)
	b.w.WriteVBR(uint64(id), 8)
	b.w.WriteVBR(uint64(sub.width), 4)
	b.w.AlignTo32()
	body := sub.Finish()
	b.w.WriteBits(uint64(len(body)/4), 32)
	b.w.WriteRawBytes(body)
}

// Finish appends END_BLOCK and the trailing alignment pad, and returns
// the finished, byte-aligned body bytes.
func (b *blockBuilder) Finish() []byte {
	b.token(EndBlockID)
	b.w.AlignTo32()
	return b.w.Bytes()
}

// encodeTopLevel assembles a full document: a magic word followed by
// zero or more top-level ENTER_SUBBLOCK regions.
func encodeTopLevel(magic uint32, blocks ...func() (uint32, uint8, []byte)) []byte {
	w := &bitWriter{}
	w.WriteBits(uint64(magic), 32)
	for _, blk := range blocks {
		id, width, body := blk()
		w.WriteBits(EnterSubBlockID, 2)
		w.WriteVBR(uint64(id), 8)
		w.WriteVBR(uint64(width), 4)
		w.AlignTo32()
		w.WriteBits(uint64(len(body)/4), 32)
		w.WriteRawBytes(body)
	}
	return w.Bytes()
}
