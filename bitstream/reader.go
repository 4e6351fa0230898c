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

// Reserved abbreviation ids. User-defined abbreviations begin at
// firstUserAbbrevID (see abbrevtable.go).
const (
	EndBlockID       = 0
	EnterSubBlockID  = 1
	DefineAbbrevID   = 2
	UnabbrevRecordID = 3
)

// TokenKind tags the variant a Token holds.
type TokenKind int

const (
	TokEndBlock TokenKind = iota
	TokEnterSubBlock
	TokDefineAbbrev
	TokRecord
)

func (k TokenKind) String() string {
	switch k {
	case TokEndBlock:
		return "END_BLOCK"
	case TokEnterSubBlock:
		return "ENTER_SUBBLOCK"
	case TokDefineAbbrev:
		return "DEFINE_ABBREV"
	case TokRecord:
		return "RECORD"
	default:
		return "?"
	}
}

// Token is one decoded top-level unit of the stream: the result of a
// single AbbreviationReader step.
type Token struct {
	Kind   TokenKind
	Block  *Block    // set for TokEnterSubBlock
	Def    AbbrevDef // set for TokDefineAbbrev
	Record Record    // set for TokRecord (abbrev_id distinguishes unabbrev vs defined)
}

// abbrevReader decodes one token at a time from cur, consulting the
// current frame's abbreviation table in st for ids >= firstUserAbbrevID.
type abbrevReader struct {
	cur *Cursor
	st  *stateStack
}

func newAbbrevReader(cur *Cursor, st *stateStack) *abbrevReader {
	return &abbrevReader{cur: cur, st: st}
}

// blockID returns the id of the block currently being read, or nil at
// stream top level, for attaching to error/warning context.
func (r *abbrevReader) blockID() *uint32 {
	top := r.st.top()
	if top.block == nil {
		return nil
	}
	id := top.block.ID
	return &id
}

// next decodes and returns the next token.
func (r *abbrevReader) next() (Token, error) {
	width := r.st.abbrevIDWidth()
	abbrevID, err := r.cur.ReadBits(width)
	if err != nil {
		return Token{}, err
	}

	switch abbrevID {
	case EndBlockID:
		if err := r.cur.AlignTo(32); err != nil {
			return Token{}, err
		}
		return Token{Kind: TokEndBlock}, nil

	case EnterSubBlockID:
		return r.readEnterSubBlock()

	case DefineAbbrevID:
		def, err := r.readDefineAbbrev()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokDefineAbbrev, Def: def}, nil

	case UnabbrevRecordID:
		rec, err := r.readUnabbrevRecord()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokRecord, Record: rec}, nil

	default:
		def, ok := r.st.top().abbrevs.Get(uint32(abbrevID))
		if !ok {
			return Token{}, malformed(r.cur.Position(), r.blockID(), "unknown abbrev id %d", abbrevID)
		}
		rec, err := r.readDefinedRecord(uint32(abbrevID), def)
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokRecord, Record: rec}, nil
	}
}

func (r *abbrevReader) readEnterSubBlock() (Token, error) {
	blockID, err := r.cur.ReadVBR(8)
	if err != nil {
		return Token{}, err
	}
	widthV, err := r.cur.ReadVBR(4)
	if err != nil {
		return Token{}, err
	}
	if widthV == 0 || widthV > 255 {
		return Token{}, malformed(r.cur.Position(), r.blockID(), "ENTER_SUBBLOCK abbrev id width must be in 1..255, got %d", widthV)
	}
	if err := r.cur.AlignTo(32); err != nil {
		return Token{}, err
	}
	lengthWords, err := r.cur.ReadBits(32)
	if err != nil {
		return Token{}, err
	}
	lengthBytes := lengthWords * 4
	if lengthWords != 0 && lengthBytes/4 != lengthWords {
		return Token{}, malformed(r.cur.Position(), r.blockID(), "ENTER_SUBBLOCK length overflow: %d words", lengthWords)
	}
	if lengthBytes > uint64(^uint32(0)) {
		return Token{}, malformed(r.cur.Position(), r.blockID(), "ENTER_SUBBLOCK length overflow: %d words", lengthWords)
	}
	b := &Block{
		ID:            uint32(blockID),
		AbbrevIDWidth: uint8(widthV),
		LengthBytes:   uint32(lengthBytes),
	}
	return Token{Kind: TokEnterSubBlock, Block: b}, nil
}

func (r *abbrevReader) readUnabbrevRecord() (Record, error) {
	code, err := r.cur.ReadVBR(6)
	if err != nil {
		return Record{}, err
	}
	n, err := r.cur.ReadVBR(6)
	if err != nil {
		return Record{}, err
	}
	values := make([]Value, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := r.cur.ReadVBR(6)
		if err != nil {
			return Record{}, err
		}
		values = append(values, Scalar(v))
	}
	return Record{AbbrevID: UnabbrevRecordID, Code: uint32(code), Values: values}, nil
}

// readDefineAbbrev implements the operand grammar of §4.F.2: it reads
// n (>= 1) leaf operand slots, where an Array operand consumes one
// outer slot plus, recursively, its element's definition (which does
// not itself count as an additional slot).
func (r *abbrevReader) readDefineAbbrev() (AbbrevDef, error) {
	n, err := r.cur.ReadVBR(5)
	if err != nil {
		return AbbrevDef{}, err
	}
	if n < 1 {
		return AbbrevDef{}, malformed(r.cur.Position(), r.blockID(), "DEFINE_ABBREV operand count must be >= 1, got %d", n)
	}
	var ops []AbbrevOp
	var count uint64
	for count < n {
		op, err := r.readOneAbbrevOp(n, count)
		if err != nil {
			return AbbrevDef{}, err
		}
		count++
		ops = append(ops, op)
		if count > n {
			return AbbrevDef{}, malformed(r.cur.Position(), r.blockID(), "DEFINE_ABBREV operand count overflow")
		}
	}
	return AbbrevDef{Ops: ops}, nil
}

// readOneAbbrevOp reads a single top-level operand slot. n and
// countBefore (the slot count filled in before this call) let an Array
// or Blob operand check it occupies the final slot, as required by
// §3/§4.F.2.
func (r *abbrevReader) readOneAbbrevOp(n, countBefore uint64) (AbbrevOp, error) {
	isLiteral, err := r.cur.ReadBits(1)
	if err != nil {
		return AbbrevOp{}, err
	}
	if isLiteral != 0 {
		v, err := r.cur.ReadVBR(8)
		if err != nil {
			return AbbrevOp{}, err
		}
		return Literal(v), nil
	}
	enc, err := r.cur.ReadBits(3)
	if err != nil {
		return AbbrevOp{}, err
	}
	switch enc {
	case 1:
		w, err := r.cur.ReadVBR(5)
		if err != nil {
			return AbbrevOp{}, err
		}
		return Fixed(uint8(w)), nil
	case 2:
		w, err := r.cur.ReadVBR(5)
		if err != nil {
			return AbbrevOp{}, err
		}
		return VBR(uint8(w)), nil
	case 3:
		if countBefore+1 != n {
			return AbbrevOp{}, malformed(r.cur.Position(), r.blockID(), "Array operand must be the last operand")
		}
		elem, err := r.readArrayElementOp()
		if err != nil {
			return AbbrevOp{}, err
		}
		return ArrayOp(elem), nil
	case 4:
		return Char6(), nil
	case 5:
		if countBefore+1 != n {
			return AbbrevOp{}, malformed(r.cur.Position(), r.blockID(), "Blob operand must be the last operand")
		}
		return BlobOp(), nil
	default:
		return AbbrevOp{}, malformed(r.cur.Position(), r.blockID(), "unknown abbrev operand code %d", enc)
	}
}

// readArrayElementOp decodes the single operand that describes an
// Array's element type. It rejects nested Array/Blob element types per
// §3.
func (r *abbrevReader) readArrayElementOp() (AbbrevOp, error) {
	isLiteral, err := r.cur.ReadBits(1)
	if err != nil {
		return AbbrevOp{}, err
	}
	if isLiteral != 0 {
		v, err := r.cur.ReadVBR(8)
		if err != nil {
			return AbbrevOp{}, err
		}
		return Literal(v), nil
	}
	enc, err := r.cur.ReadBits(3)
	if err != nil {
		return AbbrevOp{}, err
	}
	switch enc {
	case 1:
		w, err := r.cur.ReadVBR(5)
		if err != nil {
			return AbbrevOp{}, err
		}
		return Fixed(uint8(w)), nil
	case 2:
		w, err := r.cur.ReadVBR(5)
		if err != nil {
			return AbbrevOp{}, err
		}
		return VBR(uint8(w)), nil
	case 3:
		return AbbrevOp{}, malformed(r.cur.Position(), r.blockID(), "Array element may not itself be Array")
	case 4:
		return Char6(), nil
	case 5:
		return AbbrevOp{}, malformed(r.cur.Position(), r.blockID(), "Array element may not itself be Blob")
	default:
		return AbbrevOp{}, malformed(r.cur.Position(), r.blockID(), "unknown abbrev operand code %d", enc)
	}
}

// readDefinedRecord decodes a record via an already-defined
// abbreviation (§4.F.1).
func (r *abbrevReader) readDefinedRecord(abbrevID uint32, def AbbrevDef) (Record, error) {
	if len(def.Ops) == 0 {
		return Record{}, malformed(r.cur.Position(), r.blockID(), "abbreviation %d has no operands", abbrevID)
	}
	codeVal, err := r.decodeOperand(def.Ops[0])
	if err != nil {
		return Record{}, err
	}
	codeScalar, ok := codeVal.(Scalar)
	if !ok {
		return Record{}, malformed(r.cur.Position(), r.blockID(), "abbreviation %d: record code is not scalar", abbrevID)
	}
	values := make([]Value, 0, len(def.Ops)-1)
	for _, op := range def.Ops[1:] {
		v, err := r.decodeOperand(op)
		if err != nil {
			return Record{}, err
		}
		values = append(values, v)
	}
	return Record{AbbrevID: abbrevID, Code: uint32(codeScalar), Values: values}, nil
}

func (r *abbrevReader) decodeOperand(op AbbrevOp) (Value, error) {
	switch op.Kind {
	case OpLiteral:
		return Scalar(op.Value), nil
	case OpFixed:
		v, err := r.cur.ReadBits(op.Width)
		if err != nil {
			return nil, err
		}
		return Scalar(v), nil
	case OpVBR:
		v, err := r.cur.ReadVBR(op.Width)
		if err != nil {
			return nil, err
		}
		return Scalar(v), nil
	case OpChar6:
		idx, err := r.cur.ReadBits(6)
		if err != nil {
			return nil, err
		}
		c, cerr := char6Decode(idx)
		if cerr != nil {
			return nil, malformed(r.cur.Position(), r.blockID(), "%s", cerr)
		}
		return Scalar(c), nil
	case OpArray:
		k, err := r.cur.ReadVBR(6)
		if err != nil {
			return nil, err
		}
		out := make(Array, 0, k)
		for i := uint64(0); i < k; i++ {
			v, err := r.decodeOperand(*op.Elem)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case OpBlob:
		k, err := r.cur.ReadVBR(6)
		if err != nil {
			return nil, err
		}
		if err := r.cur.AlignTo(32); err != nil {
			return nil, err
		}
		bytes, err := r.cur.ReadBytes(k)
		if err != nil {
			return nil, err
		}
		blob := make(Blob, len(bytes))
		copy(blob, bytes)
		if err := r.cur.AlignTo(32); err != nil {
			return nil, err
		}
		return blob, nil
	default:
		return nil, malformed(r.cur.Position(), r.blockID(), "unknown operand kind %v", op.Kind)
	}
}
