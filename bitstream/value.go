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

import "fmt"

// Value is a decoded record value: a Scalar, an Array of further
// Values, or a Blob of raw bytes. Only Scalar may occupy the record
// code position; the values list of a Record may contain at most one
// Array or Blob, and it must be last.
type Value interface {
	isValue()
}

// Scalar is a single decoded unsigned integer: the result of a Fixed,
// VBR, Literal, or Char6 operand.
type Scalar uint64

func (Scalar) isValue() {}

// Array is the decoded contents of an AbbrevOp Array operand.
type Array []Value

func (Array) isValue() {}

// Blob is the decoded contents of an AbbrevOp Blob operand.
type Blob []byte

func (Blob) isValue() {}

func (v Scalar) String() string { return fmt.Sprintf("%d", uint64(v)) }

func (v Array) String() string {
	s := "["
	for i, e := range v {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprint(e)
	}
	return s + "]"
}

func (v Blob) String() string { return fmt.Sprintf("blob(%d bytes)", len(v)) }

// Record is a single decoded record, either self-describing
// (abbrev_id == UnabbrevRecordID) or produced through an abbreviation.
type Record struct {
	AbbrevID uint32
	Code     uint32
	Values   []Value
}
