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

import "math/big"

// bigInt is the arbitrary-precision accumulator ReadVBR promotes to
// once a VBR value would overflow 64 bits. No third-party bignum
// library appears anywhere in the example corpus, so this wraps the
// standard library's math/big — see DESIGN.md for that justification.
type bigInt struct {
	v *big.Int
}

func newBigInt(v uint64) *bigInt {
	return &bigInt{v: new(big.Int).SetUint64(v)}
}

// orShifted ORs (payload << shift) into the accumulator. VBR chunks
// never overlap once shifted into place, so OR and addition coincide;
// OR is used because it matches the bit-concatenation semantics of the
// encoding more directly than addition would.
func (b *bigInt) orShifted(payload uint64, shift uint) {
	chunk := new(big.Int).Lsh(new(big.Int).SetUint64(payload), shift)
	b.v.Or(b.v, chunk)
}

// Uint64 narrows the value to a uint64, failing if it does not fit.
func (b *bigInt) Uint64() (uint64, bool) {
	if !b.v.IsUint64() {
		return 0, false
	}
	return b.v.Uint64(), true
}

func (b *bigInt) String() string { return b.v.String() }
