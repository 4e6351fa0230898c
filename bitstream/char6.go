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

// char6Table is the alphabet Char6 operands index into: a-z, A-Z, '.',
// '_', in that order. Indices 54..63 fit in six bits but have no
// character and are rejected; indices of 64 and above cannot come from
// a 6-bit read, and are rejected by an explicit check anyway.
const char6Table = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ._"

func char6Decode(i uint64) (byte, error) {
	if i >= 64 {
		return 0, fmt.Errorf("char6 index %d out of range", i)
	}
	if i >= uint64(len(char6Table)) {
		return 0, fmt.Errorf("char6 index %d has no mapped character", i)
	}
	return char6Table[i], nil
}
