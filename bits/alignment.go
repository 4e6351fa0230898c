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

// Package bits provides small, width-generic bit and alignment helpers
// shared by the bitstream decoder. It holds no decoder state of its
// own.
package bits

import (
	"golang.org/x/exp/constraints"
)

// IsAligned returns true if and only if v is an integer multiple of
// alignment.
func IsAligned[T constraints.Integer](v, alignment T) bool {
	return v%alignment == 0
}

// AlignUp returns v aligned up to the given alignment, which must be a
// power of two.
func AlignUp[T constraints.Integer](v, alignment T) T {
	return ((v + alignment - 1) / alignment) * alignment
}

// AlignDown returns v aligned down to the given alignment.
func AlignDown[T constraints.Integer](v, alignment T) T {
	return (v / alignment) * alignment
}

// ChunkCount returns the number of chunkSize-sized chunks needed to
// hold n items, i.e. ceil(n / chunkSize).
func ChunkCount[T constraints.Unsigned](n, chunkSize T) T {
	if chunkSize == 0 {
		return 0
	}
	return (n + chunkSize - 1) / chunkSize
}

// IsPowerOfTwo reports whether v is a power of two. It is used to
// validate alignment arguments before they are handed to AlignUp.
func IsPowerOfTwo[T constraints.Integer](v T) bool {
	return v > 0 && v&(v-1) == 0
}
