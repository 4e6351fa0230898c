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

// Package bitstream decodes the LLVM bitcode wire format: a bit-packed
// container of nested blocks and records whose physical layout is
// dictated by abbreviation definitions introduced earlier in the same
// stream.
//
// The package is a pure decoder. It does not interpret record codes
// beyond the three reserved BLOCKINFO codes, and it does not write or
// emit bitcode.
package bitstream
