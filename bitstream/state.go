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

// frame is one level of the parser's block-nesting stack: the block
// currently being assembled (nil for the synthetic top-level frame),
// its active abbreviation table, and the byte offset at which it was
// entered (used to verify the block-length invariant on exit).
type frame struct {
	block       *Block
	abbrevs     AbbrevTable
	enterOffset uint64
}

// stateStack mirrors block nesting. Depth is always >= 1; element 0 is
// the synthetic top-level frame (block == nil, empty abbrev table,
// 2-bit default abbrev id width).
type stateStack struct {
	frames []frame
}

func newStateStack() *stateStack {
	return &stateStack{frames: []frame{{}}}
}

func (s *stateStack) top() *frame {
	return &s.frames[len(s.frames)-1]
}

func (s *stateStack) push(f frame) {
	s.frames = append(s.frames, f)
}

// pop removes and returns the top frame. It is the caller's
// responsibility to never pop the synthetic element 0.
func (s *stateStack) pop() frame {
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f
}

func (s *stateStack) depth() int { return len(s.frames) }

// abbrevIDWidth returns the width used to read the next abbrev id in
// the current frame: the block's own width if one is set, or the
// top-level default of 2 bits.
func (s *stateStack) abbrevIDWidth() uint8 {
	top := s.top()
	if top.block != nil {
		return top.block.AbbrevIDWidth
	}
	return 2
}
