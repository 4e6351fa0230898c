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

import (
	"fmt"

	"github.com/bitgraph/bitcode/bits"
)

// Position is a bit-granular offset into a byte buffer. The canonical
// form always has BitOffset < 8.
type Position struct {
	Offset    uint64
	BitOffset uint8
}

func (p Position) String() string {
	return fmt.Sprintf("%d.%d", p.Offset, p.BitOffset)
}

// TotalBits returns the position expressed as a single bit count.
func (p Position) TotalBits() uint64 {
	return p.Offset*8 + uint64(p.BitOffset)
}

func (p Position) canonical() Position {
	extra := p.BitOffset / 8
	return Position{Offset: p.Offset + uint64(extra), BitOffset: p.BitOffset % 8}
}

// Cursor reads bit-granular fields from an immutable byte buffer. It
// never moves backwards; every public method leaves the Position
// canonicalized.
type Cursor struct {
	buf []byte
	pos Position
}

// NewCursor returns a Cursor positioned at the start of buf. The
// buffer is borrowed, not copied, and must not be mutated while the
// Cursor is in use.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Position returns the cursor's current bit position.
func (c *Cursor) Position() Position { return c.pos }

// Len returns the number of bytes in the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// AtEnd reports whether the cursor sits exactly at the end of the
// buffer, with no partial bits pending.
func (c *Cursor) AtEnd() bool {
	return c.pos.BitOffset == 0 && c.pos.Offset == uint64(len(c.buf))
}

func (c *Cursor) remainingBits() uint64 {
	total := uint64(len(c.buf)) * 8
	used := c.pos.TotalBits()
	if used >= total {
		return 0
	}
	return total - used
}

// ReadBits returns the n-bit unsigned value at the current position,
// little-endian within each byte and across bytes: bit 0 of the first
// touched byte is the least significant bit of the result. It advances
// the position by n bits.
func (c *Cursor) ReadBits(n uint8) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if uint64(n) > c.remainingBits() {
		return 0, outOfBounds(c.pos, nil)
	}
	var result uint64
	var got uint8
	pos := c.pos
	for got < n {
		byteVal := c.buf[pos.Offset]
		avail := 8 - pos.BitOffset
		take := n - got
		if take > avail {
			take = avail
		}
		chunk := (byteVal >> pos.BitOffset) & byteMask(take)
		result |= uint64(chunk) << got
		got += take
		pos.BitOffset += take
		pos = pos.canonical()
	}
	c.pos = pos
	return result, nil
}

func byteMask(n uint8) byte {
	if n >= 8 {
		return 0xff
	}
	return byte(1<<n) - 1
}

func wideMask(n uint8) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

// ReadVBR reads a variable-bit-rate integer in chunk-bit groups: each
// chunk carries chunk-1 payload bits plus a continuation bit in the
// chunk's most significant bit. Payload chunks are concatenated
// low-order-chunk-first. It fails with Malformed if the accumulated
// value does not fit in 64 bits; callers that expect arbitrarily wide
// values should use ReadVBRBig instead.
func (c *Cursor) ReadVBR(chunk uint8) (uint64, error) {
	v, big, err := c.readVBR(chunk)
	if err != nil {
		return 0, err
	}
	if big != nil {
		if v, ok := big.Uint64(); ok {
			return v, nil
		}
		return 0, malformed(c.pos, nil, "VBR value exceeds 64 bits")
	}
	return v, nil
}

// ReadVBRBig behaves like ReadVBR but never fails on overflow; it
// returns the value as a bigInt, which is cheap to construct and
// inspect when the value fits in 64 bits (the common case fast-paths
// through a native accumulator and only promotes to bigInt once a
// chunk would overflow it, per §9's implementation note).
func (c *Cursor) ReadVBRBig(chunk uint8) (*bigInt, error) {
	v, big, err := c.readVBR(chunk)
	if err != nil {
		return nil, err
	}
	if big != nil {
		return big, nil
	}
	return newBigInt(v), nil
}

func (c *Cursor) readVBR(chunk uint8) (uint64, *bigInt, error) {
	if chunk < 1 {
		return 0, nil, malformed(c.pos, nil, "VBR chunk width must be >= 1, got %d", chunk)
	}
	payloadWidth := chunk - 1
	var acc uint64
	var shift uint
	var big *bigInt
	for {
		chunkVal, err := c.ReadBits(chunk)
		if err != nil {
			return 0, nil, err
		}
		payload := chunkVal & wideMask(payloadWidth)
		cont := chunkVal>>payloadWidth&1 != 0

		switch {
		case big != nil:
			big.orShifted(payload, shift)
		case shift+uint(payloadWidth) > 64:
			big = newBigInt(acc)
			big.orShifted(payload, shift)
		default:
			acc |= payload << shift
		}
		shift += uint(payloadWidth)
		if !cont {
			break
		}
	}
	return acc, big, nil
}

// AlignTo advances the position so that the total bit position is a
// multiple of a, a power of two. It is a no-op if already aligned, and
// otherwise advances by strictly less than a bits.
func (c *Cursor) AlignTo(a uint32) error {
	if !bits.IsPowerOfTwo(a) {
		return malformed(c.pos, nil, "alignment %d is not a power of two", a)
	}
	total := c.pos.TotalBits()
	aligned := bits.AlignUp(total, uint64(a))
	return c.skipBits(aligned - total)
}

func (c *Cursor) skipBits(n uint64) error {
	if n > c.remainingBits() {
		return outOfBounds(c.pos, nil)
	}
	total := c.pos.TotalBits() + n
	c.pos = Position{Offset: total / 8, BitOffset: uint8(total % 8)}
	return nil
}

// ReadBytes returns a view of the next n bytes, requiring the cursor
// to currently be byte-aligned. It advances the position by n*8 bits.
func (c *Cursor) ReadBytes(n uint64) ([]byte, error) {
	if c.pos.BitOffset != 0 {
		return nil, malformed(c.pos, nil, "ReadBytes requires byte alignment")
	}
	if n > uint64(len(c.buf))-c.pos.Offset {
		return nil, outOfBounds(c.pos, nil)
	}
	out := c.buf[c.pos.Offset : c.pos.Offset+n]
	c.pos.Offset += n
	return out, nil
}

// SkipBytes advances n bytes without returning them, used by the
// BLOCKINFO driver when it has to discard an unexpected nested block.
func (c *Cursor) SkipBytes(n uint64) error {
	return c.skipBits(n * 8)
}
