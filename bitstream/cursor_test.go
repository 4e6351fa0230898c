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
	"math/big"
	"testing"
)

func TestReadBitsRoundTrip(t *testing.T) {
	cases := []struct {
		v uint64
		n uint8
	}{
		{0, 1},
		{1, 1},
		{0x7, 3},
		{0xAA, 8},
		{0x1FF, 9},
		{0xDEADBEEF, 32},
		{0x1, 17},
		{^uint64(0), 64},
	}
	for _, c := range cases {
		w := &bitWriter{}
		w.WriteBits(c.v, c.n)
		// pad so the cursor has a byte-aligned buffer to read from.
		for w.bits%8 != 0 {
			w.WriteBits(0, 1)
		}
		cur := NewCursor(w.Bytes())
		got, err := cur.ReadBits(c.n)
		if err != nil {
			t.Fatalf("ReadBits(%d,%d): %v", c.v, c.n, err)
		}
		want := c.v & wideMask(c.n)
		if got != want {
			t.Errorf("ReadBits(%d,%d) = %#x, want %#x", c.v, c.n, got, want)
		}
	}
}

func TestReadBitsAcrossByteBoundary(t *testing.T) {
	w := &bitWriter{}
	w.WriteBits(0x3, 2)
	w.WriteBits(0x1F, 5)
	w.WriteBits(0x123, 11)
	w.WriteBits(0, 6) // pad to a byte boundary
	cur := NewCursor(w.Bytes())
	if v, err := cur.ReadBits(2); err != nil || v != 0x3 {
		t.Fatalf("first field: got (%d,%v), want 3", v, err)
	}
	if v, err := cur.ReadBits(5); err != nil || v != 0x1F {
		t.Fatalf("second field: got (%d,%v), want 0x1F", v, err)
	}
	if v, err := cur.ReadBits(11); err != nil || v != 0x123 {
		t.Fatalf("third field: got (%d,%v), want 0x123", v, err)
	}
}

func TestReadBitsOutOfBounds(t *testing.T) {
	cur := NewCursor([]byte{0x01})
	if _, err := cur.ReadBits(16); err == nil {
		t.Fatal("expected an error reading past the end of the buffer")
	} else if e, ok := err.(*Error); !ok || e.Kind != OutOfBounds {
		t.Fatalf("expected OutOfBounds error, got %v", err)
	}
}

func TestVBRRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 3, 7, 8, 63, 64, 127, 128, 1 << 20, 1<<40 + 7, ^uint64(0) >> 1, ^uint64(0)}
	for chunk := uint8(2); chunk <= 8; chunk++ {
		for _, v := range values {
			w := &bitWriter{}
			w.WriteVBR(v, chunk)
			w.AlignTo32()
			cur := NewCursor(w.Bytes())
			got, err := cur.ReadVBR(chunk)
			if err != nil {
				t.Fatalf("chunk=%d v=%d: %v", chunk, v, err)
			}
			if got != v {
				t.Errorf("chunk=%d v=%d: got %d", chunk, v, got)
			}
		}
	}
}

func TestVBRBigOverflowPromotes(t *testing.T) {
	const chunk = 8
	const payloadWidth = chunk - 1
	w := &bitWriter{}
	// 10 chunks of all-ones payload: shift reaches 63 before the 10th
	// chunk is read, which is where readVBR's shift+payloadWidth>64
	// guard promotes to a bigInt.
	const nChunks = 10
	for i := 0; i < nChunks; i++ {
		cont := i != nChunks-1
		payload := uint64(1)<<payloadWidth - 1
		chunkVal := payload
		if cont {
			chunkVal |= uint64(1) << payloadWidth
		}
		w.WriteBits(chunkVal, chunk)
	}
	w.AlignTo32()
	cur := NewCursor(w.Bytes())
	got, err := cur.ReadVBRBig(chunk)
	if err != nil {
		t.Fatalf("ReadVBRBig: %v", err)
	}
	if _, ok := got.Uint64(); ok {
		t.Fatal("expected the accumulated value to overflow uint64")
	}
	want := new(big.Int)
	payload := uint64(1)<<payloadWidth - 1
	for i := 0; i < nChunks; i++ {
		chunkBig := new(big.Int).Lsh(new(big.Int).SetUint64(payload), uint(i*payloadWidth))
		want.Or(want, chunkBig)
	}
	if got.String() != want.String() {
		t.Errorf("got %s, want %s", got.String(), want.String())
	}

	// The same bits, read with ReadVBR instead, must fail rather than
	// silently truncate.
	cur2 := NewCursor(w.Bytes())
	if _, err := cur2.ReadVBR(chunk); err == nil {
		t.Fatal("expected ReadVBR to reject a value that overflows uint64")
	}
}

func TestVBRZeroChunkWidthRejected(t *testing.T) {
	cur := NewCursor([]byte{0x00, 0x00, 0x00, 0x00})
	if _, err := cur.ReadVBR(0); err == nil {
		t.Fatal("expected an error for a zero-width VBR chunk")
	}
}

func TestAlignToIdempotent(t *testing.T) {
	w := &bitWriter{}
	w.WriteBits(0x1, 5)
	w.AlignTo32()
	buf := w.Bytes()
	cur := NewCursor(buf)
	if _, err := cur.ReadBits(5); err != nil {
		t.Fatal(err)
	}
	if err := cur.AlignTo(32); err != nil {
		t.Fatal(err)
	}
	first := cur.Position()
	if err := cur.AlignTo(32); err != nil {
		t.Fatal(err)
	}
	if cur.Position() != first {
		t.Errorf("AlignTo moved an already-aligned cursor: %v -> %v", first, cur.Position())
	}
	if first.BitOffset != 0 {
		t.Errorf("AlignTo(32) left a non-zero bit offset: %v", first)
	}
	if first.Offset%4 != 0 {
		t.Errorf("AlignTo(32) left a non-word-aligned byte offset: %v", first)
	}
}

func TestAlignToRejectsNonPowerOfTwo(t *testing.T) {
	cur := NewCursor([]byte{0, 0, 0, 0})
	if err := cur.AlignTo(3); err == nil {
		t.Fatal("expected an error for a non-power-of-two alignment")
	}
}

func TestReadBytesRequiresByteAlignment(t *testing.T) {
	cur := NewCursor([]byte{0xFF, 0xFF})
	if _, err := cur.ReadBits(1); err != nil {
		t.Fatal(err)
	}
	if _, err := cur.ReadBytes(1); err == nil {
		t.Fatal("expected ReadBytes to reject a non-byte-aligned cursor")
	}
}
