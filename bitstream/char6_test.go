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

import "testing"

func TestChar6DecodeTable(t *testing.T) {
	want := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ._"
	if len(want) != 54 {
		t.Fatalf("test fixture itself is wrong: len=%d", len(want))
	}
	for i := 0; i < len(want); i++ {
		got, err := char6Decode(uint64(i))
		if err != nil {
			t.Fatalf("char6Decode(%d): %v", i, err)
		}
		if got != want[i] {
			t.Errorf("char6Decode(%d) = %q, want %q", i, got, want[i])
		}
	}
}

func TestChar6DecodeUnmapped(t *testing.T) {
	for i := uint64(54); i < 64; i++ {
		if _, err := char6Decode(i); err == nil {
			t.Errorf("char6Decode(%d) should fail: index has no mapped character", i)
		}
	}
}

func TestChar6DecodeOutOfRange(t *testing.T) {
	if _, err := char6Decode(64); err == nil {
		t.Fatal("char6Decode(64) should fail: index exceeds the 6-bit range")
	}
}
