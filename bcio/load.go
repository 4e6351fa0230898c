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

// Package bcio provides the byte-source acquisition helpers the
// bitstream decoder itself deliberately excludes (see its package
// doc): reading a file, transparently undoing zstd compression, and
// loading a YAML sidecar of well-known block/record names. None of
// this touches bit-level parsing; it only produces the []byte that
// bitstream.FromBytes consumes.
package bcio

import (
	"bytes"
	"fmt"
	"os"
	"runtime"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Open reads path and, if its contents begin with the zstd frame
// magic number, transparently decompresses them. Plain (uncompressed)
// bitcode is returned unchanged.
func Open(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bcio: %w", err)
	}
	return OpenDecompressed(raw)
}

// OpenDecompressed decompresses raw if it looks like a zstd frame,
// and returns it unchanged otherwise.
func OpenDecompressed(raw []byte) ([]byte, error) {
	if !bytes.HasPrefix(raw, zstdMagic) {
		return raw, nil
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		return nil, fmt.Errorf("bcio: zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("bcio: zstd decompress: %w", err)
	}
	return out, nil
}
