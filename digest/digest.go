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

// Package digest computes content fingerprints for parsed bitstream
// documents. Neither fingerprint is part of the wire format; both
// exist so a consumer can cheaply deduplicate or cache parsed modules
// without writing a semantic interpreter.
package digest

import (
	"encoding/binary"

	"github.com/dchest/siphash"
	"golang.org/x/crypto/blake2b"

	"github.com/bitgraph/bitcode/bitstream"
)

// siphash keys are fixed and arbitrary: the fingerprint only needs to
// be stable within a single process/pipeline, not cryptographically
// keyed, the same tradeoff tenant.go makes for its cache keys.
const (
	k0 = 0x6274636f64652d30
	k1 = 0x6c6c766d2d626974
)

// Fingerprint hashes the flattened record/value structure of doc with
// SipHash-2-4 and returns the 128-bit result as (low, high). It is
// cheap, not collision-resistant against an adversary, and sensitive
// only to the decoded tree — two byte-distinct inputs that decode to
// the same tree fingerprint identically.
func Fingerprint(doc *bitstream.Document) (lo, hi uint64) {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, doc.Magic)
	for _, b := range doc.TopBlocks {
		buf = appendBlock(buf, b)
	}
	return siphash.Hash128(k0, k1, buf)
}

func appendBlock(buf []byte, b *bitstream.Block) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, b.ID)
	for _, r := range b.Records {
		buf = binary.LittleEndian.AppendUint32(buf, r.Code)
		buf = appendValues(buf, r.Values)
	}
	for _, sub := range b.SubBlocks {
		buf = appendBlock(buf, sub)
	}
	return buf
}

func appendValues(buf []byte, values []bitstream.Value) []byte {
	for _, v := range values {
		switch x := v.(type) {
		case bitstream.Scalar:
			buf = binary.LittleEndian.AppendUint64(buf, uint64(x))
		case bitstream.Array:
			buf = appendValues(buf, x)
		case bitstream.Blob:
			buf = append(buf, x...)
		}
	}
	return buf
}

// StrongDigest returns a blake2b-256 checksum of the raw input buffer
// a Document was parsed from, for callers that want a
// collision-resistant identifier keyed to the bytes rather than the
// decoded tree (e.g. for on-disk cache file names).
func StrongDigest(raw []byte) ([32]byte, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return [32]byte{}, err
	}
	h.Write(raw)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}
