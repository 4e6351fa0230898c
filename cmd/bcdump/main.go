// Copyright 2024 Bitgraph, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Command bcdump parses a bitcode file and prints its block/record
// tree. It is the "pretty-printing, debug dumping" consumer the
// bitstream package itself deliberately leaves out.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/bitgraph/bitcode/bcio"
	"github.com/bitgraph/bitcode/bitstream"
	"github.com/bitgraph/bitcode/digest"
)

func main() {
	seedPath := flag.String("seed", "", "optional YAML block-name seed file")
	showDigest := flag.Bool("digest", false, "print the document's content fingerprint")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: bcdump [-seed file.yaml] [-digest] <bitcode-file>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *seedPath, *showDigest); err != nil {
		fmt.Fprintln(os.Stderr, "bcdump:", err)
		os.Exit(1)
	}
}

func run(path, seedPath string, showDigest bool) error {
	raw, err := bcio.Open(path)
	if err != nil {
		return err
	}

	var opts []bitstream.Option
	sessionID := uuid.New().String()
	opts = append(opts,
		bitstream.WithSessionID(sessionID),
		bitstream.WithWarner(bitstream.LogWarner{Logger: log.New(os.Stderr, "", 0), SessionID: sessionID}),
	)
	if seedPath != "" {
		seed, err := bcio.LoadSeed(seedPath)
		if err != nil {
			return err
		}
		opts = append(opts, bitstream.WithSeed(seed))
	}

	doc, err := bitstream.FromBytes(raw, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("magic = %#08x\n", doc.Magic)
	if showDigest {
		lo, hi := digest.Fingerprint(doc)
		fmt.Printf("fingerprint = %016x%016x\n", hi, lo)
	}
	for _, b := range doc.TopBlocks {
		dumpBlock(doc, b, 0)
	}
	return nil
}

func dumpBlock(doc *bitstream.Document, b *bitstream.Block, depth int) {
	indent := indentOf(depth)
	name, ok := doc.BlockName(b.ID)
	if ok {
		fmt.Printf("%sblock %d (%s): %d records, %d bytes\n", indent, b.ID, name, len(b.Records), b.LengthBytes)
	} else {
		fmt.Printf("%sblock %d: %d records, %d bytes\n", indent, b.ID, len(b.Records), b.LengthBytes)
	}
	for _, r := range b.Records {
		dumpRecord(doc, b.ID, r, depth+1)
	}
	for _, sub := range b.SubBlocks {
		dumpBlock(doc, sub, depth+1)
	}
}

func dumpRecord(doc *bitstream.Document, blockID uint32, r bitstream.Record, depth int) {
	indent := indentOf(depth)
	name, ok := doc.RecordName(blockID, r.Code)
	if ok {
		fmt.Printf("%srecord code=%d (%s) abbrev=%d values=%v\n", indent, r.Code, name, r.AbbrevID, r.Values)
	} else {
		fmt.Printf("%srecord code=%d abbrev=%d values=%v\n", indent, r.Code, r.AbbrevID, r.Values)
	}
}

func indentOf(depth int) string {
	out := make([]byte, depth*2)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}
