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

package bcio

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/bitgraph/bitcode/bitstream"
)

// SeedBlock is one entry of a YAML seed file: the block id it names,
// the block's own name, and a map of record code to record name.
type SeedBlock struct {
	ID          uint32            `json:"id"`
	Name        string            `json:"name,omitempty"`
	RecordNames map[uint32]string `json:"recordNames,omitempty"`
}

// Seed is the top-level shape of a YAML seed file: a flat list of
// SeedBlock entries. It intentionally does not carry abbreviation
// definitions — those are binary wire-format data with no natural
// textual representation, and are always read from an embedded
// BLOCKINFO block instead.
type Seed struct {
	Blocks []SeedBlock `json:"blocks"`
}

// LoadSeed reads a YAML seed file and returns a BlockInfoStore
// pre-populated with its block and record names, for bitstreams whose
// own BLOCKINFO block is absent or incomplete. A later, embedded
// BLOCKINFO block still takes precedence for anything it defines: the
// store returned here is meant to be passed to
// bitstream.WithSeed, and is *prepended*, not frozen, if the embedded
// block also sets a name for the same id.
func LoadSeed(path string) (*bitstream.BlockInfoStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bcio: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("bcio: parsing seed file %s: %w", path, err)
	}
	store := bitstream.NewBlockInfoStore()
	for _, b := range seed.Blocks {
		store.Seed(b.ID, b.Name, b.RecordNames)
	}
	return store, nil
}
