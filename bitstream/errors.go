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
	"log"
)

// Kind distinguishes the two fatal error classes this package raises.
type Kind int

const (
	// Malformed means the stream violated a wire-format rule.
	Malformed Kind = iota
	// OutOfBounds means the cursor would have advanced past the buffer.
	OutOfBounds
)

func (k Kind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case OutOfBounds:
		return "out of bounds"
	default:
		return "unknown"
	}
}

// Error is the single fatal error type this package returns. It always
// carries the cursor Position at which the failure was detected, and,
// when known, the block id of the block being parsed.
type Error struct {
	Kind    Kind
	Pos     Position
	BlockID *uint32
	Msg     string
}

func (e *Error) Error() string {
	if e.BlockID != nil {
		return fmt.Sprintf("bitstream: %s at %s (block %#x): %s", e.Kind, e.Pos, *e.BlockID, e.Msg)
	}
	return fmt.Sprintf("bitstream: %s at %s: %s", e.Kind, e.Pos, e.Msg)
}

func malformed(pos Position, blockID *uint32, format string, args ...interface{}) error {
	return &Error{Kind: Malformed, Pos: pos, BlockID: blockID, Msg: fmt.Sprintf(format, args...)}
}

func outOfBounds(pos Position, blockID *uint32) error {
	return &Error{Kind: OutOfBounds, Pos: pos, BlockID: blockID, Msg: "read would advance past end of buffer"}
}

// Warner receives non-fatal conditions (§7 of the format note): stray
// tokens at stream top level, and BLOCKINFO anomalies. The zero value
// of Session uses DiscardWarner; callers that want the conditions
// logged can install LogWarner or their own implementation.
type Warner interface {
	Warn(pos Position, blockID *uint32, msg string)
}

// DiscardWarner drops every warning. It is the default when a Session
// is constructed without an explicit Warner.
type DiscardWarner struct{}

func (DiscardWarner) Warn(Position, *uint32, string) {}

// LogWarner writes warnings to a standard library *log.Logger, tagging
// each line with the session id it belongs to when one is set.
type LogWarner struct {
	Logger    *log.Logger
	SessionID string
}

func (w LogWarner) Warn(pos Position, blockID *uint32, msg string) {
	if w.Logger == nil {
		return
	}
	prefix := ""
	if w.SessionID != "" {
		prefix = w.SessionID + ": "
	}
	if blockID != nil {
		w.Logger.Printf("%swarning at %s (block %#x): %s", prefix, pos, *blockID, msg)
		return
	}
	w.Logger.Printf("%swarning at %s: %s", prefix, pos, msg)
}

func warnf(w Warner, pos Position, blockID *uint32, format string, args ...interface{}) {
	if w == nil {
		return
	}
	w.Warn(pos, blockID, fmt.Sprintf(format, args...))
}
