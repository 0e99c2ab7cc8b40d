// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package mapping

import (
	"fmt"
	"strings"
)

// CommandType is the kind of SQL a statement runs.
type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandInsert
	CommandUpdate
	CommandDelete
	CommandSelect
	CommandFlush
)

var commandNames = []string{"UNKNOWN", "INSERT", "UPDATE", "DELETE", "SELECT", "FLUSH"}

func (c CommandType) String() string {
	if int(c) < 0 || int(c) >= len(commandNames) {
		return fmt.Sprintf("CommandType(%d)", int(c))
	}
	return commandNames[c]
}

// ParseCommandType maps a block or tag name (select, insert, update, delete,
// flush) to its CommandType. Anything else is CommandUnknown.
func ParseCommandType(s string) CommandType {
	for i, name := range commandNames {
		if strings.EqualFold(s, name) {
			return CommandType(i)
		}
	}
	return CommandUnknown
}

// IsUpdate reports whether statements of this kind modify data.
func (c CommandType) IsUpdate() bool {
	return c == CommandInsert || c == CommandUpdate || c == CommandDelete
}
