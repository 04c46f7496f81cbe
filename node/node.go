// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.
//
// The Kortana library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The Kortana library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the Kortana library. If not, see <http://www.gnu.org/licenses/>.

// Package node identifies a running process for logging and metrics
// labels. The identifier carries no consensus weight — it is never
// signed, gossiped, or compared against a validator's address.
package node

import (
	"github.com/google/uuid"
)

// ID is a random instance identifier, generated fresh each process start
// unless a caller persists and reloads one via IDFromString.
type ID struct {
	uuid uuid.UUID
}

// NewID generates a fresh random instance identifier.
func NewID() ID {
	return ID{uuid: uuid.New()}
}

// IDFromString parses a previously generated identifier, e.g. one loaded
// from a data directory so restarts keep reporting the same instance
// label in dashboards.
func IDFromString(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID{uuid: u}, nil
}

// String returns the identifier's canonical text form.
func (id ID) String() string {
	return id.uuid.String()
}
