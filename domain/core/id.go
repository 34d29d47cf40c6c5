package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// SessionID identifies one cleaning session
type SessionID ID

// NewSessionID creates a fresh session identifier
func NewSessionID() SessionID {
	return SessionID(NewID())
}

// String returns the string representation
func (id SessionID) String() string { return ID(id).String() }

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(s), nil
}

// TID identifies a tuple (row) in the raw dataset
type TID int

// VID identifies a random variable: a cell whose generated domain holds more
// than one candidate value. VIDs are dense and zero-based, assigned in
// deterministic iteration order (tuple order, then attribute order).
type VID int

// CID identifies a cell, i.e. a (tuple, attribute) pair.
type CID int

// CellID derives the cell identifier for a tuple and attribute position.
// Every (tid, attribute) pair maps to exactly one CID.
func CellID(tid TID, attrIndex, attrCount int) CID {
	return CID(int(tid)*attrCount + attrIndex)
}
