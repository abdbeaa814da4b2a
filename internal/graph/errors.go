package graph

import (
	"errors"
	"fmt"
)

var (
	ErrNodeNotFound   = errors.New("graph: node not found")
	ErrSlotOutOfRange = errors.New("graph: input slot out of range")
)

// ErrorCode categorizes graph mutation errors.
type ErrorCode string

const (
	// ErrCodeDuplicateID indicates a caller-supplied id is already live.
	ErrCodeDuplicateID ErrorCode = "DUPLICATE_ID"

	// ErrCodeCycle indicates a connection would make a node its own ancestor.
	ErrCodeCycle ErrorCode = "CYCLE_WOULD_FORM"
)

// DuplicateIDError is returned by InsertWithID when the id is occupied.
type DuplicateIDError struct {
	ID NodeID
}

// Error implements the error interface.
func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s: node id %d already in use", ErrCodeDuplicateID, e.ID)
}

// CycleError is returned by Connect when the edge would close a cycle,
// either a self-loop or a target that is already an ancestor of the source.
type CycleError struct {
	Target NodeID
	Slot   int
	Source NodeID
}

// SelfLoop reports whether the rejected edge pointed a node at itself.
func (e *CycleError) SelfLoop() bool {
	return e.Target == e.Source
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if e.SelfLoop() {
		return fmt.Sprintf("%s: node %d cannot feed its own input %d", ErrCodeCycle, e.Target, e.Slot)
	}
	return fmt.Sprintf("%s: node %d is an ancestor of %d (input %d)", ErrCodeCycle, e.Target, e.Source, e.Slot)
}

// IsCycleError returns true if err is or wraps a CycleError.
func IsCycleError(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}

// IsDuplicateIDError returns true if err is or wraps a DuplicateIDError.
func IsDuplicateIDError(err error) bool {
	var de *DuplicateIDError
	return errors.As(err, &de)
}
