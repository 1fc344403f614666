package graph

import (
	"errors"
	"fmt"
)

// StructureErrorCode categorizes graph structure errors.
type StructureErrorCode string

const (
	// ErrCodeNodeNotFound indicates an operation referenced a node that is
	// not part of the node set.
	ErrCodeNodeNotFound StructureErrorCode = "NODE_NOT_FOUND"

	// ErrCodeEdgeNotFound indicates an operation required an edge that does
	// not exist (e.g. updating the payload of a removed edge).
	ErrCodeEdgeNotFound StructureErrorCode = "EDGE_NOT_FOUND"
)

// StructureError represents an operation that referenced graph structure
// which does not exist. These indicate a logic bug in a pipeline step, not a
// normal runtime condition, so the engine surfaces them loudly.
type StructureError struct {
	Code StructureErrorCode
	Op   string // operation name, e.g. "RemoveEdge"
	U    string
	V    string
}

// Error implements the error interface.
func (e *StructureError) Error() string {
	if e.V != "" {
		return fmt.Sprintf("%s: %s(%s, %s)", e.Code, e.Op, e.U, e.V)
	}
	return fmt.Sprintf("%s: %s(%s)", e.Code, e.Op, e.U)
}

// IsNodeNotFound reports whether err is a StructureError for a missing node.
// Uses errors.As to handle wrapped errors.
func IsNodeNotFound(err error) bool {
	var se *StructureError
	if errors.As(err, &se) {
		return se.Code == ErrCodeNodeNotFound
	}
	return false
}

// IsEdgeNotFound reports whether err is a StructureError for a missing edge.
// Uses errors.As to handle wrapped errors.
func IsEdgeNotFound(err error) bool {
	var se *StructureError
	if errors.As(err, &se) {
		return se.Code == ErrCodeEdgeNotFound
	}
	return false
}

func nodeNotFound(op, name string) *StructureError {
	return &StructureError{Code: ErrCodeNodeNotFound, Op: op, U: name}
}

func edgeNotFound(op, u, v string) *StructureError {
	return &StructureError{Code: ErrCodeEdgeNotFound, Op: op, U: u, V: v}
}
