package store

import (
	"errors"
	"fmt"

	"quire/internal/model"
)

var (
	ErrInvalidNodeType    = errors.New("invalid node type")
	ErrStyleNotSupported  = errors.New("style applies to heading and subheading nodes only")
	ErrInvalidPaletteHex  = errors.New("palette colors must be #rgb or #rrggbb hex")
	ErrPaletteUnavailable = errors.New("palette store has no directory")
	ErrInvalidFont        = errors.New("font must be a comma-separated list of family names")
	ErrInvalidWidth       = errors.New("image width must be auto or a number with px, %, em or rem")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InvalidParentError is returned when a parent id does not exist or when its type may not
// contain the child's type.
type InvalidParentError struct {
	ParentID   string
	ParentType model.NodeType
	ChildType  model.NodeType
	Missing    bool
}

func (e InvalidParentError) Error() string {
	if e.Missing {
		return fmt.Sprintf("invalid parent: %s does not exist", e.ParentID)
	}
	return fmt.Sprintf("invalid parent: %s (%s) cannot contain %s", e.ParentID, e.ParentType, e.ChildType)
}

type CycleRejectedError struct {
	NodeID   string
	ParentID string
}

func (e CycleRejectedError) Error() string {
	return fmt.Sprintf("cycle rejected: %s is an ancestor of %s", e.NodeID, e.ParentID)
}

type InvalidReorderError struct {
	DraggedID string
	TargetID  string
}

func (e InvalidReorderError) Error() string {
	return fmt.Sprintf("invalid reorder: %s and %s do not share a parent", e.DraggedID, e.TargetID)
}

type ContentMismatchError struct {
	NodeID string
	Type   model.NodeType
	Kind   string
}

func (e ContentMismatchError) Error() string {
	return fmt.Sprintf("content mismatch: %s node %s cannot hold %s content", e.Type, e.NodeID, e.Kind)
}
