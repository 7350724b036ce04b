package grid

import (
	"fmt"
	"strings"
)

// ErrUnexpectedValue indicates a header field whose value violates the format rules
type ErrUnexpectedValue struct {
	Key   string
	Value interface{}
}

func (e *ErrUnexpectedValue) Error() string {
	return fmt.Sprintf("unexpected value in %q record: %v", e.Key, e.Value)
}

// ErrKeyCollision indicates a header key declared twice with different values
type ErrKeyCollision struct {
	Key string
}

func (e *ErrKeyCollision) Error() string {
	return fmt.Sprintf("duplicated key %q with conflicting values", e.Key)
}

// ErrMissingField indicates a mandatory header record that was not found
type ErrMissingField struct {
	File string
	Key  string
}

func (e *ErrMissingField) Error() string {
	return fmt.Sprintf("missing %q record in %q", e.Key, e.File)
}

// ErrDuplicateGrid indicates two sub-grids declaring the same SUB_NAME
type ErrDuplicateGrid struct {
	Name string
}

func (e *ErrDuplicateGrid) Error() string {
	return fmt.Sprintf("duplicated sub-grid name %q", e.Name)
}

// ErrUnreachableGrids indicates sub-grids whose parent declarations form a cycle,
// leaving them unreachable from any root.
type ErrUnreachableGrids struct {
	Names []string
}

func (e *ErrUnreachableGrids) Error() string {
	return fmt.Sprintf("sub-grids unreachable from any root (cyclic parent declarations): %s",
		strings.Join(e.Names, ", "))
}

// ErrNoGrids indicates a file from which no root grid could be assembled
type ErrNoGrids struct {
	File string
}

func (e *ErrNoGrids) Error() string {
	return fmt.Sprintf("no grid could be read from %q", e.File)
}

// ErrGridTooLarge indicates a cell count that overflows the representable range
type ErrGridTooLarge struct {
	Width, Height int
}

func (e *ErrGridTooLarge) Error() string {
	return fmt.Sprintf("grid size %d x %d exceeds the representable cell count", e.Width, e.Height)
}

// ErrTruncated indicates a read past the end of the file
type ErrTruncated struct {
	Needed    int
	Remaining int
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("unexpected end of file: needed %d bytes, %d remaining", e.Needed, e.Remaining)
}
