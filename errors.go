package sdfatlas

import (
	"fmt"

	"github.com/pkg/errors"
)

// The error kinds reported by the planner and the compositor.
// Match them with errors.Is; tile specific failures are wrapped in a *TileError.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrTileSizeMismatch    = errors.New("tile size mismatch")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrNoTiles is returned when a tile source yields nothing to pack.
	ErrNoTiles = errors.New("no tiles to pack")
)

// TileError names the tile which caused a packing run to fail.
type TileError struct {
	ID  string
	Err error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("tile %q: %v", e.ID, e.Err)
}

// Unwrap returns the underlying error kind.
func (e *TileError) Unwrap() error { return e.Err }

// TileID returns the identifier of the offending tile, if err carries one.
func TileID(err error) (string, bool) {
	var te *TileError
	if errors.As(err, &te) {
		return te.ID, true
	}
	return "", false
}

func tileErr(id string, kind error, format string, args ...any) error {
	return &TileError{ID: id, Err: errors.Wrapf(kind, format, args...)}
}
