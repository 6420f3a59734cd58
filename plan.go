package sdfatlas

import (
	"image"

	"github.com/esimov/sdfatlas/utils"
	"github.com/pkg/errors"
)

// Default values for the tile side length and the padding, in pixels.
const (
	DefaultTileSize = 64
	DefaultPadding  = 2
)

// MaxAtlasSide is the largest atlas side length the planner accepts.
const MaxAtlasSide = 1 << 15

// Options holds the packing parameters shared by the planner and the compositor.
type Options struct {
	TileSize int // side length of every tile
	Padding  int // border and separator width
}

// DefaultOptions returns the options used when nothing else is configured.
func DefaultOptions() Options {
	return Options{
		TileSize: DefaultTileSize,
		Padding:  DefaultPadding,
	}
}

// Plan computes the grid for n tiles with the receiver's tile size and padding.
func (o Options) Plan(n int) (GridPlan, error) {
	return Plan(n, o.TileSize, o.Padding)
}

// GridPlan describes the square grid holding the tiles of a packing run.
type GridPlan struct {
	Columns     int
	Rows        int
	CellSize    int
	Padding     int
	AtlasWidth  int
	AtlasHeight int
}

// Plan returns the smallest square grid enclosing n cells of tileSize pixels,
// separated from each other and from the atlas edges by padding pixels.
//
// The grid is always square: columns == rows == ceil(sqrt(n)),
// even when a rectangular grid would waste less space.
func Plan(n, tileSize, padding int) (GridPlan, error) {
	switch {
	case n < 1:
		return GridPlan{}, errors.Wrapf(ErrInvalidArgument, "tile count %d must be at least 1", n)
	case tileSize <= 0:
		return GridPlan{}, errors.Wrapf(ErrInvalidArgument, "tile size %d must be positive", tileSize)
	case padding < 0:
		return GridPlan{}, errors.Wrapf(ErrInvalidArgument, "padding %d must not be negative", padding)
	case tileSize > MaxAtlasSide || padding > MaxAtlasSide:
		return GridPlan{}, errors.Wrapf(ErrInvalidArgument, "tile size %d with padding %d exceeds the maximum atlas side %d",
			tileSize, padding, MaxAtlasSide)
	}

	side := utils.CeilSqrt(n)
	// side*tileSize + (side+1)*padding, computed without overflowing int.
	width := int64(side)*int64(tileSize) + int64(side+1)*int64(padding)
	if width > MaxAtlasSide {
		return GridPlan{}, errors.Wrapf(ErrInvalidArgument, "atlas side %d for %d tiles exceeds the maximum %d",
			width, n, MaxAtlasSide)
	}

	return GridPlan{
		Columns:     side,
		Rows:        side,
		CellSize:    tileSize,
		Padding:     padding,
		AtlasWidth:  int(width),
		AtlasHeight: int(width),
	}, nil
}

// Capacity returns the number of cells in the grid.
func (g GridPlan) Capacity() int {
	return g.Columns * g.Rows
}

// Cell returns the pixel rectangle of the cell with the given sequence index.
// Cells are filled row by row, left to right.
func (g GridPlan) Cell(index int) image.Rectangle {
	row, col := index/g.Columns, index%g.Columns
	x := g.Padding + col*(g.CellSize+g.Padding)
	y := g.Padding + row*(g.CellSize+g.Padding)

	return image.Rect(x, y, x+g.CellSize, y+g.CellSize)
}

// Bounds returns the atlas rectangle anchored at the origin.
func (g GridPlan) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.AtlasWidth, g.AtlasHeight)
}

// validate checks a plan which might not come from Plan.
func (g GridPlan) validate() error {
	if g.Columns < 1 || g.Rows < 1 || g.CellSize <= 0 || g.Padding < 0 ||
		g.Columns > MaxAtlasSide || g.Rows > MaxAtlasSide || g.CellSize > MaxAtlasSide || g.Padding > MaxAtlasSide {
		return errors.Wrapf(ErrInvalidArgument, "malformed grid plan %+v", g)
	}
	wantW := g.Columns*g.CellSize + (g.Columns+1)*g.Padding
	wantH := g.Rows*g.CellSize + (g.Rows+1)*g.Padding
	if g.AtlasWidth != wantW || g.AtlasHeight != wantH {
		return errors.Wrapf(ErrInvalidArgument, "grid plan atlas size %s does not match its grid, want %s",
			utils.FormatSize(g.AtlasWidth, g.AtlasHeight), utils.FormatSize(wantW, wantH))
	}
	if g.AtlasWidth > MaxAtlasSide || g.AtlasHeight > MaxAtlasSide {
		return errors.Wrapf(ErrInvalidArgument, "grid plan atlas size %s exceeds the maximum %d",
			utils.FormatSize(g.AtlasWidth, g.AtlasHeight), MaxAtlasSide)
	}
	return nil
}
