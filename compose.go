package sdfatlas

import (
	"image"
	"image/color"
	"runtime"

	"github.com/disintegration/imaging"
	"github.com/esimov/sdfatlas/utils"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Tile is a single square image to be packed, together with its identifier.
type Tile struct {
	ID    string
	Image image.Image
}

// Atlas is the result of a packing run: the composed image and the coordinate map
// describing where every tile landed.
type Atlas struct {
	Plan  GridPlan
	Image *image.NRGBA
	Map   *CoordinateMap
}

// ComposeOption configures Compose.
type ComposeOption func(*composer)

type composer struct {
	workers int
}

// WithWorkers copies the tiles into the atlas using up to n goroutines.
// Values lower than 1 select runtime.NumCPU().
func WithWorkers(n int) ComposeOption {
	return func(c *composer) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		c.workers = n
	}
}

// Compose draws the tiles into a blank atlas laid out by plan and records
// the placement of each tile. Tile i goes into plan.Cell(i).
//
// Every precondition is checked before the canvas is allocated: the atlas and
// the map are either both returned complete, or an error is returned.
func Compose(tiles []Tile, plan GridPlan, opts ...ComposeOption) (*Atlas, error) {
	c := composer{workers: 1}
	for _, opt := range opts {
		opt(&c)
	}

	if err := plan.validate(); err != nil {
		return nil, err
	}
	if len(tiles) > plan.Capacity() {
		return nil, errors.Wrapf(ErrCapacityExceeded, "%d tiles do not fit into a %dx%d grid",
			len(tiles), plan.Columns, plan.Rows)
	}

	cmap := newCoordinateMap(plan, len(tiles))
	for i, t := range tiles {
		if t.ID == "" {
			return nil, errors.Wrapf(ErrInvalidArgument, "tile at index %d has no identifier", i)
		}
		if t.Image == nil {
			return nil, tileErr(t.ID, ErrInvalidArgument, "tile has no image")
		}
		if _, ok := cmap.index[t.ID]; ok {
			return nil, tileErr(t.ID, ErrDuplicateIdentifier, "identifier used by more than one tile")
		}
		b := t.Image.Bounds()
		if b.Dx() != plan.CellSize || b.Dy() != plan.CellSize {
			return nil, tileErr(t.ID, ErrTileSizeMismatch, "got %dx%d, want %dx%d",
				b.Dx(), b.Dy(), plan.CellSize, plan.CellSize)
		}

		cell := plan.Cell(i)
		cmap.add(Placement{
			ID:     t.ID,
			X:      cell.Min.X,
			Y:      cell.Min.Y,
			Width:  plan.CellSize,
			Height: plan.CellSize,
		})
	}

	canvas := imaging.New(plan.AtlasWidth, plan.AtlasHeight, color.NRGBA{})

	// The cells are pairwise disjoint, so the copies need no locking beyond the final join.
	var g errgroup.Group
	g.SetLimit(utils.Max(1, utils.Min(c.workers, len(tiles))))
	for i, t := range tiles {
		pt := cmap.placements[i].Rect().Min
		g.Go(func() error {
			blit(canvas, toNRGBA(t.Image), pt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Atlas{
		Plan:  plan,
		Image: canvas,
		Map:   cmap,
	}, nil
}
