package sdfatlas

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/esimov/sdfatlas/utils"
	"github.com/pkg/errors"
)

// TileSource produces the ordered tiles of a packing run.
type TileSource interface {
	Tiles(ctx context.Context) ([]Tile, error)
}

// Sink persists the outputs of a packing run.
type Sink interface {
	WriteAtlas(ctx context.Context, atlas *Atlas) error
}

var _ Packer = (*Processor)(nil)

// Packer packs an ordered tile list into an atlas.
type Packer interface {
	Pack(ctx context.Context, tiles []Tile) (*Atlas, error)
}

// Processor options
type Processor struct {
	Options
	Workers int         // concurrent tile copies, 0 means sequential
	Logger  *log.Logger // optional, log.Default() when nil
}

// NewProcessor returns a Processor configured with opts.
func NewProcessor(opts Options) *Processor {
	return &Processor{Options: opts}
}

func (p *Processor) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}

// Pack plans a grid for the tiles and composes them into a new atlas.
func (p *Processor) Pack(ctx context.Context, tiles []Tile) (*Atlas, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(tiles) == 0 {
		return nil, ErrNoTiles
	}

	plan, err := p.Plan(len(tiles))
	if err != nil {
		return nil, err
	}
	p.logger().Debug("planned atlas",
		"tiles", len(tiles),
		"grid", utils.FormatSize(plan.Columns, plan.Rows),
		"size", utils.FormatSize(plan.AtlasWidth, plan.AtlasHeight),
	)

	var opts []ComposeOption
	if p.Workers > 0 {
		opts = append(opts, WithWorkers(p.Workers))
	}
	return Compose(tiles, plan, opts...)
}

// Process is the main entry point of a packing run: it pulls the tiles from src,
// packs them and hands the finished atlas to dst. Nothing reaches dst unless
// every previous step succeeded.
func (p *Processor) Process(ctx context.Context, src TileSource, dst Sink) (*Atlas, error) {
	now := time.Now()

	tiles, err := src.Tiles(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "could not load the tiles")
	}
	p.logger().Debug("loaded tiles", "count", len(tiles), "elapsed", utils.FormatTime(time.Since(now)))

	atlas, err := p.Pack(ctx, tiles)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := dst.WriteAtlas(ctx, atlas); err != nil {
		return nil, errors.WithMessage(err, "could not persist the atlas")
	}
	p.logger().Debug("atlas written", "elapsed", utils.FormatTime(time.Since(now)))

	return atlas, nil
}
