package render

import (
	"context"
	"image"
	"os"

	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Vector rasterizes SVG icons directly, without computing a distance field.
// The icon is stretched over the whole tile on a transparent background.
type Vector struct{}

var _ Renderer = Vector{}

// Render draws the SVG file into a new size x size image.
func (Vector) Render(ctx context.Context, path string, size int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, errors.Errorf("invalid tile size %d", size)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open the svg file")
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse %q", path)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	icon.Draw(dasher, 1.0)

	return rgba, nil
}
