// Package render turns SVG icons into square tiles ready to be packed.
//
// The distance field generation itself is delegated to the external msdfgen tool.
// A plain vector rasterizer is provided for environments where msdfgen is not available.
package render

import (
	"context"
	"image"
)

// Renderer rasterizes the SVG file found at path into a size x size image.
type Renderer interface {
	Render(ctx context.Context, path string, size int) (image.Image, error)
}

// RendererFunc adapts an ordinary function to the Renderer interface.
type RendererFunc func(ctx context.Context, path string, size int) (image.Image, error)

// Render calls f(ctx, path, size).
func (f RendererFunc) Render(ctx context.Context, path string, size int) (image.Image, error) {
	return f(ctx, path, size)
}
