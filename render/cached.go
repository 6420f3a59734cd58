package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/esimov/sdfatlas/cache"
	"github.com/pkg/errors"
)

// Cached wraps a Renderer with a content addressed tile cache.
// The key covers the SVG content, the tile size and the namespace,
// so editing an icon or switching renderers invalidates its entry.
type Cached struct {
	Renderer  Renderer
	Cache     cache.Cache
	Namespace string      // distinguishes renderers sharing a cache
	Logger    *log.Logger // optional, log.Default() when nil
}

var _ Renderer = (*Cached)(nil)

// Render returns the cached tile for the SVG file or renders and stores it.
// Cache failures are not fatal: the tile is rendered as if the cache was empty.
func (c *Cached) Render(ctx context.Context, path string, size int) (image.Image, error) {
	svg, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read the svg file")
	}
	key := cache.Key("tile", c.Namespace, size, cache.Hash(svg))

	if data, ok, err := c.Cache.Get(ctx, key); err == nil && ok {
		if img, err := png.Decode(bytes.NewReader(data)); err == nil {
			return img, nil
		}
	}

	img, err := c.Renderer.Render(ctx, path, size)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err == nil {
		if err := c.Cache.Set(ctx, key, buf.Bytes(), 0); err != nil {
			c.logger().Warn("could not cache the rendered tile", "icon", filepath.Base(path), "err", err)
		}
	}
	return img, nil
}

func (c *Cached) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}
