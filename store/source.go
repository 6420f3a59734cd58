package store

import (
	"bytes"
	"context"
	"image"
	"net/http"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/esimov/sdfatlas"
	"github.com/esimov/sdfatlas/utils"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	_ "golang.org/x/image/webp"
)

var (
	_ sdfatlas.TileSource = (*DirSource)(nil)
	_ sdfatlas.TileSource = (*HTTPSource)(nil)
	_ sdfatlas.TileSource = MemorySource(nil)
)

// DirSource loads pre-rendered tiles from the image files of a directory.
type DirSource struct {
	Dir        string
	Extensions []string // ImageExtensions when empty
	Workers    int      // concurrent decoders, runtime.NumCPU() when zero
}

// Tiles decodes every matching file of the directory.
// Files are decoded concurrently but the tiles keep the Scan order.
func (s *DirSource) Tiles(ctx context.Context) ([]sdfatlas.Tile, error) {
	exts := s.Extensions
	if len(exts) == 0 {
		exts = ImageExtensions
	}
	entries, err := Scan(s.Dir, exts)
	if err != nil {
		return nil, err
	}

	tiles := make([]sdfatlas.Tile, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(s.Workers))
	for i, e := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decodeFile(e.Path)
			if err != nil {
				return err
			}
			tiles[i] = sdfatlas.Tile{ID: e.ID, Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tiles, nil
}

// decodeFile decodes an image file to type image.Image
func decodeFile(src string) (image.Image, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open the tile file")
	}
	return decode(src, data)
}

func decode(name string, data []byte) (image.Image, error) {
	// TIFF is not sniffed by net/http, so only text content is rejected up front.
	if ctype := utils.DetectContentType(data); strings.HasPrefix(ctype, "text/") {
		return nil, errors.Errorf("%s should be an image file, got %s", name, ctype)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", name)
	}
	return img, nil
}

// HTTPSource downloads the tiles from a list of URLs.
// The identifier of each tile is the base name of the URL path without extension.
type HTTPSource struct {
	URLs    []string
	Client  *http.Client // http.DefaultClient when nil
	Workers int
}

// Tiles fetches and decodes every URL, preserving the order of the list.
func (s *HTTPSource) Tiles(ctx context.Context) ([]sdfatlas.Tile, error) {
	if len(s.URLs) == 0 {
		return nil, errors.Wrap(ErrNoInput, "empty URL list")
	}

	for _, uri := range s.URLs {
		if !utils.IsValidUrl(uri) {
			return nil, errors.Errorf("invalid tile URL %q", uri)
		}
	}

	tiles := make([]sdfatlas.Tile, len(s.URLs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(s.Workers))
	for i, uri := range s.URLs {
		g.Go(func() error {
			data, err := utils.Fetch(ctx, s.Client, uri)
			if err != nil {
				return err
			}
			img, err := decode(uri, data)
			if err != nil {
				return err
			}
			tiles[i] = sdfatlas.Tile{ID: urlIdentifier(uri), Image: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tiles, nil
}

func urlIdentifier(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		uri = uri[:i]
	}
	return IdentifierOf(path.Base(uri))
}

// MemorySource serves a fixed list of tiles.
type MemorySource []sdfatlas.Tile

// Tiles returns a copy of the list.
func (s MemorySource) Tiles(ctx context.Context) ([]sdfatlas.Tile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]sdfatlas.Tile(nil), s...), nil
}

func workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
