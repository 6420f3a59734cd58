package render

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/esimov/sdfatlas"
	"github.com/esimov/sdfatlas/store"
	"golang.org/x/sync/errgroup"
)

// SVGExtensions lists the extensions of the icon files picked up by Source.
var SVGExtensions = []string{".svg"}

// Failure records an icon which could not be rendered.
type Failure struct {
	ID   string
	Path string
	Err  error
}

// Source renders every SVG icon of a directory into a tile.
//
// An icon which fails to render is reported and skipped, the run goes on with the
// remaining ones. Only when no icon could be rendered the whole source fails.
type Source struct {
	Dir      string
	Size     int
	Renderer Renderer
	Workers  int         // concurrent renders, runtime.NumCPU() when zero
	Logger   *log.Logger // optional, log.Default() when nil

	// OnRendered is called after every rendering attempt, from any goroutine.
	OnRendered func(id string, err error)

	mu       sync.Mutex
	failures []Failure
}

var _ sdfatlas.TileSource = (*Source)(nil)

// Files returns the icons Tiles would render, in order.
func (s *Source) Files() ([]store.Entry, error) {
	return store.Scan(s.Dir, SVGExtensions)
}

// Tiles renders the icons of the directory. The tiles are returned in file name order,
// independently of the order in which the concurrent renders complete.
func (s *Source) Tiles(ctx context.Context) ([]sdfatlas.Tile, error) {
	entries, err := s.Files()
	if err != nil {
		return nil, err
	}
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]sdfatlas.Tile, len(entries))
	errs := make([]error, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := s.Renderer.Render(gctx, e.Path, s.Size)
			if err == nil {
				results[i] = sdfatlas.Tile{ID: e.ID, Image: img}
			}
			errs[i] = err
			if s.OnRendered != nil {
				s.OnRendered(e.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failures []Failure
	tiles := make([]sdfatlas.Tile, 0, len(entries))
	for i, e := range entries {
		if errs[i] != nil {
			logger.Warn("render failed, icon skipped", "icon", filepath.Base(e.Path), "err", errs[i])
			failures = append(failures, Failure{ID: e.ID, Path: e.Path, Err: errs[i]})
			continue
		}
		logger.Debug("rendered", "icon", filepath.Base(e.Path))
		tiles = append(tiles, results[i])
	}
	s.mu.Lock()
	s.failures = failures
	s.mu.Unlock()

	if len(tiles) == 0 {
		return nil, sdfatlas.ErrNoTiles
	}
	return tiles, nil
}

// Failures returns the icons skipped by the last completed call to Tiles.
// It is safe to call while Tiles is running.
func (s *Source) Failures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Failure(nil), s.failures...)
}
