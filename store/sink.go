package store

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/esimov/sdfatlas"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/term"
)

// PipeName is the file name that indicates stdout is being used.
const PipeName = "-"

// ErrUnsupportedFormat is returned for output extensions the sink cannot encode.
var ErrUnsupportedFormat = errors.New("unsupported output format")

var (
	_ sdfatlas.Sink = (*FileSink)(nil)
	_ sdfatlas.Sink = (*MemorySink)(nil)
)

// FileSink writes the atlas image and the coordinate map to files.
//
// Both outputs are fully encoded into temporary files next to their destination
// and renamed into place only when everything succeeded, so a failed run never
// replaces existing outputs. An output sent to PipeName is written before the
// files are renamed.
type FileSink struct {
	ImagePath string // .png, .bmp, .tif or .tiff; PipeName for stdout
	MapPath   string // .json or .toml; PipeName for stdout
	Map       sdfatlas.MapOptions

	// Stdout receives the outputs sent to PipeName, os.Stdout when nil.
	Stdout io.Writer
}

// WriteAtlas persists the atlas image and its coordinate map.
func (s *FileSink) WriteAtlas(ctx context.Context, atlas *sdfatlas.Atlas) error {
	if s.ImagePath == PipeName && s.MapPath == PipeName {
		return errors.New("the atlas image and the coordinate map cannot both be written to stdout")
	}

	var imgBuf, mapBuf bytes.Buffer
	if err := EncodeImage(&imgBuf, atlas.Image, s.ImagePath); err != nil {
		return err
	}
	if err := EncodeMap(&mapBuf, atlas.Map, s.MapPath, s.Map); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.ImagePath == PipeName {
		if f, ok := s.stdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
	}

	for _, dst := range []string{s.ImagePath, s.MapPath} {
		if err := checkDestination(dst); err != nil {
			return err
		}
	}
	if s.ImagePath == s.MapPath {
		return errors.Errorf("the atlas image and the coordinate map cannot share the path %q", s.ImagePath)
	}

	var pending []*pendingFile
	commit := func(dst string, data []byte) error {
		if dst == PipeName {
			return nil
		}
		pf, err := stage(dst, data)
		if err != nil {
			return err
		}
		pending = append(pending, pf)
		return nil
	}
	if err := commit(s.ImagePath, imgBuf.Bytes()); err != nil {
		discard(pending)
		return err
	}
	if err := commit(s.MapPath, mapBuf.Bytes()); err != nil {
		discard(pending)
		return err
	}

	// The pipe goes first: once the files are in place there is nothing left to fail.
	var piped []byte
	switch PipeName {
	case s.ImagePath:
		piped = imgBuf.Bytes()
	case s.MapPath:
		piped = mapBuf.Bytes()
	}
	if piped != nil {
		if _, err := s.stdout().Write(piped); err != nil {
			discard(pending)
			return errors.Wrap(err, "unable to write to stdout")
		}
	}
	return publish(pending)
}

func (s *FileSink) stdout() io.Writer {
	if s.Stdout != nil {
		return s.Stdout
	}
	return os.Stdout
}

type pendingFile struct {
	tmp, dst string
	backup   string // previous content of dst while publishing, if any
}

// checkDestination refuses destinations which exist but are not regular files.
// Catching them before anything is renamed keeps the outputs from being replaced one at a time.
func checkDestination(dst string) error {
	if dst == PipeName {
		return nil
	}
	fi, err := os.Stat(dst)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "unable to access the destination file %q", dst)
	}
	if !fi.Mode().IsRegular() {
		return errors.Errorf("the destination %q exists and is not a regular file", dst)
	}
	return nil
}

// publish renames every staged file into place. The previous destination files are
// moved aside first and restored if any rename fails, so either all outputs are
// replaced or none is.
func publish(pending []*pendingFile) error {
	var done []*pendingFile
	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			pf := done[i]
			if pf.backup != "" {
				os.Rename(pf.backup, pf.dst)
			} else {
				os.Remove(pf.dst)
			}
		}
	}

	for i, pf := range pending {
		if _, err := os.Lstat(pf.dst); err == nil {
			backup := pf.tmp + ".old"
			if err := os.Rename(pf.dst, backup); err != nil {
				rollback()
				discard(pending[i:])
				return errors.Wrapf(err, "unable to replace the destination file %q", pf.dst)
			}
			pf.backup = backup
		}
		if err := os.Rename(pf.tmp, pf.dst); err != nil {
			if pf.backup != "" {
				os.Rename(pf.backup, pf.dst)
			}
			rollback()
			discard(pending[i:])
			return errors.Wrapf(err, "unable to create the destination file %q", pf.dst)
		}
		done = append(done, pf)
	}

	for _, pf := range done {
		if pf.backup != "" {
			os.Remove(pf.backup)
		}
	}
	return nil
}

// stage writes data into a temporary file in the directory of dst.
func stage(dst string, data []byte) (*pendingFile, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "unable to create the destination directory %q", dir)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*")
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create the destination file %q", dst)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, errors.Wrapf(err, "unable to write %q", dst)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, errors.Wrapf(err, "unable to write %q", dst)
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	return &pendingFile{tmp: f.Name(), dst: dst}, nil
}

func discard(files []*pendingFile) {
	for _, pf := range files {
		os.Remove(pf.tmp)
	}
}

// EncodeImage encodes the atlas in the format selected by the extension of name.
// Lossy and palette based formats are refused since they corrupt distance field data.
// PipeName selects PNG.
func EncodeImage(w io.Writer, img image.Image, name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if name == PipeName {
		ext = ".png"
	}
	switch ext {
	case ".png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "atlas image %q", name)
	}
}

// EncodeMap encodes the coordinate map in the format selected by the extension of name.
// PipeName selects JSON.
func EncodeMap(w io.Writer, m *sdfatlas.CoordinateMap, name string, opts sdfatlas.MapOptions) error {
	ext := strings.ToLower(filepath.Ext(name))
	if name == PipeName {
		ext = ".json"
	}
	switch ext {
	case ".json":
		return m.EncodeJSON(w, opts)
	case ".toml":
		return m.EncodeTOML(w, opts)
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "coordinate map %q", name)
	}
}

// MemorySink keeps the last written atlas in memory.
type MemorySink struct {
	mu    sync.Mutex
	atlas *sdfatlas.Atlas
}

// WriteAtlas stores the atlas.
func (s *MemorySink) WriteAtlas(ctx context.Context, atlas *sdfatlas.Atlas) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atlas = atlas
	return nil
}

// Atlas returns the last written atlas, or nil.
func (s *MemorySink) Atlas() *sdfatlas.Atlas {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.atlas
}
