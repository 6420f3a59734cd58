package render

import (
	"bytes"
	"context"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ErrMsdfgenNotFound is returned when no msdfgen executable can be located.
var ErrMsdfgenNotFound = errors.New("could not find the msdfgen executable")

// Msdfgen renders multichannel signed distance fields by invoking the msdfgen tool.
type Msdfgen struct {
	Path string // msdfgen executable
	Mode string // generator mode, "msdf" when empty
}

var _ Renderer = (*Msdfgen)(nil)

// FindMsdfgen locates the msdfgen executable: first in the build directory
// under base, then in the PATH.
func FindMsdfgen(base string) (string, error) {
	local := filepath.Join(base, "build", "msdfgen")
	candidates := []string{local}
	if runtime.GOOS == "windows" {
		candidates = append(candidates, local+".exe")
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && fi.Mode().IsRegular() {
			return c, nil
		}
	}
	if p, err := exec.LookPath("msdfgen"); err == nil {
		return p, nil
	}
	return "", ErrMsdfgenNotFound
}

// Args returns the msdfgen command line rendering svg into out.
// The -autoframe option centers the shape within the output box.
func (m *Msdfgen) Args(svg, out string, size int) []string {
	mode := m.Mode
	if mode == "" {
		mode = "msdf"
	}
	s := strconv.Itoa(size)
	return []string{mode, "-svg", svg, "-o", out, "-size", s, s, "-autoframe"}
}

// Render runs msdfgen on the SVG file and decodes the generated PNG.
// The intermediate file lives in a temporary directory which is always removed.
func (m *Msdfgen) Render(ctx context.Context, path string, size int) (image.Image, error) {
	if m.Path == "" {
		return nil, ErrMsdfgenNotFound
	}
	tmp, err := os.MkdirTemp("", "sdfatlas-msdf-")
	if err != nil {
		return nil, errors.Wrap(err, "unable to create the temporary render directory")
	}
	defer os.RemoveAll(tmp)

	out := filepath.Join(tmp, "tile.png")
	cmd := exec.CommandContext(ctx, m.Path, m.Args(path, out, size)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrapf(err, "msdfgen failed on %q: %s", filepath.Base(path), msg)
		}
		return nil, errors.Wrapf(err, "msdfgen failed on %q", filepath.Base(path))
	}

	img, err := imaging.Open(out)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode the msdfgen output for %q", filepath.Base(path))
	}
	return img, nil
}
