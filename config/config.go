// Package config loads the atlas generator settings from a TOML file.
package config

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/esimov/sdfatlas"
	"github.com/pkg/errors"
)

// Renderer names accepted by the Renderer setting.
const (
	RendererMsdf   = "msdf"   // external msdfgen tool
	RendererVector = "vector" // built-in rasterizer, no distance field
	RendererNone   = "none"   // the input directory already holds rendered tiles
)

// Config holds every setting of a generator run.
type Config struct {
	InputDir    string `toml:"input_dir"`
	OutputAtlas string `toml:"output_atlas"`
	OutputMap   string `toml:"output_json"`
	Size        int    `toml:"size"`
	Padding     int    `toml:"padding"`
	Renderer    string `toml:"renderer"`
	MsdfgenPath string `toml:"msdfgen_path"`
	CacheDir    string `toml:"cache_dir"`
	Workers     int    `toml:"workers"`
	UV          bool   `toml:"uv"`
}

// Default returns the settings used when neither a file nor a flag overrides them.
func Default() Config {
	return Config{
		OutputAtlas: "atlas.png",
		OutputMap:   "atlas.json",
		Size:        sdfatlas.DefaultTileSize,
		Padding:     sdfatlas.DefaultPadding,
		Renderer:    RendererMsdf,
	}
}

// Load reads the TOML file at path on top of the defaults.
// Unknown keys are rejected, they are most likely typos.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "could not read the config file %q", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.Errorf("unknown keys in the config file %q: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Options returns the packing options of the configuration.
func (c Config) Options() sdfatlas.Options {
	return sdfatlas.Options{TileSize: c.Size, Padding: c.Padding}
}

// Validate checks the settings which can be verified before a run.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("the input directory is required")
	}
	if c.Size <= 0 {
		return errors.Wrapf(sdfatlas.ErrInvalidArgument, "size %d must be positive", c.Size)
	}
	if c.Padding < 0 {
		return errors.Wrapf(sdfatlas.ErrInvalidArgument, "padding %d must not be negative", c.Padding)
	}
	if c.Workers < 0 {
		return errors.Wrapf(sdfatlas.ErrInvalidArgument, "workers %d must not be negative", c.Workers)
	}
	switch c.Renderer {
	case RendererMsdf, RendererVector, RendererNone:
	default:
		return errors.Errorf("unknown renderer %q, expected one of %s, %s, %s",
			c.Renderer, RendererMsdf, RendererVector, RendererNone)
	}
	if c.OutputAtlas == "" || c.OutputMap == "" {
		return errors.New("both the atlas and the map output paths are required")
	}
	return nil
}
