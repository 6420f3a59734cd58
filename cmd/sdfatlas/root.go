package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/esimov/sdfatlas"
	"github.com/esimov/sdfatlas/cache"
	"github.com/esimov/sdfatlas/config"
	"github.com/esimov/sdfatlas/render"
	"github.com/esimov/sdfatlas/store"
	"github.com/esimov/sdfatlas/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// newRootCmd builds the command tree. The root command itself runs the generator.
func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
		flags      = config.Default()
	)

	root := &cobra.Command{
		Use:           "sdfatlas",
		Short:         "Pack a directory of SVG icons into a signed distance field atlas",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(configPath, flags, cmd.Flags())
			if err != nil {
				return err
			}
			return generate(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}
	root.SetHelpTemplate(fmt.Sprintf(HelpBanner, Version) + root.HelpTemplate())

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	f := root.Flags()
	f.StringVar(&configPath, "config", "", "TOML file holding the default settings")
	f.StringVar(&flags.InputDir, "input-dir", flags.InputDir, "directory containing the SVG icons")
	f.StringVar(&flags.OutputAtlas, "output-atlas", flags.OutputAtlas, "output atlas image (.png, .bmp, .tiff or - for stdout)")
	f.StringVar(&flags.OutputMap, "output-json", flags.OutputMap, "output coordinate map (.json, .toml or - for stdout)")
	f.IntVar(&flags.Size, "size", flags.Size, "resolution of each icon tile")
	f.IntVar(&flags.Padding, "padding", flags.Padding, "padding pixels between icons in the atlas")
	f.StringVar(&flags.Renderer, "renderer", flags.Renderer, "tile renderer: msdf, vector or none (input holds rendered tiles)")
	f.StringVar(&flags.MsdfgenPath, "msdfgen-path", flags.MsdfgenPath, "explicit path to the msdfgen binary")
	f.StringVar(&flags.CacheDir, "cache-dir", flags.CacheDir, "directory caching the rendered tiles between runs")
	f.IntVar(&flags.Workers, "workers", flags.Workers, "number of icons to render concurrently (0 = number of CPUs)")
	f.BoolVar(&flags.UV, "uv", flags.UV, "include normalized texture coordinates in the coordinate map")

	root.AddCommand(newInfoCmd())
	return root
}

// resolveConfig merges the config file, if any, with the flags set on the command line.
func resolveConfig(path string, flags config.Config, set *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}

	overrides := map[string]func(){
		"input-dir":    func() { cfg.InputDir = flags.InputDir },
		"output-atlas": func() { cfg.OutputAtlas = flags.OutputAtlas },
		"output-json":  func() { cfg.OutputMap = flags.OutputMap },
		"size":         func() { cfg.Size = flags.Size },
		"padding":      func() { cfg.Padding = flags.Padding },
		"renderer":     func() { cfg.Renderer = flags.Renderer },
		"msdfgen-path": func() { cfg.MsdfgenPath = flags.MsdfgenPath },
		"cache-dir":    func() { cfg.CacheDir = flags.CacheDir },
		"workers":      func() { cfg.Workers = flags.Workers },
		"uv":           func() { cfg.UV = flags.UV },
	}
	set.Visit(func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// generate runs the whole pipeline: render the icons, pack them and write both outputs.
func generate(ctx context.Context, cfg config.Config, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := loggerFromContext(ctx)
	now := time.Now()

	if fi, err := os.Stat(cfg.InputDir); err != nil || !fi.IsDir() {
		return errors.Errorf("directory %q not found", cfg.InputDir)
	}

	src, count, err := newSource(cfg, logger)
	if errors.Is(err, store.ErrNoInput) {
		logger.Info("no input files found, nothing to do", "dir", cfg.InputDir)
		return nil
	}
	if err != nil {
		return err
	}

	interactive := isTerminal(stderr)
	src = withProgress(src, count, cfg.Renderer, interactive, stderr)

	proc := &sdfatlas.Processor{
		Options: cfg.Options(),
		Workers: cfg.Workers,
		Logger:  logger,
	}
	sink := &store.FileSink{
		ImagePath: cfg.OutputAtlas,
		MapPath:   cfg.OutputMap,
		Map:       sdfatlas.MapOptions{UV: cfg.UV},
	}

	atlas, err := proc.Process(ctx, src, sink)
	if p, ok := src.(*progressSource); ok {
		p.stop(err)
	}
	if err != nil {
		if errors.Is(err, sdfatlas.ErrNoTiles) {
			return errors.New("no images were successfully generated")
		}
		return err
	}

	if cfg.OutputAtlas != store.PipeName {
		fmt.Fprintf(stderr, "Saved atlas image to %s (%s)\n",
			utils.DecorateText(cfg.OutputAtlas, utils.SuccessMessage),
			utils.FormatSize(atlas.Plan.AtlasWidth, atlas.Plan.AtlasHeight))
	}
	if cfg.OutputMap != store.PipeName {
		fmt.Fprintf(stderr, "Saved atlas metadata to %s\n", utils.DecorateText(cfg.OutputMap, utils.SuccessMessage))
	}
	fmt.Fprintf(stderr, "Packed %d icons in %s\n", atlas.Map.Len(),
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// newSource selects the tile source for the configured renderer and
// returns the number of input files it is going to process.
func newSource(cfg config.Config, logger *log.Logger) (sdfatlas.TileSource, int, error) {
	if cfg.Renderer == config.RendererNone {
		entries, err := store.Scan(cfg.InputDir, store.ImageExtensions)
		if err != nil {
			return nil, 0, err
		}
		return &store.DirSource{Dir: cfg.InputDir, Workers: cfg.Workers}, len(entries), nil
	}

	src := &render.Source{
		Dir:     cfg.InputDir,
		Size:    cfg.Size,
		Workers: cfg.Workers,
		Logger:  logger,
	}
	entries, err := src.Files()
	if err != nil {
		return nil, 0, err
	}
	logger.Infof("Found %d SVGs. Generating individual tiles...", len(entries))

	var r render.Renderer
	switch cfg.Renderer {
	case config.RendererVector:
		r = render.Vector{}
	default:
		path := cfg.MsdfgenPath
		if path == "" {
			base := "."
			if exe, err := os.Executable(); err == nil {
				base = filepath.Dir(exe)
			}
			if path, err = render.FindMsdfgen(base); err != nil {
				return nil, 0, errors.Wrap(err, "try specifying --msdfgen-path")
			}
		}
		logger.Debug("using msdfgen", "path", path)
		r = &render.Msdfgen{Path: path}
	}

	if cfg.CacheDir != "" {
		fc, err := cache.NewFileCache(cfg.CacheDir)
		if err != nil {
			return nil, 0, err
		}
		r = &render.Cached{Renderer: r, Cache: fc, Namespace: cfg.Renderer, Logger: logger}
	}
	src.Renderer = r
	return src, len(entries), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
