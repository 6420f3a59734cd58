package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/esimov/sdfatlas"
	"github.com/esimov/sdfatlas/config"
	"github.com/esimov/sdfatlas/render"
	"github.com/esimov/sdfatlas/utils"
	"github.com/schollz/progressbar/v3"
)

// progressSource shows a progress bar while the tiles are produced
// and a spinner while they are packed and written.
type progressSource struct {
	sdfatlas.TileSource
	bar     *progressbar.ProgressBar
	spinner *utils.Spinner
}

// withProgress decorates src with the progress indicators when w is a terminal.
func withProgress(src sdfatlas.TileSource, total int, renderer string, interactive bool, w io.Writer) sdfatlas.TileSource {
	if !interactive {
		return src
	}
	desc := "rendering"
	if renderer == config.RendererNone {
		desc = "loading"
	}
	p := &progressSource{
		TileSource: src,
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(desc),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		),
	}
	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ SDFATLAS", utils.StatusMessage),
		utils.DecorateText("⇢ packing the atlas...", utils.DefaultMessage))
	p.spinner = utils.NewSpinner(w, spinnerText, 80*time.Millisecond, true)

	if rs, ok := src.(*render.Source); ok {
		rs.OnRendered = func(string, error) { p.bar.Add(1) }
	}
	return p
}

// Tiles delegates to the wrapped source, then switches from the bar to the spinner.
func (p *progressSource) Tiles(ctx context.Context) ([]sdfatlas.Tile, error) {
	tiles, err := p.TileSource.Tiles(ctx)
	if _, ok := p.TileSource.(*render.Source); !ok {
		p.bar.Add(len(tiles))
	}
	p.bar.Finish()
	if err == nil {
		p.spinner.Start()
	}
	return tiles, err
}

// stop ends the spinner with a status mark reflecting err.
func (p *progressSource) stop(err error) {
	mark := utils.DecorateText("✔\n", utils.SuccessMessage)
	if err != nil {
		mark = utils.DecorateText("✘\n", utils.ErrorMessage)
	}
	p.spinner.StopMsg = fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ SDFATLAS", utils.StatusMessage),
		utils.DecorateText("⇢ packing the atlas...", utils.DefaultMessage),
		mark)
	p.spinner.Stop()
}
