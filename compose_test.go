package sdfatlas

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidTile returns a size x size tile filled with c.
func solidTile(id string, size int, c color.NRGBA) Tile {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return Tile{ID: id, Image: img}
}

func testTiles(n, size int) []Tile {
	tiles := make([]Tile, n)
	for i := range tiles {
		tiles[i] = solidTile(fmt.Sprintf("icon_%02d", i), size, color.NRGBA{R: uint8(10 * (i + 1)), G: uint8(i), B: 200, A: 255})
	}
	return tiles
}

func TestCompose_Placements(t *testing.T) {
	assert := assert.New(t)

	tiles := testTiles(4, 64)
	plan, err := Plan(len(tiles), 64, 2)
	require.NoError(t, err)

	atlas, err := Compose(tiles, plan)
	require.NoError(t, err)
	assert.Equal(image.Rect(0, 0, 134, 134), atlas.Image.Bounds())
	assert.Equal(plan, atlas.Plan)
	assert.Equal(plan, atlas.Map.Plan())
	assert.Equal(4, atlas.Map.Len())

	want := []image.Point{{2, 2}, {68, 2}, {2, 68}, {68, 68}}
	for i, tile := range tiles {
		p, ok := atlas.Map.Lookup(tile.ID)
		assert.True(ok)
		assert.Equal(want[i], image.Pt(p.X, p.Y))
		assert.Equal(64, p.Width)
		assert.Equal(64, p.Height)
	}
}

func TestCompose_PartialGrid(t *testing.T) {
	assert := assert.New(t)

	tiles := testTiles(5, 64)
	plan, err := Plan(len(tiles), 64, 0)
	require.NoError(t, err)

	atlas, err := Compose(tiles, plan)
	require.NoError(t, err)
	assert.Equal(192, atlas.Image.Bounds().Dx())

	p, ok := atlas.Map.Lookup("icon_04")
	assert.True(ok)
	assert.Equal(64, p.X)
	assert.Equal(64, p.Y)

	// Unused trailing cells stay blank.
	for _, cell := range []int{5, 6, 7, 8} {
		r := plan.Cell(cell)
		assert.Equal(color.NRGBA{}, atlas.Image.NRGBAAt(r.Min.X, r.Min.Y))
		assert.Equal(color.NRGBA{}, atlas.Image.NRGBAAt(r.Max.X-1, r.Max.Y-1))
	}
}

func TestCompose_SingleTile(t *testing.T) {
	assert := assert.New(t)

	tiles := testTiles(1, 32)
	plan, err := Plan(1, 32, 2)
	require.NoError(t, err)

	atlas, err := Compose(tiles, plan)
	require.NoError(t, err)
	assert.Equal(image.Rect(0, 0, 36, 36), atlas.Image.Bounds())

	p, ok := atlas.Map.Lookup("icon_00")
	assert.True(ok)
	assert.Equal(image.Rect(2, 2, 34, 34), p.Rect())
}

func TestCompose_PixelContents(t *testing.T) {
	assert := assert.New(t)

	tiles := testTiles(7, 8)
	plan, err := Plan(len(tiles), 8, 3)
	require.NoError(t, err)

	atlas, err := Compose(tiles, plan)
	require.NoError(t, err)

	covered := image.NewAlpha(atlas.Image.Bounds())
	for _, tile := range tiles {
		p, _ := atlas.Map.Lookup(tile.ID)
		src := tile.Image.(*image.NRGBA)
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				assert.Equal(src.NRGBAAt(x, y), atlas.Image.NRGBAAt(p.X+x, p.Y+y))
				covered.SetAlpha(p.X+x, p.Y+y, color.Alpha{A: 1})
			}
		}
	}

	// Padding and empty cells are fully transparent.
	b := atlas.Image.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if covered.AlphaAt(x, y).A == 0 {
				assert.Equal(color.NRGBA{}, atlas.Image.NRGBAAt(x, y), "pixel (%d,%d)", x, y)
			}
		}
	}
}

func TestCompose_NoOverlap(t *testing.T) {
	assert := assert.New(t)

	tiles := testTiles(23, 4)
	plan, err := Plan(len(tiles), 4, 1)
	require.NoError(t, err)

	atlas, err := Compose(tiles, plan)
	require.NoError(t, err)

	placements := atlas.Map.Placements()
	assert.Len(placements, len(tiles))
	for i, p := range placements {
		assert.Equal(tiles[i].ID, p.ID)
		assert.True(p.Rect().In(plan.Bounds()))
		for _, q := range placements[i+1:] {
			assert.False(p.Rect().Overlaps(q.Rect()), "%s overlaps %s", p.ID, q.ID)
		}
	}
}

func TestCompose_SourceImageTypes(t *testing.T) {
	assert := assert.New(t)

	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	gray.SetGray(1, 1, color.Gray{Y: 128})

	offset := image.NewNRGBA(image.Rect(10, 10, 14, 14))
	offset.SetNRGBA(10, 10, color.NRGBA{R: 255, A: 255})

	ycc := image.NewYCbCr(image.Rect(0, 0, 4, 4), image.YCbCrSubsampleRatio444)
	for i := range ycc.Y {
		ycc.Y[i] = 255
		ycc.Cb[i] = 128
		ycc.Cr[i] = 128
	}

	tiles := []Tile{
		{ID: "gray", Image: gray},
		{ID: "offset", Image: offset},
		{ID: "ycbcr", Image: ycc},
	}
	plan, err := Plan(len(tiles), 4, 1)
	require.NoError(t, err)

	atlas, err := Compose(tiles, plan)
	require.NoError(t, err)

	p, _ := atlas.Map.Lookup("gray")
	assert.Equal(color.NRGBA{R: 128, G: 128, B: 128, A: 255}, atlas.Image.NRGBAAt(p.X+1, p.Y+1))
	assert.Equal(color.NRGBA{A: 255}, atlas.Image.NRGBAAt(p.X, p.Y))

	p, _ = atlas.Map.Lookup("offset")
	assert.Equal(color.NRGBA{R: 255, A: 255}, atlas.Image.NRGBAAt(p.X, p.Y))
	assert.Equal(color.NRGBA{}, atlas.Image.NRGBAAt(p.X+1, p.Y))

	p, _ = atlas.Map.Lookup("ycbcr")
	assert.Equal(color.NRGBA{R: 255, G: 255, B: 255, A: 255}, atlas.Image.NRGBAAt(p.X+3, p.Y+3))
}

func TestCompose_TileSizeMismatch(t *testing.T) {
	assert := assert.New(t)

	tiles := testTiles(3, 64)
	tiles[1] = solidTile("too_small", 63, color.NRGBA{A: 255})
	plan, err := Plan(len(tiles), 64, 2)
	require.NoError(t, err)

	atlas, err := Compose(tiles, plan)
	assert.Nil(atlas)
	assert.True(errors.Is(err, ErrTileSizeMismatch))
	id, ok := TileID(err)
	assert.True(ok)
	assert.Equal("too_small", id)
	assert.Contains(err.Error(), "too_small")

	// A rectangular tile is rejected as well.
	tiles[1] = Tile{ID: "wide", Image: image.NewNRGBA(image.Rect(0, 0, 64, 32))}
	_, err = Compose(tiles, plan)
	assert.True(errors.Is(err, ErrTileSizeMismatch))
}

func TestCompose_DuplicateIdentifier(t *testing.T) {
	assert := assert.New(t)

	tiles := []Tile{
		solidTile("icon_a", 16, color.NRGBA{R: 1, A: 255}),
		solidTile("icon_b", 16, color.NRGBA{G: 1, A: 255}),
		solidTile("icon_a", 16, color.NRGBA{B: 1, A: 255}),
	}
	plan, err := Plan(len(tiles), 16, 2)
	require.NoError(t, err)

	atlas, err := Compose(tiles, plan)
	assert.Nil(atlas)
	assert.True(errors.Is(err, ErrDuplicateIdentifier))
	id, ok := TileID(err)
	assert.True(ok)
	assert.Equal("icon_a", id)
}

func TestCompose_CapacityExceeded(t *testing.T) {
	assert := assert.New(t)

	plan, err := Plan(4, 8, 1)
	require.NoError(t, err)

	atlas, err := Compose(testTiles(5, 8), plan)
	assert.Nil(atlas)
	assert.True(errors.Is(err, ErrCapacityExceeded))
	_, ok := TileID(err)
	assert.False(ok)
}

func TestCompose_InvalidArguments(t *testing.T) {
	assert := assert.New(t)

	plan, err := Plan(2, 8, 1)
	require.NoError(t, err)

	_, err = Compose([]Tile{{ID: "", Image: image.NewNRGBA(image.Rect(0, 0, 8, 8))}}, plan)
	assert.True(errors.Is(err, ErrInvalidArgument))

	_, err = Compose([]Tile{{ID: "nil_image"}}, plan)
	assert.True(errors.Is(err, ErrInvalidArgument))
	id, _ := TileID(err)
	assert.Equal("nil_image", id)

	broken := plan
	broken.AtlasHeight = 1
	_, err = Compose(testTiles(2, 8), broken)
	assert.True(errors.Is(err, ErrInvalidArgument))
}

func TestCompose_EmptyTileList(t *testing.T) {
	assert := assert.New(t)

	plan, err := Plan(1, 8, 2)
	require.NoError(t, err)

	atlas, err := Compose(nil, plan)
	assert.NoError(err)
	assert.Equal(0, atlas.Map.Len())
	assert.Equal(image.Rect(0, 0, 12, 12), atlas.Image.Bounds())
}

func TestCompose_Deterministic(t *testing.T) {
	assert := assert.New(t)

	tiles := testTiles(30, 16)
	plan, err := Plan(len(tiles), 16, 2)
	require.NoError(t, err)

	first, err := Compose(tiles, plan)
	require.NoError(t, err)
	second, err := Compose(tiles, plan)
	require.NoError(t, err)
	parallel, err := Compose(tiles, plan, WithWorkers(8))
	require.NoError(t, err)
	auto, err := Compose(tiles, plan, WithWorkers(0))
	require.NoError(t, err)

	for _, other := range []*Atlas{second, parallel, auto} {
		assert.Equal(first.Image.Pix, other.Image.Pix)
		assert.Equal(first.Map.Placements(), other.Map.Placements())
	}
}

func TestCompose_DoesNotModifyTiles(t *testing.T) {
	assert := assert.New(t)

	tiles := testTiles(2, 8)
	before := append([]uint8(nil), tiles[0].Image.(*image.NRGBA).Pix...)
	plan, err := Plan(len(tiles), 8, 1)
	require.NoError(t, err)

	atlas, err := Compose(tiles, plan)
	require.NoError(t, err)
	atlas.Image.Pix[atlas.Image.PixOffset(1, 1)] = 0

	assert.Equal(before, tiles[0].Image.(*image.NRGBA).Pix)
}
