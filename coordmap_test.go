package sdfatlas

import (
	"bytes"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeTest(t *testing.T, n, size, padding int) *Atlas {
	t.Helper()
	plan, err := Plan(n, size, padding)
	require.NoError(t, err)
	atlas, err := Compose(testTiles(n, size), plan)
	require.NoError(t, err)
	return atlas
}

func TestCoordinateMap_EncodeJSON(t *testing.T) {
	atlas := composeTest(t, 3, 4, 1)

	var buf bytes.Buffer
	require.NoError(t, atlas.Map.EncodeJSON(&buf, MapOptions{}))

	want := `{
    "atlas_width": 11,
    "atlas_height": 11,
    "tile_size": 4,
    "padding": 1,
    "columns": 2,
    "rows": 2,
    "icons": {
        "icon_00": {
            "x": 1,
            "y": 1,
            "width": 4,
            "height": 4
        },
        "icon_01": {
            "x": 6,
            "y": 1,
            "width": 4,
            "height": 4
        },
        "icon_02": {
            "x": 1,
            "y": 6,
            "width": 4,
            "height": 4
        }
    }
}
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("EncodeJSON mismatch (-want +got):\n%s", diff)
	}
}

func TestCoordinateMap_EncodeJSONReproducible(t *testing.T) {
	assert := assert.New(t)

	var first, second bytes.Buffer
	assert.NoError(composeTest(t, 12, 8, 2).Map.EncodeJSON(&first, MapOptions{UV: true}))
	assert.NoError(composeTest(t, 12, 8, 2).Map.EncodeJSON(&second, MapOptions{UV: true}))
	assert.Equal(first.Bytes(), second.Bytes())
}

func TestCoordinateMap_UV(t *testing.T) {
	assert := assert.New(t)

	atlas := composeTest(t, 4, 64, 2)
	p, ok := atlas.Map.Lookup("icon_03")
	assert.True(ok)
	assert.Equal([4]float64{68.0 / 134, 68.0 / 134, 132.0 / 134, 132.0 / 134}, p.UV(134, 134))

	var buf bytes.Buffer
	assert.NoError(atlas.Map.EncodeJSON(&buf, MapOptions{UV: true}))
	assert.Contains(buf.String(), `"uv": [`)

	buf.Reset()
	assert.NoError(atlas.Map.EncodeJSON(&buf, MapOptions{}))
	assert.NotContains(buf.String(), "uv")
}

func TestCoordinateMap_EncodeTOML(t *testing.T) {
	assert := assert.New(t)

	atlas := composeTest(t, 5, 16, 2)
	var buf bytes.Buffer
	assert.NoError(atlas.Map.EncodeTOML(&buf, MapOptions{}))

	var rec mapRecord
	_, err := toml.Decode(buf.String(), &rec)
	assert.NoError(err)
	assert.Equal(atlas.Plan.AtlasWidth, rec.AtlasWidth)
	assert.Equal(3, rec.Columns)
	assert.Len(rec.Icons, 5)
	assert.Equal(iconRecord{X: 20, Y: 20, Width: 16, Height: 16}, rec.Icons["icon_04"])
}

func TestCoordinateMap_DecodeJSON(t *testing.T) {
	assert := assert.New(t)

	atlas := composeTest(t, 10, 8, 1)
	var buf bytes.Buffer
	require.NoError(t, atlas.Map.EncodeJSON(&buf, MapOptions{UV: true}))

	m, err := DecodeJSON(&buf)
	require.NoError(t, err)
	assert.Equal(atlas.Plan, m.Plan())
	// Tiles were composed in grid order, which DecodeJSON restores.
	if diff := cmp.Diff(atlas.Map.Placements(), m.Placements()); diff != "" {
		t.Errorf("DecodeJSON mismatch (-want +got):\n%s", diff)
	}
}

func TestCoordinateMap_DecodeJSONErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := DecodeJSON(strings.NewReader("{"))
	assert.Error(err)

	_, err = DecodeJSON(strings.NewReader(`{"atlas_width": 10, "atlas_height": 10, "tile_size": 4, "padding": 1, "columns": 2, "rows": 2}`))
	assert.True(errors.Is(err, ErrInvalidArgument))

	_, err = DecodeJSON(strings.NewReader(`{"atlas_width": 11, "atlas_height": 11, "tile_size": 4, "padding": 1, "columns": 2, "rows": 2,
		"icons": {"far": {"x": 9, "y": 1, "width": 4, "height": 4}}}`))
	assert.True(errors.Is(err, ErrInvalidArgument))
	id, ok := TileID(err)
	assert.True(ok)
	assert.Equal("far", id)
}

func TestCoordinateMap_Placements(t *testing.T) {
	assert := assert.New(t)

	atlas := composeTest(t, 2, 4, 0)
	placements := atlas.Map.Placements()
	placements[0].X = 100

	p, ok := atlas.Map.Lookup("icon_00")
	assert.True(ok)
	assert.Equal(0, p.X)

	_, ok = atlas.Map.Lookup("missing")
	assert.False(ok)
}
