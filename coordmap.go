package sdfatlas

import (
	"encoding/json"
	"image"
	"io"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Placement is the pixel rectangle a tile occupies in the atlas.
type Placement struct {
	ID     string
	X, Y   int
	Width  int
	Height int
}

// Rect returns the placement as an image.Rectangle.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// UV returns the normalized texture coordinates [u0, v0, u1, v1] of the placement
// inside an atlas of the given size.
func (p Placement) UV(atlasWidth, atlasHeight int) [4]float64 {
	w, h := float64(atlasWidth), float64(atlasHeight)
	return [4]float64{
		float64(p.X) / w,
		float64(p.Y) / h,
		float64(p.X+p.Width) / w,
		float64(p.Y+p.Height) / h,
	}
}

// CoordinateMap associates every packed tile with its placement.
// Placements keep the order in which the tiles were composed.
type CoordinateMap struct {
	plan       GridPlan
	placements []Placement
	index      map[string]int
}

func newCoordinateMap(plan GridPlan, size int) *CoordinateMap {
	return &CoordinateMap{
		plan:       plan,
		placements: make([]Placement, 0, size),
		index:      make(map[string]int, size),
	}
}

func (m *CoordinateMap) add(p Placement) {
	m.index[p.ID] = len(m.placements)
	m.placements = append(m.placements, p)
}

// Plan returns the grid the map was built from.
func (m *CoordinateMap) Plan() GridPlan { return m.plan }

// Len returns the number of placements.
func (m *CoordinateMap) Len() int { return len(m.placements) }

// Placements returns a copy of the placements in composition order.
func (m *CoordinateMap) Placements() []Placement {
	out := make([]Placement, len(m.placements))
	copy(out, m.placements)
	return out
}

// Lookup returns the placement of the tile with the given identifier.
func (m *CoordinateMap) Lookup(id string) (Placement, bool) {
	i, ok := m.index[id]
	if !ok {
		return Placement{}, false
	}
	return m.placements[i], true
}

// MapOptions controls the serialized form of a coordinate map.
type MapOptions struct {
	// UV adds the normalized texture coordinates of each tile.
	UV bool
}

// mapRecord is the serialized coordinate map. Icons are keyed by identifier;
// both encoders emit map keys in sorted order, which keeps the output reproducible.
type mapRecord struct {
	AtlasWidth  int                   `json:"atlas_width" toml:"atlas_width"`
	AtlasHeight int                   `json:"atlas_height" toml:"atlas_height"`
	TileSize    int                   `json:"tile_size" toml:"tile_size"`
	Padding     int                   `json:"padding" toml:"padding"`
	Columns     int                   `json:"columns" toml:"columns"`
	Rows        int                   `json:"rows" toml:"rows"`
	Icons       map[string]iconRecord `json:"icons" toml:"icons"`
}

type iconRecord struct {
	X      int       `json:"x" toml:"x"`
	Y      int       `json:"y" toml:"y"`
	Width  int       `json:"width" toml:"width"`
	Height int       `json:"height" toml:"height"`
	UV     []float64 `json:"uv,omitempty" toml:"uv,omitempty"`
}

func (m *CoordinateMap) record(opts MapOptions) mapRecord {
	rec := mapRecord{
		AtlasWidth:  m.plan.AtlasWidth,
		AtlasHeight: m.plan.AtlasHeight,
		TileSize:    m.plan.CellSize,
		Padding:     m.plan.Padding,
		Columns:     m.plan.Columns,
		Rows:        m.plan.Rows,
		Icons:       make(map[string]iconRecord, len(m.placements)),
	}
	for _, p := range m.placements {
		icon := iconRecord{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
		if opts.UV {
			uv := p.UV(m.plan.AtlasWidth, m.plan.AtlasHeight)
			icon.UV = uv[:]
		}
		rec.Icons[p.ID] = icon
	}
	return rec
}

// EncodeJSON writes the coordinate map as an indented JSON document.
func (m *CoordinateMap) EncodeJSON(w io.Writer, opts MapOptions) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m.record(opts)); err != nil {
		return errors.Wrap(err, "could not encode the coordinate map")
	}
	return nil
}

// EncodeTOML writes the coordinate map as a TOML document.
func (m *CoordinateMap) EncodeTOML(w io.Writer, opts MapOptions) error {
	if err := toml.NewEncoder(w).Encode(m.record(opts)); err != nil {
		return errors.Wrap(err, "could not encode the coordinate map")
	}
	return nil
}

// DecodeJSON reads a coordinate map written by EncodeJSON.
// The serialized form is keyed by identifier, so placements come back
// ordered by their position in the grid.
func DecodeJSON(r io.Reader) (*CoordinateMap, error) {
	var rec mapRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.Wrap(err, "could not decode the coordinate map")
	}

	plan := GridPlan{
		Columns:     rec.Columns,
		Rows:        rec.Rows,
		CellSize:    rec.TileSize,
		Padding:     rec.Padding,
		AtlasWidth:  rec.AtlasWidth,
		AtlasHeight: rec.AtlasHeight,
	}
	if err := plan.validate(); err != nil {
		return nil, err
	}

	placements := make([]Placement, 0, len(rec.Icons))
	for id, icon := range rec.Icons {
		placements = append(placements, Placement{
			ID:     id,
			X:      icon.X,
			Y:      icon.Y,
			Width:  icon.Width,
			Height: icon.Height,
		})
	}
	sort.Slice(placements, func(i, j int) bool {
		if placements[i].Y != placements[j].Y {
			return placements[i].Y < placements[j].Y
		}
		if placements[i].X != placements[j].X {
			return placements[i].X < placements[j].X
		}
		return placements[i].ID < placements[j].ID
	})

	m := newCoordinateMap(plan, len(placements))
	for _, p := range placements {
		if !p.Rect().In(plan.Bounds()) {
			return nil, tileErr(p.ID, ErrInvalidArgument, "placement %v lies outside the atlas", p.Rect())
		}
		m.add(p)
	}
	return m, nil
}
