package sdfatlas

import (
	"image"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPlan_SquareGrid(t *testing.T) {
	assert := assert.New(t)

	for n := 1; n <= 2000; n++ {
		plan, err := Plan(n, 16, 1)
		assert.NoError(err)

		side := plan.Columns
		assert.Equal(plan.Columns, plan.Rows)
		assert.GreaterOrEqual(side*side, n, "grid too small for %d tiles", n)
		assert.Less((side-1)*(side-1), n, "grid not minimal for %d tiles", n)
		assert.Equal(int(math.Ceil(math.Sqrt(float64(n)))), side)
		assert.Equal(side*16+(side+1)*1, plan.AtlasWidth)
		assert.Equal(plan.AtlasWidth, plan.AtlasHeight)
	}
}

func TestPlan_Layouts(t *testing.T) {
	assert := assert.New(t)

	plan, err := Plan(4, 64, 2)
	assert.NoError(err)
	assert.Equal(GridPlan{Columns: 2, Rows: 2, CellSize: 64, Padding: 2, AtlasWidth: 134, AtlasHeight: 134}, plan)
	assert.Equal(image.Pt(2, 2), plan.Cell(0).Min)
	assert.Equal(image.Pt(68, 2), plan.Cell(1).Min)
	assert.Equal(image.Pt(2, 68), plan.Cell(2).Min)
	assert.Equal(image.Pt(68, 68), plan.Cell(3).Min)

	plan, err = Plan(5, 64, 0)
	assert.NoError(err)
	assert.Equal(3, plan.Columns)
	assert.Equal(192, plan.AtlasWidth)
	assert.Equal(image.Rect(64, 64, 128, 128), plan.Cell(4))
	assert.Equal(9, plan.Capacity())

	plan, err = Plan(1, 32, 2)
	assert.NoError(err)
	assert.Equal(36, plan.AtlasWidth)
	assert.Equal(36, plan.AtlasHeight)
	assert.Equal(image.Rect(2, 2, 34, 34), plan.Cell(0))
	assert.Equal(image.Rect(0, 0, 36, 36), plan.Bounds())
}

func TestPlan_CellsInsideAtlas(t *testing.T) {
	assert := assert.New(t)

	plan, err := Plan(10, 8, 3)
	assert.NoError(err)
	for i := 0; i < plan.Capacity(); i++ {
		cell := plan.Cell(i)
		assert.True(cell.In(plan.Bounds()))
		assert.GreaterOrEqual(cell.Min.X, plan.Padding)
		assert.LessOrEqual(cell.Max.X, plan.AtlasWidth-plan.Padding)
		for j := i + 1; j < plan.Capacity(); j++ {
			assert.False(cell.Overlaps(plan.Cell(j)), "cells %d and %d overlap", i, j)
		}
	}
}

func TestPlan_InvalidArguments(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		n, size, padding int
	}{
		{0, 64, 2},
		{-3, 64, 2},
		{4, 0, 2},
		{4, -1, 2},
		{4, 64, -1},
		{4, MaxAtlasSide + 1, 0},
		{10000, 1024, 0},
	}
	for _, c := range cases {
		_, err := Plan(c.n, c.size, c.padding)
		assert.Error(err)
		assert.True(errors.Is(err, ErrInvalidArgument), "n=%d size=%d padding=%d: %v", c.n, c.size, c.padding, err)
	}
}

func TestOptions_Plan(t *testing.T) {
	assert := assert.New(t)

	opts := DefaultOptions()
	assert.Equal(DefaultTileSize, opts.TileSize)
	assert.Equal(DefaultPadding, opts.Padding)

	plan, err := opts.Plan(4)
	assert.NoError(err)
	assert.Equal(134, plan.AtlasWidth)
}

func TestGridPlan_Validate(t *testing.T) {
	assert := assert.New(t)

	plan, err := Plan(7, 10, 1)
	assert.NoError(err)
	assert.NoError(plan.validate())

	broken := plan
	broken.AtlasWidth++
	assert.True(errors.Is(broken.validate(), ErrInvalidArgument))

	broken = plan
	broken.Columns = 0
	assert.True(errors.Is(broken.validate(), ErrInvalidArgument))

	assert.Error(GridPlan{}.validate())
}
