/*
Copyright © 2013 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package exactextract

import "fmt"

// Numeric constrains the element types a Raster may hold.
type Numeric interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// AnyRaster is the type-erased view of a Raster[T] used wherever the
// engine needs to consume raster values without committing to their
// concrete numeric type, replacing a template+variant pairing with a
// single runtime interface.
type AnyRaster interface {
	Grid() Grid
	GetFloat64(row, col int) float64
	IsNodata(row, col int) bool
}

// Raster is a dense, row-major, typed grid of values. Row 0 is the
// northernmost row, matching Grid's indexing.
type Raster[T Numeric] struct {
	GridVal   Grid
	Data      []T
	HasNodata bool
	Nodata    T
}

// NewRaster allocates a zero-filled Raster over g.
func NewRaster[T Numeric](g Grid) *Raster[T] {
	return &Raster[T]{GridVal: g, Data: make([]T, g.Size())}
}

// NewRasterFromData wraps an existing row-major slice as a Raster over g.
// It panics if len(data) != g.Size(), since that indicates a programming
// error at the call site rather than recoverable bad input.
func NewRasterFromData[T Numeric](g Grid, data []T) *Raster[T] {
	if len(data) != g.Size() {
		panic(fmt.Sprintf("exactextract: NewRasterFromData: got %d values for a %dx%d grid", len(data), g.Rows, g.Cols))
	}
	return &Raster[T]{GridVal: g, Data: data}
}

// SetNodata marks value as the raster's no-data sentinel.
func (r *Raster[T]) SetNodata(value T) {
	r.HasNodata = true
	r.Nodata = value
}

// Grid returns the raster's grid.
func (r *Raster[T]) Grid() Grid { return r.GridVal }

func (r *Raster[T]) index(row, col int) int { return row*r.GridVal.Cols + col }

// Get returns the value at (row, col).
func (r *Raster[T]) Get(row, col int) T { return r.Data[r.index(row, col)] }

// Set stores value at (row, col).
func (r *Raster[T]) Set(row, col int, value T) { r.Data[r.index(row, col)] = value }

// IsNodata reports whether the value at (row, col) equals the raster's
// no-data sentinel.
func (r *Raster[T]) IsNodata(row, col int) bool {
	return r.HasNodata && r.Get(row, col) == r.Nodata
}

// GetFloat64 returns the value at (row, col) converted to float64,
// satisfying AnyRaster.
func (r *Raster[T]) GetFloat64(row, col int) float64 { return float64(r.Get(row, col)) }

// RasterView presents a Raster through a different grid, resolving each
// view cell's value by locating the covering cell in the underlying
// raster. This supports both disaggregation (the view is finer than the
// source, so several view cells share one source value) and the reverse,
// with no copy of the underlying data.
type RasterView[T Numeric] struct {
	Source   *Raster[T]
	ViewGrid Grid
}

// NewRasterView constructs a view of source reindexed onto viewGrid.
func NewRasterView[T Numeric](source *Raster[T], viewGrid Grid) *RasterView[T] {
	return &RasterView[T]{Source: source, ViewGrid: viewGrid}
}

// Grid returns the view's grid (not the underlying source's).
func (v *RasterView[T]) Grid() Grid { return v.ViewGrid }

func (v *RasterView[T]) sourceRowCol(row, col int) (int, int) {
	x := v.ViewGrid.XForCol(col)
	y := v.ViewGrid.YForRow(row)
	return v.Source.GridVal.RowForY(y), v.Source.GridVal.ColForX(x)
}

// Get returns the value of the source cell covering view cell (row, col).
func (v *RasterView[T]) Get(row, col int) T {
	sr, sc := v.sourceRowCol(row, col)
	return v.Source.Get(sr, sc)
}

// IsNodata reports whether the covering source cell is no-data.
func (v *RasterView[T]) IsNodata(row, col int) bool {
	sr, sc := v.sourceRowCol(row, col)
	return v.Source.IsNodata(sr, sc)
}

// GetFloat64 returns the covering source cell's value as a float64.
func (v *RasterView[T]) GetFloat64(row, col int) float64 {
	sr, sc := v.sourceRowCol(row, col)
	return v.Source.GetFloat64(sr, sc)
}

// ConstantRaster reports the same value for every cell of g. It is used
// as an implicit weight of 1 when an operation has no weighting raster.
type ConstantRaster[T Numeric] struct {
	GridVal Grid
	Value   T
}

// Grid returns the constant raster's grid.
func (c ConstantRaster[T]) Grid() Grid { return c.GridVal }

// Get always returns c.Value.
func (c ConstantRaster[T]) Get(row, col int) T { return c.Value }

// IsNodata always returns false: a constant raster has no no-data cells.
func (c ConstantRaster[T]) IsNodata(row, col int) bool { return false }

// GetFloat64 returns c.Value as a float64.
func (c ConstantRaster[T]) GetFloat64(row, col int) float64 { return float64(c.Value) }
