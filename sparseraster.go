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

import (
	"fmt"

	"bitbucket.org/ctessum/sparse"
)

// SparseRasterSource adapts a two-dimensional *sparse.DenseArray, the
// teacher's own gridded-variable storage (see CTMData.AddVariable in
// vargrid.go), into a RasterSource. It lets values produced by the CTM
// array pipeline feed an Operation without a separate in-memory copy
// step beyond the DenseArray itself.
type SparseRasterSource struct {
	GridVal Grid
	Data    *sparse.DenseArray
	SrcName string
	Nodata  float64
	HasNodata bool
}

// NewSparseRasterSource wraps data as a RasterSource over g. data.Shape
// must be [rows, cols], row 0 corresponding to the grid's northernmost
// row, matching how vargrid.go's CTM arrays are laid out and walked with
// Get(row, col).
func NewSparseRasterSource(g Grid, data *sparse.DenseArray, name string) (*SparseRasterSource, error) {
	if len(data.Shape) != 2 {
		return nil, fmt.Errorf("exactextract: NewSparseRasterSource: data has %d dimensions, want 2", len(data.Shape))
	}
	if data.Shape[0] != g.Rows || data.Shape[1] != g.Cols {
		return nil, fmt.Errorf("exactextract: NewSparseRasterSource: data is %dx%d, grid is %dx%d",
			data.Shape[0], data.Shape[1], g.Rows, g.Cols)
	}
	return &SparseRasterSource{GridVal: g, Data: data, SrcName: name}, nil
}

// SetNodata marks value as the source's nodata sentinel.
func (s *SparseRasterSource) SetNodata(value float64) {
	s.Nodata = value
	s.HasNodata = true
}

// Grid returns the source's grid.
func (s *SparseRasterSource) Grid() Grid { return s.GridVal }

// toRaster copies s.Data into a *Raster[float64] over s.GridVal, the
// shape the rest of the package's RasterVariant plumbing expects.
func (s *SparseRasterSource) toRaster() *Raster[float64] {
	out := NewRaster[float64](s.GridVal)
	if s.HasNodata {
		out.SetNodata(s.Nodata)
	}
	for i := 0; i < s.GridVal.Rows; i++ {
		for j := 0; j < s.GridVal.Cols; j++ {
			out.Set(i, j, s.Data.Get(i, j))
		}
	}
	return out
}

// ReadBox returns the portion of the wrapped array covering b, as a
// Float64 RasterVariant.
func (s *SparseRasterSource) ReadBox(b Box) (RasterVariant, error) {
	full := RasterVariant{Float64: s.toRaster()}
	return full.Crop(b), nil
}

// ThreadSafe reports that concurrent reads of the underlying
// *sparse.DenseArray are safe: DenseArray.Get only reads its backing
// slice, never mutates it.
func (s *SparseRasterSource) ThreadSafe() bool { return true }

// Name returns the source's name.
func (s *SparseRasterSource) Name() string { return s.SrcName }

// SetName sets the source's name.
func (s *SparseRasterSource) SetName(name string) { s.SrcName = name }

// EmptyVariant reports that this source produces float64 values,
// matching sparse.DenseArray's float64 element type.
func (s *SparseRasterSource) EmptyVariant() RasterVariant {
	return RasterVariant{Float64: NewRaster[float64](Grid{})}
}
