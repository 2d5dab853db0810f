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
	"github.com/ctessum/geom"
)

// ValueType identifies the output type an Operation produces, mirroring
// the handful of column types an OutputWriter needs to support.
type ValueType int

const (
	ValueInt ValueType = iota
	ValueInt64
	ValueDouble
	ValueString
	ValueIntArray
	ValueInt64Array
	ValueDoubleArray
)

// RasterVariant is a tagged union over the four numeric raster element
// types a RasterSource may produce, replacing the original's compile-time
// template plus runtime variant with a single explicit sum type: exactly
// one field is non-nil.
type RasterVariant struct {
	Int32   *Raster[int32]
	Int64   *Raster[int64]
	Float32 *Raster[float32]
	Float64 *Raster[float64]
}

// Grid returns the grid of whichever variant is populated.
func (v RasterVariant) Grid() Grid {
	switch {
	case v.Int32 != nil:
		return v.Int32.GridVal
	case v.Int64 != nil:
		return v.Int64.GridVal
	case v.Float32 != nil:
		return v.Float32.GridVal
	case v.Float64 != nil:
		return v.Float64.GridVal
	default:
		return Grid{}
	}
}

// ValueType reports which variant is populated.
func (v RasterVariant) ValueType() ValueType {
	switch {
	case v.Int32 != nil:
		return ValueInt
	case v.Int64 != nil:
		return ValueInt64
	case v.Float32 != nil:
		return ValueDouble
	default:
		return ValueDouble
	}
}

// GetFloat64 returns the value at (row, col) converted to float64,
// regardless of which variant is populated.
func (v RasterVariant) GetFloat64(row, col int) float64 {
	switch {
	case v.Int32 != nil:
		return v.Int32.GetFloat64(row, col)
	case v.Int64 != nil:
		return v.Int64.GetFloat64(row, col)
	case v.Float32 != nil:
		return v.Float32.GetFloat64(row, col)
	case v.Float64 != nil:
		return v.Float64.GetFloat64(row, col)
	default:
		return 0
	}
}

// IsNodata reports whether the cell at (row, col) is no-data in whichever
// variant is populated.
func (v RasterVariant) IsNodata(row, col int) bool {
	switch {
	case v.Int32 != nil:
		return v.Int32.IsNodata(row, col)
	case v.Int64 != nil:
		return v.Int64.IsNodata(row, col)
	case v.Float32 != nil:
		return v.Float32.IsNodata(row, col)
	case v.Float64 != nil:
		return v.Float64.IsNodata(row, col)
	default:
		return true
	}
}

// Crop returns the portion of v covering box, reindexed through a
// RasterView so fractional-cell overlaps at the box edge are resolved by
// Grid.Crop's own rules rather than by cropping the backing slice.
func (v RasterVariant) Crop(box Box) RasterVariant {
	switch {
	case v.Int32 != nil:
		return RasterVariant{Int32: cropRaster(v.Int32, box)}
	case v.Int64 != nil:
		return RasterVariant{Int64: cropRaster(v.Int64, box)}
	case v.Float32 != nil:
		return RasterVariant{Float32: cropRaster(v.Float32, box)}
	case v.Float64 != nil:
		return RasterVariant{Float64: cropRaster(v.Float64, box)}
	default:
		return RasterVariant{}
	}
}

func cropRaster[T Numeric](r *Raster[T], box Box) *Raster[T] {
	g := r.GridVal.Crop(box)
	view := NewRasterView[T](r, g)
	out := NewRaster[T](g)
	if r.HasNodata {
		out.SetNodata(r.Nodata)
	}
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			out.Set(i, j, view.Get(i, j))
		}
	}
	return out
}

// RasterSource supplies raster values over a region of a Grid, without
// committing callers to a particular element type or backing store (file,
// in-memory array, remote tile server, …).
type RasterSource interface {
	Grid() Grid
	ReadBox(b Box) (RasterVariant, error)
	ThreadSafe() bool
	Name() string
	SetName(string)
	// EmptyVariant returns a zero-sized RasterVariant of the source's
	// element type, letting a caller learn that type without performing a
	// real tile read.
	EmptyVariant() RasterVariant
}

// Feature is a single input record: a geometry plus a bag of named
// attribute fields that operation results are written into.
type Feature interface {
	FieldType(name string) (ValueType, bool)
	SetString(name, value string)
	SetDouble(name string, value float64)
	SetInt(name string, value int32)
	SetInt64(name string, value int64)
	SetDoubleArray(name string, value []float64)
	SetIntArray(name string, value []int32)
	SetInt64Array(name string, value []int64)
	GetString(name string) string
	GetDouble(name string) float64
	Geometry() geom.Geom
	SetGeometry(geom.Geom)
	CopyTo(dst Feature)
}

// FeatureSource iterates a sequence of features, e.g. read from a vector
// file or held in memory.
type FeatureSource interface {
	Next() bool
	Feature() Feature
	// Count reports an up-front feature count when known (e.g. from a
	// file format with a header), and false when the source must be
	// fully consumed to know the total.
	Count() (int, bool)
}

// OutputWriter receives completed features, one Operation result field at
// a time, and persists them.
type OutputWriter interface {
	AddOperation(op *Operation)
	CreateFeature() Feature
	Write(f Feature) error
	Finish() error
}

// MemoryRasterSource is an in-memory RasterSource over a single
// RasterVariant, used by tests and by internal/remoteworker.
type MemoryRasterSource struct {
	GridVal  Grid
	Data     RasterVariant
	SrcName  string
	Parallel bool
}

// Grid returns the source's grid.
func (m *MemoryRasterSource) Grid() Grid { return m.GridVal }

// ReadBox returns the portion of the in-memory raster covering b.
func (m *MemoryRasterSource) ReadBox(b Box) (RasterVariant, error) {
	return m.Data.Crop(b), nil
}

// ThreadSafe reports m.Parallel, letting the caller choose whether
// processors may issue concurrent ReadBox calls on this source.
func (m *MemoryRasterSource) ThreadSafe() bool { return m.Parallel }

// Name returns the source's name.
func (m *MemoryRasterSource) Name() string { return m.SrcName }

// SetName sets the source's name.
func (m *MemoryRasterSource) SetName(name string) { m.SrcName = name }

// EmptyVariant returns m.Data itself: an in-memory source has no
// cheaper way to report its element type.
func (m *MemoryRasterSource) EmptyVariant() RasterVariant { return m.Data }

// MemoryFeature is an in-memory Feature backed by simple Go maps, used by
// tests and MemoryFeatureSource.
type MemoryFeature struct {
	Geom       geom.Geom
	Strings    map[string]string
	Doubles    map[string]float64
	Ints       map[string]int32
	Int64s     map[string]int64
	DoubleArrs map[string][]float64
	IntArrs    map[string][]int32
	Int64Arrs  map[string][]int64
}

// NewMemoryFeature returns an empty MemoryFeature with g as its geometry.
func NewMemoryFeature(g geom.Geom) *MemoryFeature {
	return &MemoryFeature{
		Geom:       g,
		Strings:    map[string]string{},
		Doubles:    map[string]float64{},
		Ints:       map[string]int32{},
		Int64s:     map[string]int64{},
		DoubleArrs: map[string][]float64{},
		IntArrs:    map[string][]int32{},
		Int64Arrs:  map[string][]int64{},
	}
}

// FieldType reports the type of a previously set field, if any.
func (f *MemoryFeature) FieldType(name string) (ValueType, bool) {
	if _, ok := f.Strings[name]; ok {
		return ValueString, true
	}
	if _, ok := f.Doubles[name]; ok {
		return ValueDouble, true
	}
	if _, ok := f.Ints[name]; ok {
		return ValueInt, true
	}
	if _, ok := f.Int64s[name]; ok {
		return ValueInt64, true
	}
	if _, ok := f.DoubleArrs[name]; ok {
		return ValueDoubleArray, true
	}
	if _, ok := f.IntArrs[name]; ok {
		return ValueIntArray, true
	}
	if _, ok := f.Int64Arrs[name]; ok {
		return ValueInt64Array, true
	}
	return 0, false
}

func (f *MemoryFeature) SetString(name, value string)         { f.Strings[name] = value }
func (f *MemoryFeature) SetDouble(name string, value float64) { f.Doubles[name] = value }
func (f *MemoryFeature) SetInt(name string, value int32)      { f.Ints[name] = value }
func (f *MemoryFeature) SetInt64(name string, value int64)    { f.Int64s[name] = value }
func (f *MemoryFeature) SetDoubleArray(name string, value []float64) {
	f.DoubleArrs[name] = value
}
func (f *MemoryFeature) SetIntArray(name string, value []int32)     { f.IntArrs[name] = value }
func (f *MemoryFeature) SetInt64Array(name string, value []int64)   { f.Int64Arrs[name] = value }
func (f *MemoryFeature) GetString(name string) string                { return f.Strings[name] }
func (f *MemoryFeature) GetDouble(name string) float64                { return f.Doubles[name] }
func (f *MemoryFeature) Geometry() geom.Geom                          { return f.Geom }
func (f *MemoryFeature) SetGeometry(g geom.Geom)                      { f.Geom = g }

// CopyTo copies every field into dst, the in-memory analogue of the
// original's feature.h field-by-field copy used to carry included
// columns through to an output feature.
func (f *MemoryFeature) CopyTo(dst Feature) {
	for k, v := range f.Strings {
		dst.SetString(k, v)
	}
	for k, v := range f.Doubles {
		dst.SetDouble(k, v)
	}
	for k, v := range f.Ints {
		dst.SetInt(k, v)
	}
	for k, v := range f.Int64s {
		dst.SetInt64(k, v)
	}
	for k, v := range f.DoubleArrs {
		dst.SetDoubleArray(k, v)
	}
	for k, v := range f.IntArrs {
		dst.SetIntArray(k, v)
	}
	for k, v := range f.Int64Arrs {
		dst.SetInt64Array(k, v)
	}
}

// MemoryFeatureSource iterates a fixed, in-memory slice of features.
type MemoryFeatureSource struct {
	Features []Feature
	index    int
}

// NewMemoryFeatureSource wraps features as a FeatureSource.
func NewMemoryFeatureSource(features []Feature) *MemoryFeatureSource {
	return &MemoryFeatureSource{Features: features, index: -1}
}

// Next advances to the next feature, returning false once exhausted.
func (m *MemoryFeatureSource) Next() bool {
	m.index++
	return m.index < len(m.Features)
}

// Feature returns the current feature.
func (m *MemoryFeatureSource) Feature() Feature { return m.Features[m.index] }

// Count reports the fixed, up-front feature count.
func (m *MemoryFeatureSource) Count() (int, bool) { return len(m.Features), true }

// MemoryOutputWriter accumulates written features in memory, used by
// tests in place of a real file-backed writer.
type MemoryOutputWriter struct {
	Operations []*Operation
	Features   []Feature
}

// AddOperation registers op so its result column appears in output.
func (w *MemoryOutputWriter) AddOperation(op *Operation) { w.Operations = append(w.Operations, op) }

// CreateFeature returns a new, empty MemoryFeature.
func (w *MemoryOutputWriter) CreateFeature() Feature { return NewMemoryFeature(nil) }

// Write appends f to the writer's in-memory feature list.
func (w *MemoryOutputWriter) Write(f Feature) error {
	w.Features = append(w.Features, f)
	return nil
}

// Finish is a no-op for an in-memory writer.
func (w *MemoryOutputWriter) Finish() error { return nil }
