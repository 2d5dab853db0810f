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

import "math"

// CoverageWeightType selects how a cell's raw coverage fraction is turned
// into the weight used when accumulating statistics: as-is, discarded
// entirely (binary in/out), or multiplied by the cell's area under one of
// a few area models.
type CoverageWeightType int

const (
	WeightFraction CoverageWeightType = iota
	WeightNone
	WeightAreaCartesian
	WeightAreaSphericalM2
	WeightAreaSphericalKM2
)

// DefaultMinCoverageFraction is the coverage-fraction threshold applied
// when a RasterStatsOptions/Operation/Config leaves MinCoverageFraction
// unset (the Go zero value, 0). It is the smallest positive normalized
// float32, matching the original's min_coverage_fraction_default
// (std::numeric_limits<float>::min()): it excludes only cells with
// exactly zero coverage, which otherwise pass `pctCov < MinCoverageFraction`
// and wrongly enter min/max/variety/histogram for a shrink-to-fit raster
// outside a non-rectangular polygon's exact footprint.
const DefaultMinCoverageFraction = 1.1754943508222875e-38

// RasterStatsOptions configures a RasterStats accumulator.
type RasterStatsOptions[T Numeric] struct {
	MinCoverageFraction float64
	CalcVariance        bool

	StoreHistogram        bool
	StoreValues           bool
	StoreWeights          bool
	StoreCoverageFraction bool
	StoreXY               bool

	WeightType    CoverageWeightType
	DefaultWeight float64
	DefaultValue  *T
}

// sampledRaster is satisfied by both a concrete Raster[T] and a
// RasterView[T] reindexing one onto a different grid, letting Process
// accept either without caring which.
type sampledRaster[T Numeric] interface {
	Get(row, col int) T
	IsNodata(row, col int) bool
}

// areaSource supplies a per-cell area (or area-like weight) multiplier,
// satisfied by both ConstantRaster[float64] (Cartesian) and Raster[float64]
// (spherical area tables).
type areaSource interface {
	Get(row, col int) float64
}

func coverageAreaSource(grid Grid, wt CoverageWeightType) (areaSource, bool) {
	switch wt {
	case WeightAreaCartesian:
		return ConstantRaster[float64]{GridVal: grid, Value: grid.Dx * grid.Dy}, true
	case WeightAreaSphericalM2:
		return AreaRaster(grid), true
	case WeightAreaSphericalKM2:
		m2 := AreaRaster(grid)
		km2 := NewRaster[float64](grid)
		for i := 0; i < grid.Rows; i++ {
			for j := 0; j < grid.Cols; j++ {
				km2.Set(i, j, m2.Get(i, j)*1e-6)
			}
		}
		return km2, true
	default:
		return nil, false
	}
}

// RasterStats accumulates zonal statistics over a sequence of
// (coverage fraction, value, weight) observations, one per raster cell
// intersecting a feature.
type RasterStats[T Numeric] struct {
	opts RasterStatsOptions[T]

	haveMinMax bool
	min, max   T
	minXY      [2]float64
	maxXY      [2]float64

	sumCi     float64
	sumCiwi   float64
	sumXici   float64
	sumXiciwi float64

	variance         OnlineVariance
	weightedVariance OnlineVariance

	freq      map[T]*histogramEntry
	quantiles *WeightedQuantiles

	lastX, lastY float64

	cellCoverage []float64
	cellValues   []T
	cellWeights  []float64
	cellX        []float64
	cellY        []float64
	cellID       []int64
}

// NewRasterStats returns an empty accumulator configured by opts.
func NewRasterStats[T Numeric](opts RasterStatsOptions[T]) *RasterStats[T] {
	if opts.MinCoverageFraction <= 0 {
		opts.MinCoverageFraction = DefaultMinCoverageFraction
	}
	return &RasterStats[T]{opts: opts}
}

func (s *RasterStats[T]) processLocation(grid Grid, row, col int) {
	if !s.opts.StoreXY {
		return
	}
	s.lastX = grid.XForCol(col)
	s.lastY = grid.YForRow(row)
	s.cellX = append(s.cellX, s.lastX)
	s.cellY = append(s.cellY, s.lastY)
	s.cellID = append(s.cellID, int64(row)*int64(grid.Cols)+int64(col))
}

func (s *RasterStats[T]) processValue(val T, coverage, weight float64) {
	if s.opts.StoreCoverageFraction {
		s.cellCoverage = append(s.cellCoverage, coverage)
	}
	if s.opts.StoreValues {
		s.cellValues = append(s.cellValues, val)
	}
	if s.opts.StoreWeights {
		s.cellWeights = append(s.cellWeights, weight)
	}

	fval := float64(val)
	ciwi := coverage * weight

	s.sumCi += coverage
	s.sumXici += fval * coverage
	s.sumCiwi += ciwi
	s.sumXiciwi += fval * ciwi

	if s.opts.CalcVariance {
		s.variance.Process(fval, coverage)
		s.weightedVariance.Process(fval, ciwi)
	}

	if !s.haveMinMax || val < s.min {
		s.min = val
		if s.opts.StoreXY {
			s.minXY = [2]float64{s.lastX, s.lastY}
		}
	}
	if !s.haveMinMax || val > s.max {
		s.max = val
		if s.opts.StoreXY {
			s.maxXY = [2]float64{s.lastX, s.lastY}
		}
	}
	s.haveMinMax = true

	if s.opts.StoreHistogram {
		if s.freq == nil {
			s.freq = make(map[T]*histogramEntry)
		}
		e, ok := s.freq[val]
		if !ok {
			e = &histogramEntry{}
			s.freq[val] = e
		}
		e.sumCoverage += coverage
		e.sumWeighted += ciwi
		s.quantiles = nil
	}
}

// Process consumes an unweighted observation sequence: every coverage cell
// is weighted 1, except when WeightType selects an area model, in which
// case the cell's area is used as its weight.
func (s *RasterStats[T]) Process(coverage *Raster[float64], values *Raster[T]) {
	var rv sampledRaster[T] = values
	if values.GridVal != coverage.GridVal {
		rv = NewRasterView[T](values, coverage.GridVal)
	}
	areas, hasAreas := coverageAreaSource(coverage.GridVal, s.opts.WeightType)

	grid := coverage.GridVal
	for i := 0; i < grid.Rows; i++ {
		for j := 0; j < grid.Cols; j++ {
			pctCov := coverage.Get(i, j)
			if s.opts.WeightType == WeightNone {
				pctCov = 1.0
			}
			if pctCov < s.opts.MinCoverageFraction {
				continue
			}

			val := rv.Get(i, j)
			if rv.IsNodata(i, j) {
				if s.opts.DefaultValue == nil {
					continue
				}
				val = *s.opts.DefaultValue
			}

			weight := 1.0
			if hasAreas {
				weight = areas.Get(i, j)
			}

			s.processLocation(grid, i, j)
			s.processValue(val, pctCov, weight)
		}
	}
}

// ProcessWeighted consumes an observation sequence weighted by a separate
// raster, whose element type W may differ from the value raster's T. It
// is a free function rather than a method because Go methods cannot add
// type parameters beyond the receiver's.
func ProcessWeighted[T Numeric, W Numeric](s *RasterStats[T], coverage *Raster[float64], values *Raster[T], weights *Raster[W]) {
	var rv sampledRaster[T] = values
	if values.GridVal != coverage.GridVal {
		rv = NewRasterView[T](values, coverage.GridVal)
	}
	var wv sampledRaster[W] = weights
	if weights.GridVal != coverage.GridVal {
		wv = NewRasterView[W](weights, coverage.GridVal)
	}
	areas, hasAreas := coverageAreaSource(coverage.GridVal, s.opts.WeightType)

	grid := coverage.GridVal
	for i := 0; i < grid.Rows; i++ {
		for j := 0; j < grid.Cols; j++ {
			pctCov := coverage.Get(i, j)
			if s.opts.WeightType == WeightNone {
				pctCov = 1.0
			}
			if pctCov < s.opts.MinCoverageFraction {
				continue
			}

			val := rv.Get(i, j)
			if rv.IsNodata(i, j) {
				if s.opts.DefaultValue == nil {
					continue
				}
				val = *s.opts.DefaultValue
			}

			s.processLocation(grid, i, j)

			if hasAreas {
				pctCov *= areas.Get(i, j)
			}

			weight := s.opts.DefaultWeight
			if !wv.IsNodata(i, j) {
				weight = float64(wv.Get(i, j))
			}
			s.processValue(val, pctCov, weight)
		}
	}
}

// Count returns the sum of coverage fractions across every processed cell.
func (s *RasterStats[T]) Count() float64 { return s.sumCi }

// Sum returns the coverage-weighted sum of values.
func (s *RasterStats[T]) Sum() float64 { return s.sumXici }

// Mean returns the coverage-weighted average value.
func (s *RasterStats[T]) Mean() (float64, bool) {
	if s.sumCi == 0 {
		return 0, false
	}
	return s.sumXici / s.sumCi, true
}

// WeightedCount returns the sum of coverage*weight across every processed
// cell.
func (s *RasterStats[T]) WeightedCount() float64 { return s.sumCiwi }

// WeightedSum returns the coverage*weight-weighted sum of values.
func (s *RasterStats[T]) WeightedSum() float64 { return s.sumXiciwi }

// WeightedMean returns the coverage*weight-weighted average value.
func (s *RasterStats[T]) WeightedMean() (float64, bool) {
	if s.sumCiwi == 0 {
		return 0, false
	}
	return s.sumXiciwi / s.sumCiwi, true
}

// WeightedFraction returns WeightedSum()/Sum(), the share of the
// unweighted sum contributed by weight.
func (s *RasterStats[T]) WeightedFraction() (float64, bool) {
	if s.sumXici == 0 {
		return 0, false
	}
	return s.sumXiciwi / s.sumXici, true
}

// Min returns the smallest value observed.
func (s *RasterStats[T]) Min() (T, bool) { return s.min, s.haveMinMax }

// Max returns the largest value observed.
func (s *RasterStats[T]) Max() (T, bool) { return s.max, s.haveMinMax }

// MinXY returns the location of the smallest value observed, when
// StoreXY was requested.
func (s *RasterStats[T]) MinXY() (x, y float64, ok bool) {
	if !s.haveMinMax || !s.opts.StoreXY {
		return 0, 0, false
	}
	return s.minXY[0], s.minXY[1], true
}

// MaxXY returns the location of the largest value observed, when
// StoreXY was requested.
func (s *RasterStats[T]) MaxXY() (x, y float64, ok bool) {
	if !s.haveMinMax || !s.opts.StoreXY {
		return 0, 0, false
	}
	return s.maxXY[0], s.maxXY[1], true
}

// Variance returns the unweighted population variance of observed values,
// when CalcVariance was requested.
func (s *RasterStats[T]) Variance() (float64, bool) {
	if !s.opts.CalcVariance || s.sumCi == 0 {
		return 0, false
	}
	return s.variance.Variance(), true
}

// WeightedVariance returns the coverage*weight-weighted population
// variance of observed values, when CalcVariance was requested.
func (s *RasterStats[T]) WeightedVariance() (float64, bool) {
	if !s.opts.CalcVariance || s.sumCiwi == 0 {
		return 0, false
	}
	return s.weightedVariance.Variance(), true
}

// Stdev returns the unweighted population standard deviation.
func (s *RasterStats[T]) Stdev() (float64, bool) {
	v, ok := s.Variance()
	if !ok {
		return 0, false
	}
	return math.Sqrt(v), true
}

// WeightedStdev returns the coverage*weight-weighted population standard
// deviation.
func (s *RasterStats[T]) WeightedStdev() (float64, bool) {
	v, ok := s.WeightedVariance()
	if !ok {
		return 0, false
	}
	return math.Sqrt(v), true
}

// CoefficientOfVariation returns Stdev()/Mean().
func (s *RasterStats[T]) CoefficientOfVariation() (float64, bool) {
	sd, ok := s.Stdev()
	if !ok {
		return 0, false
	}
	mean, ok := s.Mean()
	if !ok || mean == 0 {
		return 0, false
	}
	return sd / mean, true
}

// Variety returns the number of distinct values observed, when
// StoreHistogram was requested.
func (s *RasterStats[T]) Variety() int { return len(s.freq) }

// Mode returns the value with the greatest total coverage, when
// StoreHistogram was requested.
func (s *RasterStats[T]) Mode() (T, bool) {
	h := Histogram[T]{freq: s.freq}
	return h.Mode()
}

// Minority returns the value with the least total coverage, when
// StoreHistogram was requested.
func (s *RasterStats[T]) Minority() (T, bool) {
	h := Histogram[T]{freq: s.freq}
	return h.Minority()
}

// CountValue returns the total coverage fraction recorded for value, when
// StoreHistogram was requested.
func (s *RasterStats[T]) CountValue(value T) float64 {
	c, _ := (&Histogram[T]{freq: s.freq}).Count(value)
	return c
}

// FracValue returns CountValue(value)/Count().
func (s *RasterStats[T]) FracValue(value T) (float64, bool) {
	if s.sumCi == 0 {
		return 0, false
	}
	return s.CountValue(value) / s.sumCi, true
}

// WeightedCountValue returns the total coverage*weight recorded for
// value, when StoreHistogram was requested.
func (s *RasterStats[T]) WeightedCountValue(value T) float64 {
	c, _ := (&Histogram[T]{freq: s.freq}).WeightedCount(value)
	return c
}

// WeightedFracValue returns WeightedCountValue(value)/WeightedCount().
func (s *RasterStats[T]) WeightedFracValue(value T) (float64, bool) {
	if s.sumCiwi == 0 {
		return 0, false
	}
	return s.WeightedCountValue(value) / s.sumCiwi, true
}

// Quantile returns the q-th quantile (0 <= q <= 1) of the coverage-weighted
// value distribution, when StoreHistogram was requested. The underlying
// WeightedQuantiles accumulator is built lazily on first call and cached
// until the histogram next changes.
func (s *RasterStats[T]) Quantile(q float64) (float64, bool) {
	if len(s.freq) == 0 {
		return 0, false
	}
	if s.quantiles == nil {
		s.quantiles = &WeightedQuantiles{}
		for v, e := range s.freq {
			s.quantiles.Process(float64(v), e.sumCoverage)
		}
	}
	return s.quantiles.Quantile(q)
}

// Values returns every processed cell's value, in processing order, when
// StoreValues was requested.
func (s *RasterStats[T]) Values() []T { return s.cellValues }

// CoverageFractions returns every processed cell's coverage fraction, in
// processing order, when StoreCoverageFraction was requested.
func (s *RasterStats[T]) CoverageFractions() []float64 { return s.cellCoverage }

// Weights returns every processed cell's weight, in processing order,
// when StoreWeights was requested.
func (s *RasterStats[T]) Weights() []float64 { return s.cellWeights }

// CenterX returns every processed cell's center X coordinate, in
// processing order, when StoreXY was requested.
func (s *RasterStats[T]) CenterX() []float64 { return s.cellX }

// CenterY returns every processed cell's center Y coordinate, in
// processing order, when StoreXY was requested.
func (s *RasterStats[T]) CenterY() []float64 { return s.cellY }

// EachDistinctValue calls fn once per distinct value observed, when
// StoreHistogram was requested, in no particular order.
func (s *RasterStats[T]) EachDistinctValue(fn func(v T)) {
	for v := range s.freq {
		fn(v)
	}
}

// CellID returns every processed cell's flattened row*cols+col index, in
// processing order, when StoreXY was requested (cell_id shares store_xy
// rather than a dedicated flag, since both are only ever needed together
// by the per-cell "unique cell" operations of spec.md's stat catalogue).
func (s *RasterStats[T]) CellID() []int64 { return s.cellID }
