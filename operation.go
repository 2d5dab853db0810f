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
	"math"
	"sort"
)

// statsView is a type-erased accessor over a RasterStats[T], the Go
// replacement for the original's CRTP-dispatched OperationImpl<T>: each
// Operation holds one statsView built for whichever numeric type its
// values raster turned out to be, and every stat case in SetResult reads
// through this single interface regardless of T.
type statsView interface {
	Count() float64
	Sum() float64
	Mean() (float64, bool)
	WeightedCount() float64
	WeightedSum() float64
	WeightedMean() (float64, bool)
	WeightedFraction() (float64, bool)
	Variance() (float64, bool)
	WeightedVariance() (float64, bool)
	Stdev() (float64, bool)
	WeightedStdev() (float64, bool)
	CoefficientOfVariation() (float64, bool)
	Variety() int
	Min() (float64, bool)
	Max() (float64, bool)
	MinXY() (float64, float64, bool)
	MaxXY() (float64, float64, bool)
	Mode() (float64, bool)
	Minority() (float64, bool)
	FracValue(value float64) (float64, bool)
	WeightedFracValue(value float64) (float64, bool)
	Quantile(q float64) (float64, bool)
	UniqueValues() []float64
	Values() []float64
	Weights() []float64
	CoverageFractions() []float64
	CenterX() []float64
	CenterY() []float64
	CellID() []int64
}

// statsViewFor adapts a *RasterStats[T] to the statsView interface,
// converting the value-typed accessors (Min/Max/Mode/Minority/Values) to
// float64 at the boundary.
type statsViewFor[T Numeric] struct{ s *RasterStats[T] }

func (w statsViewFor[T]) Count() float64                             { return w.s.Count() }
func (w statsViewFor[T]) Sum() float64                                { return w.s.Sum() }
func (w statsViewFor[T]) Mean() (float64, bool)                       { return w.s.Mean() }
func (w statsViewFor[T]) WeightedCount() float64                      { return w.s.WeightedCount() }
func (w statsViewFor[T]) WeightedSum() float64                        { return w.s.WeightedSum() }
func (w statsViewFor[T]) WeightedMean() (float64, bool)               { return w.s.WeightedMean() }
func (w statsViewFor[T]) WeightedFraction() (float64, bool)           { return w.s.WeightedFraction() }
func (w statsViewFor[T]) Variance() (float64, bool)                   { return w.s.Variance() }
func (w statsViewFor[T]) WeightedVariance() (float64, bool)           { return w.s.WeightedVariance() }
func (w statsViewFor[T]) Stdev() (float64, bool)                      { return w.s.Stdev() }
func (w statsViewFor[T]) WeightedStdev() (float64, bool)              { return w.s.WeightedStdev() }
func (w statsViewFor[T]) CoefficientOfVariation() (float64, bool)     { return w.s.CoefficientOfVariation() }
func (w statsViewFor[T]) Variety() int                                { return w.s.Variety() }

func (w statsViewFor[T]) Min() (float64, bool) {
	v, ok := w.s.Min()
	return float64(v), ok
}

func (w statsViewFor[T]) Max() (float64, bool) {
	v, ok := w.s.Max()
	return float64(v), ok
}

func (w statsViewFor[T]) MinXY() (float64, float64, bool) { return w.s.MinXY() }
func (w statsViewFor[T]) MaxXY() (float64, float64, bool) { return w.s.MaxXY() }

func (w statsViewFor[T]) Mode() (float64, bool) {
	v, ok := w.s.Mode()
	return float64(v), ok
}

func (w statsViewFor[T]) Minority() (float64, bool) {
	v, ok := w.s.Minority()
	return float64(v), ok
}

func (w statsViewFor[T]) FracValue(value float64) (float64, bool) {
	return w.s.FracValue(T(value))
}

func (w statsViewFor[T]) WeightedFracValue(value float64) (float64, bool) {
	return w.s.WeightedFracValue(T(value))
}

func (w statsViewFor[T]) Quantile(q float64) (float64, bool) { return w.s.Quantile(q) }

func (w statsViewFor[T]) UniqueValues() []float64 {
	var out []float64
	w.s.EachDistinctValue(func(v T) { out = append(out, float64(v)) })
	sort.Float64s(out)
	return out
}

func (w statsViewFor[T]) Values() []float64 {
	raw := w.s.Values()
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out
}

func (w statsViewFor[T]) Weights() []float64           { return w.s.Weights() }
func (w statsViewFor[T]) CoverageFractions() []float64 { return w.s.CoverageFractions() }
func (w statsViewFor[T]) CenterX() []float64           { return w.s.CenterX() }
func (w statsViewFor[T]) CenterY() []float64           { return w.s.CenterY() }
func (w statsViewFor[T]) CellID() []int64              { return w.s.CellID() }

// needsHistogram, needsVariance, and needsXY report which RasterStats
// flags a given stat name requires, letting Operation build an
// accumulator with exactly the storage its bound stat needs rather than
// the union of everything every stat might ever need (the
// StatsRegistry.Prepare behavior of spec.md §11).
func needsHistogram(stat string) bool {
	switch stat {
	case "mode", "majority", "minority", "variety", "frac", "weighted_frac", "quantile", "median", "unique":
		return true
	default:
		return false
	}
}

func needsVariance(stat string) bool {
	switch stat {
	case "variance", "stdev", "coefficient_of_variation", "weighted_variance", "weighted_stdev":
		return true
	default:
		return false
	}
}

func needsXY(stat string) bool {
	switch stat {
	case "min_center_x", "min_center_y", "max_center_x", "max_center_y":
		return true
	default:
		return false
	}
}

// Operation binds a named statistic to a values raster and an optional
// weighting raster, ready to be computed once per feature and written
// into an output Feature under Name.
type Operation struct {
	Name    string
	Stat    string
	Values  RasterSource
	Weights RasterSource

	MinCoverageFraction float64
	WeightType          CoverageWeightType
	DefaultWeight       float64
	DefaultValue        *float64
	Q                    float64 // quantile argument, for Stat == "quantile"
	TargetValue          float64 // value argument, for Stat == "frac"/"weighted_frac"
}

// Grid returns the common grid of the operation's values (and weights,
// if present) rasters.
func (op *Operation) Grid() Grid {
	if op.Weights == nil {
		return op.Values.Grid()
	}
	g, err := CommonGrid(op.Values.Grid(), op.Weights.Grid(), 1e-9)
	if err != nil {
		return op.Values.Grid()
	}
	return g
}

// Intersects reports whether the operation's grid overlaps box.
func (op *Operation) Intersects(box Box) bool {
	return op.Grid().Extent.Intersects(box)
}

// Key returns the string used to share a single coverage/stats pass
// across multiple operations that read the same values+weights pair,
// mirroring the original's de-duplication of repeated raster reads.
func (op *Operation) Key() string {
	weightsName := ""
	if op.Weights != nil {
		weightsName = op.Weights.Name()
	}
	return op.Values.Name() + "|" + weightsName
}

// ResultType reports the output column type Stat produces.
func (op *Operation) ResultType() ValueType {
	switch op.Stat {
	case "values", "weights", "coverage", "center_x", "center_y", "unique":
		return ValueDoubleArray
	case "cell_id":
		return ValueInt64Array
	case "variety":
		return ValueInt
	default:
		return ValueDouble
	}
}

// Compute builds a RasterStats accumulator over coverage for whichever
// numeric type values holds, processes it (optionally weighted), and
// returns a type-erased view of the result.
func (op *Operation) Compute(coverage *Raster[float64], values, weights RasterVariant) (statsView, error) {
	switch {
	case values.Int32 != nil:
		return runOperation(op, coverage, values.Int32, weights)
	case values.Int64 != nil:
		return runOperation(op, coverage, values.Int64, weights)
	case values.Float32 != nil:
		return runOperation(op, coverage, values.Float32, weights)
	case values.Float64 != nil:
		return runOperation(op, coverage, values.Float64, weights)
	default:
		return nil, fmt.Errorf("exactextract: Operation.Compute: values raster has no populated variant")
	}
}

func runOperation[T Numeric](op *Operation, coverage *Raster[float64], values *Raster[T], weights RasterVariant) (statsView, error) {
	stats := NewRasterStats[T](rasterStatsOptions[T](op))
	if op.Weights != nil {
		ProcessWeighted[T, float64](stats, coverage, values, toFloat64Raster(weights))
	} else {
		stats.Process(coverage, values)
	}
	return statsViewFor[T]{stats}, nil
}

// rasterStatsOptions builds the RasterStatsOptions[T] that op.Stat needs,
// shared by the single-shot Compute path and the multi-subgrid
// accumulator path below.
func rasterStatsOptions[T Numeric](op *Operation) RasterStatsOptions[T] {
	opts := RasterStatsOptions[T]{
		MinCoverageFraction:   op.MinCoverageFraction,
		CalcVariance:          needsVariance(op.Stat),
		StoreHistogram:        needsHistogram(op.Stat),
		StoreValues:           op.Stat == "values",
		StoreWeights:          op.Stat == "weights",
		StoreCoverageFraction: op.Stat == "coverage",
		StoreXY:               needsXY(op.Stat) || op.Stat == "center_x" || op.Stat == "center_y" || op.Stat == "cell_id",
		WeightType:            op.WeightType,
		DefaultWeight:         op.DefaultWeight,
	}
	if op.DefaultValue != nil {
		dv := T(*op.DefaultValue)
		opts.DefaultValue = &dv
	}
	return opts
}

// operationAccumulator incrementally folds one or more raster subgrids
// belonging to the same feature into a single statsView, mirroring the
// original's StatsRegistry holding one Stats<T> per (feature, operation)
// across a feature's subdivided grid tiles.
type operationAccumulator interface {
	add(coverage *Raster[float64], values, weights RasterVariant) error
	view() statsView
}

type rasterStatsAccumulator[T Numeric] struct {
	op      *Operation
	stats   *RasterStats[T]
	extract func(RasterVariant) (*Raster[T], bool)
}

func (a *rasterStatsAccumulator[T]) add(coverage *Raster[float64], values, weights RasterVariant) error {
	typed, ok := a.extract(values)
	if !ok {
		return fmt.Errorf("exactextract: operation accumulator: values raster changed element type across subgrids")
	}
	if a.op.Weights != nil {
		ProcessWeighted[T, float64](a.stats, coverage, typed, toFloat64Raster(weights))
	} else {
		a.stats.Process(coverage, typed)
	}
	return nil
}

func (a *rasterStatsAccumulator[T]) view() statsView { return statsViewFor[T]{a.stats} }

// NewAccumulator returns an operationAccumulator sized for op.Stat and
// bound to whichever numeric type values holds, ready to absorb one or
// more add() calls (one per subgrid tile) before view() is read.
func (op *Operation) NewAccumulator(values RasterVariant) (operationAccumulator, error) {
	switch {
	case values.Int32 != nil:
		return &rasterStatsAccumulator[int32]{
			op:      op,
			stats:   NewRasterStats[int32](rasterStatsOptions[int32](op)),
			extract: func(v RasterVariant) (*Raster[int32], bool) { return v.Int32, v.Int32 != nil },
		}, nil
	case values.Int64 != nil:
		return &rasterStatsAccumulator[int64]{
			op:      op,
			stats:   NewRasterStats[int64](rasterStatsOptions[int64](op)),
			extract: func(v RasterVariant) (*Raster[int64], bool) { return v.Int64, v.Int64 != nil },
		}, nil
	case values.Float32 != nil:
		return &rasterStatsAccumulator[float32]{
			op:      op,
			stats:   NewRasterStats[float32](rasterStatsOptions[float32](op)),
			extract: func(v RasterVariant) (*Raster[float32], bool) { return v.Float32, v.Float32 != nil },
		}, nil
	case values.Float64 != nil:
		return &rasterStatsAccumulator[float64]{
			op:      op,
			stats:   NewRasterStats[float64](rasterStatsOptions[float64](op)),
			extract: func(v RasterVariant) (*Raster[float64], bool) { return v.Float64, v.Float64 != nil },
		}, nil
	default:
		return nil, fmt.Errorf("exactextract: Operation.NewAccumulator: values raster has no populated variant")
	}
}

func toFloat64Raster(v RasterVariant) *Raster[float64] {
	if v.Float64 != nil {
		return v.Float64
	}
	g := v.Grid()
	const sentinel = math.MaxFloat64
	out := NewRaster[float64](g)
	out.SetNodata(sentinel)
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			if v.IsNodata(i, j) {
				out.Set(i, j, sentinel)
			} else {
				out.Set(i, j, v.GetFloat64(i, j))
			}
		}
	}
	return out
}

// SetResult writes the computed stat into featureOut under op.Name.
func (op *Operation) SetResult(view statsView, featureOut Feature) error {
	switch op.Stat {
	case "centre_x":
		b := op.Grid().Extent
		featureOut.SetDouble(op.Name, (b.Xmin+b.Xmax)/2)
	case "centre_y":
		b := op.Grid().Extent
		featureOut.SetDouble(op.Name, (b.Ymin+b.Ymax)/2)
	case "count":
		featureOut.SetDouble(op.Name, view.Count())
	case "sum":
		featureOut.SetDouble(op.Name, view.Sum())
	case "mean":
		v, _ := view.Mean()
		featureOut.SetDouble(op.Name, v)
	case "weighted_count":
		featureOut.SetDouble(op.Name, view.WeightedCount())
	case "weighted_sum":
		featureOut.SetDouble(op.Name, view.WeightedSum())
	case "weighted_mean":
		v, _ := view.WeightedMean()
		featureOut.SetDouble(op.Name, v)
	case "weighted_frac":
		v, _ := view.WeightedFracValue(op.TargetValue)
		featureOut.SetDouble(op.Name, v)
	case "variance":
		v, _ := view.Variance()
		featureOut.SetDouble(op.Name, v)
	case "weighted_variance":
		v, _ := view.WeightedVariance()
		featureOut.SetDouble(op.Name, v)
	case "stdev":
		v, _ := view.Stdev()
		featureOut.SetDouble(op.Name, v)
	case "weighted_stdev":
		v, _ := view.WeightedStdev()
		featureOut.SetDouble(op.Name, v)
	case "coefficient_of_variation":
		v, _ := view.CoefficientOfVariation()
		featureOut.SetDouble(op.Name, v)
	case "min":
		v, _ := view.Min()
		featureOut.SetDouble(op.Name, v)
	case "max":
		v, _ := view.Max()
		featureOut.SetDouble(op.Name, v)
	case "min_center_x":
		x, _, _ := view.MinXY()
		featureOut.SetDouble(op.Name, x)
	case "min_center_y":
		_, y, _ := view.MinXY()
		featureOut.SetDouble(op.Name, y)
	case "max_center_x":
		x, _, _ := view.MaxXY()
		featureOut.SetDouble(op.Name, x)
	case "max_center_y":
		_, y, _ := view.MaxXY()
		featureOut.SetDouble(op.Name, y)
	case "mode", "majority":
		v, _ := view.Mode()
		featureOut.SetDouble(op.Name, v)
	case "minority":
		v, _ := view.Minority()
		featureOut.SetDouble(op.Name, v)
	case "variety":
		featureOut.SetInt(op.Name, int32(view.Variety()))
	case "frac":
		v, _ := view.FracValue(op.TargetValue)
		featureOut.SetDouble(op.Name, v)
	case "quantile", "median":
		q := op.Q
		if op.Stat == "median" {
			q = 0.5
		}
		v, _ := view.Quantile(q)
		featureOut.SetDouble(op.Name, v)
	case "unique":
		featureOut.SetDoubleArray(op.Name, view.UniqueValues())
	case "values":
		featureOut.SetDoubleArray(op.Name, view.Values())
	case "weights":
		featureOut.SetDoubleArray(op.Name, view.Weights())
	case "coverage":
		featureOut.SetDoubleArray(op.Name, view.CoverageFractions())
	case "center_x":
		featureOut.SetDoubleArray(op.Name, view.CenterX())
	case "center_y":
		featureOut.SetDoubleArray(op.Name, view.CenterY())
	case "cell_id":
		featureOut.SetInt64Array(op.Name, view.CellID())
	default:
		return fmt.Errorf("exactextract: Operation.SetResult: unrecognized stat %q", op.Stat)
	}
	return nil
}
