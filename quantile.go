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
	"math"
	"sort"
)

// OnlineVariance computes a running weighted mean and population variance
// using West's incremental algorithm, avoiding the numerical instability
// of accumulating sum-of-squares directly.
type OnlineVariance struct {
	mean      float64
	m2        float64
	sumWeight float64
}

// Process folds one more (value, weight) observation into the running
// statistics. Observations with weight <= 0 are ignored.
func (v *OnlineVariance) Process(value, weight float64) {
	if weight <= 0 {
		return
	}
	v.sumWeight += weight
	delta := value - v.mean
	v.mean += delta * weight / v.sumWeight
	delta2 := value - v.mean
	v.m2 += weight * delta * delta2
}

// Mean returns the running weighted mean.
func (v *OnlineVariance) Mean() float64 {
	if v.sumWeight == 0 {
		return math.NaN()
	}
	return v.mean
}

// Variance returns the population variance of the observations seen so far.
func (v *OnlineVariance) Variance() float64 {
	if v.sumWeight == 0 {
		return math.NaN()
	}
	return v.m2 / v.sumWeight
}

// Stdev returns the population standard deviation.
func (v *OnlineVariance) Stdev() float64 { return math.Sqrt(v.Variance()) }

// CoefficientOfVariation returns Stdev()/Mean().
func (v *OnlineVariance) CoefficientOfVariation() float64 { return v.Stdev() / v.Mean() }

type quantileEntry struct {
	value, weight float64
}

// WeightedQuantiles computes quantiles of a weighted empirical
// distribution by linear interpolation over the weighted CDF. Entries
// are accumulated unsorted via Process and sorted lazily on first Quantile
// call.
type WeightedQuantiles struct {
	entries     []quantileEntry
	sorted      bool
	totalWeight float64
}

// Process adds one (value, weight) observation.
func (q *WeightedQuantiles) Process(value, weight float64) {
	q.entries = append(q.entries, quantileEntry{value, weight})
	q.totalWeight += weight
	q.sorted = false
}

func (q *WeightedQuantiles) ensureSorted() {
	if q.sorted {
		return
	}
	sort.Slice(q.entries, func(i, j int) bool { return q.entries[i].value < q.entries[j].value })
	q.sorted = true
}

// Quantile returns the q-th quantile (0 <= q <= 1) of the weighted
// distribution, linearly interpolating between the values bracketing the
// target cumulative weight.
func (q *WeightedQuantiles) Quantile(quant float64) (float64, bool) {
	if len(q.entries) == 0 {
		return 0, false
	}
	q.ensureSorted()

	target := quant * q.totalWeight
	cum := 0.0
	for i, e := range q.entries {
		prevCum := cum
		cum += e.weight
		if cum >= target {
			if i == 0 || e.weight == 0 {
				return e.value, true
			}
			frac := (target - prevCum) / e.weight
			prev := q.entries[i-1].value
			return prev + frac*(e.value-prev), true
		}
	}
	return q.entries[len(q.entries)-1].value, true
}
