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
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// RasterParallelProcessor is the raster-sequential driver's concurrent
// counterpart: the same R-tree-indexed, tile-at-a-time walk, but with
// the per-tile R-tree query, raster read, and coverage/stats compute
// work spread across goroutines bounded by Tokens in-flight tiles at
// once. Because a feature's geometry can span more than one tile, each
// feature's accumulator set is guarded by its own mutex rather than
// merged from per-tile-local results after the fact.
type RasterParallelProcessor struct {
	*Processor
	Tokens int64
}

// NewRasterParallelProcessor returns a raster-parallel driver bounding
// concurrent in-flight tiles to tokens (at least 1).
func NewRasterParallelProcessor(features FeatureSource, output OutputWriter, tokens int64) *RasterParallelProcessor {
	if tokens < 1 {
		tokens = 1
	}
	return &RasterParallelProcessor{Processor: NewProcessor(features, output), Tokens: tokens}
}

type featureAccumulators struct {
	mu   sync.Mutex
	accs map[*Operation]operationAccumulator
}

// Run mirrors RasterSequentialProcessor.Run's contract (same output
// ordering, same per-feature error wrapping) but processes tiles
// concurrently: stage 1 (emit tiles) is the Subdivide call below; stage
// 2 (R-tree query) and stage 3 (raster read, parallel only when the
// source reports ThreadSafe) and stage 4 (coverage + stats compute) run
// inside each tile's goroutine, bounded by a semaphore.Weighted sized to
// Tokens; stage 5 (merge) is the per-feature mutex each tile's goroutine
// takes before touching that feature's accumulators.
func (p *RasterParallelProcessor) Run() error {
	grid, err := p.commonGrid()
	if err != nil {
		return err
	}

	features, tree, err := readAndIndexFeatures(p.Processor)
	if err != nil {
		return err
	}

	perFeature := make([]*featureAccumulators, len(features))
	for i := range perFeature {
		perFeature[i] = &featureAccumulators{accs: make(map[*Operation]operationAccumulator)}
	}

	tiles := Subdivide(grid, p.maxCellsInMemory)

	sourceThreadSafe := true
	for _, op := range p.operations {
		if !op.Values.ThreadSafe() || (op.Weights != nil && !op.Weights.ThreadSafe()) {
			sourceThreadSafe = false
			break
		}
	}

	sem := semaphore.NewWeighted(p.Tokens)
	var readMu sync.Mutex // serializes raster reads when a source is not thread-safe

	g, ctx := errgroup.WithContext(context.Background())
	var errsMu sync.Mutex
	var errs []error

	for _, subgrid := range tiles {
		subgrid := subgrid
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			hits := tree.SearchIntersect(boxBounds(subgrid.Extent))

			valuesCache := make(map[string]RasterVariant)
			readValues := readCached
			if !sourceThreadSafe {
				readValues = func(cache map[string]RasterVariant, src RasterSource, box Box) (RasterVariant, error) {
					readMu.Lock()
					defer readMu.Unlock()
					return readCached(cache, src, box)
				}
			}

			for _, hit := range hits {
				idx, ok := hit.(*indexedFeature)
				if !ok {
					continue
				}
				fa := perFeature[idx.index]
				fa.mu.Lock()
				err := processTileLocked(p.operations, subgrid, idx, valuesCache, fa.accs, readValues)
				fa.mu.Unlock()
				if err != nil {
					errsMu.Lock()
					errs = append(errs, wrapFeatureErr(idx.index, err))
					errsMu.Unlock()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i, f := range features {
		results := make(map[*Operation]statsView, len(perFeature[i].accs))
		for op, acc := range perFeature[i].accs {
			results[op] = acc.view()
		}
		if err := p.writeResult(f.feature, results); err != nil {
			errs = append(errs, wrapFeatureErr(i, err))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return combineErrors(errs)
}

// processTileLocked is processTile's body, parameterized over the
// read function so the caller can route raster reads through a mutex
// when the underlying RasterSource is not safe for concurrent reads.
func processTileLocked(ops []*Operation, subgrid Grid, idx *indexedFeature, valuesCache map[string]RasterVariant, accumulators map[*Operation]operationAccumulator, read func(map[string]RasterVariant, RasterSource, Box) (RasterVariant, error)) error {
	if !boundsOf(idx.geometry).Intersects(subgrid.Extent) {
		return nil
	}

	var coverage *Raster[float64]
	processed := make(map[string]bool)

	for _, op := range ops {
		key := op.Key()
		if processed[key] {
			continue
		}
		processed[key] = true

		if !op.Values.Grid().Extent.ContainsBox(subgrid.Extent) {
			continue
		}
		if op.Weights != nil && !op.Weights.Grid().Extent.ContainsBox(subgrid.Extent) {
			continue
		}

		if coverage == nil {
			var err error
			coverage, err = RasterCellIntersection(subgrid, idx.geometry)
			if err != nil {
				return err
			}
		}

		values, err := read(valuesCache, op.Values, subgrid.Extent)
		if err != nil {
			return err
		}
		var weights RasterVariant
		if op.Weights != nil {
			weights, err = read(valuesCache, op.Weights, subgrid.Extent)
			if err != nil {
				return err
			}
		}

		for _, sibling := range ops {
			if sibling.Key() != key {
				continue
			}
			acc, ok := accumulators[sibling]
			if !ok {
				acc, err = sibling.NewAccumulator(values)
				if err != nil {
					return err
				}
				accumulators[sibling] = acc
			}
			if err := acc.add(coverage, values, weights); err != nil {
				return err
			}
		}
	}
	return nil
}
