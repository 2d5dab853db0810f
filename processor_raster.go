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

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// boxBounds converts a Box to the *geom.Bounds the rtree package queries
// with, matching the teacher's own newRect helper in popgrid.go.
func boxBounds(b Box) *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: b.Xmin, Y: b.Ymin},
		Max: geom.Point{X: b.Xmax, Y: b.Ymax},
	}
}

// indexedFeature wraps one input feature's index and polygonal geometry
// so it can be inserted into an rtree.Rtree, which indexes values
// satisfying a Bounds() method (as the teacher's gridCellLight does).
type indexedFeature struct {
	index    int
	feature  Feature
	geometry geom.Polygonal
}

func (f *indexedFeature) Bounds() *geom.Bounds { return f.geometry.Bounds() }

// RasterSequentialProcessor reads every feature up front, builds an
// R-tree over their geometries, then walks the operations' common grid
// tile by tile, querying the tree for the features each tile overlaps.
// This amortizes raster I/O across all features touching a tile, at the
// cost of holding every feature (and the whole R-tree) in memory.
type RasterSequentialProcessor struct {
	*Processor
}

// NewRasterSequentialProcessor returns a raster-sequential driver.
func NewRasterSequentialProcessor(features FeatureSource, output OutputWriter) *RasterSequentialProcessor {
	return &RasterSequentialProcessor{Processor: NewProcessor(features, output)}
}

// Run computes every registered operation for every feature, writing one
// output row per input feature once every tile touching it has been
// processed. A feature whose geometry is not polygonal is not indexed and
// its row is written with no result fields. A per-tile compute failure
// is wrapped as a *FeatureError; Run continues with the remaining
// tiles/features and returns the combined set of such errors, or nil if
// none occurred.
func (p *RasterSequentialProcessor) Run() error {
	grid, err := p.commonGrid()
	if err != nil {
		return err
	}

	features, tree, err := readAndIndexFeatures(p.Processor)
	if err != nil {
		return err
	}

	accumulators := make([]map[*Operation]operationAccumulator, len(features))
	for i := range accumulators {
		accumulators[i] = make(map[*Operation]operationAccumulator)
	}

	var errs []error
	for _, subgrid := range Subdivide(grid, p.maxCellsInMemory) {
		hits := tree.SearchIntersect(boxBounds(subgrid.Extent))

		valuesCache := make(map[string]RasterVariant)
		for _, hit := range hits {
			idx, ok := hit.(*indexedFeature)
			if !ok {
				continue
			}
			if err := p.processTile(subgrid, idx, valuesCache, accumulators[idx.index]); err != nil {
				errs = append(errs, wrapFeatureErr(idx.index, err))
			}
		}
		p.progress(fmt.Sprintf("%v", subgrid.Extent))
	}

	for i, f := range features {
		results := make(map[*Operation]statsView, len(accumulators[i]))
		for op, acc := range accumulators[i] {
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

// readAndIndexFeatures consumes p.Features fully, building both the
// ordered feature list (index i matches the i-th feature read) and an
// R-tree over their geometries, shared by RasterSequentialProcessor and
// RasterParallelProcessor.
func readAndIndexFeatures(p *Processor) ([]*indexedFeature, *rtree.Rtree, error) {
	var features []*indexedFeature
	tree := rtree.NewTree(25, 50)

	index := 0
	for p.Features.Next() {
		f := p.Features.Feature()
		g, _ := f.Geometry().(geom.Polygonal)
		idx := &indexedFeature{index: index, feature: f, geometry: g}
		features = append(features, idx)
		if g != nil {
			tree.Insert(idx)
		}
		index++
	}
	return features, tree, nil
}

func (p *RasterSequentialProcessor) processTile(subgrid Grid, idx *indexedFeature, valuesCache map[string]RasterVariant, accumulators map[*Operation]operationAccumulator) error {
	return processTileLocked(p.operations, subgrid, idx, valuesCache, accumulators, readCached)
}
