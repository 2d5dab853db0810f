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

import "github.com/ctessum/geom"

// FeatureSequentialProcessor walks the FeatureSource one feature at a
// time, computing every registered Operation over that single feature's
// own cropped, subdivided grid before moving to the next. It favors low
// memory use over raster I/O locality: each feature re-reads whatever
// values/weights cells it overlaps.
type FeatureSequentialProcessor struct {
	*Processor
}

// NewFeatureSequentialProcessor returns a feature-sequential driver.
func NewFeatureSequentialProcessor(features FeatureSource, output OutputWriter) *FeatureSequentialProcessor {
	return &FeatureSequentialProcessor{Processor: NewProcessor(features, output)}
}

// Run computes every registered operation for every feature in turn,
// writing one output row per input feature. A feature whose compute
// fails is skipped (wrapped as a *FeatureError) and processing
// continues with the next feature; Run returns the combined set of
// such errors, or nil if every feature succeeded.
func (p *FeatureSequentialProcessor) Run() error {
	grid, err := p.commonGrid()
	if err != nil {
		return err
	}

	var errs []error
	index := -1
	for p.Features.Next() {
		index++
		featureIn := p.Features.Feature()

		if err := p.processFeature(grid, featureIn); err != nil {
			errs = append(errs, wrapFeatureErr(index, err))
			continue
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return combineErrors(errs)
}

func (p *FeatureSequentialProcessor) processFeature(grid Grid, featureIn Feature) error {
	g, ok := featureIn.Geometry().(geom.Polygonal)
	if !ok {
		return p.writeResult(featureIn, nil)
	}

	bbox := boundsOf(g)
	if !bbox.Intersects(grid.Extent) {
		return p.writeResult(featureIn, nil)
	}

	cropped := grid.Crop(bbox)

	accumulators := make(map[*Operation]operationAccumulator)
	for _, subgrid := range Subdivide(cropped, p.maxCellsInMemory) {
		if err := p.processSubgrid(subgrid, g, accumulators); err != nil {
			return err
		}
	}

	results := make(map[*Operation]statsView, len(accumulators))
	for op, acc := range accumulators {
		results[op] = acc.view()
	}
	return p.writeResult(featureIn, results)
}

func (p *FeatureSequentialProcessor) processSubgrid(subgrid Grid, g geom.Polygonal, accumulators map[*Operation]operationAccumulator) error {
	var coverage *Raster[float64]
	valuesCache := make(map[string]RasterVariant)
	processed := make(map[string]bool)

	for _, op := range p.operations {
		key := op.Key()
		if processed[key] {
			continue
		}
		processed[key] = true

		if !op.Intersects(subgrid.Extent) {
			continue
		}

		if coverage == nil {
			var err error
			coverage, err = RasterCellIntersection(subgrid, g)
			if err != nil {
				return err
			}
		}

		values, err := readCached(valuesCache, op.Values, subgrid.Extent)
		if err != nil {
			return err
		}

		var weights RasterVariant
		if op.Weights != nil {
			weights, err = readCached(valuesCache, op.Weights, subgrid.Extent)
			if err != nil {
				return err
			}
		}

		for _, sibling := range p.operations {
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

func readCached(cache map[string]RasterVariant, src RasterSource, box Box) (RasterVariant, error) {
	if v, ok := cache[src.Name()]; ok {
		return v, nil
	}
	v, err := src.ReadBox(box.Intersection(src.Grid().Extent))
	if err != nil {
		return RasterVariant{}, err
	}
	cache[src.Name()] = v
	return v, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	return &multiError{errs: errs}
}

type multiError struct{ errs []error }

func (m *multiError) Error() string {
	s := ""
	for i, e := range m.errs {
		if i > 0 {
			s += "; "
		}
		s += e.Error()
	}
	return s
}
