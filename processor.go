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

// Processor applies a fixed set of Operations to every feature of a
// FeatureSource, writing one output row per feature to an OutputWriter.
// It carries the scaffolding shared by every concrete driver
// (feature-sequential, raster-sequential, raster-parallel): operation
// registration, included passthrough columns, progress reporting, and
// the final per-feature result write. A driver only needs to implement
// Run and call writeResult once per feature.
type Processor struct {
	Features FeatureSource
	Output   OutputWriter

	operations       []*Operation
	includeCols      []string
	includeGeometry  bool
	maxCellsInMemory int
	showProgress     bool
	progressFn       func(string)
}

// NewProcessor returns a Processor reading from features and writing to
// output, with the default max-cells-in-memory tile size.
func NewProcessor(features FeatureSource, output OutputWriter) *Processor {
	return &Processor{
		Features:         features,
		Output:           output,
		maxCellsInMemory: DefaultMaxCellsInMemory,
	}
}

// AddOperation registers op to be computed for every feature, and tells
// Output to expect its result column.
func (p *Processor) AddOperation(op *Operation) {
	p.operations = append(p.operations, op)
	p.Output.AddOperation(op)
}

// IncludeColumn copies the named input field through to every output
// feature verbatim, limited to the string/double getters Feature
// exposes.
func (p *Processor) IncludeColumn(name string) {
	p.includeCols = append(p.includeCols, name)
}

// IncludeGeometry copies each input feature's geometry through to the
// corresponding output feature.
func (p *Processor) IncludeGeometry() { p.includeGeometry = true }

// SetMaxCellsInMemory bounds the cell count of any single subgrid tile
// a driver processes at once.
func (p *Processor) SetMaxCellsInMemory(n int) {
	if n > 0 {
		p.maxCellsInMemory = n
	}
}

// ShowProgress enables or disables progress callbacks.
func (p *Processor) ShowProgress(v bool) { p.showProgress = v }

// SetProgressFunc installs fn as the progress callback, invoked with a
// short status message; a nil fn silences progress reporting.
func (p *Processor) SetProgressFunc(fn func(string)) { p.progressFn = fn }

func (p *Processor) progress(message string) {
	if !p.showProgress || p.progressFn == nil {
		return
	}
	p.progressFn(message)
}

// commonGrid returns the grid shared by every registered operation.
func (p *Processor) commonGrid() (Grid, error) {
	if len(p.operations) == 0 {
		return Grid{}, fmt.Errorf("exactextract: Processor: no operations registered")
	}
	g := p.operations[0].Grid()
	for _, op := range p.operations[1:] {
		merged, err := CommonGrid(g, op.Grid(), 1e-9)
		if err != nil {
			return Grid{}, fmt.Errorf("exactextract: Processor: incompatible operation grids: %v", err)
		}
		g = merged
	}
	return g, nil
}

// writeResult assembles one output feature from featureIn's passthrough
// fields/geometry plus the computed results (keyed by operation), and
// writes it to p.Output. A missing entry in results (an operation that
// never intersected the feature) leaves that output field unset.
func (p *Processor) writeResult(featureIn Feature, results map[*Operation]statsView) error {
	out := p.Output.CreateFeature()

	if p.includeGeometry {
		out.SetGeometry(featureIn.Geometry())
	}
	for _, col := range p.includeCols {
		if _, ok := featureIn.FieldType(col); !ok {
			continue
		}
		if s := featureIn.GetString(col); s != "" {
			out.SetString(col, s)
			continue
		}
		out.SetDouble(col, featureIn.GetDouble(col))
	}

	for _, op := range p.operations {
		view, ok := results[op]
		if !ok {
			continue
		}
		if err := op.SetResult(view, out); err != nil {
			return err
		}
	}

	return p.Output.Write(out)
}

// operationKey groups operations sharing the same values+weights pair so
// a driver can skip redundant RasterSource.ReadBox/coverage passes,
// mirroring the original's key()-based de-duplication.
func operationKey(op *Operation) string { return op.Key() }

// groupByKey partitions ops into buckets that can share one coverage
// raster and one pair of values/weights reads.
func groupByKey(ops []*Operation) map[string][]*Operation {
	groups := make(map[string][]*Operation)
	for _, op := range ops {
		k := operationKey(op)
		groups[k] = append(groups[k], op)
	}
	return groups
}
