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

// Package remoteworker exposes one tile's coverage and statistic
// computation over net/rpc, so it can run in a separate process. The
// processors in the root package do not call it. A Worker
// answers one (tile, feature) coverage+stats request per RPC call; it
// carries no state between calls, unlike sr.Worker's loaded CTM/population
// data held for the life of the process.
package remoteworker

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"net/rpc"

	"github.com/ctessum/geom"

	"github.com/isciences/exactextract"
)

// RPCPort is the default port a Worker listens on.
var RPCPort = "6061"

// TileRequest is one unit of dispatched work: a subgrid, the rings of a
// single polygonal feature's geometry, and the values (and optionally
// weights) already read for that subgrid. Rasters are shipped as
// RasterVariant rather than as a RasterSource, so the request is
// self-contained and the caller keeps ownership of the underlying file
// or array.
type TileRequest struct {
	Subgrid    exactextract.Grid
	Rings      [][]exactextract.Coordinate
	Values     exactextract.RasterVariant
	Weights    exactextract.RasterVariant
	HasWeights bool

	Stat                string
	WeightType          exactextract.CoverageWeightType
	MinCoverageFraction float64
	DefaultWeight       float64
	TargetValue         float64
	Q                   float64
}

// TileResult carries back the computed stat: Scalar for the common
// scalar-producing Stat values, Array for the ones that produce a
// per-cell list (values, weights, coverage, unique, cell_id, ...).
type TileResult struct {
	Scalar    float64
	Array     []float64
	IsScalar  bool
	Skipped   bool // true when the geometry did not intersect Subgrid
}

// Worker computes one tile's coverage and statistic on request. It
// should not be interacted with directly, but is exported to meet RPC
// requirements.
type Worker struct{}

// Calculate builds the coverage fraction raster for the requested
// geometry over the requested subgrid, computes the requested
// statistic, and reports it. It meets the requirements for use with
// rpc.Call.
func (w *Worker) Calculate(req *TileRequest, resp *TileResult) error {
	g := ringsToPolygon(req.Rings)

	if !ringsBounds(req.Rings).Intersects(req.Subgrid.Extent) {
		resp.Skipped = true
		return nil
	}

	coverage, err := exactextract.RasterCellIntersection(req.Subgrid, g)
	if err != nil {
		return fmt.Errorf("remoteworker: coverage: %v", err)
	}

	op := &exactextract.Operation{
		Name:                "result",
		Stat:                req.Stat,
		Values:              &exactextract.MemoryRasterSource{GridVal: req.Subgrid, Data: req.Values},
		WeightType:          req.WeightType,
		MinCoverageFraction: req.MinCoverageFraction,
		DefaultWeight:       req.DefaultWeight,
		TargetValue:         req.TargetValue,
		Q:                   req.Q,
	}
	weights := exactextract.RasterVariant{}
	if req.HasWeights {
		op.Weights = &exactextract.MemoryRasterSource{GridVal: req.Subgrid, Data: req.Weights}
		weights = req.Weights
	}

	view, err := op.Compute(coverage, req.Values, weights)
	if err != nil {
		return fmt.Errorf("remoteworker: compute: %v", err)
	}

	out := exactextract.NewMemoryFeature(nil)
	if err := op.SetResult(view, out); err != nil {
		return fmt.Errorf("remoteworker: set result: %v", err)
	}

	if v, ok := out.Doubles["result"]; ok {
		resp.Scalar = v
		resp.IsScalar = true
		return nil
	}
	if arr, ok := out.DoubleArrs["result"]; ok {
		resp.Array = arr
		return nil
	}
	if v, ok := out.Ints["result"]; ok {
		resp.Scalar = float64(v)
		resp.IsScalar = true
		return nil
	}
	if arr, ok := out.Int64Arrs["result"]; ok {
		resp.Array = make([]float64, len(arr))
		for i, v := range arr {
			resp.Array[i] = float64(v)
		}
		return nil
	}
	return fmt.Errorf("remoteworker: stat %q produced no result field", req.Stat)
}

// Listen directs w to start listening for requests over port.
func (w *Worker) Listen(port string) error {
	rpc.Register(w)
	rpc.HandleHTTP()
	l, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}
	log.Println("remoteworker: listening on", port)
	return http.Serve(l, nil)
}

func ringsToPolygon(rings [][]exactextract.Coordinate) geom.Polygon {
	poly := make(geom.Polygon, len(rings))
	for i, ring := range rings {
		pts := make([]geom.Point, len(ring))
		for j, c := range ring {
			pts[j] = geom.Point{X: c.X, Y: c.Y}
		}
		poly[i] = pts
	}
	return poly
}

// ringsBounds returns the bounding box of every coordinate across all
// rings, without requiring the geom.Polygonal built from them.
func ringsBounds(rings [][]exactextract.Coordinate) exactextract.Box {
	b := exactextract.EmptyBox()
	for _, ring := range rings {
		for _, c := range ring {
			if c.X < b.Xmin {
				b.Xmin = c.X
			}
			if c.X > b.Xmax {
				b.Xmax = c.X
			}
			if c.Y < b.Ymin {
				b.Ymin = c.Y
			}
			if c.Y > b.Ymax {
				b.Ymax = c.Y
			}
		}
	}
	return b
}
