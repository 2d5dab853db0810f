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
)

// segmentOrientation classifies the direction of a ring's first segment,
// used to nudge the ring's starting cell so that a horizontal or
// vertical initial segment can't leave a 0%-covered traversal that a
// later flood fill would mistake for open exterior.
type segmentOrientation int

const (
	orientAngled segmentOrientation = iota
	orientHorizontalRight
	orientHorizontalLeft
	orientVerticalUp
	orientVerticalDown
)

func initialSegmentOrientation(coords []Coordinate) segmentOrientation {
	if len(coords) < 2 {
		return orientAngled
	}
	dx := coords[1].X - coords[0].X
	dy := coords[1].Y - coords[0].Y
	switch {
	case dy == 0 && dx > 0:
		return orientHorizontalRight
	case dy == 0 && dx < 0:
		return orientHorizontalLeft
	case dx == 0 && dy > 0:
		return orientVerticalUp
	case dx == 0 && dy < 0:
		return orientVerticalDown
	default:
		return orientAngled
	}
}

func toCoordinates(pts []geom.Point) []Coordinate {
	out := make([]Coordinate, len(pts))
	for i, p := range pts {
		out[i] = Coordinate{X: p.X, Y: p.Y}
	}
	return out
}

func ringsOf(p geom.Polygon) [][]Coordinate {
	rings := make([][]Coordinate, len(p))
	for i, r := range p {
		rings[i] = toCoordinates(r)
	}
	return rings
}

func boundsOf(g geom.Polygonal) Box {
	box := EmptyBox()
	switch v := g.(type) {
	case geom.Polygon:
		for _, ring := range v {
			for _, c := range toCoordinates(ring) {
				box = box.Union(Box{Xmin: c.X, Ymin: c.Y, Xmax: c.X, Ymax: c.Y})
			}
		}
	case geom.MultiPolygon:
		for _, poly := range v {
			box = box.Union(boundsOf(poly))
		}
	}
	return box
}

// cellGrid lazily allocates and caches the Cell for every (row, col) pair
// touched while walking a single ring.
type cellGrid struct {
	grid  InfiniteGrid
	cells [][]*Cell
}

func newCellGrid(grid InfiniteGrid) *cellGrid {
	cells := make([][]*Cell, grid.Rows)
	for i := range cells {
		cells[i] = make([]*Cell, grid.Cols)
	}
	return &cellGrid{grid: grid, cells: cells}
}

func (cg *cellGrid) get(row, col int) *Cell {
	if cg.cells[row][col] == nil {
		cg.cells[row][col] = NewCell(cg.grid.Cell(row, col))
	}
	return cg.cells[row][col]
}

// RasterCellIntersection computes, for every cell of rasterGrid that the
// polygon g overlaps, the fraction of that cell's area covered by g. The
// returned Raster's Grid is the bounding subgrid of rasterGrid touched by
// g (see Grid.Crop), not the full rasterGrid.
func RasterCellIntersection(rasterGrid Grid, g geom.Polygonal) (*Raster[float64], error) {
	if isEmptyPolygonal(g) {
		return nil, fmt.Errorf("exactextract: RasterCellIntersection: can't get statistics for an empty geometry")
	}

	geometryGrid := MakeInfinite(rasterGrid.Crop(rasterGrid.Extent.Intersection(boundsOf(g))))
	if geometryGrid.Inner.IsEmpty() {
		return nil, fmt.Errorf("exactextract: RasterCellIntersection: geometry does not intersect raster grid")
	}

	finite := MakeFinite(geometryGrid)
	overlap := NewRaster[float64](finite)

	rci := &rasterCellIntersection{geometryGrid: geometryGrid, overlap: overlap}
	if err := rci.process(g); err != nil {
		return nil, err
	}

	return overlap, nil
}

func isEmptyPolygonal(g geom.Polygonal) bool {
	switch v := g.(type) {
	case geom.Polygon:
		return len(v) == 0
	case geom.MultiPolygon:
		return len(v) == 0
	default:
		return true
	}
}

type rasterCellIntersection struct {
	geometryGrid InfiniteGrid
	overlap      *Raster[float64]
}

func (r *rasterCellIntersection) process(g geom.Polygonal) error {
	switch v := g.(type) {
	case geom.Polygon:
		rings := ringsOf(v)
		if len(rings) == 0 {
			return nil
		}
		if err := r.processRing(rings[0], true); err != nil {
			return wrapRingErr(0, err)
		}
		for i, hole := range rings[1:] {
			if err := r.processRing(hole, false); err != nil {
				return wrapRingErr(i+1, err)
			}
		}
	case geom.MultiPolygon:
		for _, poly := range v {
			if err := r.process(poly); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("exactextract: RasterCellIntersection: unsupported geometry type %T", g)
	}
	return nil
}

// processRing walks a single ring through the grid, accumulating a
// covered-fraction Raster over the ring's own bounding subgrid, then
// merges it into r.overlap (added for the exterior ring, subtracted for
// holes).
func (r *rasterCellIntersection) processRing(ring []Coordinate, exteriorRing bool) error {
	if len(ring) == 0 {
		return nil
	}

	ringBox := EmptyBox()
	for _, c := range ring {
		ringBox = ringBox.Union(Box{Xmin: c.X, Ymin: c.Y, Xmax: c.X, Ymax: c.Y})
	}
	ringGrid := r.geometryGrid.ShrinkToFit(r.geometryGrid.Inner.Extent.Intersection(ringBox))

	ccw := ringIsCCW(ring)
	stk := make([]Coordinate, len(ring))
	if ccw {
		copy(stk, ring)
	} else {
		for i, c := range ring {
			stk[len(ring)-1-i] = c
		}
	}

	row := ringGrid.RowForY(stk[0].Y)
	col := ringGrid.ColForX(stk[0].X)

	if orientation := initialSegmentOrientation(stk); orientation != orientAngled {
		b := ringGrid.Cell(row, col)
		switch orientation {
		case orientHorizontalRight:
			if stk[0].Y == b.Ymax && row > 0 {
				row--
			}
		case orientHorizontalLeft:
			if stk[0].Y == b.Ymin && row+1 < ringGrid.Rows {
				row++
			}
		case orientVerticalDown:
			if stk[0].X == b.Xmax && col+1 < ringGrid.Cols {
				col++
			}
		case orientVerticalUp:
			if stk[0].X == b.Xmin && col > 0 {
				col--
			}
		}
	}

	cells := newCellGrid(ringGrid)

	for len(stk) > 0 {
		cell := cells.get(row, col)

		for len(stk) > 0 {
			cell.Take(stk[0], nil)
			last := cell.LastTraversal()
			if last.Exited() {
				exc := last.ExitCoordinate()
				if exc != stk[0] {
					stk = append([]Coordinate{exc}, stk...)
				}
				break
			}
			stk = stk[1:]
		}

		cell.ForceExit()
		last := cell.LastTraversal()

		if last.Exited() {
			if !last.Traversed() {
				stk = append(stk, last.Coords...)
			}

			switch last.ExitSide {
			case SideTop:
				row--
			case SideBottom:
				row++
			case SideLeft:
				col--
			case SideRight:
				col++
			default:
				return fmt.Errorf("exactextract: RasterCellIntersection: invalid traversal exit side")
			}
		}
	}

	innerRows := ringGrid.Rows - 2
	innerCols := ringGrid.Cols - 2
	if innerRows <= 0 || innerCols <= 0 {
		return nil
	}

	areas := NewRaster[float64](MakeFinite(ringGrid))
	for i := 1; i <= innerRows; i++ {
		for j := 1; j <= innerCols; j++ {
			if c := cells.cells[i][j]; c != nil && c.Determined() {
				areas.Set(i-1, j-1, c.CoveredFraction())
			}
		}
	}

	closedRing := ring
	if closedRing[0] != closedRing[len(closedRing)-1] {
		closedRing = append(append([]Coordinate{}, closedRing...), closedRing[0])
	}
	ff := NewFloodFill(MakeFinite(ringGrid), []Ring{{Coords: closedRing, CCW: ccw}})
	ff.Flood(areas)

	r.addRingAreas(ringGrid, areas, exteriorRing)
	return nil
}

func (r *rasterCellIntersection) addRingAreas(ringGrid InfiniteGrid, areas *Raster[float64], exteriorRing bool) {
	factor := 1.0
	if !exteriorRing {
		factor = -1.0
	}

	i0 := ringGrid.RowOffset(r.geometryGrid)
	j0 := ringGrid.ColOffset(r.geometryGrid)

	for i := 0; i < areas.GridVal.Rows; i++ {
		for j := 0; j < areas.GridVal.Cols; j++ {
			prev := r.overlap.Get(i0+i, j0+j)
			r.overlap.Set(i0+i, j0+j, prev+factor*areas.Get(i, j))
		}
	}
}
