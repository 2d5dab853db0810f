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

const (
	fillExterior = -1.0
	fillInterior = 1.0
)

// FloodFill determines the coverage fraction (0 or 1) of grid cells that
// raster-cell-intersection tracing left undetermined: cells whose
// coverage fraction could not be derived from a boundary traversal
// because the polygon boundary never passed through them. Such a cell is
// either entirely inside or entirely outside the polygon, which is
// resolved by testing a single representative point (its center) against
// the polygon's rings and then flood-filling the result to every
// like-valued neighbor.
type FloodFill struct {
	Grid  Grid
	Rings []Ring
}

// NewFloodFill returns a FloodFill that tests points in grid against the
// polygon described by rings (shells CCW, holes CW, as produced by
// LeftHandRings or by a feature's own geometry).
func NewFloodFill(grid Grid, rings []Ring) *FloodFill {
	return &FloodFill{Grid: grid, Rings: rings}
}

func pointInRing(p Coordinate, ring []Coordinate) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].X, ring[i].Y
		xj, yj := ring[j].X, ring[j].Y
		if (yi > p.Y) != (yj > p.Y) {
			xCross := (xj-xi)*(p.Y-yi)/(yj-yi) + xi
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// pointInRings reports whether p lies within the polygon described by
// f.Rings, using an even-odd accumulation across every ring so that shell
// and hole rings combine correctly regardless of orientation.
func (f *FloodFill) pointInRings(p Coordinate) bool {
	inside := false
	for _, r := range f.Rings {
		if pointInRing(p, r.Coords) {
			inside = !inside
		}
	}
	return inside
}

func (f *FloodFill) cellIsInside(row, col int) bool {
	x := f.Grid.XForCol(col)
	y := f.Grid.YForRow(row)
	return f.pointInRings(Coordinate{X: x, Y: y})
}

type rowCol struct{ row, col int }

// floodFromCell fills arr, starting at (row, col), with fillValue,
// spreading to every 4-connected neighbor that still holds the zero
// (undetermined) sentinel. It fills each row in contiguous scanline runs
// rather than cell-by-cell, queuing every still-zero cell directly above
// and below each run as a seed.
func floodFromCell(arr *Raster[float64], row, col int, fillValue float64) {
	queue := []rowCol{{row, col}}

	for len(queue) > 0 {
		loc := queue[0]
		queue = queue[1:]
		i, j := loc.row, loc.col

		if arr.Get(i, j) == fillValue {
			continue
		}

		if j > 0 && arr.Get(i, j-1) == 0 {
			queue = append(queue, rowCol{i, j - 1})
		}

		j0 := j
		for ; j < arr.GridVal.Cols && arr.Get(i, j) == 0; j++ {
			arr.Set(i, j, fillValue)
		}
		j1 := j

		if i > 0 {
			for j = j0; j < j1; j++ {
				if arr.Get(i-1, j) == 0 {
					queue = append(queue, rowCol{i - 1, j})
				}
			}
		}
		if i < arr.GridVal.Rows-1 {
			for j = j0; j < j1; j++ {
				if arr.Get(i+1, j) == 0 {
					queue = append(queue, rowCol{i + 1, j})
				}
			}
		}
	}
}

// Flood fills every undetermined (zero-valued) cell of arr with 1 if it
// lies inside the polygon or 0 if outside, leaving cells already set by
// boundary tracing untouched.
func (f *FloodFill) Flood(arr *Raster[float64]) {
	for i := 0; i < arr.GridVal.Rows; i++ {
		for j := 0; j < arr.GridVal.Cols; j++ {
			if arr.Get(i, j) == 0 {
				if f.cellIsInside(i, j) {
					floodFromCell(arr, i, j, fillInterior)
				} else {
					floodFromCell(arr, i, j, fillExterior)
				}
			}
		}
	}
	invertFlood(arr)
}

// invertFlood resets every cell marked with the exterior sentinel back to
// 0, since fillExterior only existed to mark cells as visited during the
// flood.
func invertFlood(arr *Raster[float64]) {
	for i := 0; i < arr.GridVal.Rows; i++ {
		for j := 0; j < arr.GridVal.Cols; j++ {
			if arr.Get(i, j) == fillExterior {
				arr.Set(i, j, 0)
			}
		}
	}
}
