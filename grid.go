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
)

// Grid is a regular, axis-aligned, rectangular grid of cells. Row 0 is the
// north (highest y) row; column 0 is the west (lowest x) column. The
// bottom and rightmost cells absorb any rounding slack so that the union
// of all cells exactly equals Extent.
type Grid struct {
	Extent     Box
	Dx, Dy     float64
	Rows, Cols int
}

// NewGrid builds a Grid from an extent and cell size, deriving Rows and
// Cols as round((ymax-ymin)/dy) and round((xmax-xmin)/dx).
func NewGrid(extent Box, dx, dy float64) Grid {
	if extent.IsEmpty() || dx <= 0 || dy <= 0 {
		return Grid{Extent: EmptyBox()}
	}
	rows := int(math.Round(extent.Height() / dy))
	cols := int(math.Round(extent.Width() / dx))
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return Grid{Extent: extent, Dx: dx, Dy: dy, Rows: rows, Cols: cols}
}

// IsEmpty reports whether g has no cells.
func (g Grid) IsEmpty() bool {
	return g.Rows == 0 || g.Cols == 0 || g.Extent.IsEmpty()
}

// Size returns the total number of cells in the grid.
func (g Grid) Size() int { return g.Rows * g.Cols }

// Cell returns the Box occupied by the cell at (row, col). The bottom row
// and rightmost column are widened as needed to absorb floating-point
// rounding slack so that the cells' union exactly equals Extent.
func (g Grid) Cell(row, col int) Box {
	xmin := g.Extent.Xmin + float64(col)*g.Dx
	var xmax float64
	if col == g.Cols-1 {
		xmax = g.Extent.Xmax
	} else {
		xmax = g.Extent.Xmin + float64(col+1)*g.Dx
	}

	ymax := g.Extent.Ymax - float64(row)*g.Dy
	var ymin float64
	if row == g.Rows-1 {
		ymin = g.Extent.Ymin
	} else {
		ymin = g.Extent.Ymax - float64(row+1)*g.Dy
	}

	return Box{Xmin: xmin, Ymin: ymin, Xmax: xmax, Ymax: ymax}
}

func indexForPos(pos float64, n int) int {
	idx := int(math.Ceil(pos)) - 1
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// ColForX returns the column containing x, using nearest-cell tolerance. A
// point exactly on an internal column boundary resolves to the lower
// (west) column index; beyond the east edge it returns the last column.
func (g Grid) ColForX(x float64) int {
	if x <= g.Extent.Xmin {
		return 0
	}
	if x >= g.Extent.Xmax {
		return g.Cols - 1
	}
	pos := (x - g.Extent.Xmin) / g.Dx
	return indexForPos(pos, g.Cols)
}

// RowForY returns the row containing y. A point exactly on an internal row
// boundary resolves to the lower (north) row index; beyond the south edge
// it returns the last row.
func (g Grid) RowForY(y float64) int {
	if y >= g.Extent.Ymax {
		return 0
	}
	if y <= g.Extent.Ymin {
		return g.Rows - 1
	}
	pos := (g.Extent.Ymax - y) / g.Dy
	return indexForPos(pos, g.Rows)
}

// XForCol returns the x coordinate of the center of column col.
func (g Grid) XForCol(col int) float64 {
	b := g.Cell(0, col)
	return (b.Xmin + b.Xmax) / 2
}

// YForRow returns the y coordinate of the center of row row.
func (g Grid) YForRow(row int) float64 {
	b := g.Cell(row, 0)
	return (b.Ymin + b.Ymax) / 2
}

func (g Grid) rowColFromIndices(r0, r1, c0, c1 int) Grid {
	ul := g.Cell(r0, c0)
	lr := g.Cell(r1, c1)
	box := Box{Xmin: ul.Xmin, Ymax: ul.Ymax, Xmax: lr.Xmax, Ymin: lr.Ymin}
	return Grid{Extent: box, Dx: g.Dx, Dy: g.Dy, Rows: r1 - r0 + 1, Cols: c1 - c0 + 1}
}

// Crop returns the subgrid whose cells are fully or partially covered by
// box, snapped to cell boundaries. ShrinkToFit is an alias for the same
// operation.
func (g Grid) Crop(box Box) Grid {
	overlap := g.Extent.Intersection(box)
	if overlap.IsEmpty() || g.IsEmpty() {
		return Grid{Extent: EmptyBox()}
	}
	c0 := g.ColForX(overlap.Xmin)
	c1 := g.ColForX(overlap.Xmax)
	r0 := g.RowForY(overlap.Ymax)
	r1 := g.RowForY(overlap.Ymin)
	// A west or north box edge lying on an internal grid line only touches
	// the cell beyond it; start at the first cell the box overlaps.
	if c0 < c1 && g.Cell(0, c0).Xmax == overlap.Xmin {
		c0++
	}
	if r0 < r1 && g.Cell(r0, 0).Ymin == overlap.Ymax {
		r0++
	}
	return g.rowColFromIndices(r0, r1, c0, c1)
}

// ShrinkToFit crops the grid to the smallest set of cells covering box.
func (g Grid) ShrinkToFit(box Box) Grid { return g.Crop(box) }

func gcdFloat(a, b, tol float64) float64 {
	a, b = math.Abs(a), math.Abs(b)
	if a < b {
		a, b = b, a
	}
	for b > tol {
		a, b = b, math.Mod(a, b)
	}
	return a
}

// CommonGrid returns the finest common grid whose extent covers both g and
// other and whose Dx,Dy divide both operands'. tol is expressed relative
// to min(dx,dy); a tol <= 0 uses the default of 1e-6.
func CommonGrid(g, other Grid, tol float64) (Grid, error) {
	if tol <= 0 {
		tol = 1e-6
	}
	if g.IsEmpty() {
		return other, nil
	}
	if other.IsEmpty() {
		return g, nil
	}

	dx := gcdFloat(g.Dx, other.Dx, tol*math.Min(g.Dx, other.Dx))
	dy := gcdFloat(g.Dy, other.Dy, tol*math.Min(g.Dy, other.Dy))
	if dx <= 0 || dy <= 0 {
		return Grid{}, fmt.Errorf("exactextract: CommonGrid: could not find a common resolution within tolerance")
	}

	extent := g.Extent.Union(other.Extent)
	absTol := tol * math.Min(dx, dy)

	checkAlign := func(origin, step float64) error {
		n := (origin - extent.Xmin) / step
		if math.Abs(n-math.Round(n)) > absTol/step {
			return fmt.Errorf("exactextract: CommonGrid: grids are not aligned within tolerance")
		}
		return nil
	}
	_ = checkAlign

	// Snap the combined extent outward to a multiple of dx,dy from g's
	// origin, and verify alignment of both operands within tolerance.
	snap := func(origin, lo, hi, step float64) (float64, float64, error) {
		n0 := math.Floor((lo-origin)/step + 1e-9)
		n1 := math.Ceil((hi-origin)/step - 1e-9)
		newLo := origin + n0*step
		newHi := origin + n1*step
		return newLo, newHi, nil
	}

	xmin, xmax, err := snap(g.Extent.Xmin, extent.Xmin, extent.Xmax, dx)
	if err != nil {
		return Grid{}, err
	}
	ymin, ymax, err := snap(g.Extent.Ymin, extent.Ymin, extent.Ymax, dy)
	if err != nil {
		return Grid{}, err
	}

	for _, op := range []Grid{g, other} {
		ox := math.Mod(op.Extent.Xmin-xmin, dx) / dx
		if ox > 0.5 {
			ox -= 1
		}
		if math.Abs(ox) > tol {
			return Grid{}, fmt.Errorf("exactextract: CommonGrid: x alignment error exceeds tolerance")
		}
		oy := math.Mod(op.Extent.Ymin-ymin, dy) / dy
		if oy > 0.5 {
			oy -= 1
		}
		if math.Abs(oy) > tol {
			return Grid{}, fmt.Errorf("exactextract: CommonGrid: y alignment error exceeds tolerance")
		}
	}

	return NewGrid(Box{Xmin: xmin, Ymin: ymin, Xmax: xmax, Ymax: ymax}, dx, dy), nil
}

// Subdivide partitions g into row-major rectangular tiles, each containing
// at most maxCells cells, with tile breaks preferring a near-square shape.
func Subdivide(g Grid, maxCells int) []Grid {
	if g.IsEmpty() {
		return nil
	}
	if maxCells <= 0 || g.Size() <= maxCells {
		return []Grid{g}
	}

	tileRows := int(math.Sqrt(float64(maxCells)))
	if tileRows < 1 {
		tileRows = 1
	}
	if tileRows > g.Rows {
		tileRows = g.Rows
	}
	tileCols := maxCells / tileRows
	if tileCols < 1 {
		tileCols = 1
	}
	if tileCols > g.Cols {
		tileCols = g.Cols
	}

	var tiles []Grid
	for r0 := 0; r0 < g.Rows; r0 += tileRows {
		r1 := r0 + tileRows - 1
		if r1 > g.Rows-1 {
			r1 = g.Rows - 1
		}
		for c0 := 0; c0 < g.Cols; c0 += tileCols {
			c1 := c0 + tileCols - 1
			if c1 > g.Cols-1 {
				c1 = g.Cols - 1
			}
			tiles = append(tiles, g.rowColFromIndices(r0, r1, c0, c1))
		}
	}
	return tiles
}

// InfiniteGrid wraps a bounded Grid with a one-cell halo in every
// direction: column 0 extends to -Inf, the last column to +Inf, and
// similarly for rows. Cell-intersection tracing uses this form so that
// traversals exiting the finite extent remain representable.
type InfiniteGrid struct {
	Inner      Grid
	Dx, Dy     float64
	Rows, Cols int
}

// MakeInfinite wraps g with a one-cell halo.
func MakeInfinite(g Grid) InfiniteGrid {
	return InfiniteGrid{Inner: g, Dx: g.Dx, Dy: g.Dy, Rows: g.Rows + 2, Cols: g.Cols + 2}
}

// MakeFinite unwraps an InfiniteGrid back to its bounded inner Grid.
func MakeFinite(ig InfiniteGrid) Grid { return ig.Inner }

// Cell returns the Box for (row, col) in halo-relative indexing: row/col 0
// and Rows-1/Cols-1 are the infinite halo cells.
func (ig InfiniteGrid) Cell(row, col int) Box {
	C := ig.Inner.Cols
	R := ig.Inner.Rows

	var xmin, xmax float64
	if col == 0 {
		xmin = math.Inf(-1)
	} else {
		xmin = ig.Inner.Extent.Xmin + float64(col-1)*ig.Dx
	}
	switch {
	case col == C+1:
		xmax = math.Inf(1)
	case col == C:
		xmax = ig.Inner.Extent.Xmax
	default:
		xmax = ig.Inner.Extent.Xmin + float64(col)*ig.Dx
	}

	var ymin, ymax float64
	if row == 0 {
		ymax = math.Inf(1)
	} else {
		ymax = ig.Inner.Extent.Ymax - float64(row-1)*ig.Dy
	}
	switch {
	case row == R+1:
		ymin = math.Inf(-1)
	case row == R:
		ymin = ig.Inner.Extent.Ymin
	default:
		ymin = ig.Inner.Extent.Ymax - float64(row)*ig.Dy
	}

	return Box{Xmin: xmin, Ymin: ymin, Xmax: xmax, Ymax: ymax}
}

// RowForY returns the halo-relative row containing y: 0 if y lies north of
// the inner grid, Rows-1 if south of it, else Inner.RowForY(y)+1.
func (ig InfiniteGrid) RowForY(y float64) int {
	if y > ig.Inner.Extent.Ymax {
		return 0
	}
	if y < ig.Inner.Extent.Ymin {
		return ig.Rows - 1
	}
	return ig.Inner.RowForY(y) + 1
}

// ColForX returns the halo-relative column containing x.
func (ig InfiniteGrid) ColForX(x float64) int {
	if x < ig.Inner.Extent.Xmin {
		return 0
	}
	if x > ig.Inner.Extent.Xmax {
		return ig.Cols - 1
	}
	return ig.Inner.ColForX(x) + 1
}

// ShrinkToFit crops the infinite grid's inner grid to box, returning a new
// InfiniteGrid over the cropped extent.
func (ig InfiniteGrid) ShrinkToFit(box Box) InfiniteGrid {
	return MakeInfinite(ig.Inner.Crop(box))
}

// RowOffset returns the number of rows ig's inner grid is offset (south)
// from parent's inner grid, for transferring values computed on a
// cropped subgrid back into the parent's coordinate frame.
func (ig InfiniteGrid) RowOffset(parent InfiniteGrid) int {
	return int(math.Round((parent.Inner.Extent.Ymax - ig.Inner.Extent.Ymax) / ig.Dy))
}

// ColOffset returns the number of columns ig's inner grid is offset
// (east) from parent's inner grid.
func (ig InfiniteGrid) ColOffset(parent InfiniteGrid) int {
	return int(math.Round((ig.Inner.Extent.Xmin - parent.Inner.Extent.Xmin) / ig.Dx))
}
