package exactextract

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestRasterCellIntersectionFullCellCoverage(t *testing.T) {
	grid := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)

	// Exactly the top-left cell (x in [0,1], y in [1,2]), traced CCW.
	square := geom.Polygon{{
		{0, 1}, {1, 1}, {1, 2}, {0, 2}, {0, 1},
	}}

	r, err := RasterCellIntersection(grid, square)
	if err != nil {
		t.Fatalf("RasterCellIntersection: %v", err)
	}

	if r.GridVal.Rows != 1 || r.GridVal.Cols != 1 {
		t.Fatalf("result grid = %dx%d, want 1x1", r.GridVal.Rows, r.GridVal.Cols)
	}
	if !almostEqual(r.Get(0, 0), 1.0, 1e-9) {
		t.Errorf("coverage fraction = %v, want 1.0", r.Get(0, 0))
	}
}

func TestRasterCellIntersectionTriangleHalfCell(t *testing.T) {
	grid := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)

	triangle := geom.Polygon{{
		{0, 0}, {1, 0}, {0, 1}, {0, 0},
	}}

	r, err := RasterCellIntersection(grid, triangle)
	if err != nil {
		t.Fatalf("RasterCellIntersection: %v", err)
	}

	if r.GridVal.Rows != 1 || r.GridVal.Cols != 1 {
		t.Fatalf("result grid = %dx%d, want 1x1", r.GridVal.Rows, r.GridVal.Cols)
	}
	if !almostEqual(r.Get(0, 0), 0.5, 1e-9) {
		t.Errorf("coverage fraction = %v, want 0.5", r.Get(0, 0))
	}
}

func TestRasterCellIntersectionSpansMultipleCells(t *testing.T) {
	grid := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 4, Ymax: 4}, 1, 1)

	// A square covering exactly the middle 2x2 block of cells.
	square := geom.Polygon{{
		{1, 1}, {3, 1}, {3, 3}, {1, 3}, {1, 1},
	}}

	r, err := RasterCellIntersection(grid, square)
	if err != nil {
		t.Fatalf("RasterCellIntersection: %v", err)
	}

	total := 0.0
	for i := 0; i < r.GridVal.Rows; i++ {
		for j := 0; j < r.GridVal.Cols; j++ {
			v := r.Get(i, j)
			if v < -1e-9 || v > 1+1e-9 {
				t.Errorf("coverage fraction out of range at (%d,%d): %v", i, j, v)
			}
			total += v
		}
	}
	if !almostEqual(total, 4.0, 1e-6) {
		t.Errorf("total covered area = %v, want 4.0", total)
	}
}

func TestRasterCellIntersectionWithHole(t *testing.T) {
	grid := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 4, Ymax: 4}, 1, 1)

	polyWithHole := geom.Polygon{
		{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}},
		{{1, 1}, {1, 3}, {3, 3}, {3, 1}, {1, 1}}, // hole, CW
	}

	r, err := RasterCellIntersection(grid, polyWithHole)
	if err != nil {
		t.Fatalf("RasterCellIntersection: %v", err)
	}

	total := 0.0
	for i := 0; i < r.GridVal.Rows; i++ {
		for j := 0; j < r.GridVal.Cols; j++ {
			total += r.Get(i, j)
		}
	}
	// Outer area 16 minus hole area 4.
	if !almostEqual(total, 12.0, 1e-6) {
		t.Errorf("total covered area with hole = %v, want 12.0", total)
	}
}

func TestRasterCellIntersectionRejectsEmptyGeometry(t *testing.T) {
	grid := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)
	_, err := RasterCellIntersection(grid, geom.Polygon{})
	if err == nil {
		t.Error("expected an error for an empty geometry")
	}
}
