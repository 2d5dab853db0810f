package exactextract

import "testing"

func TestFloodFillInteriorAndExterior(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 4, Ymax: 4}, 1, 1)
	arr := NewRaster[float64](g)
	// Flood expects the cells along ring boundaries to be set already;
	// mark column 1, which the square's east edge runs along, as such.
	for row := 0; row < g.Rows; row++ {
		arr.Set(row, 1, 1.0)
	}

	// A square covering the left half of the grid, traced CCW.
	square := Ring{Coords: []Coordinate{{0, 0}, {2, 0}, {2, 4}, {0, 4}, {0, 0}}, CCW: true}
	ff := NewFloodFill(g, []Ring{square})

	ff.Flood(arr)

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			want := 0.0
			if col < 2 {
				want = 1.0
			}
			if got := arr.Get(row, col); got != want {
				t.Errorf("cell (%d,%d) = %v, want %v", row, col, got, want)
			}
		}
	}
}

func TestFloodFillLeavesDeterminedCellsUntouched(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)
	arr := NewRaster[float64](g)
	arr.Set(0, 0, 0.5) // already determined by boundary tracing

	square := Ring{Coords: []Coordinate{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}, CCW: true}
	ff := NewFloodFill(g, []Ring{square})
	ff.Flood(arr)

	if arr.Get(0, 0) != 0.5 {
		t.Errorf("pre-determined cell was overwritten: got %v", arr.Get(0, 0))
	}
}

func TestFloodFillHole(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 4, Ymax: 4}, 1, 1)
	arr := NewRaster[float64](g)
	// Flood expects the cells along ring boundaries to be set already;
	// mark the cells that separate the hole's inner block from the shell's
	// corner cells, so each region is resolved from its own seed.
	for _, rc := range [][2]int{{0, 1}, {0, 2}, {1, 0}, {1, 3}, {2, 0}, {2, 3}, {3, 1}, {3, 2}} {
		arr.Set(rc[0], rc[1], 1.0)
	}

	shell := Ring{Coords: []Coordinate{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}, CCW: true}
	hole := Ring{Coords: []Coordinate{{1, 1}, {1, 3}, {3, 3}, {3, 1}, {1, 1}}, CCW: false}
	ff := NewFloodFill(g, []Ring{shell, hole})
	ff.Flood(arr)

	// Cell (2,2) [center of grid, (x,y) cell covering (2,2)-(3,3)] sits
	// inside the hole and should resolve to 0.
	if got := arr.Get(1, 2); got != 0 {
		t.Errorf("cell inside the hole = %v, want 0", got)
	}
	// Cell (0,0) is inside the shell but outside the hole.
	if got := arr.Get(3, 0); got != 1 {
		t.Errorf("cell inside shell but outside hole = %v, want 1", got)
	}
}
