package remoteworker

import (
	"testing"

	"github.com/isciences/exactextract"
)

func uniformVariant(g exactextract.Grid, value float64) exactextract.RasterVariant {
	r := exactextract.NewRaster[float64](g)
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			r.Set(i, j, value)
		}
	}
	return exactextract.RasterVariant{Float64: r}
}

func TestWorkerCalculateMean(t *testing.T) {
	g := exactextract.NewGrid(exactextract.Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)

	req := &TileRequest{
		Subgrid: g,
		Rings:   [][]exactextract.Coordinate{{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}, {X: 0, Y: 0}}},
		Values:  uniformVariant(g, 4.0),
		Stat:    "mean",
	}
	var resp TileResult
	w := &Worker{}
	if err := w.Calculate(req, &resp); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !resp.IsScalar {
		t.Fatal("expected a scalar result")
	}
	if resp.Scalar != 4.0 {
		t.Errorf("Scalar = %v, want 4.0", resp.Scalar)
	}
}

func TestWorkerCalculateSkipsNonIntersectingGeometry(t *testing.T) {
	g := exactextract.NewGrid(exactextract.Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)

	req := &TileRequest{
		Subgrid: g,
		Rings:   [][]exactextract.Coordinate{{{X: 10, Y: 10}, {X: 12, Y: 10}, {X: 12, Y: 12}, {X: 10, Y: 12}, {X: 10, Y: 10}}},
		Values:  uniformVariant(g, 1.0),
		Stat:    "mean",
	}
	var resp TileResult
	w := &Worker{}
	if err := w.Calculate(req, &resp); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !resp.Skipped {
		t.Fatal("expected Skipped to be true for a non-intersecting geometry")
	}
}

func TestWorkerCalculateArrayStat(t *testing.T) {
	g := exactextract.NewGrid(exactextract.Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)

	req := &TileRequest{
		Subgrid: g,
		Rings:   [][]exactextract.Coordinate{{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}, {X: 0, Y: 0}}},
		Values:  uniformVariant(g, 7.0),
		Stat:    "values",
	}
	var resp TileResult
	w := &Worker{}
	if err := w.Calculate(req, &resp); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if resp.IsScalar {
		t.Fatal("expected an array result, got scalar")
	}
	if len(resp.Array) != 4 {
		t.Fatalf("got %d values, want 4", len(resp.Array))
	}
	for _, v := range resp.Array {
		if v != 7.0 {
			t.Errorf("value = %v, want 7.0", v)
		}
	}
}
