package exactextract

import (
	"testing"

	"bitbucket.org/ctessum/sparse"
)

func TestSparseRasterSourceReadBox(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)
	data := sparse.ZerosDense(g.Rows, g.Cols)
	for i, v := range []float64{1, 2, 3, 4} {
		data.Elements[i] = v
	}

	src, err := NewSparseRasterSource(g, data, "ctm")
	if err != nil {
		t.Fatalf("NewSparseRasterSource: %v", err)
	}

	variant, err := src.ReadBox(g.Extent)
	if err != nil {
		t.Fatalf("ReadBox: %v", err)
	}
	if variant.Float64 == nil {
		t.Fatal("expected a Float64 variant")
	}
	if got := variant.Float64.Get(0, 0); got != 1 {
		t.Errorf("Get(0,0) = %v, want 1", got)
	}
	if got := variant.Float64.Get(1, 1); got != 4 {
		t.Errorf("Get(1,1) = %v, want 4", got)
	}
}

func TestSparseRasterSourceShapeMismatch(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)
	data := sparse.ZerosDense(3, 3)
	if _, err := NewSparseRasterSource(g, data, "bad"); err == nil {
		t.Error("expected a shape-mismatch error")
	}
}

func TestSparseRasterSourceNameAndThreadSafety(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 1, Ymax: 1}, 1, 1)
	data := sparse.ZerosDense(1, 1)
	src, err := NewSparseRasterSource(g, data, "ctm")
	if err != nil {
		t.Fatalf("NewSparseRasterSource: %v", err)
	}
	if !src.ThreadSafe() {
		t.Error("SparseRasterSource should be thread-safe")
	}
	src.SetName("renamed")
	if src.Name() != "renamed" {
		t.Errorf("Name() = %q, want %q", src.Name(), "renamed")
	}
}
