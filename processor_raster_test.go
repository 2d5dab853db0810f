package exactextract

import (
	"testing"

	"github.com/ctessum/geom"
)

func TestRasterSequentialProcessorMean(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 4, Ymax: 4}, 1, 1)
	values := uniformValuesSource(g, 2.0, "v")
	op := &Operation{Name: "v_mean", Stat: "mean", Values: values}

	squareA := geom.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	squareB := geom.Polygon{{{2, 2}, {4, 2}, {4, 4}, {2, 4}, {2, 2}}}

	fa := NewMemoryFeature(squareA)
	fb := NewMemoryFeature(squareB)
	src := NewMemoryFeatureSource([]Feature{fa, fb})
	out := &MemoryOutputWriter{}

	proc := NewRasterSequentialProcessor(src, out)
	proc.AddOperation(op)
	proc.SetMaxCellsInMemory(4)

	if err := proc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Features) != 2 {
		t.Fatalf("got %d output features, want 2", len(out.Features))
	}
	for i, f := range out.Features {
		if got := f.GetDouble("v_mean"); !almostEqual(got, 2.0, 1e-9) {
			t.Errorf("feature %d: v_mean = %v, want 2.0", i, got)
		}
	}
}

func TestRasterSequentialProcessorNonPolygonalStillWritesRow(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)
	values := uniformValuesSource(g, 1.0, "v")
	op := &Operation{Name: "v_sum", Stat: "sum", Values: values}

	feature := NewMemoryFeature(geom.Point{X: 1, Y: 1})
	src := NewMemoryFeatureSource([]Feature{feature})
	out := &MemoryOutputWriter{}

	proc := NewRasterSequentialProcessor(src, out)
	proc.AddOperation(op)

	if err := proc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Features) != 1 {
		t.Fatalf("got %d output features, want 1", len(out.Features))
	}
}
