package exactextract

import (
	"testing"

	"github.com/ctessum/geom"
)

func TestRasterParallelProcessorMean(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 4, Ymax: 4}, 1, 1)
	values := uniformValuesSource(g, 6.0, "v")
	op := &Operation{Name: "v_mean", Stat: "mean", Values: values}

	squareA := geom.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	squareB := geom.Polygon{{{2, 2}, {4, 2}, {4, 4}, {2, 4}, {2, 2}}}

	fa := NewMemoryFeature(squareA)
	fb := NewMemoryFeature(squareB)
	src := NewMemoryFeatureSource([]Feature{fa, fb})
	out := &MemoryOutputWriter{}

	proc := NewRasterParallelProcessor(src, out, 4)
	proc.AddOperation(op)
	proc.SetMaxCellsInMemory(2)

	if err := proc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Features) != 2 {
		t.Fatalf("got %d output features, want 2", len(out.Features))
	}
	for i, f := range out.Features {
		if got := f.GetDouble("v_mean"); !almostEqual(got, 6.0, 1e-9) {
			t.Errorf("feature %d: v_mean = %v, want 6.0", i, got)
		}
	}
}

func TestRasterParallelProcessorFeatureSpanningMultipleTiles(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 4, Ymax: 4}, 1, 1)
	values := uniformValuesSource(g, 3.0, "v")
	op := &Operation{Name: "v_sum", Stat: "sum", Values: values}

	big := geom.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}
	feature := NewMemoryFeature(big)
	src := NewMemoryFeatureSource([]Feature{feature})
	out := &MemoryOutputWriter{}

	proc := NewRasterParallelProcessor(src, out, 2)
	proc.AddOperation(op)
	proc.SetMaxCellsInMemory(2) // forces several tiles, all touching the one feature

	if err := proc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.Features[0].GetDouble("v_sum"); !almostEqual(got, 48.0, 1e-9) {
		t.Errorf("v_sum = %v, want 48.0 (16 cells * 3.0)", got)
	}
}
