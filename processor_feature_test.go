package exactextract

import (
	"testing"

	"github.com/ctessum/geom"
)

func uniformValuesSource(g Grid, value float64, name string) *MemoryRasterSource {
	r := NewRaster[float64](g)
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			r.Set(i, j, value)
		}
	}
	return &MemoryRasterSource{GridVal: g, Data: RasterVariant{Float64: r}, SrcName: name, Parallel: true}
}

func TestFeatureSequentialProcessorMean(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)
	values := uniformValuesSource(g, 3.0, "v")

	op := &Operation{Name: "v_mean", Stat: "mean", Values: values}

	square := geom.Polygon{{
		{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0},
	}}
	feature := NewMemoryFeature(square)

	src := NewMemoryFeatureSource([]Feature{feature})
	out := &MemoryOutputWriter{}

	proc := NewFeatureSequentialProcessor(src, out)
	proc.AddOperation(op)

	if err := proc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Features) != 1 {
		t.Fatalf("got %d output features, want 1", len(out.Features))
	}
	if got := out.Features[0].GetDouble("v_mean"); !almostEqual(got, 3.0, 1e-9) {
		t.Errorf("v_mean = %v, want 3.0", got)
	}
}

func TestFeatureSequentialProcessorSkipsNonPolygonal(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)
	values := uniformValuesSource(g, 1.0, "v")
	op := &Operation{Name: "v_sum", Stat: "sum", Values: values}

	feature := NewMemoryFeature(geom.Point{X: 1, Y: 1})
	src := NewMemoryFeatureSource([]Feature{feature})
	out := &MemoryOutputWriter{}

	proc := NewFeatureSequentialProcessor(src, out)
	proc.AddOperation(op)

	if err := proc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Features) != 1 {
		t.Fatalf("got %d output features, want 1", len(out.Features))
	}
}

func TestFeatureSequentialProcessorSharesAccumulatorKey(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)
	values := uniformValuesSource(g, 5.0, "v")

	mean := &Operation{Name: "v_mean", Stat: "mean", Values: values}
	sum := &Operation{Name: "v_sum", Stat: "sum", Values: values}

	square := geom.Polygon{{
		{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0},
	}}
	feature := NewMemoryFeature(square)
	src := NewMemoryFeatureSource([]Feature{feature})
	out := &MemoryOutputWriter{}

	proc := NewFeatureSequentialProcessor(src, out)
	proc.AddOperation(mean)
	proc.AddOperation(sum)

	if err := proc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	f := out.Features[0]
	if got := f.GetDouble("v_mean"); !almostEqual(got, 5.0, 1e-9) {
		t.Errorf("v_mean = %v, want 5.0", got)
	}
	if got := f.GetDouble("v_sum"); !almostEqual(got, 20.0, 1e-9) {
		t.Errorf("v_sum = %v, want 20.0", got)
	}
}
