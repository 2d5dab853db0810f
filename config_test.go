package exactextract

import "testing"

const testConfigTOML = `
xmin = 0
ymin = 0
xmax = 4
ymax = 4
dx = 1
dy = 1
min_coverage_fraction = 0.1

[[operation]]
name = "pop_mean"
stat = "mean"
values = "population"

[[operation]]
name = "pop_weighted_mean"
stat = "weighted_mean"
values = "population"
weights = "area"
weight_type = "area_cartesian"
`

func TestLoadConfigParsesGridAndOperations(t *testing.T) {
	cfg, err := LoadConfig([]byte(testConfigTOML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	g := cfg.Grid()
	if g.Rows != 4 || g.Cols != 4 {
		t.Fatalf("Grid() = %dx%d, want 4x4", g.Rows, g.Cols)
	}
	if len(cfg.Operations) != 2 {
		t.Fatalf("got %d operations, want 2", len(cfg.Operations))
	}
	if cfg.MaxCellsInMemory != DefaultMaxCellsInMemory {
		t.Errorf("MaxCellsInMemory = %v, want default %v", cfg.MaxCellsInMemory, DefaultMaxCellsInMemory)
	}
}

func TestConfigResolveBindsOperations(t *testing.T) {
	cfg, err := LoadConfig([]byte(testConfigTOML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	g := cfg.Grid()
	popData := RasterVariant{Int32: NewRaster[int32](g)}
	areaData := RasterVariant{Float64: NewRaster[float64](g)}
	sources := map[string]RasterSource{
		"population": &MemoryRasterSource{GridVal: g, Data: popData, SrcName: "population"},
		"area":       &MemoryRasterSource{GridVal: g, Data: areaData, SrcName: "area"},
	}

	ops, err := cfg.Resolve(sources)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("got %d resolved operations, want 2", len(ops))
	}
	if ops[1].Weights == nil {
		t.Error("second operation should have a resolved weights source")
	}
	if ops[1].WeightType != WeightAreaCartesian {
		t.Errorf("WeightType = %v, want WeightAreaCartesian", ops[1].WeightType)
	}
}

func TestConfigResolveUnknownSourceErrors(t *testing.T) {
	cfg, err := LoadConfig([]byte(testConfigTOML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if _, err := cfg.Resolve(map[string]RasterSource{}); err == nil {
		t.Error("expected an error when a values source is missing")
	}
}
