package exactextract

import "testing"

func TestRasterVariantCrop(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 4, Ymax: 4}, 1, 1)
	full := NewRasterFromData[int32](g, []int32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	v := RasterVariant{Int32: full}

	cropped := v.Crop(Box{Xmin: 1, Ymin: 1, Xmax: 3, Ymax: 3})
	if cropped.Grid().Rows != 2 || cropped.Grid().Cols != 2 {
		t.Fatalf("cropped grid = %dx%d, want 2x2", cropped.Grid().Rows, cropped.Grid().Cols)
	}
	if got := cropped.GetFloat64(0, 0); got != 6 {
		t.Errorf("cropped(0,0) = %v, want 6", got)
	}
}

func TestMemoryRasterSourceReadBox(t *testing.T) {
	g := NewGrid(Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}, 1, 1)
	data := NewRasterFromData[float64](g, []float64{1, 2, 3, 4})
	src := &MemoryRasterSource{GridVal: g, Data: RasterVariant{Float64: data}, SrcName: "test"}

	if src.Name() != "test" {
		t.Errorf("Name() = %v, want test", src.Name())
	}

	v, err := src.ReadBox(Box{Xmin: 0, Ymin: 0, Xmax: 1, Ymax: 1})
	if err != nil {
		t.Fatalf("ReadBox: %v", err)
	}
	if v.Grid().Rows != 1 || v.Grid().Cols != 1 {
		t.Fatalf("ReadBox grid = %dx%d, want 1x1", v.Grid().Rows, v.Grid().Cols)
	}
}

func TestMemoryFeatureSetAndCopyTo(t *testing.T) {
	f := NewMemoryFeature(nil)
	f.SetDouble("area", 12.5)
	f.SetString("name", "parcel-1")

	if f.GetDouble("area") != 12.5 {
		t.Errorf("GetDouble(area) = %v, want 12.5", f.GetDouble("area"))
	}
	if vt, ok := f.FieldType("area"); !ok || vt != ValueDouble {
		t.Errorf("FieldType(area) = (%v, %v), want (ValueDouble, true)", vt, ok)
	}

	dst := NewMemoryFeature(nil)
	f.CopyTo(dst)
	if dst.GetDouble("area") != 12.5 || dst.GetString("name") != "parcel-1" {
		t.Error("CopyTo did not carry all fields to dst")
	}
}

func TestMemoryFeatureSourceIteration(t *testing.T) {
	features := []Feature{NewMemoryFeature(nil), NewMemoryFeature(nil)}
	src := NewMemoryFeatureSource(features)

	count, ok := src.Count()
	if !ok || count != 2 {
		t.Fatalf("Count() = (%v, %v), want (2, true)", count, ok)
	}

	n := 0
	for src.Next() {
		_ = src.Feature()
		n++
	}
	if n != 2 {
		t.Errorf("iterated %d features, want 2", n)
	}
}

func TestMemoryOutputWriter(t *testing.T) {
	w := &MemoryOutputWriter{}
	f := w.CreateFeature()
	f.SetDouble("mean", 1.5)
	if err := w.Write(f); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(w.Features) != 1 {
		t.Fatalf("got %d written features, want 1", len(w.Features))
	}
}
