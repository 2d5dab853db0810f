package legacygrid

import "testing"

func TestFromCTMDescriptor(t *testing.T) {
	d := Descriptor{Xo: -126000, Yo: -1728000, Dx: 12000, Dy: 12000, Nx: 10, Ny: 5}
	g, err := FromCTMDescriptor(d)
	if err != nil {
		t.Fatalf("FromCTMDescriptor: %v", err)
	}
	if g.Rows != 5 || g.Cols != 10 {
		t.Fatalf("got rows=%d cols=%d, want rows=5 cols=10", g.Rows, g.Cols)
	}
	if g.Extent.Xmin != d.Xo || g.Extent.Ymin != d.Yo {
		t.Fatalf("unexpected origin: %+v", g.Extent)
	}
	wantXmax := d.Xo + float64(d.Nx)*d.Dx
	if g.Extent.Xmax != wantXmax {
		t.Errorf("Xmax = %v, want %v", g.Extent.Xmax, wantXmax)
	}
}

func TestFromCTMDescriptorRejectsNonPositiveCellSize(t *testing.T) {
	d := Descriptor{Xo: 0, Yo: 0, Dx: 0, Dy: 12000, Nx: 10, Ny: 5}
	if _, err := FromCTMDescriptor(d); err == nil {
		t.Fatal("expected error for zero Dx")
	}
}

func TestFromCTMDescriptorRejectsNonPositiveCellCounts(t *testing.T) {
	d := Descriptor{Xo: 0, Yo: 0, Dx: 12000, Dy: 12000, Nx: 0, Ny: 5}
	if _, err := FromCTMDescriptor(d); err == nil {
		t.Fatal("expected error for zero Nx")
	}
}
