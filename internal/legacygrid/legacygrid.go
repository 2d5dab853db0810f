// Package legacygrid adapts the fixed, hardcoded-origin regular grid
// description used by older CTM output (uniform Dx/Dy, Nx by Ny cells,
// no rotation or projection metadata carried alongside the array) into
// a exactextract.Grid that the rest of the package can crop, subdivide,
// and intersect against vector features.
package legacygrid

import (
	"fmt"

	"github.com/isciences/exactextract"
)

// Descriptor is the handful of numbers a legacy CTM grid file carries:
// the lower-left corner, the cell size, and the cell counts. Real files
// of this vintage have no projection or rotation metadata; callers are
// expected to already know the two share a coordinate system.
type Descriptor struct {
	Xo, Yo float64
	Dx, Dy float64
	Nx, Ny int
}

// FromCTMDescriptor builds a Grid spanning [Xo, Xo+Nx*Dx] x [Yo, Yo+Ny*Dy]
// with Nx by Ny uniform cells.
func FromCTMDescriptor(d Descriptor) (exactextract.Grid, error) {
	if d.Dx <= 0 || d.Dy <= 0 {
		return exactextract.Grid{}, fmt.Errorf("legacygrid: cell size must be positive, got dx=%v dy=%v", d.Dx, d.Dy)
	}
	if d.Nx <= 0 || d.Ny <= 0 {
		return exactextract.Grid{}, fmt.Errorf("legacygrid: cell counts must be positive, got nx=%v ny=%v", d.Nx, d.Ny)
	}

	extent := exactextract.Box{
		Xmin: d.Xo,
		Ymin: d.Yo,
		Xmax: d.Xo + float64(d.Nx)*d.Dx,
		Ymax: d.Yo + float64(d.Ny)*d.Dy,
	}
	return exactextract.NewGrid(extent, d.Dx, d.Dy), nil
}
