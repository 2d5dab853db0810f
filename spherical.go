/*
Copyright © 2013 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package exactextract

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// wgs84AuthalicRadiusMeters is the radius of the sphere with the same
// surface area as the WGS84 ellipsoid.
const wgs84AuthalicRadiusMeters = 6371007.1809

var northPole = s2.PointFromLatLng(s2.LatLngFromDegrees(90, 0))

// capAreaFraction returns the steradians of the full-longitude spherical
// cap extending from the north pole down to latDeg.
func capAreaFraction(latDeg float64) float64 {
	latRad := latDeg * math.Pi / 180
	colatitude := math.Pi/2 - latRad
	cap := s2.CapFromCenterAngle(northPole, s1.Angle(colatitude))
	return cap.Area()
}

// bandArea returns the surface area, in radius's squared units, of a cell
// spanning dxRad radians of longitude between latBottomDeg and latTopDeg.
func bandArea(latBottomDeg, latTopDeg, dxRad, radius float64) float64 {
	bandFraction := capAreaFraction(latBottomDeg) - capAreaFraction(latTopDeg)
	lonFraction := dxRad / (2 * math.Pi)
	return bandFraction * lonFraction * radius * radius
}

// RowAreaTable returns, for each row of grid (assumed to carry geographic
// longitude/latitude degree coordinates), the surface area on the WGS84
// authalic sphere of a single cell in that row. Every cell in a given row
// of a regular lon/lat grid shares the same longitudinal width, so area
// varies only by row.
func RowAreaTable(grid Grid) []float64 {
	dxRad := grid.Dx * math.Pi / 180
	table := make([]float64, grid.Rows)
	for row := 0; row < grid.Rows; row++ {
		cell := grid.Cell(row, 0)
		table[row] = bandArea(cell.Ymin, cell.Ymax, dxRad, wgs84AuthalicRadiusMeters)
	}
	return table
}

// AreaRaster returns a raster over grid whose value at every cell is that
// cell's WGS84 spherical surface area, for use as a weighting raster in
// area-weighted statistics.
func AreaRaster(grid Grid) *Raster[float64] {
	table := RowAreaTable(grid)
	r := NewRaster[float64](grid)
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			r.Set(row, col, table[row])
		}
	}
	return r
}
