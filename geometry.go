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

import "math"

// Coordinate is a single planar point. Equality is bit-exact; use
// CoordinateEqual with a tolerance when approximate comparison is needed.
type Coordinate struct {
	X, Y float64
}

// CoordinateEqual reports whether two coordinates are within tol of each
// other in both dimensions.
func CoordinateEqual(a, b Coordinate, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// Side identifies which edge of a Box a point lies on, if any.
type Side int

const (
	// SideNone means the point is not exactly on the boundary of the box
	// (it may be strictly inside, strictly outside, or the box may be
	// degenerate).
	SideNone Side = iota
	SideLeft
	SideRight
	SideTop
	SideBottom
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "LEFT"
	case SideRight:
		return "RIGHT"
	case SideTop:
		return "TOP"
	case SideBottom:
		return "BOTTOM"
	default:
		return "NONE"
	}
}

// Box is an axis-aligned rectangle. The invariant Xmin <= Xmax && Ymin <=
// Ymax holds for any non-empty box; an empty box is represented by any
// Xmin > Xmax.
type Box struct {
	Xmin, Ymin, Xmax, Ymax float64
}

// EmptyBox returns a canonical empty box.
func EmptyBox() Box {
	return Box{Xmin: math.Inf(1), Ymin: math.Inf(1), Xmax: math.Inf(-1), Ymax: math.Inf(-1)}
}

// IsEmpty reports whether b represents an empty extent.
func (b Box) IsEmpty() bool {
	return b.Xmin > b.Xmax || b.Ymin > b.Ymax
}

// Width returns Xmax - Xmin.
func (b Box) Width() float64 { return b.Xmax - b.Xmin }

// Height returns Ymax - Ymin.
func (b Box) Height() float64 { return b.Ymax - b.Ymin }

// Area returns the box's area; zero for an empty box.
func (b Box) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Width() * b.Height()
}

// Perimeter returns the box's perimeter.
func (b Box) Perimeter() float64 {
	return 2*b.Width() + 2*b.Height()
}

// UpperLeft, UpperRight, LowerLeft, LowerRight return the box's corners.
func (b Box) UpperLeft() Coordinate  { return Coordinate{b.Xmin, b.Ymax} }
func (b Box) UpperRight() Coordinate { return Coordinate{b.Xmax, b.Ymax} }
func (b Box) LowerLeft() Coordinate  { return Coordinate{b.Xmin, b.Ymin} }
func (b Box) LowerRight() Coordinate { return Coordinate{b.Xmax, b.Ymin} }

// Contains reports whether c lies within the closed box (boundary
// inclusive).
func (b Box) Contains(c Coordinate) bool {
	return c.X >= b.Xmin && c.X <= b.Xmax && c.Y >= b.Ymin && c.Y <= b.Ymax
}

// StrictlyContains reports whether c lies strictly within the box,
// excluding the boundary.
func (b Box) StrictlyContains(c Coordinate) bool {
	return c.X > b.Xmin && c.X < b.Xmax && c.Y > b.Ymin && c.Y < b.Ymax
}

// Side returns LEFT/RIGHT/TOP/BOTTOM if c lies exactly on the
// corresponding edge of b, or NONE otherwise. Corners resolve with
// priority LEFT > RIGHT > BOTTOM > TOP for determinism.
func (b Box) Side(c Coordinate) Side {
	switch {
	case c.X == b.Xmin:
		return SideLeft
	case c.X == b.Xmax:
		return SideRight
	case c.Y == b.Ymin:
		return SideBottom
	case c.Y == b.Ymax:
		return SideTop
	default:
		return SideNone
	}
}

// Crossing is a point where a segment exits a Box, together with the Side
// it exits through.
type Crossing struct {
	S Side
	C Coordinate
}

// Crossing computes the point where the segment from c1 (inside or on the
// boundary of b) to c2 (strictly outside b) exits b, along with the exit
// Side. Only the two endpoints are used, never an interpolated
// intermediate point: using an interpolated previous point causes
// off-by-one errors in adjacent-cell selection. Ties, where the segment
// exits exactly through a corner, are resolved in favor of the vertical
// (LEFT/RIGHT) side.
func (b Box) Crossing(c1, c2 Coordinate) Crossing {
	dx := c2.X - c1.X
	dy := c2.Y - c1.Y

	var tx, ty float64 = math.Inf(1), math.Inf(1)
	var sx, sy Side = SideNone, SideNone

	if dx > 0 {
		tx = (b.Xmax - c1.X) / dx
		sx = SideRight
	} else if dx < 0 {
		tx = (b.Xmin - c1.X) / dx
		sx = SideLeft
	}

	if dy > 0 {
		ty = (b.Ymax - c1.Y) / dy
		sy = SideTop
	} else if dy < 0 {
		ty = (b.Ymin - c1.Y) / dy
		sy = SideBottom
	}

	var t float64
	var s Side

	switch {
	case sx == SideNone:
		t, s = ty, sy
	case sy == SideNone:
		t, s = tx, sx
	case tx <= ty:
		// Tie or vertical side exits first: prefer vertical side.
		t, s = tx, sx
	default:
		t, s = ty, sy
	}

	return Crossing{
		S: s,
		C: Coordinate{X: c1.X + t*dx, Y: c1.Y + t*dy},
	}
}

// SignedArea computes the signed area of a ring using the shoelace
// variant expressed relative to the first vertex,
// (x_i - x_0)*(y_{i-1} - y_{i+1}), which reduces catastrophic cancellation
// for rings far from the origin. Returns 0 for rings with fewer than 3
// coordinates. Positive area indicates a clockwise ring, negative area a
// counter-clockwise one.
func SignedArea(ring []Coordinate) float64 {
	if len(ring) < 3 {
		return 0
	}

	sum := 0.0
	x0 := ring[0].X
	for i := 1; i < len(ring)-1; i++ {
		x := ring[i].X - x0
		y1 := ring[i+1].Y
		y2 := ring[i-1].Y
		sum += x * (y2 - y1)
	}
	return sum / 2.0
}

// RingArea returns the unsigned area of ring.
func RingArea(ring []Coordinate) float64 {
	return math.Abs(SignedArea(ring))
}

// RingLength returns the total length of the path described by coords.
func RingLength(coords []Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(coords); i++ {
		dx := coords[i].X - coords[i-1].X
		dy := coords[i].Y - coords[i-1].Y
		total += math.Hypot(dx, dy)
	}
	return total
}

// PerimeterDistance measures the distance from the lower-left corner of b,
// around its boundary, to c, travelling clockwise (up the left side first).
// c must lie exactly on the boundary of b.
func PerimeterDistance(b Box, c Coordinate) float64 {
	switch {
	case c.X == b.Xmin:
		// Left, heading up from the bottom-left corner.
		return c.Y - b.Ymin
	case c.Y == b.Ymax:
		// Top
		return b.Height() + c.X - b.Xmin
	case c.X == b.Xmax:
		// Right
		return b.Height() + b.Width() + b.Ymax - c.Y
	case c.Y == b.Ymin:
		// Bottom
		return b.Width() + 2*b.Height() + b.Xmax - c.X
	default:
		panic("exactextract: PerimeterDistance called with a coordinate not on the box boundary")
	}
}

// PerimeterDistanceCCW returns the counter-clockwise distance from
// measure1 to measure2 along a boundary of the given total perimeter.
func PerimeterDistanceCCW(measure1, measure2, perimeter float64) float64 {
	if measure2 <= measure1 {
		return measure1 - measure2
	}
	return perimeter + measure1 - measure2
}

// Intersects reports whether b and other share any area or boundary.
func (b Box) Intersects(other Box) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	return b.Xmin <= other.Xmax && b.Xmax >= other.Xmin &&
		b.Ymin <= other.Ymax && b.Ymax >= other.Ymin
}

// ContainsBox reports whether other is fully contained within b.
func (b Box) ContainsBox(other Box) bool {
	if other.IsEmpty() {
		return true
	}
	return other.Xmin >= b.Xmin && other.Xmax <= b.Xmax &&
		other.Ymin >= b.Ymin && other.Ymax <= b.Ymax
}

// Intersection returns the box representing the overlap of b and other.
// The result is an empty box (per IsEmpty) if they do not intersect.
func (b Box) Intersection(other Box) Box {
	xmin := math.Max(b.Xmin, other.Xmin)
	ymin := math.Max(b.Ymin, other.Ymin)
	xmax := math.Min(b.Xmax, other.Xmax)
	ymax := math.Min(b.Ymax, other.Ymax)
	return Box{Xmin: xmin, Ymin: ymin, Xmax: xmax, Ymax: ymax}
}

// Union returns the smallest box containing both b and other.
func (b Box) Union(other Box) Box {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return Box{
		Xmin: math.Min(b.Xmin, other.Xmin),
		Ymin: math.Min(b.Ymin, other.Ymin),
		Xmax: math.Max(b.Xmax, other.Xmax),
		Ymax: math.Max(b.Ymax, other.Ymax),
	}
}

// Expand returns b grown by margin in every direction.
func (b Box) Expand(margin float64) Box {
	return Box{Xmin: b.Xmin - margin, Ymin: b.Ymin - margin, Xmax: b.Xmax + margin, Ymax: b.Ymax + margin}
}
