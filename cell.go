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

// cellLocation classifies a coordinate's relationship to a Cell's box.
type cellLocation int

const (
	locOutside cellLocation = iota
	locInside
	locBoundary
)

// Cell accumulates the Traversals of a polygon boundary through a single
// grid cell, used to determine whether the cell is wholly, partially, or
// not at all covered by the polygon.
type Cell struct {
	BoxVal     Box
	Traversals []Traversal
}

// NewCell creates a Cell over box, with no traversals recorded yet.
func NewCell(box Box) *Cell { return &Cell{BoxVal: box} }

// Box returns the cell's spatial extent.
func (c *Cell) Box() Box { return c.BoxVal }

// Width, Height, and Area forward to the cell's box.
func (c *Cell) Width() float64  { return c.BoxVal.Width() }
func (c *Cell) Height() float64 { return c.BoxVal.Height() }
func (c *Cell) Area() float64   { return c.BoxVal.Area() }

func (c *Cell) side(coord Coordinate) Side { return c.BoxVal.Side(coord) }

func (c *Cell) location(coord Coordinate) cellLocation {
	if c.BoxVal.StrictlyContains(coord) {
		return locInside
	}
	if c.BoxVal.Contains(coord) {
		return locBoundary
	}
	return locOutside
}

// LastTraversal returns a pointer to the most recently started traversal.
// It panics if no traversal has been started.
func (c *Cell) LastTraversal() *Traversal {
	if len(c.Traversals) == 0 {
		panic("exactextract: Cell has no traversals")
	}
	return &c.Traversals[len(c.Traversals)-1]
}

// traversalInProgress returns the traversal that a newly-seen coordinate
// should be added to, starting a new one if the last traversal has
// already exited or closed into a ring.
func (c *Cell) traversalInProgress() *Traversal {
	if len(c.Traversals) == 0 {
		c.Traversals = append(c.Traversals, Traversal{})
	} else {
		last := &c.Traversals[len(c.Traversals)-1]
		if last.Exited() || last.IsClosedRing() {
			c.Traversals = append(c.Traversals, Traversal{})
		}
	}
	return &c.Traversals[len(c.Traversals)-1]
}

// ForceExit marks the last traversal's last coordinate as an exit point,
// provided that coordinate lies on the cell's boundary.
func (c *Cell) ForceExit() {
	t := c.LastTraversal()
	if t.Exited() {
		return
	}
	last := t.LastCoordinate()
	if c.location(last) == locBoundary {
		t.ForceExit(c.side(last))
	}
}

// Take attempts to add c to the traversal in progress, or to start a new
// traversal with it. prevOriginal, if non-nil, is the last uninterpolated
// coordinate preceding c in the boundary being processed; it is used
// (instead of a possibly-interpolated previous traversal coordinate) to
// compute the exit point when c leaves the cell, since using an
// interpolated point can invert the covered fraction of adjacent cells.
//
// Take returns true if c lies inside or on the boundary of the cell.
func (c *Cell) Take(coord Coordinate, prevOriginal *Coordinate) bool {
	t := c.traversalInProgress()

	if t.Empty() {
		t.Enter(coord, c.side(coord))
		return true
	}

	if c.location(coord) != locOutside {
		t.Add(coord)
		if t.IsClosedRing() {
			t.ForceExit(SideNone)
		}
		return true
	}

	var from Coordinate
	if prevOriginal != nil {
		from = *prevOriginal
	} else {
		from = t.LastCoordinate()
	}
	x := c.BoxVal.Crossing(from, coord)
	t.Exit(x.C, x.S)

	return false
}

// TraversalLength returns the total length of all traversal paths
// recorded for this cell.
func (c *Cell) TraversalLength() float64 {
	total := 0.0
	for i := range c.Traversals {
		total += RingLength(c.Traversals[i].Coords)
	}
	return total
}

// Determined reports whether enough information has been recorded to know
// that this cell is at least partially covered by the polygon.
func (c *Cell) Determined() bool {
	for i := range c.Traversals {
		t := &c.Traversals[i]
		if !t.Traversed() && !t.IsClosedRing() {
			continue
		}
		if t.MultipleUniqueCoordinates() {
			return true
		}
	}
	return false
}

// coordLists returns the coordinate slices of every completed or
// ring-closing traversal, for ring assembly.
func (c *Cell) coordLists() [][]Coordinate {
	var lists [][]Coordinate
	for i := range c.Traversals {
		t := &c.Traversals[i]
		if t.Traversed() || t.IsClosedRing() {
			lists = append(lists, t.Coords)
		}
	}
	return lists
}

// CoveredFraction returns the fraction of the cell's area covered by the
// polygon whose boundary produced this cell's traversals.
func (c *Cell) CoveredFraction() float64 {
	return LeftHandArea(c.BoxVal, c.coordLists()) / c.Area()
}

// CoveredRings returns the closed rings (including synthetic corner-chain
// rings) describing the portion of the cell covered by the polygon.
func (c *Cell) CoveredRings() [][]Coordinate {
	return LeftHandRings(c.BoxVal, c.coordLists())
}
