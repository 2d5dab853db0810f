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

// Traversal records one contiguous run of a ring's boundary through a
// single grid cell: the point (and Side) where it entered the cell, the
// coordinates traced while inside, and the point (and Side) where it
// exited, if it has.
type Traversal struct {
	Coords    []Coordinate
	EntrySide Side
	ExitSide  Side
}

// Empty reports whether no coordinates have been added yet.
func (t *Traversal) Empty() bool { return len(t.Coords) == 0 }

// Add appends c to the traversal without changing its entry/exit state.
func (t *Traversal) Add(c Coordinate) { t.Coords = append(t.Coords, c) }

// Enter starts the traversal at c, entering through side s. It panics if
// the traversal has already been started.
func (t *Traversal) Enter(c Coordinate, s Side) {
	if len(t.Coords) != 0 {
		panic("exactextract: Traversal already started")
	}
	t.Add(c)
	t.EntrySide = s
}

// Exit appends c as the traversal's exit coordinate through side s.
func (t *Traversal) Exit(c Coordinate, s Side) {
	t.Add(c)
	t.ExitSide = s
}

// ForceExit marks the traversal as having exited through s without adding
// a new coordinate, used when a closed ring completes inside a cell.
func (t *Traversal) ForceExit(s Side) { t.ExitSide = s }

// IsClosedRing reports whether the traversal's coordinates already form a
// closed ring (at least 3 points, first == last).
func (t *Traversal) IsClosedRing() bool {
	return len(t.Coords) >= 3 && t.Coords[0] == t.Coords[len(t.Coords)-1]
}

// Entered reports whether the traversal has recorded an entry side.
func (t *Traversal) Entered() bool { return t.EntrySide != SideNone }

// Exited reports whether the traversal has recorded an exit side.
func (t *Traversal) Exited() bool { return t.ExitSide != SideNone }

// Traversed reports whether the traversal has both entered and exited.
func (t *Traversal) Traversed() bool { return t.Entered() && t.Exited() }

// MultipleUniqueCoordinates reports whether the traversal visits more
// than one distinct coordinate.
func (t *Traversal) MultipleUniqueCoordinates() bool {
	for i := 1; i < len(t.Coords); i++ {
		if t.Coords[0] != t.Coords[i] {
			return true
		}
	}
	return false
}

// LastCoordinate returns the most recently added coordinate.
func (t *Traversal) LastCoordinate() Coordinate {
	return t.Coords[len(t.Coords)-1]
}

// ExitCoordinate returns the traversal's exit coordinate. It panics if the
// traversal has not exited.
func (t *Traversal) ExitCoordinate() Coordinate {
	if !t.Exited() {
		panic("exactextract: can't get exit coordinate from an incomplete traversal")
	}
	return t.LastCoordinate()
}
