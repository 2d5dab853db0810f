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

// Ring is an assembled closed coordinate ring together with the
// orientation under which it was traced: CCW rings are outer shells, CW
// rings are holes.
type Ring struct {
	Coords []Coordinate
	CCW    bool
}

func hasMultipleUniqueCoordinates(coords []Coordinate) bool {
	for i := 1; i < len(coords); i++ {
		if coords[i] != coords[0] {
			return true
		}
	}
	return false
}

func ringIsCCW(ring []Coordinate) bool { return SignedArea(ring) < 0 }

// coordinateChain is a single Traversal's path through a cell, annotated
// with its perimeter-distance entry/exit measures so that chains can be
// stitched together in counter-clockwise order around the box.
type coordinateChain struct {
	start, stop float64
	coords      []Coordinate
	visited     bool
}

func nextChain(chains []*coordinateChain, chain, kill *coordinateChain, perimeter float64) *coordinateChain {
	var best *coordinateChain
	minDistance := math.Inf(1)

	for _, candidate := range chains {
		if candidate.visited && candidate != kill {
			continue
		}
		distance := PerimeterDistanceCCW(chain.stop, candidate.start, perimeter)
		if distance < minDistance {
			minDistance = distance
			best = candidate
		}
	}

	return best
}

// visitRings identifies the counter-clockwise and clockwise rings formed
// by coordLists (each either an open traversal of box's boundary or an
// already-closed ring) together with box's own boundary, and calls visit
// for each with its orientation (true if CCW).
func visitRings(box Box, coordLists [][]Coordinate, visit func(ring []Coordinate, ccw bool)) {
	var chains []*coordinateChain

	for _, coords := range coordLists {
		if !hasMultipleUniqueCoordinates(coords) {
			continue
		}
		if len(coords) > 0 && coords[0] == coords[len(coords)-1] {
			visit(coords, ringIsCCW(coords))
			continue
		}
		start := PerimeterDistance(box, coords[0])
		stop := PerimeterDistance(box, coords[len(coords)-1])
		chains = append(chains, &coordinateChain{start: start, stop: stop, coords: coords})
	}

	height := box.Height()
	width := box.Width()
	perimeter := box.Perimeter()

	bottomLeft := []Coordinate{{X: box.Xmin, Y: box.Ymin}}
	topLeft := []Coordinate{{X: box.Xmin, Y: box.Ymax}}
	topRight := []Coordinate{{X: box.Xmax, Y: box.Ymax}}
	bottomRight := []Coordinate{{X: box.Xmax, Y: box.Ymin}}

	chains = append(chains,
		&coordinateChain{start: 0, stop: 0, coords: bottomLeft},
		&coordinateChain{start: height, stop: height, coords: topLeft},
		&coordinateChain{start: height + width, stop: height + width, coords: topRight},
		&coordinateChain{start: 2*height + width, stop: 2*height + width, coords: bottomRight},
	)

	for _, start := range chains {
		if start.visited || len(start.coords) == 1 {
			continue
		}

		var coords []Coordinate
		chain := start
		for {
			chain.visited = true
			coords = append(coords, chain.coords...)
			chain = nextChain(chains, chain, start, perimeter)
			if chain == start {
				break
			}
		}
		coords = append(coords, coords[0])

		if hasMultipleUniqueCoordinates(coords) {
			visit(coords, true)
		}
	}
}

// LeftHandArea returns the area of box covered by the polygon whose
// boundary produced coordLists, under the rule that a counter-clockwise
// ring adds area and a clockwise ring (a hole) subtracts it. It panics if
// coordLists contains no usable ring, which means coverage is either
// exactly 0 or exactly box.Area() and must be resolved by the caller
// before calling LeftHandArea (see Cell.Determined).
func LeftHandArea(box Box, coordLists [][]Coordinate) float64 {
	ccwSum := 0.0
	cwSum := 0.0
	found := false

	visitRings(box, coordLists, func(ring []Coordinate, ccw bool) {
		found = true
		if ccw {
			ccwSum += RingArea(ring)
		} else {
			cwSum += RingArea(ring)
		}
	})

	if !found {
		panic("exactextract: cannot determine coverage fraction from an undetermined cell")
	}

	if ccwSum == 0 && cwSum > 0 {
		return box.Area() - cwSum
	}
	return ccwSum - cwSum
}

// LeftHandRings assembles the shells (CCW) and holes (CW) rings covering
// box from coordLists, the same way LeftHandArea does, but returns the
// rings themselves rather than just their area. Collapsed (zero-area)
// rings are omitted. If only holes are found, box's own boundary is
// returned as the enclosing shell.
func LeftHandRings(box Box, coordLists [][]Coordinate) []Ring {
	var shells, holes []Ring
	found := false

	visitRings(box, coordLists, func(ring []Coordinate, ccw bool) {
		found = true
		if RingArea(ring) == 0 {
			return
		}
		r := Ring{Coords: ring, CCW: ccw}
		if ccw {
			shells = append(shells, r)
		} else {
			holes = append(holes, r)
		}
	})

	if !found {
		panic("exactextract: cannot determine coverage fraction from an undetermined cell")
	}

	if len(shells) == 0 && len(holes) > 0 {
		shells = append(shells, Ring{
			Coords: []Coordinate{
				{X: box.Xmin, Y: box.Ymin},
				{X: box.Xmax, Y: box.Ymin},
				{X: box.Xmax, Y: box.Ymax},
				{X: box.Xmin, Y: box.Ymax},
				{X: box.Xmin, Y: box.Ymin},
			},
			CCW: true,
		})
	}

	return append(shells, holes...)
}
