package exactextract

import "testing"

func TestCellClosedRingCoveredFraction(t *testing.T) {
	box := Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}
	c := NewCell(box)

	ring := []Coordinate{{0, 0}, {2, 0}, {0, 2}, {0, 0}}
	for _, coord := range ring {
		c.Take(coord, nil)
	}

	if !c.Determined() {
		t.Fatal("expected cell to be determined after a closed ring")
	}

	got := c.CoveredFraction()
	if got != 0.5 {
		t.Errorf("CoveredFraction = %v, want 0.5", got)
	}
}

func TestCellTakeExitsOnCrossing(t *testing.T) {
	box := Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}
	c := NewCell(box)

	if inside := c.Take(Coordinate{1, 0}, nil); !inside {
		t.Fatal("entry coordinate on the boundary should be taken")
	}
	if inside := c.Take(Coordinate{1, 3}, nil); inside {
		t.Fatal("coordinate outside the box should not be taken")
	}

	last := c.LastTraversal()
	if !last.Exited() {
		t.Fatal("expected traversal to have exited")
	}
	want := Coordinate{X: 1, Y: 2}
	if last.ExitCoordinate() != want {
		t.Errorf("exit coordinate = %+v, want %+v", last.ExitCoordinate(), want)
	}
	if last.ExitSide != SideTop {
		t.Errorf("exit side = %v, want TOP", last.ExitSide)
	}
}

func TestCellForceExitOnBoundary(t *testing.T) {
	box := Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}
	c := NewCell(box)

	c.Take(Coordinate{0, 0}, nil)
	c.Take(Coordinate{2, 0}, nil)
	c.ForceExit()

	if !c.LastTraversal().Exited() {
		t.Error("ForceExit should mark a boundary-resting traversal as exited")
	}
}

func TestCellUndeterminedWithoutTraversal(t *testing.T) {
	box := Box{Xmin: 0, Ymin: 0, Xmax: 2, Ymax: 2}
	c := NewCell(box)
	if c.Determined() {
		t.Error("a cell with no traversals should not be determined")
	}
}
