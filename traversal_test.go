package exactextract

import "testing"

func TestTraversalEnterAddExit(t *testing.T) {
	var tr Traversal
	if !tr.Empty() {
		t.Fatal("new traversal should be empty")
	}

	tr.Enter(Coordinate{0, 0}, SideLeft)
	tr.Add(Coordinate{0, 1})
	tr.Exit(Coordinate{1, 1}, SideTop)

	if !tr.Traversed() {
		t.Error("expected traversal to report Traversed() after enter+exit")
	}
	if tr.ExitCoordinate() != (Coordinate{1, 1}) {
		t.Errorf("ExitCoordinate = %+v, want {1,1}", tr.ExitCoordinate())
	}
}

func TestTraversalEnterTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic from calling Enter twice")
		}
	}()
	var tr Traversal
	tr.Enter(Coordinate{0, 0}, SideLeft)
	tr.Enter(Coordinate{1, 1}, SideTop)
}

func TestTraversalIsClosedRing(t *testing.T) {
	var tr Traversal
	tr.Enter(Coordinate{0, 0}, SideLeft)
	tr.Add(Coordinate{0, 1})
	tr.Add(Coordinate{1, 1})
	tr.Add(Coordinate{0, 0})

	if !tr.IsClosedRing() {
		t.Error("expected IsClosedRing to be true once first==last with >=3 points")
	}
}

func TestTraversalMultipleUniqueCoordinates(t *testing.T) {
	var tr Traversal
	tr.Enter(Coordinate{0, 0}, SideLeft)
	tr.Add(Coordinate{0, 0})
	if tr.MultipleUniqueCoordinates() {
		t.Error("expected false when all coordinates are identical")
	}
	tr.Add(Coordinate{1, 1})
	if !tr.MultipleUniqueCoordinates() {
		t.Error("expected true once a distinct coordinate is added")
	}
}
