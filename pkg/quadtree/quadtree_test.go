package quadtree

import (
	"testing"

	"fishserver/pkg/geo"
)

func TestQueryCircleFindsNearbyItems(t *testing.T) {
	qt := New(geo.Rect{X: 0, Y: 0, W: 1000, H: 1000})
	qt.InsertAll([]Item{
		{Pos: geo.Vec2{X: 100, Y: 100}, Payload: "near"},
		{Pos: geo.Vec2{X: 900, Y: 900}, Payload: "far"},
		{Pos: geo.Vec2{X: 150, Y: 100}, Payload: "also-near"},
	})

	got := qt.QueryCircle(geo.Vec2{X: 100, Y: 100}, 100)
	payloads := map[string]bool{}
	for _, it := range got {
		payloads[it.Payload.(string)] = true
	}
	if !payloads["near"] || !payloads["also-near"] {
		t.Errorf("expected both nearby items, got %+v", got)
	}
	if payloads["far"] {
		t.Errorf("did not expect the far item, got %+v", got)
	}
}

func TestQueryCircleAccountsForItemRadius(t *testing.T) {
	qt := New(geo.Rect{X: 0, Y: 0, W: 1000, H: 1000})
	qt.Insert(Item{Pos: geo.Vec2{X: 200, Y: 0}, Radius: 50, Payload: "food"})

	// Query radius 100 from origin: distance is 200, but food's own radius
	// of 50 extends the effective reach to 150 which is still short of 200,
	// so this should NOT match.
	got := qt.QueryCircle(geo.Vec2{X: 0, Y: 0}, 100)
	if len(got) != 0 {
		t.Errorf("expected no match, got %+v", got)
	}

	// A larger query radius covers the gap once the item radius is added.
	got = qt.QueryCircle(geo.Vec2{X: 0, Y: 0}, 160)
	if len(got) != 1 {
		t.Errorf("expected one match once combined radius covers the distance, got %+v", got)
	}
}

func TestSubdivisionPreservesAllItems(t *testing.T) {
	qt := New(geo.Rect{X: 0, Y: 0, W: 100, H: 100})
	// Insert more than the node capacity clustered in one spot to force a
	// subdivide and confirm nothing is dropped.
	for i := 0; i < 20; i++ {
		qt.Insert(Item{Pos: geo.Vec2{X: 10, Y: 10}, Payload: i})
	}
	got := qt.QueryCircle(geo.Vec2{X: 10, Y: 10}, 1)
	if len(got) != 20 {
		t.Errorf("expected all 20 items to survive subdivision, got %d", len(got))
	}
}

func TestQueryOutsideBoundsIsEmpty(t *testing.T) {
	qt := New(geo.Rect{X: 0, Y: 0, W: 100, H: 100})
	qt.Insert(Item{Pos: geo.Vec2{X: 50, Y: 50}, Payload: "in"})
	got := qt.QueryCircle(geo.Vec2{X: 1000, Y: 1000}, 5)
	if len(got) != 0 {
		t.Errorf("expected no matches far outside bounds, got %+v", got)
	}
}
