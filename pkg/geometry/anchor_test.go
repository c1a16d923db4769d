package geometry

import (
	"math"
	"testing"
)

func TestAnchorPoint(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 100, H: 40}
	tests := []struct {
		side Side
		want Point
	}{
		{SideTop, Point{60, 20}},
		{SideRight, Point{110, 40}},
		{SideBottom, Point{60, 60}},
		{SideLeft, Point{10, 40}},
		{Side("middle"), Point{60, 40}},
	}
	for _, tt := range tests {
		t.Run(string(tt.side), func(t *testing.T) {
			if got := AnchorPoint(r, tt.side); got != tt.want {
				t.Errorf("AnchorPoint(%s) = %v, want %v", tt.side, got, tt.want)
			}
		})
	}

	a := Anchors(r)
	if a[0] != (Point{60, 20}) || a[3] != (Point{10, 40}) {
		t.Errorf("Anchors() = %v", a)
	}
}

func TestSmartAnchors(t *testing.T) {
	tests := []struct {
		name             string
		from, to         Point
		wantFrom, wantTo Side
	}{
		{"horizontal right", Point{100, 100}, Point{500, 140}, SideRight, SideLeft},
		{"horizontal left", Point{500, 100}, Point{100, 140}, SideLeft, SideRight},
		{"vertical down", Point{100, 100}, Point{120, 400}, SideBottom, SideTop},
		{"vertical up", Point{100, 400}, Point{120, 100}, SideTop, SideBottom},
		{"tie favors horizontal", Point{0, 0}, Point{50, 50}, SideRight, SideLeft},
		{"tie negative", Point{0, 0}, Point{-50, 50}, SideLeft, SideRight},
		{"same point", Point{0, 0}, Point{0, 0}, SideRight, SideLeft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, to := SmartAnchors(tt.from, tt.to)
			if f != tt.wantFrom || to != tt.wantTo {
				t.Errorf("SmartAnchors() = %s→%s, want %s→%s", f, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestEdgeRoute(t *testing.T) {
	from := Rect{X: 0, Y: 0, W: 100, H: 100}
	to := Rect{X: 400, Y: 0, W: 100, H: 100}

	r := EdgeRoute(from, to, "", "")
	if r.FromSide != SideRight || r.ToSide != SideLeft {
		t.Fatalf("sides = %s→%s", r.FromSide, r.ToSide)
	}
	if r.Start != (Point{100, 50}) || r.End != (Point{400, 50}) {
		t.Errorf("route = %v → %v", r.Start, r.End)
	}

	pinned := EdgeRoute(from, to, SideBottom, "bogus")
	if pinned.FromSide != SideBottom || pinned.ToSide != SideLeft {
		t.Errorf("pinned sides = %s→%s", pinned.FromSide, pinned.ToSide)
	}
}

func TestClosestAnchor(t *testing.T) {
	targets := []Target{
		{ID: "a", Rect: Rect{X: 0, Y: 0, W: 100, H: 100}},
		{ID: "b", Rect: Rect{X: 300, Y: 0, W: 100, H: 100}},
	}

	t.Run("nearest within radius", func(t *testing.T) {
		hit, ok := ClosestAnchor(targets, Point{295, 53}, "", 20)
		if !ok {
			t.Fatal("expected a hit")
		}
		if hit.NodeID != "b" || hit.Side != SideLeft {
			t.Errorf("hit = %+v", hit)
		}
		if math.Abs(hit.Distance-math.Hypot(5, 3)) > 1e-9 {
			t.Errorf("distance = %v", hit.Distance)
		}
	})

	t.Run("excluded node skipped", func(t *testing.T) {
		_, ok := ClosestAnchor(targets, Point{101, 50}, "a", 20)
		if ok {
			t.Error("anchor of excluded node must not match")
		}
	})

	t.Run("outside radius", func(t *testing.T) {
		_, ok := ClosestAnchor(targets, Point{200, 300}, "", 10)
		if ok {
			t.Error("expected no hit")
		}
	})

	t.Run("exactly on radius", func(t *testing.T) {
		hit, ok := ClosestAnchor(targets, Point{110, 50}, "", 10)
		if !ok || hit.NodeID != "a" || hit.Side != SideRight {
			t.Errorf("hit = %+v, %v", hit, ok)
		}
	})
}

func TestRect(t *testing.T) {
	r := Rect{X: 100, Y: 100, W: -50, H: -20}.Normalize()
	if r != (Rect{X: 50, Y: 80, W: 50, H: 20}) {
		t.Errorf("Normalize() = %v", r)
	}
	if !r.Contains(Point{60, 90}) || r.Contains(Point{0, 0}) {
		t.Error("Contains() mismatch")
	}
	if !r.Intersects(Rect{X: 90, Y: 90, W: 50, H: 50}) {
		t.Error("Intersects() = false, want true")
	}
	if r.Intersects(Rect{X: 200, Y: 200, W: 5, H: 5}) {
		t.Error("Intersects() = true, want false")
	}
}
