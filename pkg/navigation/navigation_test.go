package navigation

import (
	"testing"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
)

func box(id string, x, y, w, h float64) canvas.Node {
	n := canvas.NewText(id, x, y, "")
	n.Width, n.Height = w, h
	return n
}

func nodeMap(nodes ...canvas.Node) map[string]canvas.Node {
	m := make(map[string]canvas.Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

func TestFindDirectionalNeighbor(t *testing.T) {
	tests := []struct {
		name    string
		nodes   map[string]canvas.Node
		current string
		dir     Direction
		want    string
		wantOK  bool
	}{
		{
			name: "aligned neighbor to the right",
			nodes: nodeMap(
				box("a", 0, 0, 100, 100),
				box("b", 200, 0, 100, 100),
				box("c", 150, 300, 100, 100),
			),
			current: "a", dir: Right, want: "b", wantOK: true,
		},
		{
			name: "overlap beats a closer diagonal",
			nodes: nodeMap(
				box("a", 0, 0, 100, 100),
				box("far", 1000, 50, 100, 100),
				box("diag", 120, 150, 100, 100),
			),
			current: "a", dir: Right, want: "far", wantOK: true,
		},
		{
			name: "closest of two overlapping",
			nodes: nodeMap(
				box("a", 0, 0, 100, 100),
				box("near", 0, 200, 100, 100),
				box("far", 0, 600, 100, 100),
			),
			current: "a", dir: Down, want: "near", wantOK: true,
		},
		{
			name: "up ignores nodes below",
			nodes: nodeMap(
				box("a", 0, 300, 100, 100),
				box("above", 40, 0, 100, 100),
				box("below", 0, 600, 100, 100),
			),
			current: "a", dir: Up, want: "above", wantOK: true,
		},
		{
			name: "nothing on that side",
			nodes: nodeMap(
				box("a", 0, 0, 100, 100),
				box("b", 200, 0, 100, 100),
			),
			current: "a", dir: Left, wantOK: false,
		},
		{
			name: "same center column is not strictly right",
			nodes: nodeMap(
				box("a", 0, 0, 100, 100),
				box("b", 0, 300, 100, 100),
			),
			current: "a", dir: Right, wantOK: false,
		},
		{
			name: "tie broken by reading order",
			nodes: nodeMap(
				box("a", 0, 0, 100, 100),
				box("lower", 200, 50, 100, 100),
				box("upper", 200, -50, 100, 100),
			),
			current: "a", dir: Right, want: "upper", wantOK: true,
		},
		{
			name: "tie broken by id",
			nodes: nodeMap(
				box("a", 0, 0, 100, 100),
				box("y", 200, 0, 100, 100),
				box("x", 200, 0, 100, 100),
			),
			current: "a", dir: Right, want: "x", wantOK: true,
		},
		{
			name:    "unknown current node",
			nodes:   nodeMap(box("a", 0, 0, 100, 100)),
			current: "missing", dir: Right, wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindDirectionalNeighbor(tt.nodes, tt.current, tt.dir)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("FindDirectionalNeighbor(%s, %s) = (%q, %v), want (%q, %v)",
					tt.current, tt.dir, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestScoreWeights(t *testing.T) {
	a := rectOf(box("a", 0, 0, 100, 100))
	b := rectOf(box("b", 150, 0, 100, 100))

	// gap 50, cross 0, full overlap, center distance 150
	got, overlap := score(Right, a, b)
	if want := 50*WeightGap + 150*WeightDist; got != want {
		t.Errorf("score = %v, want %v", got, want)
	}
	if !overlap {
		t.Error("overlap = false")
	}

	// gap floors at zero when boxes intersect on the primary axis
	c := rectOf(box("c", 60, 80, 100, 100))
	got, overlap = score(Down, a, c)
	// cross 60, overlap 40/100, center distance 100
	want := 2.0*60 + 120*(1-0.4) + 0.25*100
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score = %v, want %v", got, want)
	}
	if !overlap {
		t.Error("overlap = false")
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"up", Up, true},
		{"ArrowDown", Down, true},
		{"arrowleft", Left, true},
		{"RIGHT", Right, true},
		{"diagonal", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDirection(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if Left.String() != "left" || Direction(9).String() != "unknown" {
		t.Error("String() mismatch")
	}
}
