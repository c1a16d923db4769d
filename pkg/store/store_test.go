package store

import (
	"slices"
	"testing"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
	"github.com/iamvince24/serenity-canvas/pkg/geometry"
	"github.com/iamvince24/serenity-canvas/pkg/interaction"
	"github.com/iamvince24/serenity-canvas/pkg/layer"
)

func TestDeleteSelectionUndoesInOneStep(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	b := s.AddTextNode(400, 0, "b")
	c := s.AddTextNode(800, 0, "c")
	e1 := mustEdge(t, s, a, b)
	e2 := mustEdge(t, s, b, c)
	before := s.Snapshot()

	s.Select(a, c)
	if !s.DeleteSelection() {
		t.Fatal("DeleteSelection returned false")
	}
	after := s.Snapshot()
	if len(after.Nodes) != 1 || len(after.Edges) != 0 {
		t.Fatalf("after delete: %d nodes, %d edges", len(after.Nodes), len(after.Edges))
	}
	if len(s.Selected()) != 0 {
		t.Errorf("selection = %v, want empty", s.Selected())
	}

	if !s.Undo() {
		t.Fatal("Undo returned false")
	}
	got := s.Snapshot()
	if !slices.Equal(got.NodeOrder, before.NodeOrder) {
		t.Errorf("order = %v, want %v", got.NodeOrder, before.NodeOrder)
	}
	for _, id := range []string{e1, e2} {
		if _, ok := got.Edges[id]; !ok {
			t.Errorf("edge %s not restored", id)
		}
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	s.Redo()
	if n := len(s.Snapshot().Nodes); n != 1 {
		t.Errorf("after redo: %d nodes, want 1", n)
	}
}

func TestDeleteIgnoredWhileEditing(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	if err := s.BeginEdit(a); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if s.DeleteSelection() || s.HandleKey("backspace") {
		t.Error("delete should be ignored while editing")
	}
	if _, ok := s.Node(a); !ok {
		t.Error("node deleted while editing")
	}
}

func TestDragPreviewsDoNotGrowHistory(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(10, 20, "a")
	base := undoLen(s)

	if err := s.BeginDrag([]string{a}); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	for i := 1; i <= 50; i++ {
		if err := s.PreviewDrag(float64(i), float64(2*i)); err != nil {
			t.Fatalf("PreviewDrag: %v", err)
		}
	}
	if got := undoLen(s); got != base {
		t.Fatalf("history grew during previews: %d → %d", base, got)
	}
	if err := s.CommitDrag(); err != nil {
		t.Fatalf("CommitDrag: %v", err)
	}
	if got := undoLen(s); got != base+1 {
		t.Errorf("history = %d, want %d", got, base+1)
	}
	if n, _ := s.Node(a); n.X != 60 || n.Y != 120 {
		t.Errorf("position = (%v, %v), want (60, 120)", n.X, n.Y)
	}

	s.Undo()
	if n, _ := s.Node(a); n.X != 10 || n.Y != 20 {
		t.Errorf("after undo = (%v, %v), want (10, 20)", n.X, n.Y)
	}
}

func TestDragMultipleNodesIsOneStep(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	b := s.AddTextNode(400, 0, "b")
	s.Select(a, b)
	base := undoLen(s)

	s.BeginDrag(nil)
	s.PreviewDrag(5, 5)
	s.CommitDrag()
	if got := undoLen(s); got != base+1 {
		t.Fatalf("history = %d, want %d", got, base+1)
	}
	s.Undo()
	for id, x := range map[string]float64{a: 0, b: 400} {
		if n, _ := s.Node(id); n.X != x || n.Y != 0 {
			t.Errorf("%s at (%v, %v) after undo", id, n.X, n.Y)
		}
	}
}

func TestEscapeCancelsWithoutCommand(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	base := undoLen(s)

	s.BeginDrag([]string{a})
	s.PreviewDrag(100, 100)
	if !s.HandleKey("Escape") {
		t.Fatal("escape not handled")
	}
	if s.Mode() != interaction.StateIdle {
		t.Errorf("mode = %s, want idle", s.Mode())
	}
	if n, _ := s.Node(a); n.X != 0 || n.Y != 0 {
		t.Errorf("position = (%v, %v), want origin", n.X, n.Y)
	}
	if got := undoLen(s); got != base {
		t.Errorf("history = %d, want %d", got, base)
	}
	if err := s.CommitDrag(); !errors.Is(err, errors.ErrCodeGestureInactive) {
		t.Errorf("CommitDrag after cancel: err = %v", err)
	}
}

func TestGestureGuards(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")

	if err := s.PreviewDrag(1, 1); !errors.Is(err, errors.ErrCodeGestureInactive) {
		t.Errorf("PreviewDrag while idle: err = %v", err)
	}
	if err := s.BeginDrag([]string{"missing"}); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("BeginDrag(missing): err = %v", err)
	}
	if err := s.BeginDrag(nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("BeginDrag(empty selection): err = %v", err)
	}

	s.BeginDrag([]string{a})
	if err := s.BeginResize(a); !errors.Is(err, errors.ErrCodeGestureBlocked) {
		t.Errorf("BeginResize while dragging: err = %v", err)
	}
	if err := s.BeginPan(); !errors.Is(err, errors.ErrCodeGestureBlocked) {
		t.Errorf("BeginPan while dragging: err = %v", err)
	}
	if s.PanViewport(10, 10) {
		t.Error("PanViewport allowed while dragging")
	}
	if s.Undo() {
		t.Error("Undo allowed while dragging")
	}
}

func TestResize(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	orig, _ := s.Node(a)

	s.BeginResize(a)
	s.PreviewResize(canvas.Geometry{X: 0, Y: 0, Width: 10, Height: 500, HeightMode: canvas.HeightFixed})
	s.PreviewResize(canvas.Geometry{X: 0, Y: 0, Width: 20, Height: 600, HeightMode: canvas.HeightFixed})
	if err := s.CommitResize(); err != nil {
		t.Fatalf("CommitResize: %v", err)
	}
	n, _ := s.Node(a)
	if n.Width != MinNodeWidth || n.Height != 600 || n.HeightMode != canvas.HeightFixed {
		t.Errorf("geometry = %+v", n.Geometry())
	}
	s.Undo()
	if n, _ := s.Node(a); n.Geometry() != orig.Geometry() {
		t.Errorf("after undo = %+v, want %+v", n.Geometry(), orig.Geometry())
	}
}

func TestEdit(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "old")
	base := undoLen(s)

	s.BeginEdit(a)
	if id, ok := s.EditingNode(); !ok || id != a {
		t.Errorf("EditingNode = %q, %v", id, ok)
	}
	if err := s.CommitEdit("new"); err != nil {
		t.Fatalf("CommitEdit: %v", err)
	}
	if n, _ := s.Node(a); n.ContentMarkdown != "new" {
		t.Errorf("content = %q", n.ContentMarkdown)
	}

	s.BeginEdit(a)
	s.EndEdit()
	if got := undoLen(s); got != base+1 {
		t.Errorf("history = %d, want %d", got, base+1)
	}
	s.Undo()
	if n, _ := s.Node(a); n.ContentMarkdown != "old" {
		t.Errorf("after undo = %q", n.ContentMarkdown)
	}
}

func TestConnectSnapsToAnchor(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")   // 280x120
	b := s.AddTextNode(400, 0, "b") // left anchor at (400, 60)

	s.BeginConnect(a)
	hit, ok, err := s.PreviewConnect(geometry.Point{X: 395, Y: 60})
	if err != nil || !ok {
		t.Fatalf("PreviewConnect = %+v, %v, %v", hit, ok, err)
	}
	if hit.NodeID != b || hit.Side != geometry.SideLeft || hit.Distance != 5 {
		t.Errorf("hit = %+v", hit)
	}
	id, err := s.CommitConnect("")
	if err != nil {
		t.Fatalf("CommitConnect: %v", err)
	}
	e, ok := s.Edge(id)
	if !ok || e.FromNode != a || e.ToNode != b {
		t.Errorf("edge = %+v", e)
	}
	if s.Mode() != interaction.StateIdle {
		t.Errorf("mode = %s", s.Mode())
	}
}

func TestConnectEdgeCases(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	base := undoLen(s)

	s.BeginConnect(a)
	if _, ok, _ := s.PreviewConnect(geometry.Point{X: 2000, Y: 2000}); ok {
		t.Error("snapped to a far anchor")
	}
	if id, err := s.CommitConnect(""); id != "" || err != nil {
		t.Errorf("CommitConnect over empty canvas = %q, %v", id, err)
	}

	s.BeginConnect(a)
	if _, err := s.CommitConnect(a); !errors.Is(err, errors.ErrCodeInvalidEdge) {
		t.Errorf("self edge: err = %v", err)
	}
	if s.Mode() != interaction.StateIdle {
		t.Errorf("mode = %s after failed connect", s.Mode())
	}
	if got := undoLen(s); got != base {
		t.Errorf("history = %d, want %d", got, base)
	}
}

func TestPanAndZoom(t *testing.T) {
	s := newStore(t, Options{MinZoom: 0.5, MaxZoom: 2})

	s.BeginPan()
	s.PanBy(10, 20)
	s.PanBy(5, 5)
	s.EndPan()
	if v := s.Viewport(); v.X != 15 || v.Y != 25 {
		t.Errorf("viewport = %+v", v)
	}

	s.BeginPan()
	s.PanBy(100, 100)
	s.CancelGesture()
	if v := s.Viewport(); v.X != 15 || v.Y != 25 {
		t.Errorf("cancelled pan moved viewport: %+v", v)
	}

	if v := s.ZoomAt(0, 0, 10); v.Zoom != 2 {
		t.Errorf("zoom = %v, want clamp at 2", v.Zoom)
	}
	if v := s.ZoomAt(0, 0, 0.01); v.Zoom != 0.5 {
		t.Errorf("zoom = %v, want clamp at 0.5", v.Zoom)
	}
}

func TestZoomKeepsPointUnderCursor(t *testing.T) {
	s := newStore(t, Options{})
	before := s.Viewport()
	wx, wy := before.ScreenToWorld(300, 200)
	after := s.ZoomAt(300, 200, 2)
	gx, gy := after.ScreenToWorld(300, 200)
	if gx != wx || gy != wy {
		t.Errorf("world point moved: (%v, %v) → (%v, %v)", wx, wy, gx, gy)
	}
}

func TestBoxSelect(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	b := s.AddTextNode(400, 0, "b")
	c := s.AddTextNode(0, 400, "c")

	s.Select(c)
	s.BeginBoxSelect(false)
	s.UpdateBoxSelect(geometry.Rect{X: 450, Y: 50, W: -500, H: -100})
	s.EndBoxSelect()
	if got, want := s.Selected(), []string{a, b}; !slices.Equal(got, want) {
		t.Errorf("selected = %v, want %v", got, want)
	}

	s.Select(c)
	s.BeginBoxSelect(true)
	s.UpdateBoxSelect(geometry.Rect{X: 0, Y: 0, W: 10, H: 10})
	s.EndBoxSelect()
	if got, want := s.Selected(), []string{a, c}; !slices.Equal(got, want) {
		t.Errorf("additive selected = %v, want %v", got, want)
	}

	s.Select(c)
	s.BeginBoxSelect(false)
	s.UpdateBoxSelect(geometry.Rect{X: 0, Y: 0, W: 1000, H: 1000})
	s.CancelGesture()
	if got, want := s.Selected(), []string{c}; !slices.Equal(got, want) {
		t.Errorf("after cancel = %v, want %v", got, want)
	}
}

func TestReorder(t *testing.T) {
	s := newStore(t, Options{})
	t1 := s.AddTextNode(0, 0, "t1")
	i1, err := s.AddImageNode(0, 0, canvas.FileRecord{ID: "img"}, "")
	if err != nil {
		t.Fatalf("AddImageNode: %v", err)
	}
	t2 := s.AddTextNode(0, 0, "t2")

	changed, err := s.ReorderWithinKind(layer.OpMoveUp, t1)
	if err != nil || !changed {
		t.Fatalf("ReorderWithinKind = %v, %v", changed, err)
	}
	if got, want := s.Order(), []string{t2, i1, t1}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	base := undoLen(s)
	if changed, _ := s.Reorder(layer.OpToFront, t1); changed {
		t.Error("moving the top node to front should be a no-op")
	}
	if got := undoLen(s); got != base {
		t.Errorf("no-op reorder recorded history")
	}

	s.Undo()
	if got, want := s.Order(), []string{t1, i1, t2}; !slices.Equal(got, want) {
		t.Errorf("after undo = %v, want %v", got, want)
	}

	if _, err := s.Reorder(layer.OpToBack, "missing"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("Reorder(missing): err = %v", err)
	}
}

func TestReorderSelectionKeys(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	b := s.AddTextNode(0, 0, "b")
	c := s.AddTextNode(0, 0, "c")

	s.Select(a, b)
	if !s.HandleKey("}") {
		t.Fatal("} not handled")
	}
	if got, want := s.Order(), []string{c, a, b}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	s.HandleKey("[")
	if got, want := s.Order(), []string{a, b, c}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestReorderSelectionAtEdges(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		select func(ids []string) []string
		want   func(ids []string) []string
	}{
		{
			// order [x y z]; y and z already sit on top.
			name:   "up at top",
			key:    "]",
			select: func(ids []string) []string { return []string{ids[1], ids[2]} },
			want:   func(ids []string) []string { return ids },
		},
		{
			name:   "down at bottom",
			key:    "[",
			select: func(ids []string) []string { return []string{ids[0], ids[1]} },
			want:   func(ids []string) []string { return ids },
		},
		{
			name:   "up past one neighbor",
			key:    "]",
			select: func(ids []string) []string { return []string{ids[0], ids[1]} },
			want:   func(ids []string) []string { return []string{ids[2], ids[0], ids[1]} },
		},
		{
			name:   "down with one pinned",
			key:    "[",
			select: func(ids []string) []string { return []string{ids[0], ids[2]} },
			want:   func(ids []string) []string { return []string{ids[0], ids[2], ids[1]} },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, Options{})
			ids := []string{s.AddTextNode(0, 0, "x"), s.AddTextNode(0, 0, "y"), s.AddTextNode(0, 0, "z")}
			base := undoLen(s)
			s.Select(tt.select(ids)...)

			s.HandleKey(tt.key)
			want := tt.want(ids)
			if got := s.Order(); !slices.Equal(got, want) {
				t.Errorf("order = %v, want %v", got, want)
			}
			if slices.Equal(want, ids) && undoLen(s) != base {
				t.Error("blocked reorder recorded history")
			}
		})
	}
}

func TestHandleKeyIgnoredWhileEditing(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	b := s.AddTextNode(0, 0, "b")
	s.Select(a)
	if err := s.BeginEdit(a); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}

	for _, key := range []string{"delete", "]", "ctrl+z", "right"} {
		if s.HandleKey(key) {
			t.Errorf("%q handled while editing", key)
		}
	}
	if got := s.Order(); !slices.Equal(got, []string{a, b}) {
		t.Errorf("order = %v", got)
	}
	if !s.HandleKey("esc") || s.Mode() != interaction.StateIdle {
		t.Errorf("esc should end the edit, mode = %v", s.Mode())
	}
}

func TestSetColor(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	b := s.AddTextNode(400, 0, "b")
	base := undoLen(s)

	s.Select(a, b)
	if err := s.SetColor(canvas.Color("green")); err != nil {
		t.Fatalf("SetColor: %v", err)
	}
	if got := undoLen(s); got != base+1 {
		t.Errorf("history = %d, want one step", got)
	}
	s.Undo()
	for _, id := range []string{a, b} {
		if n, _ := s.Node(id); n.Color != nil {
			t.Errorf("%s color = %v after undo", id, *n.Color)
		}
	}
	if err := s.SetColor(canvas.Color("magenta")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("invalid color: err = %v", err)
	}
}

func TestEdgeOperations(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	b := s.AddTextNode(400, 0, "b")
	e := mustEdge(t, s, a, b)

	if _, err := s.AddEdge(a, "missing"); !errors.Is(err, errors.ErrCodeInvalidEdge) {
		t.Errorf("AddEdge(missing): err = %v", err)
	}

	s.CycleEdgeDirection(e)
	if got, _ := s.Edge(e); got.Direction != canvas.DirectionBoth {
		t.Errorf("direction = %s, want both", got.Direction)
	}
	s.UpdateEdge(e, func(e *canvas.Edge) { e.Label = "depends on" })
	s.Undo()
	s.Undo()
	if got, _ := s.Edge(e); got.Direction != canvas.DirectionForward || got.Label != "" {
		t.Errorf("after undo = %+v", got)
	}

	if err := s.UpdateEdge(e, func(e *canvas.Edge) { e.ToNode = a }); !errors.Is(err, errors.ErrCodeInvalidEdge) {
		t.Errorf("self edge update: err = %v", err)
	}

	base := undoLen(s)
	s.UpdateEdge(e, func(*canvas.Edge) {})
	if got := undoLen(s); got != base {
		t.Error("unchanged edge recorded history")
	}

	s.SelectEdge(e)
	s.HandleKey("delete")
	if _, ok := s.Edge(e); ok {
		t.Error("selected edge not deleted")
	}
}

func TestEdgeLayouts(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	b := s.AddTextNode(400, 0, "b")
	e := mustEdge(t, s, a, b)

	l, err := s.EdgeLayout(e)
	if err != nil {
		t.Fatalf("EdgeLayout: %v", err)
	}
	if l.Route.Start != (geometry.Point{X: 280, Y: 60}) || l.Route.End != (geometry.Point{X: 400, Y: 60}) {
		t.Errorf("route = %+v", l.Route)
	}
	if l.Label != nil {
		t.Error("unlabelled edge has a label layout")
	}

	s.UpdateEdge(e, func(e *canvas.Edge) { e.Label = "calls" })
	layouts := s.EdgeLayouts()
	if len(layouts) != 1 || layouts[0].Label == nil {
		t.Fatalf("layouts = %+v", layouts)
	}
	if g := layouts[0].Gap; g.Mid != (geometry.Point{X: 340, Y: 60}) || g.HalfLength <= 0 {
		t.Errorf("gap = %+v", g)
	}
}

func TestArrowKeysNavigate(t *testing.T) {
	s := newStore(t, Options{})
	a := s.AddTextNode(0, 0, "a")
	b := s.AddTextNode(400, 0, "b")

	if !s.HandleKey("ArrowLeft") {
		t.Fatal("arrow with empty selection should select the top node")
	}
	if got := s.Selected(); !slices.Equal(got, []string{b}) {
		t.Errorf("selected = %v, want [%s]", got, b)
	}
	s.HandleKey("left")
	if got := s.Selected(); !slices.Equal(got, []string{a}) {
		t.Errorf("selected = %v, want [%s]", got, a)
	}
	if s.HandleKey("up") {
		t.Error("no node above, key should not be consumed")
	}
}

func TestLoad(t *testing.T) {
	s := newStore(t, Options{})
	s.AddTextNode(0, 0, "a")

	bad := canvas.NewState()
	bad.NodeOrder = []string{"ghost"}
	if err := s.Load(bad); !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
		t.Errorf("Load(bad): err = %v", err)
	}

	good := canvas.NewState()
	good.Nodes["x"] = canvas.NewText("x", 0, 0, "")
	good.NodeOrder = []string{"x"}
	if err := s.Load(good); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if u, r := s.HistoryLen(); u != 0 || r != 0 {
		t.Errorf("history = %d/%d after load", u, r)
	}
	if got := s.Order(); !slices.Equal(got, []string{"x"}) {
		t.Errorf("order = %v", got)
	}

	good.Nodes["y"] = canvas.NewText("y", 0, 0, "")
	if _, ok := s.Node("y"); ok {
		t.Error("Load kept a reference to the caller's state")
	}
}
