package reconcile

import (
	"testing"

	"github.com/dshills/prism/internal/vdom"
	"github.com/dshills/prism/internal/vdom/host"
)

func newTestReconciler() (*host.Memory, *Reconciler) {
	mem := host.NewMemory()
	return mem, New(mem, mem.Root)
}

func TestRender_Mount(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("div", map[string]any{"title": "x"},
		vdom.New("span", nil, "hello"),
		"tail",
	))

	if got := mem.Render(mem.Root); got != "root(div(span(hello) tail))" {
		t.Errorf("tree = %s", got)
	}

	div := mem.Root.Children[0]
	if div.Attrs["title"] != "x" {
		t.Errorf("title attr = %v, want x", div.Attrs["title"])
	}
}

func TestRender_NoOpIdempotence(t *testing.T) {
	mem, r := newTestReconciler()

	tree := vdom.New("div", map[string]any{"title": "x"},
		vdom.New("span", nil, "hello"),
	)
	r.Render(tree)
	mem.ResetOps()

	// Same tree object.
	r.Render(tree)
	if ops := mem.Ops(); len(ops) != 0 {
		t.Errorf("same tree produced %d ops: %v", len(ops), ops)
	}

	// Structurally identical fresh tree.
	r.Render(vdom.New("div", map[string]any{"title": "x"},
		vdom.New("span", nil, "hello"),
	))
	if ops := mem.Ops(); len(ops) != 0 {
		t.Errorf("identical tree produced %d ops: %v", len(ops), ops)
	}
}

func TestRender_ReplacementIdentity(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("div", map[string]any{"title": "x"}, "a"))
	oldDiv := mem.Root.Children[0]
	mem.ResetOps()

	r.Render(vdom.New("section", map[string]any{"title": "y"}, "b"))

	if got := mem.Render(mem.Root); got != "root(section(b))" {
		t.Errorf("tree = %s", got)
	}
	if n := mem.CountOps(host.OpCreateNode); n != 1 {
		t.Errorf("create-node ops = %d, want 1", n)
	}
	if n := mem.CountOps(host.OpRemove); n != 1 {
		t.Errorf("remove ops = %d, want 1", n)
	}

	// No partial patch against the replaced node.
	for _, op := range mem.Ops() {
		if op.Target == oldDiv && (op.Kind == host.OpApplyAttr || op.Kind == host.OpSetText) {
			t.Errorf("old node was patched: %v", op)
		}
	}
}

func TestRender_AttrDiff(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("div", map[string]any{"title": "x", "gone": "y"}))
	div := mem.Root.Children[0]
	mem.ResetOps()

	r.Render(vdom.New("div", map[string]any{"title": "z", "added": "w"}))

	if div.Attrs["title"] != "z" {
		t.Errorf("title = %v, want z", div.Attrs["title"])
	}
	if div.Attrs["added"] != "w" {
		t.Errorf("added = %v, want w", div.Attrs["added"])
	}
	if _, ok := div.Attrs["gone"]; ok {
		t.Error("removed attr still present")
	}
	if n := mem.CountOps(host.OpApplyAttr); n != 2 {
		t.Errorf("apply-attr ops = %d, want 2", n)
	}
}

func TestRender_BoolAttr(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("input", map[string]any{"disabled": true}))
	input := mem.Root.Children[0]

	if v, ok := input.Attrs["disabled"]; !ok || v != "" {
		t.Errorf("true bool attr = %v, %v; want present and empty", v, ok)
	}

	r.Render(vdom.New("input", map[string]any{"disabled": false}))
	if _, ok := input.Attrs["disabled"]; ok {
		t.Error("false bool attr should be removed")
	}
}

func TestRender_ClassAndStyleAttrs(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("div", map[string]any{
		"class": []string{"a", "b"},
		"style": map[string]string{"fg": "white", "bg": "blue"},
	}))
	div := mem.Root.Children[0]

	if div.Attrs["class"] != "a b" {
		t.Errorf("class = %v, want %q", div.Attrs["class"], "a b")
	}
	if div.Attrs["style"] != "bg:blue;fg:white" {
		t.Errorf("style = %v, want %q", div.Attrs["style"], "bg:blue;fg:white")
	}
}

func TestRender_EventRegistrationLifecycle(t *testing.T) {
	mem, r := newTestReconciler()

	clicks := 0
	handler := vdom.EventHandler(func(any) { clicks++ })

	r.Render(vdom.New("button", map[string]any{"onClick": handler}))
	btn := mem.Root.Children[0]

	if mem.Dispatch(btn, "click", nil) != 1 {
		t.Fatal("expected 1 click handler")
	}
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}

	// Same handler value: no re-registration.
	mem.ResetOps()
	r.Render(vdom.New("button", map[string]any{"onClick": handler}))
	if n := mem.CountOps(host.OpRegisterEvent); n != 0 {
		t.Errorf("stable handler re-registered %d times", n)
	}

	// New handler: old registration released before the new one installs,
	// so delivery is never doubled.
	r.Render(vdom.New("button", map[string]any{"onClick": vdom.EventHandler(func(any) { clicks += 10 })}))
	if got := mem.Dispatch(btn, "click", nil); got != 1 {
		t.Fatalf("expected exactly 1 handler after swap, got %d", got)
	}
	if clicks != 11 {
		t.Errorf("clicks = %d, want 11", clicks)
	}

	// Handler prop removed: registration released.
	r.Render(vdom.New("button", map[string]any{}))
	if mem.Dispatch(btn, "click", nil) != 0 {
		t.Error("expected no handlers after removal")
	}
	if mem.EventCount() != 0 {
		t.Errorf("live registrations = %d, want 0", mem.EventCount())
	}
}

func TestRender_UnkeyedPositionalReuse(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("ul", nil, "x", "y"))
	first := mem.Root.Children[0].Children[0]
	mem.ResetOps()

	r.Render(vdom.New("ul", nil, "x", "z"))

	if got := mem.Render(mem.Root); got != "root(ul(x z))" {
		t.Errorf("tree = %s", got)
	}
	if n := mem.CountOps(host.OpSetText); n != 1 {
		t.Errorf("set-text ops = %d, want 1", n)
	}
	for _, op := range mem.Ops() {
		if op.Target == first {
			t.Errorf("untouched first child received %v", op)
		}
	}
}

func TestRender_UnkeyedAppendAndTrim(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("ul", nil, "a", "b"))
	r.Render(vdom.New("ul", nil, "a", "b", "c", "d"))

	if got := mem.Render(mem.Root); got != "root(ul(a b c d))" {
		t.Errorf("after append: %s", got)
	}

	r.Render(vdom.New("ul", nil, "a"))
	if got := mem.Render(mem.Root); got != "root(ul(a))" {
		t.Errorf("after trim: %s", got)
	}
}

func TestRender_UnkeyedKindChangeReplaces(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("div", nil, "text", vdom.New("span", nil)))
	r.Render(vdom.New("div", nil, vdom.New("span", nil), "text"))

	if got := mem.Render(mem.Root); got != "root(div(span() text))" {
		t.Errorf("tree = %s", got)
	}
}

func keyedItem(key, label string) *vdom.Node {
	return vdom.New("li", map[string]any{"key": key}, label)
}

func TestRender_KeyedReorderWithoutRecreation(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("ul", nil,
		keyedItem("a", "A"), keyedItem("b", "B"), keyedItem("c", "C"),
	))
	ul := mem.Root.Children[0]
	liveA, liveB, liveC := ul.Children[0], ul.Children[1], ul.Children[2]
	mem.ResetOps()

	r.Render(vdom.New("ul", nil,
		keyedItem("c", "C"), keyedItem("a", "A"), keyedItem("b", "B"),
	))

	if got := mem.Render(mem.Root); got != "root(ul(li(C) li(A) li(B)))" {
		t.Errorf("tree = %s", got)
	}
	if n := mem.CountOps(host.OpCreateNode); n != 0 {
		t.Errorf("create-node ops = %d, want 0", n)
	}
	if n := mem.CountOps(host.OpRemove); n != 0 {
		t.Errorf("remove ops = %d, want 0", n)
	}
	if n := mem.CountOps(host.OpInsert); n != 1 {
		t.Errorf("insert (move) ops = %d, want 1", n)
	}

	// Same live nodes, moved.
	if ul.Children[0] != liveC || ul.Children[1] != liveA || ul.Children[2] != liveB {
		t.Error("keyed reorder did not preserve live node identity")
	}
}

func TestRender_KeyedInsertAndRemove(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("ul", nil, keyedItem("a", "A"), keyedItem("b", "B")))
	ul := mem.Root.Children[0]
	liveB := ul.Children[1]
	mem.ResetOps()

	r.Render(vdom.New("ul", nil, keyedItem("n", "N"), keyedItem("b", "B")))

	if got := mem.Render(mem.Root); got != "root(ul(li(N) li(B)))" {
		t.Errorf("tree = %s", got)
	}
	if n := mem.CountOps(host.OpCreateNode); n != 1 {
		t.Errorf("create-node ops = %d, want 1", n)
	}
	if ul.Children[1] != liveB {
		t.Error("kept key b lost its live node")
	}
}

func TestRender_KeyedMixedWithUnkeyed(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("ul", nil,
		keyedItem("a", "A"), "plain", keyedItem("b", "B"),
	))
	ul := mem.Root.Children[0]
	livePlain := ul.Children[1]
	mem.ResetOps()

	r.Render(vdom.New("ul", nil,
		keyedItem("b", "B"), "plain", keyedItem("a", "A"),
	))

	if got := mem.Render(mem.Root); got != "root(ul(li(B) plain li(A)))" {
		t.Errorf("tree = %s", got)
	}
	if n := mem.CountOps(host.OpCreateNode) + mem.CountOps(host.OpCreateText); n != 0 {
		t.Errorf("created %d nodes, want 0", n)
	}
	if ul.Children[1] != livePlain {
		t.Error("unkeyed child should pair positionally and survive")
	}
}

func TestRender_DuplicateKeysFirstMatchWins(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("ul", nil, keyedItem("a", "A")))
	ul := mem.Root.Children[0]
	liveA := ul.Children[0]
	mem.ResetOps()

	r.Render(vdom.New("ul", nil, keyedItem("a", "A1"), keyedItem("a", "A2")))

	if got := mem.Render(mem.Root); got != "root(ul(li(A1) li(A2)))" {
		t.Errorf("tree = %s", got)
	}
	if ul.Children[0] != liveA {
		t.Error("first duplicate should reuse the existing node")
	}
	if n := mem.CountOps(host.OpCreateNode); n != 1 {
		t.Errorf("create-node ops = %d, want 1 (second duplicate is an insertion)", n)
	}
}

func TestRender_UnmountReleasesEvents(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("div", nil,
		vdom.New("button", map[string]any{"onClick": vdom.EventHandler(func(any) {})},
			vdom.New("span", map[string]any{"onHover": vdom.EventHandler(func(any) {})}),
		),
	))
	if mem.EventCount() != 2 {
		t.Fatalf("registrations = %d, want 2", mem.EventCount())
	}

	r.Render(vdom.New("div", nil))
	if mem.EventCount() != 0 {
		t.Errorf("registrations after removal = %d, want 0", mem.EventCount())
	}
}

func TestRender_NilChildrenSkipped(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("div", nil, "a", nil, "b"))
	if got := mem.Render(mem.Root); got != "root(div(a b))" {
		t.Errorf("tree = %s", got)
	}

	r.Render(vdom.New("div", nil, "a", "b"))
	if got := mem.Render(mem.Root); got != "root(div(a b))" {
		t.Errorf("tree after render = %s", got)
	}
}

func TestRender_UnmountAll(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("div", nil, "a"))
	r.Render(nil)

	if got := mem.Render(mem.Root); got != "root()" {
		t.Errorf("tree = %s", got)
	}
	if r.Tree() != nil {
		t.Error("tree should be nil after unmount")
	}
}

func TestRender_DeepPatch(t *testing.T) {
	mem, r := newTestReconciler()

	r.Render(vdom.New("div", nil,
		vdom.New("header", nil, "title"),
		vdom.New("ul", nil, keyedItem("a", "one"), keyedItem("b", "two")),
	))
	mem.ResetOps()

	r.Render(vdom.New("div", nil,
		vdom.New("header", nil, "title"),
		vdom.New("ul", nil, keyedItem("a", "one"), keyedItem("b", "TWO")),
	))

	if n := mem.CountOps(host.OpSetText); n != 1 {
		t.Errorf("set-text ops = %d, want 1", n)
	}
	if got := mem.Render(mem.Root); got != "root(div(header(title) ul(li(one) li(TWO))))" {
		t.Errorf("tree = %s", got)
	}
}
