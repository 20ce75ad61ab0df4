package component

import (
	"errors"
	"testing"

	"github.com/dshills/prism/internal/state"
	"github.com/dshills/prism/internal/vdom"
	"github.com/dshills/prism/internal/vdom/host"
	"github.com/dshills/prism/internal/vdom/reconcile"
)

func newFixture() (*state.Store, *host.Memory, *reconcile.Reconciler) {
	st := state.New(state.WithInitialState(state.State{"count": 0, "label": "hi"}))
	mem := host.NewMemory()
	return st, mem, reconcile.New(mem, mem.Root)
}

func counterComponent() Component {
	return Component{
		Paths: []string{"count"},
		Render: func(s state.State) *vdom.Node {
			count, _ := s["count"].(int)
			return vdom.New("div", nil, count)
		},
	}
}

func TestMount_InitialRender(t *testing.T) {
	st, mem, rec := newFixture()

	m, err := Mount(st, rec, counterComponent(), nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer m.Unmount()

	if got := mem.Render(mem.Root); got != "root(div(0))" {
		t.Errorf("tree = %s", got)
	}
}

func TestMount_RerendersOnPathChange(t *testing.T) {
	st, mem, rec := newFixture()

	m, err := Mount(st, rec, counterComponent(), nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer m.Unmount()

	st.Set(map[string]any{"count": 3})

	if got := mem.Render(mem.Root); got != "root(div(3))" {
		t.Errorf("tree = %s", got)
	}
}

func TestMount_IgnoresUnwatchedPath(t *testing.T) {
	st, mem, rec := newFixture()

	renders := 0
	comp := Component{
		Paths: []string{"count"},
		Render: func(s state.State) *vdom.Node {
			renders++
			return vdom.New("div", nil)
		},
	}
	m, _ := Mount(st, rec, comp, nil)
	defer m.Unmount()
	_ = mem

	st.Set(map[string]any{"label": "bye"})

	if renders != 1 {
		t.Errorf("renders = %d, want 1 (mount only)", renders)
	}
}

func TestMount_ShouldUpdatePredicate(t *testing.T) {
	st, _, rec := newFixture()

	renders := 0
	comp := Component{
		Paths: []string{"count"},
		ShouldUpdate: func(newVal, _ any) bool {
			n, _ := newVal.(int)
			return n%2 == 0
		},
		Render: func(s state.State) *vdom.Node {
			renders++
			return vdom.New("div", nil)
		},
	}
	m, _ := Mount(st, rec, comp, nil)
	defer m.Unmount()

	st.Set(map[string]any{"count": 1}) // filtered
	st.Set(map[string]any{"count": 2}) // passes

	if renders != 2 {
		t.Errorf("renders = %d, want 2 (mount + even value)", renders)
	}
}

func TestMount_WholeStateComponent(t *testing.T) {
	st, mem, rec := newFixture()

	comp := Component{
		Render: func(s state.State) *vdom.Node {
			label, _ := s["label"].(string)
			return vdom.New("div", nil, label)
		},
	}
	m, _ := Mount(st, rec, comp, nil)
	defer m.Unmount()

	st.Set(map[string]any{"label": "bye"})

	if got := mem.Render(mem.Root); got != "root(div(bye))" {
		t.Errorf("tree = %s", got)
	}
}

func TestMount_NilRender(t *testing.T) {
	st, _, rec := newFixture()

	if _, err := Mount(st, rec, Component{}, nil); !errors.Is(err, ErrNilRender) {
		t.Errorf("err = %v, want ErrNilRender", err)
	}
}

func TestMount_InitialRenderPanic(t *testing.T) {
	st, mem, rec := newFixture()

	var recovered any
	comp := Component{
		Render: func(s state.State) *vdom.Node { panic("render boom") },
	}
	_, err := Mount(st, rec, comp, func(r any) { recovered = r })

	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("err = %v, want ErrRenderFailed", err)
	}
	if recovered != "render boom" {
		t.Errorf("reporter got %v", recovered)
	}
	if got := mem.Render(mem.Root); got != "root()" {
		t.Errorf("live tree should be untouched, got %s", got)
	}
}

func TestMount_RenderPanicLeavesTreeUntouched(t *testing.T) {
	st, mem, rec := newFixture()

	var recovered any
	comp := Component{
		Paths: []string{"count"},
		Render: func(s state.State) *vdom.Node {
			if n, _ := s["count"].(int); n > 0 {
				panic("render boom")
			}
			return vdom.New("div", nil, "stable")
		},
	}
	m, err := Mount(st, rec, comp, func(r any) { recovered = r })
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer m.Unmount()

	st.Set(map[string]any{"count": 1})

	if recovered != "render boom" {
		t.Errorf("reporter got %v", recovered)
	}
	if got := mem.Render(mem.Root); got != "root(div(stable))" {
		t.Errorf("previous tree should survive a failing render, got %s", got)
	}
}

func TestUnmount_ReleasesSubscriptionsAndTree(t *testing.T) {
	st, mem, rec := newFixture()

	renders := 0
	comp := Component{
		Paths: []string{"count"},
		Render: func(s state.State) *vdom.Node {
			renders++
			return vdom.New("div", nil)
		},
	}
	m, _ := Mount(st, rec, comp, nil)

	m.Unmount()
	m.Unmount() // idempotent

	if m.Active() {
		t.Error("component should be inactive after Unmount")
	}
	if got := mem.Render(mem.Root); got != "root()" {
		t.Errorf("tree = %s, want empty after Unmount", got)
	}

	st.Set(map[string]any{"count": 9})
	if renders != 1 {
		t.Errorf("renders = %d after Unmount, want 1", renders)
	}
}
