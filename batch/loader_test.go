package batch

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestTreeKeyStability(t *testing.T) {
	a := map[string]any{
		"username": "alice",
		"and": []any{
			map[string]any{"isActive": true, "balanceGt": 10},
		},
	}
	b := map[string]any{
		"and": []any{
			map[string]any{"balanceGt": 10, "isActive": true},
		},
		"username": "alice",
	}

	ka, err := TreeKey(a)
	if err != nil {
		t.Fatalf("TreeKey failed: %v", err)
	}
	kb, err := TreeKey(b)
	if err != nil {
		t.Fatalf("TreeKey failed: %v", err)
	}
	if ka != kb {
		t.Error("structurally equal trees must produce equal keys")
	}

	kc, err := TreeKey(map[string]any{"username": "bob"})
	if err != nil {
		t.Fatalf("TreeKey failed: %v", err)
	}
	if ka == kc {
		t.Error("different trees must produce different keys")
	}
}

func TestTreeKeyListOrderMatters(t *testing.T) {
	a, _ := TreeKey(map[string]any{"or": []any{
		map[string]any{"a": 1}, map[string]any{"b": 2},
	}})
	b, _ := TreeKey(map[string]any{"or": []any{
		map[string]any{"b": 2}, map[string]any{"a": 1},
	}})
	if a == b {
		t.Error("list element order is significant and must change the key")
	}
}

func TestLoaderCoalescesByFilterTree(t *testing.T) {
	var calls []struct {
		filters any
		parents []any
	}
	fetch := func(ctx context.Context, filters any, parents []any) (map[any][]string, error) {
		calls = append(calls, struct {
			filters any
			parents []any
		}{filters, parents})
		out := make(map[any][]string, len(parents))
		for _, p := range parents {
			out[p] = []string{"item-for-" + p.(string)}
		}
		return out, nil
	}

	l := NewLoader(fetch)
	active := map[string]any{"isActive": true}
	inactive := map[string]any{"isActive": false}

	t1, err := l.Load("u1", active)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t2, err := l.Load("u2", active)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t3, err := l.Load("u3", inactive)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// Same parent and tree registered twice: still one slot.
	t1b, err := l.Load("u1", map[string]any{"isActive": true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := t1.Value(); !errors.Is(err, ErrNotFlushed) {
		t.Errorf("expected ErrNotFlushed before flush, got %v", err)
	}

	if err := l.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("expected 2 fetches (one per distinct tree), got %d", len(calls))
	}
	for _, c := range calls {
		f := c.filters.(map[string]any)
		if f["isActive"] == true {
			if !reflect.DeepEqual(c.parents, []any{"u1", "u2"}) {
				t.Errorf("active group parents: got %v", c.parents)
			}
		} else {
			if !reflect.DeepEqual(c.parents, []any{"u3"}) {
				t.Errorf("inactive group parents: got %v", c.parents)
			}
		}
	}

	for _, tc := range []struct {
		thunk    *Thunk[string]
		expected string
	}{
		{t1, "item-for-u1"},
		{t1b, "item-for-u1"},
		{t2, "item-for-u2"},
		{t3, "item-for-u3"},
	} {
		items, err := tc.thunk.Value()
		if err != nil {
			t.Fatalf("Value failed: %v", err)
		}
		if len(items) != 1 || items[0] != tc.expected {
			t.Errorf("expected [%s], got %v", tc.expected, items)
		}
	}
}

func TestLoaderParentWithoutItems(t *testing.T) {
	fetch := func(ctx context.Context, filters any, parents []any) (map[any][]int, error) {
		return map[any][]int{}, nil
	}
	l := NewLoader(fetch)
	th, err := l.Load("u1", map[string]any{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := l.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	items, err := th.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
}

func TestLoaderFetchError(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(ctx context.Context, filters any, parents []any) (map[any][]int, error) {
		return nil, boom
	}
	l := NewLoader(fetch)
	th, _ := l.Load("u1", map[string]any{})

	if err := l.Flush(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error from Flush, got %v", err)
	}
	if _, err := th.Value(); !errors.Is(err, boom) {
		t.Errorf("expected fetch error from Value, got %v", err)
	}
}

func TestLoaderLoadAfterFlush(t *testing.T) {
	fetch := func(ctx context.Context, filters any, parents []any) (map[any][]int, error) {
		return map[any][]int{}, nil
	}
	l := NewLoader(fetch)
	filters := map[string]any{"a": 1}
	if _, err := l.Load("u1", filters); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := l.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if _, err := l.Load("u2", filters); err == nil {
		t.Error("expected error loading a flushed filter tree")
	}
}
