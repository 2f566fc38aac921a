package runtime

import "testing"

func TestEnvironmentDefineGet(t *testing.T) {
	env := NewEnvironment()
	env.Define("a", NewNumber(1))

	v, ok := env.Get("a")
	if !ok || v.AsNumber() != 1 {
		t.Error("expected to read back the defined binding")
	}

	if _, ok := env.Get("missing"); ok {
		t.Error("expected missing name to report absence")
	}
}

func TestEnvironmentChainLookup(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("a", NewString("outer"))

	inner := NewEnclosed(outer)

	// 内层没有绑定时沿链向外找
	if v, ok := inner.Get("a"); !ok || v.AsString() != "outer" {
		t.Error("expected lookup to walk to the enclosing environment")
	}

	// 内层遮蔽外层
	inner.Define("a", NewString("inner"))
	if v, _ := inner.Get("a"); v.AsString() != "inner" {
		t.Error("expected the inner binding to shadow the outer one")
	}
	if v, _ := outer.Get("a"); v.AsString() != "outer" {
		t.Error("shadowing must not touch the outer binding")
	}
}

func TestEnvironmentAssign(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("a", NewNumber(1))
	inner := NewEnclosed(outer)

	// 赋值写到绑定所在的层
	if !inner.Assign("a", NewNumber(2)) {
		t.Fatal("expected assignment to succeed")
	}
	if v, _ := outer.Get("a"); v.AsNumber() != 2 {
		t.Error("expected assignment to update the outer binding")
	}

	if inner.Assign("missing", NewNumber(3)) {
		t.Error("expected assignment to an unbound name to fail")
	}
}

func TestEnvironmentDistanceAccess(t *testing.T) {
	g := NewEnvironment()
	g.Define("x", NewString("global"))

	mid := NewEnclosed(g)
	mid.Define("x", NewString("mid"))

	leaf := NewEnclosed(mid)

	if v := leaf.GetAt(1, "x"); v.AsString() != "mid" {
		t.Errorf("GetAt(1): expected mid, got %s", v)
	}
	if v := leaf.GetAt(2, "x"); v.AsString() != "global" {
		t.Errorf("GetAt(2): expected global, got %s", v)
	}

	leaf.AssignAt(2, "x", NewString("changed"))
	if v, _ := g.Get("x"); v.AsString() != "changed" {
		t.Error("AssignAt should write the targeted level directly")
	}
	if v, _ := mid.Get("x"); v.AsString() != "mid" {
		t.Error("AssignAt must not touch intermediate levels")
	}
}

func TestEnvironmentAliasing(t *testing.T) {
	// 两个子环境共享父环境，写入互相可见
	shared := NewEnvironment()
	shared.Define("n", NewNumber(0))

	a := NewEnclosed(shared)
	b := NewEnclosed(shared)

	a.Assign("n", NewNumber(5))
	if v, _ := b.Get("n"); v.AsNumber() != 5 {
		t.Error("siblings must observe assignments through the shared parent")
	}
}
