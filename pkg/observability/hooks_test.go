package observability

import (
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	s := NoopStoreHooks{}
	s.OnIntern("a", true)
	s.OnDelete("a")
	s.OnRebalance("weight", 10, time.Millisecond, nil)

	w := NoopWalkHooks{}
	w.OnWalk("depth_first", "children_first", 4, 1, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := Walk().(NoopWalkHooks); !ok {
		t.Error("Walk() should return NoopWalkHooks by default")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customWalk := &testWalkHooks{}
	SetWalkHooks(customWalk)
	if Walk() != customWalk {
		t.Error("SetWalkHooks should set custom hooks")
	}

	Reset()
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
	if _, ok := Walk().(NoopWalkHooks); !ok {
		t.Error("Reset() should restore NoopWalkHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testStoreHooks{}
	SetStoreHooks(custom)
	SetStoreHooks(nil)
	if Store() != custom {
		t.Error("SetStoreHooks(nil) should keep the current hooks")
	}
}

type testStoreHooks struct{ NoopStoreHooks }

type testWalkHooks struct{ NoopWalkHooks }
