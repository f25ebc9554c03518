package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Data hooks
	d := NoopDataHooks{}
	d.OnMutation("people", "insert", 0, 3)
	d.OnEditComplete("people", -1, true, time.Millisecond)

	// Store hooks
	s := NoopStoreHooks{}
	s.OnSnapshotHit(ctx, "table")
	s.OnSnapshotMiss(ctx, "network")
	s.OnSnapshotSave(ctx, "table", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Data().(NoopDataHooks); !ok {
		t.Error("Data() should return NoopDataHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	customData := &testDataHooks{}
	SetDataHooks(customData)
	if Data() != customData {
		t.Error("SetDataHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Data().(NoopDataHooks); !ok {
		t.Error("Reset() should restore NoopDataHooks")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testDataHooks{}
	SetDataHooks(custom)

	// Setting nil should be ignored
	SetDataHooks(nil)

	if Data() != custom {
		t.Error("SetDataHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testDataHooks struct{ NoopDataHooks }
type testStoreHooks struct{ NoopStoreHooks }
