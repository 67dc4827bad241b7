package resource

import (
	"testing"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable()

	h := table.Insert(1, "test")
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if _, ok = table.GetTyped(h, 1); !ok {
		t.Fatal("GetTyped with correct type failed")
	}
	if _, ok = table.GetTyped(h, 2); ok {
		t.Fatal("GetTyped with wrong type should fail")
	}

	val, ok = table.Remove(h)
	if !ok {
		t.Fatal("Remove failed")
	}
	if val != "test" {
		t.Fatalf("Expected 'test', got %v", val)
	}

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable()
	obs := &testObserver{}
	table.Subscribe(obs)

	h := table.Insert(1, "test")
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventCreated {
		t.Fatal("Expected EventCreated")
	}
	if obs.events[0].Handle != h {
		t.Fatal("Wrong handle in event")
	}

	table.Remove(h)
	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if obs.events[1].Type != EventDropped {
		t.Fatal("Expected EventDropped")
	}
	if obs.events[1].TypeID != 1 {
		t.Fatalf("Dropped event TypeID = %d, want 1", obs.events[1].TypeID)
	}

	// A failed Remove emits nothing.
	table.Remove(h)
	if len(obs.events) != 2 {
		t.Fatal("Remove of stale handle should not notify")
	}

	table.Unsubscribe(obs)
	table.Insert(1, "test2")
	if len(obs.events) != 2 {
		t.Fatal("Should not receive events after Unsubscribe")
	}
}

func TestTable_Clear(t *testing.T) {
	table := NewTable()

	table.Insert(1, "a")
	table.Insert(1, "b")
	table.Insert(1, "c")

	if table.Len() != 3 {
		t.Fatal("Expected Len() == 3")
	}

	table.Clear()

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Clear")
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable()

	table.Insert(1, "a")
	table.Insert(1, "b")

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if h := table.Insert(1, "c"); h != 0 {
		t.Fatal("Expected Insert to fail after Close")
	}
}

type dropCounter struct {
	count int
}

func (d *dropCounter) Drop() {
	d.count++
}

func TestTable_DropperInterface(t *testing.T) {
	table := NewTable()
	d := &dropCounter{}

	h := table.Insert(1, d)
	table.Remove(h)

	if d.count != 1 {
		t.Fatalf("Expected Drop() to be called once, called %d times", d.count)
	}
}

func TestTypedTable(t *testing.T) {
	table := NewTable()
	ints := NewTypedTable[int](table, 1)
	strs := NewTypedTable[string](table, 2)

	hi := ints.Insert(42)
	hs := strs.Insert("x")

	if v, ok := ints.Get(hi); !ok || v != 42 {
		t.Fatalf("ints.Get = %v, %v", v, ok)
	}
	if _, ok := ints.Get(hs); ok {
		t.Fatal("ints.Get should reject a string handle")
	}
	if _, ok := ints.Remove(hs); ok {
		t.Fatal("ints.Remove should reject a string handle")
	}
	if ints.Len() != 1 || strs.Len() != 1 {
		t.Fatalf("Len = %d, %d", ints.Len(), strs.Len())
	}

	var seen []int
	ints.Each(func(_ Handle, v int) bool {
		seen = append(seen, v)
		return true
	})
	if len(seen) != 1 || seen[0] != 42 {
		t.Fatalf("Each saw %v", seen)
	}

	if v, ok := ints.Remove(hi); !ok || v != 42 {
		t.Fatalf("ints.Remove = %v, %v", v, ok)
	}
	if table.Len() != 1 {
		t.Fatalf("table.Len() = %d, want 1", table.Len())
	}
}
