package runtime

import "testing"

func TestValueKindStrings(t *testing.T) {
	tests := []struct {
		v    Value
		kind Kind
	}{
		{Return{}, KindReturn},
		{Bool(true), KindBool},
		{Number(1), KindNumber},
		{NewText("x"), KindText},
		{NewObject(), KindObject},
		{NewArray(nil), KindArray},
		{StackRef{Index: 0}, KindStackRef},
		{RawRef{}, KindRawRef},
	}
	for _, tt := range tests {
		if tt.v.Kind() != tt.kind {
			t.Errorf("%#v.Kind() = %v, want %v", tt.v, tt.v.Kind(), tt.kind)
		}
		if TypeName(tt.v) != tt.kind.String() {
			t.Errorf("TypeName(%#v) = %q, want %q", tt.v, TypeName(tt.v), tt.kind.String())
		}
	}
}

func TestNumberString(t *testing.T) {
	if Number(3.5).String() != "3.5" {
		t.Errorf("Number(3.5).String() = %q, want 3.5", Number(3.5).String())
	}
	if Number(3).String() != "3" {
		t.Errorf("Number(3).String() = %q, want 3", Number(3).String())
	}
}

func TestArrayAtAndSlot(t *testing.T) {
	a := NewArray([]Value{Number(1), Number(2), Number(3)})
	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}
	v, ok := a.At(1)
	if !ok || v != Number(2) {
		t.Errorf("At(1) = %v, %v, want Number(2), true", v, ok)
	}
	if _, ok := a.At(5); ok {
		t.Error("At(5) should report out of range")
	}
	slot := a.Slot(0)
	*slot = Number(99)
	v, _ = a.At(0)
	if v != Number(99) {
		t.Errorf("after writing through Slot(0), At(0) = %v, want 99", v)
	}
}

func TestObjectGetAndSlotInsert(t *testing.T) {
	o := NewObject()
	if _, ok := o.Get("x"); ok {
		t.Fatal("Get on empty object should report absent")
	}
	slot := o.Slot("x", true)
	*slot = Number(7)
	v, ok := o.Get("x")
	if !ok || v != Number(7) {
		t.Errorf("Get(x) = %v, %v, want Number(7), true", v, ok)
	}
	if len(o.Keys()) != 1 || o.Keys()[0] != "x" {
		t.Errorf("Keys() = %v, want [x]", o.Keys())
	}
	if o.Slot("y", false) != nil {
		t.Error("Slot(y, false) should be nil for an absent key")
	}
}

func TestObjectPreservesInsertionOrder(t *testing.T) {
	o := NewObject()
	for _, k := range []string{"z", "a", "m"} {
		*o.Slot(k, true) = Number(1)
	}
	want := []string{"z", "a", "m"}
	got := o.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
