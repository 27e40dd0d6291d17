package toon

import (
	"reflect"
	"testing"
)

func TestObjectSetGet(t *testing.T) {
	o := NewObject().Set("a", float64(1)).Set("b", "two")

	if o.Len() != 2 {
		t.Errorf("Expected 2 keys, got %d", o.Len())
	}
	v, ok := o.Get("a")
	if !ok || v != float64(1) {
		t.Errorf("Expected a=1, got %v (present %v)", v, ok)
	}
	if _, ok := o.Get("missing"); ok {
		t.Error("Expected missing key to be absent")
	}
	if !o.Has("b") || o.Has("missing") {
		t.Error("Has gave wrong answers")
	}
}

func TestObjectKeyOrder(t *testing.T) {
	o := NewObject().Set("c", 1).Set("a", 2).Set("b", 3)
	if !reflect.DeepEqual(o.Keys(), []string{"c", "a", "b"}) {
		t.Errorf("Expected insertion order, got %v", o.Keys())
	}

	// Overwriting keeps the original position.
	o.Set("a", 9)
	if !reflect.DeepEqual(o.Keys(), []string{"c", "a", "b"}) {
		t.Errorf("Expected stable order after overwrite, got %v", o.Keys())
	}
	v, _ := o.Get("a")
	if v != 9 {
		t.Errorf("Expected overwritten value 9, got %v", v)
	}
}

func TestObjectDelete(t *testing.T) {
	o := NewObject().Set("a", 1).Set("b", 2).Set("c", 3)

	if !o.Delete("b") {
		t.Error("Expected Delete to report the key present")
	}
	if o.Delete("b") {
		t.Error("Expected second Delete to report the key absent")
	}
	if !reflect.DeepEqual(o.Keys(), []string{"a", "c"}) {
		t.Errorf("Expected remaining keys [a c], got %v", o.Keys())
	}

	// Re-adding a deleted key appends it at the end.
	o.Set("b", 4)
	if !reflect.DeepEqual(o.Keys(), []string{"a", "c", "b"}) {
		t.Errorf("Expected [a c b], got %v", o.Keys())
	}
}

func TestObjectKeysIsACopy(t *testing.T) {
	o := NewObject().Set("a", 1).Set("b", 2)
	keys := o.Keys()
	keys[0] = "mutated"
	if !reflect.DeepEqual(o.Keys(), []string{"a", "b"}) {
		t.Errorf("Keys slice shared internal state: %v", o.Keys())
	}
}

func TestObjectZeroValueSet(t *testing.T) {
	var o Object
	o.Set("a", 1)
	if v, ok := o.Get("a"); !ok || v != 1 {
		t.Errorf("Expected a=1 on zero-value object, got %v (present %v)", v, ok)
	}
}
