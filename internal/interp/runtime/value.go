// Package runtime implements the value model and execution stacks the
// evaluator operates on: a small tagged union of values plus the backing
// stores behind Text/Array/Object. Text's store is reference-counted and
// uniquified on write (copy-on-write) instead of deep-copied on every bind;
// Array and Object stores are aliased by pointer and not uniquified on write.
package runtime

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the concrete variant a Value holds.
type Kind int

const (
	KindReturn Kind = iota
	KindBool
	KindNumber
	KindText
	KindObject
	KindArray
	KindStackRef
	KindRawRef
)

func (k Kind) String() string {
	switch k {
	case KindReturn:
		return "Return"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	case KindStackRef:
		return "StackRef"
	case KindRawRef:
		return "RawRef"
	default:
		return "?"
	}
}

// Value is the evaluator's single value type: every expression and stack
// slot holds one of these variants.
type Value interface {
	Kind() Kind
	String() string
}

// Return is the sentinel a function's reserved return slot starts with; a
// function that leaves it in place never produced a value.
type Return struct{}

func (Return) Kind() Kind      { return KindReturn }
func (Return) String() string  { return "<no value>" }

// Bool is a boolean value.
type Bool bool

func (b Bool) Kind() Kind     { return KindBool }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Number is dyon's single numeric type (float64, per spec).
type Number float64

func (n Number) Kind() Kind { return KindNumber }
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// textData is the reference-counted backing store shared by Text values
// until a write forces a uniquify.
type textData struct {
	s    string
	refs int
}

// Text is a reference-counted string.
type Text struct {
	data *textData
}

// NewText allocates a freshly owned Text (refs == 1).
func NewText(s string) Text {
	return Text{data: &textData{s: s, refs: 1}}
}

func (t Text) Kind() Kind     { return KindText }
func (t Text) String() string { return t.data.s }
func (t Text) Value() string  { return t.data.s }

// arrayData is the backing store an Array points at. Unlike Text, arrays
// are not uniquified on write: per spec §4.2/§4.3, mutating an element
// through a resolved path handle writes straight through the backing
// store, so two names bound to the same array via a bare `:=` alias it
// until one of them is replaced wholesale by `=` (which clones) or by the
// `clone` built-in (which deep-copies). This matches the source runtime's
// shared-ownership container model.
type arrayData struct {
	items []Value
}

// Array is a 0-indexed sequence of Values, aliased by pointer.
type Array struct {
	data *arrayData
}

// NewArray allocates a freshly owned Array.
func NewArray(items []Value) Array {
	return Array{data: &arrayData{items: items}}
}

func (a Array) Kind() Kind { return KindArray }
func (a Array) String() string {
	parts := make([]string, len(a.data.items))
	for i, v := range a.data.items {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.data.items) }

// At returns the element at idx, or false if out of range.
func (a Array) At(idx int) (Value, bool) {
	if idx < 0 || idx >= len(a.data.items) {
		return nil, false
	}
	return a.data.items[idx], true
}

// Slot returns a pointer directly at the backing element idx, for use as an
// assignment target, or nil if idx is out of range. Arrays are not
// uniquified on write, so a write through it is seen by every alias of this
// Array (see arrayData).
func (a Array) Slot(idx int) *Value {
	if idx < 0 || idx >= len(a.data.items) {
		return nil
	}
	return &a.data.items[idx]
}

// objectData is the backing store an Object points at, aliased the same
// way arrayData is (see its doc comment). Fields are stored behind
// pointers so a RawRef can address a field directly, mirroring what
// Array.Slot does for elements.
type objectData struct {
	keys []string
	vals map[string]*Value
}

// Object is a string-keyed map with deterministic (insertion-order)
// iteration, aliased by pointer.
type Object struct {
	data *objectData
}

// NewObject allocates a freshly owned, empty Object.
func NewObject() Object {
	return Object{data: &objectData{vals: make(map[string]*Value)}}
}

func (o Object) Kind() Kind { return KindObject }
func (o Object) String() string {
	parts := make([]string, 0, len(o.data.keys))
	for _, k := range o.data.keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, (*o.data.vals[k]).String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Keys returns the field names in insertion order.
func (o Object) Keys() []string { return o.data.keys }

// Get returns the value bound to key, or false if absent.
func (o Object) Get(key string) (Value, bool) {
	slot, ok := o.data.vals[key]
	if !ok {
		return nil, false
	}
	return *slot, true
}

// Slot returns a pointer at the field's backing storage, creating the field
// (initialized to Return{}) if insertAbsent is true and it does not exist
// yet. Returns nil if the key is absent and insertAbsent is false.
func (o Object) Slot(key string, insertAbsent bool) *Value {
	if slot, ok := o.data.vals[key]; ok {
		return slot
	}
	if !insertAbsent {
		return nil
	}
	v := Value(Return{})
	slot := &v
	o.data.vals[key] = slot
	o.data.keys = append(o.data.keys, key)
	return slot
}

// StackRef is an unresolved reference to a slot on the value stack; Right
// reads of a bare local push one of these instead of eagerly cloning, so the
// consumer decides whether to shallow- or deep- dereference.
type StackRef struct {
	Index int
}

func (r StackRef) Kind() Kind     { return KindStackRef }
func (r StackRef) String() string { return fmt.Sprintf("<stackref %d>", r.Index) }

// RawRef is a direct, short-lived handle at a Value slot: either a stack
// slot, an array element, or an object field. It only ever lives for the
// duration of a single l-value resolution + assignment and must never be
// retained past that.
type RawRef struct {
	Target *Value
}

func (r RawRef) Kind() Kind     { return KindRawRef }
func (r RawRef) String() string { return "<rawref>" }

// TypeName returns the spec's display name for a value's kind ("Number",
// "Text", "Bool", "Array", "Object"); used in error messages.
func TypeName(v Value) string {
	return v.Kind().String()
}
