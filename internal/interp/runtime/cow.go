package runtime

// ShareText returns a shallow copy of t that references the same backing
// buffer, bumping its refcount. Used whenever a StackRef is materialized
// into a new binding (declaring assignment, parameter binding) instead of
// being deep-cloned, so a later `+=` on either alias uniquifies instead of
// corrupting the other.
func ShareText(t Text) Text {
	t.data.refs++
	return t
}

// Share returns a shallow copy of v: for Text this bumps the backing
// buffer's refcount (see ShareText); Array and Object already alias by
// plain pointer copy and need no extra bookkeeping; any other kind carries
// no backing store and is returned unchanged.
func Share(v Value) Value {
	if t, ok := v.(Text); ok {
		return ShareText(t)
	}
	return v
}

// ShallowClone copies a container's top-level structure into a fresh,
// independently-owned backing store, without recursing into its elements
// — elements are copied by value (a Go assignment), so a nested
// Array/Object element keeps aliasing its own backing store until it is
// itself cloned or reassigned. This is what updating assignment's `=`
// operator does for whole-container replacement (spec §4.3); `clone`
// recurses fully and is implemented separately as DeepClone.
func ShallowClone(v Value) Value {
	switch t := v.(type) {
	case Text:
		return NewText(t.data.s)
	case Array:
		items := make([]Value, len(t.data.items))
		copy(items, t.data.items)
		return NewArray(items)
	case Object:
		keys := make([]string, len(t.data.keys))
		copy(keys, t.data.keys)
		vals := make(map[string]*Value, len(t.data.vals))
		for k, slot := range t.data.vals {
			nv := *slot
			vals[k] = &nv
		}
		return Object{data: &objectData{keys: keys, vals: vals}}
	default:
		return v
	}
}

// DeepClone produces a value with an independently-owned backing store at
// every level, recursively. This is what the `clone` built-in exposes.
func DeepClone(v Value) Value {
	switch t := v.(type) {
	case Text:
		return NewText(t.data.s)
	case Array:
		items := make([]Value, len(t.data.items))
		for i, e := range t.data.items {
			items[i] = DeepClone(e)
		}
		return NewArray(items)
	case Object:
		out := NewObject()
		for _, k := range t.data.keys {
			slot := out.Slot(k, true)
			*slot = DeepClone(*t.data.vals[k])
		}
		return out
	default:
		return v
	}
}

// TextConcatAssign appends suffix to the Text at *target in place,
// uniquifying its backing buffer first if it is shared with another alias.
func TextConcatAssign(target *Value, suffix string) {
	data := MakeMutText(target)
	data.s += suffix
	*target = Text{data: data}
}

// SameArray reports whether a and b share the same backing store.
func SameArray(a, b Array) bool { return a.data == b.data }

// SameObject reports whether a and b share the same backing store.
func SameObject(a, b Object) bool { return a.data == b.data }

// MakeMutText ensures *slot's backing buffer is exclusively owned
// (refs==1), cloning it first if it is currently shared, then returns the
// live backing store so the caller can write to it directly. This is the
// copy-on-write step `+=` performs on Text (spec §4.3).
func MakeMutText(slot *Value) *textData {
	t := (*slot).(Text)
	if t.data.refs > 1 {
		t.data.refs--
		nd := &textData{s: t.data.s, refs: 1}
		t = Text{data: nd}
		*slot = t
	}
	return t.data
}
