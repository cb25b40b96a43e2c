package value

import "fmt"

// mapKey canonicalizes an Atomic for use as a map lookup key: its
// AtomicKind plus lexical form. This is coarser than full XPath atomic
// equality (it will not unify xs:integer(1) with xs:double(1)), which
// matches how most XDM map implementations behave in practice — map
// keys are compared with the same-key relation, which is type-sensitive.
func mapKey(a Atomic) string { return fmt.Sprintf("%d|%s", a.Kind(), a.Lexical()) }

// MapValue is an insertion-ordered mapping from atomic keys to Sequence
// values. It is immutable: Put/Remove/Merge return a new
// MapValue, consistent with the evaluation context's "immutable with copy-on-derive"
// lifecycle applied to every value in the model.
type MapValue struct {
	keys []Atomic
	vals []Sequence
	pos  map[string]int
}

func NewMap() *MapValue {
	return &MapValue{pos: make(map[string]int)}
}

func (*MapValue) isItem()          {}
func (*MapValue) TypeName() string { return "map(*)" }

// Get looks up key, returning (value, true) if present.
func (m *MapValue) Get(key Atomic) (Sequence, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.pos[mapKey(key)]
	if !ok {
		return nil, false
	}
	return m.vals[i], true
}

// Put returns a new MapValue with key bound to val, preserving key's
// original insertion position if it already existed, or appending it at
// the end if it is new.
func (m *MapValue) Put(key Atomic, val Sequence) *MapValue {
	out := m.clone()
	k := mapKey(key)
	if i, ok := out.pos[k]; ok {
		out.vals[i] = val
		return out
	}
	out.pos[k] = len(out.keys)
	out.keys = append(out.keys, key)
	out.vals = append(out.vals, val)
	return out
}

// Remove returns a new MapValue with key absent.
func (m *MapValue) Remove(key Atomic) *MapValue {
	k := mapKey(key)
	i, ok := m.pos[k]
	if !ok {
		return m.clone()
	}
	out := NewMap()
	for j := range m.keys {
		if j == i {
			continue
		}
		out.pos[mapKey(m.keys[j])] = len(out.keys)
		out.keys = append(out.keys, m.keys[j])
		out.vals = append(out.vals, m.vals[j])
	}
	return out
}

func (m *MapValue) clone() *MapValue {
	out := &MapValue{
		keys: append([]Atomic(nil), m.keys...),
		vals: append([]Sequence(nil), m.vals...),
		pos:  make(map[string]int, len(m.pos)),
	}
	for k, v := range m.pos {
		out.pos[k] = v
	}
	return out
}

// Keys returns the map's keys in insertion order.
func (m *MapValue) Keys() []Atomic { return m.keys }

// Size returns the number of entries.
func (m *MapValue) Size() int { return len(m.keys) }

// Merge combines maps left-to-right; a duplicate key's last occurrence
// wins, matching map:merge's default "use-last" duplicate policy.
func Merge(maps []*MapValue) *MapValue {
	out := NewMap()
	for _, m := range maps {
		if m == nil {
			continue
		}
		for i, k := range m.keys {
			out = out.Put(k, m.vals[i])
		}
	}
	return out
}

// ArrayValue is an ordered sequence of Sequence members, treated as a
// single Item distinct from a Sequence.
type ArrayValue struct {
	members []Sequence
}

func NewArray(members []Sequence) *ArrayValue {
	return &ArrayValue{members: append([]Sequence(nil), members...)}
}

func (*ArrayValue) isItem()          {}
func (*ArrayValue) TypeName() string { return "array(*)" }

// Size returns the number of members.
func (a *ArrayValue) Size() int { return len(a.members) }

// Get returns the 1-based indexed member (XPath arrays are 1-indexed).
func (a *ArrayValue) Get(i int) (Sequence, bool) {
	if i < 1 || i > len(a.members) {
		return nil, false
	}
	return a.members[i-1], true
}

// Members returns all members in order.
func (a *ArrayValue) Members() []Sequence { return a.members }

// Append returns a new ArrayValue with val appended as a new member.
func (a *ArrayValue) Append(val Sequence) *ArrayValue {
	return NewArray(append(append([]Sequence(nil), a.members...), val))
}

// Flatten concatenates every member's items into one Sequence (array:flatten
// / the effect of unwrapping an array in a sequence context).
func (a *ArrayValue) Flatten() Sequence {
	return Concat(a.members...)
}

// Put returns a new ArrayValue with the 1-based i-th member replaced by
// val. ok is false if i is out of bounds.
func (a *ArrayValue) Put(i int, val Sequence) (_ *ArrayValue, ok bool) {
	if i < 1 || i > len(a.members) {
		return nil, false
	}
	out := append([]Sequence(nil), a.members...)
	out[i-1] = val
	return &ArrayValue{members: out}, true
}

// InsertBefore returns a new ArrayValue with val inserted immediately
// before the 1-based position i (i may be len+1, meaning append). ok is
// false if i is out of the 1..len+1 range.
func (a *ArrayValue) InsertBefore(i int, val Sequence) (_ *ArrayValue, ok bool) {
	if i < 1 || i > len(a.members)+1 {
		return nil, false
	}
	out := make([]Sequence, 0, len(a.members)+1)
	out = append(out, a.members[:i-1]...)
	out = append(out, val)
	out = append(out, a.members[i-1:]...)
	return &ArrayValue{members: out}, true
}

// Remove returns a new ArrayValue with the 1-based i-th member removed.
// ok is false if i is out of bounds.
func (a *ArrayValue) Remove(i int) (_ *ArrayValue, ok bool) {
	if i < 1 || i > len(a.members) {
		return nil, false
	}
	out := make([]Sequence, 0, len(a.members)-1)
	out = append(out, a.members[:i-1]...)
	out = append(out, a.members[i:]...)
	return &ArrayValue{members: out}, true
}

// Subarray returns the len-member slice of a starting at the 1-based
// position start. ok is false if the requested range falls outside the
// array.
func (a *ArrayValue) Subarray(start, length int) (_ *ArrayValue, ok bool) {
	if length < 0 || start < 1 || start+length-1 > len(a.members) {
		return nil, false
	}
	return &ArrayValue{members: append([]Sequence(nil), a.members[start-1:start-1+length]...)}, true
}

// Reverse returns a new ArrayValue with members in reverse order.
func (a *ArrayValue) Reverse() *ArrayValue {
	out := make([]Sequence, len(a.members))
	for i, m := range a.members {
		out[len(out)-1-i] = m
	}
	return &ArrayValue{members: out}
}

// Head returns the first member, or (nil, false) for an empty array.
func (a *ArrayValue) Head() (Sequence, bool) {
	if len(a.members) == 0 {
		return nil, false
	}
	return a.members[0], true
}

// Tail returns a new ArrayValue with the first member removed. ok is
// false for an empty array.
func (a *ArrayValue) Tail() (_ *ArrayValue, ok bool) {
	if len(a.members) == 0 {
		return nil, false
	}
	return &ArrayValue{members: append([]Sequence(nil), a.members[1:]...)}, true
}

// JoinArrays concatenates several arrays' members into one new array,
// preserving order.
func JoinArrays(arrays []*ArrayValue) *ArrayValue {
	var out []Sequence
	for _, a := range arrays {
		out = append(out, a.members...)
	}
	return &ArrayValue{members: out}
}
