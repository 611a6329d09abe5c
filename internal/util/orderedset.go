package util

import "slices"

// An OrderedSet represents a set of strings that remembers the order in
// which its elements were first added.
// The zero value represents an empty set.
type OrderedSet struct {
	elems []string
	index map[string]int
}

// NewOrderedSet returns an OrderedSet that contains all of elems
// (in that order, duplicates ignored) but no other elements.
func NewOrderedSet(elems ...string) OrderedSet {
	var set OrderedSet
	for _, e := range elems {
		set.Add(e)
	}
	return set
}

// Add adds e to set, unless set already contains e.
func (set *OrderedSet) Add(e string) {
	if _, found := set.index[e]; found {
		return
	}
	if set.index == nil {
		set.index = make(map[string]int)
	}
	set.index[e] = len(set.elems)
	set.elems = append(set.elems, e)
}

// Contains reports whether e is an element of set.
func (set OrderedSet) Contains(e string) bool {
	_, found := set.index[e]
	return found
}

// Size returns the cardinality of set.
func (set OrderedSet) Size() int {
	return len(set.elems)
}

// ToSlice returns a slice of set's elements in insertion order.
func (set OrderedSet) ToSlice() []string {
	// Clients may mutate the result; see (*cors.Middleware).Config.
	return slices.Clone(set.elems)
}
