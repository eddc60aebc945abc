package index

import "sort"

// DefaultOptionCap is the number of distinct values tracked per text field.
const DefaultOptionCap = 75

// optionSet collects the distinct values of one field until it holds more
// than cap of them, after which tracking stops for good.
type optionSet struct {
	cap      int
	seen     map[string]struct{}
	overflow bool
}

func newOptionSet(cap int) *optionSet {
	return &optionSet{cap: cap, seen: make(map[string]struct{})}
}

func (o *optionSet) add(v string) {
	if o.overflow {
		return
	}
	if _, ok := o.seen[v]; ok {
		return
	}
	if len(o.seen) == o.cap {
		o.overflow = true
		o.seen = nil
		return
	}
	o.seen[v] = struct{}{}
}

// addValue adds the string elements of an extracted value.
func (o *optionSet) addValue(v any) {
	switch x := v.(type) {
	case string:
		o.add(x)
	case []any:
		for _, e := range x {
			if s, ok := e.(string); ok {
				o.add(s)
			}
		}
	}
}

// values returns the tracked values sorted, or nil after overflow.
func (o *optionSet) values() []string {
	if o.overflow || len(o.seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(o.seen))
	for v := range o.seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// orderedSet keeps distinct strings in first-seen order.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
