package css

import (
	"fmt"
	"sort"
	"strings"
)

// Specificity represents CSS specificity with individual components
// Following CSS specification: IDs, classes/attributes/pseudo-classes, elements/pseudo-elements
type Specificity struct {
	IDs      int // #id selectors
	Classes  int // .class, [attr], :pseudo-class
	Elements int // element, ::pseudo-element
}

// NewSpecificity creates a specificity from its three components
func NewSpecificity(ids, classes, elements int) Specificity {
	return Specificity{IDs: ids, Classes: classes, Elements: elements}
}

// Increase adds deltas to every component
func (s *Specificity) Increase(ids, classes, elements int) {
	s.IDs += ids
	s.Classes += classes
	s.Elements += elements
}

// Compare returns -1 if s < other, 0 if equal, 1 if s > other
func (s Specificity) Compare(other Specificity) int {
	if s.IDs != other.IDs {
		if s.IDs > other.IDs {
			return 1
		}
		return -1
	}
	if s.Classes != other.Classes {
		if s.Classes > other.Classes {
			return 1
		}
		return -1
	}
	if s.Elements != other.Elements {
		if s.Elements > other.Elements {
			return 1
		}
		return -1
	}

	return 0
}

// Values returns the components as [ids, classes, elements]
func (s Specificity) Values() [3]int {
	return [3]int{s.IDs, s.Classes, s.Elements}
}

func (s Specificity) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.IDs, s.Classes, s.Elements)
}

// PropertyMap is an ordered mapping from property name to the sequence of
// values declared for it. Iteration follows insertion order; replacing a
// property moves it to the end.
type PropertyMap struct {
	keys   []string
	values map[string][]string
}

// NewPropertyMap creates an empty property map
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{values: make(map[string][]string)}
}

// Len returns the number of distinct properties
func (m *PropertyMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Properties returns property names in iteration order
func (m *PropertyMap) Properties() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Get returns the values stored for property
func (m *PropertyMap) Get(property string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	values, ok := m.values[property]
	return values, ok
}

// Append adds value to property unless the very same value is already
// declared for it. Used while reading a declaration block, where a repeated
// property with a different value is kept as a fallback.
func (m *PropertyMap) Append(property, value string) {
	existing, ok := m.values[property]
	if !ok {
		m.keys = append(m.keys, property)
		m.values[property] = []string{value}
		return
	}
	for _, v := range existing {
		if v == value {
			return
		}
	}
	m.values[property] = append(existing, value)
}

// Set replaces all values of property and moves it to the end of the
// iteration order.
func (m *PropertyMap) Set(property string, values []string) {
	if _, ok := m.values[property]; ok {
		m.remove(property)
	}
	m.keys = append(m.keys, property)
	m.values[property] = append([]string(nil), values...)
}

func (m *PropertyMap) remove(property string) {
	for i, k := range m.keys {
		if k == property {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	delete(m.values, property)
}

// SortProperties reorders properties lexicographically by name. Values of
// a property keep their order.
func (m *PropertyMap) SortProperties() {
	sort.Strings(m.keys)
}

// Merge layers other on top of m. A property is overwritten unless the
// stored value is !important and the incoming one is not.
func (m *PropertyMap) Merge(other *PropertyMap) {
	if other == nil {
		return
	}
	for _, property := range other.keys {
		incoming := other.values[property]
		existing, ok := m.values[property]
		if !ok || !IsImportant(existing) || IsImportant(incoming) {
			m.Set(property, incoming)
		}
	}
}

// String serializes the map as an inline style: one "property: value;"
// token per value, separated by single spaces.
func (m *PropertyMap) String() string {
	if m.Len() == 0 {
		return ""
	}

	var parts []string
	for _, property := range m.keys {
		for _, value := range m.values[property] {
			parts = append(parts, property+": "+value+";")
		}
	}
	return strings.Join(parts, " ")
}

// IsImportant reports whether any of the values carries an !important flag
func IsImportant(values []string) bool {
	return strings.Contains(strings.ToLower(strings.Join(values, "")), "!important")
}

// Rule represents a single CSS rule with its selector and declarations
type Rule struct {
	Selector    string       // Selector text, one per rule after group expansion
	Specificity Specificity  // Calculated specificity
	Properties  *PropertyMap // Sorted declarations, shared by the rules of one group
	SourceOrder int          // Order in original CSS (for tie-breaking)
}

// RuleSet holds parsed rules in cascade order: ascending specificity, then
// ascending source order.
type RuleSet struct {
	Rules []Rule
}

// Len returns the number of rules
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rules)
}

// sortRules puts rules into cascade order
func (rs *RuleSet) sortRules() {
	sort.SliceStable(rs.Rules, func(i, j int) bool {
		if c := rs.Rules[i].Specificity.Compare(rs.Rules[j].Specificity); c != 0 {
			return c < 0
		}
		return rs.Rules[i].SourceOrder < rs.Rules[j].SourceOrder
	})
}
