package schema

import "sort"

// ItemType discriminates parsed layout entries.
type ItemType string

const (
	// ItemTypeProperty marks an entry carrying a property definition.
	ItemTypeProperty ItemType = "property"
	// ItemTypeGroup marks a collapsible group header.
	ItemTypeGroup ItemType = "group"
)

// LayoutItem is one entry of a parsed layout: either a property to build an
// editor for, or a group marker opening a collapsible section that scopes the
// property entries following it until the next marker.
type LayoutItem struct {
	Type     ItemType
	Property *PropertyDefinition
	Group    string
	Ordinal  int
}

// Layout flattens the document into build order. Properties are stably sorted
// by effective sort order, then bucketed: each named group occupies a single
// contiguous run at the position of its first member, headed by a group
// marker. Marker ordinals increase monotonically in emission order, so two
// parses of the same document always agree.
func (doc *Document) Layout() []LayoutItem {
	sorted := make([]*PropertyDefinition, len(doc.properties))
	copy(sorted, doc.properties)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveSortOrder() < sorted[j].EffectiveSortOrder()
	})

	type bucket struct {
		group string
		props []*PropertyDefinition
	}

	var order []*bucket

	grouped := make(map[string]*bucket)

	for _, p := range sorted {
		if p.Group == "" {
			order = append(order, &bucket{props: []*PropertyDefinition{p}})

			continue
		}

		b, ok := grouped[p.Group]
		if !ok {
			b = &bucket{group: p.Group}
			grouped[p.Group] = b

			order = append(order, b)
		}

		b.props = append(b.props, p)
	}

	var items []LayoutItem

	ordinal := 0

	for _, b := range order {
		if b.group != "" {
			ordinal++

			items = append(items, LayoutItem{Type: ItemTypeGroup, Group: b.group, Ordinal: ordinal})
		}

		for _, p := range b.props {
			items = append(items, LayoutItem{Type: ItemTypeProperty, Property: p})
		}
	}

	return items
}
