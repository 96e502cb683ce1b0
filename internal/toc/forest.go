package toc

// Node wraps one item plus its ordered children. Nodes hold no parent
// back-references; a forest is rebuilt from the flat list on demand and
// never mutated in place.
type Node struct {
	Item     *Item   `json:"item"`
	Children []*Node `json:"children,omitempty"`
}

// BuildForest nests a flat, ordered, leveled item list into a forest.
// Each item's parent becomes the nearest preceding item with a strictly
// smaller level; levels need not be contiguous, and consecutive items
// at the same level become siblings. Deterministic and read-only over
// the items, so repeated calls yield structurally identical forests.
func BuildForest(items []*Item) []*Node {
	sorted := make([]*Item, len(items))
	copy(sorted, items)
	sortItems(sorted)

	var roots []*Node
	var stack []*Node
	for _, item := range sorted {
		node := &Node{Item: item}
		for len(stack) > 0 && stack[len(stack)-1].Item.Level >= item.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	return roots
}
