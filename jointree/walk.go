package jointree

// Depth is 1 for a leaf and 1 + the depth of the deepest child otherwise.
func Depth(n *Node) int {
	if n.IsLeaf() {
		return 1
	}
	deepest := 0
	for _, child := range n.Children {
		if d := Depth(child); d > deepest {
			deepest = d
		}
	}
	return 1 + deepest
}

// Walk visits n and its descendants depth-first, parents before children.
// level is 0 for n itself.
func Walk(n *Node, fn func(node *Node, level int)) {
	walk(n, 0, fn)
}

func walk(n *Node, level int, fn func(*Node, int)) {
	fn(n, level)
	for _, child := range n.Children {
		walk(child, level+1, fn)
	}
}
