// Package jointree turns the flat table list of a report into one join tree
// per master table.
//
// Each tree is rooted at a master table. Every join edge of a node becomes a
// child node, in declaration order, and a child's own edges are attached
// below it before the next sibling edge is visited:
//
//	users
//	|__ profile
//	|       |__ country
//	|__ facebookuser
//
// A non-master table belongs to exactly one tree and appears in it once.
package jointree

import (
	"errors"
	"fmt"

	"github.com/ridoystarlord/reportmerge/schema"
)

var (
	// ErrUnknownJoinTarget is returned when an edge names a table missing from the non-master pool.
	ErrUnknownJoinTarget = errors.New("unknown join target")
	// ErrDuplicateTableConsumption is returned when a non-master table is reachable more than once.
	ErrDuplicateTableConsumption = errors.New("table consumed more than once")
	// ErrJoinCycle is returned when a join path leads back to a table already on it.
	ErrJoinCycle = errors.New("join cycle")
	// ErrDuplicateTable is returned when two specs share a name.
	ErrDuplicateTable = errors.New("duplicate table")
)

// Node is one table of a join tree.
type Node struct {
	Spec     schema.TableSpec
	Children []*Node
}

// Name returns the table name of the node.
func (n *Node) Name() string {
	return n.Spec.Name
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is a join tree rooted at a master table.
type Tree struct {
	Root *Node

	nodes map[string]*Node
	order []string
}

// Name returns the master table name.
func (t *Tree) Name() string {
	return t.Root.Name()
}

// Lookup returns the node of a table in this tree.
func (t *Tree) Lookup(name string) (*Node, bool) {
	n, ok := t.nodes[name]
	return n, ok
}

// Tables returns the tables of the tree in depth-first, pre-order.
func (t *Tree) Tables() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Depth returns the depth of the tree.
func (t *Tree) Depth() int {
	return Depth(t.Root)
}

type builder struct {
	pool    map[string]schema.TableSpec
	owner   map[string]string
	onPath  map[string]bool
	current *Tree
}

// Build creates one tree per master spec, in declaration order. The specs
// are read only.
func Build(specs []schema.TableSpec) ([]*Tree, error) {
	b := &builder{
		pool:  make(map[string]schema.TableSpec),
		owner: make(map[string]string),
	}

	var masters []schema.TableSpec
	names := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if names[spec.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTable, spec.Name)
		}
		names[spec.Name] = true

		if spec.Master {
			masters = append(masters, spec)
		} else {
			b.pool[spec.Name] = spec
		}
	}

	trees := make([]*Tree, 0, len(masters))
	for _, master := range masters {
		tree, err := b.buildTree(master)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

func (b *builder) buildTree(master schema.TableSpec) (*Tree, error) {
	root := &Node{Spec: master}
	b.current = &Tree{
		Root:  root,
		nodes: map[string]*Node{master.Name: root},
		order: []string{master.Name},
	}
	b.onPath = map[string]bool{}

	if err := b.attach(root); err != nil {
		return nil, fmt.Errorf("building tree %s: %w", master.Name, err)
	}
	return b.current, nil
}

func (b *builder) attach(parent *Node) error {
	for _, edge := range parent.Spec.Joins {
		target := edge.JoinWith

		// masters are never in the pool, so an edge back to one is unknown
		spec, ok := b.pool[target]
		if !ok {
			return fmt.Errorf("%w: %s joins with %s", ErrUnknownJoinTarget, parent.Name(), target)
		}

		if b.onPath[target] {
			return fmt.Errorf("%w: %s -> %s", ErrJoinCycle, parent.Name(), target)
		}

		if master, taken := b.owner[target]; taken {
			return fmt.Errorf("%w: %s is already joined under %s (reached again from %s)",
				ErrDuplicateTableConsumption, target, master, parent.Name())
		}
		b.owner[target] = b.current.Name()

		child := &Node{Spec: spec}
		parent.Children = append(parent.Children, child)
		b.current.nodes[target] = child
		b.current.order = append(b.current.order, target)

		b.onPath[target] = true
		if err := b.attach(child); err != nil {
			return err
		}
		delete(b.onPath, target)
	}
	return nil
}

// Unreachable returns the non-master specs that no tree reaches, in declaration order.
func Unreachable(specs []schema.TableSpec, trees []*Tree) []string {
	var out []string
	for _, spec := range specs {
		if spec.Master {
			continue
		}
		found := false
		for _, t := range trees {
			if _, ok := t.Lookup(spec.Name); ok {
				found = true
				break
			}
		}
		if !found {
			out = append(out, spec.Name)
		}
	}
	return out
}
