// Package merge collapses join trees into one dataset per master table.
package merge

import (
	"errors"
	"fmt"

	"github.com/ridoystarlord/reportmerge/dataset"
	"github.com/ridoystarlord/reportmerge/jointree"
	"go.uber.org/zap"
)

// ErrJoinKeyNotFound is returned when a parent declares no edge to the child being merged.
var ErrJoinKeyNotFound = errors.New("join key not found")

// Executor merges join trees against a registry of loaded tables.
type Executor struct {
	logger *zap.SugaredLogger
}

// NewExecutor creates an executor. A nil logger discards output.
func NewExecutor(logger *zap.SugaredLogger) *Executor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Executor{logger: logger}
}

// Execute merges every table of the tree into its master and returns the
// result along with a registry that no longer holds the tree's tables.
// Merges run bottom-up: a child with children of its own is fully merged
// before it is joined onto its parent. The registry passed in is not changed;
// on error it is returned as is.
func (e *Executor) Execute(tree *jointree.Tree, reg dataset.Registry) (*dataset.Dataset, dataset.Registry, error) {
	e.logger.Debugw("merging tree", "master", tree.Name(), "tables", len(tree.Tables()), "depth", tree.Depth())

	next, err := e.mergeChildren(tree.Root, reg)
	if err != nil {
		return nil, reg, fmt.Errorf("merging tree %s: %w", tree.Name(), err)
	}

	out, rest, err := next.Take(tree.Name())
	if err != nil {
		return nil, reg, fmt.Errorf("merging tree %s: %w", tree.Name(), err)
	}

	e.logger.Infow("tree merged", "master", tree.Name(), "rows", out.Len(), "columns", len(out.Columns))
	return out, rest, nil
}

// ExecuteAll runs Execute for each tree in order. It stops at the first error.
func (e *Executor) ExecuteAll(trees []*jointree.Tree, reg dataset.Registry) ([]*dataset.Dataset, dataset.Registry, error) {
	results := make([]*dataset.Dataset, 0, len(trees))
	next := reg
	for _, tree := range trees {
		out, rest, err := e.Execute(tree, next)
		if err != nil {
			return nil, reg, err
		}
		results = append(results, out)
		next = rest
	}
	return results, next, nil
}

func (e *Executor) mergeChildren(parent *jointree.Node, reg dataset.Registry) (dataset.Registry, error) {
	var err error
	for _, child := range parent.Children {
		if !child.IsLeaf() {
			if reg, err = e.mergeChildren(child, reg); err != nil {
				return reg, err
			}
		}
		if reg, err = e.mergeInto(parent, child, reg); err != nil {
			return reg, err
		}
	}
	return reg, nil
}

// mergeInto left-joins right onto left, stores the result under left's name
// and drops right from the registry.
func (e *Executor) mergeInto(left, right *jointree.Node, reg dataset.Registry) (dataset.Registry, error) {
	edge, ok := left.Spec.Join(right.Name())
	if !ok {
		return reg, fmt.Errorf("%w: %s has no join with %s", ErrJoinKeyNotFound, left.Name(), right.Name())
	}

	l, err := reg.Get(left.Name())
	if err != nil {
		return reg, err
	}
	r, err := reg.Get(right.Name())
	if err != nil {
		return reg, err
	}

	merged, unmatched, err := leftJoin(l, r, edge.On, edge.JoinWithOn, "_"+right.Name())
	if err != nil {
		return reg, fmt.Errorf("joining %s with %s: %w", left.Name(), right.Name(), err)
	}

	e.logger.Debugw("merged table",
		"left", left.Name(),
		"right", right.Name(),
		"on", edge.On,
		"join_with_on", edge.JoinWithOn,
		"rows", merged.Len(),
		"unmatched", unmatched,
	)

	return reg.Put(left.Name(), merged).Remove(right.Name()), nil
}
