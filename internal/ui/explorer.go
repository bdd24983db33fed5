package ui

import (
	"github.com/tinovyatkin/vcoder/internal/fstree"
)

// explorerRow is one visible line of the explorer.
type explorerRow struct {
	node  *fstree.Node
	depth int
}

// explorer is the project tree pane. Folders start expanded.
type explorer struct {
	tree      *fstree.Tree
	collapsed map[string]bool
	selected  int
}

func newExplorer(tree *fstree.Tree) explorer {
	return explorer{tree: tree, collapsed: make(map[string]bool)}
}

// rows returns the visible rows in explorer order.
func (e explorer) rows() []explorerRow {
	if e.tree == nil {
		return nil
	}
	var rows []explorerRow
	e.tree.Walk(func(n *fstree.Node, depth int) bool {
		rows = append(rows, explorerRow{node: n, depth: depth})
		return !e.collapsed[n.Path]
	})
	return rows
}

func (e explorer) current() (*fstree.Node, bool) {
	rows := e.rows()
	if e.selected < 0 || e.selected >= len(rows) {
		return nil, false
	}
	return rows[e.selected].node, true
}

func (e *explorer) move(delta int) {
	n := len(e.rows())
	if n == 0 {
		e.selected = 0
		return
	}
	e.selected = min(max(e.selected+delta, 0), n-1)
}

// toggle flips the folder at the selection.
func (e *explorer) toggle(n *fstree.Node) {
	if e.collapsed[n.Path] {
		delete(e.collapsed, n.Path)
	} else {
		e.collapsed[n.Path] = true
	}
}

// replace swaps in a reloaded tree, keeping the selection on the same path
// when it still exists.
func (e *explorer) replace(tree *fstree.Tree) {
	var keep string
	if n, ok := e.current(); ok {
		keep = n.Path
	}
	e.tree = tree
	e.selected = 0
	for i, r := range e.rows() {
		if r.node.Path == keep {
			e.selected = i
			break
		}
	}
}
