// Package fstree is the read-only file-system provider behind the explorer.
// Trees come from the embedded sample project or from a directory on disk;
// nothing is ever written back.
package fstree

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
)

// ErrNotFound is returned by Tree.Lookup for unknown paths.
var ErrNotFound = errors.New("no such file or folder")

// Kind distinguishes folders from files.
type Kind uint8

const (
	KindFolder Kind = iota
	KindFile
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Node is one entry of a tree. Path is slash separated and relative to the
// tree root; the root itself has an empty path.
type Node struct {
	Name     string
	Path     string
	Kind     Kind
	Content  string
	Size     int64
	Children []*Node

	// Truncated is set for files whose content was not loaded, either because
	// they exceed the size limit or are not UTF-8 text.
	Truncated bool
}

// IsDir reports whether n is a folder.
func (n *Node) IsDir() bool { return n.Kind == KindFolder }

// Tree is an immutable file tree with path lookup.
type Tree struct {
	root  *Node
	index map[string]*Node
}

func newTree(root *Node) *Tree {
	t := &Tree{root: root, index: make(map[string]*Node)}
	var visit func(n *Node)
	visit = func(n *Node) {
		sortChildren(n.Children)
		for _, c := range n.Children {
			t.index[c.Path] = c
			visit(c)
		}
	}
	visit(root)
	return t
}

// sortChildren puts folders before files, then orders by name.
func sortChildren(nodes []*Node) {
	slices.SortFunc(nodes, func(a, b *Node) int {
		if a.Kind != b.Kind {
			return cmp.Compare(a.Kind, b.Kind)
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}

// Root returns the root folder.
func (t *Tree) Root() *Node { return t.root }

// Lookup returns the node at p.
func (t *Tree) Lookup(p string) (*Node, error) {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return t.root, nil
	}
	n, ok := t.index[p]
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return n, nil
}

// Walk calls fn for every node below the root in explorer order. Returning
// false from fn for a folder skips its children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) && n.IsDir() {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(t.root.Children, 0)
}

// Files returns the paths of all files in explorer order.
func (t *Tree) Files() []string {
	var files []string
	t.Walk(func(n *Node, _ int) bool {
		if !n.IsDir() {
			files = append(files, n.Path)
		}
		return true
	})
	return files
}

// Format writes an indented listing of the tree to w.
func (t *Tree) Format(w io.Writer) error {
	var err error
	t.Walk(func(n *Node, depth int) bool {
		if err != nil {
			return false
		}
		name := n.Name
		if n.IsDir() {
			name += "/"
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), name)
		return true
	})
	return err
}
