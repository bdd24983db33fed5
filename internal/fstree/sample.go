package fstree

import (
	_ "embed"
	"fmt"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sampleYAML []byte

// entry is the fixture form of a node. Entries with children are folders.
type entry struct {
	Name     string  `yaml:"name"`
	Content  string  `yaml:"content"`
	Children []entry `yaml:"children"`
}

// Sample returns the built-in sample project.
func Sample() (*Tree, error) {
	return Parse(sampleYAML)
}

// Parse builds a tree from a YAML fixture of nested name/content/children
// entries.
func Parse(data []byte) (*Tree, error) {
	var root entry
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse tree fixture: %w", err)
	}
	node, err := root.node("")
	if err != nil {
		return nil, err
	}
	node.Kind = KindFolder
	return newTree(node), nil
}

func (e entry) node(p string) (*Node, error) {
	n := &Node{Name: e.Name, Path: p}
	if e.Children == nil {
		n.Kind = KindFile
		n.Content = e.Content
		n.Size = int64(len(e.Content))
		return n, nil
	}
	seen := make(map[string]bool, len(e.Children))
	for _, c := range e.Children {
		if c.Name == "" || path.Base(c.Name) != c.Name {
			return nil, fmt.Errorf("parse tree fixture: invalid name %q under %q", c.Name, p)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("parse tree fixture: duplicate name %q under %q", c.Name, p)
		}
		seen[c.Name] = true
		child, err := c.node(path.Join(p, c.Name))
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}
