package fstree

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxFileSize is the content size limit used when none is configured.
const DefaultMaxFileSize = 1 << 20

// Options control LoadDir.
type Options struct {
	// Exclude lists doublestar patterns, relative to the root, of entries to
	// leave out. They apply in addition to the root's ignore file.
	Exclude []string

	// MaxFileSize is the largest file whose content is loaded. Larger files are
	// listed with empty content.
	MaxFileSize int64

	// Concurrency bounds parallel file reads.
	Concurrency int
}

// LoadDir reads the directory tree at root. Hidden folders, node_modules and
// vendor are skipped, as is anything matched by the exclude patterns or the
// root's ignore file.
func LoadDir(ctx context.Context, root string, opts Options) (*Tree, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	patterns, err := LoadIgnore(root)
	if err != nil {
		return nil, err
	}
	flt, err := newFilter(opts.Exclude, patterns)
	if err != nil {
		return nil, err
	}

	top := &Node{Name: filepath.Base(root), Kind: KindFolder}
	folders := map[string]*Node{".": top}
	var files []*Node

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		slashed := filepath.ToSlash(rel)
		if flt.skip(slashed, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		parent := folders[filepath.Dir(rel)]
		if parent == nil {
			return nil
		}
		n := &Node{Name: d.Name(), Path: slashed}
		switch {
		case d.IsDir():
			n.Kind = KindFolder
			folders[rel] = n
		case d.Type().IsRegular():
			n.Kind = KindFile
			files = append(files, n)
		default:
			return nil
		}
		parent.Children = append(parent.Children, n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", root, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, n := range files {
		g.Go(func() error {
			return readContent(ctx, filepath.Join(root, filepath.FromSlash(n.Path)), n, opts.MaxFileSize)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load %s: %w", root, err)
	}
	return newTree(top), nil
}

func readContent(ctx context.Context, p string, n *Node, limit int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	n.Size = info.Size()
	if n.Size > limit {
		n.Truncated = true
		return nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	if !utf8.Valid(data) {
		n.Truncated = true
		return nil
	}
	n.Content = string(data)
	return nil
}
