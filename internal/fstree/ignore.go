package fstree

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/moby/patternmatcher"
	"github.com/moby/patternmatcher/ignorefile"
)

// IgnoreFile holds dockerignore-style patterns applied when loading a
// directory.
const IgnoreFile = ".vcoderignore"

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

// LoadIgnore reads patterns from root's ignore file. A missing file yields no
// patterns; an existing empty file is valid and also yields none.
func LoadIgnore(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, IgnoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", IgnoreFile, err)
	}
	return patterns, nil
}

// filter decides which entries below a root are part of the tree.
type filter struct {
	exclude []string
	ignore  *patternmatcher.PatternMatcher
}

func newFilter(exclude, ignore []string) (*filter, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	f := &filter{exclude: exclude}
	if len(ignore) > 0 {
		pm, err := patternmatcher.New(ignore)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", IgnoreFile, err)
		}
		f.ignore = pm
	}
	return f, nil
}

// skip reports whether the entry at rel, a slash separated path relative to
// the root, is left out.
func (f *filter) skip(rel string, isDir bool) bool {
	name := path.Base(rel)
	if isDir && (skippedDirs[name] || name[0] == '.') {
		return true
	}
	if name == IgnoreFile {
		return true
	}
	for _, pattern := range f.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	if f.ignore != nil {
		if ok, _ := f.ignore.MatchesOrParentMatches(filepath.FromSlash(rel)); ok {
			return true
		}
	}
	return false
}
