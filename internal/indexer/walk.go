package indexer

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// skipDirNames names directories whose contents are never worth
// indexing, regardless of .gitignore contents.
var skipDirNames = map[string]bool{
	"vendor":       true,
	"node_modules": true,
}

// walker recursively descends a directory tree, honoring per-directory
// .gitignore files the way a real indexer does even though the Qt tool
// this spec was distilled from has no ignore rules at all. Adapted from
// the gitignoreWalker in andrewarchi/codesearch's walk package: each
// directory accumulates the .gitignore patterns of its ancestors, and
// the accumulated pattern set is popped back on the way out.
type walker struct {
	patterns []gitignore.Pattern
}

// visitFunc is called once per regular file discovered by walk. Errors
// returned from visitFunc stop the walk.
type visitFunc func(path string) error

func (w *walker) walk(dir string, dirSplit []string, visit visitFunc) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	mark := len(w.patterns)
	if err := w.readGitignore(dir, dirSplit); err != nil {
		return err
	}
	matcher := gitignore.NewMatcher(w.patterns)

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		pathSplit := append(append([]string{}, dirSplit...), name)

		if matcher.Match(pathSplit, entry.IsDir()) {
			continue
		}

		if entry.IsDir() {
			if strings.HasPrefix(name, ".") || skipDirNames[name] {
				continue
			}
			if err := w.walk(path, pathSplit, visit); err != nil {
				return err
			}
			continue
		}

		if entry.Type()&fs.ModeSymlink != 0 || !entry.Type().IsRegular() {
			continue
		}
		if err := visit(path); err != nil {
			return err
		}
	}

	w.patterns = w.patterns[:mark]
	return nil
}

// readGitignore appends the patterns of dir/.gitignore, if present.
func (w *walker) readGitignore(dir string, dirSplit []string) error {
	f, err := os.Open(filepath.Join(dir, ".gitignore"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil
		}
		return err
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		w.patterns = append(w.patterns, gitignore.ParsePattern(line, dirSplit))
	}
	return s.Err()
}

// walkTree visits every regular file under root, depth-first, never
// following symlinks, skipping dot-directories, vendor and node_modules
// and anything excluded by an ancestor .gitignore.
func walkTree(root string, visit visitFunc) error {
	w := &walker{}
	return w.walk(root, nil, visit)
}
