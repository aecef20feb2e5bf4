package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileNames are the per-directory ignore files honoured while walking a
// room. Patterns in a file apply to paths below the directory containing it.
var IgnoreFileNames = []string{".gitignore", ".ignore", ".roomignore"}

// Walker resolves the set of files that make up a room.
//
// Traversal is depth-first with entries visited in lexical order, so the
// resulting list is stable across runs and machines for the same tree.
// Hidden entries (names starting with ".") are skipped, as are symlinks and
// other non-regular files.
type Walker struct {
	// Root is the directory to walk.
	Root string

	// Include restricts the result to files whose root-relative slash path
	// matches the glob. Empty or "**" disables filtering.
	Include string

	// ExtraIgnores are gitignore-style patterns applied relative to Root on
	// top of any ignore files found in the tree.
	ExtraIgnores []string
}

// NewWalker builds a Walker for room, loading its ignore file if configured.
//
// A missing ignore file contributes no patterns; any other read error is
// returned.
func NewWalker(room *Room) (*Walker, error) {
	w := &Walker{Root: room.Path, Include: room.Include}
	if room.IgnoreFile == "" {
		return w, nil
	}
	data, err := os.ReadFile(room.IgnoreFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return w, nil
		}
		return nil, fmt.Errorf("reading ignore file %q: %w", room.IgnoreFile, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		w.ExtraIgnores = append(w.ExtraIgnores, line)
	}
	return w, nil
}

// Files returns the absolute paths of every regular file in scope, in
// traversal order.
func (w *Walker) Files() ([]string, error) {
	include, err := compileInclude(w.Include)
	if err != nil {
		return nil, err
	}

	var extra *ignore.GitIgnore
	if len(w.ExtraIgnores) > 0 {
		extra = ignore.CompileIgnoreLines(w.ExtraIgnores...)
	}

	// matchers holds the compiled ignore files keyed by the slash path of the
	// directory they were found in ("" for Root).
	matchers := make(map[string]*ignore.GitIgnore)

	var files []string
	err = filepath.WalkDir(w.Root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(w.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel == "." {
			if d.IsDir() {
				return loadIgnoreFiles(p, "", matchers)
			}
			// Root is a single file.
			if d.Type().IsRegular() {
				files = append(files, p)
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if isIgnored(rel, d.IsDir(), extra, matchers) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return loadIgnoreFiles(p, rel, matchers)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if include != nil && !include.Match(rel) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", w.Root, err)
	}
	return files, nil
}

// includeGlob matches root-relative slash paths. A leading "**/" also
// matches files directly under the root.
type includeGlob []glob.Glob

func (g includeGlob) Match(rel string) bool {
	for _, m := range g {
		if m.Match(rel) {
			return true
		}
	}
	return false
}

func compileInclude(pattern string) (includeGlob, error) {
	pattern = strings.TrimPrefix(strings.TrimSpace(pattern), "./")
	if pattern == "" || pattern == "**" {
		return nil, nil
	}
	patterns := []string{pattern}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		patterns = append(patterns, rest)
	}
	out := make(includeGlob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func loadIgnoreFiles(dir, rel string, matchers map[string]*ignore.GitIgnore) error {
	var lines []string
	for _, name := range IgnoreFileNames {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("reading %s: %w", name, err)
		}
		lines = append(lines, strings.Split(string(data), "\n")...)
	}
	if len(lines) > 0 {
		matchers[rel] = ignore.CompileIgnoreLines(lines...)
	}
	return nil
}

// isIgnored checks rel against the extra patterns and against every ignore
// file found in one of its ancestor directories.
func isIgnored(rel string, isDir bool, extra *ignore.GitIgnore, matchers map[string]*ignore.GitIgnore) bool {
	if matches(extra, rel, isDir) {
		return true
	}
	dir := path.Dir(rel)
	for {
		key := dir
		if key == "." {
			key = ""
		}
		if m, ok := matchers[key]; ok {
			sub := rel
			if key != "" {
				sub = strings.TrimPrefix(rel, key+"/")
			}
			if matches(m, sub, isDir) {
				return true
			}
		}
		if key == "" {
			return false
		}
		dir = path.Dir(dir)
	}
}

func matches(m *ignore.GitIgnore, rel string, isDir bool) bool {
	if m == nil {
		return false
	}
	if m.MatchesPath(rel) {
		return true
	}
	// Directory-only patterns ("build/") only match with a trailing slash.
	return isDir && m.MatchesPath(rel+"/")
}
