package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalker_LexicalOrderAndHiddenSkipped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.txt":         "b",
		"a.txt":         "a",
		"sub/z.go":      "z",
		"sub/c.go":      "c",
		".hidden":       "h",
		".git/config":   "g",
		"sub/.env":      "e",
		"sub/.cache/xx": "x",
	})

	files, err := (&Walker{Root: root}).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "sub/c.go", "sub/z.go"}, relFiles(t, root, files))
}

func TestWalker_GitignoreFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":           "*.log\nbuild/\n",
		"main.go":              "package main",
		"debug.log":            "noise",
		"build/out.bin":        "bin",
		"pkg/.roomignore":      "generated.go\n",
		"pkg/lib.go":           "package pkg",
		"pkg/generated.go":     "package pkg",
		"pkg/nested/trace.log": "noise",
		"other/generated.go":   "package other",
	})

	files, err := (&Walker{Root: root}).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"main.go",
		"other/generated.go",
		"pkg/lib.go",
	}, relFiles(t, root, files))
}

func TestWalker_DotIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".ignore":          "vendor\n",
		"vendor/dep.go":    "package dep",
		"cmd/tool/main.go": "package main",
	})

	files, err := (&Walker{Root: root}).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd/tool/main.go"}, relFiles(t, root, files))
}

func TestWalker_Include(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README":        "readme",
		"main.go":       "package main",
		"pkg/lib.go":    "package pkg",
		"pkg/lib.md":    "docs",
		"web/index.tsx": "x",
	})

	tests := []struct {
		name    string
		include string
		want    []string
	}{
		{"empty includes all", "", []string{"README", "main.go", "pkg/lib.go", "pkg/lib.md", "web/index.tsx"}},
		{"double star includes all", "**", []string{"README", "main.go", "pkg/lib.go", "pkg/lib.md", "web/index.tsx"}},
		{"recursive extension", "**/*.go", []string{"main.go", "pkg/lib.go"}},
		{"dotted files only", "./**/*.*", []string{"main.go", "pkg/lib.go", "pkg/lib.md", "web/index.tsx"}},
		{"single directory", "pkg/*", []string{"pkg/lib.go", "pkg/lib.md"}},
		{"alternatives", "**/*.{go,tsx}", []string{"main.go", "pkg/lib.go", "web/index.tsx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := (&Walker{Root: root, Include: tt.include}).Files()
			require.NoError(t, err)
			assert.Equal(t, tt.want, relFiles(t, root, files))
		})
	}
}

func TestWalker_InvalidInclude(t *testing.T) {
	_, err := (&Walker{Root: t.TempDir(), Include: "[a-"}).Files()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid include pattern")
}

func TestNewWalker_IgnoreFileLines(t *testing.T) {
	project := t.TempDir()
	root := filepath.Join(project, "api")
	writeTree(t, root, map[string]string{
		"main.go":         "package main",
		"fixtures/a.json": "{}",
		"notes.txt":       "n",
	})
	ignoreFile := filepath.Join(project, "api.ignore")
	require.NoError(t, os.WriteFile(ignoreFile, []byte("fixtures\n\n*.txt\r\n"), 0o644))

	room, err := NewRoom(RoomSpec{Name: "api", Path: "api", IgnoreFile: "api.ignore"}, project)
	require.NoError(t, err)

	w, err := NewWalker(room)
	require.NoError(t, err)
	assert.Equal(t, []string{"fixtures", "*.txt"}, w.ExtraIgnores)

	files, err := w.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, relFiles(t, root, files))
}

func TestNewWalker_MissingIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.go": "package main"})
	room := newTestRoom(t, RoomSpec{Name: "r", Path: root, IgnoreFile: filepath.Join(root, "nope")})

	w, err := NewWalker(room)
	require.NoError(t, err)
	assert.Empty(t, w.ExtraIgnores)
}

func TestWalker_SkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.txt": "r"})
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))

	files, err := (&Walker{Root: root}).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"real.txt"}, relFiles(t, root, files))
}
