package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTree builds a small directory tree and returns its root.
func createTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"a.txt":              "a",
		"sub/b.txt":          "b",
		"sub/deep/c.txt":     "c",
		"node_modules/x.js":  "x",
		"sub/ignore.tmp":     "tmp",
		"sub/deep/more/d.md": "d",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func relPaths(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalk_AllRegularFiles(t *testing.T) {
	t.Parallel()
	root := createTestTree(t)

	res, err := Walk(context.Background(), root, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a.txt",
		"node_modules/x.js",
		"sub/b.txt",
		"sub/deep/c.txt",
		"sub/deep/more/d.md",
		"sub/ignore.tmp",
	}, relPaths(t, root, res.Files))
	assert.Empty(t, res.Errors)
	assert.GreaterOrEqual(t, res.DirsScanned, int64(5))
}

func TestWalk_Exclude(t *testing.T) {
	t.Parallel()
	root := createTestTree(t)

	res, err := Walk(context.Background(), root, Options{
		Exclude: []string{"node_modules", "*.tmp", filepath.Join(root, "sub", "deep", "more")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a.txt",
		"sub/b.txt",
		"sub/deep/c.txt",
	}, relPaths(t, root, res.Files))
}

func TestWalk_SkipFiles(t *testing.T) {
	t.Parallel()
	root := createTestTree(t)

	res, err := Walk(context.Background(), root, Options{
		SkipFiles: []string{filepath.Join(root, "a.txt")},
	})
	require.NoError(t, err)
	assert.NotContains(t, relPaths(t, root, res.Files), "a.txt")
	assert.Len(t, res.Files, 5)
}

func TestWalk_EmptyDirectory(t *testing.T) {
	t.Parallel()

	res, err := Walk(context.Background(), t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
}

func TestWalk_Symlinks(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := createTestTree(t)
	require.NoError(t, os.Symlink(filepath.Join(root, "sub"), filepath.Join(root, "loop")))
	require.NoError(t, os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling")))

	res, err := Walk(context.Background(), root, Options{})
	require.NoError(t, err)

	rel := relPaths(t, root, res.Files)
	assert.Contains(t, rel, "link.txt", "file symlink is reported")
	assert.NotContains(t, rel, "loop", "directory symlink is not a file")
	assert.NotContains(t, rel, "loop/b.txt", "directory symlink is not descended")
	assert.Len(t, rel, 7)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, filepath.Join(root, "dangling"), res.Errors[0].Path)
}

func TestWalk_KeepsRootSpelling(t *testing.T) {
	root := createTestTree(t)
	parent, base := filepath.Split(root)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(parent))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	sep := string(filepath.Separator)
	deep := filepath.FromSlash("sub/deep/c.txt")
	tests := []struct {
		name   string
		root   string
		top    string
		nested string
	}{
		{"dot prefix", "." + sep + base, "." + sep + base + sep + "a.txt", "." + sep + base + sep + deep},
		{"trailing separator", base + sep, base + sep + "a.txt", base + sep + deep},
		{"bare name", base, base + sep + "a.txt", base + sep + deep},
		{"absolute", root, filepath.Join(root, "a.txt"), filepath.Join(root, deep)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Walk(context.Background(), tt.root, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.root, res.Root)
			assert.Contains(t, res.Files, tt.top)
			assert.Contains(t, res.Files, tt.nested)
			assert.Len(t, res.Files, 6)
		})
	}

	t.Run("current directory", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(root))
		t.Cleanup(func() { _ = os.Chdir(wd) })
		res, err := Walk(context.Background(), ".", Options{})
		require.NoError(t, err)
		assert.Contains(t, res.Files, "."+sep+"a.txt")
		assert.Contains(t, res.Files, "."+sep+filepath.FromSlash("sub/b.txt"))
	})
}

func TestWalk_RootErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		_, err := Walk(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
		assert.True(t, errors.Is(err, ErrNotDirectory), "error = %v", err)
	})

	t.Run("file as root", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		_, err := Walk(context.Background(), path, Options{})
		assert.True(t, errors.Is(err, ErrNotDirectory), "error = %v", err)
	})
}

func TestWalk_Cancelled(t *testing.T) {
	t.Parallel()
	root := createTestTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Walk(ctx, root, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchesPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"/data/cache", "/data/cache", true},
		{"/data/cache/x", "/data/cache", true},
		{"/data/cachex", "/data/cache", false},
		{"/data/file.log", "*.log", true},
		{"/data/file.txt", "*.log", false},
		{"/data/file.txt", "", false},
		{"/data/sub/file.txt", "/data/*/file.txt", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path+"|"+tt.pattern, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MatchesPattern(tt.path, tt.pattern))
		})
	}
}
