package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestHashFile(t *testing.T) {
	t.Parallel()

	t.Run("known digest", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "a.txt", "hello")

		got, err := HashFile(path)
		if err != nil {
			t.Fatalf("HashFile() error = %v", err)
		}
		if got != helloSHA256 {
			t.Errorf("HashFile() = %s, want %s", got, helloSHA256)
		}
		if len(got) != Size {
			t.Errorf("len = %d, want %d", len(got), Size)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "a.txt", "same content")

		first, err := HashFile(path)
		if err != nil {
			t.Fatalf("HashFile() error = %v", err)
		}
		second, err := HashFile(path)
		if err != nil {
			t.Fatalf("HashFile() error = %v", err)
		}
		if first != second {
			t.Errorf("digests differ: %s vs %s", first, second)
		}
	})

	t.Run("single byte change alters digest", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		a := writeFile(t, dir, "a.txt", "hello world")
		b := writeFile(t, dir, "b.txt", "hello worle")

		da, _ := HashFile(a)
		db, _ := HashFile(b)
		if da == db {
			t.Error("digests equal for different content")
		}
	})

	t.Run("spans multiple chunks", func(t *testing.T) {
		t.Parallel()
		content := strings.Repeat("0123456789abcdef", ChunkSize) // 16 chunks
		path := writeFile(t, t.TempDir(), "big.bin", content)

		got, n, err := HashFileSize(path)
		if err != nil {
			t.Fatalf("HashFileSize() error = %v", err)
		}
		if n != int64(len(content)) {
			t.Errorf("bytes = %d, want %d", n, len(content))
		}
		sum := sha256.Sum256([]byte(content))
		if want := hex.EncodeToString(sum[:]); got != want {
			t.Errorf("HashFileSize() = %s, want %s", got, want)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := HashFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits not enforced")
		}
		path := writeFile(t, t.TempDir(), "locked.txt", "secret")
		if err := os.Chmod(path, 0o000); err != nil {
			t.Fatalf("Chmod() error = %v", err)
		}

		_, err := HashFile(path)
		if !errors.Is(err, ErrRead) {
			t.Errorf("error = %v, want ErrRead", err)
		}
		if errors.Is(err, ErrNotFound) {
			t.Error("unreadable file reported as not found")
		}
	})

	t.Run("directory is a read error", func(t *testing.T) {
		t.Parallel()
		_, err := HashFile(t.TempDir())
		if !errors.Is(err, ErrRead) {
			t.Errorf("error = %v, want ErrRead", err)
		}
	})
}

