// Package digest computes content digests of files for integrity checks.
//
// Files are streamed through a fixed-size buffer so arbitrarily large files
// never have to fit in memory.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ChunkSize is the size of each read while hashing.
const ChunkSize = 4096

// Size is the length in hex characters of a digest.
const Size = sha256.Size * 2

var (
	// ErrNotFound is returned when the file vanished before it could be hashed.
	ErrNotFound = errors.New("file not found")

	// ErrRead is returned when the file exists but cannot be opened or read.
	ErrRead = errors.New("file not readable")
)

// HashFile returns the lowercase hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	sum, _, err := HashFileSize(path)
	return sum, err
}

// HashFileSize hashes the file at path and also reports how many bytes
// were read.
func HashFileSize(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", 0, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", 0, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()

	sum, n, err := hashReader(f)
	if err != nil {
		return "", n, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	return sum, n, nil
}

func hashReader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	buf := make([]byte, ChunkSize)
	n, err := io.CopyBuffer(h, onlyReader{r}, buf)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// onlyReader hides WriterTo/ReaderFrom so io.CopyBuffer uses buf.
type onlyReader struct {
	io.Reader
}
