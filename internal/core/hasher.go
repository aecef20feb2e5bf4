package core

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2s"
)

// Fingerprint is the content-derived summary of a room: one hex BLAKE2s-256
// digest per file in scope, each followed by a newline, in walk order.
//
// Two fingerprints are equal iff the walker produced the same ordered list of
// files with byte-identical contents. File names are not hashed, so renaming a
// file without changing its position in the walk order keeps the fingerprint.
type Fingerprint string

// String returns the raw fingerprint text.
func (f Fingerprint) String() string {
	return string(f)
}

// Files reports how many files contributed to the fingerprint.
func (f Fingerprint) Files() int {
	return strings.Count(string(f), "\n")
}

// Fingerprinter computes room fingerprints.
type Fingerprinter struct {
	// ScopeDir receives the dump-scope side files. Empty means the process
	// working directory.
	ScopeDir string
}

// NewFingerprinter creates a Fingerprinter writing scope dumps to scopeDir.
func NewFingerprinter(scopeDir string) *Fingerprinter {
	return &Fingerprinter{ScopeDir: scopeDir}
}

// Compute walks room and returns its fingerprint.
//
// When dumpScope is set, the list of hashed file paths is also written, one per
// line, to a file named after the room in ScopeDir. The dump is a debugging aid
// and does not influence the fingerprint.
func (f *Fingerprinter) Compute(room *Room, dumpScope bool) (Fingerprint, error) {
	walker, err := NewWalker(room)
	if err != nil {
		return "", err
	}
	files, err := walker.Files()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(files) * (2*blake2s.Size + 1))
	var scope strings.Builder

	for _, p := range files {
		sum, err := hashFile(p)
		if err != nil {
			return "", err
		}
		sb.WriteString(sum)
		sb.WriteByte('\n')
		if dumpScope {
			scope.WriteString(p)
			scope.WriteByte('\n')
		}
	}

	if dumpScope {
		dst := filepath.Join(f.ScopeDir, room.Name)
		if err := os.WriteFile(dst, []byte(scope.String()), 0o644); err != nil {
			return "", fmt.Errorf("dumping file scope: %w", err)
		}
	}

	return Fingerprint(sb.String()), nil
}

// hashFile returns the hex BLAKE2s-256 digest of the file's full content.
func hashFile(p string) (string, error) {
	fh, err := os.Open(p)
	if err != nil {
		return "", fmt.Errorf("opening %q: %w", p, err)
	}
	defer fh.Close()

	h, err := blake2s.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, fh); err != nil {
		return "", fmt.Errorf("hashing %q: %w", p, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
