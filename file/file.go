// Package file opens the raw text input of a session.
package file

import (
	"fmt"
	"os"
)

// Stdin is the path meaning the standard input.
const Stdin = "-"

// Open opens the text file at path and returns its size in bytes. The size
// is 0 for non regular files, f.ex. a named pipe.
func Open(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("failed to stat input: %w", err)
	}

	if info.IsDir() {
		_ = f.Close()
		return nil, 0, fmt.Errorf("input %s is a directory", path)
	}

	if !info.Mode().IsRegular() {
		return f, 0, nil
	}

	return f, info.Size(), nil
}

// IsStdin reports whether path names the standard input.
func IsStdin(path string) bool {
	return path == "" || path == Stdin
}

