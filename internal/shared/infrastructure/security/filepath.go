// Package security provides path validation for files the application owns.
package security

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrSymlink is returned when a protected file path is a symbolic link.
var ErrSymlink = errors.New("refusing to follow symlink")

// ErrFileTooLarge is returned when a file exceeds the allowed read size.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// dangerousChars contains shell metacharacters that could be used for injection attacks.
var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r"}

// ValidateFilePath cleans a path, makes it absolute and checks it for
// dangerous characters. Symlinks are not resolved; see RejectSymlink.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}

	// Check for dangerous shell metacharacters
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return "", fmt.Errorf("file path contains forbidden character %q: %s", char, path)
		}
	}

	cleanPath := filepath.Clean(path)

	if !filepath.IsAbs(cleanPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		cleanPath = filepath.Join(cwd, cleanPath)
	}

	return cleanPath, nil
}

// RejectSymlink returns ErrSymlink if path exists and is a symbolic link.
// A missing path is not an error.
func RejectSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%w: %s", ErrSymlink, path)
	}
	return nil
}

// ReadFileLimited reads a validated, non-symlink file of at most limit bytes.
// The returned error wraps fs.ErrNotExist when the file is absent.
func ReadFileLimited(path string, limit int64) ([]byte, error) {
	cleanPath, err := ValidateFilePath(path)
	if err != nil {
		return nil, err
	}
	if err := RejectSymlink(cleanPath); err != nil {
		return nil, err
	}

	// #nosec G304 - path is validated above
	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, path)
	}
	return data, nil
}
