package keychain

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File stores each secret as its own file under a directory, for
// headless machines where no OS credential store is available.
// Files are created with 0600 and the directory with 0700.
type File struct {
	dir string
}

// NewFile creates a file store rooted at dir. The directory is created
// lazily on the first Set.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

// DefaultFileDir returns the per-user fallback credential directory.
func DefaultFileDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, Service, "credentials"), nil
}

func (f *File) path(account string) string {
	// Account names are fixed constants, but sanitize anyway so a
	// caller-supplied name cannot escape the directory.
	safe := strings.ReplaceAll(account, string(os.PathSeparator), "_")
	return filepath.Join(f.dir, safe)
}

func (f *File) Get(account string) (string, error) {
	data, err := os.ReadFile(f.path(account))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	if err != nil {
		return "", fmt.Errorf("read secret %s: %w", account, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *File) Set(account, secret string) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	// Write-then-rename so a crash never leaves a half-written secret.
	tmp, err := os.CreateTemp(f.dir, "."+filepath.Base(f.path(account))+".*")
	if err != nil {
		return fmt.Errorf("write secret %s: %w", account, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write secret %s: %w", account, err)
	}
	if _, err := tmp.WriteString(secret); err != nil {
		tmp.Close()
		return fmt.Errorf("write secret %s: %w", account, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write secret %s: %w", account, err)
	}
	if err := os.Rename(tmp.Name(), f.path(account)); err != nil {
		return fmt.Errorf("write secret %s: %w", account, err)
	}
	return nil
}

func (f *File) Delete(account string) error {
	err := os.Remove(f.path(account))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	if err != nil {
		return fmt.Errorf("delete secret %s: %w", account, err)
	}
	return nil
}
