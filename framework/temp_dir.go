package framework

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// TempDirFactory creates a fresh writable directory on every call.
type TempDirFactory interface {
	Create() (string, error)
}

// TempDirFactoryFunc adapts a function to TempDirFactory.
type TempDirFactoryFunc func() (string, error)

func (f TempDirFactoryFunc) Create() (string, error) { return f() }

type uuidTempDirFactory struct {
	base string
}

// NewTempDirFactory returns a TempDirFactory that creates uniquely named directories
// under base. If base is empty, the system temporary directory is used.
func NewTempDirFactory(base string) TempDirFactory {
	if base == "" {
		base = os.TempDir()
	}
	return uuidTempDirFactory{base: base}
}

func (f uuidTempDirFactory) Create() (string, error) {
	dir := filepath.Join(f.base, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create temporary directory: %w", err)
	}
	return dir, nil
}
