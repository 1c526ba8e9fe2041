package filesystem

import (
	"fmt"
	"log/slog"
	"os"
)

var (
	ErrFileNotFound = fmt.Errorf("filesystem: file not found")
	ErrInvalidPath  = fmt.Errorf("filesystem: invalid path")
)

// Filesystem is the narrow disk collaborator used by the static handler and
// the access logger. Everything the server knows about the disk goes through
// here, which keeps the handlers testable against a temp directory.
type Filesystem interface {
	ReadFile(path string) ([]byte, error)
	AppendFile(path string, content []byte) error

	FileExists(path string) (bool, error)
	FileSize(path string) (int64, error)
	IsDirectory(path string) (bool, error)

	CreateDirectory(path string) error
}

type localFileSystem struct {
}

func NewLocalFileSystem() Filesystem {
	return &localFileSystem{}
}

func (filesystem *localFileSystem) ReadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	return content, nil
}

// AppendFile opens path in append mode, creating it if absent. Callers that
// need appends serialized across goroutines must hold their own lock; the
// access logger does.
func (filesystem *localFileSystem) AppendFile(path string, content []byte) error {
	if path == "" {
		return ErrInvalidPath
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Error("closing file error", "error", closeErr)
		}
	}()

	_, err = file.Write(content)
	return err
}

func (filesystem *localFileSystem) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return !info.IsDir(), nil
}

func (filesystem *localFileSystem) FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrFileNotFound
		}
		return 0, err
	}

	return info.Size(), nil
}

func (filesystem *localFileSystem) IsDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return info.IsDir(), nil
}

func (filesystem *localFileSystem) CreateDirectory(path string) error {
	exists, err := filesystem.IsDirectory(path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return os.MkdirAll(path, 0770)
}
