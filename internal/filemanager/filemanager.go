// Package filemanager implements the file operations exposed by the server.
// Every path argument is validated through the sandbox guard before any
// filesystem access; reads of partially specified content stream where they
// can, and writes go through atomic replace so concurrent readers never see
// a torn file.
package filemanager

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"scopefs/internal/editor"
	"scopefs/internal/logging"
	"scopefs/internal/sandbox"
	"scopefs/internal/walker"
	"scopefs/pkg/fileops"
)

// ErrAlreadyExists signals that a move destination is occupied.
var ErrAlreadyExists = errors.New("destination already exists")

// FileManager routes every operation through a containment guard.
type FileManager struct {
	guard  *sandbox.Guard
	walker *walker.Walker
	logger *logging.AppLogger
}

func NewFileManager(guard *sandbox.Guard, logger *logging.AppLogger) *FileManager {
	return &FileManager{
		guard:  guard,
		walker: walker.New(guard, logger),
		logger: logger,
	}
}

// ReadTextFile returns the file's content as UTF-8 text. head or tail limit
// the result to the first or last n lines; at most one may be set.
func (fm *FileManager) ReadTextFile(path string, head, tail int) (string, error) {
	if head > 0 && tail > 0 {
		return "", errors.New("cannot specify both head and tail parameters simultaneously")
	}

	rp, err := fm.guard.CheckExisting(path)
	if err != nil {
		return "", err
	}

	switch {
	case head > 0:
		return fileops.ReadFileHead(rp.Path, head)
	case tail > 0:
		return fileops.ReadFileTail(rp.Path, tail)
	default:
		data, err := os.ReadFile(rp.Path)
		if err != nil {
			return "", fmt.Errorf("cannot read %s: %w", path, err)
		}
		return string(data), nil
	}
}

// MediaFile is binary file content ready for transport.
type MediaFile struct {
	MIMEType string
	Data     string // base64
}

// ReadMediaFile returns the file's bytes base64-encoded with the MIME type
// sniffed from content.
func (fm *FileManager) ReadMediaFile(path string) (*MediaFile, error) {
	rp, err := fm.guard.CheckExisting(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(rp.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	return &MediaFile{
		MIMEType: mimetype.Detect(data).String(),
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// WriteFile creates or fully replaces a file. The parent directory must
// already exist inside the allowed roots; an existing file keeps its
// permission bits.
func (fm *FileManager) WriteFile(path, content string) error {
	rp, err := fm.guard.Check(path)
	if err != nil {
		return err
	}

	parent := filepath.Dir(rp.Path)
	info, err := os.Stat(parent)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("parent directory of %s: %w", path, sandbox.ErrNotFound)
		}
		return fmt.Errorf("cannot stat parent of %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("parent of %s is not a directory", path)
	}

	perm := os.FileMode(0o644)
	if existing, err := os.Stat(rp.Path); err == nil {
		perm = existing.Mode().Perm()
	}

	if err := fileops.AtomicWriteFile(rp.Path, []byte(content), perm); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	fm.logger.Debug("Wrote file", "path", rp.Path, "bytes", len(content))
	return nil
}

// EditFile applies a sequence of text replacements and returns the unified
// diff. With dryRun the file is left untouched.
func (fm *FileManager) EditFile(path string, edits []editor.EditOperation, dryRun bool) (string, error) {
	rp, err := fm.guard.CheckExisting(path)
	if err != nil {
		return "", err
	}
	return editor.Apply(rp.Path, edits, dryRun)
}

// MoveFile renames source to destination. The destination must not exist;
// rename is used so moves within a filesystem are atomic.
func (fm *FileManager) MoveFile(source, destination string) error {
	src, err := fm.guard.CheckExisting(source)
	if err != nil {
		return err
	}
	dst, err := fm.guard.Check(destination)
	if err != nil {
		return err
	}
	if dst.Exists {
		return fmt.Errorf("cannot move to %s: %w", destination, ErrAlreadyExists)
	}

	if err := os.Rename(src.Path, dst.Path); err != nil {
		return fmt.Errorf("cannot move %s to %s: %w", source, destination, err)
	}
	fm.logger.Debug("Moved file", "from", src.Path, "to", dst.Path)
	return nil
}

// CreateDirectory creates the directory and any missing parents. An
// existing directory is not an error.
func (fm *FileManager) CreateDirectory(path string) error {
	rp, err := fm.guard.Check(path)
	if err != nil {
		return err
	}
	if err := fileops.EnsureDirectoryExists(rp.Path); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", path, err)
	}
	return nil
}

// ListDirectory returns the direct children of a directory.
func (fm *FileManager) ListDirectory(path string) ([]walker.Entry, error) {
	return fm.walker.List(path)
}

// ListDirectoryWithSizes returns direct children with sizes and counts,
// sorted by name or by size.
func (fm *FileManager) ListDirectoryWithSizes(path, sortBy string) ([]walker.Entry, error) {
	return fm.walker.ListWithSizes(path, sortBy)
}

// DirectoryTree returns the recursive tree view rooted at path.
func (fm *FileManager) DirectoryTree(path string, exclude []string) ([]*walker.TreeNode, error) {
	return fm.walker.Tree(path, exclude)
}

// SearchFiles returns absolute paths of entries under path whose names
// match pattern.
func (fm *FileManager) SearchFiles(path, pattern string, exclude []string) ([]string, error) {
	return fm.walker.Search(path, pattern, exclude)
}

// FileInfo is the metadata surface of get_file_info.
type FileInfo struct {
	Size        int64
	Created     time.Time
	Modified    time.Time
	Accessed    time.Time
	IsDirectory bool
	IsFile      bool
	Permissions string
}

// GetFileInfo returns size, timestamps, kind flags and octal permissions.
func (fm *FileManager) GetFileInfo(path string) (*FileInfo, error) {
	rp, err := fm.guard.CheckExisting(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(rp.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", path, err)
	}

	created, accessed := statTimes(info)
	return &FileInfo{
		Size:        info.Size(),
		Created:     created,
		Modified:    info.ModTime(),
		Accessed:    accessed,
		IsDirectory: info.IsDir(),
		IsFile:      info.Mode().IsRegular(),
		Permissions: fmt.Sprintf("%03o", info.Mode().Perm()),
	}, nil
}

// ListAllowedDirectories returns the configured roots.
func (fm *FileManager) ListAllowedDirectories() []string {
	return fm.guard.Roots()
}
