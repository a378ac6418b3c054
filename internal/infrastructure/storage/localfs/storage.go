package localfs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Storage implements the disposition filesystem primitives on the local disk.
type Storage struct {
	dirMode fs.FileMode
}

func New() *Storage {
	return &Storage{dirMode: 0o755}
}

func (s *Storage) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (s *Storage) Rename(from, to string) error {
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

func (s *Storage) MkdirAll(dir string) error {
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return nil
}

func (s *Storage) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// CopyFile writes to a hidden sibling of dst and renames it into place once
// bytes, mode and mtime are all set. On any failure the sibling is removed.
func (s *Storage) CopyFile(ctx context.Context, src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp := filepath.Join(filepath.Dir(dst), ".organizer-"+uuid.NewString()+".part")
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create temp copy: %w", err)
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
		}
	}()

	if _, err = io.Copy(out, &contextReader{ctx: ctx, r: in}); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err = out.Sync(); err != nil {
		return fmt.Errorf("sync file: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err = os.Chmod(tmp, info.Mode().Perm()); err != nil {
		return fmt.Errorf("preserve mode: %w", err)
	}
	if err = os.Chtimes(tmp, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserve mtime: %w", err)
	}
	if _, statErr := os.Lstat(dst); statErr == nil {
		err = fmt.Errorf("destination %s already exists", dst)
		return err
	}
	if err = os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("move copy into place: %w", err)
	}
	return nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
