package storage

import (
	"context"
	"io"
	"os"

	"hackdash/dao/model"
	"hackdash/logutils"

	"golang.org/x/net/webdav"
)

// FSStore keeps images as <id>.jpg files on a webdav.FileSystem: webdav.Dir
// on disk in production, webdav.NewMemFS in tests.
type FSStore struct {
	fs webdav.FileSystem
}

func NewDisk(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, model.DefaultFolderPerm); err != nil {
		return nil, err
	}
	return &FSStore{fs: webdav.Dir(dir)}, nil
}

func NewMemory() *FSStore {
	return &FSStore{fs: webdav.NewMemFS()}
}

func fileName(name string) string {
	return "/" + name + ".jpg"
}

func (s *FSStore) Save(ctx context.Context, name string, r io.Reader, limit int64) (int64, error) {
	path := fileName(name)
	f, err := s.fs.OpenFile(ctx, path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, model.DefaultFilePerm)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > limit {
		err = ErrTooLarge
	}
	if err != nil {
		if rerr := s.fs.RemoveAll(ctx, path); rerr != nil {
			logutils.Log.WithField("file", path).Warn("remove partial upload: ", rerr)
		}
		return 0, err
	}
	return n, nil
}

func (s *FSStore) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	f, err := s.fs.OpenFile(ctx, fileName(name), os.O_RDONLY, 0)
	if os.IsNotExist(err) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, 0, ErrNotFound
	}
	return f, stat.Size(), nil
}

func (s *FSStore) Remove(ctx context.Context, name string) error {
	path := fileName(name)
	if _, err := s.fs.Stat(ctx, path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return s.fs.RemoveAll(ctx, path)
}
