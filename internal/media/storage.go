// Package media stores uploaded images and documents and turns stored names
// back into public URLs.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage persists processed uploads under folder/name.
type Storage interface {
	Put(ctx context.Context, folder, name string, data []byte, contentType string) error
	Delete(ctx context.Context, folder, name string) error
}

// LocalStorage writes under a root directory served at /uploads.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

func (s *LocalStorage) Root() string { return s.root }

func (s *LocalStorage) path(folder, name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.root, folder, name), nil
}

func (s *LocalStorage) Put(_ context.Context, folder, name string, data []byte, _ string) error {
	p, err := s.path(folder, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp := p + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (s *LocalStorage) Delete(_ context.Context, folder, name string) error {
	p, err := s.path(folder, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
