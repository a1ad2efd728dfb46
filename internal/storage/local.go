package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore writes images to <root>/uploads/<folder>/<name>.
type LocalStore struct {
	root string
	now  func() time.Time
}

func NewLocalStore(root string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, "uploads"), 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStore{root: root, now: time.Now}, nil
}

// Dir is the directory served under URLPrefix.
func (s *LocalStore) Dir() string {
	return filepath.Join(s.root, "uploads")
}

func (s *LocalStore) Save(ctx context.Context, u Upload, folder string) (string, error) {
	if err := ValidateUpload(u); err != nil {
		return "", err
	}
	if err := checkFolder(folder); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.Dir(), folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	name := UniqueFileName(u.Filename, s.now())

	out, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, io.LimitReader(u.Body, MaxImageSize+1)); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return URLPrefix + folder + "/" + name, nil
}

func (s *LocalStore) Owns(path string) bool {
	_, ok := relativeKey(path)
	return ok
}

func (s *LocalStore) Delete(ctx context.Context, path string) (bool, error) {
	rel, ok := relativeKey(path)
	if !ok {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := os.Remove(filepath.Join(s.Dir(), filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete file: %w", err)
	}
	return true, nil
}
