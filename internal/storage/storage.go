// Package storage saves and deletes uploaded images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxImageSize = 5 << 20
	// URLPrefix is the public path every stored image is served under.
	URLPrefix = "/uploads/"
)

var ErrInvalidImage = errors.New("invalid image")

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

type ImageStore interface {
	// Save stores the upload under folder and returns its public path.
	Save(ctx context.Context, u Upload, folder string) (string, error)
	// Delete removes a previously saved image. It reports false when the
	// path is not one of ours or is already gone.
	Delete(ctx context.Context, path string) (bool, error)
	// Owns reports whether path points at an image this store manages.
	Owns(path string) bool
}

func ValidateUpload(u Upload) error {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if !allowedExt[ext] {
		return fmt.Errorf("%w: only jpg, jpeg, png, gif and webp files are allowed", ErrInvalidImage)
	}
	if u.Size <= 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidImage)
	}
	if u.Size > MaxImageSize {
		return fmt.Errorf("%w: file size must not exceed 5MB", ErrInvalidImage)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// UniqueFileName builds <sanitized-name>_<unix>_<8 hex><ext>.
func UniqueFileName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "_")
	if base == "" {
		base = "image"
	}
	if len(base) > 64 {
		base = base[:64]
	}
	return fmt.Sprintf("%s_%d_%s%s", base, now.Unix(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8], ext)
}

var safeFolder = regexp.MustCompile(`^[a-z0-9_-]+$`)

func checkFolder(folder string) error {
	if !safeFolder.MatchString(folder) {
		return fmt.Errorf("storage: invalid folder %q", folder)
	}
	return nil
}

// relativeKey turns "/uploads/products/x.png" into "products/x.png",
// rejecting anything that would escape the uploads root.
func relativeKey(path string) (string, bool) {
	if !strings.HasPrefix(path, URLPrefix) {
		return "", false
	}
	rel := strings.TrimPrefix(path, URLPrefix)
	clean := filepath.ToSlash(filepath.Clean(rel))
	if clean != rel || clean == ".." || strings.HasPrefix(clean, "../") || !strings.Contains(clean, "/") {
		return "", false
	}
	return clean, true
}
