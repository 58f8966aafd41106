package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// MaxImageSize caps profile photo uploads at 5MB.
const MaxImageSize = 5 << 20

// ErrNotAnImage is returned for files without a known image extension.
var ErrNotAnImage = errors.New("upload: only jpg, jpeg and png are allowed")

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// Storage writes uploaded images to disk and hands back retrievable URLs.
type Storage struct {
	dir     string
	baseURL string
}

// NewStorage ensures the upload directory exists.
func NewStorage(dir, baseURL string) (*Storage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("upload: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir: %w", err)
	}
	return &Storage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the directory served statically.
func (s *Storage) Dir() string {
	return s.dir
}

// SaveImage stores the file keyed by user identity and returns its URL.
func (s *Storage) SaveImage(userID int64, originalName string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := imageExtensions[ext]; !ok {
		return "", ErrNotAnImage
	}

	name := fmt.Sprintf("user-%d-%d%s", userID, time.Now().UnixMilli(), ext)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("upload: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, MaxImageSize)); err != nil {
		return "", fmt.Errorf("upload: write file: %w", err)
	}

	return path.Join(s.baseURL, name), nil
}
