package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local writes files below Root and serves them under BaseURL.
type Local struct {
	Root    string
	BaseURL string
}

func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Local{Root: root, BaseURL: baseURL}, nil
}

func (l *Local) Save(_ context.Context, prefix, filename string, body io.Reader, _ string) (string, error) {
	key := NewKey(prefix, filename)
	full := l.path(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close media file: %w", err)
	}
	return key, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := os.Remove(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) URL(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSuffix(l.BaseURL, "/") + "/" + key
}

func (l *Local) path(key string) string {
	return filepath.Join(l.Root, filepath.FromSlash(filepath.Clean("/"+key)))
}
