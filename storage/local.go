package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

// LocalProvider implements Provider on the local filesystem. It is used to
// mirror prepared outputs into another directory tree.
type LocalProvider struct {
	basePath string
	baseURL  string
}

// NewLocalProvider creates a new local storage provider
func NewLocalProvider(basePath, baseURL string) (*LocalProvider, error) {
	if basePath == "" {
		return nil, apperrors.NewInvalid("base_path", basePath, "required for local storage")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, apperrors.NewFilesystem("mkdir", basePath, err)
	}
	return &LocalProvider{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Upload copies input.File to basePath/input.Key.
func (p *LocalProvider) Upload(ctx context.Context, input UploadInput) (UploadOutput, error) {
	if err := ctx.Err(); err != nil {
		return UploadOutput{}, err
	}
	key := strings.TrimPrefix(filepath.ToSlash(input.Key), "/")
	size, err := WriteFile(p.path(key), func(w io.Writer) error {
		_, err := io.Copy(w, input.File)
		return err
	})
	if err != nil {
		return UploadOutput{}, apperrors.FromError(err).WithDetail("provider", p.Name())
	}
	return UploadOutput{URL: p.url(key), Key: key, Size: size}, nil
}

// Exists checks if a file exists
func (p *LocalProvider) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(p.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, apperrors.NewFilesystem("stat", p.path(key), err)
}

// Delete removes a file. Deleting a missing file is not an error.
func (p *LocalProvider) Delete(ctx context.Context, key string) error {
	err := os.Remove(p.path(key))
	if err != nil && !os.IsNotExist(err) {
		return apperrors.NewFilesystem("delete", p.path(key), err)
	}
	return nil
}

func (p *LocalProvider) Name() string {
	return "local"
}

func (p *LocalProvider) path(key string) string {
	return filepath.Join(p.basePath, filepath.FromSlash(strings.TrimPrefix(key, "/")))
}

func (p *LocalProvider) url(key string) string {
	if p.baseURL == "" {
		return p.path(key)
	}
	return fmt.Sprintf("%s/%s", p.baseURL, key)
}
