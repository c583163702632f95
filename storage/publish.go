package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"github.com/xXAI-botXx/3xM/concurrency"
	apperrors "github.com/xXAI-botXx/3xM/errors"
)

// PublishStats summarises one Publish call.
type PublishStats struct {
	Files   int
	Bytes   int64
	Skipped int
}

// Publisher uploads prepared dataset directories to a Provider.
type Publisher struct {
	provider   Provider
	pool       *concurrency.Pool
	prefix     string
	extensions []string
	overwrite  bool
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPrefix puts every object key under prefix.
func WithPrefix(prefix string) PublisherOption {
	return func(p *Publisher) { p.prefix = prefix }
}

// WithExtensions limits uploads to files with the given extensions.
func WithExtensions(exts []string) PublisherOption {
	return func(p *Publisher) { p.extensions = exts }
}

// WithOverwrite uploads objects even when the key already exists.
func WithOverwrite(overwrite bool) PublisherOption {
	return func(p *Publisher) { p.overwrite = overwrite }
}

// NewPublisher creates a publisher uploading with the given number of workers.
func NewPublisher(provider Provider, workers int, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		provider:   provider,
		pool:       concurrency.NewPool(workers),
		extensions: DefaultExtensions,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type upload struct {
	file string
	key  string
}

// Publish uploads every image in root/dir for each of dirs. Keys keep the
// directory name, so root/mask-prep/a.png becomes <prefix>/mask-prep/a.png.
// The first failed upload stops the run.
func (p *Publisher) Publish(ctx context.Context, root string, dirs []string) (PublishStats, error) {
	var uploads []upload
	for _, dir := range dirs {
		names, err := ListImages(filepath.Join(root, dir), p.extensions)
		if err != nil {
			return PublishStats{}, err
		}
		for _, name := range names {
			uploads = append(uploads, upload{
				file: filepath.Join(root, dir, name),
				key:  path.Join(p.prefix, filepath.ToSlash(dir), name),
			})
		}
	}

	var files, skipped atomic.Int64
	var bytes atomic.Int64
	_, err := p.pool.Run(ctx, len(uploads), func(ctx context.Context, i int) error {
		u := uploads[i]
		if !p.overwrite {
			exists, err := p.provider.Exists(ctx, u.key)
			if err != nil {
				return err
			}
			if exists {
				skipped.Add(1)
				return nil
			}
		}
		n, err := p.uploadFile(ctx, u)
		if err != nil {
			return err
		}
		files.Add(1)
		bytes.Add(n)
		return nil
	})

	return PublishStats{
		Files:   int(files.Load()),
		Bytes:   bytes.Load(),
		Skipped: int(skipped.Load()),
	}, err
}

func (p *Publisher) uploadFile(ctx context.Context, u upload) (int64, error) {
	f, err := os.Open(u.file)
	if err != nil {
		return 0, apperrors.NewFilesystem("open", u.file, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, apperrors.NewFilesystem("stat", u.file, err)
	}
	out, err := p.provider.Upload(ctx, UploadInput{File: f, Key: u.key, Size: info.Size()})
	if err != nil {
		return 0, err
	}
	return out.Size, nil
}
