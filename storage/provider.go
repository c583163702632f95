package storage

import (
	"context"
	"io"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

// Provider stores prepared dataset files under object keys.
type Provider interface {
	Upload(ctx context.Context, input UploadInput) (UploadOutput, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Name() string
}

// UploadInput describes one object to store.
type UploadInput struct {
	File io.Reader
	Key  string
	Size int64
}

// UploadOutput describes a stored object.
type UploadOutput struct {
	URL  string
	Key  string
	Size int64
}

// ProviderConfig selects and configures a Provider.
type ProviderConfig struct {
	Type            string `mapstructure:"type" default:"local" validate:"oneof=local oss"`
	BasePath        string `mapstructure:"base_path"`
	BaseURL         string `mapstructure:"base_url"`
	Endpoint        string `mapstructure:"endpoint" validate:"required_if=Type oss"`
	AccessKeyID     string `mapstructure:"access_key_id" validate:"required_if=Type oss"`
	AccessKeySecret string `mapstructure:"access_key_secret" validate:"required_if=Type oss"`
	Bucket          string `mapstructure:"bucket" validate:"required_if=Type oss"`
	Domain          string `mapstructure:"domain"`
	Prefix          string `mapstructure:"prefix"`
}

// NewProvider builds the provider named by cfg.Type.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case "oss":
		return NewOSSProvider(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.Bucket, cfg.Domain)
	case "local", "":
		return NewLocalProvider(cfg.BasePath, cfg.BaseURL)
	default:
		return nil, apperrors.NewInvalid("type", cfg.Type, "unsupported storage provider")
	}
}
