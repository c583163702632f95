package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSProvider implements Provider for Aliyun OSS.
type OSSProvider struct {
	bucket     *oss.Bucket
	bucketName string
	domain     string
}

// NewOSSProvider creates a new OSS storage provider
// Endpoint: oss-cn-hangzhou.aliyuncs.com
func NewOSSProvider(endpoint, accessKeyID, accessKeySecret, bucketName, domain string) (*OSSProvider, error) {
	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	return &OSSProvider{
		bucket:     bucket,
		bucketName: bucketName,
		domain:     publicDomain(endpoint, bucketName, domain),
	}, nil
}

// publicDomain returns the URL prefix objects are reachable under.
func publicDomain(endpoint, bucketName, domain string) string {
	if domain == "" {
		endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
		return fmt.Sprintf("https://%s.%s", bucketName, endpoint)
	}
	if !strings.HasPrefix(domain, "http") {
		domain = "https://" + domain
	}
	return strings.TrimSuffix(domain, "/")
}

// Upload stores input.File under input.Key.
func (p *OSSProvider) Upload(ctx context.Context, input UploadInput) (UploadOutput, error) {
	if err := ctx.Err(); err != nil {
		return UploadOutput{}, err
	}
	key := objectKey(input.Key)

	var opts []oss.Option
	if input.Size > 0 {
		opts = append(opts, oss.ContentLength(input.Size))
	}
	if err := p.bucket.PutObject(key, input.File, opts...); err != nil {
		return UploadOutput{}, fmt.Errorf("failed to upload %s to OSS: %w", key, err)
	}
	return UploadOutput{
		URL:  fmt.Sprintf("%s/%s", p.domain, key),
		Key:  key,
		Size: input.Size,
	}, nil
}

// Exists checks if an object exists in OSS
func (p *OSSProvider) Exists(ctx context.Context, key string) (bool, error) {
	return p.bucket.IsObjectExist(objectKey(key))
}

// Delete removes an object from OSS
func (p *OSSProvider) Delete(ctx context.Context, key string) error {
	if err := p.bucket.DeleteObject(objectKey(key)); err != nil {
		return fmt.Errorf("failed to delete %s from OSS: %w", key, err)
	}
	return nil
}

func (p *OSSProvider) Name() string {
	return "oss"
}

// objectKey strips the leading slash so no empty folder is created.
func objectKey(key string) string {
	return strings.TrimPrefix(key, "/")
}
