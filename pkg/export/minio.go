package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/zan8in/moongazing/pkg/config"
)

// Uploader copies finished exports to an S3 compatible bucket.
type Uploader struct {
	client *minio.Client
	bucket string
	secure bool
}

// NewUploader connects and creates the bucket when it is missing.
func NewUploader(ctx context.Context, c config.Minio) (*Uploader, error) {
	if c.Endpoint == "" {
		return nil, errors.New("minio endpoint is not configured")
	}
	bucket := c.Bucket
	if bucket == "" {
		bucket = "moongazing"
	}
	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, errors.Wrap(err, "check bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "create bucket %s", bucket)
		}
	}
	return &Uploader{client: client, bucket: bucket, secure: c.UseSSL}, nil
}

// Upload stores the file at localPath under key, or under its base name
// when key is empty, and returns the object URL.
func (u *Uploader) Upload(ctx context.Context, localPath, key string) (string, error) {
	if key == "" {
		key = filepath.Base(localPath)
	}
	_, err := u.client.FPutObject(ctx, u.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: ContentType(localPath),
	})
	if err != nil {
		return "", errors.Wrapf(err, "upload %s", key)
	}
	return ObjectURL(u.client.EndpointURL().Host, u.bucket, key, u.secure), nil
}

func ObjectURL(host, bucket, key string, secure bool) string {
	scheme := "http"
	if secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, host, bucket, strings.TrimPrefix(key, "/"))
}

func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	}
	return "application/octet-stream"
}
