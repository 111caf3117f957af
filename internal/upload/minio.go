// Package upload stores profile pictures on an S3-compatible image host.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrUploadFailed      = errors.New("upload failed")
	ErrDeleteFailed      = errors.New("delete failed")
)

// Pictures larger than this on either axis are scaled down to fit. Smaller
// images are stored at their original size, never upscaled.
const maxDimension = 500

const jpegQuality = 85

// Asset identifies one hosted picture.
type Asset struct {
	URL      string
	PublicID string
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioUploader implements the image-host collaborator over a MinIO (or any
// S3-compatible) endpoint.
type MinioUploader struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

func NewMinioUploader(cfg Config) (*MinioUploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("NewMinioUploader: %w", err)
	}
	return &MinioUploader{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		useSSL:   cfg.UseSSL,
	}, nil
}

func (u *MinioUploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("EnsureBucket: %w", err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("EnsureBucket: %w", err)
		}
	}
	return nil
}

// Upload validates and normalizes the picture, stores it under a fresh key
// inside folder, and returns the hosted URL plus the key for later deletes.
func (u *MinioUploader) Upload(ctx context.Context, data []byte, folder string) (*Asset, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("Upload: %w: %v", ErrUnsupportedFormat, err)
	}

	ext, imgFormat, contentType, err := formatInfo(format)
	if err != nil {
		return nil, fmt.Errorf("Upload: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imgFormat, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("Upload: encode: %w", err)
	}

	publicID := folder + "/" + uuid.NewString() + ext
	_, err = u.client.PutObject(ctx, u.bucket, publicID, &buf, int64(buf.Len()),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("Upload: %w: %v", ErrUploadFailed, err)
	}

	return &Asset{URL: u.publicURL(publicID), PublicID: publicID}, nil
}

// Delete removes a previously uploaded asset by its public id.
func (u *MinioUploader) Delete(ctx context.Context, publicID string) error {
	if err := u.client.RemoveObject(ctx, u.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("Delete: %w: %v", ErrDeleteFailed, err)
	}
	return nil
}

func (u *MinioUploader) publicURL(publicID string) string {
	scheme := "http"
	if u.useSSL {
		scheme = "https"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.endpoint,
		Path:   "/" + u.bucket + "/" + publicID,
	}).String()
}

func formatInfo(format string) (ext string, f imaging.Format, contentType string, err error) {
	switch format {
	case "jpeg":
		return ".jpg", imaging.JPEG, "image/jpeg", nil
	case "png":
		return ".png", imaging.PNG, "image/png", nil
	case "gif":
		return ".gif", imaging.GIF, "image/gif", nil
	default:
		return "", 0, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
