package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/kevinaaaquil/library/backend/apperr"
)

const (
	CoverPrefix       = "book-covers/"
	MaxCoverSize      = 512 * 1024
	presignExpiration = 15 * time.Minute
)

var coverExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// S3API is the subset of *s3.Client used for cover storage.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type BlobInfo struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	URL          string    `json:"url"`
}

type BlobConfig struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	PublicBaseURL   string
}

// BlobService keeps book covers in an S3 bucket under CoverPrefix, one object per title.
type BlobService struct {
	client     S3API
	presigner  Presigner
	bucket     string
	publicBase string
	logger     *slog.Logger
}

func NewBlobService(ctx context.Context, cfg BlobConfig, logger *slog.Logger) (*BlobService, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		if cfg.Endpoint != "" {
			publicBase = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return NewBlobServiceWithClient(client, s3.NewPresignClient(client), cfg.Bucket, publicBase, logger), nil
}

func NewBlobServiceWithClient(client S3API, presigner Presigner, bucket, publicBase string, logger *slog.Logger) *BlobService {
	return &BlobService{
		client:     client,
		presigner:  presigner,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		logger:     logger,
	}
}

// UploadCover stores f as the cover of title and returns its public url.
func (s *BlobService) UploadCover(ctx context.Context, title string, f *Upload) (string, error) {
	ext, err := checkCover(f)
	if err != nil {
		return "", err
	}
	key := CoverPrefix + title + ext
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f.Body,
		ContentLength: aws.Int64(f.Size),
		ContentType:   aws.String(coverExtensions[ext]),
	})
	if err != nil {
		s.logger.Error("cover upload failed", "key", key, "error", err)
		return "", apperr.Wrap(apperr.KindInternal, ErrFileUpload.Message, err)
	}
	return s.objectURL(key), nil
}

// ReplaceCover removes the object behind oldURL and uploads f for title.
func (s *BlobService) ReplaceCover(ctx context.Context, oldURL, title string, f *Upload) (string, error) {
	if _, err := checkCover(f); err != nil {
		return "", err
	}
	if err := s.RemoveCover(ctx, oldURL); err != nil {
		return "", err
	}
	return s.UploadCover(ctx, title, f)
}

// RenameCover moves the object behind oldURL to the key for newTitle, keeping its extension.
func (s *BlobService) RenameCover(ctx context.Context, oldURL, newTitle string) (string, error) {
	oldKey, ok := s.keyFromURL(oldURL)
	if !ok {
		return "", ErrBlobNotFound
	}
	newKey := CoverPrefix + newTitle + path.Ext(oldKey)
	if newKey == oldKey {
		return oldURL, nil
	}
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(newKey),
		CopySource: aws.String(s.bucket + "/" + CoverPrefix + url.PathEscape(strings.TrimPrefix(oldKey, CoverPrefix))),
	})
	if err != nil {
		if isNotFound(err) {
			return "", ErrBlobNotFound
		}
		return "", fmt.Errorf("copy cover: %w", err)
	}
	if err := s.deleteKey(ctx, oldKey); err != nil {
		return "", err
	}
	return s.objectURL(newKey), nil
}

// RemoveCover deletes the object behind coverURL. Unknown urls are ignored.
func (s *BlobService) RemoveCover(ctx context.Context, coverURL string) error {
	key, ok := s.keyFromURL(coverURL)
	if !ok {
		return nil
	}
	return s.deleteKey(ctx, key)
}

// BlobURL returns a presigned GET url for the cover called name.
func (s *BlobService) BlobURL(ctx context.Context, name string) (string, error) {
	key := CoverPrefix + name
	if err := s.head(ctx, key); err != nil {
		return "", err
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignExpiration
	})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *BlobService) ListBlobs(ctx context.Context) ([]BlobInfo, error) {
	var blobs []BlobInfo
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(CoverPrefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list covers: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			blobs = append(blobs, BlobInfo{
				Name:         strings.TrimPrefix(key, CoverPrefix),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				URL:          s.objectURL(key),
			})
		}
	}
	if len(blobs) == 0 {
		return nil, ErrBlobStorageEmpty
	}
	return blobs, nil
}

// UpdateBlob replaces the cover called oldName with f stored under title.
func (s *BlobService) UpdateBlob(ctx context.Context, oldName, title string, f *Upload) (string, error) {
	if _, err := checkCover(f); err != nil {
		return "", err
	}
	oldKey := CoverPrefix + oldName
	if err := s.head(ctx, oldKey); err != nil {
		return "", err
	}
	if err := s.deleteKey(ctx, oldKey); err != nil {
		return "", err
	}
	return s.UploadCover(ctx, title, f)
}

func (s *BlobService) DeleteBlob(ctx context.Context, name string) error {
	key := CoverPrefix + name
	if err := s.head(ctx, key); err != nil {
		return err
	}
	return s.deleteKey(ctx, key)
}

func (s *BlobService) head(ctx context.Context, key string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("head %s: %w", key, err)
	}
	return nil
}

func (s *BlobService) deleteKey(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *BlobService) objectURL(key string) string {
	return s.publicBase + "/" + CoverPrefix + url.PathEscape(strings.TrimPrefix(key, CoverPrefix))
}

func (s *BlobService) keyFromURL(u string) (string, bool) {
	i := strings.Index(u, CoverPrefix)
	if i < 0 {
		return "", false
	}
	name, err := url.PathUnescape(u[i+len(CoverPrefix):])
	if err != nil || name == "" {
		return "", false
	}
	return CoverPrefix + name, true
}

func checkCover(f *Upload) (string, error) {
	if f == nil || f.Size <= 0 {
		return "", ErrFileEmpty
	}
	ext := strings.ToLower(path.Ext(f.Filename))
	if _, ok := coverExtensions[ext]; !ok {
		return "", ErrFileFormat
	}
	if f.Size > MaxCoverSize {
		return "", ErrFileTooLarge
	}
	return ext, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
