package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/config"
	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

// s3API is the subset of the S3 client used by S3Backend
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

// S3Backend stores posters as objects under bucket/prefix. Staging uploads
// the bytes as an uncompleted multipart upload; publishing completes it
// with If-None-Match so an existing key is never replaced.
type S3Backend struct {
	client s3API
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3Backend creates a backend from the default AWS credential chain
func NewS3Backend(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (*S3Backend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Backend(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newS3Backend(client s3API, bucket, prefix string, logger *zap.Logger) *S3Backend {
	return &S3Backend{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.Named("posters.s3"),
	}
}

func (b *S3Backend) key(name string) string {
	return b.prefix + name
}

func (b *S3Backend) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(name)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head poster %s: %w", name, err)
}

func (b *S3Backend) Stage(ctx context.Context, name string, content []byte) (Staged, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	key := b.key(name)

	created, err := b.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("start poster upload: %w", err)
	}
	staged := &s3Staged{backend: b, name: name, key: key, uploadID: aws.ToString(created.UploadId)}

	part, err := b.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(b.bucket),
		Key:        aws.String(key),
		UploadId:   created.UploadId,
		PartNumber: aws.Int32(1),
		Body:       bytes.NewReader(content),
	})
	if err != nil {
		if derr := staged.Discard(ctx); derr != nil {
			b.logger.Warn("failed to abort poster upload", zap.String("key", key), zap.Error(derr))
		}
		return nil, fmt.Errorf("upload poster part: %w", err)
	}
	staged.etag = part.ETag
	return staged, nil
}

func (b *S3Backend) FindByStem(ctx context.Context, stem string) (string, []byte, error) {
	if err := ValidateName(stem); err != nil {
		return "", nil, err
	}
	listed, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		Prefix:  aws.String(b.key(stem + ".")),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return "", nil, fmt.Errorf("list posters: %w", err)
	}
	if len(listed.Contents) == 0 {
		return "", nil, ErrObjectNotFound
	}
	key := aws.ToString(listed.Contents[0].Key)

	obj, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", nil, ErrObjectNotFound
		}
		return "", nil, fmt.Errorf("get poster: %w", err)
	}
	defer obj.Body.Close()

	content, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read poster: %w", err)
	}
	return strings.TrimPrefix(key, b.prefix), content, nil
}

type s3Staged struct {
	backend  *S3Backend
	name     string
	key      string
	uploadID string
	etag     *string
}

func (s *s3Staged) Name() string { return s.name }

func (s *s3Staged) Publish(ctx context.Context) error {
	_, err := s.backend.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:      aws.String(s.backend.bucket),
		Key:         aws.String(s.key),
		UploadId:    aws.String(s.uploadID),
		IfNoneMatch: aws.String("*"),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: []types.CompletedPart{{ETag: s.etag, PartNumber: aws.Int32(1)}},
		},
	})
	if err == nil {
		return nil
	}
	if isPreconditionFailed(err) {
		if derr := s.Discard(ctx); derr != nil {
			s.backend.logger.Warn("failed to abort poster upload", zap.String("key", s.key), zap.Error(derr))
		}
		return fmt.Errorf("%w: %s", catalog.ErrPosterAlreadyExists, s.name)
	}
	return fmt.Errorf("publish poster %s: %w", s.name, err)
}

func (s *s3Staged) Discard(ctx context.Context) error {
	_, err := s.backend.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(s.backend.bucket),
		Key:      aws.String(s.key),
		UploadId: aws.String(s.uploadID),
	})
	var noUpload *types.NoSuchUpload
	if err != nil && !errors.As(err, &noUpload) {
		return fmt.Errorf("abort poster upload: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nk) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}
