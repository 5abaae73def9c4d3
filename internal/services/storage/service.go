package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/common"
	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
)

// Service stores raw page bodies in an S3-compatible bucket. Object keys are
// "{uuid}.html" or "{uuid}.html.gz"; the UUIDs are time-ordered (v7) so that
// lexicographic key order equals creation order and range listings stay
// cheap.
type Service struct {
	client          *s3.Client
	bucket          string
	compressContent bool
	compressMinSize int
	logger          arbor.ILogger
}

// NewService builds the S3 client from config. The endpoint is addressed
// path-style, which is what MinIO-style stores expect.
func NewService(ctx context.Context, cfg *common.StorageConfig, logger arbor.ILogger) (interfaces.ObjectStorage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load object storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.Bucket).
		Bool("compress", cfg.CompressContent).
		Msg("Object storage client initialized")

	return &Service{
		client:          client,
		bucket:          cfg.Bucket,
		compressContent: cfg.CompressContent,
		compressMinSize: cfg.CompressMinSize,
		logger:          logger,
	}, nil
}

// Upload stores the body under a fresh time-ordered UUID, gzipping it when
// compression is enabled and the body exceeds the configured minimum size.
// Returns the storage id and the compression actually applied.
func (s *Service) Upload(ctx context.Context, content []byte) (uuid.UUID, models.CompressionType, error) {
	compression := models.CompressionNone
	body := content
	if s.compressContent && len(content) > s.compressMinSize {
		compressed, err := gzipCompress(content)
		if err != nil {
			return uuid.Nil, compression, fmt.Errorf("failed to compress content: %w", err)
		}
		body = compressed
		compression = models.CompressionGzip
	}

	storageID, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, compression, fmt.Errorf("failed to generate storage id: %w", err)
	}

	key := fmt.Sprintf("%s.%s", storageID, compression.FileExtension())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(compression.ContentType()),
	})
	if err != nil {
		return uuid.Nil, compression, fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	s.logger.Debug().
		Str("key", key).
		Int("raw_bytes", len(content)).
		Int("stored_bytes", len(body)).
		Msg("Page body stored")

	return storageID, compression, nil
}

// GetContent fetches a stored body and reverses the recorded compression.
// Bodies are text by contract; bytes that do not decode as UTF-8 are an
// error rather than silently mangled content.
func (s *Service) GetContent(ctx context.Context, id uuid.UUID, compression models.CompressionType) ([]byte, error) {
	key := fmt.Sprintf("%s.%s", id, compression.FileExtension())

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object %s: %w", key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	if compression == models.CompressionGzip {
		raw, err = gzipDecompress(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress object %s: %w", key, err)
		}
	}

	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("object %s is not valid UTF-8", key)
	}
	return raw, nil
}
