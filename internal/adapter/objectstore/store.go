// Package objectstore persists result documents to an S3-compatible bucket
// such as Cloudflare R2.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/couchcryptid/climate-risk-engine/internal/assessment"
	"github.com/couchcryptid/climate-risk-engine/internal/config"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

const contentType = "application/json"

// ErrNotFound is returned by Get when no result exists for the asset.
var ErrNotFound = errors.New("result not found")

// ObjectAPI is the subset of the S3 client used by the store.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ResultStore writes one JSON document per asset under results/.
// It implements pipeline.BatchLoader.
type ResultStore struct {
	client  ObjectAPI
	bucket  string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewResultStore builds an S3 client for the configured endpoint. Credentials
// come from the default AWS chain (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY).
func NewResultStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*ResultStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.ResultRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.ResultEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.ResultEndpoint)
			o.UsePathStyle = true
		}
	})
	return NewResultStoreWithClient(client, cfg.ResultBucket, logger, metrics), nil
}

// NewResultStoreWithClient wraps an existing client.
func NewResultStoreWithClient(client ObjectAPI, bucket string, logger *slog.Logger, metrics *observability.Metrics) *ResultStore {
	return &ResultStore{client: client, bucket: bucket, logger: logger, metrics: metrics}
}

// Put uploads the result and returns its object key.
func (s *ResultStore) Put(ctx context.Context, res *assessment.Result) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result %s: %w", res.Asset.ID, err)
	}
	key := assessment.ObjectKey(res.Asset.ID)
	if err := s.putObject(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

// LoadBatch uploads serialized results keyed by asset id.
func (s *ResultStore) LoadBatch(ctx context.Context, msgs []domain.OutputMessage) error {
	for _, msg := range msgs {
		if err := s.putObject(ctx, assessment.ObjectKey(string(msg.Key)), msg.Value); err != nil {
			return err
		}
	}
	return nil
}

// Get downloads the stored result for an asset.
func (s *ResultStore) Get(ctx context.Context, assetID string) (*assessment.Result, error) {
	key := assessment.ObjectKey(assetID)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var res assessment.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &res, nil
}

func (s *ResultStore) putObject(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.metrics.ResultStoreWrites.WithLabelValues("error").Inc()
		s.logger.Error("result upload failed", "bucket", s.bucket, "key", key, "error", err)
		return fmt.Errorf("put %s: %w", key, err)
	}
	s.metrics.ResultStoreWrites.WithLabelValues("success").Inc()
	s.logger.Info("result uploaded", "bucket", s.bucket, "key", key, "bytes", len(data))
	return nil
}
