package emitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/ocitally/internal/config"
	"github.com/yairfalse/ocitally/pkg/report"
)

// S3API is the subset of the S3 client used for uploads.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 error codes that will not change on retry.
var permanentS3Codes = map[string]struct{}{
	"AccessDenied":          {},
	"InvalidAccessKeyId":    {},
	"NoSuchBucket":          {},
	"SignatureDoesNotMatch": {},
	"InvalidBucketName":     {},
}

// S3Emitter writes each family as an object in an S3-compatible bucket, such
// as the OCI Object Storage compatibility endpoint.
type S3Emitter struct {
	client S3API
	bucket string
}

// NewS3Emitter creates an S3 emitter from cfg. Static credentials are used
// when set, otherwise the AWS default chain.
func NewS3Emitter(ctx context.Context, cfg config.S3Config) (*S3Emitter, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return NewS3EmitterWithClient(client, cfg.Bucket), nil
}

// NewS3EmitterWithClient creates an S3 emitter over an existing client.
func NewS3EmitterWithClient(client S3API, bucket string) *S3Emitter {
	return &S3Emitter{client: client, bucket: bucket}
}

// Sink returns "s3".
func (e *S3Emitter) Sink() string { return "s3" }

// Emit puts the encoded family at key run.Destination(family).
func (e *S3Emitter) Emit(ctx context.Context, run report.Run, c *report.Collection) error {
	key := run.Destination(c.Family.Name)
	body := report.Encode(c, run.ID)

	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("text/csv"),
		Metadata:      map[string]string{"correlation-id": run.CorrelationID},
	})
	if err != nil {
		err = fmt.Errorf("put s3://%s/%s: %w", e.bucket, key, err)
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			if _, ok := permanentS3Codes[apiErr.ErrorCode()]; ok {
				return backoff.Permanent(err)
			}
		}
		return err
	}

	log.Debug().Ctx(ctx).
		Str("family", c.Family.Name).
		Str("bucket", e.bucket).
		Str("key", key).
		Int("bytes", len(body)).
		Msg("family uploaded")
	return nil
}

// Close is a no-op.
func (e *S3Emitter) Close() error { return nil }
