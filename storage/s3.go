package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/wholspace-backend/errs"
)

// DeleteObjects accepts at most this many keys per call
const maxDeleteBatch = 1000

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3 is a Blob backed by an S3 bucket
type S3 struct {
	client        s3API
	bucket        string
	publicBaseURL string
	logger        zerolog.Logger
}

// NewS3 returns a Blob writing to bucket. Object URLs are publicBaseURL + "/" + key; an empty
// publicBaseURL falls back to the bucket's virtual-hosted address in region.
func NewS3(cfg aws.Config, bucket, publicBaseURL string) *S3 {
	return newS3(s3.NewFromConfig(cfg), bucket, publicBaseURL, cfg.Region)
}

func newS3(client s3API, bucket, publicBaseURL, region string) *S3 {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        log.With().Str("component", "s3Blob").Str("bucket", bucket).Logger(),
	}
}

func (b *S3) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", errs.NewStoreUnavailable("put object "+key, err)
	}
	return b.publicBaseURL + "/" + key, nil
}

func (b *S3) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})

	var keys []types.ObjectIdentifier
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, errs.NewStoreUnavailable("list objects "+prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, types.ObjectIdentifier{Key: obj.Key})
		}
	}

	deleted := 0
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))
		out, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &types.Delete{
				Objects: keys[start:end],
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return deleted, errs.NewStoreUnavailable("delete objects "+prefix, err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return deleted + (end - start - len(out.Errors)), errs.NewStoreUnavailable(
				"delete objects "+prefix,
				fmt.Errorf("%d objects not deleted, first %s: %s", len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message)),
			)
		}
		deleted += end - start
	}

	b.logger.Debug().Str("prefix", prefix).Int("deleted", deleted).Msg("deleted objects")
	return deleted, nil
}
