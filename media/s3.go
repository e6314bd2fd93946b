package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rpupo63/portfolio-cms/config"
)

// S3API is the part of the S3 client the backend calls.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3 struct {
	client  S3API
	bucket  string
	baseURL string
}

// NewS3 builds a client from the default AWS credential chain. MEDIA_ENDPOINT
// switches to path-style addressing for S3 compatible hosts.
func NewS3(ctx context.Context, settings config.Settings) (*S3, error) {
	if settings.MediaBucket == "" {
		return nil, errors.New("MEDIA_BUCKET is not set for the s3 driver")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(settings.MediaRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if settings.MediaEndpoint != "" {
			o.BaseEndpoint = aws.String(settings.MediaEndpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3WithClient(client, settings.MediaBucket, s3BaseURL(settings)), nil
}

func NewS3WithClient(client S3API, bucket, baseURL string) *S3 {
	return &S3{client: client, bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func s3BaseURL(settings config.Settings) string {
	switch {
	case settings.MediaPublicBaseURL != "":
		return settings.MediaPublicBaseURL
	case settings.MediaEndpoint != "":
		return strings.TrimSuffix(settings.MediaEndpoint, "/") + "/" + settings.MediaBucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", settings.MediaBucket, settings.MediaRegion)
	}
}

func (b *S3) Put(ctx context.Context, folder string, blob Blob) (string, error) {
	key := objectKey(folder, blob.Filename)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          blob.Reader,
		ContentLength: aws.Int64(blob.Size),
	}
	if blob.ContentType != "" {
		input.ContentType = aws.String(blob.ContentType)
	}
	if _, err := b.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return b.baseURL + "/" + key, nil
}

func (b *S3) Delete(ctx context.Context, id string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(id),
	})
	return err
}

func (b *S3) ObjectID(url string) (string, bool) {
	return keyFromURL(b.baseURL, url)
}
