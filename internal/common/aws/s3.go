package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client reads frozen model artifacts.
type S3Client struct {
	client *s3.Client
}

func NewS3Client(cfg aws.Config) *S3Client {
	return &S3Client{client: s3.NewFromConfig(cfg)}
}

func (s *S3Client) GetObject(ctx context.Context, input *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return s.client.GetObject(ctx, input, optFns...)
}
