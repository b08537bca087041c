package scoring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Sentinel store failures, mapped to artifact errors by the loader.
var (
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrArtifactPermission = errors.New("artifact permission denied")
)

// ArtifactStore fetches artifact bytes by key.
type ArtifactStore interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// FileStore reads artifacts from a local directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Fetch(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Clean("/"+key)))
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, key)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%w: %s", ErrArtifactPermission, key)
	default:
		return nil, err
	}
}

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, input *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store reads artifacts from a bucket under an optional prefix.
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	objectKey := path.Join(s.prefix, key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrArtifactNotFound, s.bucket, objectKey)
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "NotFound", "NoSuchKey", "NoSuchBucket":
				return nil, fmt.Errorf("%w: s3://%s/%s", ErrArtifactNotFound, s.bucket, objectKey)
			case "AccessDenied", "Forbidden":
				return nil, fmt.Errorf("%w: s3://%s/%s", ErrArtifactPermission, s.bucket, objectKey)
			}
		}
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", s.bucket, objectKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, objectKey, err)
	}
	return data, nil
}
