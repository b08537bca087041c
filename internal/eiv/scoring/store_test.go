package scoring

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	body string
	err  error
	got  *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestFileStore_Fetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scaler.json"), []byte("{}"), 0o644))
	store := NewFileStore(dir)

	data, err := store.Fetch(context.Background(), "scaler.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	_, err = store.Fetch(context.Background(), "missing.json")
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	// keys cannot escape the directory
	_, err = store.Fetch(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestFileStore_Fetch_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file modes")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "scaler.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o000))

	_, err := NewFileStore(dir).Fetch(context.Background(), "scaler.json")
	assert.ErrorIs(t, err, ErrArtifactPermission)
}

func TestS3Store_Fetch(t *testing.T) {
	client := &fakeS3{body: `{"kind":"regressor"}`}
	store := NewS3Store(client, "models", "eiv/v1")

	data, err := store.Fetch(context.Background(), "regressor.json")
	require.NoError(t, err)
	assert.Equal(t, `{"kind":"regressor"}`, string(data))
	assert.Equal(t, "models", aws.ToString(client.got.Bucket))
	assert.Equal(t, "eiv/v1/regressor.json", aws.ToString(client.got.Key))
}

func TestS3Store_Fetch_MapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no such key", &s3types.NoSuchKey{}, ErrArtifactNotFound},
		{"not found api error", &smithy.GenericAPIError{Code: "NotFound"}, ErrArtifactNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, ErrArtifactPermission},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Store(&fakeS3{err: tt.err}, "models", "").Fetch(context.Background(), "scaler.json")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewS3Store(&fakeS3{err: errors.New("timeout")}, "models", "").Fetch(context.Background(), "scaler.json")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrArtifactNotFound))
	assert.Contains(t, err.Error(), "s3://models/scaler.json")
}
