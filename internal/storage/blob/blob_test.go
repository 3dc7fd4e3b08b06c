package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lendlens/internal/config"
)

// 1x1 PNG
var pngPixel, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

func TestInline_UploadAsset(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		contentType string
		wantPrefix  string
		wantErr     bool
	}{
		{name: "declared type", data: pngPixel, contentType: "image/png", wantPrefix: "data:image/png;base64,"},
		{name: "sniffed type", data: pngPixel, contentType: "", wantPrefix: "data:image/png;base64,"},
		{name: "octet stream is sniffed", data: pngPixel, contentType: "application/octet-stream", wantPrefix: "data:image/png;base64,"},
		{name: "text rejected", data: []byte("hello"), contentType: "text/plain", wantErr: true},
		{name: "empty rejected", data: nil, contentType: "image/png", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewInline().UploadAsset(context.Background(), tt.data, tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, tt.wantPrefix), got)
			decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, tt.wantPrefix))
			require.NoError(t, err)
			assert.Equal(t, tt.data, decoded)
		})
	}
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func stubS3(t *testing.T, putter *fakePutter) *string {
	t.Helper()
	origLoad, origNew, origNow := loadDefaultAWSConfig, newS3ClientFromConfig, now
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, now = origLoad, origNew, origNow
	})

	loadDefaultAWSConfig = func(_ context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}
	var endpoint string
	newS3ClientFromConfig = func(_ aws.Config, optFns ...func(*s3.Options)) objectPutter {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint != nil {
			endpoint = *opts.BaseEndpoint
		}
		return putter
	}
	now = func() time.Time { return time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC) }
	return &endpoint
}

func testBlobConfig() config.Blob {
	return config.Blob{
		BlobProvider:  config.BlobS3,
		S3Bucket:      "lendlens",
		S3Region:      "us-east-1",
		S3Endpoint:    "http://127.0.0.1:9000",
		S3AccessKey:   "minioadmin",
		S3SecretKey:   "minioadmin",
		PublicBaseURL: "https://cdn.lendlens.com/",
	}
}

func TestS3_UploadAsset(t *testing.T) {
	putter := &fakePutter{}
	endpoint := stubS3(t, putter)

	store, err := NewS3(context.Background(), testBlobConfig())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", *endpoint)

	url, err := store.UploadAsset(context.Background(), pngPixel, "image/png")
	require.NoError(t, err)

	require.NotNil(t, putter.input)
	key := aws.ToString(putter.input.Key)
	assert.True(t, strings.HasPrefix(key, "defaulters/2025/7/4/"), key)
	assert.Equal(t, "lendlens", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, pngPixel, putter.body)
	assert.Equal(t, "https://cdn.lendlens.com/"+key, url)
}

func TestS3_UploadAssetErrors(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	stubS3(t, putter)

	store, err := NewS3(context.Background(), testBlobConfig())
	require.NoError(t, err)

	_, err = store.UploadAsset(context.Background(), pngPixel, "image/png")
	assert.ErrorContains(t, err, "access denied")

	_, err = store.UploadAsset(context.Background(), []byte("plain text"), "text/plain")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
