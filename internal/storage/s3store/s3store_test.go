package s3store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dom/movie-wallet/internal/config"
	"github.com/dom/movie-wallet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []*s3.DeleteObjectInput
	putErr  error
	delErr  error
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.delErr != nil {
		return nil, f.delErr
	}
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func TestStore_Upload(t *testing.T) {
	api := &fakeObjectAPI{}
	store := newStore(api, config.S3Config{Bucket: "posters", PublicURL: "https://cdn.example.com/"})

	stored, err := store.Upload(context.Background(), &domain.ImageFile{
		Data:        []byte("gif-bytes"),
		ContentType: "image/gif",
	})
	require.NoError(t, err)

	require.Len(t, api.puts, 1)
	put := api.puts[0]
	assert.Equal(t, "posters", aws.ToString(put.Bucket))
	assert.Equal(t, "image/gif", aws.ToString(put.ContentType))
	assert.Equal(t, int64(9), aws.ToInt64(put.ContentLength))
	assert.Equal(t, []byte("gif-bytes"), api.bodies[0])

	key := aws.ToString(put.Key)
	assert.True(t, strings.HasPrefix(key, "movie-wallet/"))
	assert.True(t, strings.HasSuffix(key, ".gif"))
	assert.Equal(t, key, stored.StorageID)
	assert.Equal(t, "https://cdn.example.com/"+key, stored.URL)
}

func TestStore_UploadError(t *testing.T) {
	api := &fakeObjectAPI{putErr: errors.New("boom")}
	store := newStore(api, config.S3Config{Bucket: "posters"})

	_, err := store.Upload(context.Background(), &domain.ImageFile{Data: []byte("x"), ContentType: "image/png"})
	assert.Error(t, err)
}

func TestStore_Delete(t *testing.T) {
	api := &fakeObjectAPI{}
	store := newStore(api, config.S3Config{Bucket: "posters"})

	require.NoError(t, store.Delete(context.Background(), ""))
	assert.Empty(t, api.deletes)

	require.NoError(t, store.Delete(context.Background(), "movie-wallet/p1.png"))
	require.Len(t, api.deletes, 1)
	assert.Equal(t, "posters", aws.ToString(api.deletes[0].Bucket))
	assert.Equal(t, "movie-wallet/p1.png", aws.ToString(api.deletes[0].Key))

	api.delErr = errors.New("denied")
	assert.Error(t, store.Delete(context.Background(), "movie-wallet/p2.png"))
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.S3Config
		want string
	}{
		{
			name: "explicit public url",
			cfg:  config.S3Config{Bucket: "b", PublicURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com",
		},
		{
			name: "path style endpoint",
			cfg:  config.S3Config{Bucket: "b", Endpoint: "http://127.0.0.1:9000/", UsePathStyle: true},
			want: "http://127.0.0.1:9000/b",
		},
		{
			name: "virtual host endpoint",
			cfg:  config.S3Config{Bucket: "b", Endpoint: "https://b.storage.example.com"},
			want: "https://b.storage.example.com",
		},
		{
			name: "aws default",
			cfg:  config.S3Config{Bucket: "b", Region: "eu-west-1"},
			want: "https://b.s3.eu-west-1.amazonaws.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBaseURL(tt.cfg))
		})
	}
}
