package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = params
	b, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func TestS3Archiver_Put(t *testing.T) {
	fake := &fakeS3{}
	a := newS3(fake, "vault", "audit/")
	a.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }

	key, err := a.Put(context.Background(), "audit.csv", []byte("id,action\n"), "text/csv")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "audit/2024/03/09/"), key)
	assert.True(t, strings.HasSuffix(key, "-audit.csv"), key)
	assert.Equal(t, "vault", aws.ToString(fake.in.Bucket))
	assert.Equal(t, key, aws.ToString(fake.in.Key))
	assert.Equal(t, "text/csv", aws.ToString(fake.in.ContentType))
	assert.Equal(t, "id,action\n", string(fake.body))
}

func TestS3Archiver_PutError(t *testing.T) {
	a := newS3(&fakeS3{err: errors.New("bucket missing")}, "vault", "")

	_, err := a.Put(context.Background(), "audit.json", []byte("[]"), "application/json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket missing")
}
