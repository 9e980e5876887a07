// Package blob implements the key-value store on a gocloud.dev bucket, so the
// photo index can live in memory, on local disk or in a cloud bucket.
package blob

import (
	"context"

	"nearby/internal/domain/repository"
	"nearby/internal/errors"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/gcsblob"  // gs:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	_ "gocloud.dev/blob/s3blob"   // s3:// buckets
	"gocloud.dev/gcerrors"
)

type store struct {
	bucket *blob.Bucket
}

// Open opens the bucket at url (mem://, file:///path, gs://, s3://...).
func Open(ctx context.Context, url string) (repository.KeyValueStore, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %q", url)
	}

	return NewStore(bucket), nil
}

// NewStore wraps an already opened bucket. The store owns the bucket.
func NewStore(bucket *blob.Bucket) repository.KeyValueStore {
	return &store{bucket: bucket}
}

func (s *store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, repository.ErrKeyNotFound
		}

		return nil, errors.Wrapf(err, "failed to read key %q", key)
	}

	return data, nil
}

func (s *store) Put(ctx context.Context, key string, value []byte, contentType string) error {
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := s.bucket.WriteAll(ctx, key, value, opts); err != nil {
		return errors.Wrapf(err, "failed to write key %q", key)
	}

	return nil
}

func (s *store) Delete(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, key)
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrapf(err, "failed to delete key %q", key)
	}

	return nil
}

func (s *store) Close() error {
	return errors.WithStack(s.bucket.Close())
}
