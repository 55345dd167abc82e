package cache

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/repogov/pkg/domain/interfaces"
	"github.com/secmon-lab/repogov/pkg/utils/logging"
	"github.com/secmon-lab/repogov/pkg/utils/safe"
	"google.golang.org/api/iterator"
)

type gcsCache struct {
	bucket *storage.BucketHandle
	prefix string
	now    func() time.Time
}

type gcsEntry struct {
	ExpiresAt time.Time `json:"expires_at"`
	Data      []byte    `json:"data"`
}

// NewGCS creates a cache backed by a Cloud Storage bucket. Object writes
// replace atomically; concurrent processes may serve stale-within-TTL
// data, which is accepted.
func NewGCS(ctx context.Context, bucketName, prefix string) (interfaces.Cache, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client",
			goerr.V("bucket", bucketName),
		)
	}

	return &gcsCache{
		bucket: client.Bucket(bucketName),
		prefix: prefix,
		now:    time.Now,
	}, nil
}

func (x *gcsCache) objectName(key string) string {
	return x.prefix + key + ".json"
}

func (x *gcsCache) Get(ctx context.Context, key string) ([]byte, bool) {
	reader, err := x.bucket.Object(x.objectName(key)).NewReader(ctx)
	if err != nil {
		if err != storage.ErrObjectNotExist {
			logging.From(ctx).Warn("failed to open cache object", "key", key, "error", err)
		}
		return nil, false
	}
	defer safe.Close(reader)

	raw, err := io.ReadAll(reader)
	if err != nil {
		logging.From(ctx).Warn("failed to read cache object", "key", key, "error", err)
		return nil, false
	}

	var e gcsEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		logging.From(ctx).Warn("broken cache object", "key", key, "error", err)
		return nil, false
	}
	if x.now().After(e.ExpiresAt) {
		return nil, false
	}

	return e.Data, true
}

func (x *gcsCache) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	raw, err := json.Marshal(&gcsEntry{
		ExpiresAt: x.now().Add(ttl),
		Data:      data,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to encode cache entry", goerr.V("key", key))
	}

	writer := x.bucket.Object(x.objectName(key)).NewWriter(ctx)
	if _, err := writer.Write(raw); err != nil {
		return goerr.Wrap(err, "failed to write cache object", goerr.V("key", key))
	}
	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize cache object", goerr.V("key", key))
	}

	return nil
}

func (x *gcsCache) Clear(ctx context.Context) error {
	iter := x.bucket.Objects(ctx, &storage.Query{Prefix: x.prefix})
	for {
		attrs, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate cache objects")
		}
		if err := x.bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete cache object", goerr.V("object", attrs.Name))
		}
	}

	return nil
}
