package judges

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"judge-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// Archive keeps a copy of every raw registry payload in object storage, one
// object per external id, overwritten on each successful fetch.
type Archive struct {
	client storage.Client
	bucket string
	prefix string
}

func NewArchive(client storage.Client, bucket, prefix string) *Archive {
	return &Archive{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object name for externalID.
func (a *Archive) Key(externalID string) string {
	return path.Join(a.prefix, externalID+".json")
}

func (a *Archive) Put(ctx context.Context, externalID string, payload []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, a.Key(externalID), bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", a.Key(externalID), err)
	}
	return nil
}

// Get returns the last archived payload for externalID.
func (a *Archive) Get(ctx context.Context, externalID string) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, a.Key(externalID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", a.Key(externalID), err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", a.Key(externalID), err)
	}
	return data, nil
}
