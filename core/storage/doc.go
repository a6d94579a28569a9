// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a narrow Client interface used by the raw
// payload archive: every successful registry fetch can be written as a JSON
// snapshot next to the rawExternalPayload column, so operators can diff what the
// registry returned across runs without querying the database.
//
// The Client interface keeps storage interactions mockable in unit tests
// (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
package storage
