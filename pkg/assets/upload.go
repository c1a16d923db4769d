package assets

import (
	"context"

	"github.com/google/uuid"

	"github.com/iamvince24/serenity-canvas/pkg/assetstore"
	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
)

// Uploader persists new image blobs and seeds the cache with them.
type Uploader struct {
	store assetstore.Store
	cache *Cache
}

// NewUploader returns an uploader writing to store. cache may be nil.
func NewUploader(store assetstore.Store, cache *Cache) *Uploader {
	return &Uploader{store: store, cache: cache}
}

// Ingest decodes blob, stores it under a fresh id and injects it into the
// cache. It returns the FileRecord to add to the canvas.
func (u *Uploader) Ingest(ctx context.Context, blob []byte) (canvas.FileRecord, error) {
	return u.IngestAs(ctx, uuid.NewString(), blob)
}

// IngestAs is Ingest with a caller-chosen id.
func (u *Uploader) IngestAs(ctx context.Context, id string, blob []byte) (canvas.FileRecord, error) {
	if err := errors.ValidateAssetID(id); err != nil {
		return canvas.FileRecord{}, err
	}
	img, err := Decode(blob)
	if err != nil {
		return canvas.FileRecord{}, err
	}
	rec := assetstore.NewRecord(id, blob, img.MimeType, img.Width, img.Height)
	if err := u.store.Put(ctx, rec); err != nil {
		return canvas.FileRecord{}, errors.Wrap(errors.ErrCodeStorage, err, "store asset %s", id)
	}
	if u.cache != nil {
		if _, err := u.cache.Inject(id, blob, img.MimeType); err != nil {
			return canvas.FileRecord{}, err
		}
	}
	return rec.FileRecord(), nil
}
