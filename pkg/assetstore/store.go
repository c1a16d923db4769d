package assetstore

import (
	"context"
	"time"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
)

// Record is one persisted asset: the raw blob plus its metadata.
type Record struct {
	ID        string `json:"id" bson:"_id"`
	Blob      []byte `json:"blob" bson:"blob"`
	MimeType  string `json:"mimeType" bson:"mimeType"`
	Width     int    `json:"width" bson:"width"`
	Height    int    `json:"height" bson:"height"`
	ByteSize  int64  `json:"byteSize" bson:"byteSize"`
	CreatedAt int64  `json:"createdAt" bson:"createdAt"` // Unix milliseconds
}

// NewRecord returns a record for blob with ByteSize and CreatedAt filled in.
func NewRecord(id string, blob []byte, mime string, width, height int) *Record {
	return &Record{
		ID:        id,
		Blob:      blob,
		MimeType:  mime,
		Width:     width,
		Height:    height,
		ByteSize:  int64(len(blob)),
		CreatedAt: time.Now().UnixMilli(),
	}
}

// FileRecord returns the metadata half of r.
func (r *Record) FileRecord() canvas.FileRecord {
	return canvas.FileRecord{
		ID:             r.ID,
		MimeType:       r.MimeType,
		OriginalWidth:  r.Width,
		OriginalHeight: r.Height,
		ByteSize:       r.ByteSize,
		CreatedAt:      r.CreatedAt,
	}
}

// Validate checks the id and mime type of r.
func (r *Record) Validate() error {
	if err := errors.ValidateAssetID(r.ID); err != nil {
		return err
	}
	return errors.ValidateMimeType(r.MimeType)
}

// Store is a keyed blob store for image assets.
type Store interface {
	// Put inserts or replaces the record with rec.ID.
	Put(ctx context.Context, rec *Record) error

	// Get returns the record for id, or an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// GetAllKeys returns every asset id present in the store.
	GetAllKeys(ctx context.Context) ([]string, error)

	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored assets.
	Count(ctx context.Context) (int, error)

	// Close releases the backend's resources.
	Close() error
}
