package blob

import (
	"context"
	"io"
)

// Store is the physical byte-blob collaborator behind upload metadata. The
// record collections treat it as an opaque writer: blobs are addressed by
// their stored name only.
type Store interface {
	// Save writes the blob under name and returns the number of bytes written.
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (int64, error)
	// Open returns a reader for the blob.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes the blob. Deleting a blob that is already gone is not an
	// error; any other failure must be surfaced so metadata is not removed
	// while the bytes linger.
	Delete(ctx context.Context, name string) error
}
