package storage

import "io"

// BlobStore archives uploaded scanner files so a batch can be re-decoded
// after a template fix without asking the school to re-upload.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
