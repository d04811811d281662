// Package storage abstracts where submitted audio artifacts live. The
// evaluation worker reads artifacts back through the same interface, so the
// service works identically against local disk and Cloudinary.
package storage

import (
	"context"
	"io"
)

// AudioStore persists audio artifacts and streams them back by reference.
type AudioStore interface {
	// Save stores the audio stream and returns an opaque reference.
	Save(ctx context.Context, name string, audio io.Reader) (string, error)
	// Open streams the artifact identified by ref.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}
