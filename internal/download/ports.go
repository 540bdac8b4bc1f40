// Package download monitors materialization of remote-only books.
//
// The actual transfer belongs to the platform; this package launches the
// materialization primitive, polls the file's on-disk footprint to
// estimate progress, and hands the refreshed book back for playback.
package download

import "context"

// Materializer is the OS-level primitive that makes a remote-only file's
// bytes fully present locally. It may fail or be cancelled via ctx.
type Materializer interface {
	Materialize(ctx context.Context, path string) error
}

// Stater is the filesystem status primitive used for progress estimation.
type Stater interface {
	// ReportedSize returns the file's declared byte size, which the
	// platform reports even before the bytes are local.
	ReportedSize(path string) (int64, error)

	// AllocatedBytes returns the bytes actually resident on disk,
	// derived from the file's allocated block count.
	AllocatedBytes(path string) (int64, error)
}
