package ports

import (
	"context"
	"io"
)

// Telemetry records the progress of long-running work as vertices.
//
//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Record starts a vertex named name. The returned context carries it.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes the recording session.
	Close() error
}

// Vertex is one unit of recorded work.
type Vertex interface {
	// Stdout returns a writer for progress output of the vertex.
	Stdout() io.Writer
	// Cached marks the vertex as answered from a cache.
	Cached()
	// Complete marks the vertex as finished, failed when err is non-nil.
	Complete(err error)
}
