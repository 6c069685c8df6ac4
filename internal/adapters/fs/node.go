package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/internal/core/ports"
)

// IngestorNodeID is the unique identifier for the ingestor Graft node.
const IngestorNodeID graft.ID = "adapter.fs.ingestor"

func init() {
	graft.Register(graft.Node[ports.Ingestor]{
		ID:        IngestorNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Ingestor, error) {
			return NewIngestor(), nil
		},
	})
}
