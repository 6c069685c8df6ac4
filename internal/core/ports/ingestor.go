package ports

import (
	"context"

	"go.trai.ch/cask/internal/core/domain"
)

// Ingestor turns filesystem objects into content addresses.
//
//go:generate go run go.uber.org/mock/mockgen -source=ingestor.go -destination=mocks/mock_ingestor.go -package=mocks
type Ingestor interface {
	// Ingest serializes path with method and hashes it with algo.
	Ingest(ctx context.Context, path string, method domain.ContentAddressMethod, algo domain.HashAlgorithm) (domain.ContentAddress, error)

	// IngestModulo is Ingest with every occurrence of selfHashPart erased from
	// the serialization before hashing.
	IngestModulo(
		ctx context.Context,
		path string,
		method domain.ContentAddressMethod,
		algo domain.HashAlgorithm,
		selfHashPart string,
	) (domain.ContentAddress, error)

	// ScanReferences reports which candidates occur in the serialization of path.
	ScanReferences(ctx context.Context, path string, candidates []domain.StorePath) ([]domain.StorePath, error)
}
