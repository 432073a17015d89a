package domain

import "context"

type AssetDefinitionRepository interface {
	// Upsert stores the definition under its storage key.
	Upsert(ctx context.Context, def AssetDefinition) error
	// Get fetches a definition by asset type, nil when absent.
	Get(ctx context.Context, assetType string) (*AssetDefinition, error)
	// GetAll lists every stored definition.
	GetAll(ctx context.Context) ([]AssetDefinition, error)
	// GetByScopeSpecAddress fetches the definition bound to the given scope
	// specification, nil when absent.
	GetByScopeSpecAddress(ctx context.Context, scopeSpecAddress string) (*AssetDefinition, error)
	// Delete removes a definition by asset type.
	Delete(ctx context.Context, assetType string) error
	Close()
}
