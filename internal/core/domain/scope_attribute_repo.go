package domain

import "context"

type ScopeAttributeRepository interface {
	// Upsert stores the attribute keyed by its scope address.
	Upsert(ctx context.Context, attribute AssetScopeAttribute) error
	// Get fetches the attribute for a scope, nil when the scope has never
	// been onboarded.
	Get(ctx context.Context, scopeAddress string) (*AssetScopeAttribute, error)
	// FindByScopeAddress returns every attribute record matching the scope
	// address. A healthy store yields zero or one; callers treat more as
	// data corruption.
	FindByScopeAddress(ctx context.Context, scopeAddress string) ([]AssetScopeAttribute, error)
	// ListPending returns every attribute still awaiting a verifier verdict.
	ListPending(ctx context.Context) ([]AssetScopeAttribute, error)
	// Delete removes the attribute for a scope.
	Delete(ctx context.Context, scopeAddress string) error
	Close()
}
