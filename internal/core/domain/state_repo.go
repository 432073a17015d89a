package domain

import "context"

type StateRepository interface {
	// Get fetches the contract state, nil before bootstrap.
	Get(ctx context.Context) (*ContractState, error)
	// Upsert overwrites the contract state.
	Upsert(ctx context.Context, state ContractState) error
	Close()
}
