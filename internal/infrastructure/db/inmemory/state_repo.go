package inmemorydb

import (
	"context"
	"sync"

	"github.com/provlabs/classifyd/internal/core/domain"
)

type stateRepository struct {
	lock  *sync.RWMutex
	state *domain.ContractState
}

func NewStateRepository(...interface{}) (domain.StateRepository, error) {
	return &stateRepository{lock: &sync.RWMutex{}}, nil
}

func (r *stateRepository) Get(ctx context.Context) (*domain.ContractState, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.state == nil {
		return nil, nil
	}
	state := *r.state
	return &state, nil
}

func (r *stateRepository) Upsert(ctx context.Context, state domain.ContractState) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.state = &state
	return nil
}

func (r *stateRepository) Close() {}
