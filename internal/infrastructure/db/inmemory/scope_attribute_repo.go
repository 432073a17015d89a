package inmemorydb

import (
	"context"
	"sync"

	"github.com/provlabs/classifyd/internal/core/domain"
)

type scopeAttributeRepository struct {
	lock       *sync.RWMutex
	attributes map[string]domain.AssetScopeAttribute
}

func NewScopeAttributeRepository(...interface{}) (domain.ScopeAttributeRepository, error) {
	return &scopeAttributeRepository{
		lock:       &sync.RWMutex{},
		attributes: make(map[string]domain.AssetScopeAttribute),
	}, nil
}

func (r *scopeAttributeRepository) Upsert(
	ctx context.Context, attribute domain.AssetScopeAttribute,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.attributes[attribute.ScopeAddress] = attribute
	return nil
}

func (r *scopeAttributeRepository) Get(
	ctx context.Context, scopeAddress string,
) (*domain.AssetScopeAttribute, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	attribute, ok := r.attributes[scopeAddress]
	if !ok {
		return nil, nil
	}
	return &attribute, nil
}

func (r *scopeAttributeRepository) FindByScopeAddress(
	ctx context.Context, scopeAddress string,
) ([]domain.AssetScopeAttribute, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	attribute, ok := r.attributes[scopeAddress]
	if !ok {
		return nil, nil
	}
	return []domain.AssetScopeAttribute{attribute}, nil
}

func (r *scopeAttributeRepository) ListPending(
	ctx context.Context,
) ([]domain.AssetScopeAttribute, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	pending := make([]domain.AssetScopeAttribute, 0)
	for _, attribute := range r.attributes {
		if attribute.OnboardingStatus == domain.StatusPending {
			pending = append(pending, attribute)
		}
	}
	return pending, nil
}

func (r *scopeAttributeRepository) Delete(ctx context.Context, scopeAddress string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.attributes, scopeAddress)
	return nil
}

func (r *scopeAttributeRepository) Close() {}
