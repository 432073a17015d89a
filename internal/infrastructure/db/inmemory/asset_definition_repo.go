package inmemorydb

import (
	"context"
	"sort"
	"sync"

	"github.com/provlabs/classifyd/internal/core/domain"
)

type assetDefinitionRepository struct {
	lock *sync.RWMutex
	defs map[string]domain.AssetDefinition
}

func NewAssetDefinitionRepository(...interface{}) (domain.AssetDefinitionRepository, error) {
	return &assetDefinitionRepository{
		lock: &sync.RWMutex{},
		defs: make(map[string]domain.AssetDefinition),
	}, nil
}

func (r *assetDefinitionRepository) Upsert(ctx context.Context, def domain.AssetDefinition) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.defs[def.StorageKey()] = def
	return nil
}

func (r *assetDefinitionRepository) Get(
	ctx context.Context, assetType string,
) (*domain.AssetDefinition, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	key := domain.AssetDefinition{AssetType: assetType}.StorageKey()
	def, ok := r.defs[key]
	if !ok {
		return nil, nil
	}
	return &def, nil
}

func (r *assetDefinitionRepository) GetAll(ctx context.Context) ([]domain.AssetDefinition, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	keys := make([]string, 0, len(r.defs))
	for key := range r.defs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	defs := make([]domain.AssetDefinition, 0, len(keys))
	for _, key := range keys {
		defs = append(defs, r.defs[key])
	}
	return defs, nil
}

func (r *assetDefinitionRepository) GetByScopeSpecAddress(
	ctx context.Context, scopeSpecAddress string,
) (*domain.AssetDefinition, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for _, def := range r.defs {
		if def.ScopeSpecAddress == scopeSpecAddress {
			found := def
			return &found, nil
		}
	}
	return nil, nil
}

func (r *assetDefinitionRepository) Delete(ctx context.Context, assetType string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.defs, domain.AssetDefinition{AssetType: assetType}.StorageKey())
	return nil
}

func (r *assetDefinitionRepository) Close() {}
