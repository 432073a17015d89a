package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/provlabs/classifyd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const assetDefinitionStoreDir = "asset-definitions"

type assetDefinitionRepository struct {
	store *badgerhold.Store
}

func NewAssetDefinitionRepository(config ...interface{}) (domain.AssetDefinitionRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, assetDefinitionStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset definition store: %s", err)
	}

	return &assetDefinitionRepository{store}, nil
}

func (r *assetDefinitionRepository) Upsert(ctx context.Context, def domain.AssetDefinition) error {
	if err := r.store.Upsert(def.StorageKey(), &def); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(def.StorageKey(), &def)
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *assetDefinitionRepository) Get(
	ctx context.Context, assetType string,
) (*domain.AssetDefinition, error) {
	key := domain.AssetDefinition{AssetType: assetType}.StorageKey()

	var def domain.AssetDefinition
	err := r.store.Get(key, &def)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset definition: %w", err)
	}
	return &def, nil
}

func (r *assetDefinitionRepository) GetAll(ctx context.Context) ([]domain.AssetDefinition, error) {
	var defs []domain.AssetDefinition
	if err := r.store.Find(&defs, &badgerhold.Query{}); err != nil {
		return nil, fmt.Errorf("failed to list asset definitions: %w", err)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].StorageKey() < defs[j].StorageKey()
	})
	return defs, nil
}

func (r *assetDefinitionRepository) GetByScopeSpecAddress(
	ctx context.Context, scopeSpecAddress string,
) (*domain.AssetDefinition, error) {
	var defs []domain.AssetDefinition
	err := r.store.Find(&defs, badgerhold.Where("ScopeSpecAddress").Eq(scopeSpecAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to find asset definition by scope spec: %w", err)
	}
	if len(defs) == 0 {
		return nil, nil
	}
	return &defs[0], nil
}

func (r *assetDefinitionRepository) Delete(ctx context.Context, assetType string) error {
	key := domain.AssetDefinition{AssetType: assetType}.StorageKey()

	err := r.store.Delete(key, domain.AssetDefinition{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	if errors.Is(err, badger.ErrConflict) {
		attempts := 1
		for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
			time.Sleep(100 * time.Millisecond)
			err = r.store.Delete(key, domain.AssetDefinition{})
			attempts++
		}
	}
	return err
}

func (r *assetDefinitionRepository) Close() {
	_ = r.store.Close()
}
