package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/provlabs/classifyd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const scopeAttributeStoreDir = "scope-attributes"

type scopeAttributeRepository struct {
	store *badgerhold.Store
}

func NewScopeAttributeRepository(config ...interface{}) (domain.ScopeAttributeRepository, error) {
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
		dir = filepath.Join(baseDir, scopeAttributeStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open scope attribute store: %s", err)
	}

	return &scopeAttributeRepository{store}, nil
}

func (r *scopeAttributeRepository) Upsert(
	ctx context.Context, attribute domain.AssetScopeAttribute,
) error {
	if err := r.store.Upsert(attribute.ScopeAddress, &attribute); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(attribute.ScopeAddress, &attribute)
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *scopeAttributeRepository) Get(
	ctx context.Context, scopeAddress string,
) (*domain.AssetScopeAttribute, error) {
	var attribute domain.AssetScopeAttribute
	err := r.store.Get(scopeAddress, &attribute)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scope attribute: %w", err)
	}
	return &attribute, nil
}

func (r *scopeAttributeRepository) FindByScopeAddress(
	ctx context.Context, scopeAddress string,
) ([]domain.AssetScopeAttribute, error) {
	var attributes []domain.AssetScopeAttribute
	err := r.store.Find(&attributes, badgerhold.Where("ScopeAddress").Eq(scopeAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to find scope attributes: %w", err)
	}
	return attributes, nil
}

func (r *scopeAttributeRepository) ListPending(
	ctx context.Context,
) ([]domain.AssetScopeAttribute, error) {
	var attributes []domain.AssetScopeAttribute
	err := r.store.Find(
		&attributes, badgerhold.Where("OnboardingStatus").Eq(domain.StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending scope attributes: %w", err)
	}
	return attributes, nil
}

func (r *scopeAttributeRepository) Delete(ctx context.Context, scopeAddress string) error {
	err := r.store.Delete(scopeAddress, domain.AssetScopeAttribute{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	if errors.Is(err, badger.ErrConflict) {
		attempts := 1
		for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
			time.Sleep(100 * time.Millisecond)
			err = r.store.Delete(scopeAddress, domain.AssetScopeAttribute{})
			attempts++
		}
	}
	return err
}

func (r *scopeAttributeRepository) Close() {
	_ = r.store.Close()
}
