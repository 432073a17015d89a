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

const (
	stateStoreDir = "state"
	stateKey      = "state"
)

type stateRepository struct {
	store *badgerhold.Store
}

func NewStateRepository(config ...interface{}) (domain.StateRepository, error) {
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
		dir = filepath.Join(baseDir, stateStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %s", err)
	}

	return &stateRepository{store}, nil
}

func (r *stateRepository) Get(ctx context.Context) (*domain.ContractState, error) {
	var state domain.ContractState
	err := r.store.Get(stateKey, &state)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract state: %w", err)
	}
	return &state, nil
}

func (r *stateRepository) Upsert(ctx context.Context, state domain.ContractState) error {
	if err := r.store.Upsert(stateKey, &state); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(stateKey, &state)
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *stateRepository) Close() {
	_ = r.store.Close()
}
