package db

import (
	"fmt"

	"github.com/provlabs/classifyd/internal/core/domain"
	"github.com/provlabs/classifyd/internal/core/ports"
	badgerdb "github.com/provlabs/classifyd/internal/infrastructure/db/badger"
	inmemorydb "github.com/provlabs/classifyd/internal/infrastructure/db/inmemory"
)

var (
	assetDefinitionStoreTypes = map[string]func(...interface{}) (domain.AssetDefinitionRepository, error){
		"badger":   badgerdb.NewAssetDefinitionRepository,
		"inmemory": inmemorydb.NewAssetDefinitionRepository,
	}
	scopeAttributeStoreTypes = map[string]func(...interface{}) (domain.ScopeAttributeRepository, error){
		"badger":   badgerdb.NewScopeAttributeRepository,
		"inmemory": inmemorydb.NewScopeAttributeRepository,
	}
	stateStoreTypes = map[string]func(...interface{}) (domain.StateRepository, error){
		"badger":   badgerdb.NewStateRepository,
		"inmemory": inmemorydb.NewStateRepository,
	}
)

type ServiceConfig struct {
	DataStoreType   string
	DataStoreConfig []interface{}
}

type service struct {
	assetDefinitionStore domain.AssetDefinitionRepository
	scopeAttributeStore  domain.ScopeAttributeRepository
	stateStore           domain.StateRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	assetDefinitionStoreFactory, ok := assetDefinitionStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("asset definition store type not supported")
	}
	scopeAttributeStoreFactory, ok := scopeAttributeStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("scope attribute store type not supported")
	}
	stateStoreFactory, ok := stateStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("state store type not supported")
	}

	assetDefinitionStore, err := assetDefinitionStoreFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset definition store: %s", err)
	}
	scopeAttributeStore, err := scopeAttributeStoreFactory(config.DataStoreConfig...)
	if err != nil {
		assetDefinitionStore.Close()
		return nil, fmt.Errorf("failed to open scope attribute store: %s", err)
	}
	stateStore, err := stateStoreFactory(config.DataStoreConfig...)
	if err != nil {
		assetDefinitionStore.Close()
		scopeAttributeStore.Close()
		return nil, fmt.Errorf("failed to open state store: %s", err)
	}

	return &service{
		assetDefinitionStore: assetDefinitionStore,
		scopeAttributeStore:  scopeAttributeStore,
		stateStore:           stateStore,
	}, nil
}

func (s *service) AssetDefinitions() domain.AssetDefinitionRepository {
	return s.assetDefinitionStore
}

func (s *service) ScopeAttributes() domain.ScopeAttributeRepository {
	return s.scopeAttributeStore
}

func (s *service) State() domain.StateRepository {
	return s.stateStore
}

func (s *service) Close() {
	s.assetDefinitionStore.Close()
	s.scopeAttributeStore.Close()
	s.stateStore.Close()
}
