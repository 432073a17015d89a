package ports

import "github.com/provlabs/classifyd/internal/core/domain"

type RepoManager interface {
	AssetDefinitions() domain.AssetDefinitionRepository
	ScopeAttributes() domain.ScopeAttributeRepository
	State() domain.StateRepository
	Close()
}
