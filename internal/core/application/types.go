package application

import (
	"context"

	"github.com/provlabs/classifyd/internal/core/domain"
	"github.com/provlabs/classifyd/pkg/errors"
)

// Service is the onboarding/verification state machine and the read surface
// over scope attributes and contract state.
type Service interface {
	Bootstrap(ctx context.Context) errors.Error
	OnboardAsset(ctx context.Context, req OnboardAssetRequest) (*OnboardResult, errors.Error)
	VerifyAsset(
		ctx context.Context, req VerifyAssetRequest,
	) (*domain.AssetScopeAttribute, errors.Error)
	UpdateAccessRoutes(
		ctx context.Context, req UpdateAccessRoutesRequest,
	) (*domain.AssetScopeAttribute, errors.Error)
	GetAssetScopeAttribute(
		ctx context.Context, identifier domain.AssetIdentifier,
	) (*domain.AssetScopeAttribute, errors.Error)
	GetContractState(ctx context.Context) (*domain.ContractState, errors.Error)
	GetVersion() VersionInfo
}

// AdminService is the asset definition registry. Every mutation requires the
// configured admin as sender and no attached funds.
type AdminService interface {
	AddAssetDefinition(
		ctx context.Context, req AdminRequest, def domain.AssetDefinition,
	) errors.Error
	UpdateAssetDefinition(
		ctx context.Context, req AdminRequest, def domain.AssetDefinition,
	) errors.Error
	ToggleAssetDefinition(
		ctx context.Context, req AdminRequest, assetType string, expectedResult bool,
	) errors.Error
	AddAssetVerifier(
		ctx context.Context, req AdminRequest, assetType string, verifier domain.VerifierDetail,
	) errors.Error
	UpdateAssetVerifier(
		ctx context.Context, req AdminRequest, assetType string, verifier domain.VerifierDetail,
	) errors.Error
	DeleteAssetDefinition(ctx context.Context, req AdminRequest, assetType string) errors.Error
	BindAlias(ctx context.Context, req AdminRequest, aliasName string) errors.Error
	TransferAdmin(ctx context.Context, req AdminRequest, newAdminAddress string) errors.Error
	GetAssetDefinition(
		ctx context.Context, assetType string,
	) (*domain.AssetDefinition, errors.Error)
	ListAssetDefinitions(ctx context.Context) ([]domain.AssetDefinition, errors.Error)
}

// AdminRequest carries the caller identity and attached funds of an
// admin-only command.
type AdminRequest struct {
	Sender string
	Funds  []domain.Coin
}

type OnboardAssetRequest struct {
	Identifier      domain.AssetIdentifier
	AssetType       string
	VerifierAddress string
	AccessRoutes    []domain.AccessRoute
	Sender          string
	Funds           []domain.Coin
}

// OnboardResult pairs the written attribute with the payment instructions
// dispatched against the collected onboarding cost.
type OnboardResult struct {
	Attribute domain.AssetScopeAttribute
	Payments  []domain.PaymentInstruction
}

type VerifyAssetRequest struct {
	Identifier   domain.AssetIdentifier
	Success      bool
	Message      string
	AccessRoutes []domain.AccessRoute
	Sender       string
}

type UpdateAccessRoutesRequest struct {
	Identifier   domain.AssetIdentifier
	OwnerAddress string
	Routes       []domain.AccessRoute
	Sender       string
}

type VersionInfo struct {
	Name    string
	Version string
	Commit  string
}
