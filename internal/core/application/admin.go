package application

import (
	"context"
	"strings"
	"sync"

	"github.com/provlabs/classifyd/internal/core/domain"
	"github.com/provlabs/classifyd/internal/core/ports"
	"github.com/provlabs/classifyd/pkg/errors"
	"github.com/provlabs/classifyd/pkg/scopeaddr"
	log "github.com/sirupsen/logrus"
)

const assetDefinitionRecordType = "asset_definition"

type adminService struct {
	repoManager ports.RepoManager
	ledger      ports.Ledger

	mu sync.Mutex
}

func NewAdminService(repoManager ports.RepoManager, ledger ports.Ledger) AdminService {
	return &adminService{repoManager: repoManager, ledger: ledger}
}

func (a *adminService) AddAssetDefinition(
	ctx context.Context, req AdminRequest, def domain.AssetDefinition,
) errors.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAdmin(ctx, req); err != nil {
		return err
	}
	if invalidFields := domain.ValidateAssetDefinition(def); len(invalidFields) > 0 {
		return domain.InvalidFieldsError("AddAssetDefinition", invalidFields)
	}

	existing, err := a.repoManager.AssetDefinitions().Get(ctx, def.AssetType)
	if err != nil {
		return internalError(err, "failed to look up asset definition")
	}
	if existing != nil {
		return errors.RECORD_ALREADY_EXISTS.New(
			"asset definition for type %s already exists", def.AssetType,
		).WithMetadata(errors.RecordMetadata{
			RecordType: assetDefinitionRecordType,
			Key:        def.StorageKey(),
		})
	}
	if err := a.requireUniqueScopeSpec(ctx, def); err != nil {
		return err
	}

	if err := a.repoManager.AssetDefinitions().Upsert(ctx, def); err != nil {
		return internalError(err, "failed to store asset definition")
	}
	log.WithField("asset_type", def.AssetType).
		WithField("verifiers", len(def.Verifiers)).
		Info("asset definition added")
	return nil
}

func (a *adminService) UpdateAssetDefinition(
	ctx context.Context, req AdminRequest, def domain.AssetDefinition,
) errors.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAdmin(ctx, req); err != nil {
		return err
	}
	if invalidFields := domain.ValidateAssetDefinition(def); len(invalidFields) > 0 {
		return domain.InvalidFieldsError("UpdateAssetDefinition", invalidFields)
	}

	existing, err := a.repoManager.AssetDefinitions().Get(ctx, def.AssetType)
	if err != nil {
		return internalError(err, "failed to look up asset definition")
	}
	if existing == nil {
		return a.definitionNotFound(def.AssetType)
	}
	if err := a.requireUniqueScopeSpec(ctx, def); err != nil {
		return err
	}

	if err := a.repoManager.AssetDefinitions().Upsert(ctx, def); err != nil {
		return internalError(err, "failed to store asset definition")
	}
	log.WithField("asset_type", def.AssetType).Info("asset definition updated")
	return nil
}

func (a *adminService) ToggleAssetDefinition(
	ctx context.Context, req AdminRequest, assetType string, expectedResult bool,
) errors.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAdmin(ctx, req); err != nil {
		return err
	}
	if assetType == "" {
		return domain.InvalidFieldsError(
			"ToggleAssetDefinition", []string{"asset_type: must not be blank"},
		)
	}

	def, err := a.repoManager.AssetDefinitions().Get(ctx, assetType)
	if err != nil {
		return internalError(err, "failed to look up asset definition")
	}
	if def == nil {
		return a.definitionNotFound(assetType)
	}
	// The toggled value must land on the caller's expectation, otherwise two
	// racing toggles would silently cancel each other out.
	if def.Enabled == expectedResult {
		return errors.UNEXPECTED_STATE.New(
			"asset definition for type %s is already in enabled state %v",
			assetType, def.Enabled,
		).WithMetadata(errors.UnexpectedStateMetadata{
			AssetType: assetType,
			Expected:  !expectedResult,
			Actual:    def.Enabled,
		})
	}

	def.Enabled = expectedResult
	if err := a.repoManager.AssetDefinitions().Upsert(ctx, *def); err != nil {
		return internalError(err, "failed to store asset definition")
	}
	log.WithField("asset_type", assetType).
		WithField("enabled", def.Enabled).
		Info("asset definition toggled")
	return nil
}

func (a *adminService) AddAssetVerifier(
	ctx context.Context, req AdminRequest, assetType string, verifier domain.VerifierDetail,
) errors.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAdmin(ctx, req); err != nil {
		return err
	}
	if err := validateVerifierPayload(assetType, verifier, "AddAssetVerifier"); err != nil {
		return err
	}

	def, err := a.repoManager.AssetDefinitions().Get(ctx, assetType)
	if err != nil {
		return internalError(err, "failed to look up asset definition")
	}
	if def == nil {
		return a.definitionNotFound(assetType)
	}
	if def.Verifier(verifier.Address) != nil {
		return errors.DUPLICATE_VERIFIER_PROVIDED.New(
			"verifier %s already exists for asset type %s", verifier.Address, assetType,
		).WithMetadata(errors.VerifierMetadata{
			AssetType:       assetType,
			VerifierAddress: verifier.Address,
		})
	}

	def.Verifiers = append(def.Verifiers, verifier)
	if err := a.repoManager.AssetDefinitions().Upsert(ctx, *def); err != nil {
		return internalError(err, "failed to store asset definition")
	}
	log.WithField("asset_type", assetType).
		WithField("verifier", verifier.Address).
		Info("asset verifier added")
	return nil
}

func (a *adminService) UpdateAssetVerifier(
	ctx context.Context, req AdminRequest, assetType string, verifier domain.VerifierDetail,
) errors.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAdmin(ctx, req); err != nil {
		return err
	}
	if err := validateVerifierPayload(assetType, verifier, "UpdateAssetVerifier"); err != nil {
		return err
	}

	def, err := a.repoManager.AssetDefinitions().Get(ctx, assetType)
	if err != nil {
		return internalError(err, "failed to look up asset definition")
	}
	if def == nil {
		return a.definitionNotFound(assetType)
	}

	replaced := false
	for i := range def.Verifiers {
		if def.Verifiers[i].Address == verifier.Address {
			def.Verifiers[i] = verifier
			replaced = true
			break
		}
	}
	if !replaced {
		return errors.RECORD_NOT_FOUND.New(
			"no verifier %s found for asset type %s", verifier.Address, assetType,
		).WithMetadata(errors.RecordMetadata{
			RecordType: "verifier",
			Key:        verifier.Address,
		})
	}

	if err := a.repoManager.AssetDefinitions().Upsert(ctx, *def); err != nil {
		return internalError(err, "failed to store asset definition")
	}
	log.WithField("asset_type", assetType).
		WithField("verifier", verifier.Address).
		Info("asset verifier updated")
	return nil
}

// DeleteAssetDefinition removes a definition outright. Assets already
// onboarded under the type lose their configuration, so this is reserved for
// unused types added by mistake.
func (a *adminService) DeleteAssetDefinition(
	ctx context.Context, req AdminRequest, assetType string,
) errors.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAdmin(ctx, req); err != nil {
		return err
	}

	def, err := a.repoManager.AssetDefinitions().Get(ctx, assetType)
	if err != nil {
		return internalError(err, "failed to look up asset definition")
	}
	if def == nil {
		return a.definitionNotFound(assetType)
	}

	if err := a.repoManager.AssetDefinitions().Delete(ctx, assetType); err != nil {
		return internalError(err, "failed to delete asset definition")
	}
	log.WithField("asset_type", assetType).Warn("asset definition deleted")
	return nil
}

func (a *adminService) BindAlias(
	ctx context.Context, req AdminRequest, aliasName string,
) errors.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAdmin(ctx, req); err != nil {
		return err
	}
	if strings.TrimSpace(aliasName) == "" {
		return domain.InvalidFieldsError("BindAlias", []string{"alias_name: must not be blank"})
	}

	if err := a.ledger.BindName(ctx, aliasName); err != nil {
		return internalError(err, "failed to dispatch name binding")
	}
	log.WithField("alias", aliasName).Info("contract alias bound")
	return nil
}

func (a *adminService) TransferAdmin(
	ctx context.Context, req AdminRequest, newAdminAddress string,
) errors.Error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAdmin(ctx, req); err != nil {
		return err
	}
	if err := scopeaddr.ValidateAccountAddress(newAdminAddress); err != nil {
		return errors.INVALID_ADDRESS.Wrap(err).
			WithMetadata(errors.InvalidAddressMetadata{Address: newAdminAddress})
	}

	state, stateErr := a.requireState(ctx)
	if stateErr != nil {
		return stateErr
	}
	state.AdminAddress = newAdminAddress
	if err := a.repoManager.State().Upsert(ctx, *state); err != nil {
		return internalError(err, "failed to store contract state")
	}
	log.WithField("admin", newAdminAddress).Warn("admin address transferred")
	return nil
}

func (a *adminService) GetAssetDefinition(
	ctx context.Context, assetType string,
) (*domain.AssetDefinition, errors.Error) {
	def, err := a.repoManager.AssetDefinitions().Get(ctx, assetType)
	if err != nil {
		return nil, internalError(err, "failed to look up asset definition")
	}
	if def == nil {
		return nil, a.definitionNotFound(assetType)
	}
	return def, nil
}

func (a *adminService) ListAssetDefinitions(
	ctx context.Context,
) ([]domain.AssetDefinition, errors.Error) {
	defs, err := a.repoManager.AssetDefinitions().GetAll(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list asset definitions")
	}
	return defs, nil
}

// requireAdmin enforces the two preconditions shared by every registry
// mutation: the sender is the configured admin and no funds are attached.
func (a *adminService) requireAdmin(ctx context.Context, req AdminRequest) errors.Error {
	state, stateErr := a.requireState(ctx)
	if stateErr != nil {
		return stateErr
	}
	if req.Sender != state.AdminAddress {
		return errors.UNAUTHORIZED.New("sender %s is not the contract admin", req.Sender)
	}
	if len(req.Funds) > 0 {
		return errors.INVALID_FUNDS.New(
			"admin routes require no funds, got %s", domain.FundsString(req.Funds),
		).WithMetadata(errors.InvalidFundsMetadata{
			ExpectedFunds: "none",
			ActualFunds:   domain.FundsString(req.Funds),
		})
	}
	return nil
}

// requireUniqueScopeSpec rejects a definition whose scope spec address is
// already bound to a different asset type.
func (a *adminService) requireUniqueScopeSpec(
	ctx context.Context, def domain.AssetDefinition,
) errors.Error {
	other, err := a.repoManager.AssetDefinitions().GetByScopeSpecAddress(
		ctx, def.ScopeSpecAddress,
	)
	if err != nil {
		return internalError(err, "failed to look up asset definition by scope spec")
	}
	if other != nil && other.StorageKey() != def.StorageKey() {
		return errors.RECORD_ALREADY_EXISTS.New(
			"scope spec address %s is already bound to asset type %s",
			def.ScopeSpecAddress, other.AssetType,
		).WithMetadata(errors.RecordMetadata{
			RecordType: assetDefinitionRecordType,
			Key:        def.ScopeSpecAddress,
		})
	}
	return nil
}

func (a *adminService) requireState(ctx context.Context) (*domain.ContractState, errors.Error) {
	state, err := a.repoManager.State().Get(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load contract state")
	}
	if state == nil {
		return nil, errors.INTERNAL_ERROR.New("contract state has not been initialized")
	}
	return state, nil
}

func (a *adminService) definitionNotFound(assetType string) errors.Error {
	return errors.RECORD_NOT_FOUND.New(
		"no asset definition found for type %s", assetType,
	).WithMetadata(errors.RecordMetadata{
		RecordType: assetDefinitionRecordType,
		Key:        strings.ToLower(assetType),
	})
}

func validateVerifierPayload(
	assetType string, verifier domain.VerifierDetail, messageType string,
) errors.Error {
	var invalidFields []string
	if assetType == "" {
		invalidFields = append(invalidFields, "asset_type: must not be blank")
	}
	invalidFields = append(invalidFields, domain.ValidateVerifier(verifier)...)
	if len(invalidFields) > 0 {
		return domain.InvalidFieldsError(messageType, invalidFields)
	}
	return nil
}
