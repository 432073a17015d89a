package application

import (
	"context"
	"sync"

	"github.com/provlabs/classifyd/internal/core/domain"
	"github.com/provlabs/classifyd/internal/core/ports"
	"github.com/provlabs/classifyd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultApprovedMessage = "verification successful"
	defaultDeniedMessage   = "verification failed"
)

// BootstrapOptions seeds the contract state on first start. The admin
// address of an already-bootstrapped store wins over the configured one;
// admin changes go through TransferAdmin only.
type BootstrapOptions struct {
	BaseName           string
	AdminAddress       string
	IsTest             bool
	BindBaseName       bool
	InitialDefinitions []domain.AssetDefinition
}

type service struct {
	repoManager ports.RepoManager
	ledger      ports.Ledger
	version     VersionInfo
	bootstrap   BootstrapOptions

	// Commands run one at a time against a consistent snapshot; state
	// checks, not row locks, enforce the single-pending-round invariant.
	mu sync.Mutex
}

func NewService(
	repoManager ports.RepoManager, ledger ports.Ledger,
	version VersionInfo, bootstrap BootstrapOptions,
) Service {
	return &service{
		repoManager: repoManager,
		ledger:      ledger,
		version:     version,
		bootstrap:   bootstrap,
	}
}

// Bootstrap writes the contract state on first start, optionally binds the
// base name and seeds the initial asset definitions.
func (s *service) Bootstrap(ctx context.Context) errors.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repoManager.State().Get(ctx)
	if err != nil {
		return internalError(err, "failed to load contract state")
	}
	if state == nil {
		newState := domain.ContractState{
			BaseName:     s.bootstrap.BaseName,
			AdminAddress: s.bootstrap.AdminAddress,
			IsTest:       s.bootstrap.IsTest,
		}
		if err := s.repoManager.State().Upsert(ctx, newState); err != nil {
			return internalError(err, "failed to write contract state")
		}
		if s.bootstrap.BindBaseName {
			if err := s.ledger.BindName(ctx, s.bootstrap.BaseName); err != nil {
				return internalError(err, "failed to bind base name")
			}
		}
		log.WithField("base_name", s.bootstrap.BaseName).
			WithField("admin", s.bootstrap.AdminAddress).
			Info("contract state initialized")
	}

	for _, def := range s.bootstrap.InitialDefinitions {
		if invalidFields := domain.ValidateAssetDefinition(def); len(invalidFields) > 0 {
			return domain.InvalidFieldsError("InitialAssetDefinition", invalidFields)
		}
		existing, err := s.repoManager.AssetDefinitions().Get(ctx, def.AssetType)
		if err != nil {
			return internalError(err, "failed to look up asset definition")
		}
		if existing != nil {
			continue
		}
		if err := s.repoManager.AssetDefinitions().Upsert(ctx, def); err != nil {
			return internalError(err, "failed to seed asset definition")
		}
		log.WithField("asset_type", def.AssetType).Info("seeded asset definition")
	}
	return nil
}

func (s *service) OnboardAsset(
	ctx context.Context, req OnboardAssetRequest,
) (*OnboardResult, errors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var invalidFields []string
	if req.AssetType == "" {
		invalidFields = append(invalidFields, "asset_type: must not be blank")
	}
	if req.VerifierAddress == "" {
		invalidFields = append(invalidFields, "verifier_address: must not be blank")
	}
	if len(invalidFields) > 0 {
		return nil, domain.InvalidFieldsError("OnboardAsset", invalidFields)
	}

	identifiers, resolveErr := req.Identifier.Resolve()
	if resolveErr != nil {
		return nil, resolveErr
	}

	def, err := s.repoManager.AssetDefinitions().Get(ctx, req.AssetType)
	if err != nil {
		return nil, internalError(err, "failed to look up asset definition")
	}
	if def == nil {
		return nil, errors.UNSUPPORTED_ASSET_TYPE.New(
			"unsupported asset type %s", req.AssetType,
		).WithMetadata(errors.AssetTypeMetadata{AssetType: req.AssetType})
	}
	if !def.Enabled {
		return nil, errors.ASSET_TYPE_DISABLED.New(
			"asset type %s is currently disabled", req.AssetType,
		).WithMetadata(errors.AssetTypeMetadata{AssetType: req.AssetType})
	}

	verifier := def.Verifier(req.VerifierAddress)
	if verifier == nil {
		return nil, errors.UNSUPPORTED_VERIFIER.New(
			"unsupported verifier %s for asset type %s", req.VerifierAddress, req.AssetType,
		).WithMetadata(errors.VerifierMetadata{
			AssetType:       req.AssetType,
			VerifierAddress: req.VerifierAddress,
		})
	}

	state, stateErr := s.requireState(ctx)
	if stateErr != nil {
		return nil, stateErr
	}

	attribute, attrErr := s.loadAttribute(ctx, identifiers.ScopeAddress)
	if attrErr != nil {
		return nil, attrErr
	}
	if attribute != nil && !attribute.OnboardingStatus.IsTerminal() {
		return nil, errors.ASSET_PENDING_VERIFICATION.New(
			"asset %s is currently awaiting verification by %s",
			identifiers.ScopeAddress, attribute.VerifierAddress,
		).WithMetadata(errors.PendingVerificationMetadata{
			ScopeAddress:    identifiers.ScopeAddress,
			VerifierAddress: attribute.VerifierAddress,
		})
	}
	// A denied asset may retry with a fresh round. An approved one is done:
	// re-classification is only allowed on test deployments.
	if attribute != nil && attribute.OnboardingStatus == domain.StatusApproved && !state.IsTest {
		return nil, errors.ASSET_ALREADY_ONBOARDED.New(
			"asset %s has already been onboarded and approved", identifiers.ScopeAddress,
		).WithMetadata(errors.ScopeMetadata{ScopeAddress: identifiers.ScopeAddress})
	}

	if fundsErr := requireExactFunds(req.Funds, *verifier); fundsErr != nil {
		return nil, fundsErr
	}

	if attribute == nil {
		attribute = &domain.AssetScopeAttribute{
			AssetUuid:    identifiers.AssetUuid,
			ScopeAddress: identifiers.ScopeAddress,
		}
	}
	// The registry's capitalization wins over the caller's.
	attribute.AssetType = def.AssetType
	attribute.BeginRound(req.Sender, req.VerifierAddress, *verifier)
	attribute.SetAccessRoutes(req.Sender, req.AccessRoutes)

	if err := s.repoManager.ScopeAttributes().Upsert(ctx, *attribute); err != nil {
		return nil, internalError(err, "failed to store scope attribute")
	}

	if err := s.ledger.WriteAttribute(ctx, ports.AttributeWrite{
		ScopeAddress:  identifiers.ScopeAddress,
		AttributeName: state.AttributeName(req.AssetType),
		Attribute:     *attribute,
	}); err != nil {
		return nil, internalError(err, "failed to dispatch attribute write")
	}

	payments := verifier.CalculatePayments()
	if err := s.ledger.DispatchPayments(ctx, payments); err != nil {
		return nil, internalError(err, "failed to dispatch fee payments")
	}

	log.WithField("scope_address", identifiers.ScopeAddress).
		WithField("asset_type", req.AssetType).
		WithField("verifier", req.VerifierAddress).
		WithField("round", attribute.CurrentTransaction().Index).
		Info("asset onboarded")

	return &OnboardResult{Attribute: *attribute, Payments: payments}, nil
}

func (s *service) VerifyAsset(
	ctx context.Context, req VerifyAssetRequest,
) (*domain.AssetScopeAttribute, errors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identifiers, resolveErr := req.Identifier.Resolve()
	if resolveErr != nil {
		return nil, resolveErr
	}

	attribute, attrErr := s.loadAttribute(ctx, identifiers.ScopeAddress)
	if attrErr != nil {
		return nil, attrErr
	}
	if attribute == nil {
		return nil, errors.ASSET_NOT_FOUND.New(
			"asset %s not found", identifiers.ScopeAddress,
		).WithMetadata(errors.ScopeMetadata{ScopeAddress: identifiers.ScopeAddress})
	}

	if req.Sender != attribute.VerifierAddress {
		return nil, errors.UNAUTHORIZED_ASSET_VERIFIER.New(
			"unauthorized verifier %s for scope %s, expected verifier %s",
			req.Sender, identifiers.ScopeAddress, attribute.VerifierAddress,
		).WithMetadata(errors.UnauthorizedVerifierMetadata{
			ScopeAddress:            identifiers.ScopeAddress,
			VerifierAddress:         req.Sender,
			ExpectedVerifierAddress: attribute.VerifierAddress,
		})
	}

	if attribute.OnboardingStatus.IsTerminal() {
		return nil, errors.ASSET_ALREADY_VERIFIED.New(
			"asset %s already verified with status %s",
			identifiers.ScopeAddress, attribute.OnboardingStatus,
		).WithMetadata(errors.AlreadyVerifiedMetadata{
			ScopeAddress: identifiers.ScopeAddress,
			Status:       string(attribute.OnboardingStatus),
		})
	}

	message := req.Message
	if message == "" {
		if req.Success {
			message = defaultApprovedMessage
		} else {
			message = defaultDeniedMessage
		}
	}
	attribute.ResolveRound(req.Success, message)
	if len(req.AccessRoutes) > 0 {
		attribute.SetAccessRoutes(req.Sender, req.AccessRoutes)
	}

	if err := s.repoManager.ScopeAttributes().Upsert(ctx, *attribute); err != nil {
		return nil, internalError(err, "failed to store scope attribute")
	}

	state, stateErr := s.requireState(ctx)
	if stateErr != nil {
		return nil, stateErr
	}
	if err := s.ledger.WriteAttribute(ctx, ports.AttributeWrite{
		ScopeAddress:  identifiers.ScopeAddress,
		AttributeName: state.AttributeName(attribute.AssetType),
		Attribute:     *attribute,
	}); err != nil {
		return nil, internalError(err, "failed to dispatch attribute write")
	}

	log.WithField("scope_address", identifiers.ScopeAddress).
		WithField("verifier", req.Sender).
		WithField("status", attribute.OnboardingStatus).
		Info("asset verified")

	return attribute, nil
}

func (s *service) UpdateAccessRoutes(
	ctx context.Context, req UpdateAccessRoutesRequest,
) (*domain.AssetScopeAttribute, errors.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.OwnerAddress == "" {
		return nil, domain.InvalidFieldsError(
			"UpdateAccessRoutes", []string{"owner_address: must not be blank"},
		)
	}

	identifiers, resolveErr := req.Identifier.Resolve()
	if resolveErr != nil {
		return nil, resolveErr
	}

	state, stateErr := s.requireState(ctx)
	if stateErr != nil {
		return nil, stateErr
	}
	if req.Sender != state.AdminAddress && req.Sender != req.OwnerAddress {
		return nil, errors.UNAUTHORIZED.New(
			"only the admin or the route owner %s may update access routes", req.OwnerAddress,
		)
	}

	attribute, attrErr := s.loadAttribute(ctx, identifiers.ScopeAddress)
	if attrErr != nil {
		return nil, attrErr
	}
	if attribute == nil {
		return nil, errors.ASSET_NOT_FOUND.New(
			"asset %s not found", identifiers.ScopeAddress,
		).WithMetadata(errors.ScopeMetadata{ScopeAddress: identifiers.ScopeAddress})
	}

	attribute.SetAccessRoutes(req.OwnerAddress, req.Routes)

	if err := s.repoManager.ScopeAttributes().Upsert(ctx, *attribute); err != nil {
		return nil, internalError(err, "failed to store scope attribute")
	}
	if err := s.ledger.WriteAttribute(ctx, ports.AttributeWrite{
		ScopeAddress:  identifiers.ScopeAddress,
		AttributeName: state.AttributeName(attribute.AssetType),
		Attribute:     *attribute,
	}); err != nil {
		return nil, internalError(err, "failed to dispatch attribute write")
	}

	return attribute, nil
}

func (s *service) GetAssetScopeAttribute(
	ctx context.Context, identifier domain.AssetIdentifier,
) (*domain.AssetScopeAttribute, errors.Error) {
	identifiers, resolveErr := identifier.Resolve()
	if resolveErr != nil {
		return nil, resolveErr
	}
	attribute, attrErr := s.loadAttribute(ctx, identifiers.ScopeAddress)
	if attrErr != nil {
		return nil, attrErr
	}
	if attribute == nil {
		return nil, errors.ASSET_NOT_FOUND.New(
			"asset %s not found", identifiers.ScopeAddress,
		).WithMetadata(errors.ScopeMetadata{ScopeAddress: identifiers.ScopeAddress})
	}
	return attribute, nil
}

func (s *service) GetContractState(ctx context.Context) (*domain.ContractState, errors.Error) {
	return s.requireState(ctx)
}

func (s *service) GetVersion() VersionInfo {
	return s.version
}

// loadAttribute fetches the unique attribute for a scope. More than one
// record for the same scope address signals data corruption and is fatal.
func (s *service) loadAttribute(
	ctx context.Context, scopeAddress string,
) (*domain.AssetScopeAttribute, errors.Error) {
	attributes, err := s.repoManager.ScopeAttributes().FindByScopeAddress(ctx, scopeAddress)
	if err != nil {
		return nil, internalError(err, "failed to look up scope attribute")
	}
	switch len(attributes) {
	case 0:
		return nil, nil
	case 1:
		attribute := attributes[0]
		return &attribute, nil
	default:
		return nil, errors.INVALID_SCOPE_ATTRIBUTE.New(
			"expected a single attribute on scope %s, found %d", scopeAddress, len(attributes),
		).WithMetadata(errors.ScopeAttributeCountMetadata{
			ScopeAddress:   scopeAddress,
			AttributeCount: len(attributes),
		})
	}
}

func (s *service) requireState(ctx context.Context) (*domain.ContractState, errors.Error) {
	state, err := s.repoManager.State().Get(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load contract state")
	}
	if state == nil {
		return nil, errors.INTERNAL_ERROR.New("contract state has not been initialized")
	}
	return state, nil
}

func requireExactFunds(funds []domain.Coin, verifier domain.VerifierDetail) errors.Error {
	expected := domain.Coin{Denom: verifier.OnboardingDenom, Amount: verifier.OnboardingCost}
	if verifier.OnboardingCost == 0 {
		if len(funds) == 0 {
			return nil
		}
	} else if len(funds) == 1 && funds[0] == expected {
		return nil
	}
	return errors.INVALID_FUNDS.New(
		"onboarding requires exactly %s, got %s", expected, domain.FundsString(funds),
	).WithMetadata(errors.InvalidFundsMetadata{
		ExpectedFunds: expected.String(),
		ActualFunds:   domain.FundsString(funds),
	})
}

func internalError(err error, msg string) errors.Error {
	return errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{"context": msg})
}
