package application_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/google/uuid"
	"github.com/provlabs/classifyd/internal/core/application"
	"github.com/provlabs/classifyd/internal/core/domain"
	"github.com/provlabs/classifyd/internal/core/ports"
	"github.com/provlabs/classifyd/internal/infrastructure/db"
	inmemoryledger "github.com/provlabs/classifyd/internal/infrastructure/ledger/inmemory"
	"github.com/provlabs/classifyd/pkg/errors"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T, seed byte) string {
	t.Helper()
	converted, err := bech32.ConvertBits(bytes.Repeat([]byte{seed}, 20), 8, 5, true)
	require.NoError(t, err)
	addr, err := bech32.Encode("pb", converted)
	require.NoError(t, err)
	return addr
}

type fixture struct {
	svc      application.Service
	adminSvc application.AdminService
	repo     ports.RepoManager
	ledger   *inmemoryledger.Ledger

	admin     string
	requestor string
	verifier  string
	dest1     string
	dest2     string
	scopeSpec string
}

func newFixture(t *testing.T, opts ...func(*application.BootstrapOptions)) *fixture {
	t.Helper()

	repo, err := db.NewService(db.ServiceConfig{DataStoreType: "inmemory"})
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	f := &fixture{
		repo:      repo,
		ledger:    inmemoryledger.NewLedger(),
		admin:     testAddress(t, 0x0a),
		requestor: testAddress(t, 0x0b),
		verifier:  testAddress(t, 0x0c),
		dest1:     testAddress(t, 0x0d),
		dest2:     testAddress(t, 0x0e),
		scopeSpec: testAddress(t, 0x0f),
	}

	bootstrap := application.BootstrapOptions{
		BaseName:     "asset",
		AdminAddress: f.admin,
		BindBaseName: true,
	}
	for _, opt := range opts {
		opt(&bootstrap)
	}

	f.svc = application.NewService(
		repo, f.ledger, application.VersionInfo{Name: "classifyd", Version: "test"}, bootstrap,
	)
	f.adminSvc = application.NewAdminService(repo, f.ledger)
	require.Nil(t, f.svc.Bootstrap(context.Background()))
	return f
}

func (f *fixture) mortgageDefinition() domain.AssetDefinition {
	return domain.AssetDefinition{
		AssetType:        "mortgage",
		ScopeSpecAddress: f.scopeSpec,
		Enabled:          true,
		Verifiers: []domain.VerifierDetail{
			{
				Address:         f.verifier,
				OnboardingCost:  1000,
				OnboardingDenom: "nhash",
				FeeAmount:       400,
				FeeDestinations: []domain.FeeDestination{
					{Address: f.dest1, FeeAmount: 300},
					{Address: f.dest2, FeeAmount: 100},
				},
			},
		},
	}
}

func (f *fixture) addMortgageDefinition(t *testing.T) {
	t.Helper()
	err := f.adminSvc.AddAssetDefinition(
		context.Background(),
		application.AdminRequest{Sender: f.admin},
		f.mortgageDefinition(),
	)
	require.Nil(t, err)
}

func (f *fixture) onboardRequest(assetUuid string) application.OnboardAssetRequest {
	return application.OnboardAssetRequest{
		Identifier:      domain.AssetIdentifier{AssetUuid: assetUuid},
		AssetType:       "mortgage",
		VerifierAddress: f.verifier,
		Sender:          f.requestor,
		Funds:           []domain.Coin{{Denom: "nhash", Amount: 1000}},
	}
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds state and binds base name", func(t *testing.T) {
		f := newFixture(t)

		state, err := f.svc.GetContractState(ctx)
		require.Nil(t, err)
		require.Equal(t, "asset", state.BaseName)
		require.Equal(t, f.admin, state.AdminAddress)
		require.Equal(t, []string{"asset"}, f.ledger.BoundNames())
	})

	t.Run("seeds initial definitions once", func(t *testing.T) {
		var def domain.AssetDefinition
		f := newFixture(t, func(o *application.BootstrapOptions) {
			def = domain.AssetDefinition{
				AssetType:        "payable",
				ScopeSpecAddress: testAddress(t, 0x1f),
				Enabled:          true,
				Verifiers: []domain.VerifierDetail{{
					Address:         testAddress(t, 0x1c),
					OnboardingDenom: "nhash",
				}},
			}
			o.InitialDefinitions = []domain.AssetDefinition{def}
		})

		stored, err := f.adminSvc.GetAssetDefinition(ctx, "payable")
		require.Nil(t, err)
		require.Equal(t, def.ScopeSpecAddress, stored.ScopeSpecAddress)

		// A second bootstrap must not fail or duplicate anything.
		require.Nil(t, f.svc.Bootstrap(ctx))
		defs, listErr := f.adminSvc.ListAssetDefinitions(ctx)
		require.Nil(t, listErr)
		require.Len(t, defs, 1)
	})
}

func TestOnboardAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path splits the onboarding cost", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)
		assetUuid := uuid.NewString()

		result, err := f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
		require.Nil(t, err)

		require.Equal(t, domain.StatusPending, result.Attribute.OnboardingStatus)
		require.Equal(t, assetUuid, result.Attribute.AssetUuid)
		require.Equal(t, f.requestor, result.Attribute.RequestorAddress)
		require.Equal(t, []domain.PaymentInstruction{
			{Address: f.dest1, Amount: 300, Denom: "nhash"},
			{Address: f.dest2, Amount: 100, Denom: "nhash"},
			{Address: f.verifier, Amount: 600, Denom: "nhash"},
		}, result.Payments)
		require.Equal(t, result.Payments, f.ledger.DispatchedPayments())

		writes := f.ledger.AttributeWrites()
		require.Len(t, writes, 1)
		require.Equal(t, "mortgage.asset", writes[0].AttributeName)
		require.Equal(t, result.Attribute.ScopeAddress, writes[0].ScopeAddress)
	})

	t.Run("unknown asset type", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.OnboardAsset(ctx, f.onboardRequest(uuid.NewString()))
		require.NotNil(t, err)
		require.Equal(t, errors.UNSUPPORTED_ASSET_TYPE.Code, err.Code())
	})

	t.Run("asset type lookup is case-insensitive", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		req := f.onboardRequest(uuid.NewString())
		req.AssetType = "MORTGAGE"
		result, err := f.svc.OnboardAsset(ctx, req)
		require.Nil(t, err)
		require.Equal(t, domain.StatusPending, result.Attribute.OnboardingStatus)
	})

	t.Run("disabled asset type", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)
		toggleErr := f.adminSvc.ToggleAssetDefinition(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage", false,
		)
		require.Nil(t, toggleErr)

		_, err := f.svc.OnboardAsset(ctx, f.onboardRequest(uuid.NewString()))
		require.NotNil(t, err)
		require.Equal(t, errors.ASSET_TYPE_DISABLED.Code, err.Code())
	})

	t.Run("unknown verifier", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		req := f.onboardRequest(uuid.NewString())
		req.VerifierAddress = testAddress(t, 0x77)
		_, err := f.svc.OnboardAsset(ctx, req)
		require.NotNil(t, err)
		require.Equal(t, errors.UNSUPPORTED_VERIFIER.Code, err.Code())
	})

	t.Run("wrong funds", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		for _, funds := range [][]domain.Coin{
			nil,
			{{Denom: "nhash", Amount: 999}},
			{{Denom: "atom", Amount: 1000}},
			{{Denom: "nhash", Amount: 500}, {Denom: "nhash", Amount: 500}},
		} {
			req := f.onboardRequest(uuid.NewString())
			req.Funds = funds
			_, err := f.svc.OnboardAsset(ctx, req)
			require.NotNil(t, err)
			require.Equal(t, errors.INVALID_FUNDS.Code, err.Code())
		}
	})

	t.Run("pending asset cannot onboard again", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)
		assetUuid := uuid.NewString()

		_, err := f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
		require.Nil(t, err)

		_, err = f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
		require.NotNil(t, err)
		require.Equal(t, errors.ASSET_PENDING_VERIFICATION.Code, err.Code())
	})

	t.Run("missing identifier", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		req := f.onboardRequest("")
		_, err := f.svc.OnboardAsset(ctx, req)
		require.NotNil(t, err)
		require.Equal(t, errors.ASSET_IDENTIFIER_NOT_SUPPLIED.Code, err.Code())
	})
}

func TestVerifyAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("approval resolves the round", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)
		assetUuid := uuid.NewString()
		_, onboardErr := f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
		require.Nil(t, onboardErr)

		attribute, err := f.svc.VerifyAsset(ctx, application.VerifyAssetRequest{
			Identifier: domain.AssetIdentifier{AssetUuid: assetUuid},
			Success:    true,
			Sender:     f.verifier,
		})
		require.Nil(t, err)
		require.Equal(t, domain.StatusApproved, attribute.OnboardingStatus)
		require.Equal(t, "verification successful", attribute.LatestVerificationResult.Message)

		tx := attribute.CurrentTransaction()
		require.NotNil(t, tx.Success)
		require.True(t, *tx.Success)
	})

	t.Run("only the chosen verifier may verify", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)
		assetUuid := uuid.NewString()
		_, onboardErr := f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
		require.Nil(t, onboardErr)

		_, err := f.svc.VerifyAsset(ctx, application.VerifyAssetRequest{
			Identifier: domain.AssetIdentifier{AssetUuid: assetUuid},
			Success:    true,
			Sender:     f.requestor,
		})
		require.NotNil(t, err)
		require.Equal(t, errors.UNAUTHORIZED_ASSET_VERIFIER.Code, err.Code())
	})

	t.Run("double verification is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)
		assetUuid := uuid.NewString()
		_, onboardErr := f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
		require.Nil(t, onboardErr)

		verify := application.VerifyAssetRequest{
			Identifier: domain.AssetIdentifier{AssetUuid: assetUuid},
			Success:    true,
			Sender:     f.verifier,
		}
		_, err := f.svc.VerifyAsset(ctx, verify)
		require.Nil(t, err)

		_, err = f.svc.VerifyAsset(ctx, verify)
		require.NotNil(t, err)
		require.Equal(t, errors.ASSET_ALREADY_VERIFIED.Code, err.Code())
	})

	t.Run("unknown asset", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		_, err := f.svc.VerifyAsset(ctx, application.VerifyAssetRequest{
			Identifier: domain.AssetIdentifier{AssetUuid: uuid.NewString()},
			Success:    true,
			Sender:     f.verifier,
		})
		require.NotNil(t, err)
		require.Equal(t, errors.ASSET_NOT_FOUND.Code, err.Code())
	})

	t.Run("denied asset may retry and approved stays final", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)
		assetUuid := uuid.NewString()

		_, err := f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
		require.Nil(t, err)

		attribute, verifyErr := f.svc.VerifyAsset(ctx, application.VerifyAssetRequest{
			Identifier: domain.AssetIdentifier{AssetUuid: assetUuid},
			Success:    false,
			Message:    "documents missing",
			Sender:     f.verifier,
		})
		require.Nil(t, verifyErr)
		require.Equal(t, domain.StatusDenied, attribute.OnboardingStatus)

		// Denied: a fresh round is allowed and history is preserved.
		result, retryErr := f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
		require.Nil(t, retryErr)
		require.Equal(t, domain.StatusPending, result.Attribute.OnboardingStatus)
		require.Len(t, result.Attribute.OnboardingTransactions, 2)
		require.Equal(t, "documents missing", *result.Attribute.OnboardingTransactions[0].Message)

		_, verifyErr = f.svc.VerifyAsset(ctx, application.VerifyAssetRequest{
			Identifier: domain.AssetIdentifier{AssetUuid: assetUuid},
			Success:    true,
			Sender:     f.verifier,
		})
		require.Nil(t, verifyErr)

		// Approved: no further onboarding.
		_, err = f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
		require.NotNil(t, err)
		require.Equal(t, errors.ASSET_ALREADY_ONBOARDED.Code, err.Code())
	})

	t.Run("test deployments may re-onboard approved assets", func(t *testing.T) {
		f := newFixture(t, func(o *application.BootstrapOptions) { o.IsTest = true })
		f.addMortgageDefinition(t)
		assetUuid := uuid.NewString()

		_, err := f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
		require.Nil(t, err)
		_, verifyErr := f.svc.VerifyAsset(ctx, application.VerifyAssetRequest{
			Identifier: domain.AssetIdentifier{AssetUuid: assetUuid},
			Success:    true,
			Sender:     f.verifier,
		})
		require.Nil(t, verifyErr)

		result, retryErr := f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
		require.Nil(t, retryErr)
		require.Len(t, result.Attribute.OnboardingTransactions, 2)
	})
}

func TestUpdateAccessRoutes(t *testing.T) {
	ctx := context.Background()

	onboarded := func(t *testing.T) (*fixture, string) {
		f := newFixture(t)
		f.addMortgageDefinition(t)
		assetUuid := uuid.NewString()
		req := f.onboardRequest(assetUuid)
		req.AccessRoutes = []domain.AccessRoute{{Route: "grpc://origin.example.com"}}
		_, err := f.svc.OnboardAsset(ctx, req)
		require.Nil(t, err)
		return f, assetUuid
	}

	t.Run("owner updates own routes", func(t *testing.T) {
		f, assetUuid := onboarded(t)

		attribute, err := f.svc.UpdateAccessRoutes(ctx, application.UpdateAccessRoutesRequest{
			Identifier:   domain.AssetIdentifier{AssetUuid: assetUuid},
			OwnerAddress: f.requestor,
			Routes:       []domain.AccessRoute{{Route: "grpc://new.example.com"}},
			Sender:       f.requestor,
		})
		require.Nil(t, err)

		def := attribute.AccessDefinitionFor(f.requestor)
		require.Len(t, def.Routes, 1)
		require.Equal(t, "grpc://new.example.com", def.Routes[0].Route)
	})

	t.Run("admin updates anyone's routes", func(t *testing.T) {
		f, assetUuid := onboarded(t)

		attribute, err := f.svc.UpdateAccessRoutes(ctx, application.UpdateAccessRoutesRequest{
			Identifier:   domain.AssetIdentifier{AssetUuid: assetUuid},
			OwnerAddress: f.requestor,
			Routes:       nil,
			Sender:       f.admin,
		})
		require.Nil(t, err)
		require.Empty(t, attribute.AccessDefinitionFor(f.requestor).Routes)
	})

	t.Run("third parties are rejected", func(t *testing.T) {
		f, assetUuid := onboarded(t)

		_, err := f.svc.UpdateAccessRoutes(ctx, application.UpdateAccessRoutesRequest{
			Identifier:   domain.AssetIdentifier{AssetUuid: assetUuid},
			OwnerAddress: f.requestor,
			Routes:       nil,
			Sender:       f.verifier,
		})
		require.NotNil(t, err)
		require.Equal(t, errors.UNAUTHORIZED.Code, err.Code())
	})

	t.Run("blank owner is rejected", func(t *testing.T) {
		f, assetUuid := onboarded(t)

		_, err := f.svc.UpdateAccessRoutes(ctx, application.UpdateAccessRoutesRequest{
			Identifier: domain.AssetIdentifier{AssetUuid: assetUuid},
			Sender:     f.admin,
		})
		require.NotNil(t, err)
		require.Equal(t, errors.INVALID_MESSAGE_FIELDS.Code, err.Code())
	})
}

func TestGetAssetScopeAttribute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addMortgageDefinition(t)
	assetUuid := uuid.NewString()
	result, err := f.svc.OnboardAsset(ctx, f.onboardRequest(assetUuid))
	require.Nil(t, err)

	t.Run("by uuid and by scope address", func(t *testing.T) {
		byUuid, err := f.svc.GetAssetScopeAttribute(
			ctx, domain.AssetIdentifier{AssetUuid: assetUuid},
		)
		require.Nil(t, err)
		byScope, err := f.svc.GetAssetScopeAttribute(
			ctx, domain.AssetIdentifier{ScopeAddress: result.Attribute.ScopeAddress},
		)
		require.Nil(t, err)
		require.Equal(t, byUuid, byScope)
	})

	t.Run("unknown asset", func(t *testing.T) {
		_, err := f.svc.GetAssetScopeAttribute(
			ctx, domain.AssetIdentifier{AssetUuid: uuid.NewString()},
		)
		require.NotNil(t, err)
		require.Equal(t, errors.ASSET_NOT_FOUND.Code, err.Code())
	})
}
