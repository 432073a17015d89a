package application_test

import (
	"context"
	"testing"

	"github.com/provlabs/classifyd/internal/core/application"
	"github.com/provlabs/classifyd/internal/core/domain"
	"github.com/provlabs/classifyd/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestAddAssetDefinition(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a valid definition", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		def, err := f.adminSvc.GetAssetDefinition(ctx, "mortgage")
		require.Nil(t, err)
		require.Equal(t, f.scopeSpec, def.ScopeSpecAddress)
		require.True(t, def.Enabled)
	})

	t.Run("non-admin sender is rejected", func(t *testing.T) {
		f := newFixture(t)

		err := f.adminSvc.AddAssetDefinition(
			ctx, application.AdminRequest{Sender: f.requestor}, f.mortgageDefinition(),
		)
		require.NotNil(t, err)
		require.Equal(t, errors.UNAUTHORIZED.Code, err.Code())
	})

	t.Run("funds attached to admin routes are rejected", func(t *testing.T) {
		f := newFixture(t)

		err := f.adminSvc.AddAssetDefinition(
			ctx,
			application.AdminRequest{
				Sender: f.admin,
				Funds:  []domain.Coin{{Denom: "nhash", Amount: 1}},
			},
			f.mortgageDefinition(),
		)
		require.NotNil(t, err)
		require.Equal(t, errors.INVALID_FUNDS.Code, err.Code())
	})

	t.Run("duplicate asset type is case-insensitive", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		dup := f.mortgageDefinition()
		dup.AssetType = "MORTGAGE"
		dup.ScopeSpecAddress = testAddress(t, 0x20)
		err := f.adminSvc.AddAssetDefinition(ctx, application.AdminRequest{Sender: f.admin}, dup)
		require.NotNil(t, err)
		require.Equal(t, errors.RECORD_ALREADY_EXISTS.Code, err.Code())
	})

	t.Run("scope spec address must be unique across types", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		other := f.mortgageDefinition()
		other.AssetType = "payable"
		err := f.adminSvc.AddAssetDefinition(ctx, application.AdminRequest{Sender: f.admin}, other)
		require.NotNil(t, err)
		require.Equal(t, errors.RECORD_ALREADY_EXISTS.Code, err.Code())
	})

	t.Run("invalid definition is rejected with every field named", func(t *testing.T) {
		f := newFixture(t)

		def := f.mortgageDefinition()
		def.ScopeSpecAddress = "bogus"
		def.Verifiers[0].FeeAmount = 5000
		err := f.adminSvc.AddAssetDefinition(ctx, application.AdminRequest{Sender: f.admin}, def)
		require.NotNil(t, err)
		require.Equal(t, errors.INVALID_MESSAGE_FIELDS.Code, err.Code())
	})
}

func TestUpdateAssetDefinition(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces an existing definition", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		updated := f.mortgageDefinition()
		updated.Verifiers[0].OnboardingCost = 2000
		updated.Verifiers[0].FeeAmount = 0
		updated.Verifiers[0].FeeDestinations = nil
		err := f.adminSvc.UpdateAssetDefinition(
			ctx, application.AdminRequest{Sender: f.admin}, updated,
		)
		require.Nil(t, err)

		def, getErr := f.adminSvc.GetAssetDefinition(ctx, "mortgage")
		require.Nil(t, getErr)
		require.Equal(t, uint64(2000), def.Verifiers[0].OnboardingCost)
		require.Empty(t, def.Verifiers[0].FeeDestinations)
	})

	t.Run("unknown asset type", func(t *testing.T) {
		f := newFixture(t)

		err := f.adminSvc.UpdateAssetDefinition(
			ctx, application.AdminRequest{Sender: f.admin}, f.mortgageDefinition(),
		)
		require.NotNil(t, err)
		require.Equal(t, errors.RECORD_NOT_FOUND.Code, err.Code())
	})

	t.Run("may keep its own scope spec address", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		err := f.adminSvc.UpdateAssetDefinition(
			ctx, application.AdminRequest{Sender: f.admin}, f.mortgageDefinition(),
		)
		require.Nil(t, err)
	})
}

func TestToggleAssetDefinition(t *testing.T) {
	ctx := context.Background()

	t.Run("disables and re-enables", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		err := f.adminSvc.ToggleAssetDefinition(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage", false,
		)
		require.Nil(t, err)
		def, getErr := f.adminSvc.GetAssetDefinition(ctx, "mortgage")
		require.Nil(t, getErr)
		require.False(t, def.Enabled)

		err = f.adminSvc.ToggleAssetDefinition(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage", true,
		)
		require.Nil(t, err)
	})

	t.Run("stale expectation is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		// Definition is already enabled; expecting to land on enabled means
		// the caller raced another toggle.
		err := f.adminSvc.ToggleAssetDefinition(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage", true,
		)
		require.NotNil(t, err)
		require.Equal(t, errors.UNEXPECTED_STATE.Code, err.Code())
	})

	t.Run("unknown asset type", func(t *testing.T) {
		f := newFixture(t)

		err := f.adminSvc.ToggleAssetDefinition(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage", false,
		)
		require.NotNil(t, err)
		require.Equal(t, errors.RECORD_NOT_FOUND.Code, err.Code())
	})
}

func TestAssetVerifiers(t *testing.T) {
	ctx := context.Background()

	t.Run("add appends a new verifier", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		added := domain.VerifierDetail{
			Address:         testAddress(t, 0x30),
			OnboardingCost:  50,
			OnboardingDenom: "nhash",
		}
		err := f.adminSvc.AddAssetVerifier(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage", added,
		)
		require.Nil(t, err)

		def, getErr := f.adminSvc.GetAssetDefinition(ctx, "mortgage")
		require.Nil(t, getErr)
		require.Len(t, def.Verifiers, 2)
	})

	t.Run("add rejects a duplicate address", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		err := f.adminSvc.AddAssetVerifier(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage",
			f.mortgageDefinition().Verifiers[0],
		)
		require.NotNil(t, err)
		require.Equal(t, errors.DUPLICATE_VERIFIER_PROVIDED.Code, err.Code())
	})

	t.Run("update replaces in place", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		updated := f.mortgageDefinition().Verifiers[0]
		updated.OnboardingCost = 9999
		updated.FeeAmount = 0
		updated.FeeDestinations = nil
		err := f.adminSvc.UpdateAssetVerifier(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage", updated,
		)
		require.Nil(t, err)

		def, getErr := f.adminSvc.GetAssetDefinition(ctx, "mortgage")
		require.Nil(t, getErr)
		require.Len(t, def.Verifiers, 1)
		require.Equal(t, uint64(9999), def.Verifiers[0].OnboardingCost)
	})

	t.Run("update of an unknown verifier", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		unknown := f.mortgageDefinition().Verifiers[0]
		unknown.Address = testAddress(t, 0x31)
		err := f.adminSvc.UpdateAssetVerifier(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage", unknown,
		)
		require.NotNil(t, err)
		require.Equal(t, errors.RECORD_NOT_FOUND.Code, err.Code())
	})

	t.Run("invalid verifier terms are rejected", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		bad := f.mortgageDefinition().Verifiers[0]
		bad.FeeDestinations[0].FeeAmount = 1
		err := f.adminSvc.UpdateAssetVerifier(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage", bad,
		)
		require.NotNil(t, err)
		require.Equal(t, errors.INVALID_MESSAGE_FIELDS.Code, err.Code())
	})
}

func TestDeleteAssetDefinition(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the definition", func(t *testing.T) {
		f := newFixture(t)
		f.addMortgageDefinition(t)

		err := f.adminSvc.DeleteAssetDefinition(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage",
		)
		require.Nil(t, err)

		_, getErr := f.adminSvc.GetAssetDefinition(ctx, "mortgage")
		require.NotNil(t, getErr)
		require.Equal(t, errors.RECORD_NOT_FOUND.Code, getErr.Code())
	})

	t.Run("unknown asset type", func(t *testing.T) {
		f := newFixture(t)

		err := f.adminSvc.DeleteAssetDefinition(
			ctx, application.AdminRequest{Sender: f.admin}, "mortgage",
		)
		require.NotNil(t, err)
		require.Equal(t, errors.RECORD_NOT_FOUND.Code, err.Code())
	})
}

func TestBindAlias(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("dispatches a name binding", func(t *testing.T) {
		err := f.adminSvc.BindAlias(
			ctx, application.AdminRequest{Sender: f.admin}, "alias.asset",
		)
		require.Nil(t, err)
		require.Contains(t, f.ledger.BoundNames(), "alias.asset")
	})

	t.Run("blank alias is rejected", func(t *testing.T) {
		err := f.adminSvc.BindAlias(ctx, application.AdminRequest{Sender: f.admin}, "  ")
		require.NotNil(t, err)
		require.Equal(t, errors.INVALID_MESSAGE_FIELDS.Code, err.Code())
	})
}

func TestTransferAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("hands control to the new admin", func(t *testing.T) {
		f := newFixture(t)
		newAdmin := testAddress(t, 0x40)

		err := f.adminSvc.TransferAdmin(
			ctx, application.AdminRequest{Sender: f.admin}, newAdmin,
		)
		require.Nil(t, err)

		// The old admin is locked out, the new one is in charge.
		err = f.adminSvc.AddAssetDefinition(
			ctx, application.AdminRequest{Sender: f.admin}, f.mortgageDefinition(),
		)
		require.NotNil(t, err)
		require.Equal(t, errors.UNAUTHORIZED.Code, err.Code())

		err = f.adminSvc.AddAssetDefinition(
			ctx, application.AdminRequest{Sender: newAdmin}, f.mortgageDefinition(),
		)
		require.Nil(t, err)
	})

	t.Run("malformed new admin address", func(t *testing.T) {
		f := newFixture(t)

		err := f.adminSvc.TransferAdmin(
			ctx, application.AdminRequest{Sender: f.admin}, "not-bech32",
		)
		require.NotNil(t, err)
		require.Equal(t, errors.INVALID_ADDRESS.Code, err.Code())
	})
}

func TestListAssetDefinitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	defs, err := f.adminSvc.ListAssetDefinitions(ctx)
	require.Nil(t, err)
	require.Empty(t, defs)

	f.addMortgageDefinition(t)
	payable := f.mortgageDefinition()
	payable.AssetType = "payable"
	payable.ScopeSpecAddress = testAddress(t, 0x41)
	require.Nil(t, f.adminSvc.AddAssetDefinition(
		ctx, application.AdminRequest{Sender: f.admin}, payable,
	))

	defs, err = f.adminSvc.ListAssetDefinitions(ctx)
	require.Nil(t, err)
	require.Len(t, defs, 2)
	require.Equal(t, "mortgage", defs[0].AssetType)
	require.Equal(t, "payable", defs[1].AssetType)
}
