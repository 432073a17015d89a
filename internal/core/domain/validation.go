package domain

import (
	"fmt"

	"github.com/provlabs/classifyd/pkg/errors"
	"github.com/provlabs/classifyd/pkg/scopeaddr"
)

// The validation library: pure predicates over configuration payloads. Each
// function returns every problem it finds, in field order, so a caller sees
// the whole picture in one round trip instead of fixing fields one by one.

// ValidateAssetDefinition checks the structural correctness of a definition
// and of every nested verifier. An empty result means valid.
func ValidateAssetDefinition(def AssetDefinition) []string {
	var invalidFields []string
	if def.AssetType == "" {
		invalidFields = append(invalidFields, "asset_type: must not be blank")
	}
	if def.ScopeSpecAddress == "" {
		invalidFields = append(invalidFields, "scope_spec_address: must not be blank")
	} else if err := scopeaddr.ValidateAccountAddress(def.ScopeSpecAddress); err != nil {
		invalidFields = append(
			invalidFields,
			fmt.Sprintf("scope_spec_address: must be a valid bech32 address: %s", err),
		)
	}
	if distinctCount(def.Verifiers, func(v VerifierDetail) string { return v.Address }) != len(def.Verifiers) {
		invalidFields = append(
			invalidFields, "verifiers: duplicate verifier addresses provided",
		)
	}
	for _, verifier := range def.Verifiers {
		invalidFields = append(invalidFields, ValidateVerifier(verifier)...)
	}
	return invalidFields
}

// ValidateVerifier checks a single verifier's terms, including the fee-sum
// invariant that makes split-time remainder logic unnecessary.
func ValidateVerifier(verifier VerifierDetail) []string {
	var invalidFields []string
	if verifier.Address == "" {
		invalidFields = append(invalidFields, "verifier:address: must not be blank")
	} else if err := scopeaddr.ValidateAccountAddress(verifier.Address); err != nil {
		invalidFields = append(
			invalidFields,
			fmt.Sprintf("verifier:address: must be a valid bech32 address: %s", err),
		)
	}
	if verifier.OnboardingDenom == "" {
		invalidFields = append(invalidFields, "verifier:onboarding_denom: must not be blank")
	}
	if verifier.FeeAmount > verifier.OnboardingCost {
		invalidFields = append(invalidFields, fmt.Sprintf(
			"verifier:fee_amount: fee amount %d exceeds onboarding cost %d",
			verifier.FeeAmount, verifier.OnboardingCost,
		))
	}
	if len(verifier.FeeDestinations) == 0 && verifier.FeeAmount != 0 {
		invalidFields = append(
			invalidFields,
			"verifier:fee_destinations: must be provided when fee amount is non-zero",
		)
	}
	var destinationTotal uint64
	for _, dest := range verifier.FeeDestinations {
		destinationTotal += dest.FeeAmount
		if dest.Address == "" {
			invalidFields = append(invalidFields, "fee_destination:address: must not be blank")
		} else if err := scopeaddr.ValidateAccountAddress(dest.Address); err != nil {
			invalidFields = append(
				invalidFields,
				fmt.Sprintf("fee_destination:address: must be a valid bech32 address: %s", err),
			)
		}
		if dest.FeeAmount > verifier.FeeAmount {
			invalidFields = append(invalidFields, fmt.Sprintf(
				"fee_destination:fee_amount: destination amount %d exceeds verifier fee amount %d",
				dest.FeeAmount, verifier.FeeAmount,
			))
		}
	}
	if len(verifier.FeeDestinations) > 0 && destinationTotal != verifier.FeeAmount {
		invalidFields = append(invalidFields, fmt.Sprintf(
			"verifier:fee_destinations: destination amounts sum to %d, expected fee amount %d",
			destinationTotal, verifier.FeeAmount,
		))
	}
	if distinctCount(
		verifier.FeeDestinations, func(d FeeDestination) string { return d.Address },
	) != len(verifier.FeeDestinations) {
		invalidFields = append(
			invalidFields, "verifier:fee_destinations: duplicate destination addresses provided",
		)
	}
	return invalidFields
}

// InvalidFieldsError aggregates validation output into the typed error the
// command surface returns.
func InvalidFieldsError(messageType string, invalidFields []string) errors.Error {
	return errors.INVALID_MESSAGE_FIELDS.New(
		"message of type %s was invalid, invalid fields: %v", messageType, invalidFields,
	).WithMetadata(errors.InvalidFieldsMetadata{
		MessageType:   messageType,
		InvalidFields: invalidFields,
	})
}

func distinctCount[T any](slice []T, selector func(T) string) int {
	seen := make(map[string]struct{}, len(slice))
	for _, elem := range slice {
		seen[selector(elem)] = struct{}{}
	}
	return len(seen)
}
