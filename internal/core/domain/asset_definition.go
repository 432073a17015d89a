package domain

import (
	"fmt"
	"strings"
)

// AssetDefinition is the configuration record for a single asset type. It
// names the scope specification that assets of this type must conform to and
// the verifiers allowed to classify them.
type AssetDefinition struct {
	AssetType        string
	ScopeSpecAddress string
	Verifiers        []VerifierDetail
	Enabled          bool
}

// StorageKey returns the lookup key for the definition: the lowercased UTF-8
// bytes of the asset type. Lookups stay case-insensitive no matter how the
// caller capitalizes the type.
func (d AssetDefinition) StorageKey() string {
	return strings.ToLower(d.AssetType)
}

// Verifier finds the verifier registered under the given address, or nil.
func (d AssetDefinition) Verifier(address string) *VerifierDetail {
	for i := range d.Verifiers {
		if d.Verifiers[i].Address == address {
			verifier := d.Verifiers[i].Clone()
			return &verifier
		}
	}
	return nil
}

// VerifierDetail holds the terms under which a single verifier classifies
// assets of one type: the total onboarding cost, the portion of it earmarked
// for fee destinations, and where that portion goes.
type VerifierDetail struct {
	Address         string
	OnboardingCost  uint64
	OnboardingDenom string
	FeeAmount       uint64
	FeeDestinations []FeeDestination
}

// Clone returns a deep value copy. Attribute snapshots must never alias the
// registry's copy.
func (v VerifierDetail) Clone() VerifierDetail {
	cloned := v
	cloned.FeeDestinations = make([]FeeDestination, len(v.FeeDestinations))
	copy(cloned.FeeDestinations, v.FeeDestinations)
	return cloned
}

// FeeDestination is an account owed a fixed cut of a verifier's fee amount.
type FeeDestination struct {
	Address   string
	FeeAmount uint64
}

// Coin is an amount of a single denomination.
type Coin struct {
	Denom  string
	Amount uint64
}

func (c Coin) String() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Denom)
}

// FundsString renders attached funds the way they appear in error metadata.
func FundsString(funds []Coin) string {
	if len(funds) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(funds))
	for _, coin := range funds {
		parts = append(parts, coin.String())
	}
	return strings.Join(parts, ",")
}
