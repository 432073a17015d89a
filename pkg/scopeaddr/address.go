// Package scopeaddr implements the deterministic mapping between an asset
// uuid and its ledger scope address. A scope address is the bech32 encoding
// of a single key-type byte followed by the 16 raw uuid bytes, under the
// "scope" human-readable prefix.
package scopeaddr

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/google/uuid"
)

const (
	// ScopeHRP is the human-readable prefix of every scope address.
	ScopeHRP = "scope"

	// scopeKeyByte prefixes the uuid bytes before encoding.
	scopeKeyByte = 0x00
)

// FromUUID converts an asset uuid string to its scope address.
func FromUUID(assetUuid string) (string, error) {
	id, err := uuid.Parse(assetUuid)
	if err != nil {
		return "", fmt.Errorf("invalid asset uuid %s: %w", assetUuid, err)
	}
	payload := make([]byte, 0, 17)
	payload = append(payload, scopeKeyByte)
	payload = append(payload, id[:]...)
	converted, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert scope address bits: %w", err)
	}
	addr, err := bech32.Encode(ScopeHRP, converted)
	if err != nil {
		return "", fmt.Errorf("failed to encode scope address: %w", err)
	}
	return addr, nil
}

// ToUUID converts a scope address back to the asset uuid it encodes.
func ToUUID(scopeAddress string) (string, error) {
	hrp, data, err := bech32.Decode(scopeAddress)
	if err != nil {
		return "", fmt.Errorf("invalid scope address %s: %w", scopeAddress, err)
	}
	if hrp != ScopeHRP {
		return "", fmt.Errorf(
			"invalid scope address %s: expected prefix %s, got %s", scopeAddress, ScopeHRP, hrp,
		)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", fmt.Errorf("failed to convert scope address bits: %w", err)
	}
	if len(payload) != 17 {
		return "", fmt.Errorf(
			"invalid scope address %s: expected 17 payload bytes, got %d",
			scopeAddress, len(payload),
		)
	}
	if payload[0] != scopeKeyByte {
		return "", fmt.Errorf(
			"invalid scope address %s: unexpected key byte %x", scopeAddress, payload[0],
		)
	}
	id, err := uuid.FromBytes(payload[1:])
	if err != nil {
		return "", fmt.Errorf("invalid scope address %s: %w", scopeAddress, err)
	}
	return id.String(), nil
}

// ValidateAccountAddress verifies that the given string is a well-formed
// bech32 account address. Scope addresses are rejected, accounts live under
// a different prefix.
func ValidateAccountAddress(address string) error {
	hrp, _, err := bech32.Decode(address)
	if err != nil {
		return fmt.Errorf("invalid account address %s: %w", address, err)
	}
	if hrp == ScopeHRP {
		return fmt.Errorf("invalid account address %s: scope addresses are not accounts", address)
	}
	return nil
}
