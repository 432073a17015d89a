package domain

import (
	"github.com/provlabs/classifyd/pkg/errors"
	"github.com/provlabs/classifyd/pkg/scopeaddr"
)

// AssetIdentifier is a two-variant sum type: an asset is addressed either by
// its uuid or by its scope address. At most one variant is set; the resolver
// derives the missing half. Carrying both is allowed only when they agree.
type AssetIdentifier struct {
	AssetUuid    string
	ScopeAddress string
}

// AssetIdentifiers is the canonical resolved pair.
type AssetIdentifiers struct {
	AssetUuid    string
	ScopeAddress string
}

// Resolve canonicalizes the identifier into both forms. Supplying neither
// variant fails, as does supplying both when the scope address cannot be
// derived from the uuid.
func (id AssetIdentifier) Resolve() (AssetIdentifiers, errors.Error) {
	switch {
	case id.AssetUuid == "" && id.ScopeAddress == "":
		return AssetIdentifiers{}, errors.ASSET_IDENTIFIER_NOT_SUPPLIED.New(
			"asset identifier not supplied, provide either asset_uuid or scope_address",
		)
	case id.AssetUuid != "" && id.ScopeAddress != "":
		derived, err := scopeaddr.FromUUID(id.AssetUuid)
		if err != nil {
			return AssetIdentifiers{}, errors.INVALID_ADDRESS.Wrap(err).
				WithMetadata(errors.InvalidAddressMetadata{Address: id.AssetUuid})
		}
		if derived != id.ScopeAddress {
			return AssetIdentifiers{}, errors.ASSET_IDENTIFIER_MISMATCH.New(
				"scope address %s cannot be derived from asset uuid %s",
				id.ScopeAddress, id.AssetUuid,
			).WithMetadata(errors.IdentifierMismatchMetadata{
				AssetUuid:    id.AssetUuid,
				ScopeAddress: id.ScopeAddress,
			})
		}
		return AssetIdentifiers{AssetUuid: id.AssetUuid, ScopeAddress: id.ScopeAddress}, nil
	case id.AssetUuid != "":
		derived, err := scopeaddr.FromUUID(id.AssetUuid)
		if err != nil {
			return AssetIdentifiers{}, errors.INVALID_ADDRESS.Wrap(err).
				WithMetadata(errors.InvalidAddressMetadata{Address: id.AssetUuid})
		}
		return AssetIdentifiers{AssetUuid: id.AssetUuid, ScopeAddress: derived}, nil
	default:
		derived, err := scopeaddr.ToUUID(id.ScopeAddress)
		if err != nil {
			return AssetIdentifiers{}, errors.INVALID_ADDRESS.Wrap(err).
				WithMetadata(errors.InvalidAddressMetadata{Address: id.ScopeAddress})
		}
		return AssetIdentifiers{AssetUuid: derived, ScopeAddress: id.ScopeAddress}, nil
	}
}
