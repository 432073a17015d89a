package domain

import "strings"

// ContractState is the process-wide configuration written at bootstrap. The
// admin address gates every registry mutation; the base name is the parent
// under which per-type attribute names are generated (asset type "mortgage"
// with base name "asset" yields "mortgage.asset").
type ContractState struct {
	BaseName     string
	AdminAddress string
	IsTest       bool
}

// AttributeName returns the ledger attribute name for an asset type. The
// type is lowercased so the name matches the definition's storage key no
// matter how the caller capitalizes it.
func (s ContractState) AttributeName(assetType string) string {
	return strings.ToLower(assetType) + "." + s.BaseName
}
