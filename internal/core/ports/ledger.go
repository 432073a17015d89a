package ports

import (
	"context"

	"github.com/provlabs/classifyd/internal/core/domain"
)

// AttributeWrite asks the ledger to record a scope attribute under a named
// attribute slot, replacing any previous value the contract wrote there.
type AttributeWrite struct {
	ScopeAddress  string
	AttributeName string
	Attribute     domain.AssetScopeAttribute
}

// Ledger is the outbound message collaborator. Implementations translate
// payment instructions and attribute writes into ledger-native transfer and
// record operations; the core never issues those directly.
type Ledger interface {
	// DispatchPayments sends the given transfer instructions against funds
	// already collected by the contract account.
	DispatchPayments(ctx context.Context, payments []domain.PaymentInstruction) error
	// WriteAttribute records an attribute write on the scope.
	WriteAttribute(ctx context.Context, write AttributeWrite) error
	// BindName binds a lookup alias to the contract account.
	BindName(ctx context.Context, name string) error
}
