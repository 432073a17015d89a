package inmemoryledger

import (
	"context"
	"sync"

	"github.com/provlabs/classifyd/internal/core/domain"
	"github.com/provlabs/classifyd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// Ledger records every outbound message instead of submitting it anywhere.
// It stands in for the chain-facing dispatcher in single-node deployments
// and in tests, and exposes the recorded traffic for inspection.
type Ledger struct {
	lock *sync.RWMutex

	payments        []domain.PaymentInstruction
	attributeWrites []ports.AttributeWrite
	boundNames      []string
}

func NewLedger() *Ledger {
	return &Ledger{lock: &sync.RWMutex{}}
}

func (l *Ledger) DispatchPayments(
	ctx context.Context, payments []domain.PaymentInstruction,
) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.payments = append(l.payments, payments...)
	for _, payment := range payments {
		log.WithField("address", payment.Address).
			WithField("amount", payment.Amount).
			WithField("denom", payment.Denom).
			Debug("payment dispatched")
	}
	return nil
}

func (l *Ledger) WriteAttribute(ctx context.Context, write ports.AttributeWrite) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	// Replace semantics: only the latest write per scope and attribute name
	// survives, matching how the chain overwrites a contract-owned attribute.
	kept := l.attributeWrites[:0]
	for _, existing := range l.attributeWrites {
		if existing.ScopeAddress == write.ScopeAddress &&
			existing.AttributeName == write.AttributeName {
			continue
		}
		kept = append(kept, existing)
	}
	l.attributeWrites = append(kept, write)

	log.WithField("scope_address", write.ScopeAddress).
		WithField("attribute_name", write.AttributeName).
		Debug("scope attribute written")
	return nil
}

func (l *Ledger) BindName(ctx context.Context, name string) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.boundNames = append(l.boundNames, name)
	log.WithField("name", name).Debug("name bound")
	return nil
}

// DispatchedPayments returns a copy of every payment recorded so far.
func (l *Ledger) DispatchedPayments() []domain.PaymentInstruction {
	l.lock.RLock()
	defer l.lock.RUnlock()

	payments := make([]domain.PaymentInstruction, len(l.payments))
	copy(payments, l.payments)
	return payments
}

// AttributeWrites returns a copy of the surviving attribute writes.
func (l *Ledger) AttributeWrites() []ports.AttributeWrite {
	l.lock.RLock()
	defer l.lock.RUnlock()

	writes := make([]ports.AttributeWrite, len(l.attributeWrites))
	copy(writes, l.attributeWrites)
	return writes
}

// BoundNames returns a copy of every name bound so far.
func (l *Ledger) BoundNames() []string {
	l.lock.RLock()
	defer l.lock.RUnlock()

	names := make([]string, len(l.boundNames))
	copy(names, l.boundNames)
	return names
}
