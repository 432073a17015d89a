package domain

// PaymentInstruction is a single outbound transfer the ledger collaborator
// must perform against collected onboarding funds.
type PaymentInstruction struct {
	Address string
	Amount  uint64
	Denom   string
}

// CalculatePayments splits the collected onboarding cost into one line per
// fee destination plus the verifier's own remainder. Destination amounts are
// validated at registration time to sum exactly to FeeAmount, so no rounding
// or remainder math happens here. Zero-amount lines are elided; an empty
// destination list routes the whole cost to the verifier.
func (v VerifierDetail) CalculatePayments() []PaymentInstruction {
	payments := make([]PaymentInstruction, 0, len(v.FeeDestinations)+1)
	var distributed uint64
	for _, dest := range v.FeeDestinations {
		if dest.FeeAmount == 0 {
			continue
		}
		distributed += dest.FeeAmount
		payments = append(payments, PaymentInstruction{
			Address: dest.Address,
			Amount:  dest.FeeAmount,
			Denom:   v.OnboardingDenom,
		})
	}
	if remainder := v.OnboardingCost - distributed; remainder > 0 {
		payments = append(payments, PaymentInstruction{
			Address: v.Address,
			Amount:  remainder,
			Denom:   v.OnboardingDenom,
		})
	}
	return payments
}
