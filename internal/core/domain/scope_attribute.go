package domain

// OnboardingStatus tracks an asset through a single classification round.
// Pending is the only non-terminal status.
type OnboardingStatus string

const (
	StatusPending  OnboardingStatus = "pending"
	StatusDenied   OnboardingStatus = "denied"
	StatusApproved OnboardingStatus = "approved"
)

// IsTerminal reports whether a verifier has already resolved this round.
func (s OnboardingStatus) IsTerminal() bool {
	return s == StatusDenied || s == StatusApproved
}

// VerificationResult is the verifier's answer for one onboarding round.
type VerificationResult struct {
	Message string
	Success bool
}

// OnboardingTransaction is one entry of the attribute's audit history. The
// index starts at zero and increases by one per round. Message and Success
// stay nil until the round's verifier responds.
type OnboardingTransaction struct {
	Index          uint32
	VerifierDetail VerifierDetail
	Message        *string
	Success        *bool
}

// AccessRoute is a hint for where to fetch an asset's underlying data. The
// name is optional and only describes the route's purpose.
type AccessRoute struct {
	Route string
	Name  *string
}

// AccessDefinition groups the access routes registered by a single owner.
type AccessDefinition struct {
	OwnerAddress string
	Routes       []AccessRoute
}

// AssetScopeAttribute is the classification record attached to a scope. One
// exists per onboarded asset, keyed by scope address. The latest_* fields
// describe the current round; OnboardingTransactions accumulates every round
// for audit.
type AssetScopeAttribute struct {
	AssetUuid                string
	ScopeAddress             string
	AssetType                string
	RequestorAddress         string
	VerifierAddress          string
	OnboardingStatus         OnboardingStatus
	LatestVerifierDetail     VerifierDetail
	LatestVerificationResult *VerificationResult
	AccessDefinitions        []AccessDefinition
	OnboardingTransactions   []OnboardingTransaction
}

// AccessDefinitionFor returns the definition owned by the given address, or
// nil when the owner has never registered routes on this attribute.
func (a *AssetScopeAttribute) AccessDefinitionFor(ownerAddress string) *AccessDefinition {
	for i := range a.AccessDefinitions {
		if a.AccessDefinitions[i].OwnerAddress == ownerAddress {
			return &a.AccessDefinitions[i]
		}
	}
	return nil
}

// SetAccessRoutes replaces the whole route list registered by the owner,
// creating the owner's definition if needed. Blank routes are dropped and
// duplicates collapse to a single entry.
func (a *AssetScopeAttribute) SetAccessRoutes(ownerAddress string, routes []AccessRoute) {
	sanitized := sanitizeRoutes(routes)
	if def := a.AccessDefinitionFor(ownerAddress); def != nil {
		def.Routes = sanitized
		return
	}
	a.AccessDefinitions = append(a.AccessDefinitions, AccessDefinition{
		OwnerAddress: ownerAddress,
		Routes:       sanitized,
	})
}

// CurrentTransaction returns the newest history entry, or nil before the
// first onboarding round is recorded.
func (a *AssetScopeAttribute) CurrentTransaction() *OnboardingTransaction {
	if len(a.OnboardingTransactions) == 0 {
		return nil
	}
	return &a.OnboardingTransactions[len(a.OnboardingTransactions)-1]
}

// BeginRound resets the attribute to pending for a fresh onboarding round,
// snapshotting the verifier detail and appending the next history entry.
func (a *AssetScopeAttribute) BeginRound(
	requestorAddress, verifierAddress string, detail VerifierDetail,
) {
	a.RequestorAddress = requestorAddress
	a.VerifierAddress = verifierAddress
	a.OnboardingStatus = StatusPending
	a.LatestVerifierDetail = detail.Clone()
	a.LatestVerificationResult = nil
	a.OnboardingTransactions = append(a.OnboardingTransactions, OnboardingTransaction{
		Index:          uint32(len(a.OnboardingTransactions)),
		VerifierDetail: detail.Clone(),
	})
}

// ResolveRound records the verifier's verdict, moving the round to its
// terminal status and filling in the current history entry.
func (a *AssetScopeAttribute) ResolveRound(success bool, message string) {
	if success {
		a.OnboardingStatus = StatusApproved
	} else {
		a.OnboardingStatus = StatusDenied
	}
	result := VerificationResult{Message: message, Success: success}
	a.LatestVerificationResult = &result
	if tx := a.CurrentTransaction(); tx != nil {
		msg := message
		ok := success
		tx.Message = &msg
		tx.Success = &ok
	}
}

func sanitizeRoutes(routes []AccessRoute) []AccessRoute {
	seen := make(map[string]struct{}, len(routes))
	sanitized := make([]AccessRoute, 0, len(routes))
	for _, route := range routes {
		if route.Route == "" {
			continue
		}
		key := route.Route
		if route.Name != nil {
			key += "|" + *route.Name
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		sanitized = append(sanitized, route)
	}
	return sanitized
}
