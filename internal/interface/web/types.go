package web

import (
	"github.com/provlabs/classifyd/internal/core/application"
	"github.com/provlabs/classifyd/internal/core/domain"
)

type coinDTO struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

type feeDestinationDTO struct {
	Address   string `json:"address"`
	FeeAmount uint64 `json:"fee_amount"`
}

type verifierDetailDTO struct {
	Address         string              `json:"address"`
	OnboardingCost  uint64              `json:"onboarding_cost"`
	OnboardingDenom string              `json:"onboarding_denom"`
	FeeAmount       uint64              `json:"fee_amount"`
	FeeDestinations []feeDestinationDTO `json:"fee_destinations"`
}

type assetDefinitionDTO struct {
	AssetType        string              `json:"asset_type"`
	ScopeSpecAddress string              `json:"scope_spec_address"`
	Verifiers        []verifierDetailDTO `json:"verifiers"`
	Enabled          bool                `json:"enabled"`
}

type accessRouteDTO struct {
	Route string  `json:"route"`
	Name  *string `json:"name,omitempty"`
}

type accessDefinitionDTO struct {
	OwnerAddress string           `json:"owner_address"`
	Routes       []accessRouteDTO `json:"access_routes"`
}

type verificationResultDTO struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type onboardingTransactionDTO struct {
	Index          uint32            `json:"index"`
	VerifierDetail verifierDetailDTO `json:"verifier_detail"`
	Message        *string           `json:"message,omitempty"`
	Success        *bool             `json:"success,omitempty"`
}

type scopeAttributeDTO struct {
	AssetUuid                string                     `json:"asset_uuid"`
	ScopeAddress             string                     `json:"scope_address"`
	AssetType                string                     `json:"asset_type"`
	RequestorAddress         string                     `json:"requestor_address"`
	VerifierAddress          string                     `json:"verifier_address"`
	OnboardingStatus         string                     `json:"onboarding_status"`
	LatestVerifierDetail     verifierDetailDTO          `json:"latest_verifier_detail"`
	LatestVerificationResult *verificationResultDTO     `json:"latest_verification_result,omitempty"`
	AccessDefinitions        []accessDefinitionDTO      `json:"access_definitions"`
	OnboardingTransactions   []onboardingTransactionDTO `json:"onboarding_transactions"`
}

type paymentInstructionDTO struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
	Denom   string `json:"denom"`
}

type contractStateDTO struct {
	BaseName     string `json:"base_name"`
	AdminAddress string `json:"admin_address"`
	IsTest       bool   `json:"is_test"`
}

type versionDTO struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

type onboardResponse struct {
	Attribute scopeAttributeDTO       `json:"attribute"`
	Payments  []paymentInstructionDTO `json:"payments"`
}

func toCoins(dtos []coinDTO) []domain.Coin {
	coins := make([]domain.Coin, 0, len(dtos))
	for _, dto := range dtos {
		coins = append(coins, domain.Coin{Denom: dto.Denom, Amount: dto.Amount})
	}
	return coins
}

func toFeeDestinations(dtos []feeDestinationDTO) []domain.FeeDestination {
	dests := make([]domain.FeeDestination, 0, len(dtos))
	for _, dto := range dtos {
		dests = append(dests, domain.FeeDestination{
			Address:   dto.Address,
			FeeAmount: dto.FeeAmount,
		})
	}
	return dests
}

func toVerifierDetail(dto verifierDetailDTO) domain.VerifierDetail {
	return domain.VerifierDetail{
		Address:         dto.Address,
		OnboardingCost:  dto.OnboardingCost,
		OnboardingDenom: dto.OnboardingDenom,
		FeeAmount:       dto.FeeAmount,
		FeeDestinations: toFeeDestinations(dto.FeeDestinations),
	}
}

func toAssetDefinition(dto assetDefinitionDTO) domain.AssetDefinition {
	verifiers := make([]domain.VerifierDetail, 0, len(dto.Verifiers))
	for _, v := range dto.Verifiers {
		verifiers = append(verifiers, toVerifierDetail(v))
	}
	return domain.AssetDefinition{
		AssetType:        dto.AssetType,
		ScopeSpecAddress: dto.ScopeSpecAddress,
		Verifiers:        verifiers,
		Enabled:          dto.Enabled,
	}
}

func toAccessRoutes(dtos []accessRouteDTO) []domain.AccessRoute {
	routes := make([]domain.AccessRoute, 0, len(dtos))
	for _, dto := range dtos {
		routes = append(routes, domain.AccessRoute{Route: dto.Route, Name: dto.Name})
	}
	return routes
}

func fromFeeDestinations(dests []domain.FeeDestination) []feeDestinationDTO {
	dtos := make([]feeDestinationDTO, 0, len(dests))
	for _, dest := range dests {
		dtos = append(dtos, feeDestinationDTO{
			Address:   dest.Address,
			FeeAmount: dest.FeeAmount,
		})
	}
	return dtos
}

func fromVerifierDetail(detail domain.VerifierDetail) verifierDetailDTO {
	return verifierDetailDTO{
		Address:         detail.Address,
		OnboardingCost:  detail.OnboardingCost,
		OnboardingDenom: detail.OnboardingDenom,
		FeeAmount:       detail.FeeAmount,
		FeeDestinations: fromFeeDestinations(detail.FeeDestinations),
	}
}

func fromAssetDefinition(def domain.AssetDefinition) assetDefinitionDTO {
	verifiers := make([]verifierDetailDTO, 0, len(def.Verifiers))
	for _, v := range def.Verifiers {
		verifiers = append(verifiers, fromVerifierDetail(v))
	}
	return assetDefinitionDTO{
		AssetType:        def.AssetType,
		ScopeSpecAddress: def.ScopeSpecAddress,
		Verifiers:        verifiers,
		Enabled:          def.Enabled,
	}
}

func fromScopeAttribute(attribute domain.AssetScopeAttribute) scopeAttributeDTO {
	accessDefs := make([]accessDefinitionDTO, 0, len(attribute.AccessDefinitions))
	for _, def := range attribute.AccessDefinitions {
		routes := make([]accessRouteDTO, 0, len(def.Routes))
		for _, route := range def.Routes {
			routes = append(routes, accessRouteDTO{Route: route.Route, Name: route.Name})
		}
		accessDefs = append(accessDefs, accessDefinitionDTO{
			OwnerAddress: def.OwnerAddress,
			Routes:       routes,
		})
	}

	txs := make([]onboardingTransactionDTO, 0, len(attribute.OnboardingTransactions))
	for _, tx := range attribute.OnboardingTransactions {
		txs = append(txs, onboardingTransactionDTO{
			Index:          tx.Index,
			VerifierDetail: fromVerifierDetail(tx.VerifierDetail),
			Message:        tx.Message,
			Success:        tx.Success,
		})
	}

	dto := scopeAttributeDTO{
		AssetUuid:              attribute.AssetUuid,
		ScopeAddress:           attribute.ScopeAddress,
		AssetType:              attribute.AssetType,
		RequestorAddress:       attribute.RequestorAddress,
		VerifierAddress:        attribute.VerifierAddress,
		OnboardingStatus:       string(attribute.OnboardingStatus),
		LatestVerifierDetail:   fromVerifierDetail(attribute.LatestVerifierDetail),
		AccessDefinitions:      accessDefs,
		OnboardingTransactions: txs,
	}
	if attribute.LatestVerificationResult != nil {
		dto.LatestVerificationResult = &verificationResultDTO{
			Message: attribute.LatestVerificationResult.Message,
			Success: attribute.LatestVerificationResult.Success,
		}
	}
	return dto
}

func fromOnboardResult(result application.OnboardResult) onboardResponse {
	payments := make([]paymentInstructionDTO, 0, len(result.Payments))
	for _, payment := range result.Payments {
		payments = append(payments, paymentInstructionDTO{
			Address: payment.Address,
			Amount:  payment.Amount,
			Denom:   payment.Denom,
		})
	}
	return onboardResponse{
		Attribute: fromScopeAttribute(result.Attribute),
		Payments:  payments,
	}
}
