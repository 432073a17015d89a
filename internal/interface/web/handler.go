package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/provlabs/classifyd/internal/core/application"
	"github.com/provlabs/classifyd/internal/core/domain"
	"github.com/provlabs/classifyd/internal/interface/web/metrics"
	"github.com/provlabs/classifyd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// handler wires the classification API to the application services. It stays
// a thin translation layer: decode, delegate, encode.
type handler struct {
	svc      application.Service
	adminSvc application.AdminService
	metrics  *metrics.Metrics
}

func newHandler(
	svc application.Service, adminSvc application.AdminService, m *metrics.Metrics,
) *handler {
	return &handler{svc: svc, adminSvc: adminSvc, metrics: m}
}

type onboardRequest struct {
	AssetUuid       string           `json:"asset_uuid,omitempty"`
	ScopeAddress    string           `json:"scope_address,omitempty"`
	AssetType       string           `json:"asset_type"`
	VerifierAddress string           `json:"verifier_address"`
	AccessRoutes    []accessRouteDTO `json:"access_routes,omitempty"`
	Sender          string           `json:"sender"`
	Funds           []coinDTO        `json:"funds,omitempty"`
}

type verifyRequest struct {
	AssetUuid    string           `json:"asset_uuid,omitempty"`
	ScopeAddress string           `json:"scope_address,omitempty"`
	Success      bool             `json:"success"`
	Message      string           `json:"message,omitempty"`
	AccessRoutes []accessRouteDTO `json:"access_routes,omitempty"`
	Sender       string           `json:"sender"`
}

type updateAccessRoutesRequest struct {
	AssetUuid    string           `json:"asset_uuid,omitempty"`
	ScopeAddress string           `json:"scope_address,omitempty"`
	OwnerAddress string           `json:"owner_address"`
	AccessRoutes []accessRouteDTO `json:"access_routes"`
	Sender       string           `json:"sender"`
}

type addDefinitionRequest struct {
	Definition assetDefinitionDTO `json:"asset_definition"`
	Sender     string             `json:"sender"`
	Funds      []coinDTO          `json:"funds,omitempty"`
}

type toggleDefinitionRequest struct {
	ExpectedResult bool      `json:"expected_result"`
	Sender         string    `json:"sender"`
	Funds          []coinDTO `json:"funds,omitempty"`
}

type verifierRequest struct {
	Verifier verifierDetailDTO `json:"verifier"`
	Sender   string            `json:"sender"`
	Funds    []coinDTO         `json:"funds,omitempty"`
}

type adminOnlyRequest struct {
	Sender string    `json:"sender"`
	Funds  []coinDTO `json:"funds,omitempty"`
}

type bindAliasRequest struct {
	AliasName string    `json:"alias_name"`
	Sender    string    `json:"sender"`
	Funds     []coinDTO `json:"funds,omitempty"`
}

type transferAdminRequest struct {
	NewAdminAddress string    `json:"new_admin_address"`
	Sender          string    `json:"sender"`
	Funds           []coinDTO `json:"funds,omitempty"`
}

func (h *handler) onboardAsset(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[onboardRequest](w, r)
	if !ok {
		return
	}

	result, err := h.svc.OnboardAsset(r.Context(), application.OnboardAssetRequest{
		Identifier: domain.AssetIdentifier{
			AssetUuid:    req.AssetUuid,
			ScopeAddress: req.ScopeAddress,
		},
		AssetType:       req.AssetType,
		VerifierAddress: req.VerifierAddress,
		AccessRoutes:    toAccessRoutes(req.AccessRoutes),
		Sender:          req.Sender,
		Funds:           toCoins(req.Funds),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.IncrementOutcome(result.Attribute.AssetType, string(domain.StatusPending))
	if len(result.Payments) > 0 {
		h.metrics.CountPayments(result.Payments[0].Denom, len(result.Payments))
	}
	writeJSON(w, http.StatusOK, fromOnboardResult(*result))
}

func (h *handler) verifyAsset(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[verifyRequest](w, r)
	if !ok {
		return
	}

	attribute, err := h.svc.VerifyAsset(r.Context(), application.VerifyAssetRequest{
		Identifier: domain.AssetIdentifier{
			AssetUuid:    req.AssetUuid,
			ScopeAddress: req.ScopeAddress,
		},
		Success:      req.Success,
		Message:      req.Message,
		AccessRoutes: toAccessRoutes(req.AccessRoutes),
		Sender:       req.Sender,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.IncrementOutcome(attribute.AssetType, string(attribute.OnboardingStatus))
	writeJSON(w, http.StatusOK, fromScopeAttribute(*attribute))
}

func (h *handler) updateAccessRoutes(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[updateAccessRoutesRequest](w, r)
	if !ok {
		return
	}

	attribute, err := h.svc.UpdateAccessRoutes(r.Context(), application.UpdateAccessRoutesRequest{
		Identifier: domain.AssetIdentifier{
			AssetUuid:    req.AssetUuid,
			ScopeAddress: req.ScopeAddress,
		},
		OwnerAddress: req.OwnerAddress,
		Routes:       toAccessRoutes(req.AccessRoutes),
		Sender:       req.Sender,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromScopeAttribute(*attribute))
}

func (h *handler) getAsset(w http.ResponseWriter, r *http.Request) {
	identifier := domain.AssetIdentifier{
		AssetUuid:    r.URL.Query().Get("asset_uuid"),
		ScopeAddress: r.URL.Query().Get("scope_address"),
	}

	attribute, err := h.svc.GetAssetScopeAttribute(r.Context(), identifier)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromScopeAttribute(*attribute))
}

func (h *handler) addDefinition(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[addDefinitionRequest](w, r)
	if !ok {
		return
	}

	err := h.adminSvc.AddAssetDefinition(
		r.Context(), adminRequest(req.Sender, req.Funds), toAssetDefinition(req.Definition),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"asset_type": req.Definition.AssetType,
	})
}

func (h *handler) updateDefinition(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[addDefinitionRequest](w, r)
	if !ok {
		return
	}

	err := h.adminSvc.UpdateAssetDefinition(
		r.Context(), adminRequest(req.Sender, req.Funds), toAssetDefinition(req.Definition),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"asset_type": req.Definition.AssetType,
	})
}

func (h *handler) toggleDefinition(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[toggleDefinitionRequest](w, r)
	if !ok {
		return
	}

	assetType := chi.URLParam(r, "assetType")
	err := h.adminSvc.ToggleAssetDefinition(
		r.Context(), adminRequest(req.Sender, req.Funds), assetType, req.ExpectedResult,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"asset_type": assetType,
		"enabled":    req.ExpectedResult,
	})
}

func (h *handler) deleteDefinition(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[adminOnlyRequest](w, r)
	if !ok {
		return
	}

	assetType := chi.URLParam(r, "assetType")
	err := h.adminSvc.DeleteAssetDefinition(
		r.Context(), adminRequest(req.Sender, req.Funds), assetType,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"asset_type": assetType})
}

func (h *handler) addVerifier(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[verifierRequest](w, r)
	if !ok {
		return
	}

	assetType := chi.URLParam(r, "assetType")
	err := h.adminSvc.AddAssetVerifier(
		r.Context(), adminRequest(req.Sender, req.Funds),
		assetType, toVerifierDetail(req.Verifier),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"asset_type": assetType,
		"verifier":   req.Verifier.Address,
	})
}

func (h *handler) updateVerifier(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[verifierRequest](w, r)
	if !ok {
		return
	}

	assetType := chi.URLParam(r, "assetType")
	err := h.adminSvc.UpdateAssetVerifier(
		r.Context(), adminRequest(req.Sender, req.Funds),
		assetType, toVerifierDetail(req.Verifier),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"asset_type": assetType,
		"verifier":   req.Verifier.Address,
	})
}

func (h *handler) getDefinition(w http.ResponseWriter, r *http.Request) {
	def, err := h.adminSvc.GetAssetDefinition(r.Context(), chi.URLParam(r, "assetType"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromAssetDefinition(*def))
}

func (h *handler) listDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := h.adminSvc.ListAssetDefinitions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]assetDefinitionDTO, 0, len(defs))
	for _, def := range defs {
		dtos = append(dtos, fromAssetDefinition(def))
	}
	writeJSON(w, http.StatusOK, map[string]any{"asset_definitions": dtos})
}

func (h *handler) bindAlias(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[bindAliasRequest](w, r)
	if !ok {
		return
	}

	err := h.adminSvc.BindAlias(r.Context(), adminRequest(req.Sender, req.Funds), req.AliasName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"alias_name": req.AliasName})
}

func (h *handler) transferAdmin(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[transferAdminRequest](w, r)
	if !ok {
		return
	}

	err := h.adminSvc.TransferAdmin(
		r.Context(), adminRequest(req.Sender, req.Funds), req.NewAdminAddress,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"admin_address": req.NewAdminAddress})
}

func (h *handler) getState(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.GetContractState(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contractStateDTO{
		BaseName:     state.BaseName,
		AdminAddress: state.AdminAddress,
		IsTest:       state.IsTest,
	})
}

func (h *handler) getVersion(w http.ResponseWriter, r *http.Request) {
	version := h.svc.GetVersion()
	writeJSON(w, http.StatusOK, versionDTO{
		Name:    version.Name,
		Version: version.Version,
		Commit:  version.Commit,
	})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func adminRequest(sender string, funds []coinDTO) application.AdminRequest {
	return application.AdminRequest{Sender: sender, Funds: toCoins(funds)}
}

func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.INVALID_MESSAGE_FIELDS.New("malformed request body: %s", err))
		var zero T
		return zero, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("failed to encode response body")
	}
}

// writeError translates typed service errors into the JSON error envelope.
// Anything that is not a typed error becomes a 500.
func writeError(w http.ResponseWriter, err error) {
	typed, ok := err.(errors.Error)
	if !ok {
		typed = errors.INTERNAL_ERROR.Wrap(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(typed.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":     typed.Code(),
		"name":     typed.CodeName(),
		"message":  typed.Error(),
		"metadata": typed.Metadata(),
	})
}

// observe wraps a handler with request latency tracking.
func (h *handler) observe(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		h.metrics.ObserveRequest(route, r.Method, time.Since(start))
	}
}
