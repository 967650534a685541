package httphandler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/paygate/internal/application"
	"github.com/ericfisherdev/paygate/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// CandidateResponse is the JSON representation of a resolution candidate.
type CandidateResponse struct {
	ID                string `json:"id"`
	Source            string `json:"source"`
	Provider          string `json:"provider"`
	ScopeType         string `json:"scope_type"`
	ScopeID           string `json:"scope_id,omitempty"`
	Environment       string `json:"environment"`
	Status            string `json:"status"`
	UpdatedAt         string `json:"updated_at"`
	HasRealCredential bool   `json:"has_real_credential"`
}

// ResolutionResponse is the JSON representation of an origin resolution.
type ResolutionResponse struct {
	Provider       string              `json:"provider"`
	Target         string              `json:"target"`
	Candidates     []CandidateResponse `json:"candidates"`
	Active         *CandidateResponse  `json:"active"`
	IsUsingLegacy  bool                `json:"is_using_legacy"`
	NeedsPromotion bool                `json:"needs_promotion"`
}

// AccountResponse is the JSON representation of a stored account. Payload
// values are never returned, only their keys.
type AccountResponse struct {
	ID          string   `json:"id"`
	Provider    string   `json:"provider"`
	ScopeType   string   `json:"scope_type"`
	ScopeID     string   `json:"scope_id,omitempty"`
	Environment string   `json:"environment"`
	Status      string   `json:"status"`
	PayloadKeys []string `json:"payload_keys"`
	UpdatedAt   string   `json:"updated_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// CandidateRequest identifies the candidate to promote, as returned by the
// origins endpoint.
type CandidateRequest struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	ScopeType   string `json:"scope_type"`
	ScopeID     string `json:"scope_id"`
	Environment string `json:"environment"`
}

// PromotionRequest is the JSON body for the promotion endpoint.
type PromotionRequest struct {
	Candidate CandidateRequest `json:"candidate"`
	Identity  string           `json:"identity"`
	Secret    string           `json:"secret"`
}

// toCandidate validates the request and builds the domain candidate. A non-empty
// message describes the first problem found.
func (c CandidateRequest) toCandidate(provider string) (model.Candidate, string) {
	if provider == "" {
		return model.Candidate{}, "provider is required"
	}
	if strings.TrimSpace(c.ID) == "" {
		return model.Candidate{}, "candidate.id is required"
	}

	candidate := model.Candidate{
		ID:          strings.TrimSpace(c.ID),
		Source:      model.CandidateSource(c.Source),
		Provider:    provider,
		ScopeType:   model.ScopeType(c.ScopeType),
		ScopeID:     c.ScopeID,
		Environment: model.Environment(c.Environment),
	}

	switch candidate.Source {
	case model.SourceLegacy:
		candidate.ScopeType = model.ScopeLegacy
	case model.SourceScoped:
		if !candidate.ScopeType.Valid() {
			return model.Candidate{}, "candidate.scope_type must be one of platform, partner, tenant"
		}
	default:
		return model.Candidate{}, "candidate.source must be scoped or legacy"
	}

	if candidate.Environment != "" && !candidate.Environment.Valid() {
		return model.Candidate{}, "candidate.environment must be sandbox or production"
	}

	return candidate, ""
}

func toCandidateResponse(c model.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:                c.ID,
		Source:            string(c.Source),
		Provider:          c.Provider,
		ScopeType:         string(c.ScopeType),
		ScopeID:           c.ScopeID,
		Environment:       string(c.Environment),
		Status:            string(c.Status),
		UpdatedAt:         c.UpdatedAt.UTC().Format(time.RFC3339),
		HasRealCredential: c.HasRealCredential,
	}
}

func toResolutionResponse(res *application.Resolution) ResolutionResponse {
	candidates := make([]CandidateResponse, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		candidates = append(candidates, toCandidateResponse(c))
	}

	var active *CandidateResponse
	if res.Active != nil {
		a := toCandidateResponse(*res.Active)
		active = &a
	}

	return ResolutionResponse{
		Provider:       res.Provider,
		Target:         string(res.Target),
		Candidates:     candidates,
		Active:         active,
		IsUsingLegacy:  res.IsUsingLegacy,
		NeedsPromotion: res.NeedsPromotion,
	}
}

func toAccountResponse(a model.CredentialAccount) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Provider:    a.Provider,
		ScopeType:   string(a.ScopeType),
		ScopeID:     a.ScopeID,
		Environment: string(a.Environment),
		Status:      string(a.Status),
		PayloadKeys: a.PayloadKeys(),
		UpdatedAt:   a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
