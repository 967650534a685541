package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
)

// Promotion outcomes reported to the metrics port.
const (
	OutcomeOK                = "ok"
	OutcomeInvalidCredential = "invalid_credential"
	OutcomeSourceNotFound    = "source_not_found"
	OutcomeConflict          = "conflict"
	OutcomeStoreUnavailable  = "store_unavailable"
	OutcomeError             = "error"
)

// PromotionService copies a candidate's credential payload to the platform
// scope after re-verifying the acting identity. The source record is never
// modified. The service holds no state; concurrent promotions for the same
// provider and environment are serialized only by the store upsert, and the
// last writer wins.
type PromotionService struct {
	store   driven.CredentialStore
	auth    driven.Authenticator
	metrics driven.MetricsRecorder
	logger  *slog.Logger
}

// NewPromotionService creates a PromotionService. metrics may be nil.
func NewPromotionService(store driven.CredentialStore, auth driven.Authenticator, metrics driven.MetricsRecorder, logger *slog.Logger) *PromotionService {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	return &PromotionService{store: store, auth: auth, metrics: metrics, logger: logger}
}

// Promote reauthenticates identity, extracts the payload of candidate and
// upserts it as the active platform account for the candidate's provider and
// the source record's environment. It returns the stored platform account.
//
// Steps run strictly in order; a failed reauthentication performs no reads or
// writes against the credential store. Calling Promote again with the same
// inputs rewrites the same platform row.
func (s *PromotionService) Promote(ctx context.Context, candidate model.Candidate, identity, secret string) (*model.CredentialAccount, error) {
	account, err := s.promote(ctx, candidate, identity, secret)

	outcome := promotionOutcome(err)
	s.metrics.ObservePromotion(candidate.Provider, string(candidate.Source), outcome)

	if err != nil {
		s.logger.Warn("credential promotion failed",
			"provider", candidate.Provider,
			"source", candidate.Source,
			"candidate_id", candidate.ID,
			"identity", identity,
			"outcome", outcome,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("credential promoted to platform",
		"provider", account.Provider,
		"environment", account.Environment,
		"source", candidate.Source,
		"candidate_id", candidate.ID,
		"account_id", account.ID,
		"identity", identity,
	)
	return account, nil
}

func (s *PromotionService) promote(ctx context.Context, candidate model.Candidate, identity, secret string) (*model.CredentialAccount, error) {
	ok, err := s.auth.Reauthenticate(ctx, identity, secret)
	if err != nil {
		return nil, fmt.Errorf("reauthenticate %q: %w: %w", identity, ErrInvalidCredential, err)
	}
	if !ok {
		return nil, ErrInvalidCredential
	}

	payload, env, err := s.extractPayload(ctx, candidate)
	if err != nil {
		return nil, err
	}

	// Once reached, the upsert settles even if the caller has gone away.
	writeCtx := context.WithoutCancel(ctx)

	stored, err := s.store.UpsertScoped(writeCtx, model.CredentialAccount{
		Provider:    candidate.Provider,
		ScopeType:   model.ScopePlatform,
		ScopeID:     "",
		Environment: env,
		Payload:     payload,
		Status:      model.AccountStatusActive,
	})
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// extractPayload loads the full source record of candidate and returns the
// payload to store at platform scope along with the record's environment. The
// record must belong to candidate's provider; a candidate environment that
// disagrees with the record is rejected.
func (s *PromotionService) extractPayload(ctx context.Context, candidate model.Candidate) (map[string]string, model.Environment, error) {
	switch candidate.Source {
	case model.SourceLegacy:
		legacy, err := s.store.GetLegacyByID(ctx, candidate.ID)
		if err != nil {
			return nil, "", err
		}
		if legacy == nil || !legacy.IsActive || legacy.Provider != candidate.Provider {
			return nil, "", fmt.Errorf("legacy credential %q for %s: %w", candidate.ID, candidate.Provider, ErrSourceNotFound)
		}
		env := model.InferLegacyEnvironment(legacy.MaskedCredential)
		if candidate.Environment != "" && candidate.Environment != env {
			return nil, "", fmt.Errorf("legacy credential %q is %s, not %s: %w",
				candidate.ID, env, candidate.Environment, ErrSourceNotFound)
		}
		return map[string]string{
			model.PayloadKeyFor(candidate.Provider): legacy.MaskedCredential,
		}, env, nil

	case model.SourceScoped:
		account, err := s.store.GetScoped(ctx, candidate.Provider, candidate.ScopeType, candidate.ScopeID, candidate.Environment)
		if err != nil {
			return nil, "", err
		}
		if account == nil || account.ID != candidate.ID || account.Provider != candidate.Provider {
			return nil, "", fmt.Errorf("credential account %q at %s/%s: %w",
				candidate.ID, candidate.ScopeType, candidate.ScopeID, ErrSourceNotFound)
		}
		payload := make(map[string]string, len(account.Payload))
		for k, v := range account.Payload {
			payload[k] = v
		}
		return payload, account.Environment, nil

	default:
		return nil, "", fmt.Errorf("candidate source %q: %w", candidate.Source, ErrSourceNotFound)
	}
}

func promotionOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrInvalidCredential):
		return OutcomeInvalidCredential
	case errors.Is(err, ErrSourceNotFound):
		return OutcomeSourceNotFound
	case errors.Is(err, driven.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, driven.ErrStoreUnavailable):
		return OutcomeStoreUnavailable
	default:
		return OutcomeError
	}
}
