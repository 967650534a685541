package application

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
)

// Minimum lengths above which a stored value counts as a real credential
// rather than a placeholder or an emptied mask.
const (
	minScopedValueLen = 5
	minLegacyValueLen = 10
)

// Resolution is the ranked view of every stored credential for a provider and
// the single authoritative one. Active is nil when no candidate holds a real
// credential.
type Resolution struct {
	Provider       string
	Target         model.ScopeType
	Candidates     []model.Candidate
	Active         *model.Candidate
	IsUsingLegacy  bool
	NeedsPromotion bool
}

// OriginResolver determines which stored credential is authoritative for a
// provider. It only reads from the store.
type OriginResolver struct {
	store   driven.CredentialStore
	metrics driven.MetricsRecorder
	logger  *slog.Logger
}

// NewOriginResolver creates an OriginResolver. metrics may be nil.
func NewOriginResolver(store driven.CredentialStore, metrics driven.MetricsRecorder, logger *slog.Logger) *OriginResolver {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	return &OriginResolver{store: store, metrics: metrics, logger: logger}
}

// Resolve loads scoped and legacy credentials for provider concurrently and
// ranks them. target is the scope the caller is configuring; an empty target
// means platform. Store errors are returned unmodified.
func (r *OriginResolver) Resolve(ctx context.Context, provider string, target model.ScopeType) (*Resolution, error) {
	if target == "" {
		target = model.ScopePlatform
	}

	var (
		accounts []model.CredentialAccount
		legacy   []model.LegacyCredential
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = r.store.ListScopedByProvider(gctx, provider)
		return err
	})
	g.Go(func() error {
		var err error
		legacy, err = r.store.ListActiveLegacyByProvider(gctx, provider)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := resolveCandidates(provider, target, accounts, legacy)
	r.metrics.ObserveResolution(provider, res.IsUsingLegacy, res.NeedsPromotion)

	r.logger.Debug("origins resolved",
		"provider", provider,
		"target", target,
		"candidates", len(res.Candidates),
		"using_legacy", res.IsUsingLegacy,
		"needs_promotion", res.NeedsPromotion,
	)

	return res, nil
}

// resolveCandidates normalizes both lists and applies the precedence rule:
// the first platform account with a real credential wins, otherwise the first
// candidate with a real credential in scoped-then-legacy order.
func resolveCandidates(provider string, target model.ScopeType, accounts []model.CredentialAccount, legacy []model.LegacyCredential) *Resolution {
	candidates := make([]model.Candidate, 0, len(accounts)+len(legacy))
	for _, a := range accounts {
		candidates = append(candidates, scopedCandidate(a))
	}
	for _, l := range legacy {
		candidates = append(candidates, legacyCandidate(l))
	}

	var platform, fallback *model.Candidate
	for i := range candidates {
		c := &candidates[i]
		if !c.HasRealCredential {
			continue
		}
		if platform == nil && c.IsPlatform() {
			platform = c
		}
		if fallback == nil {
			fallback = c
		}
	}

	active := platform
	if active == nil {
		active = fallback
	}

	res := &Resolution{
		Provider:   provider,
		Target:     target,
		Candidates: candidates,
	}
	if active != nil {
		cp := *active
		res.Active = &cp
		res.IsUsingLegacy = cp.Source == model.SourceLegacy
	}
	res.NeedsPromotion = target == model.ScopePlatform && platform == nil && active != nil

	return res
}

func scopedCandidate(a model.CredentialAccount) model.Candidate {
	return model.Candidate{
		ID:                a.ID,
		Source:            model.SourceScoped,
		Provider:          a.Provider,
		ScopeType:         a.ScopeType,
		ScopeID:           a.ScopeID,
		Environment:       a.Environment,
		Status:            a.Status,
		UpdatedAt:         a.UpdatedAt,
		HasRealCredential: hasRealPayload(a.Payload),
	}
}

func legacyCandidate(l model.LegacyCredential) model.Candidate {
	return model.Candidate{
		ID:                l.ID,
		Source:            model.SourceLegacy,
		Provider:          l.Provider,
		ScopeType:         model.ScopeLegacy,
		Environment:       model.InferLegacyEnvironment(l.MaskedCredential),
		Status:            model.AccountStatusActive,
		UpdatedAt:         l.CreatedAt,
		HasRealCredential: len(l.MaskedCredential) > minLegacyValueLen,
	}
}

// hasRealPayload reports whether any payload value is long enough to be a key.
func hasRealPayload(payload map[string]string) bool {
	for _, v := range payload {
		if len(v) > minScopedValueLen {
			return true
		}
	}
	return false
}
