package model

import (
	"sort"
	"strings"
)

// Known payment providers.
const (
	ProviderStripe = "stripe"
	ProviderAsaas  = "asaas"
	ProviderStone  = "stone"
)

// DefaultPayloadKey is used for providers missing from payloadKeys.
const DefaultPayloadKey = "api_key"

// payloadKeys maps a provider to the payload key its single legacy value is
// stored under when it becomes a scoped account.
var payloadKeys = map[string]string{
	ProviderStripe: "secret_key",
	ProviderAsaas:  "api_key",
	ProviderStone:  "api_key",
}

// PayloadKeyFor returns the payload key for provider's primary secret.
func PayloadKeyFor(provider string) string {
	if key, ok := payloadKeys[strings.ToLower(provider)]; ok {
		return key
	}
	return DefaultPayloadKey
}

// productionPrefixes lists credential prefixes that identify a live key.
// Order does not matter; matching is case-sensitive.
var productionPrefixes = []string{
	"sk_live_",    // stripe secret key
	"rk_live_",    // stripe restricted key
	"pk_live_",    // stripe publishable key
	"$aact_prod_", // asaas production key
	"live_",
	"prod_",
}

// ProductionPrefixes returns a sorted copy of the prefixes used by
// InferLegacyEnvironment.
func ProductionPrefixes() []string {
	out := append([]string(nil), productionPrefixes...)
	sort.Strings(out)
	return out
}

// InferLegacyEnvironment guesses the environment of a legacy credential from
// its prefix. Legacy rows do not store an environment; anything that does not
// carry a known production prefix is treated as sandbox.
func InferLegacyEnvironment(masked string) Environment {
	for _, p := range productionPrefixes {
		if strings.HasPrefix(masked, p) {
			return EnvironmentProduction
		}
	}
	return EnvironmentSandbox
}
