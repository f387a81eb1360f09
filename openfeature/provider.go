// Package openfeature defines the provider contract a host runtime programs
// against: typed evaluation calls, lifecycle hooks, and a replayable
// readiness event stream, together with the value union and evaluation
// context those calls exchange.
package openfeature

import "context"

// Metadata describes a provider to the host runtime.
type Metadata struct {
	Name string
}

// FeatureProvider is the contract a flag provider exposes to the host
// runtime. Evaluation methods are synchronous and never return a Go error;
// evaluation failures travel inside the ProviderEvaluation. Initialize is
// the only blocking call and the only one allowed to fail outright.
type FeatureProvider interface {
	Metadata() Metadata

	// Initialize records the initial context and blocks until the provider
	// is ready to serve evaluations, or ctx is done.
	Initialize(ctx context.Context, evalCtx *EvaluationContext) error
	// OnContextSet replaces the provider's current evaluation context.
	OnContextSet(oldCtx, newCtx *EvaluationContext)
	Shutdown()

	// Observe returns a stream of provider events and a cancel function.
	// A subscriber attaching after readiness fired still observes the
	// ready event.
	Observe() (<-chan Event, func())

	BooleanEvaluation(key string, defaultValue bool, evalCtx *EvaluationContext) ProviderEvaluation[bool]
	IntEvaluation(key string, defaultValue int, evalCtx *EvaluationContext) ProviderEvaluation[int]
	FloatEvaluation(key string, defaultValue float64, evalCtx *EvaluationContext) ProviderEvaluation[float64]
	StringEvaluation(key string, defaultValue string, evalCtx *EvaluationContext) ProviderEvaluation[string]
	ObjectEvaluation(key string, defaultValue Value, evalCtx *EvaluationContext) ProviderEvaluation[Value]
}
