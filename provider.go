// Package configcat adapts a ConfigCat-style flag evaluation engine to the
// generic feature provider contract in the openfeature package. The provider
// holds the engine's latest configuration snapshot and the latest evaluation
// user as atomically replaced references, routes each typed evaluation call
// through the snapshot, and broadcasts a one-shot ready event once the
// engine first reports evaluable flag data.
package configcat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/configcat/openfeature-go/engine"
	"github.com/configcat/openfeature-go/openfeature"
	"github.com/configcat/openfeature-go/telemetry"
)

const providerName = "ConfigCatProvider"

// Provider implements openfeature.FeatureProvider on top of an engine.Client.
type Provider struct {
	client  engine.Client
	logger  zerolog.Logger
	metrics *telemetry.Metrics

	snapshot    atomic.Pointer[snapshotRef]
	user        atomic.Pointer[engine.UserData]
	initialized atomic.Bool
	events      *openfeature.EventSource
}

// snapshotRef boxes the Snapshot interface so the holder can be swapped with
// a single pointer store regardless of the engine's concrete snapshot type.
type snapshotRef struct {
	snap engine.Snapshot
}

var _ openfeature.FeatureProvider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithLogger attaches a logger for lifecycle and mapping diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithMetrics enables evaluation and lifecycle counters.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// NewProvider creates a provider over the given engine client and registers
// for its configuration-change notifications.
func NewProvider(client engine.Client, opts ...Option) *Provider {
	p := &Provider{
		client: client,
		logger: zerolog.Nop(),
		events: openfeature.NewEventSource(),
	}
	for _, opt := range opts {
		opt(p)
	}
	client.OnConfigChanged(p.handleConfigChanged)
	return p
}

// Metadata returns the fixed provider identity.
func (p *Provider) Metadata() openfeature.Metadata {
	return openfeature.Metadata{Name: providerName}
}

// Initialize records the user derived from the initial context, then blocks
// until the engine settles its configuration state or ctx is done.
// Cancellation is the one failure that propagates as an error; it leaves the
// readiness flag untouched so a config-change notification can still fire it.
func (p *Provider) Initialize(ctx context.Context, evalCtx *openfeature.EvaluationContext) error {
	if evalCtx != nil {
		u := userFromContext(*evalCtx)
		p.user.Store(&u)
	}
	state, err := p.client.WaitForReady(ctx)
	if err != nil {
		return fmt.Errorf("wait for engine readiness: %w", err)
	}
	if state.HasFlagData() {
		p.signalReady()
	}
	return nil
}

// OnContextSet replaces the held user with the mapping of the new context.
// It never re-triggers readiness.
func (p *Provider) OnContextSet(oldCtx, newCtx *openfeature.EvaluationContext) {
	if newCtx == nil {
		return
	}
	u := userFromContext(*newCtx)
	p.user.Store(&u)
}

// Shutdown releases the engine handle.
func (p *Provider) Shutdown() {
	p.client.Close()
	p.logger.Debug().Msg("provider shut down")
}

// Observe returns the readiness event stream. The last emitted event is
// replayed, so late subscribers still observe readiness.
func (p *Provider) Observe() (<-chan openfeature.Event, func()) {
	return p.events.Subscribe()
}

func (p *Provider) handleConfigChanged(snap engine.Snapshot) {
	p.snapshot.Store(&snapshotRef{snap: snap})
	if p.metrics != nil {
		p.metrics.ConfigChanges.Inc()
	}
	if snap.CacheState().HasFlagData() {
		p.signalReady()
	}
}

// signalReady flips the initialized flag and emits the one-shot ready event.
// The flag is rolled back when the emit is rejected, so a later trigger can
// retry: readiness means "event observed", not merely "flag set".
func (p *Provider) signalReady() {
	if !p.initialized.CompareAndSwap(false, true) {
		return
	}
	if !p.events.TryEmit(openfeature.ProviderReady) {
		p.initialized.Store(false)
		p.logger.Warn().Msg("ready event rejected by a full subscriber buffer, will retry on the next trigger")
		return
	}
	if p.metrics != nil {
		p.metrics.ReadyEvents.Inc()
	}
	p.logger.Debug().Msg("provider ready")
}

// BooleanEvaluation resolves a boolean flag.
func (p *Provider) BooleanEvaluation(key string, defaultValue bool, evalCtx *openfeature.EvaluationContext) openfeature.ProviderEvaluation[bool] {
	result := evaluate(p, key, defaultValue, evalCtx, engine.Snapshot.GetBoolValueDetails)
	p.observeEvaluation(result.Reason, result.ErrorCode)
	return result
}

// IntEvaluation resolves an integer flag.
func (p *Provider) IntEvaluation(key string, defaultValue int, evalCtx *openfeature.EvaluationContext) openfeature.ProviderEvaluation[int] {
	result := evaluate(p, key, defaultValue, evalCtx, engine.Snapshot.GetIntValueDetails)
	p.observeEvaluation(result.Reason, result.ErrorCode)
	return result
}

// FloatEvaluation resolves a floating-point flag.
func (p *Provider) FloatEvaluation(key string, defaultValue float64, evalCtx *openfeature.EvaluationContext) openfeature.ProviderEvaluation[float64] {
	result := evaluate(p, key, defaultValue, evalCtx, engine.Snapshot.GetFloatValueDetails)
	p.observeEvaluation(result.Reason, result.ErrorCode)
	return result
}

// StringEvaluation resolves a string flag.
func (p *Provider) StringEvaluation(key string, defaultValue string, evalCtx *openfeature.EvaluationContext) openfeature.ProviderEvaluation[string] {
	result := evaluate(p, key, defaultValue, evalCtx, engine.Snapshot.GetStringValueDetails)
	p.observeEvaluation(result.Reason, result.ErrorCode)
	return result
}

// ObjectEvaluation resolves a structured flag. The engine stores structured
// values as JSON text, so this is layered on string evaluation: an empty
// string yields the caller's default with the string result's reason and
// error fields, and unparseable text yields the default with a type
// mismatch error embedding the offending text.
func (p *Provider) ObjectEvaluation(key string, defaultValue openfeature.Value, evalCtx *openfeature.EvaluationContext) openfeature.ProviderEvaluation[openfeature.Value] {
	stringResult := evaluate(p, key, "", evalCtx, engine.Snapshot.GetStringValueDetails)

	var result openfeature.ProviderEvaluation[openfeature.Value]
	switch {
	case stringResult.Value == "":
		result = openfeature.ProviderEvaluation[openfeature.Value]{
			Value:        defaultValue,
			Reason:       stringResult.Reason,
			ErrorCode:    stringResult.ErrorCode,
			ErrorMessage: stringResult.ErrorMessage,
		}
	default:
		var value openfeature.Value
		if err := json.Unmarshal([]byte(stringResult.Value), &value); err != nil {
			result = openfeature.ProviderEvaluation[openfeature.Value]{
				Value:        defaultValue,
				Reason:       openfeature.ReasonError,
				ErrorCode:    openfeature.ErrorCodeTypeMismatch,
				ErrorMessage: fmt.Sprintf("Could not parse '%s' as JSON (%s)", stringResult.Value, err),
			}
		} else {
			result = openfeature.ProviderEvaluation[openfeature.Value]{
				Value:        value,
				Variant:      stringResult.Variant,
				Reason:       stringResult.Reason,
				ErrorCode:    stringResult.ErrorCode,
				ErrorMessage: stringResult.ErrorMessage,
			}
		}
	}

	p.observeEvaluation(result.Reason, result.ErrorCode)
	return result
}

// evaluate runs one typed evaluation: resolve the user (last-set user wins
// over the call-scoped context), resolve the snapshot (ask the engine when
// none has been cached yet), evaluate, and map the details.
func evaluate[T any](p *Provider, key string, defaultValue T, evalCtx *openfeature.EvaluationContext,
	get func(engine.Snapshot, string, T, *engine.UserData) engine.EvaluationDetails[T],
) openfeature.ProviderEvaluation[T] {
	snap := p.currentSnapshot()
	user := p.currentUser(evalCtx)
	return toProviderEvaluation(get(snap, key, defaultValue, user), p.logger)
}

func (p *Provider) currentSnapshot() engine.Snapshot {
	if ref := p.snapshot.Load(); ref != nil {
		return ref.snap
	}
	return p.client.Snapshot()
}

func (p *Provider) currentUser(evalCtx *openfeature.EvaluationContext) *engine.UserData {
	if u := p.user.Load(); u != nil {
		return u
	}
	if evalCtx != nil {
		u := userFromContext(*evalCtx)
		return &u
	}
	return nil
}

func (p *Provider) observeEvaluation(reason openfeature.Reason, code openfeature.ErrorCode) {
	if p.metrics == nil {
		return
	}
	p.metrics.Evaluations.WithLabelValues(string(reason), string(code)).Inc()
}
