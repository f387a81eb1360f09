// Package engine declares the boundary to the flag-evaluation engine the
// provider adapts: a client handle, immutable configuration snapshots, and
// the typed evaluation details they produce. The engine itself (config
// fetching, targeting-rule matching, percentage rollouts) lives behind these
// interfaces; engine/memory ships a local in-memory implementation.
package engine

import "context"

// ConfigState describes how much flag data the engine currently holds.
type ConfigState string

const (
	StateNoFlagData        ConfigState = "NO_FLAG_DATA"
	StateLocalOverrideOnly ConfigState = "HAS_LOCAL_OVERRIDE_FLAG_DATA_ONLY"
	StateCachedOnly        ConfigState = "HAS_CACHED_FLAG_DATA_ONLY"
	StateUpToDate          ConfigState = "HAS_UP_TO_DATE_FLAG_DATA"
)

// HasFlagData reports whether the state carries evaluable configuration.
func (s ConfigState) HasFlagData() bool { return s != StateNoFlagData && s != "" }

// Client is the engine handle the provider consumes.
type Client interface {
	// Snapshot returns the engine's latest immutable configuration view.
	Snapshot() Snapshot
	// WaitForReady blocks until the engine has settled its configuration
	// state, or ctx is done. The returned state may still be
	// StateNoFlagData when the engine settled without data.
	WaitForReady(ctx context.Context) (ConfigState, error)
	// OnConfigChanged registers a callback invoked with a fresh snapshot
	// whenever the engine's configuration changes. Callbacks may fire on
	// arbitrary goroutines.
	OnConfigChanged(handler func(Snapshot))
	// Close releases the engine handle.
	Close()
}

// Snapshot is an immutable point-in-time view of engine configuration,
// sufficient to evaluate keys without further I/O.
type Snapshot interface {
	CacheState() ConfigState
	GetBoolValueDetails(key string, defaultValue bool, user *UserData) EvaluationDetails[bool]
	GetIntValueDetails(key string, defaultValue int, user *UserData) EvaluationDetails[int]
	GetFloatValueDetails(key string, defaultValue float64, user *UserData) EvaluationDetails[float64]
	GetStringValueDetails(key string, defaultValue string, user *UserData) EvaluationDetails[string]
}
