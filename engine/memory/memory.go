// Package memory provides a local in-memory engine client backed by a
// static settings map. It stands in for the remote evaluation engine in
// tests, local development, and offline tooling: settings are replaced
// wholesale, every replacement produces a fresh immutable snapshot, and
// registered config-changed handlers are notified with it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/configcat/openfeature-go/engine"
)

// Setting is a single flag definition. Value must be a bool, int, float64,
// or string; the evaluated type must match the caller's default value type.
type Setting struct {
	Value       any
	VariationID string
	// Overrides are checked in order before the default value. The first
	// override whose Identifier equals the evaluating user's identifier
	// wins. This is an exact-match shortcut, not a rule engine.
	Overrides []Override
}

// Override serves a different value to one specific user identifier.
type Override struct {
	Identifier  string
	Value       any
	VariationID string
	// Percentage marks the override as a percentage-option assignment
	// rather than a targeting-rule match in the evaluation details.
	Percentage bool
}

// Client is an in-memory engine.Client. The zero value is not usable;
// construct with NewClient.
type Client struct {
	snap atomic.Pointer[snapshot]

	mu       sync.Mutex
	handlers []func(engine.Snapshot)

	settleOnce sync.Once
	settled    chan struct{}
}

var _ engine.Client = (*Client)(nil)

// NewClient creates a local engine client. With a non-nil settings map the
// client is ready immediately; with nil it holds no flag data until the
// first UpdateSettings call, and WaitForReady blocks until then.
func NewClient(settings map[string]Setting) *Client {
	c := &Client{settled: make(chan struct{})}
	c.snap.Store(newSnapshot(nil))
	if settings != nil {
		c.snap.Store(newSnapshot(settings))
		c.settleOnce.Do(func() { close(c.settled) })
	}
	return c
}

// UpdateSettings replaces the full settings map, settles readiness, and
// notifies config-changed handlers with the new snapshot. An empty map is a
// valid update that reports engine.StateNoFlagData.
func (c *Client) UpdateSettings(settings map[string]Setting) {
	snap := newSnapshot(settings)
	c.snap.Store(snap)
	c.settleOnce.Do(func() { close(c.settled) })

	c.mu.Lock()
	handlers := make([]func(engine.Snapshot), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(snap)
	}
}

// Snapshot returns the latest immutable configuration view.
func (c *Client) Snapshot() engine.Snapshot { return c.snap.Load() }

// WaitForReady blocks until the client has received its settings, or ctx is
// done.
func (c *Client) WaitForReady(ctx context.Context) (engine.ConfigState, error) {
	select {
	case <-c.settled:
		return c.snap.Load().CacheState(), nil
	case <-ctx.Done():
		return engine.StateNoFlagData, ctx.Err()
	}
}

// OnConfigChanged registers a handler for future settings updates.
func (c *Client) OnConfigChanged(handler func(engine.Snapshot)) {
	c.mu.Lock()
	c.handlers = append(c.handlers, handler)
	c.mu.Unlock()
}

// Close drops all config-changed handlers. The held snapshot stays
// evaluable so in-flight callers are unaffected.
func (c *Client) Close() {
	c.mu.Lock()
	c.handlers = nil
	c.mu.Unlock()
}

type snapshot struct {
	settings map[string]Setting
	state    engine.ConfigState
}

var _ engine.Snapshot = (*snapshot)(nil)

func newSnapshot(settings map[string]Setting) *snapshot {
	copied := make(map[string]Setting, len(settings))
	for k, v := range settings {
		copied[k] = v
	}
	state := engine.StateLocalOverrideOnly
	if len(copied) == 0 {
		state = engine.StateNoFlagData
	}
	return &snapshot{settings: copied, state: state}
}

func (s *snapshot) CacheState() engine.ConfigState { return s.state }

func (s *snapshot) GetBoolValueDetails(key string, defaultValue bool, user *engine.UserData) engine.EvaluationDetails[bool] {
	return evaluate(s, key, defaultValue, user)
}

func (s *snapshot) GetIntValueDetails(key string, defaultValue int, user *engine.UserData) engine.EvaluationDetails[int] {
	return evaluate(s, key, defaultValue, user)
}

func (s *snapshot) GetFloatValueDetails(key string, defaultValue float64, user *engine.UserData) engine.EvaluationDetails[float64] {
	return evaluate(s, key, defaultValue, user)
}

func (s *snapshot) GetStringValueDetails(key string, defaultValue string, user *engine.UserData) engine.EvaluationDetails[string] {
	return evaluate(s, key, defaultValue, user)
}

func evaluate[T any](s *snapshot, key string, defaultValue T, user *engine.UserData) engine.EvaluationDetails[T] {
	details := engine.EvaluationDetails[T]{
		Data:  engine.EvaluationDetailsData{Key: key, ErrorCode: engine.ErrorNone},
		Value: defaultValue,
	}

	setting, ok := s.settings[key]
	if !ok {
		details.Data.ErrorCode = engine.ErrorSettingKeyMissing
		details.Data.ErrorMessage = fmt.Sprintf(
			"Failed to evaluate setting '%s' (the key was not found in config JSON). Available keys: [%s].",
			key, strings.Join(s.sortedKeys(), ", "))
		return details
	}

	raw := setting.Value
	variationID := setting.VariationID
	if user != nil {
		for _, o := range setting.Overrides {
			if o.Identifier == user.Identifier {
				raw = o.Value
				variationID = o.VariationID
				if o.Percentage {
					details.Data.MatchedPercentageOption = true
				} else {
					details.Data.MatchedTargetingRule = true
				}
				break
			}
		}
	}

	typed, ok := raw.(T)
	if !ok {
		details.Data.MatchedTargetingRule = false
		details.Data.MatchedPercentageOption = false
		details.Data.ErrorCode = engine.ErrorSettingValueTypeMismatch
		details.Data.ErrorMessage = fmt.Sprintf(
			"Failed to evaluate setting '%s' (the type of the setting must match the type of the specified default value; setting type: %T, default value type: %T).",
			key, raw, defaultValue)
		return details
	}

	details.Value = typed
	details.Data.VariationID = variationID
	return details
}

func (s *snapshot) sortedKeys() []string {
	keys := make([]string, 0, len(s.settings))
	for k := range s.settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
