package configcat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/configcat/openfeature-go/engine/memory"
	"github.com/configcat/openfeature-go/openfeature"
	"github.com/configcat/openfeature-go/telemetry"
)

func testSettings() map[string]memory.Setting {
	return map[string]memory.Setting{
		"enabledFeature": {Value: true, VariationID: "v-enabled"},
		"intSetting":     {Value: 5, VariationID: "v-int"},
		"doubleSetting":  {Value: 1.2, VariationID: "v-double"},
		"stringSetting":  {Value: "test", VariationID: "v-string"},
		"objectSetting":  {Value: `{"bool_field": true, "text_field": "value"}`, VariationID: "v-object"},
		"emptySetting":   {Value: "", VariationID: "v-empty"},
		"brokenObject":   {Value: `{"bool_field": tru`, VariationID: "v-broken"},
		"disabledFeature": {
			Value:       false,
			VariationID: "v-disabled",
			Overrides: []memory.Override{
				{Identifier: "example@matching.com", Value: true, VariationID: "v-disabled-t"},
			},
		},
	}
}

func newTestProvider(t *testing.T, opts ...Option) *Provider {
	t.Helper()
	provider := NewProvider(memory.NewClient(testSettings()), opts...)
	t.Cleanup(provider.Shutdown)
	return provider
}

// receiveEvent waits briefly for one event.
func receiveEvent(t *testing.T, events <-chan openfeature.Event) (openfeature.Event, bool) {
	t.Helper()
	select {
	case e := <-events:
		return e, true
	case <-time.After(500 * time.Millisecond):
		return "", false
	}
}

// expectNoEvent asserts that nothing arrives within a short window.
func expectNoEvent(t *testing.T, events <-chan openfeature.Event) {
	t.Helper()
	select {
	case e := <-events:
		t.Errorf("unexpected event %q", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMetadata(t *testing.T) {
	provider := newTestProvider(t)
	if got := provider.Metadata().Name; got != "ConfigCatProvider" {
		t.Errorf("metadata name = %q, want ConfigCatProvider", got)
	}
}

func TestEval(t *testing.T) {
	provider := newTestProvider(t)

	boolVal := provider.BooleanEvaluation("enabledFeature", false, nil)
	if !boolVal.Value || boolVal.Variant != "v-enabled" || boolVal.Reason != openfeature.ReasonDefault {
		t.Errorf("bool = %+v, want {true v-enabled DEFAULT}", boolVal)
	}

	intVal := provider.IntEvaluation("intSetting", 0, nil)
	if intVal.Value != 5 || intVal.Variant != "v-int" || intVal.Reason != openfeature.ReasonDefault {
		t.Errorf("int = %+v, want {5 v-int DEFAULT}", intVal)
	}

	doubleVal := provider.FloatEvaluation("doubleSetting", 0, nil)
	if doubleVal.Value != 1.2 || doubleVal.Variant != "v-double" || doubleVal.Reason != openfeature.ReasonDefault {
		t.Errorf("float = %+v, want {1.2 v-double DEFAULT}", doubleVal)
	}

	stringVal := provider.StringEvaluation("stringSetting", "", nil)
	if stringVal.Value != "test" || stringVal.Variant != "v-string" || stringVal.Reason != openfeature.ReasonDefault {
		t.Errorf("string = %+v, want {test v-string DEFAULT}", stringVal)
	}

	objVal := provider.ObjectEvaluation("objectSetting", openfeature.Null(), nil)
	if objVal.Variant != "v-object" || objVal.Reason != openfeature.ReasonDefault {
		t.Errorf("object = %+v, want variant v-object reason DEFAULT", objVal)
	}
	fields, ok := objVal.Value.AsStructure()
	if !ok {
		t.Fatalf("object value kind = %v, want structure", objVal.Value.Kind())
	}
	if b, ok := fields["bool_field"].AsBool(); !ok || !b {
		t.Errorf("bool_field = %#v, want true", fields["bool_field"])
	}
	if s, ok := fields["text_field"].AsString(); !ok || s != "value" {
		t.Errorf("text_field = %#v, want value", fields["text_field"])
	}
}

func TestTargeting(t *testing.T) {
	provider := newTestProvider(t)

	evalCtx := openfeature.NewEvaluationContext("example@matching.com", nil)
	result := provider.BooleanEvaluation("disabledFeature", false, &evalCtx)
	if !result.Value || result.Variant != "v-disabled-t" || result.Reason != openfeature.ReasonTargetingMatch {
		t.Errorf("targeted = %+v, want {true v-disabled-t TARGETING_MATCH}", result)
	}

	other := openfeature.NewEvaluationContext("someone-else", nil)
	fallback := provider.BooleanEvaluation("disabledFeature", false, &other)
	if fallback.Value || fallback.Reason != openfeature.ReasonDefault {
		t.Errorf("unmatched = %+v, want {false DEFAULT}", fallback)
	}
}

func TestErrors(t *testing.T) {
	provider := newTestProvider(t)

	missing := provider.BooleanEvaluation("non-existing", false, nil)
	if missing.Value {
		t.Error("missing flag did not return the default")
	}
	if missing.Reason != openfeature.ReasonError || missing.ErrorCode != openfeature.ErrorCodeFlagNotFound {
		t.Errorf("missing = {%s %s}, want {ERROR FLAG_NOT_FOUND}", missing.Reason, missing.ErrorCode)
	}
	if !strings.Contains(missing.ErrorMessage, "Failed to evaluate setting 'non-existing' (the key was not found in config JSON)") {
		t.Errorf("unexpected error message: %s", missing.ErrorMessage)
	}

	mismatch := provider.BooleanEvaluation("stringSetting", false, nil)
	if mismatch.Value {
		t.Error("mismatched flag did not return the default")
	}
	if mismatch.Reason != openfeature.ReasonError || mismatch.ErrorCode != openfeature.ErrorCodeTypeMismatch {
		t.Errorf("mismatch = {%s %s}, want {ERROR TYPE_MISMATCH}", mismatch.Reason, mismatch.ErrorCode)
	}
}

func TestObjectEvaluationEmptyString(t *testing.T) {
	provider := newTestProvider(t)

	defaultValue := openfeature.Structure(map[string]openfeature.Value{"fallback": openfeature.Bool(true)})
	result := provider.ObjectEvaluation("emptySetting", defaultValue, nil)

	fields, ok := result.Value.AsStructure()
	if !ok || len(fields) != 1 {
		t.Fatalf("empty string eval returned %#v, want the caller default", result.Value)
	}
	if result.Reason != openfeature.ReasonDefault || result.ErrorCode != "" {
		t.Errorf("empty string eval = {%s %s}, want {DEFAULT <none>}", result.Reason, result.ErrorCode)
	}
	if result.Variant != "" {
		t.Errorf("empty string eval carried variant %q", result.Variant)
	}
}

func TestObjectEvaluationMissingKey(t *testing.T) {
	provider := newTestProvider(t)

	result := provider.ObjectEvaluation("non-existing", openfeature.Null(), nil)
	if !result.Value.IsNull() {
		t.Errorf("missing object eval returned %#v, want the null default", result.Value)
	}
	if result.Reason != openfeature.ReasonError || result.ErrorCode != openfeature.ErrorCodeFlagNotFound {
		t.Errorf("missing object eval = {%s %s}, want {ERROR FLAG_NOT_FOUND}", result.Reason, result.ErrorCode)
	}
}

func TestObjectEvaluationInvalidJSON(t *testing.T) {
	provider := newTestProvider(t)

	result := provider.ObjectEvaluation("brokenObject", openfeature.Null(), nil)
	if !result.Value.IsNull() {
		t.Errorf("invalid JSON eval returned %#v, want the null default", result.Value)
	}
	if result.Reason != openfeature.ReasonError || result.ErrorCode != openfeature.ErrorCodeTypeMismatch {
		t.Errorf("invalid JSON eval = {%s %s}, want {ERROR TYPE_MISMATCH}", result.Reason, result.ErrorCode)
	}
	if !strings.Contains(result.ErrorMessage, `{"bool_field": tru`) {
		t.Errorf("error message does not embed the offending text: %s", result.ErrorMessage)
	}
	if !strings.Contains(result.ErrorMessage, "Could not parse") {
		t.Errorf("unexpected error message: %s", result.ErrorMessage)
	}
}

func TestInitializeEmitsReady(t *testing.T) {
	provider := newTestProvider(t)
	events, unsub := provider.Observe()
	defer unsub()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := provider.Initialize(ctx, nil); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if e, ok := receiveEvent(t, events); !ok || e != openfeature.ProviderReady {
		t.Errorf("event = (%q, %v), want PROVIDER_READY", e, ok)
	}
}

func TestReadyFiresExactlyOnce(t *testing.T) {
	client := memory.NewClient(nil)
	provider := NewProvider(client)
	defer provider.Shutdown()

	events, unsub := provider.Observe()
	defer unsub()

	client.UpdateSettings(testSettings())
	client.UpdateSettings(testSettings())
	client.UpdateSettings(testSettings())

	if e, ok := receiveEvent(t, events); !ok || e != openfeature.ProviderReady {
		t.Fatalf("event = (%q, %v), want PROVIDER_READY", e, ok)
	}
	expectNoEvent(t, events)
}

func TestLateSubscriberObservesReady(t *testing.T) {
	client := memory.NewClient(nil)
	provider := NewProvider(client)
	defer provider.Shutdown()

	client.UpdateSettings(testSettings())

	events, unsub := provider.Observe()
	defer unsub()

	if e, ok := receiveEvent(t, events); !ok || e != openfeature.ProviderReady {
		t.Errorf("late subscriber event = (%q, %v), want PROVIDER_READY", e, ok)
	}
	expectNoEvent(t, events)
}

func TestEmptyConfigStateNeverTriggersReady(t *testing.T) {
	client := memory.NewClient(nil)
	provider := NewProvider(client)
	defer provider.Shutdown()

	events, unsub := provider.Observe()
	defer unsub()

	client.UpdateSettings(map[string]memory.Setting{})
	client.UpdateSettings(map[string]memory.Setting{})

	expectNoEvent(t, events)
	if provider.initialized.Load() {
		t.Error("provider marked initialized without flag data")
	}

	client.UpdateSettings(testSettings())
	if e, ok := receiveEvent(t, events); !ok || e != openfeature.ProviderReady {
		t.Errorf("event after valid data = (%q, %v), want PROVIDER_READY", e, ok)
	}
}

func TestInitializeWithoutFlagDataStaysUnready(t *testing.T) {
	client := memory.NewClient(nil)
	provider := NewProvider(client)
	defer provider.Shutdown()

	events, unsub := provider.Observe()
	defer unsub()

	client.UpdateSettings(map[string]memory.Setting{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := provider.Initialize(ctx, nil); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	expectNoEvent(t, events)
}

func TestInitializeCancellation(t *testing.T) {
	client := memory.NewClient(nil)
	provider := NewProvider(client)
	defer provider.Shutdown()

	events, unsub := provider.Observe()
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := provider.Initialize(ctx, nil); err == nil {
		t.Fatal("expected an error from a cancelled Initialize")
	}
	if provider.initialized.Load() {
		t.Error("cancelled Initialize flipped the readiness flag")
	}

	// A cancelled wait must not wedge readiness: the config-change path can
	// still fire it.
	client.UpdateSettings(testSettings())
	if e, ok := receiveEvent(t, events); !ok || e != openfeature.ProviderReady {
		t.Errorf("event after cancellation = (%q, %v), want PROVIDER_READY", e, ok)
	}
}

func TestReadyRollbackOnRejectedEmit(t *testing.T) {
	client := memory.NewClient(nil)
	provider := NewProvider(client)
	defer provider.Shutdown()

	events, unsub := provider.Observe()
	defer unsub()

	// Jam the subscriber buffer so the ready emission gets rejected.
	for provider.events.TryEmit("NOISE") {
	}

	client.UpdateSettings(testSettings())
	if provider.initialized.Load() {
		t.Error("readiness flag stayed set after a rejected emission")
	}

	// Drain and retry via the next notification.
	for len(events) > 0 {
		<-events
	}
	client.UpdateSettings(testSettings())
	if !provider.initialized.Load() {
		t.Error("readiness flag not set after a successful retry")
	}

	var readyCount int
	for done := false; !done; {
		select {
		case e := <-events:
			if e == openfeature.ProviderReady {
				readyCount++
			}
		case <-time.After(50 * time.Millisecond):
			done = true
		}
	}
	if readyCount != 1 {
		t.Errorf("observed %d ready events, want exactly 1", readyCount)
	}
}

func TestExplicitUserTakesPriorityOverCallContext(t *testing.T) {
	provider := newTestProvider(t)

	matching := openfeature.NewEvaluationContext("example@matching.com", nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := provider.Initialize(ctx, &matching); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// The call-scoped context must lose against the explicitly set user.
	other := openfeature.NewEvaluationContext("someone-else", nil)
	result := provider.BooleanEvaluation("disabledFeature", false, &other)
	if !result.Value || result.Reason != openfeature.ReasonTargetingMatch {
		t.Errorf("result = %+v, want the explicit user's targeting match", result)
	}
}

func TestOnContextSetReplacesUser(t *testing.T) {
	provider := newTestProvider(t)

	matching := openfeature.NewEvaluationContext("example@matching.com", nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := provider.Initialize(ctx, &matching); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	other := openfeature.NewEvaluationContext("someone-else", nil)
	provider.OnContextSet(&matching, &other)

	result := provider.BooleanEvaluation("disabledFeature", false, nil)
	if result.Value || result.Reason != openfeature.ReasonDefault {
		t.Errorf("result = %+v, want the replaced user's default", result)
	}
}

func TestOnContextSetDoesNotRetriggerReady(t *testing.T) {
	provider := newTestProvider(t)
	events, unsub := provider.Observe()
	defer unsub()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := provider.Initialize(ctx, nil); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, ok := receiveEvent(t, events); !ok {
		t.Fatal("no ready event after Initialize")
	}

	evalCtx := openfeature.NewEvaluationContext("someone", nil)
	provider.OnContextSet(nil, &evalCtx)
	expectNoEvent(t, events)
}

func TestShutdownReleasesEngine(t *testing.T) {
	client := memory.NewClient(testSettings())
	provider := NewProvider(client)

	provider.Shutdown()

	// The dropped engine handlers mean no further notifications, but cached
	// evaluation state stays usable.
	result := provider.BooleanEvaluation("enabledFeature", false, nil)
	if !result.Value {
		t.Errorf("evaluation after shutdown = %+v, want {true}", result)
	}
}

func TestEvaluationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.New(reg)
	provider := newTestProvider(t, WithMetrics(metrics))

	provider.BooleanEvaluation("enabledFeature", false, nil)
	provider.BooleanEvaluation("enabledFeature", false, nil)
	provider.IntEvaluation("non-existing", 0, nil)

	defaults := metrics.Evaluations.WithLabelValues(string(openfeature.ReasonDefault), "")
	if got := testutil.ToFloat64(defaults); got != 2 {
		t.Errorf("default evaluation count = %v, want 2", got)
	}
	errors := metrics.Evaluations.WithLabelValues(string(openfeature.ReasonError), string(openfeature.ErrorCodeFlagNotFound))
	if got := testutil.ToFloat64(errors); got != 1 {
		t.Errorf("error evaluation count = %v, want 1", got)
	}
}
