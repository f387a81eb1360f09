package openfeature

// EvaluationContext carries the targeting key and attributes a caller
// supplies for flag evaluation. It is immutable once constructed; the
// constructor copies the attribute map.
type EvaluationContext struct {
	targetingKey string
	attributes   map[string]Value
}

// NewEvaluationContext creates an evaluation context. Both the targeting key
// and the attribute map may be empty.
func NewEvaluationContext(targetingKey string, attributes map[string]Value) EvaluationContext {
	copied := make(map[string]Value, len(attributes))
	for k, v := range attributes {
		copied[k] = v
	}
	return EvaluationContext{targetingKey: targetingKey, attributes: copied}
}

// TargetingKey returns the subject identifier of the context.
func (c EvaluationContext) TargetingKey() string { return c.targetingKey }

// Attribute returns the named attribute and whether it is present.
func (c EvaluationContext) Attribute(name string) (Value, bool) {
	v, ok := c.attributes[name]
	return v, ok
}

// Attributes returns a copy of the attribute map.
func (c EvaluationContext) Attributes() map[string]Value {
	copied := make(map[string]Value, len(c.attributes))
	for k, v := range c.attributes {
		copied[k] = v
	}
	return copied
}
