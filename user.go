package configcat

import (
	"github.com/configcat/openfeature-go/engine"
	"github.com/configcat/openfeature-go/openfeature"
)

// Attribute names the engine promotes to dedicated user fields. Matching is
// exact and case sensitive: "email" is an ordinary custom attribute.
const (
	attributeEmail   = "Email"
	attributeCountry = "Country"
)

// userFromContext derives the engine's user model from an evaluation
// context. It is total: an empty targeting key and an empty attribute map
// are both acceptable. Email and Country land in their named fields when
// they hold strings, null-valued attributes are dropped, dates are stored
// as whole epoch seconds, and everything else goes to Custom as its natural
// Go representation.
func userFromContext(evalCtx openfeature.EvaluationContext) engine.UserData {
	user := engine.UserData{
		Identifier: evalCtx.TargetingKey(),
		Custom:     make(map[string]any),
	}
	for name, value := range evalCtx.Attributes() {
		if value.IsNull() {
			continue
		}
		switch name {
		case attributeEmail:
			user.Email, _ = value.AsString()
		case attributeCountry:
			user.Country, _ = value.AsString()
		default:
			user.Custom[name] = customValue(value)
		}
	}
	return user
}

func customValue(v openfeature.Value) any {
	if t, ok := v.AsDate(); ok {
		// Whole seconds since epoch, sub-second precision floored away.
		return t.Unix()
	}
	return v.Native()
}
