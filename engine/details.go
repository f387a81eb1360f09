package engine

// ErrorCode enumerates the engine's evaluation failure kinds.
type ErrorCode string

const (
	ErrorNone                     ErrorCode = "NONE"
	ErrorUnexpected               ErrorCode = "UNEXPECTED_ERROR"
	ErrorInvalidConfigModel       ErrorCode = "INVALID_CONFIG_MODEL"
	ErrorConfigJSONNotAvailable   ErrorCode = "CONFIG_JSON_NOT_AVAILABLE"
	ErrorSettingValueTypeMismatch ErrorCode = "SETTING_VALUE_TYPE_MISMATCH"
	ErrorSettingKeyMissing        ErrorCode = "SETTING_KEY_MISSING"
)

// UserData identifies the subject of an evaluation. Email and Country are
// promoted attributes; everything else lives in Custom as plain Go scalars
// or lists. Empty Identifier is allowed and treated by the engine as an
// anonymous user.
type UserData struct {
	Identifier string
	Email      string
	Country    string
	Custom     map[string]any
}

// EvaluationDetailsData holds the evaluation metadata shared by every value
// type: which variation was served, what matched, and what went wrong.
type EvaluationDetailsData struct {
	Key                     string
	VariationID             string
	MatchedTargetingRule    bool
	MatchedPercentageOption bool
	ErrorCode               ErrorCode
	ErrorMessage            string
}

// EvaluationDetails pairs an evaluated value with its metadata.
type EvaluationDetails[T any] struct {
	Data  EvaluationDetailsData
	Value T
}

type (
	BoolEvaluationDetails   = EvaluationDetails[bool]
	IntEvaluationDetails    = EvaluationDetails[int]
	FloatEvaluationDetails  = EvaluationDetails[float64]
	StringEvaluationDetails = EvaluationDetails[string]
)
