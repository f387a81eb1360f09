package openfeature

// Reason categorizes why an evaluation produced its value.
type Reason string

const (
	ReasonDefault        Reason = "DEFAULT"
	ReasonTargetingMatch Reason = "TARGETING_MATCH"
	ReasonError          Reason = "ERROR"
)

// ErrorCode classifies evaluation failures surfaced to the host.
// The empty string means "no error".
type ErrorCode string

const (
	ErrorCodeGeneral      ErrorCode = "GENERAL"
	ErrorCodeParseError   ErrorCode = "PARSE_ERROR"
	ErrorCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	ErrorCodeFlagNotFound ErrorCode = "FLAG_NOT_FOUND"
)

// ProviderEvaluation is the result of a single typed flag evaluation.
// ErrorCode is non-empty exactly when Reason is ReasonError; failures are
// always returned as data, never as a Go error.
type ProviderEvaluation[T any] struct {
	Value        T
	Variant      string
	Reason       Reason
	ErrorCode    ErrorCode
	ErrorMessage string
}
