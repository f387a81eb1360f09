package configcat

import (
	"github.com/rs/zerolog"

	"github.com/configcat/openfeature-go/engine"
	"github.com/configcat/openfeature-go/openfeature"
)

// toProviderEvaluation converts engine evaluation details into the host's
// result shape. Value, variation id, and error message pass through
// verbatim; only the reason and the error code are derived.
func toProviderEvaluation[T any](details engine.EvaluationDetails[T], logger zerolog.Logger) openfeature.ProviderEvaluation[T] {
	return openfeature.ProviderEvaluation[T]{
		Value:        details.Value,
		Variant:      details.Data.VariationID,
		Reason:       reasonFor(details.Data),
		ErrorCode:    hostErrorCode(details.Data.ErrorCode, logger),
		ErrorMessage: details.Data.ErrorMessage,
	}
}

// reasonFor derives the result reason. Precedence: any error wins, then a
// targeting-rule or percentage-option match, then default.
func reasonFor(data engine.EvaluationDetailsData) openfeature.Reason {
	switch {
	case hasError(data.ErrorCode):
		return openfeature.ReasonError
	case data.MatchedTargetingRule || data.MatchedPercentageOption:
		return openfeature.ReasonTargetingMatch
	default:
		return openfeature.ReasonDefault
	}
}

func hasError(code engine.ErrorCode) bool {
	return code != engine.ErrorNone && code != ""
}

// hostErrorCode translates the engine's error taxonomy to the host's. The
// table is fixed; codes the engine grows later are reported as GENERAL
// rather than silently misclassified.
func hostErrorCode(code engine.ErrorCode, logger zerolog.Logger) openfeature.ErrorCode {
	switch code {
	case engine.ErrorNone, "":
		return ""
	case engine.ErrorUnexpected:
		return openfeature.ErrorCodeGeneral
	case engine.ErrorInvalidConfigModel:
		return openfeature.ErrorCodeParseError
	case engine.ErrorConfigJSONNotAvailable:
		return openfeature.ErrorCodeParseError
	case engine.ErrorSettingValueTypeMismatch:
		return openfeature.ErrorCodeTypeMismatch
	case engine.ErrorSettingKeyMissing:
		return openfeature.ErrorCodeFlagNotFound
	default:
		logger.Warn().Str("engine_error_code", string(code)).Msg("unmapped engine error code, reporting GENERAL")
		return openfeature.ErrorCodeGeneral
	}
}
