package errors

import (
	"net/http"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Short aliases used throughout the codebase.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeForbidden    = ErrCodeForbidden
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeValidation   = ErrCodeValidation
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Intelligence Layer Error Codes
//
// INTEL_001 covers unresolved country identities and geometry names; it is a
// not-found class code and never escapes as a request failure (rollups simply
// exclude the record).  INTEL_002 covers malformed rollup/pagination limits,
// which indicate a caller bug and are therefore surfaced, not clamped.
const (
	ErrCodeUnresolvedIdentity ErrorCode = "INTEL_001"
	ErrCodeInvalidLimit       ErrorCode = "INTEL_002"
)

// Victim Module Error Codes
const (
	ErrCodeVictimNotFound     ErrorCode = "VIC_001"
	ErrCodeVictimIndexInvalid ErrorCode = "VIC_002"
)

// Group Module Error Codes
const (
	ErrCodeGroupNotFound ErrorCode = "GRP_001"
)

// Ransom Note Module Error Codes
const (
	ErrCodeNoteNotFound ErrorCode = "NOTE_001"
	ErrCodeNoteInvalid  ErrorCode = "NOTE_002"
)

// Decryptor Module Error Codes
const (
	ErrCodeDecryptorNotFound ErrorCode = "DEC_001"
)

// Ingest Module Error Codes
const (
	ErrCodeIngestDecodeFailed ErrorCode = "ING_001"
	ErrCodeIngestTopicUnknown ErrorCode = "ING_002"
	ErrCodeIngestUpsertFailed ErrorCode = "ING_003"
	ErrCodeIngestDeadLettered ErrorCode = "ING_004"
)

// ErrorCodeHTTPStatus maps every ErrorCode to the HTTP status the interface
// layer should respond with.  Codes absent from this map default to 500.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeUnresolvedIdentity: http.StatusNotFound,
	ErrCodeInvalidLimit:       http.StatusBadRequest,

	ErrCodeVictimNotFound:     http.StatusNotFound,
	ErrCodeVictimIndexInvalid: http.StatusBadRequest,
	ErrCodeGroupNotFound:      http.StatusNotFound,
	ErrCodeNoteNotFound:       http.StatusNotFound,
	ErrCodeNoteInvalid:        http.StatusBadRequest,
	ErrCodeDecryptorNotFound:  http.StatusNotFound,

	ErrCodeIngestDecodeFailed: http.StatusBadRequest,
	ErrCodeIngestTopicUnknown: http.StatusBadRequest,
	ErrCodeIngestUpsertFailed: http.StatusInternalServerError,
	ErrCodeIngestDeadLettered: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",

	ErrCodeUnresolvedIdentity: "country identity could not be resolved",
	ErrCodeInvalidLimit:       "limit is out of the accepted range",

	ErrCodeVictimNotFound:     "victim not found",
	ErrCodeVictimIndexInvalid: "victim index is invalid",
	ErrCodeGroupNotFound:      "group not found",
	ErrCodeNoteNotFound:       "ransom note not found",
	ErrCodeNoteInvalid:        "ransom note payload is invalid",
	ErrCodeDecryptorNotFound:  "decryptor not found",

	ErrCodeIngestDecodeFailed: "failed to decode ingest event",
	ErrCodeIngestTopicUnknown: "no handler registered for topic",
	ErrCodeIngestUpsertFailed: "failed to persist ingested record",
	ErrCodeIngestDeadLettered: "event routed to dead letter topic",
}

// HTTPStatus returns the HTTP status code for c, defaulting to 500 for codes
// that have no explicit mapping.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := ErrorCodeHTTPStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// DefaultMessage returns the catalogue message for c, or the code itself when
// no message is registered.
func (c ErrorCode) DefaultMessage() string {
	if m, ok := ErrorCodeMessage[c]; ok {
		return m
	}
	return string(c)
}
