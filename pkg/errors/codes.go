package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_003"
	ErrCodeTimeout         ErrorCode = "COMMON_004"
	ErrCodeValidation      ErrorCode = "COMMON_005"
	ErrCodeSerialization   ErrorCode = "COMMON_006"
	ErrCodeDatabaseError   ErrorCode = "COMMON_007"
	ErrCodeCacheError      ErrorCode = "COMMON_008"
	ErrCodeExternalService ErrorCode = "COMMON_009"
	ErrCodeUnknown         ErrorCode = "COMMON_000"
	CodeOK                 ErrorCode = "OK"
)

// Structure-processing error codes.  These carry the failure taxonomy of the
// preparation pipeline: terminal per-file failures are reported with one of
// these codes, while per-atom field anomalies are absorbed locally and only
// surface as warnings in verification reports.
const (
	// ErrCodeStructureNotFound is returned when the input file does not exist.
	ErrCodeStructureNotFound ErrorCode = "STRUCT_001"

	// ErrCodeStructureEmpty is returned when the input file exists but is zero bytes.
	ErrCodeStructureEmpty ErrorCode = "STRUCT_002"

	// ErrCodeNoAtoms is returned when no qualifying ATOM/HETATM record survived parsing or
	// cleaning.
	ErrCodeNoAtoms ErrorCode = "STRUCT_003"

	// ErrCodeParseFailure is returned when the structured parser rejected the input.  The
	// cleaning pipeline treats this as a signal to fall through to the
	// text-based cleaner rather than a terminal failure.
	ErrCodeParseFailure ErrorCode = "STRUCT_004"

	// ErrCodeEmptyOutput is returned when a transformation step produced a missing or
	// zero-byte output file.
	ErrCodeEmptyOutput ErrorCode = "STRUCT_005"

	// ErrCodeUnknownFormat is returned when the format sniffer could not classify the input
	// and the requested operation needs a recognized format.
	ErrCodeUnknownFormat ErrorCode = "STRUCT_006"
)

// External-tool error codes (OpenBabel, Smina).
const (
	ErrCodeToolFailure     ErrorCode = "TOOL_001"
	ErrCodeToolTimeout     ErrorCode = "TOOL_002"
	ErrCodeToolEmptyOutput ErrorCode = "TOOL_003"
)

// Remote data-source error codes (UniProt, AlphaFold, ESMFold, PubChem).
const (
	ErrCodeSourceNotFound    ErrorCode = "SRC_001"
	ErrCodeSourceUnavailable ErrorCode = "SRC_002"
	ErrCodeSourceParseError  ErrorCode = "SRC_003"
	ErrCodeSequenceTooLong   ErrorCode = "SRC_004"
	ErrCodeSequenceTooShort  ErrorCode = "SRC_005"
)

// Docking workflow error codes.
const (
	ErrCodeDockingFailed    ErrorCode = "DOCK_001"
	ErrCodeNoDockingResults ErrorCode = "DOCK_002"
	ErrCodeComplexAssembly  ErrorCode = "DOCK_003"
)

// HTTPStatus maps an ErrorCode to the HTTP status the interface layer should
// respond with.  Codes without an explicit mapping default to 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeUnknownFormat,
		ErrCodeSequenceTooLong, ErrCodeSequenceTooShort:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeStructureNotFound, ErrCodeSourceNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout, ErrCodeToolTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeSourceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
