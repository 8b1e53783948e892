package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes are grouped by module prefix: COMMON_, MOL_, DRUG_, TASK_.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_014"
	ErrCodeStorageError       ErrorCode = "COMMON_015"
)

// Aliases used across the code base.
const (
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict

	CodeMoleculeInvalidSMILES = ErrCodeMoleculeInvalidSMILES
	CodeMoleculeNotFound      = ErrCodeMoleculeNotFound
	CodeDrugNotFound          = ErrCodeDrugNotFound

	CodeDBQueryError      = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeMessageQueueError = ErrCodeMessageQueueError
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidSMILES    ErrorCode = "MOL_001"
	ErrCodeMoleculeNotFound         ErrorCode = "MOL_004"
	ErrCodeMoleculeAlreadyExists    ErrorCode = "MOL_005"
	ErrCodeSubstructureSearchFailed ErrorCode = "MOL_012"
	ErrCodeInvalidCSVHeader         ErrorCode = "MOL_016"
	ErrCodeMoleculeInUse            ErrorCode = "MOL_017"
)

// Drug Module Error Codes
const (
	ErrCodeDrugNotFound            ErrorCode = "DRUG_001"
	ErrCodeDrugInvalidQuantityUnit ErrorCode = "DRUG_002"
)

// Task Module Error Codes
const (
	ErrCodeTaskDispatchFailed ErrorCode = "TASK_001"
	ErrCodeTaskPayloadInvalid ErrorCode = "TASK_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.  Domain outcomes
// (invalid input, duplicates, unknown identifiers) are all client errors.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,

	ErrCodeMoleculeInvalidSMILES:    http.StatusBadRequest,
	ErrCodeMoleculeNotFound:         http.StatusNotFound,
	ErrCodeMoleculeAlreadyExists:    http.StatusBadRequest,
	ErrCodeSubstructureSearchFailed: http.StatusInternalServerError,
	ErrCodeInvalidCSVHeader:         http.StatusBadRequest,
	ErrCodeMoleculeInUse:            http.StatusBadRequest,

	ErrCodeDrugNotFound:            http.StatusNotFound,
	ErrCodeDrugInvalidQuantityUnit: http.StatusBadRequest,

	ErrCodeTaskDispatchFailed: http.StatusInternalServerError,
	ErrCodeTaskPayloadInvalid: http.StatusBadRequest,
}

// ErrorCodeMessage holds the default message per ErrorCode.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessageQueueError:  "message queue error",
	ErrCodeStorageError:       "object storage error",

	ErrCodeMoleculeInvalidSMILES:    "invalid SMILES string",
	ErrCodeMoleculeNotFound:         "molecule not found",
	ErrCodeMoleculeAlreadyExists:    "molecule with this SMILES already exists",
	ErrCodeSubstructureSearchFailed: "substructure search failed",
	ErrCodeInvalidCSVHeader:         "CSV header is missing required columns",
	ErrCodeMoleculeInUse:            "molecule is referenced by a drug",

	ErrCodeDrugNotFound:            "drug not found",
	ErrCodeDrugInvalidQuantityUnit: "invalid quantity unit",

	ErrCodeTaskDispatchFailed: "failed to dispatch task",
	ErrCodeTaskPayloadInvalid: "invalid task payload",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
