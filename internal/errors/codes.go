package errors

// ErrorCode is the stable, machine-readable identifier returned in every API error body
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthInvalidCredentials     ErrorCode = "AUTH_001"
	AuthMissingToken           ErrorCode = "AUTH_002"
	AuthExpiredToken           ErrorCode = "AUTH_003"
	AuthInvalidTokenFormat     ErrorCode = "AUTH_004"
	AuthInsufficientPermission ErrorCode = "AUTH_005"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
)

// Account error codes (ACCOUNT_*)
const (
	AccountNotFound            ErrorCode = "ACCOUNT_001"
	AccountInvalidStatus       ErrorCode = "ACCOUNT_002"
	AccountStatusNotChangeable ErrorCode = "ACCOUNT_003"
)

// Transfer error codes (TRANSFER_*)
const (
	TransferSameAccount            ErrorCode = "TRANSFER_001"
	TransferSourceNotFound         ErrorCode = "TRANSFER_002"
	TransferDestinationNotFound    ErrorCode = "TRANSFER_003"
	TransferSourceUnavailable      ErrorCode = "TRANSFER_004"
	TransferDestinationUnavailable ErrorCode = "TRANSFER_005"
	TransferInsufficientFunds      ErrorCode = "TRANSFER_006"
	TransferNotFound               ErrorCode = "TRANSFER_007"
	TransferInvalidAmount          ErrorCode = "TRANSFER_008"
	TransferIdempotencyConflict    ErrorCode = "TRANSFER_009"
	TransferFailed                 ErrorCode = "TRANSFER_010"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_004"
	SystemNotFound           ErrorCode = "SYSTEM_005"
)

var errorMessages = map[ErrorCode]string{
	AuthInvalidCredentials:     "Invalid credentials",
	AuthMissingToken:           "Not authenticated",
	AuthExpiredToken:           "Token has expired",
	AuthInvalidTokenFormat:     "Invalid token",
	AuthInsufficientPermission: "Forbidden",

	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",

	AccountNotFound:            "Account not found",
	AccountInvalidStatus:       "Invalid status. Must be one of: active, frozen, closed",
	AccountStatusNotChangeable: "Closed accounts cannot change status",

	TransferSameAccount:            "Cannot transfer to the same account",
	TransferSourceNotFound:         "from_acct not found or not owned by user",
	TransferDestinationNotFound:    "to_acct not found",
	TransferSourceUnavailable:      "Source account is not active",
	TransferDestinationUnavailable: "Destination account is not active",
	TransferInsufficientFunds:      "Insufficient funds",
	TransferNotFound:               "Transfer not found",
	TransferInvalidAmount:          "Amount must be greater than zero",
	TransferIdempotencyConflict:    "Idempotency key already used for a different transfer",
	TransferFailed:                 "Transaction Failed",

	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemRateLimitExceeded:  "Too Many Requests",
	SystemNotFound:           "Not Found",
}

// GetErrorMessage returns the default message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
