package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is the parsed error code and message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps a database or infrastructure error to a user-facing code
// and message. Sensitive detail stays out of the response; the raw error is
// for logs only.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// GORM errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// PostgreSQL constraint violations

	// unique_violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// foreign_key_violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "A related record does not exist or is still referenced",
		}
	}

	// not_null_violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// check_violation (23514)
	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{
			Code:    ValidationInvalidInput,
			Message: "The submitted value is out of range",
		}
	}

	// Network / connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An external service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Something went wrong. Please try again later",
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errStrLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errStrLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already registered"}
	case strings.Contains(errStrLower, "registration_number"):
		return ErrorInfo{Code: BusinessAlreadyRegistered, Message: "A business with this registration number already exists"}
	case strings.Contains(errStrLower, "investor") && strings.Contains(errStrLower, "business"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "A connection for this pair already exists"}
	default:
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
	}
}

func notFoundMessage(context string) string {
	switch context {
	case "business":
		return "Business not found"
	case "document":
		return "Document not found"
	case "connection":
		return "Connection not found"
	case "conversation":
		return "Conversation not found"
	case "milestone":
		return "Milestone not found"
	case "user":
		return "User not found"
	default:
		return "The requested resource was not found"
	}
}

// ParseAndRespond parses the error and writes the response in one step.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
