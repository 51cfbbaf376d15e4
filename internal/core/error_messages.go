package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. When users encounter errors, they can quote the code to support
// staff for faster diagnosis.
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Invalid export or import settings (mapping, merge, table style)
//	         Action: Check the field names and merge settings of the request
//
// # Conversion Errors (CONV001-CONV099)
//
// A cell could not be turned into its field's type during import:
//
//	CONV001 - Invalid enum value       Patterns: "invalid enum"
//	CONV002 - Invalid number           Patterns: "invalid number"
//	CONV003 - Invalid date             Patterns: "invalid date"
//	CONV004 - Invalid yes/no value     Patterns: "invalid bool"
//	CONV005 - Any other cell conversion failure, including custom converters
//
// # Workbook Errors (WB001-WB099)
//
//	WB001 - File is not a readable .xlsx workbook
//	WB002 - Workbook has no data
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - An imported row failed validation rules
//
// # Request Errors
//
//	DS001   - Unknown dataset                  Patterns: "dataset not found"
//	FILE001 - File too large                   Patterns: "file too large", "request body too large"
//	FILE004 - No file was uploaded             Patterns: "no file provided"
//	BUSY001 - Too many conversions in progress Patterns: "too many conversions"
//	REQ001  - Request cancelled                Patterns: "context canceled"
//	REQ002  - Request timed out                Patterns: "context deadline exceeded"
//	REQ003  - Body is not JSON records         Patterns: "invalid json"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Typed errors from this package are matched first with errors.As. Anything
// else falls back to case-insensitive substring patterns; the first matching
// pattern wins, so more specific patterns come first.

import (
	"errors"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgConfig = UserMessage{
		Message: "The export or import settings are invalid",
		Action:  "Check the field names and merge settings of the request",
		Code:    "CFG001",
	}
	msgEnum = UserMessage{
		Message: "A cell holds a value that is not in the allowed list",
		Action:  "Use one of the allowed values for this column",
		Code:    "CONV001",
	}
	msgNumber = UserMessage{
		Message: "A cell holds text where a number is expected",
		Action:  "Remove letters from numeric columns",
		Code:    "CONV002",
	}
	msgDate = UserMessage{
		Message: "A cell holds an unrecognized date",
		Action:  "Use a real date cell or the export date format",
		Code:    "CONV003",
	}
	msgBool = UserMessage{
		Message: "A cell holds an unrecognized yes/no value",
		Action:  "Use true/false, yes/no or 1/0",
		Code:    "CONV004",
	}
	msgConversion = UserMessage{
		Message: "A cell could not be converted",
		Action:  "Check the row and column named in the error",
		Code:    "CONV005",
	}
	msgMalformed = UserMessage{
		Message: "The file is not a readable Excel workbook",
		Action:  "Upload an .xlsx file saved by Excel or a compatible program",
		Code:    "WB001",
	}
	msgEmpty = UserMessage{
		Message: "The workbook has no data",
		Action:  "Make sure the first sheet has a header row",
		Code:    "WB002",
	}
	msgValidation = UserMessage{
		Message: "A row failed validation",
		Action:  "Fix the values of the row named in the error",
		Code:    "VAL001",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	{
		pattern: "invalid json",
		msg: UserMessage{
			Message: "Request body is not a JSON array of records",
			Action:  "Send the records as a JSON array matching the dataset fields",
			Code:    "REQ003",
		},
	},
	{pattern: "invalid enum", msg: msgEnum},
	{pattern: "invalid number", msg: msgNumber},
	{pattern: "invalid date", msg: msgDate},
	{pattern: "invalid bool", msg: msgBool},
	{
		pattern: "dataset not found",
		msg: UserMessage{
			Message: "Dataset not found",
			Action:  "Check the dataset name against the dataset list",
			Code:    "DS001",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the data into smaller workbooks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the data into smaller workbooks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was uploaded",
			Action:  "Attach an .xlsx file in the \"file\" field",
			Code:    "FILE004",
		},
	},
	{
		pattern: "too many conversions",
		msg: UserMessage{
			Message: "System is busy with other conversions",
			Action:  "Please wait a moment and try again",
			Code:    "BUSY001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "REQ002",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	err := &ConversionError{Row: 3, Field: "Level", Err: errors.New(`invalid enum: "x"`)}
//	msg := MapError(err)
//	// msg.Code == "CONV001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		cfgErr  *ConfigurationError
		convErr *ConversionError
		wbErr   *MalformedWorkbookError
		valErr  *ValidationError
	)
	switch {
	case errors.As(err, &cfgErr):
		return msgConfig
	case errors.As(err, &convErr):
		if msg, ok := matchPattern(convErr.Err); ok {
			return msg
		}
		return msgConversion
	case errors.As(err, &wbErr):
		if errors.Is(err, ErrEmptyWorkbook) {
			return msgEmpty
		}
		return msgMalformed
	case errors.As(err, &valErr):
		return msgValidation
	}

	if msg, ok := matchPattern(err); ok {
		return msg
	}
	return defaultMessage
}

func matchPattern(err error) (UserMessage, bool) {
	if err == nil {
		return UserMessage{}, false
	}
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg, true
		}
	}
	return UserMessage{}, false
}
