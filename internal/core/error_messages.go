package core

// error_messages.go maps technical errors to user-friendly messages with a
// code for support reference. Operators quote the code; support looks it up
// here.
//
// # Roster Errors (ROS001-ROS099)
//
//	ROS001 - Roster not loaded: no roster file has been opened yet
//	ROS002 - Already registered: the RM belongs to another student
//	ROS003 - Batch not found: the validated batch expired or was committed
//	ROS004 - Student not found: no student matched the given RM(s)
//	ROS005 - Row out of range: the edited row no longer exists
//	ROS006 - Roster busy: another change is in progress
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - RM not numeric
//	VAL002 - RM out of range
//	VAL003 - RM missing
//	VAL004 - Name missing
//	VAL005 - Unknown column
//	VAL006 - Invalid input (generic)
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Unsupported file type
//	FILE003 - Header not found
//	FILE004 - Workbook has no sheets
//	FILE005 - Empty file
//	FILE006 - File not found
//
// # Storage Errors (STO001-STO099)
//
//	STO001 - Connection refused
//	STO002 - Timeout
//	STO003 - Permission denied
//
// # Rate Limiting (RATE001)
//
// # Default Error (ERR000)
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Roster state (ROS001-ROS006)
	// =========================================================================
	{
		pattern: "roster not loaded",
		msg: UserMessage{
			Message: "No roster is open",
			Action:  "Open or reload a roster file first",
			Code:    "ROS001",
		},
	},
	{
		pattern: "already registered",
		msg: UserMessage{
			Message: "This RM is already registered to another student",
			Action:  "Check the RM or look up the existing student",
			Code:    "ROS002",
		},
	},
	{
		pattern: "batch not found",
		msg: UserMessage{
			Message: "The validated batch is no longer available",
			Action:  "Validate the rows again before saving",
			Code:    "ROS003",
		},
	},
	{
		pattern: "no student",
		msg: UserMessage{
			Message: "No student matched the given RM",
			Action:  "Refresh the list and try again",
			Code:    "ROS004",
		},
	},
	{
		pattern: "malformed row",
		msg: UserMessage{
			Message: "The selected row no longer exists",
			Action:  "Refresh the list and try again",
			Code:    "ROS005",
		},
	},
	{
		pattern: "roster busy",
		msg: UserMessage{
			Message: "Another change is in progress",
			Action:  "Please wait a moment and try again",
			Code:    "ROS006",
		},
	},

	// =========================================================================
	// Validation (VAL001-VAL006)
	// =========================================================================
	{
		pattern: "must contain only digits",
		msg: UserMessage{
			Message: "RM must be a whole number",
			Action:  "Remove letters, signs and separators from the RM",
			Code:    "VAL001",
		},
	},
	{
		pattern: "out of range",
		msg: UserMessage{
			Message: "RM is too large",
			Action:  "Check the RM for extra digits",
			Code:    "VAL002",
		},
	},
	{
		pattern: "id is required",
		msg: UserMessage{
			Message: "RM is empty",
			Action:  "Fill in the RM for every student",
			Code:    "VAL003",
		},
	},
	{
		pattern: "name is required",
		msg: UserMessage{
			Message: "Student name is empty",
			Action:  "Fill in the name for every student",
			Code:    "VAL004",
		},
	},
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "Unknown column",
			Action:  "Use Sobrenome, Nome do(a) Aluno(a) or RM",
			Code:    "VAL005",
		},
	},
	{
		pattern: "invalid input",
		msg: UserMessage{
			Message: "Some values are invalid",
			Action:  "Review the highlighted fields",
			Code:    "VAL006",
		},
	},

	// =========================================================================
	// Files (FILE001-FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller batches",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload an .xlsx or .csv file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "header not found",
		msg: UserMessage{
			Message: "The roster columns were not found",
			Action:  "Make sure the sheet has a Nome do(a) Aluno(a) and an RM column",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no sheets",
		msg: UserMessage{
			Message: "The workbook has no sheets",
			Action:  "Open a workbook that contains the roster",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a file with at least one student row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The roster file was not found",
			Action:  "Check the configured roster path",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Storage (STO001-STO003)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the roster database",
			Action:  "Please try again in a few moments",
			Code:    "STO001",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again",
			Code:    "STO002",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "The roster file cannot be written",
			Action:  "Close the file in other programs and check its permissions",
			Code:    "STO003",
		},
	},

	// =========================================================================
	// Rate limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 when none matches.
//
// Example:
//
//	msg := MapError(fmt.Errorf("%w: id 7 already registered", ErrInvalidInput))
//	// msg.Code == "ROS002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern, as opposed to the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
