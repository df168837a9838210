// Package core provides the business logic for the cell codec service.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Sentinel errors are matched first with errors.Is; driver and transport
// errors that carry no sentinel fall back to substring patterns.
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Missing configuration: A required delimiter or setting is empty
//	         Action: Set every CSV_* and ENTITY_TYPE_CODE variable
//	         Sentinel: codec.ErrConfigurationMissing
//
//	CFG002 - Invalid delimiters: Two codec characters collide
//	         Action: Choose distinct delimiter and enclosure characters
//	         Sentinel: codec.ErrInvalidDelimiters
//
// # Attribute Errors (ATTR001-ATTR099)
//
//	ATTR001 - Unknown entity type: The entity type is not in the directory
//	          Action: Check ENTITY_TYPE_CODE against the attribute catalog
//	          Sentinel: codec.ErrEntityTypeNotFound
//
//	ATTR002 - Unknown attribute: An attribute code is not in the directory
//	          Action: Check the attribute code spelling or add it to the catalog
//	          Sentinel: codec.ErrAttributeNotFound
//
// # Operation Errors (OP001-OP099)
//
//	OP001 - Not supported: The operation is not available
//	        Action: Use normalize or explode instead
//	        Sentinel: codec.ErrUnsupported
//
// # Value Errors (VAL001-VAL099)
//
//	VAL001 - Wrong value kind: A value does not fit its attribute's input type
//	         Action: Send lists for multiselect attributes and strings for text
//	         Sentinel: codec.ErrValueKind
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid request: The request body could not be read
//	         Action: Send a JSON body matching the endpoint documentation
//	         Sentinel: ErrInvalidRequest
//
//	REQ002 - Batch too large: The batch holds more cells than allowed
//	         Action: Split the batch into smaller requests
//	         Sentinel: ErrBatchTooLarge
//
//	REQ003 - System busy: Too many batches in progress
//	         Action: Please wait a moment and try again
//	         Sentinel: ErrTooManyBatches
//
//	REQ004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Sentinel: context.Canceled
//
//	REQ005 - Request timeout: Request timed out
//	         Action: Send fewer cells per batch or try again later
//	         Sentinel: context.DeadlineExceeded
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused: Unable to connect to the attribute database
//	        Patterns: "connection refused"
//
//	DB002 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset"
//
//	DB003 - Timeout: Attribute lookup timed out
//	        Patterns: "timeout"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Check the associated sentinel or pattern to understand what triggered it
//  3. Review the suggested action to guide the user
//  4. If ERR000, check application logs for the original technical error
package core

import (
	"context"
	"errors"
	"strings"

	"github.com/JonMunkholm/csvcell/internal/codec"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorKind maps a sentinel error to its user message.
type errorKind struct {
	target error
	msg    UserMessage
}

// errorKinds is consulted before errorPatterns. Order matters only when an
// error wraps several sentinels.
var errorKinds = []errorKind{
	{codec.ErrConfigurationMissing, UserMessage{
		Message: "A required codec setting is missing",
		Action:  "Set every CSV_* and ENTITY_TYPE_CODE variable",
		Code:    "CFG001",
	}},
	{codec.ErrInvalidDelimiters, UserMessage{
		Message: "Codec characters collide",
		Action:  "Choose distinct delimiter and enclosure characters",
		Code:    "CFG002",
	}},
	{codec.ErrEntityTypeNotFound, UserMessage{
		Message: "Unknown entity type",
		Action:  "Check ENTITY_TYPE_CODE against the attribute catalog",
		Code:    "ATTR001",
	}},
	{codec.ErrAttributeNotFound, UserMessage{
		Message: "Unknown attribute code",
		Action:  "Check the attribute code spelling or add it to the catalog",
		Code:    "ATTR002",
	}},
	{codec.ErrUnsupported, UserMessage{
		Message: "This operation is not supported",
		Action:  "Use normalize or explode instead",
		Code:    "OP001",
	}},
	{codec.ErrValueKind, UserMessage{
		Message: "A value does not match its attribute type",
		Action:  "Send lists for multiselect attributes and strings for text attributes",
		Code:    "VAL001",
	}},
	{ErrInvalidRequest, UserMessage{
		Message: "The request could not be read",
		Action:  "Send a JSON body matching the endpoint documentation",
		Code:    "REQ001",
	}},
	{ErrBatchTooLarge, UserMessage{
		Message: "The batch holds too many cells",
		Action:  "Split the batch into smaller requests",
		Code:    "REQ002",
	}},
	{ErrTooManyBatches, UserMessage{
		Message: "System is busy processing other batches",
		Action:  "Please wait a moment and try again",
		Code:    "REQ003",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ004",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Send fewer cells per batch or try again later",
		Code:    "REQ005",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins.
var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the attribute database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Attribute lookup timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
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
//	_, err := lines.Denormalize(ctx, `mystery=1`, true)
//	msg := MapError(err)
//	// msg.Code == "ATTR002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// UserError pairs a technical error with its user-friendly message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
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
