package collection

import (
	"errors"

	"mealcheck/pkg/sheets"
)

var (
	// ErrConfiguration is returned when credentials or the spreadsheet ID are
	// missing. It is detected before any call to the spreadsheet.
	ErrConfiguration = sheets.ErrConfiguration

	// ErrValidation marks malformed caller input. The spreadsheet is never
	// contacted for such requests.
	ErrValidation = errors.New("validation error")

	// ErrNotFound covers an empty or missing sheet, a missing header column
	// and a roll suffix with no matching row.
	ErrNotFound = errors.New("not found")
)

// User facing messages.
const (
	MsgSelectSheet   = "Please select a class/sheet."
	MsgRollDigits    = "Please enter the last 3 digits of the roll number."
	MsgSheetEmpty    = "Sheet is empty or not found."
	MsgRollNotFound  = "Roll number not found in this sheet."
	MsgInvalidRow    = "Row position must be 2 or greater."
	MsgInvalidColumn = "Status column must be a column label such as D or AA."
	MsgRemotePrefix  = "API Error: "
)

// Error carries a message that can be shown to the user as is. errors.Is
// matches it against its Kind.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func notFoundError(msg string, err error) error {
	return &Error{Kind: ErrNotFound, Message: msg, Err: err}
}

// RemoteError wraps a failed call to the spreadsheet.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return MsgRemotePrefix + sheets.APIMessage(e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
