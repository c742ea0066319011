package dispatch

import (
	"errors"

	"github.com/tipy-dev/tipy/internal/csvio"
	"github.com/tipy-dev/tipy/internal/database"
	"github.com/tipy-dev/tipy/internal/plot"
	"github.com/tipy-dev/tipy/internal/session"
	"github.com/tipy-dev/tipy/internal/textenc"
)

// Errors returned by the dispatcher.
var (
	ErrNotSupported   = errors.New("operation not available for this tab")
	ErrNoRowSelected  = errors.New("select a whole row first")
	ErrNoMatchColumns = errors.New("no column left to identify the edited row")
	ErrNeedsPath      = errors.New("table has no file yet; save it under a new name")
)

// Severity says how a failed action should be reported.
type Severity int

const (
	// SeverityError blocks with an error dialog.
	SeverityError Severity = iota
	// SeverityWarning blocks with a warning dialog.
	SeverityWarning
)

// Classify maps an error to a dialog severity and a short user-facing
// message. Unknown errors are reported as errors with their full text.
func Classify(err error) (Severity, string) {
	switch {
	case errors.Is(err, ErrNoRowSelected):
		return SeverityWarning, "Select a row!"
	case errors.Is(err, session.ErrMissingField):
		return SeverityWarning, "Fill in every field."
	case errors.Is(err, database.ErrConstraint):
		return SeverityError, "Invalid data entered: " + err.Error()
	case errors.Is(err, database.ErrInvalidSQL):
		return SeverityError, "Invalid query: " + err.Error()
	case errors.Is(err, plot.ErrNotNumeric):
		return SeverityError, "At least one of the columns must be numeric."
	case errors.Is(err, textenc.ErrUnknownEncoding):
		return SeverityError, "Unknown encoding: " + err.Error()
	case errors.Is(err, textenc.ErrDecode):
		return SeverityError, "The file cannot be read in this encoding."
	case errors.Is(err, textenc.ErrEncode):
		return SeverityError, "The table cannot be written in this encoding: " + err.Error()
	case errors.Is(err, csvio.ErrBadDelimiter):
		return SeverityError, err.Error()
	case errors.Is(err, session.ErrNotFound):
		return SeverityError, "This file does not exist."
	default:
		return SeverityError, err.Error()
	}
}
