package verification

import "fmt"

// ErrorCode explains why the consensus library could not evaluate a script.
// ErrOK means the script was evaluated and the status alone tells the result.
type ErrorCode int

// These constants are used to identify a specific ErrorCode.
const (
	ErrOK ErrorCode = iota
	ErrTxIndex
	ErrTxSizeMismatch
	ErrTxDeserialize
	ErrAmountRequired
	ErrInvalidFlags
)

var errorCodeStrings = map[ErrorCode]string{
	ErrOK:             "ErrOK",
	ErrTxIndex:        "ErrTxIndex",
	ErrTxSizeMismatch: "ErrTxSizeMismatch",
	ErrTxDeserialize:  "ErrTxDeserialize",
	ErrAmountRequired: "ErrAmountRequired",
	ErrInvalidFlags:   "ErrInvalidFlags",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}
