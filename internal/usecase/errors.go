package usecase

import "errors"

const (
	CodeLeadNotFound         = "LEAD_NOT_FOUND"
	CodeTransitionInFlight   = "TRANSITION_IN_FLIGHT"
	CodeLeadChanged          = "LEAD_CHANGED"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeStatusNotSupported   = "STATUS_NOT_SUPPORTED"
	CodeSnapshotNotReady     = "SNAPSHOT_NOT_READY"
	CodePageOutOfRange       = "PAGE_OUT_OF_RANGE"
	CodeStoreFailure         = "STORE_FAILURE"
)

// DomainError is an expected outcome the caller can act on.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// DomainCode returns the code of the first DomainError in err's chain.
func DomainCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// TechnicalError wraps a failure of an external collaborator.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

var (
	ErrLeadNotFound         = &DomainError{Code: CodeLeadNotFound, Message: "lead not found"}
	ErrTransitionInFlight   = &DomainError{Code: CodeTransitionInFlight, Message: "a status change for this lead is already in progress"}
	ErrLeadChanged          = &DomainError{Code: CodeLeadChanged, Message: "lead was modified by someone else, reload and retry"}
	ErrInvalidTransition    = &DomainError{Code: CodeInvalidTransition, Message: "cannot push a lead marked as duplicate"}
	ErrConfirmationRequired = &DomainError{Code: CodeConfirmationRequired, Message: "marking a lead as duplicate must be confirmed"}
	ErrStatusNotSupported   = &DomainError{Code: CodeStatusNotSupported, Message: "status is not used by this collection"}
	ErrSnapshotNotReady     = &DomainError{Code: CodeSnapshotNotReady, Message: "leads are still loading"}
	ErrPageOutOfRange       = &DomainError{Code: CodePageOutOfRange, Message: "page out of range"}
)
