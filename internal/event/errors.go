package event

import "errors"

var (
	ErrNotFound    = errors.New("event not found")
	ErrForbidden   = errors.New("not allowed to manage this event")
	ErrValidation  = errors.New("invalid event input")
	ErrFieldLocked = errors.New("field cannot be edited in the current lifecycle state")
	ErrFormLocked  = errors.New("Registration form is locked after first registration")
	ErrNeedReason  = errors.New("rejection requires a non-empty reason")
	ErrBadApproval = errors.New("approval status must be approved or rejected")
)
