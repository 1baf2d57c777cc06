package registration

import "errors"

var (
	ErrNotFound          = errors.New("registration not found")
	ErrForbidden         = errors.New("not allowed to manage this registration")
	ErrNotApproved       = errors.New("event is not open for registration")
	ErrDeadlinePassed    = errors.New("registration deadline has passed")
	ErrNotEligible       = errors.New("event is not open to your participant category")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrFull              = errors.New("event is full")
	ErrTeamMismatch      = errors.New("team does not satisfy the event's team rules")
	ErrMerchIndividual   = errors.New("merchandise purchases are individual only")
	ErrPurchaseLimit     = errors.New("purchase limit exceeded for this item")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrOutOfStock        = errors.New("requested quantity is out of stock")
	ErrAlreadyCancelled  = errors.New("registration is already cancelled")
	ErrEventOver         = errors.New("event has already ended")
	ErrBadStatus         = errors.New("unknown registration status")
	ErrBadPayment        = errors.New("unknown payment status")
	ErrNotConfirmed      = errors.New("only confirmed registrations can check in")
	ErrAlreadyCheckedIn  = errors.New("already checked in")
	ErrMissingField      = errors.New("missing required custom field")
)
