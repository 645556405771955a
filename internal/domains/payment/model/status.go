package model

// PaymentStatus is the payment lifecycle state.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusApproved  PaymentStatus = "APPROVED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

func (ps PaymentStatus) IsValid() bool {
	switch ps {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

func (ps PaymentStatus) String() string {
	return string(ps)
}

// Description is the human-readable label carried in invalid-transition errors.
func (ps PaymentStatus) Description() string {
	switch ps {
	case PaymentStatusPending:
		return "waiting for approval"
	case PaymentStatusApproved:
		return "approved"
	case PaymentStatusFailed:
		return "failed"
	case PaymentStatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// PaymentAction is an operation attempted against the state machine.
type PaymentAction string

const (
	ActionApprove  PaymentAction = "approve"
	ActionFail     PaymentAction = "fail"
	ActionCancel   PaymentAction = "cancel"
	ActionRollback PaymentAction = "rollback"
)

type transitionKey struct {
	from   PaymentStatus
	action PaymentAction
}

// transitions is the closed set of allowed payment transitions. Anything not
// listed here is rejected; this table is the single place the payment
// lifecycle rules live.
var transitions = map[transitionKey]PaymentStatus{
	{PaymentStatusPending, ActionApprove}:    PaymentStatusApproved,
	{PaymentStatusPending, ActionFail}:       PaymentStatusFailed,
	{PaymentStatusApproved, ActionCancel}:    PaymentStatusCancelled,
	{PaymentStatusFailed, ActionRollback}:    PaymentStatusPending,
	{PaymentStatusCancelled, ActionRollback}: PaymentStatusApproved,
}

// NextStatus looks up the transition table and returns either the next status
// or an *InvalidTransitionError.
func NextStatus(current PaymentStatus, action PaymentAction) (PaymentStatus, error) {
	next, ok := transitions[transitionKey{current, action}]
	if !ok {
		return "", &InvalidTransitionError{
			Current:     current,
			Description: current.Description(),
			Action:      action,
		}
	}
	return next, nil
}
